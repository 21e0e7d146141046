// Package itinerary derives a displayable city sequence from a travel
// request. The request format never had a structured route field, so the
// route is recovered from booked flight segments when available and from
// loosely structured note text otherwise. Parsing is best-effort: it
// always produces a (possibly degenerate) sequence and never fails.
package itinerary

import (
	"regexp"
	"strings"
	"time"

	"go-travel-desk/internal/booking"
)

type TripType string

const (
	TripTypeMultiCity TripType = "Multi-City"
	TripTypeRoundTrip TripType = "Round Trip"
	TripTypeOneWay    TripType = "One-Way"
)

// Sources, in priority order.
const (
	SourceBooking  = "booking"
	SourceNotes    = "notes"
	SourceFallback = "fallback"
)

// PlaceholderOrigin is displayed when no origin could be recovered.
const PlaceholderOrigin = "Start"

type Stop struct {
	City string `json:"city"`
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

type Timeline struct {
	TripType TripType `json:"trip_type"`
	Source   string   `json:"source"`
	Stops    []Stop   `json:"stops"`
}

// Input carries everything the parser may draw on.
type Input struct {
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Notes       string
	Flights     []booking.Segment
}

// Leg lines are written at creation time for multi-city trips:
// "1. Mumbai -> Delhi | 2024-02-01 | 09:00"
var (
	legLineRe  = regexp.MustCompile(`(?m)^\s*\d+\.\s*(.+?)\s*->\s*(.+?)\s*\|\s*([^|\n]*?)\s*\|\s*([^|\n]*?)\s*$`)
	originRe   = regexp.MustCompile(`(?mi)^\s*(?:origin|from)\s*:\s*(.+?)\s*$`)
	cityLabel  = regexp.MustCompile(`(?i)^\s*(?:origin|from|to)\s*:\s*`)
	roundTrip1 = "return"
	roundTrip2 = "round trip"
)

// BuildTimeline tries, in order: booked flight segments, multi-city leg
// lines in the notes, then a single/return trip fallback.
func BuildTimeline(in Input) Timeline {
	tripType := Classify(in.Notes, in.StartDate, in.EndDate)

	if len(in.Flights) > 0 {
		return Timeline{
			TripType: tripType,
			Source:   SourceBooking,
			Stops:    stopsFromFlights(in.Flights),
		}
	}

	if stops := stopsFromLegLines(in.Notes); len(stops) > 0 {
		return Timeline{
			TripType: tripType,
			Source:   SourceNotes,
			Stops:    stops,
		}
	}

	return Timeline{
		TripType: tripType,
		Source:   SourceFallback,
		Stops:    fallbackStops(in, tripType),
	}
}

// Classify applies the trip-type heuristic in its historical precedence
// order. It can misclassify (a one-way purpose mentioning "return", or a
// one-way trip spanning several days) and is kept only for display badges.
func Classify(notes string, startDate, endDate time.Time) TripType {
	lower := strings.ToLower(notes)

	if strings.Contains(lower, "multi city") {
		return TripTypeMultiCity
	}
	if strings.Contains(lower, "->") && !strings.Contains(lower, "origin") {
		return TripTypeMultiCity
	}
	if strings.Contains(lower, roundTrip1) || strings.Contains(lower, roundTrip2) {
		return TripTypeRoundTrip
	}
	if !sameDate(startDate, endDate) {
		return TripTypeRoundTrip
	}
	return TripTypeOneWay
}

// CleanCity normalizes a recovered city name: the part after the first
// comma (state or country suffix) is dropped, leading Origin:/From:/To:
// labels are stripped, and the literal placeholders "origin" and
// "start point" collapse to empty, meaning unknown.
func CleanCity(s string) string {
	s = cityLabel.ReplaceAllString(s, "")
	if idx := strings.Index(s, ","); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "origin", "start point":
		return ""
	}
	return s
}

func stopsFromFlights(flights []booking.Segment) []Stop {
	stops := make([]Stop, 0, len(flights)+1)
	stops = append(stops, Stop{
		City: flights[0].From,
		Time: flights[0].DepartureTime,
	})
	for _, f := range flights {
		stops = append(stops, Stop{
			City: f.To,
			Time: f.ArrivalTime,
		})
	}
	return stops
}

func stopsFromLegLines(notes string) []Stop {
	matches := legLineRe.FindAllStringSubmatch(notes, -1)
	if len(matches) == 0 {
		return nil
	}

	stops := make([]Stop, 0, len(matches)+1)
	origin := CleanCity(matches[0][1])
	if origin == "" {
		origin = PlaceholderOrigin
	}
	stops = append(stops, Stop{City: origin})

	for _, m := range matches {
		city := CleanCity(m[2])
		if city == "" {
			city = PlaceholderOrigin
		}
		stops = append(stops, Stop{
			City: city,
			Date: strings.TrimSpace(m[3]),
			Time: strings.TrimSpace(m[4]),
		})
	}
	return stops
}

func fallbackStops(in Input, tripType TripType) []Stop {
	origin := ""
	if m := originRe.FindStringSubmatch(in.Notes); m != nil {
		origin = CleanCity(m[1])
	}
	if origin == "" {
		origin = PlaceholderOrigin
	}

	destination := CleanCity(in.Destination)
	if destination == "" {
		destination = strings.TrimSpace(in.Destination)
	}
	if destination == "" {
		destination = "Destination"
	}

	stops := []Stop{
		{City: origin, Date: formatDate(in.StartDate)},
		{City: destination},
	}
	if tripType == TripTypeRoundTrip {
		stops = append(stops, Stop{City: origin, Date: formatDate(in.EndDate)})
	}
	return stops
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
