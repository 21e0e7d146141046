package request

import (
	"time"

	"go-travel-desk/internal/booking"
	"go-travel-desk/internal/itinerary"
)

// TripLegRequest is one leg of a multi-city trip at submission time.
type TripLegRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
	Date string `json:"date"`
	Time string `json:"time"`
}

type CreateTravelRequest struct {
	Destination string           `json:"destination" binding:"required"`
	StartDate   string           `json:"start_date" binding:"required"`
	EndDate     string           `json:"end_date" binding:"required"`
	StartTime   string           `json:"start_time"`
	EndTime     string           `json:"end_time"`
	Type        string           `json:"type" binding:"required,oneof=Domestic International"`
	Purpose     string           `json:"purpose"`
	Origin      string           `json:"origin"`
	Legs        []TripLegRequest `json:"legs" binding:"omitempty,dive"`
}

type UpdateStatusRequest struct {
	Status          string           `json:"status" binding:"required,oneof='Pending Manager' 'Pending Admin' 'Processing (Agent)' 'Action Required' 'Booked' 'Rejected'"`
	Notes           string           `json:"notes"`
	BookingDetails  *booking.Details `json:"booking_details"`
	Amount          *float64         `json:"amount"`
	RejectionReason string           `json:"rejection_reason"`
}

type TravelRequestResponse struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	EmployeeAvatar string `json:"employee_avatar,omitempty"`
	Department     string `json:"department,omitempty"`

	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	Type        string `json:"type"`
	Purpose     string `json:"purpose,omitempty"`

	Status string  `json:"status"`
	Amount float64 `json:"amount"`

	AgentNotes     string `json:"agent_notes,omitempty"`
	ItineraryNotes string `json:"itinerary_notes,omitempty"`
	AgentOptions   string `json:"agent_options,omitempty"`
	EmployeeReply  string `json:"employee_reply,omitempty"`

	RejectionReason *string          `json:"rejection_reason,omitempty"`
	BookingDetails  *booking.Details `json:"booking_details,omitempty"`

	SubmittedDate string   `json:"submitted_date"`
	Version       int      `json:"version"`
	AllowedNext   []string `json:"allowed_next,omitempty"`
}

// UpdateStatusResponse pairs the updated record with the notification the
// transition emitted; silent transitions leave it empty.
type UpdateStatusResponse struct {
	Request      TravelRequestResponse `json:"request"`
	Notification string                `json:"notification,omitempty"`
}

type ItineraryResponse struct {
	TripType string           `json:"trip_type"`
	Source   string           `json:"source"`
	Stops    []itinerary.Stop `json:"stops"`
}

func mapToResponse(r TravelRequest) TravelRequestResponse {
	resp := TravelRequestResponse{
		ID:             r.ID.String(),
		EmployeeID:     r.EmployeeID.String(),
		EmployeeName:   r.EmployeeName,
		EmployeeAvatar: r.EmployeeAvatar,
		Department:     r.Department,
		Destination:    r.Destination,
		StartDate:      r.StartDate.Format("2006-01-02"),
		EndDate:        r.EndDate.Format("2006-01-02"),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Type:           r.Type,
		Purpose:        r.Purpose,
		Status:         r.Status,
		Amount:         r.Amount,
		AgentNotes:     r.AgentNotes(),
		ItineraryNotes: r.ItineraryNotes,
		AgentOptions:   r.AgentOptions,
		EmployeeReply:  r.EmployeeReply,
		SubmittedDate:  r.SubmittedDate.Format(time.RFC3339),
		Version:        r.Version,
		AllowedNext:    AllowedTargets(r.Status),
	}
	resp.RejectionReason = r.RejectionReason
	if r.HasBooking() {
		details := r.BookingDetails.Data()
		resp.BookingDetails = &details
	}
	return resp
}

func mapToListResponse(requests []TravelRequest) []TravelRequestResponse {
	resp := make([]TravelRequestResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp
}
