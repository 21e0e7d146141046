package booking

// Hotel booking statuses. Deferred hotels stay in the breakdown but must
// not contribute to the total.
const (
	HotelStatusConfirmed = "Confirmed"
	HotelStatusBookLater = "Book Later"
)

// Segment is one point-to-point transport leg (flight or train).
type Segment struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Mode          string  `json:"mode"`
	Airline       string  `json:"airline,omitempty"`
	FlightNumber  string  `json:"flightNumber,omitempty"`
	DepartureTime string  `json:"departureTime,omitempty"`
	ArrivalTime   string  `json:"arrivalTime,omitempty"`
	Cost          float64 `json:"cost"`
	AgentFee      float64 `json:"agentFee"`
	TicketFile    string  `json:"ticketFile,omitempty"`
}

type HotelBooking struct {
	City          string  `json:"city"`
	HotelName     string  `json:"hotelName"`
	CheckIn       string  `json:"checkIn,omitempty"`
	CheckOut      string  `json:"checkOut,omitempty"`
	Cost          float64 `json:"cost"`
	AgentFee      float64 `json:"agentFee"`
	BookingStatus string  `json:"bookingStatus"`
	BookingFile   string  `json:"bookingFile,omitempty"`
}

type CabExpense struct {
	Cost     float64 `json:"cost"`
	AgentFee float64 `json:"agentFee"`
	Remarks  string  `json:"remarks,omitempty"`
}

type OtherExpense struct {
	Cost        float64 `json:"cost"`
	AgentFee    float64 `json:"agentFee"`
	Description string  `json:"description,omitempty"`
}

// Details is the finalized cost breakdown attached when a request is booked.
// Field names follow the persisted wire shape.
type Details struct {
	Flights     []Segment      `json:"flights"`
	Hotels      []HotelBooking `json:"hotels"`
	Cab         CabExpense     `json:"cab"`
	Other       OtherExpense   `json:"other"`
	TotalAmount float64        `json:"totalAmount"`
}

// Total sums every priced line item. Hotels contribute only while Confirmed.
func (d Details) Total() float64 {
	total := 0.0
	for _, f := range d.Flights {
		total += f.Cost + f.AgentFee
	}
	for _, h := range d.Hotels {
		if h.BookingStatus == HotelStatusConfirmed {
			total += h.Cost + h.AgentFee
		}
	}
	total += d.Cab.Cost + d.Cab.AgentFee
	total += d.Other.Cost + d.Other.AgentFee
	return total
}

// NormalizeDeferredHotels force-resets cost fields of deferred hotels to
// zero so the persisted breakdown always matches the displayed total.
func (d *Details) NormalizeDeferredHotels() {
	for i := range d.Hotels {
		if d.Hotels[i].BookingStatus != HotelStatusConfirmed {
			d.Hotels[i].Cost = 0
			d.Hotels[i].AgentFee = 0
		}
	}
}

// Validate rejects negative cost/fee anywhere in the breakdown and unknown
// hotel booking statuses.
func (d Details) Validate() error {
	for _, f := range d.Flights {
		if f.Cost < 0 || f.AgentFee < 0 {
			return ErrNegativeAmount
		}
	}
	for _, h := range d.Hotels {
		if h.Cost < 0 || h.AgentFee < 0 {
			return ErrNegativeAmount
		}
		switch h.BookingStatus {
		case HotelStatusConfirmed, HotelStatusBookLater:
		default:
			return ErrInvalidHotelStatus
		}
	}
	if d.Cab.Cost < 0 || d.Cab.AgentFee < 0 {
		return ErrNegativeAmount
	}
	if d.Other.Cost < 0 || d.Other.AgentFee < 0 {
		return ErrNegativeAmount
	}
	return nil
}
