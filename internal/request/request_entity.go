package request

import (
	"time"

	"go-travel-desk/internal/booking"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TravelRequest is one employee's trip submission and its approval/booking
// state. Employee name, avatar and department are a snapshot taken at
// submission time and are never re-synced with the user profile.
type TravelRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_travel_requests_employee"`

	EmployeeName   string `gorm:"type:varchar(120);not null"`
	EmployeeAvatar string `gorm:"type:text"`
	Department     string `gorm:"type:varchar(80)"`

	Destination string    `gorm:"type:varchar(160);not null"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	StartTime   string    `gorm:"type:varchar(40)"`
	EndTime     string    `gorm:"type:varchar(40)"`
	Type        string    `gorm:"type:varchar(20);not null;default:'Domestic'"`
	Purpose     string    `gorm:"type:text"`

	Status string  `gorm:"type:varchar(30);not null;default:'Pending Manager';index:idx_travel_requests_status"`
	Amount float64 `gorm:"type:numeric(12,2);not null;default:0"`

	// The agent-notes sum type. Legacy data kept everything in one
	// overloaded text field; these are its three explicit parts.
	ItineraryNotes string `gorm:"type:text"`
	AgentOptions   string `gorm:"type:text"`
	EmployeeReply  string `gorm:"type:text"`

	RejectionReason *string                             `gorm:"type:text"`
	BookingDetails  datatypes.JSONType[booking.Details] `gorm:"type:jsonb"`

	SubmittedDate time.Time `gorm:"not null"`
	Version       int       `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TravelRequest) TableName() string {
	return "travel_requests"
}

// AgentNotes renders the legacy single-field view of the notes: itinerary
// metadata is replaced by the agent's options once processing begins, and
// the employee reply is appended after the literal separator.
func (r *TravelRequest) AgentNotes() string {
	notes := r.ItineraryNotes
	if r.AgentOptions != "" {
		notes = r.AgentOptions
	}
	if r.EmployeeReply != "" {
		notes = notes + "\n\n" + ReplySeparator + "\n" + r.EmployeeReply
	}
	return notes
}

// HasBooking reports whether a finalized cost breakdown is attached.
func (r *TravelRequest) HasBooking() bool {
	return r.Status == StatusBooked
}
