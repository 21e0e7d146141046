package events

import "time"

const TravelRequestLifecycleTopic = "travel.request.lifecycle.v1"

// Event types carried on the lifecycle topic.
const (
	EventTypeRequestSubmitted     = "request_submitted"
	EventTypeRequestStatusChanged = "request_status_changed"
)

type RequestSubmittedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Destination  string    `json:"destination"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// RequestStatusChangedEvent is written to the outbox in the same
// transaction as the status update. Notification is the toast text the
// consumer delivers; it is empty for silent transitions.
type RequestStatusChangedEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id"`
	EmployeeID   string    `json:"employee_id"`
	ActorID      string    `json:"actor_id"`
	ActorRole    string    `json:"actor_role"`
	FromStatus   string    `json:"from_status"`
	ToStatus     string    `json:"to_status"`
	Notification string    `json:"notification,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
