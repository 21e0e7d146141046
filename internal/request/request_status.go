package request

import (
	"strings"

	"go-travel-desk/internal/booking"
	requesterrors "go-travel-desk/internal/request/errors"

	"gorm.io/datatypes"
)

// Status values are wire-compatible strings; no other value is ever
// persisted or observable.
const (
	StatusPendingManager  = "Pending Manager"
	StatusPendingAdmin    = "Pending Admin"
	StatusProcessingAgent = "Processing (Agent)"
	StatusActionRequired  = "Action Required"
	StatusBooked          = "Booked"
	StatusRejected        = "Rejected"
)

// Actor roles.
const (
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleAdmin      = "admin"
	RoleAgent      = "agent"
	RoleSuperAdmin = "super_admin"
)

// ReplySeparator is the literal marker that precedes the employee reply in
// the legacy combined notes view.
const ReplySeparator = "USER SELECTION"

// Notification texts emitted per transition.
const (
	NotificationManagerApproved = "Request approved by Manager. Sent to Admin."
	NotificationAdminApproved   = "Request approved. Sent to Travel Desk."
	NotificationRejected        = "Travel request was rejected."
	NotificationOptionsSent     = "Travel Agent has sent options."
	NotificationBooked          = "Travel booking confirmed!"
)

type transitionRule struct {
	from         string
	to           string
	role         string
	notification string
}

// transitionTable is the closed set of allowed status changes. Anything
// absent here is invalid, including any write that would move a record
// backward; the only loop is Processing (Agent) <-> Action Required while
// the agent and employee negotiate options.
var transitionTable = []transitionRule{
	{from: StatusPendingManager, to: StatusPendingAdmin, role: RoleManager, notification: NotificationManagerApproved},
	{from: StatusPendingManager, to: StatusRejected, role: RoleManager, notification: NotificationRejected},
	{from: StatusPendingAdmin, to: StatusProcessingAgent, role: RoleAdmin, notification: NotificationAdminApproved},
	{from: StatusPendingAdmin, to: StatusRejected, role: RoleAdmin, notification: NotificationRejected},
	{from: StatusProcessingAgent, to: StatusActionRequired, role: RoleAgent, notification: NotificationOptionsSent},
	{from: StatusProcessingAgent, to: StatusBooked, role: RoleAgent, notification: NotificationBooked},
	{from: StatusActionRequired, to: StatusProcessingAgent, role: RoleEmployee, notification: ""},
}

// TransitionInput is the side payload a transition may require.
type TransitionInput struct {
	Target          string
	ActorRole       string
	Notes           string
	BookingDetails  *booking.Details
	Amount          *float64
	RejectionReason string
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPendingManager, StatusPendingAdmin, StatusProcessingAgent,
		StatusActionRequired, StatusBooked, StatusRejected:
		return true
	}
	return false
}

func IsTerminalStatus(s string) bool {
	return s == StatusBooked || s == StatusRejected
}

// AllowedTargets lists the statuses reachable from the given one.
func AllowedTargets(from string) []string {
	var targets []string
	for _, rule := range transitionTable {
		if rule.from == from {
			targets = append(targets, rule.to)
		}
	}
	return targets
}

func findRule(from, to string) *transitionRule {
	for i := range transitionTable {
		if transitionTable[i].from == from && transitionTable[i].to == to {
			return &transitionTable[i]
		}
	}
	return nil
}

// ApplyTransition validates the (current status, target status, actor
// role) triple against the transition table, applies the required side
// payload to the record and returns the notification text to emit. The
// record is only mutated on success.
func ApplyTransition(rec *TravelRequest, in TransitionInput) (string, error) {
	if IsTerminalStatus(rec.Status) {
		return "", requesterrors.ErrRequestClosed
	}
	if !IsValidStatus(in.Target) {
		return "", requesterrors.ErrInvalidStatusTransition
	}
	rule := findRule(rec.Status, in.Target)
	if rule == nil {
		return "", requesterrors.ErrInvalidStatusTransition
	}
	if rule.role != in.ActorRole {
		return "", requesterrors.ErrActorNotAllowed
	}

	switch in.Target {
	case StatusRejected:
		reason := strings.TrimSpace(in.RejectionReason)
		if reason == "" {
			return "", requesterrors.ErrRejectionReasonRequired
		}
		rec.RejectionReason = &reason

	case StatusActionRequired:
		options := strings.TrimSpace(in.Notes)
		if options == "" {
			return "", requesterrors.ErrAgentOptionsRequired
		}
		rec.AgentOptions = options
		// A fresh round of options supersedes any earlier reply.
		rec.EmployeeReply = ""

	case StatusBooked:
		if in.BookingDetails == nil {
			return "", requesterrors.ErrBookingDetailsRequired
		}
		details := *in.BookingDetails
		// Validation sees the breakdown as submitted, so a negative cost
		// is rejected even on a deferred hotel line. Zeroing happens after.
		if err := details.Validate(); err != nil {
			return "", err
		}
		details.NormalizeDeferredHotels()
		total := details.Total()
		if in.Amount != nil && *in.Amount != total {
			return "", requesterrors.ErrAmountMismatch
		}
		details.TotalAmount = total
		rec.Amount = total
		rec.BookingDetails = datatypes.NewJSONType(details)

	case StatusProcessingAgent:
		// Either the admin approval or the employee reply loop.
		if rec.Status == StatusActionRequired {
			reply := strings.TrimSpace(in.Notes)
			if reply == "" {
				return "", requesterrors.ErrEmployeeReplyRequired
			}
			rec.EmployeeReply = reply
		}
	}

	rec.Status = rule.to
	return rule.notification, nil
}
