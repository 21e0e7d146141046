package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-travel-desk/internal/events"
	"go-travel-desk/internal/itinerary"
	"go-travel-desk/internal/messaging/kafka"
	requesterrors "go-travel-desk/internal/request/errors"
	"go-travel-desk/internal/shared/apperror"
	"go-travel-desk/internal/shared/contextutil"
	"go-travel-desk/internal/shared/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DestinationMultiCity is the literal destination label used for
// multi-city trips; the real route lives in the itinerary notes.
const DestinationMultiCity = "Multi City Trip"

// Actor is the session identity acting on a request, extracted from the
// authenticated token by the middleware.
type Actor struct {
	ID         string
	Name       string
	Avatar     string
	Department string
	Role       string
}

type Service interface {
	Create(ctx context.Context, actor Actor, req CreateTravelRequest) (TravelRequestResponse, error)
	GetAll(ctx context.Context, actor Actor) ([]TravelRequestResponse, error)
	GetByID(ctx context.Context, id string) (TravelRequestResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req UpdateStatusRequest) (UpdateStatusResponse, error)
	GetItinerary(ctx context.Context, id string) (ItineraryResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	outbox  kafka.OutboxRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	m *metrics.Metrics,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, metrics: m, logger: l}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateTravelRequest) (TravelRequestResponse, error) {
	s.logger.Debug("create travel request requested",
		zap.String("actor_id", actor.ID),
		zap.String("destination", req.Destination),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeID, err := uuid.Parse(actor.ID)
	if err != nil {
		return TravelRequestResponse{}, requesterrors.ErrInvalidActorID
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return TravelRequestResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return TravelRequestResponse{}, err
	}
	if startDate.After(endDate) {
		s.logger.Warn("create travel request validation failed",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return TravelRequestResponse{}, requesterrors.ErrInvalidDateRange
	}

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return TravelRequestResponse{}, requesterrors.ErrDestinationRequired
	}
	if destination == DestinationMultiCity && len(req.Legs) == 0 {
		return TravelRequestResponse{}, requesterrors.ErrMultiCityOriginRequired
	}
	itineraryNotes := buildItineraryNotes(req)
	if len(req.Legs) > 0 {
		destination = DestinationMultiCity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create travel request begin tx failed", zap.Error(err))
		return TravelRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec := &TravelRequest{
		ID:             uuid.New(),
		EmployeeID:     employeeID,
		EmployeeName:   actor.Name,
		EmployeeAvatar: actor.Avatar,
		Department:     actor.Department,
		Destination:    destination,
		StartDate:      startDate,
		EndDate:        endDate,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Type:           req.Type,
		Purpose:        req.Purpose,
		Status:         StatusPendingManager,
		Amount:         0,
		ItineraryNotes: itineraryNotes,
		SubmittedDate:  time.Now().UTC(),
		Version:        1,
	}

	if err := qtx.Create(ctx, rec); err != nil {
		s.logger.Error("create travel request persist failed", zap.Error(err))
		return TravelRequestResponse{}, err
	}

	if err := s.queueSubmittedEvent(ctx, tx, rec); err != nil {
		return TravelRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create travel request commit failed", zap.Error(err))
		return TravelRequestResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.RequestsCreated.Inc()
	}
	s.logger.Info("create travel request success",
		zap.String("request_id", rec.ID.String()),
		zap.String("employee_id", actor.ID),
	)

	return mapToResponse(*rec), nil
}

func (s *service) GetAll(ctx context.Context, actor Actor) ([]TravelRequestResponse, error) {
	var (
		requests []TravelRequest
		err      error
	)
	// Employees only ever see their own submissions.
	if actor.Role == RoleEmployee {
		requests, err = s.repo.FindAllByEmployee(ctx, actor.ID)
	} else {
		requests, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetByID(ctx context.Context, id string) (TravelRequestResponse, error) {
	rec, err := s.findByID(ctx, s.repo, id)
	if err != nil {
		return TravelRequestResponse{}, err
	}
	return mapToResponse(*rec), nil
}

func (s *service) UpdateStatus(ctx context.Context, actor Actor, id string, req UpdateStatusRequest) (UpdateStatusResponse, error) {
	s.logger.Debug("update travel request status requested",
		zap.String("request_id", id),
		zap.String("actor_id", actor.ID),
		zap.String("actor_role", actor.Role),
		zap.String("target_status", req.Status),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update status begin tx failed", zap.Error(err))
		return UpdateStatusResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := s.findByID(ctx, qtx, id)
	if err != nil {
		return UpdateStatusResponse{}, err
	}

	if actor.Role == RoleEmployee && rec.EmployeeID.String() != actor.ID {
		return UpdateStatusResponse{}, requesterrors.ErrNotRequestOwner
	}

	fromStatus := rec.Status
	notification, err := ApplyTransition(rec, TransitionInput{
		Target:          req.Status,
		ActorRole:       actor.Role,
		Notes:           req.Notes,
		BookingDetails:  req.BookingDetails,
		Amount:          req.Amount,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		s.logger.Warn("status transition rejected",
			zap.String("request_id", id),
			zap.String("from_status", fromStatus),
			zap.String("to_status", req.Status),
			zap.String("actor_role", actor.Role),
			zap.Error(err),
		)
		s.countFailedTransition(err)
		return UpdateStatusResponse{}, err
	}

	if err := qtx.Update(ctx, rec); err != nil {
		s.logger.Error("update status persist failed",
			zap.String("request_id", id),
			zap.String("target_status", req.Status),
			zap.Error(err),
		)
		return UpdateStatusResponse{}, err
	}

	if err := s.queueStatusChangedEvent(ctx, tx, rec, actor, fromStatus, notification); err != nil {
		return UpdateStatusResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update status commit failed",
			zap.String("request_id", id),
			zap.Error(err),
		)
		return UpdateStatusResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(rec.Status).Inc()
	}
	s.logger.Info("update status success",
		zap.String("request_id", id),
		zap.String("from_status", fromStatus),
		zap.String("to_status", rec.Status),
	)

	return UpdateStatusResponse{
		Request:      mapToResponse(*rec),
		Notification: notification,
	}, nil
}

func (s *service) GetItinerary(ctx context.Context, id string) (ItineraryResponse, error) {
	rec, err := s.findByID(ctx, s.repo, id)
	if err != nil {
		return ItineraryResponse{}, err
	}

	// Legacy single-field records carry everything in the combined view.
	notes := rec.ItineraryNotes
	if notes == "" {
		notes = rec.AgentNotes()
	}

	in := itinerary.Input{
		Destination: rec.Destination,
		StartDate:   rec.StartDate,
		EndDate:     rec.EndDate,
		Notes:       notes,
	}
	if rec.HasBooking() {
		in.Flights = rec.BookingDetails.Data().Flights
	}

	timeline := itinerary.BuildTimeline(in)
	return ItineraryResponse{
		TripType: string(timeline.TripType),
		Source:   timeline.Source,
		Stops:    timeline.Stops,
	}, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	rec, err := s.findByID(ctx, qtx, id)
	if err != nil {
		return err
	}

	switch actor.Role {
	case RoleAdmin:
	case RoleEmployee:
		if rec.EmployeeID.String() != actor.ID {
			return requesterrors.ErrNotRequestOwner
		}
	default:
		return apperror.ErrForbidden
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RequestsDeleted.Inc()
	}
	s.logger.Info("delete travel request success",
		zap.String("request_id", id),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

func (s *service) findByID(ctx context.Context, repo Repository, id string) (*TravelRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, requesterrors.ErrInvalidRequestID
	}
	rec, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *service) countFailedTransition(err error) {
	if s.metrics == nil {
		return
	}
	var appErr *apperror.AppError
	code := apperror.CodeInternalError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	s.metrics.TransitionsFailed.WithLabelValues(code).Inc()
}

func (s *service) queueSubmittedEvent(ctx context.Context, tx *sql.Tx, rec *TravelRequest) error {
	if s.outbox == nil {
		return nil
	}

	event := events.RequestSubmittedEvent{
		EventType:    events.EventTypeRequestSubmitted,
		RequestID:    rec.ID.String(),
		EmployeeID:   rec.EmployeeID.String(),
		EmployeeName: rec.EmployeeName,
		Destination:  rec.Destination,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "travel_request",
		AggregateID:   rec.ID.String(),
		EventType:     events.EventTypeRequestSubmitted,
		Topic:         events.TravelRequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) queueStatusChangedEvent(
	ctx context.Context,
	tx *sql.Tx,
	rec *TravelRequest,
	actor Actor,
	fromStatus string,
	notification string,
) error {
	if s.outbox == nil {
		return nil
	}

	event := events.RequestStatusChangedEvent{
		EventType:    events.EventTypeRequestStatusChanged,
		RequestID:    rec.ID.String(),
		EmployeeID:   rec.EmployeeID.String(),
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		FromStatus:   fromStatus,
		ToStatus:     rec.Status,
		Notification: notification,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "travel_request",
		AggregateID:   rec.ID.String(),
		EventType:     events.EventTypeRequestStatusChanged,
		Topic:         events.TravelRequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue status changed event failed",
			zap.String("request_id", rec.ID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// buildItineraryNotes writes the creation-time route metadata. Multi-city
// trips get numbered leg lines ("1. Mumbai -> Delhi | 2024-02-01 | 09:00");
// single and return trips get an "Origin: <city>" line.
func buildItineraryNotes(req CreateTravelRequest) string {
	if len(req.Legs) > 0 {
		var b strings.Builder
		for i, leg := range req.Legs {
			fmt.Fprintf(&b, "%d. %s -> %s | %s | %s\n", i+1,
				strings.TrimSpace(leg.From),
				strings.TrimSpace(leg.To),
				strings.TrimSpace(leg.Date),
				strings.TrimSpace(leg.Time),
			)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if origin := strings.TrimSpace(req.Origin); origin != "" {
		return "Origin: " + origin
	}
	return ""
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, requesterrors.ErrInvalidDateFormat
	}
	return t, nil
}
