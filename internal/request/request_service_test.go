package request_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"go-travel-desk/internal/booking"
	"go-travel-desk/internal/events"
	"go-travel-desk/internal/messaging/kafka"
	"go-travel-desk/internal/request"
	requesterrors "go-travel-desk/internal/request/errors"
	"go-travel-desk/internal/shared/apperror"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRequestRepository struct {
	withTxFn            func(tx *sql.Tx) request.Repository
	createFn            func(ctx context.Context, r *request.TravelRequest) error
	findAllFn           func(ctx context.Context) ([]request.TravelRequest, error)
	findAllByEmployeeFn func(ctx context.Context, employeeID string) ([]request.TravelRequest, error)
	findByIDFn          func(ctx context.Context, id string) (*request.TravelRequest, error)
	updateFn            func(ctx context.Context, r *request.TravelRequest) error
	deleteFn            func(ctx context.Context, id string) error
}

func (f *fakeRequestRepository) WithTx(tx *sql.Tx) request.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRequestRepository) Create(ctx context.Context, r *request.TravelRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) FindAll(ctx context.Context) ([]request.TravelRequest, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindAllByEmployee(ctx context.Context, employeeID string) ([]request.TravelRequest, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeRequestRepository) FindByID(ctx context.Context, id string) (*request.TravelRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepository) Update(ctx context.Context, r *request.TravelRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, r)
	}
	return nil
}

func (f *fakeRequestRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeOutboxRepository struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	created  []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type requestServiceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service request.Service
	repo    *fakeRequestRepository
	outbox  *fakeOutboxRepository
}

func setupRequestServiceTest(t *testing.T) *requestServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRequestRepository{}
	outbox := &fakeOutboxRepository{}
	svc := request.NewServiceWithOutbox(db, repo, outbox, nil)

	return &requestServiceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,
		repo:    repo,
		outbox:  outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func employeeActor(id string) request.Actor {
	return request.Actor{
		ID:         id,
		Name:       "Asha Rao",
		Department: "Engineering",
		Role:       request.RoleEmployee,
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("success single destination", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := request.CreateTravelRequest{
			Destination: "Paris, France",
			StartDate:   "2024-03-10",
			EndDate:     "2024-03-15",
			Type:        "International",
			Purpose:     "Client workshop",
			Origin:      "London",
		}

		deps.repo.createFn = func(ctx context.Context, r *request.TravelRequest) error {
			assert.Equal(t, employeeID, r.EmployeeID.String())
			assert.Equal(t, "Asha Rao", r.EmployeeName)
			assert.Equal(t, "Paris, France", r.Destination)
			assert.Equal(t, request.StatusPendingManager, r.Status)
			assert.Equal(t, "Origin: London", r.ItineraryNotes)
			assert.Equal(t, 1, r.Version)
			assert.Equal(t, 0.0, r.Amount)
			return nil
		}

		resp, err := deps.service.Create(ctx, employeeActor(employeeID), req)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPendingManager, resp.Status)
		assert.Equal(t, "2024-03-10", resp.StartDate)
		assert.ElementsMatch(t, []string{request.StatusPendingAdmin, request.StatusRejected}, resp.AllowedNext)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, events.EventTypeRequestSubmitted, deps.outbox.created[0].EventType)
		assert.Equal(t, events.TravelRequestLifecycleTopic, deps.outbox.created[0].Topic)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success multi city forces destination label", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		req := request.CreateTravelRequest{
			Destination: "Delhi",
			StartDate:   "2024-02-01",
			EndDate:     "2024-02-05",
			Type:        "Domestic",
			Legs: []request.TripLegRequest{
				{From: "Mumbai", To: "Delhi", Date: "2024-02-01", Time: "09:00"},
				{From: "Delhi", To: "Bengaluru", Date: "2024-02-03", Time: "14:30"},
			},
		}

		deps.repo.createFn = func(ctx context.Context, r *request.TravelRequest) error {
			assert.Equal(t, request.DestinationMultiCity, r.Destination)
			assert.Equal(t,
				"1. Mumbai -> Delhi | 2024-02-01 | 09:00\n2. Delhi -> Bengaluru | 2024-02-03 | 14:30",
				r.ItineraryNotes)
			return nil
		}

		resp, err := deps.service.Create(ctx, employeeActor(employeeID), req)

		assert.NoError(t, err)
		assert.Equal(t, request.DestinationMultiCity, resp.Destination)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative multi city label without legs", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := request.CreateTravelRequest{
			Destination: request.DestinationMultiCity,
			StartDate:   "2024-02-01",
			EndDate:     "2024-02-05",
			Type:        "Domestic",
		}

		_, err := deps.service.Create(ctx, employeeActor(employeeID), req)

		assert.ErrorIs(t, err, requesterrors.ErrMultiCityOriginRequired)
	})

	t.Run("negative blank destination", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := request.CreateTravelRequest{
			Destination: "   ",
			StartDate:   "2024-02-01",
			EndDate:     "2024-02-05",
			Type:        "Domestic",
		}

		_, err := deps.service.Create(ctx, employeeActor(employeeID), req)

		assert.ErrorIs(t, err, requesterrors.ErrDestinationRequired)
	})

	t.Run("negative invalid date range", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := request.CreateTravelRequest{
			Destination: "Delhi",
			StartDate:   "2024-02-05",
			EndDate:     "2024-02-01",
			Type:        "Domestic",
		}

		_, err := deps.service.Create(ctx, employeeActor(employeeID), req)

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateRange)
		assert.Empty(t, deps.outbox.created)
	})

	t.Run("negative malformed date", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := request.CreateTravelRequest{
			Destination: "Delhi",
			StartDate:   "05-02-2024",
			EndDate:     "2024-02-07",
			Type:        "Domestic",
		}

		_, err := deps.service.Create(ctx, employeeActor(employeeID), req)

		assert.ErrorIs(t, err, requesterrors.ErrInvalidDateFormat)
	})

	t.Run("negative invalid actor id", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		req := request.CreateTravelRequest{
			Destination: "Delhi",
			StartDate:   "2024-02-01",
			EndDate:     "2024-02-02",
			Type:        "Domestic",
		}

		_, err := deps.service.Create(ctx, employeeActor("not-a-uuid"), req)

		assert.ErrorIs(t, err, requesterrors.ErrInvalidActorID)
	})
}

func TestRequestService_GetAll(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New().String()

	t.Run("employee sees only own requests", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllByEmployeeFn = func(ctx context.Context, eid string) ([]request.TravelRequest, error) {
			assert.Equal(t, employeeID, eid)
			return []request.TravelRequest{{ID: uuid.New(), EmployeeID: uuid.MustParse(employeeID)}}, nil
		}
		deps.repo.findAllFn = func(ctx context.Context) ([]request.TravelRequest, error) {
			t.Fatal("FindAll must not be called for employees")
			return nil, nil
		}

		resp, err := deps.service.GetAll(ctx, employeeActor(employeeID))

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
	})

	t.Run("manager sees everything", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findAllFn = func(ctx context.Context) ([]request.TravelRequest, error) {
			return []request.TravelRequest{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		}

		resp, err := deps.service.GetAll(ctx, request.Actor{ID: uuid.NewString(), Role: request.RoleManager})

		assert.NoError(t, err)
		assert.Len(t, resp, 2)
	})
}

func TestRequestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	employeeID := uuid.New()

	pendingManagerRecord := func() *request.TravelRequest {
		return &request.TravelRequest{
			ID:           requestID,
			EmployeeID:   employeeID,
			EmployeeName: "Asha Rao",
			Destination:  "Delhi",
			Status:       request.StatusPendingManager,
			Version:      1,
		}
	}

	t.Run("success manager approval emits notification and event", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			assert.Equal(t, requestID.String(), id)
			return pendingManagerRecord(), nil
		}
		deps.repo.updateFn = func(ctx context.Context, r *request.TravelRequest) error {
			assert.Equal(t, request.StatusPendingAdmin, r.Status)
			return nil
		}

		resp, err := deps.service.UpdateStatus(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleManager},
			requestID.String(),
			request.UpdateStatusRequest{Status: request.StatusPendingAdmin},
		)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusPendingAdmin, resp.Request.Status)
		assert.Equal(t, request.NotificationManagerApproved, resp.Notification)

		assert.Len(t, deps.outbox.created, 1)
		var event events.RequestStatusChangedEvent
		assert.NoError(t, json.Unmarshal(deps.outbox.created[0].Payload, &event))
		assert.Equal(t, request.StatusPendingManager, event.FromStatus)
		assert.Equal(t, request.StatusPendingAdmin, event.ToStatus)
		assert.Equal(t, request.NotificationManagerApproved, event.Notification)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success admin rejection stores reason", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		rec := pendingManagerRecord()
		rec.Status = request.StatusPendingAdmin
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return rec, nil
		}

		resp, err := deps.service.UpdateStatus(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleAdmin},
			requestID.String(),
			request.UpdateStatusRequest{
				Status:          request.StatusRejected,
				RejectionReason: "Budget exceeded",
			},
		)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusRejected, resp.Request.Status)
		if assert.NotNil(t, resp.Request.RejectionReason) {
			assert.Equal(t, "Budget exceeded", *resp.Request.RejectionReason)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success agent booking sets amount", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		rec := pendingManagerRecord()
		rec.Status = request.StatusProcessingAgent
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return rec, nil
		}

		details := &booking.Details{
			Flights: []booking.Segment{
				{From: "Delhi", To: "Mumbai", Mode: "flight", Cost: 5000, AgentFee: 500},
			},
		}

		resp, err := deps.service.UpdateStatus(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleAgent},
			requestID.String(),
			request.UpdateStatusRequest{
				Status:         request.StatusBooked,
				BookingDetails: details,
			},
		)

		assert.NoError(t, err)
		assert.Equal(t, request.StatusBooked, resp.Request.Status)
		assert.Equal(t, 5500.0, resp.Request.Amount)
		if assert.NotNil(t, resp.Request.BookingDetails) {
			assert.Equal(t, 5500.0, resp.Request.BookingDetails.TotalAmount)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative invalid transition rolls back", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return pendingManagerRecord(), nil
		}

		_, err := deps.service.UpdateStatus(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleManager},
			requestID.String(),
			request.UpdateStatusRequest{Status: request.StatusBooked},
		)

		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.outbox.created)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative employee cannot touch another employees request", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			rec := pendingManagerRecord()
			rec.Status = request.StatusActionRequired
			return rec, nil
		}

		_, err := deps.service.UpdateStatus(ctx,
			employeeActor(uuid.NewString()),
			requestID.String(),
			request.UpdateStatusRequest{
				Status: request.StatusProcessingAgent,
				Notes:  "Option A",
			},
		)

		assert.ErrorIs(t, err, requesterrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative version conflict surfaces", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return pendingManagerRecord(), nil
		}
		deps.repo.updateFn = func(ctx context.Context, r *request.TravelRequest) error {
			return requesterrors.ErrVersionConflict
		}

		_, err := deps.service.UpdateStatus(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleManager},
			requestID.String(),
			request.UpdateStatusRequest{Status: request.StatusPendingAdmin},
		)

		assert.ErrorIs(t, err, requesterrors.ErrVersionConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative unknown id", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return nil, gorm.ErrRecordNotFound
		}

		_, err := deps.service.UpdateStatus(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleManager},
			uuid.NewString(),
			request.UpdateStatusRequest{Status: request.StatusPendingAdmin},
		)

		assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestRequestService_GetItinerary(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()

	t.Run("success from itinerary notes", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return &request.TravelRequest{
				ID:             requestID,
				Destination:    "Paris, France",
				ItineraryNotes: "Origin: London",
				Status:         request.StatusPendingManager,
			}, nil
		}

		resp, err := deps.service.GetItinerary(ctx, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, "fallback", resp.Source)
		assert.Equal(t, "London", resp.Stops[0].City)
		assert.Equal(t, "Paris", resp.Stops[1].City)
	})

	t.Run("success booked flights win over notes", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		rec := &request.TravelRequest{
			ID:             requestID,
			Destination:    "Delhi",
			ItineraryNotes: "Origin: Chennai",
			Status:         request.StatusProcessingAgent,
		}
		_, err := request.ApplyTransition(rec, request.TransitionInput{
			Target:    request.StatusBooked,
			ActorRole: request.RoleAgent,
			BookingDetails: &booking.Details{
				Flights: []booking.Segment{
					{From: "Chennai", To: "Delhi", Cost: 4000},
				},
			},
		})
		assert.NoError(t, err)

		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return rec, nil
		}

		resp, err := deps.service.GetItinerary(ctx, requestID.String())

		assert.NoError(t, err)
		assert.Equal(t, "booking", resp.Source)
		assert.Equal(t, "Chennai", resp.Stops[0].City)
		assert.Equal(t, "Delhi", resp.Stops[1].City)
	})

	t.Run("negative invalid id", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.GetItinerary(ctx, "nope")

		assert.ErrorIs(t, err, requesterrors.ErrInvalidRequestID)
	})
}

func TestRequestService_Delete(t *testing.T) {
	ctx := context.Background()
	requestID := uuid.New()
	ownerID := uuid.New()

	record := func() *request.TravelRequest {
		return &request.TravelRequest{ID: requestID, EmployeeID: ownerID, Status: request.StatusPendingManager}
	}

	t.Run("success owner deletes", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return record(), nil
		}
		deleted := false
		deps.repo.deleteFn = func(ctx context.Context, id string) error {
			deleted = true
			return nil
		}

		err := deps.service.Delete(ctx, employeeActor(ownerID.String()), requestID.String())

		assert.NoError(t, err)
		assert.True(t, deleted)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success admin deletes", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return record(), nil
		}

		err := deps.service.Delete(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleAdmin},
			requestID.String())

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative non-owner employee", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return record(), nil
		}

		err := deps.service.Delete(ctx, employeeActor(uuid.NewString()), requestID.String())

		assert.ErrorIs(t, err, requesterrors.ErrNotRequestOwner)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative agent forbidden", func(t *testing.T) {
		deps := setupRequestServiceTest(t)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.TravelRequest, error) {
			return record(), nil
		}

		err := deps.service.Delete(ctx,
			request.Actor{ID: uuid.NewString(), Role: request.RoleAgent},
			requestID.String())

		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
