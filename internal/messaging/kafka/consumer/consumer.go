// Package consumer delivers lifecycle notifications. Toast/UI delivery is
// an external collaborator; this consumer is the service-side end of it,
// decoding lifecycle events and handing the notification text to a sink.
package consumer

import (
	"context"
	"encoding/json"

	"go-travel-desk/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// NotificationSink receives the user-facing notification text for a
// status change. The default sink just logs it.
type NotificationSink interface {
	Notify(ctx context.Context, employeeID, notification string) error
}

type logSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) NotificationSink {
	return &logSink{logger: logger.Named("notification.sink")}
}

func (s *logSink) Notify(_ context.Context, employeeID, notification string) error {
	s.logger.Info("notification delivered",
		zap.String("employee_id", employeeID),
		zap.String("notification", notification),
	)
	return nil
}

func ConsumeRequestLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	sink NotificationSink,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_lifecycle")
	log.Info("request lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request lifecycle consumer stopped")
				return
			}
			log.Error("fetch request lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.RequestStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode request lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		// Silent transitions (employee reply) carry no notification.
		if event.Notification != "" {
			if err := sink.Notify(ctx, event.EmployeeID, event.Notification); err != nil {
				log.Error("deliver notification failed",
					zap.String("request_id", event.RequestID),
					zap.Error(err),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit request lifecycle message failed", zap.Error(err))
		}
	}
}
