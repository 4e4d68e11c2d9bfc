package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/workflow"
	"github.com/noah-isme/egov-portal-api/pkg/config"
	"github.com/noah-isme/egov-portal-api/pkg/jobs"
	"github.com/noah-isme/egov-portal-api/pkg/mailer"
)

// notificationStore is the slice of the notification repository the
// dispatcher needs.
type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	MarkEmailSent(ctx context.Context, id string) error
}

// emailJob carries a rendered message through the queue, tied back to the
// notification it accompanies so delivery can be recorded.
type emailJob struct {
	NotificationID string
	Message        mailer.Message
}

// Dispatcher executes lifecycle side effects after the authoritative state
// write. Notifications are persisted synchronously; emails go through a
// buffered worker queue with retries. A failing effect is logged and never
// propagated to the triggering operation.
type Dispatcher struct {
	notifications notificationStore
	sender        mailer.Sender
	metrics       *MetricsService
	queue         *jobs.Queue
	logger        *zap.Logger
}

// NewDispatcher wires the dispatcher and its email queue.
func NewDispatcher(notifications notificationStore, sender mailer.Sender, metrics *MetricsService, cfg config.EmailConfig, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		notifications: notifications,
		sender:        sender,
		metrics:       metrics,
		logger:        logger,
	}
	d.queue = jobs.NewQueue("emails", d.handleEmailJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return d
}

// Start launches the email workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the email workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Dispatch executes the effects in order. A SendEmail effect is associated
// with the notification created immediately before it in the same batch, so
// successful delivery flips that notification's email flag.
func (d *Dispatcher) Dispatch(ctx context.Context, effects []workflow.Effect) {
	var lastNotificationID string

	for _, effect := range effects {
		switch e := effect.(type) {
		case workflow.NotifyUser:
			notification := &models.Notification{
				ID:      uuid.NewString(),
				UserID:  e.UserID,
				Title:   e.Title,
				Message: e.Message,
				Type:    e.Type,
			}
			if e.RequestID != "" {
				requestID := e.RequestID
				notification.RequestID = &requestID
			}
			if err := d.notifications.Create(ctx, notification); err != nil {
				d.logger.Sugar().Errorw("failed to persist notification", "user_id", e.UserID, "error", err)
				continue
			}
			d.metrics.RecordNotification()
			lastNotificationID = notification.ID

		case workflow.SendEmail:
			job := jobs.Job{
				ID:   uuid.NewString(),
				Type: "email",
				Payload: emailJob{
					NotificationID: lastNotificationID,
					Message: mailer.Message{
						To:      e.To,
						ToName:  e.ToName,
						Subject: e.Subject,
						Text:    e.Text,
						HTML:    e.HTML,
					},
				},
			}
			if err := d.queue.Enqueue(job); err != nil {
				d.logger.Sugar().Errorw("failed to enqueue email", "to", e.To, "error", err)
			}

		default:
			d.logger.Sugar().Warnw("unknown effect type", "effect", fmt.Sprintf("%T", effect))
		}
	}
}

func (d *Dispatcher) handleEmailJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		return fmt.Errorf("unexpected email payload type %T", job.Payload)
	}

	if err := d.sender.Send(payload.Message); err != nil {
		d.metrics.RecordEmail("failure")
		return err
	}
	d.metrics.RecordEmail("success")

	if payload.NotificationID != "" {
		if err := d.notifications.MarkEmailSent(ctx, payload.NotificationID); err != nil {
			d.logger.Sugar().Warnw("email sent but flag update failed", "notification_id", payload.NotificationID, "error", err)
		}
	}
	return nil
}
