package workflow

import (
	"fmt"
	"time"

	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/pkg/mailer"
)

// Effect is a side effect emitted by a lifecycle step. Effects are executed
// by the dispatcher after the authoritative state write; they are advisory
// and never roll back the triggering operation.
type Effect interface {
	effect()
}

// NotifyUser creates an in-app notification for a user.
type NotifyUser struct {
	UserID    string
	RequestID string
	Title     string
	Message   string
	Type      models.NotificationType
}

func (NotifyUser) effect() {}

// SendEmail dispatches a rendered email, best-effort.
type SendEmail struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

func (SendEmail) effect() {}

// TransitionInput describes a staff status change.
type TransitionInput struct {
	ActorID  string
	Status   models.RequestStatus
	Comments string
	Now      time.Time
}

// Transition applies a status change to the request in place and returns the
// ordered side effects. Any status value is accepted for any current state:
// role gating is the only guard, matching the portal's observable behaviour.
// Review fields are stamped on every status-changing call and completedAt is
// set exactly when the new status is completed.
func Transition(req *models.Request, in TransitionInput) []Effect {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	req.Status = in.Status
	req.ReviewedBy = &in.ActorID
	req.ReviewedAt = &now
	if in.Comments != "" {
		req.ReviewComments = &in.Comments
	}
	if in.Status == models.StatusCompleted {
		req.CompletedAt = &now
	}
	req.UpdatedAt = now

	subject, text, html := mailer.RequestStatusUpdated(req.CitizenName, req.RequestNumber, string(in.Status), in.Comments)

	return []Effect{
		NotifyUser{
			UserID:    req.UserID,
			RequestID: req.ID,
			Title:     "Request Status Updated",
			Message:   fmt.Sprintf("Your request #%s status has been updated to %s.", req.RequestNumber, in.Status),
			Type:      notificationTypeFor(in.Status),
		},
		SendEmail{
			To:      req.CitizenEmail,
			ToName:  req.CitizenName,
			Subject: subject,
			Text:    text,
			HTML:    html,
		},
	}
}

// Submitted returns the side effects of a freshly created request.
func Submitted(req *models.Request) []Effect {
	subject, text, html := mailer.RequestSubmitted(req.CitizenName, req.RequestNumber)

	return []Effect{
		NotifyUser{
			UserID:    req.UserID,
			RequestID: req.ID,
			Title:     "Request Submitted",
			Message:   fmt.Sprintf("Your service request #%s has been submitted successfully.", req.RequestNumber),
			Type:      models.NotificationSuccess,
		},
		SendEmail{
			To:      req.CitizenEmail,
			ToName:  req.CitizenName,
			Subject: subject,
			Text:    text,
			HTML:    html,
		},
	}
}

// PaymentSucceeded returns the side effects of a successful payment draw:
// a success notification plus a confirmation email.
func PaymentSucceeded(p *models.Payment, citizenName, citizenEmail, requestNumber string) []Effect {
	subject, text, html := mailer.PaymentConfirmation(citizenName, requestNumber, p.Amount, p.TransactionID)

	return []Effect{
		NotifyUser{
			UserID:    p.UserID,
			RequestID: p.RequestID,
			Title:     "Payment Successful",
			Message:   fmt.Sprintf("Payment of $%.2f completed successfully. Transaction ID: %s", p.Amount, p.TransactionID),
			Type:      models.NotificationSuccess,
		},
		SendEmail{
			To:      citizenEmail,
			ToName:  citizenName,
			Subject: subject,
			Text:    text,
			HTML:    html,
		},
	}
}

// PaymentFailed returns the side effects of a failed payment draw: an error
// notification only, no email.
func PaymentFailed(p *models.Payment) []Effect {
	return []Effect{
		NotifyUser{
			UserID:    p.UserID,
			RequestID: p.RequestID,
			Title:     "Payment Failed",
			Message:   fmt.Sprintf("Payment of $%.2f failed. Please try again.", p.Amount),
			Type:      models.NotificationError,
		},
	}
}

func notificationTypeFor(status models.RequestStatus) models.NotificationType {
	switch status {
	case models.StatusApproved:
		return models.NotificationSuccess
	case models.StatusRejected:
		return models.NotificationError
	default:
		return models.NotificationInfo
	}
}
