package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/egov-portal-api/internal/models"
)

func newRequest() *models.Request {
	return &models.Request{
		ID:            "req-1",
		RequestNumber: "REQ-1700000000000-001",
		UserID:        "cit-1",
		ServiceID:     "svc-1",
		Status:        models.StatusSubmitted,
		CitizenName:   "Jane Doe",
		CitizenEmail:  "jane@example.com",
	}
}

func TestTransitionStampsReviewFields(t *testing.T) {
	req := newRequest()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	Transition(req, TransitionInput{ActorID: "off-1", Status: models.StatusUnderReview, Now: now})

	assert.Equal(t, models.StatusUnderReview, req.Status)
	require.NotNil(t, req.ReviewedBy)
	assert.Equal(t, "off-1", *req.ReviewedBy)
	require.NotNil(t, req.ReviewedAt)
	assert.Equal(t, now, *req.ReviewedAt)
	assert.Nil(t, req.CompletedAt)
	assert.Nil(t, req.ReviewComments)
}

func TestTransitionSetsCompletedAtOnlyWhenCompleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, status := range []models.RequestStatus{
		models.StatusUnderReview, models.StatusApproved, models.StatusRejected,
	} {
		req := newRequest()
		Transition(req, TransitionInput{ActorID: "off-1", Status: status, Now: now})
		assert.Nil(t, req.CompletedAt, "status %s", status)
	}

	req := newRequest()
	Transition(req, TransitionInput{ActorID: "off-1", Status: models.StatusCompleted, Now: now})
	require.NotNil(t, req.CompletedAt)
	assert.Equal(t, now, *req.CompletedAt)
}

func TestTransitionKeepsComments(t *testing.T) {
	req := newRequest()
	Transition(req, TransitionInput{ActorID: "off-1", Status: models.StatusApproved, Comments: "ok"})

	require.NotNil(t, req.ReviewComments)
	assert.Equal(t, "ok", *req.ReviewComments)
}

func TestTransitionAllowsAnyStatusWrite(t *testing.T) {
	// No adjacency validation: submitted -> completed directly is accepted.
	req := newRequest()
	Transition(req, TransitionInput{ActorID: "off-1", Status: models.StatusCompleted})
	assert.Equal(t, models.StatusCompleted, req.Status)
	assert.NotNil(t, req.CompletedAt)
}

func TestTransitionEffectOrderAndTypes(t *testing.T) {
	cases := []struct {
		status   models.RequestStatus
		notifTyp models.NotificationType
	}{
		{models.StatusApproved, models.NotificationSuccess},
		{models.StatusRejected, models.NotificationError},
		{models.StatusUnderReview, models.NotificationInfo},
		{models.StatusCompleted, models.NotificationInfo},
	}

	for _, tc := range cases {
		req := newRequest()
		effects := Transition(req, TransitionInput{ActorID: "off-1", Status: tc.status, Comments: "note"})
		require.Len(t, effects, 2, "status %s", tc.status)

		notify, ok := effects[0].(NotifyUser)
		require.True(t, ok)
		assert.Equal(t, "cit-1", notify.UserID)
		assert.Equal(t, tc.notifTyp, notify.Type, "status %s", tc.status)
		assert.Contains(t, notify.Message, req.RequestNumber)
		assert.Contains(t, notify.Message, string(tc.status))

		email, ok := effects[1].(SendEmail)
		require.True(t, ok)
		assert.Equal(t, "jane@example.com", email.To)
		assert.Contains(t, email.Text, "note")
	}
}

func TestSubmittedEffects(t *testing.T) {
	req := newRequest()
	effects := Submitted(req)
	require.Len(t, effects, 2)

	notify := effects[0].(NotifyUser)
	assert.Equal(t, models.NotificationSuccess, notify.Type)
	assert.Equal(t, "Request Submitted", notify.Title)
	assert.Contains(t, notify.Message, req.RequestNumber)

	email := effects[1].(SendEmail)
	assert.Equal(t, "jane@example.com", email.To)
	assert.Contains(t, email.Subject, "Submitted")
}

func TestPaymentSucceededEffects(t *testing.T) {
	payment := &models.Payment{
		UserID:        "cit-1",
		RequestID:     "req-1",
		Amount:        110,
		TransactionID: "TXN-1700000000000-0042",
	}

	effects := PaymentSucceeded(payment, "Jane Doe", "jane@example.com", "REQ-1700000000000-001")
	require.Len(t, effects, 2)

	notify := effects[0].(NotifyUser)
	assert.Equal(t, models.NotificationSuccess, notify.Type)
	assert.Contains(t, notify.Message, "TXN-1700000000000-0042")

	email := effects[1].(SendEmail)
	assert.Equal(t, "Payment Confirmation", email.Subject)
	assert.Contains(t, email.Text, "110.00")
}

func TestPaymentFailedEmitsNotificationOnly(t *testing.T) {
	payment := &models.Payment{UserID: "cit-1", RequestID: "req-1", Amount: 55.5}

	effects := PaymentFailed(payment)
	require.Len(t, effects, 1)

	notify := effects[0].(NotifyUser)
	assert.Equal(t, models.NotificationError, notify.Type)
	assert.Contains(t, notify.Message, "55.50")
}
