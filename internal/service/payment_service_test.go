package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

type stubPaymentRepo struct {
	findByID      func(ctx context.Context, id string) (*models.Payment, error)
	findByRequest func(ctx context.Context, requestID string) (*models.Payment, error)
	exists        func(ctx context.Context, requestID string) (bool, error)
	list          func(ctx context.Context, filter models.PaymentFilter, userID *string) ([]models.Payment, int, error)
	create        func(ctx context.Context, payment *models.Payment) error
	updateStatus  func(ctx context.Context, id string, status models.PaymentStatus) error
	stats         func(ctx context.Context) (*models.PaymentStats, error)
}

func (s *stubPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return s.findByID(ctx, id)
}

func (s *stubPaymentRepo) FindByRequest(ctx context.Context, requestID string) (*models.Payment, error) {
	return s.findByRequest(ctx, requestID)
}

func (s *stubPaymentRepo) ExistsForRequest(ctx context.Context, requestID string) (bool, error) {
	return s.exists(ctx, requestID)
}

func (s *stubPaymentRepo) List(ctx context.Context, filter models.PaymentFilter, userID *string) ([]models.Payment, int, error) {
	return s.list(ctx, filter, userID)
}

func (s *stubPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return s.create(ctx, payment)
}

func (s *stubPaymentRepo) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	return s.updateStatus(ctx, id, status)
}

func (s *stubPaymentRepo) Stats(ctx context.Context) (*models.PaymentStats, error) {
	return s.stats(ctx)
}

type stubRequestReader struct {
	findByID func(ctx context.Context, id string) (*models.Request, error)
}

func (s *stubRequestReader) FindByID(ctx context.Context, id string) (*models.Request, error) {
	return s.findByID(ctx, id)
}

func newPaymentService(payments *stubPaymentRepo, requests *stubRequestReader, draw func() float64) (*PaymentService, *stubNotificationStore, *stubAuditWriter) {
	dispatcher, store := newTestDispatcher()
	audits := &stubAuditWriter{}
	svc := NewPaymentService(payments, requests, audits, dispatcher, nil, 0.9, draw, zap.NewNop())
	return svc, store, audits
}

func TestPaymentServiceSimulateSuccess(t *testing.T) {
	var created *models.Payment
	payments := &stubPaymentRepo{
		exists: func(context.Context, string) (bool, error) { return false, nil },
		create: func(_ context.Context, payment *models.Payment) error {
			created = payment
			return nil
		},
	}
	requests := &stubRequestReader{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	svc, store, _ := newPaymentService(payments, requests, func() float64 { return 0.1 })

	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	payment, err := svc.Simulate(context.Background(), citizen, &SimulatePaymentPayload{
		RequestID:     "req-1",
		PaymentMethod: models.MethodCreditCard,
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, models.PaymentCompleted, payment.PaymentStatus)
	assert.Equal(t, 25.0, payment.Amount)
	assert.True(t, strings.HasPrefix(payment.TransactionID, "TXN-"))
	require.NotNil(t, payment.ReceiptNumber)
	assert.True(t, strings.HasPrefix(*payment.ReceiptNumber, "RCP-"))
	require.NotNil(t, payment.PaymentDate)
	assert.Equal(t, "cit-1", payment.UserID)

	require.Len(t, store.created, 1)
	assert.Equal(t, "Payment Successful", store.created[0].Title)
}

func TestPaymentServiceSimulateFailedDraw(t *testing.T) {
	payments := &stubPaymentRepo{
		exists: func(context.Context, string) (bool, error) { return false, nil },
		create: func(context.Context, *models.Payment) error { return nil },
	}
	requests := &stubRequestReader{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	svc, store, _ := newPaymentService(payments, requests, func() float64 { return 0.95 })

	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	payment, err := svc.Simulate(context.Background(), citizen, &SimulatePaymentPayload{
		RequestID:     "req-1",
		PaymentMethod: models.MethodCreditCard,
	})

	// the failed payment row is still returned alongside the error
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentFailed, payment.PaymentStatus)
	assert.Nil(t, payment.PaymentDate)
	assert.Nil(t, payment.ReceiptNumber)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPaymentFailed.Code, appErr.Code)

	require.Len(t, store.created, 1)
	assert.Equal(t, models.NotificationError, store.created[0].Type)
}

func TestPaymentServiceSimulateConflictOnExistingPayment(t *testing.T) {
	var createCalled bool
	// One payment per request, regardless of the first one's outcome. A
	// request whose only payment was a failed draw is still blocked.
	payments := &stubPaymentRepo{
		exists: func(context.Context, string) (bool, error) { return true, nil },
		create: func(context.Context, *models.Payment) error {
			createCalled = true
			return nil
		},
	}
	requests := &stubRequestReader{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	svc, _, _ := newPaymentService(payments, requests, func() float64 { return 0.1 })

	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	_, err := svc.Simulate(context.Background(), citizen, &SimulatePaymentPayload{
		RequestID:     "req-1",
		PaymentMethod: models.MethodCash,
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.False(t, createCalled)
}

func TestPaymentServiceSimulateForbiddenForStranger(t *testing.T) {
	requests := &stubRequestReader{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	svc, _, _ := newPaymentService(&stubPaymentRepo{}, requests, func() float64 { return 0.1 })

	stranger := authz.Subject{ID: "cit-2", Role: models.RoleCitizen}
	_, err := svc.Simulate(context.Background(), stranger, &SimulatePaymentPayload{
		RequestID:     "req-1",
		PaymentMethod: models.MethodCreditCard,
	})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestPaymentServiceGetByRequestNoPayment(t *testing.T) {
	payments := &stubPaymentRepo{
		findByRequest: func(context.Context, string) (*models.Payment, error) {
			return nil, sql.ErrNoRows
		},
	}
	requests := &stubRequestReader{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	svc, _, _ := newPaymentService(payments, requests, func() float64 { return 0.1 })

	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	_, err := svc.GetByRequest(context.Background(), citizen, "req-1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestPaymentServiceRefund(t *testing.T) {
	var updatedStatus models.PaymentStatus
	payments := &stubPaymentRepo{
		findByID: func(context.Context, string) (*models.Payment, error) {
			return &models.Payment{
				ID:            "pay-1",
				RequestID:     "req-1",
				UserID:        "cit-1",
				Amount:        25,
				TransactionID: "TXN-1700000000000-0042",
				PaymentStatus: models.PaymentCompleted,
			}, nil
		},
		updateStatus: func(_ context.Context, _ string, status models.PaymentStatus) error {
			updatedStatus = status
			return nil
		},
	}
	svc, store, audits := newPaymentService(payments, &stubRequestReader{}, func() float64 { return 0.1 })

	admin := authz.Subject{ID: "adm-1", Role: models.RoleAdmin}
	payment, err := svc.Refund(context.Background(), admin, "pay-1")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentRefunded, payment.PaymentStatus)
	assert.Equal(t, models.PaymentRefunded, updatedStatus)

	require.Len(t, audits.logs, 1)
	assert.Equal(t, models.AuditActionRefund, audits.logs[0].Action)

	require.Len(t, store.created, 1)
	assert.Equal(t, "Payment Refunded", store.created[0].Title)
	assert.Equal(t, "cit-1", store.created[0].UserID)
}

func TestPaymentServiceRefundRequiresAdmin(t *testing.T) {
	svc, _, _ := newPaymentService(&stubPaymentRepo{}, &stubRequestReader{}, func() float64 { return 0.1 })

	dep := "dep-1"
	head := authz.Subject{ID: "hd-1", Role: models.RoleDepartmentHead, DepartmentID: &dep}
	_, err := svc.Refund(context.Background(), head, "pay-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestPaymentServiceRefundOnlyCompleted(t *testing.T) {
	payments := &stubPaymentRepo{
		findByID: func(context.Context, string) (*models.Payment, error) {
			return &models.Payment{ID: "pay-1", PaymentStatus: models.PaymentFailed}, nil
		},
	}
	svc, _, _ := newPaymentService(payments, &stubRequestReader{}, func() float64 { return 0.1 })

	admin := authz.Subject{ID: "adm-1", Role: models.RoleAdmin}
	_, err := svc.Refund(context.Background(), admin, "pay-1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestPaymentServiceListScopesNonAdminsToSelf(t *testing.T) {
	var gotUserID *string
	payments := &stubPaymentRepo{
		list: func(_ context.Context, _ models.PaymentFilter, userID *string) ([]models.Payment, int, error) {
			gotUserID = userID
			return nil, 0, nil
		},
	}
	svc, _, _ := newPaymentService(payments, &stubRequestReader{}, func() float64 { return 0.1 })

	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	_, _, err := svc.List(context.Background(), citizen, models.PaymentFilter{})
	require.NoError(t, err)
	require.NotNil(t, gotUserID)
	assert.Equal(t, "cit-1", *gotUserID)

	admin := authz.Subject{ID: "adm-1", Role: models.RoleAdmin}
	_, _, err = svc.List(context.Background(), admin, models.PaymentFilter{})
	require.NoError(t, err)
	assert.Nil(t, gotUserID)
}
