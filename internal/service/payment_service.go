package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/export"
	"github.com/noah-isme/egov-portal-api/pkg/identifier"
)

// paymentRepository is the slice of the payment repository the service uses.
type paymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByRequest(ctx context.Context, requestID string) (*models.Payment, error)
	ExistsForRequest(ctx context.Context, requestID string) (bool, error)
	List(ctx context.Context, filter models.PaymentFilter, userID *string) ([]models.Payment, int, error)
	Create(ctx context.Context, payment *models.Payment) error
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error
	Stats(ctx context.Context) (*models.PaymentStats, error)
}

// requestReader resolves requests for authorization and amount lookup.
type requestReader interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
}

// SimulatePaymentPayload is the payload for running a payment simulation.
type SimulatePaymentPayload struct {
	RequestID     string               `json:"requestId" validate:"required"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"required,oneof=credit_card debit_card bank_transfer cash mobile_wallet"`
}

// PaymentService implements the payment simulation, refunds and receipts.
// The gateway draw is injected so tests control the outcome.
type PaymentService struct {
	payments    paymentRepository
	requests    requestReader
	audits      auditWriter
	dispatcher  *Dispatcher
	metrics     *MetricsService
	pdf         *export.PDFExporter
	successRate float64
	draw        func() float64
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPaymentService creates a PaymentService. draw returns a uniform value
// in [0,1); a draw below successRate counts as a successful charge.
func NewPaymentService(payments paymentRepository, requests requestReader, audits auditWriter, dispatcher *Dispatcher, metrics *MetricsService, successRate float64, draw func() float64, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		payments:    payments,
		requests:    requests,
		audits:      audits,
		dispatcher:  dispatcher,
		metrics:     metrics,
		pdf:         export.NewPDFExporter(),
		successRate: successRate,
		draw:        draw,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Simulate runs the payment simulation for a request. The amount always
// equals the catalog fee; client-supplied amounts are ignored. Both outcomes
// persist a payment row; a failed draw additionally returns a payment-failed
// error so the handler can report it while still exposing the record.
func (s *PaymentService) Simulate(ctx context.Context, sub authz.Subject, payload *SimulatePaymentPayload) (*models.Payment, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, validationFailure(err)
	}

	request, err := s.requests.FindByID(ctx, payload.RequestID)
	if err != nil {
		return nil, notFoundOr(err, "request not found")
	}

	if !authz.Can(sub, authz.OpPaymentSimulate, requestScope(request)) {
		return nil, appErrors.ErrForbidden
	}

	exists, err := s.payments.ExistsForRequest(ctx, request.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment already exists for this request")
	}

	succeeded := s.draw() < s.successRate
	now := time.Now().UTC()

	payment := &models.Payment{
		TransactionID: identifier.Transaction(),
		RequestID:     request.ID,
		UserID:        sub.ID,
		Amount:        request.ServiceFee,
		PaymentMethod: payload.PaymentMethod,
	}
	if succeeded {
		payment.PaymentStatus = models.PaymentCompleted
		payment.PaymentDate = &now
		receipt := identifier.Receipt()
		payment.ReceiptNumber = &receipt
	} else {
		payment.PaymentStatus = models.PaymentFailed
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, appErrors.FromError(err)
	}
	payment.RequestNumber = request.RequestNumber

	if succeeded {
		s.metrics.RecordPayment("completed")
		s.dispatcher.Dispatch(ctx, workflow.PaymentSucceeded(payment, request.CitizenName, request.CitizenEmail, request.RequestNumber))
		s.logger.Sugar().Infow("payment completed",
			"payment_id", payment.ID, "request_id", request.ID, "amount", payment.Amount)
		return payment, nil
	}

	s.metrics.RecordPayment("failed")
	s.dispatcher.Dispatch(ctx, workflow.PaymentFailed(payment))
	s.logger.Sugar().Infow("payment failed",
		"payment_id", payment.ID, "request_id", request.ID, "amount", payment.Amount)
	return payment, appErrors.ErrPaymentFailed
}

// Get returns a payment by ID, authorized through its request.
func (s *PaymentService) Get(ctx context.Context, sub authz.Subject, id string) (*models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "payment not found")
	}
	if err := s.authorizeRead(ctx, sub, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// GetByRequest returns the payment recorded for a request.
func (s *PaymentService) GetByRequest(ctx context.Context, sub authz.Subject, requestID string) (*models.Payment, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "request not found")
	}
	if !authz.Can(sub, authz.OpPaymentRead, requestScope(request)) {
		return nil, appErrors.ErrForbidden
	}

	payment, err := s.payments.FindByRequest(ctx, requestID)
	if err != nil {
		return nil, notFoundOr(err, "no payment found for this request")
	}
	return payment, nil
}

// List returns payments: admins across all users, everyone else their own.
func (s *PaymentService) List(ctx context.Context, sub authz.Subject, filter models.PaymentFilter) ([]models.Payment, int, error) {
	var userID *string
	if !authz.Can(sub, authz.OpPaymentList, authz.Scope{}) {
		id := sub.ID
		userID = &id
	}

	payments, total, err := s.payments.List(ctx, filter, userID)
	if err != nil {
		return nil, 0, appErrors.FromError(err)
	}
	return payments, total, nil
}

// Stats returns global payment aggregates, admin-only.
func (s *PaymentService) Stats(ctx context.Context, sub authz.Subject) (*models.PaymentStats, error) {
	if !authz.Can(sub, authz.OpPaymentList, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	stats, err := s.payments.Stats(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return stats, nil
}

// Refund marks a completed payment as refunded and notifies the payer.
func (s *PaymentService) Refund(ctx context.Context, sub authz.Subject, id string) (*models.Payment, error) {
	if !authz.Can(sub, authz.OpPaymentRefund, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}

	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "payment not found")
	}
	if payment.PaymentStatus != models.PaymentCompleted {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only completed payments can be refunded")
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, models.PaymentRefunded); err != nil {
		return nil, appErrors.FromError(err)
	}
	payment.PaymentStatus = models.PaymentRefunded

	actorID := sub.ID
	paymentID := payment.ID
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionRefund,
		Resource:   "payment",
		ResourceID: &paymentID,
	}
	if err := s.audits.CreateAuditLog(ctx, log); err != nil {
		s.logger.Sugar().Warnw("failed to write audit log", "action", log.Action, "error", err)
	}

	s.dispatcher.Dispatch(ctx, []workflow.Effect{
		workflow.NotifyUser{
			UserID:    payment.UserID,
			RequestID: payment.RequestID,
			Title:     "Payment Refunded",
			Message:   fmt.Sprintf("Your payment of $%.2f (transaction %s) has been refunded.", payment.Amount, payment.TransactionID),
			Type:      models.NotificationInfo,
		},
	})

	s.logger.Sugar().Infow("payment refunded", "payment_id", payment.ID, "actor", sub.ID)
	return payment, nil
}

// Receipt renders a PDF receipt for a completed or refunded payment.
func (s *PaymentService) Receipt(ctx context.Context, sub authz.Subject, id string) ([]byte, *models.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "payment not found")
	}
	if err := s.authorizeRead(ctx, sub, payment); err != nil {
		return nil, nil, err
	}
	if payment.PaymentStatus != models.PaymentCompleted && payment.PaymentStatus != models.PaymentRefunded {
		return nil, nil, appErrors.Clone(appErrors.ErrConflict, "no receipt available for this payment")
	}

	receiptNumber := ""
	if payment.ReceiptNumber != nil {
		receiptNumber = *payment.ReceiptNumber
	}
	paidAt := ""
	if payment.PaymentDate != nil {
		paidAt = payment.PaymentDate.Format("2006-01-02 15:04:05 MST")
	}

	fields := [][2]string{
		{"Receipt Number", receiptNumber},
		{"Transaction ID", payment.TransactionID},
		{"Request Number", payment.RequestNumber},
		{"Amount", fmt.Sprintf("$%.2f", payment.Amount)},
		{"Payment Method", string(payment.PaymentMethod)},
		{"Status", string(payment.PaymentStatus)},
		{"Payment Date", paidAt},
	}

	pdf, err := s.pdf.RenderReceipt(fields, "Payment Receipt")
	if err != nil {
		return nil, nil, appErrors.FromError(err)
	}
	return pdf, payment, nil
}

func (s *PaymentService) authorizeRead(ctx context.Context, sub authz.Subject, payment *models.Payment) error {
	request, err := s.requests.FindByID(ctx, payment.RequestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Orphaned payment: fall back to payer-or-admin.
			if payment.UserID == sub.ID || sub.Role == models.RoleAdmin {
				return nil
			}
			return appErrors.ErrForbidden
		}
		return appErrors.FromError(err)
	}
	if !authz.Can(sub, authz.OpPaymentRead, requestScope(request)) {
		return appErrors.ErrForbidden
	}
	return nil
}
