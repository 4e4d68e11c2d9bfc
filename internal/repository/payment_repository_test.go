package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/egov-portal-api/internal/models"
)

func paymentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "transaction_id", "request_id", "user_id", "amount", "payment_method",
		"payment_status", "payment_date", "receipt_number", "created_at", "updated_at",
		"request_number",
	})
}

func TestPaymentRepositoryFindByRequest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	now := time.Now()
	receipt := "RCP-1700000000000-12345"
	mock.ExpectQuery(`SELECT (.+) FROM payments p JOIN requests r ON r.id = p.request_id WHERE p.request_id = \$1`).
		WithArgs("req-1").
		WillReturnRows(paymentRows().AddRow(
			"pay-1", "TXN-1700000000000-0042", "req-1", "cit-1", 25.0, "credit_card",
			"completed", now, receipt, now, now,
			"REQ-1700000000000-001",
		))

	payment, err := repo.FindByRequest(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.PaymentStatus)
	assert.Equal(t, "TXN-1700000000000-0042", payment.TransactionID)
	assert.Equal(t, "REQ-1700000000000-001", payment.RequestNumber)
	require.NotNil(t, payment.ReceiptNumber)
	assert.Equal(t, receipt, *payment.ReceiptNumber)
}

func TestPaymentRepositoryFindByRequestNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM payments`).
		WithArgs("req-9").
		WillReturnError(sql.ErrNoRows)

	payment, err := repo.FindByRequest(context.Background(), "req-9")
	assert.Nil(t, payment)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPaymentRepositoryExistsForRequest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM payments WHERE request_id = \$1\)`).
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForRequest(context.Background(), "req-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryListFiltersByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	now := time.Now()
	userID := "cit-1"
	mock.ExpectQuery(`WHERE 1=1 AND p.user_id = \$1 ORDER BY p.created_at DESC LIMIT 10 OFFSET 0`).
		WithArgs(userID).
		WillReturnRows(paymentRows().AddRow(
			"pay-1", "TXN-1700000000000-0042", "req-1", "cit-1", 25.0, "credit_card",
			"completed", now, nil, now, now,
			"REQ-1700000000000-001",
		))
	mock.ExpectQuery(`SELECT COUNT\(\*\)(.+)AND p.user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.List(context.Background(), models.PaymentFilter{}, &userID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
}

func TestPaymentRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectExec(`INSERT INTO payments`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	payment := &models.Payment{
		TransactionID: "TXN-1700000000000-0042",
		RequestID:     "req-1",
		UserID:        "cit-1",
		Amount:        25.0,
		PaymentMethod: models.MethodCreditCard,
		PaymentStatus: models.PaymentCompleted,
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	assert.NotEmpty(t, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryUpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectExec(`UPDATE payments SET payment_status = \$2`).
		WithArgs("pay-1", models.PaymentRefunded, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "pay-1", models.PaymentRefunded))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(`SELECT(.+)COUNT\(\*\) AS total_transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"total_transactions", "total_revenue", "completed_payments", "failed_payments"}).
			AddRow(12, 300.5, 10, 2))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalTransactions)
	assert.Equal(t, 300.5, stats.TotalRevenue)
	assert.Equal(t, 10, stats.CompletedPayments)
	assert.Equal(t, 2, stats.FailedPayments)
}
