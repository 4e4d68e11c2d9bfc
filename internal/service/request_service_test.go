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
	"github.com/noah-isme/egov-portal-api/pkg/config"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/mailer"
)

type stubRequestRepo struct {
	findByID     func(ctx context.Context, id string) (*models.Request, error)
	list         func(ctx context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.Request, int, error)
	create       func(ctx context.Context, request *models.Request) error
	updateStatus func(ctx context.Context, request *models.Request) error
	delete       func(ctx context.Context, id string) error
	stats        func(ctx context.Context, scope models.RequestScope) (*models.RequestStats, error)
}

func (s *stubRequestRepo) FindByID(ctx context.Context, id string) (*models.Request, error) {
	return s.findByID(ctx, id)
}

func (s *stubRequestRepo) List(ctx context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.Request, int, error) {
	return s.list(ctx, filter, scope)
}

func (s *stubRequestRepo) Create(ctx context.Context, request *models.Request) error {
	return s.create(ctx, request)
}

func (s *stubRequestRepo) UpdateStatus(ctx context.Context, request *models.Request) error {
	return s.updateStatus(ctx, request)
}

func (s *stubRequestRepo) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

func (s *stubRequestRepo) Stats(ctx context.Context, scope models.RequestScope) (*models.RequestStats, error) {
	return s.stats(ctx, scope)
}

type stubServiceRepo struct {
	findByID func(ctx context.Context, id string) (*models.Service, error)
}

func (s *stubServiceRepo) List(context.Context, models.ServiceFilter) ([]models.Service, error) {
	return nil, nil
}

func (s *stubServiceRepo) FindByID(ctx context.Context, id string) (*models.Service, error) {
	return s.findByID(ctx, id)
}

func (s *stubServiceRepo) Create(context.Context, *models.Service) error { return nil }
func (s *stubServiceRepo) Update(context.Context, *models.Service) error { return nil }
func (s *stubServiceRepo) Deactivate(context.Context, string) error      { return nil }

type stubAuditWriter struct {
	logs []*models.AuditLog
}

func (s *stubAuditWriter) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.logs = append(s.logs, log)
	return nil
}

type stubNotificationStore struct {
	created []*models.Notification
}

func (s *stubNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.created = append(s.created, n)
	return nil
}

func (s *stubNotificationStore) MarkEmailSent(context.Context, string) error { return nil }

func newTestDispatcher() (*Dispatcher, *stubNotificationStore) {
	store := &stubNotificationStore{}
	d := NewDispatcher(store, mailer.NoopSender{}, nil, config.EmailConfig{}, zap.NewNop())
	return d, store
}

func activeService() *models.Service {
	return &models.Service{
		ID:           "svc-1",
		Name:         "Birth Certificate",
		DepartmentID: "dep-1",
		Fee:          25,
		Active:       true,
	}
}

func storedRequest() *models.Request {
	return &models.Request{
		ID:            "req-1",
		RequestNumber: "REQ-1700000000000-001",
		UserID:        "cit-1",
		ServiceID:     "svc-1",
		Status:        models.StatusSubmitted,
		Priority:      models.PriorityMedium,
		ServiceName:   "Birth Certificate",
		DepartmentID:  "dep-1",
		CitizenName:   "Jane Doe",
		CitizenEmail:  "jane@example.com",
		ServiceFee:    25,
	}
}

func TestRequestServiceCreate(t *testing.T) {
	dispatcher, store := newTestDispatcher()
	var created *models.Request
	requests := &stubRequestRepo{
		create: func(_ context.Context, request *models.Request) error {
			created = request
			return nil
		},
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	services := &stubServiceRepo{
		findByID: func(context.Context, string) (*models.Service, error) {
			return activeService(), nil
		},
	}

	svc := NewRequestService(requests, services, &stubAuditWriter{}, dispatcher, zap.NewNop())
	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}

	result, err := svc.Create(context.Background(), citizen, &CreateRequestPayload{ServiceID: "svc-1"})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.True(t, strings.HasPrefix(created.RequestNumber, "REQ-"))
	assert.Equal(t, models.StatusSubmitted, created.Status)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.Equal(t, "cit-1", created.UserID)

	assert.Equal(t, "REQ-1700000000000-001", result.RequestNumber)

	// submission notification persisted
	require.Len(t, store.created, 1)
	assert.Equal(t, "Request Submitted", store.created[0].Title)
	assert.Equal(t, "cit-1", store.created[0].UserID)
}

func TestRequestServiceCreateRejectsInactiveService(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	services := &stubServiceRepo{
		findByID: func(context.Context, string) (*models.Service, error) {
			svc := activeService()
			svc.Active = false
			return svc, nil
		},
	}

	svc := NewRequestService(&stubRequestRepo{}, services, &stubAuditWriter{}, dispatcher, zap.NewNop())
	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}

	_, err := svc.Create(context.Background(), citizen, &CreateRequestPayload{ServiceID: "svc-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRequestServiceCreateForbiddenForStaff(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	svc := NewRequestService(&stubRequestRepo{}, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	dep := "dep-1"
	officer := authz.Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: &dep}
	_, err := svc.Create(context.Background(), officer, &CreateRequestPayload{ServiceID: "svc-1"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRequestServiceGetNotFoundBeforeForbidden(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	requests := &stubRequestRepo{
		findByID: func(context.Context, string) (*models.Request, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := NewRequestService(requests, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	stranger := authz.Subject{ID: "cit-2", Role: models.RoleCitizen}
	_, err := svc.Get(context.Background(), stranger, "missing")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestRequestServiceGetForbiddenOutsideScope(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	requests := &stubRequestRepo{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
	}
	svc := NewRequestService(requests, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	stranger := authz.Subject{ID: "cit-2", Role: models.RoleCitizen}
	_, err := svc.Get(context.Background(), stranger, "req-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	otherDep := "dep-2"
	officer := authz.Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: &otherDep}
	_, err = svc.Get(context.Background(), officer, "req-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestRequestServiceUpdateStatus(t *testing.T) {
	dispatcher, store := newTestDispatcher()
	var persisted *models.Request
	requests := &stubRequestRepo{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
		updateStatus: func(_ context.Context, request *models.Request) error {
			persisted = request
			return nil
		},
	}
	audits := &stubAuditWriter{}
	svc := NewRequestService(requests, &stubServiceRepo{}, audits, dispatcher, zap.NewNop())

	dep := "dep-1"
	officer := authz.Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: &dep}

	result, err := svc.UpdateStatus(context.Background(), officer, "req-1", &UpdateStatusPayload{
		Status:   models.StatusApproved,
		Comments: "documents verified",
	})
	require.NoError(t, err)

	require.NotNil(t, persisted)
	assert.Equal(t, models.StatusApproved, persisted.Status)
	require.NotNil(t, persisted.ReviewedBy)
	assert.Equal(t, "off-1", *persisted.ReviewedBy)
	require.NotNil(t, persisted.ReviewComments)
	assert.Equal(t, "documents verified", *persisted.ReviewComments)

	assert.Equal(t, models.StatusApproved, result.Status)

	require.Len(t, audits.logs, 1)
	assert.Equal(t, models.AuditActionStatusChange, audits.logs[0].Action)

	require.Len(t, store.created, 1)
	assert.Equal(t, models.NotificationSuccess, store.created[0].Type)
}

func TestRequestServiceUpdateStatusRejectsUnknownStatus(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	svc := NewRequestService(&stubRequestRepo{}, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	admin := authz.Subject{ID: "adm-1", Role: models.RoleAdmin}
	_, err := svc.UpdateStatus(context.Background(), admin, "req-1", &UpdateStatusPayload{
		Status: models.RequestStatus("archived"),
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRequestServiceDeleteCitizenCancellation(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	deleted := false
	requests := &stubRequestRepo{
		findByID: func(context.Context, string) (*models.Request, error) {
			return storedRequest(), nil
		},
		delete: func(context.Context, string) error {
			deleted = true
			return nil
		},
	}
	svc := NewRequestService(requests, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	owner := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	require.NoError(t, svc.Delete(context.Background(), owner, "req-1"))
	assert.True(t, deleted)
}

func TestRequestServiceDeleteBlockedAfterReviewStarts(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	requests := &stubRequestRepo{
		findByID: func(context.Context, string) (*models.Request, error) {
			req := storedRequest()
			req.Status = models.StatusUnderReview
			return req, nil
		},
	}
	svc := NewRequestService(requests, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	owner := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	err := svc.Delete(context.Background(), owner, "req-1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Equal(t, "cannot cancel request at this stage", appErr.Message)
}

func TestRequestServiceListScoping(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	var gotScope models.RequestScope
	requests := &stubRequestRepo{
		list: func(_ context.Context, _ models.RequestFilter, scope models.RequestScope) ([]models.Request, int, error) {
			gotScope = scope
			return nil, 0, nil
		},
	}
	svc := NewRequestService(requests, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	_, _, err := svc.List(context.Background(), citizen, models.RequestFilter{})
	require.NoError(t, err)
	require.NotNil(t, gotScope.UserID)
	assert.Equal(t, "cit-1", *gotScope.UserID)

	dep := "dep-1"
	officer := authz.Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: &dep}
	_, _, err = svc.List(context.Background(), officer, models.RequestFilter{})
	require.NoError(t, err)
	require.NotNil(t, gotScope.DepartmentID)
	assert.Equal(t, "dep-1", *gotScope.DepartmentID)

	admin := authz.Subject{ID: "adm-1", Role: models.RoleAdmin}
	_, _, err = svc.List(context.Background(), admin, models.RequestFilter{})
	require.NoError(t, err)
	assert.Nil(t, gotScope.UserID)
	assert.Nil(t, gotScope.DepartmentID)
}

func TestRequestServiceListOfficerWithoutDepartment(t *testing.T) {
	dispatcher, _ := newTestDispatcher()
	svc := NewRequestService(&stubRequestRepo{}, &stubServiceRepo{}, &stubAuditWriter{}, dispatcher, zap.NewNop())

	officer := authz.Subject{ID: "off-1", Role: models.RoleOfficer}
	_, _, err := svc.List(context.Background(), officer, models.RequestFilter{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
