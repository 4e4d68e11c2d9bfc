package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
	"github.com/noah-isme/egov-portal-api/pkg/identifier"
)

// requestRepository is the slice of the request repository the service uses.
type requestRepository interface {
	FindByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter, scope models.RequestScope) ([]models.Request, int, error)
	Create(ctx context.Context, request *models.Request) error
	UpdateStatus(ctx context.Context, request *models.Request) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, scope models.RequestScope) (*models.RequestStats, error)
}

// auditWriter records audit log entries.
type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateRequestPayload is the citizen payload for submitting a request.
type CreateRequestPayload struct {
	ServiceID string                 `json:"serviceId" validate:"required"`
	Priority  models.RequestPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Notes     *string                `json:"notes"`
}

// UpdateStatusPayload is the staff payload for changing a request's status.
// Any of the five statuses may be written regardless of the current one;
// role and department scoping are the only guards.
type UpdateStatusPayload struct {
	Status   models.RequestStatus `json:"status" validate:"required,oneof=submitted under_review approved rejected completed"`
	Comments string               `json:"comments"`
}

// RequestService implements the service request lifecycle.
type RequestService struct {
	requests   requestRepository
	services   serviceRepository
	audits     auditWriter
	dispatcher *Dispatcher
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewRequestService creates a RequestService.
func NewRequestService(requests requestRepository, services serviceRepository, audits auditWriter, dispatcher *Dispatcher, logger *zap.Logger) *RequestService {
	return &RequestService{
		requests:   requests,
		services:   services,
		audits:     audits,
		dispatcher: dispatcher,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Create submits a new request for the calling citizen. The submission
// notification and email are dispatched after the request row is written.
func (s *RequestService) Create(ctx context.Context, sub authz.Subject, req *CreateRequestPayload) (*models.Request, error) {
	if !authz.Can(sub, authz.OpRequestCreate, authz.Scope{OwnerID: sub.ID}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	service, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, notFoundOr(err, "service not found")
	}
	if !service.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service is not available")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	request := &models.Request{
		RequestNumber: identifier.Request(),
		UserID:        sub.ID,
		ServiceID:     service.ID,
		Status:        models.StatusSubmitted,
		Priority:      priority,
		Notes:         req.Notes,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.FromError(err)
	}

	// Reload to pick up the joined citizen and service fields the
	// notification effects render from.
	created, err := s.requests.FindByID(ctx, request.ID)
	if err != nil {
		s.logger.Sugar().Warnw("request created but reload failed", "request_id", request.ID, "error", err)
		return request, nil
	}

	s.dispatcher.Dispatch(ctx, workflow.Submitted(created))
	s.logger.Sugar().Infow("request submitted", "request_id", created.ID, "request_number", created.RequestNumber)
	return created, nil
}

// List returns requests visible to the caller: citizens see their own,
// staff see their department's, admins see everything.
func (s *RequestService) List(ctx context.Context, sub authz.Subject, filter models.RequestFilter) ([]models.Request, int, error) {
	scope, err := s.scopeFor(sub)
	if err != nil {
		return nil, 0, err
	}

	requests, total, err := s.requests.List(ctx, filter, scope)
	if err != nil {
		return nil, 0, appErrors.FromError(err)
	}
	return requests, total, nil
}

// Get returns one request. Existence is resolved before authorization so a
// request outside the caller's scope reads as forbidden, not missing.
func (s *RequestService) Get(ctx context.Context, sub authz.Subject, id string) (*models.Request, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "request not found")
	}

	if !authz.Can(sub, authz.OpRequestRead, requestScope(request)) {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// UpdateStatus applies a staff status change and dispatches the resulting
// notification and email.
func (s *RequestService) UpdateStatus(ctx context.Context, sub authz.Subject, id string, payload *UpdateStatusPayload) (*models.Request, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, validationFailure(err)
	}

	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "request not found")
	}

	if !authz.Can(sub, authz.OpRequestUpdateStatus, requestScope(request)) {
		return nil, appErrors.ErrForbidden
	}

	previousStatus := request.Status
	effects := workflow.Transition(request, workflow.TransitionInput{
		ActorID:  sub.ID,
		Status:   payload.Status,
		Comments: payload.Comments,
	})

	if err := s.requests.UpdateStatus(ctx, request); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.auditStatusChange(ctx, sub.ID, request.ID, previousStatus, payload.Status)
	s.dispatcher.Dispatch(ctx, effects)
	s.logger.Sugar().Infow("request status updated",
		"request_id", request.ID, "from", previousStatus, "to", payload.Status, "actor", sub.ID)
	return request, nil
}

// Delete removes a request. Citizens may cancel their own while it is still
// submitted; staff may delete within their department at any stage.
func (s *RequestService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "request not found")
	}

	decision := authz.Decide(sub, authz.OpRequestDelete, requestScope(request))
	if !decision.Allowed {
		return appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
	}

	if err := s.requests.Delete(ctx, id); err != nil {
		return appErrors.FromError(err)
	}

	actorID := sub.ID
	requestID := request.ID
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionRequestDelete,
		Resource:   "request",
		ResourceID: &requestID,
	}
	if err := s.audits.CreateAuditLog(ctx, log); err != nil {
		s.logger.Sugar().Warnw("failed to write audit log", "action", log.Action, "error", err)
	}

	s.logger.Sugar().Infow("request deleted", "request_id", id, "actor", sub.ID)
	return nil
}

// Stats returns request counts by status inside the caller's scope.
func (s *RequestService) Stats(ctx context.Context, sub authz.Subject) (*models.RequestStats, error) {
	scope, err := s.scopeFor(sub)
	if err != nil {
		return nil, err
	}

	stats, err := s.requests.Stats(ctx, scope)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return stats, nil
}

func (s *RequestService) scopeFor(sub authz.Subject) (models.RequestScope, error) {
	switch sub.Role {
	case models.RoleCitizen:
		userID := sub.ID
		return models.RequestScope{UserID: &userID}, nil
	case models.RoleOfficer, models.RoleDepartmentHead:
		if sub.DepartmentID == nil {
			return models.RequestScope{}, appErrors.Clone(appErrors.ErrForbidden, "no department assigned")
		}
		return models.RequestScope{DepartmentID: sub.DepartmentID}, nil
	case models.RoleAdmin:
		return models.RequestScope{}, nil
	default:
		return models.RequestScope{}, appErrors.ErrForbidden
	}
}

func (s *RequestService) auditStatusChange(ctx context.Context, actorID, requestID string, from, to models.RequestStatus) {
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionStatusChange,
		Resource:   "request",
		ResourceID: &requestID,
		OldValues:  []byte(`{"status":"` + string(from) + `"}`),
		NewValues:  []byte(`{"status":"` + string(to) + `"}`),
	}
	if err := s.audits.CreateAuditLog(ctx, log); err != nil {
		s.logger.Sugar().Warnw("failed to write audit log", "action", log.Action, "error", err)
	}
}

func requestScope(request *models.Request) authz.Scope {
	return authz.Scope{
		OwnerID:       request.UserID,
		DepartmentID:  request.DepartmentID,
		RequestStatus: request.Status,
	}
}
