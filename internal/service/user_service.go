package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

// userRepository is the slice of the user repository the user service uses.
type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetActive(ctx context.Context, id string, active bool) error
	Stats(ctx context.Context) (*models.UserStats, error)
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CreateUserRequest is the admin payload for provisioning staff accounts.
type CreateUserRequest struct {
	Name         string          `json:"name" validate:"required"`
	Email        string          `json:"email" validate:"required,email"`
	Password     string          `json:"password" validate:"required,min=6"`
	Role         models.UserRole `json:"role" validate:"required,oneof=citizen officer department_head admin"`
	DepartmentID *string         `json:"departmentId"`
	JobTitle     *string         `json:"jobTitle"`
	PhoneNumber  *string         `json:"phoneNumber"`
}

// UpdateUserRequest is the admin payload for editing accounts.
type UpdateUserRequest struct {
	Name         string           `json:"name"`
	Role         *models.UserRole `json:"role" validate:"omitempty,oneof=citizen officer department_head admin"`
	DepartmentID *string          `json:"departmentId"`
	JobTitle     *string          `json:"jobTitle"`
	PhoneNumber  *string          `json:"phoneNumber"`
	Active       *bool            `json:"isActive"`
}

// UserService implements user administration. Listing is open to admins
// globally and to department heads within their own department.
type UserService struct {
	users    userRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(users userRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, validate: validator.New(), logger: logger}
}

// List returns users visible to the caller.
func (s *UserService) List(ctx context.Context, sub authz.Subject, filter models.UserFilter) ([]models.User, int, error) {
	switch {
	case authz.Can(sub, authz.OpUserManage, authz.Scope{}):
		// admin: unrestricted
	case sub.Role == models.RoleDepartmentHead && sub.DepartmentID != nil:
		filter.DepartmentID = sub.DepartmentID
	default:
		return nil, 0, appErrors.ErrForbidden
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.FromError(err)
	}
	return users, total, nil
}

// Get returns a single user visible to the caller.
func (s *UserService) Get(ctx context.Context, sub authz.Subject, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}

	scope := authz.Scope{}
	if user.DepartmentID != nil {
		scope.DepartmentID = *user.DepartmentID
	}
	if !authz.Can(sub, authz.OpUserRead, scope) && sub.ID != user.ID {
		return nil, appErrors.ErrForbidden
	}
	return user, nil
}

// Create provisions an account on behalf of an admin.
func (s *UserService) Create(ctx context.Context, sub authz.Subject, req *CreateUserRequest) (*models.User, error) {
	if !authz.Can(sub, authz.OpUserManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.FromError(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		JobTitle:     req.JobTitle,
		PhoneNumber:  req.PhoneNumber,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.auditAction(ctx, sub.ID, models.AuditActionUserCreate, user.ID)
	return user, nil
}

// Update applies admin edits to an account.
func (s *UserService) Update(ctx context.Context, sub authz.Subject, id string, req *UpdateUserRequest) (*models.User, error) {
	if !authz.Can(sub, authz.OpUserManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}
	if req.JobTitle != nil {
		user.JobTitle = req.JobTitle
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.auditAction(ctx, sub.ID, models.AuditActionUserUpdate, user.ID)
	return user, nil
}

// Deactivate disables an account and revokes its sessions.
func (s *UserService) Deactivate(ctx context.Context, sub authz.Subject, id string) error {
	if !authz.Can(sub, authz.OpUserManage, authz.Scope{}) {
		return appErrors.ErrForbidden
	}
	if sub.ID == id {
		return appErrors.Clone(appErrors.ErrConflict, "cannot deactivate your own account")
	}

	if _, err := s.users.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "user not found")
	}

	if err := s.users.SetActive(ctx, id, false); err != nil {
		return appErrors.FromError(err)
	}
	if err := s.users.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Sugar().Warnw("failed to revoke sessions on deactivation", "user_id", id, "error", err)
	}

	s.auditAction(ctx, sub.ID, models.AuditActionUserDelete, id)
	return nil
}

// Stats returns user base aggregates for the admin dashboard.
func (s *UserService) Stats(ctx context.Context, sub authz.Subject) (*models.UserStats, error) {
	if !authz.Can(sub, authz.OpUserManage, authz.Scope{}) {
		return nil, appErrors.ErrForbidden
	}
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return stats, nil
}

func (s *UserService) auditAction(ctx context.Context, actorID, action, resourceID string) {
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "user",
		ResourceID: &resourceID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.users.CreateAuditLog(ctx, log); err != nil {
		s.logger.Sugar().Warnw("failed to write audit log", "action", action, "error", err)
	}
}
