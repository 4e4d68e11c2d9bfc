package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/egov-portal-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCitizenRequestAccess(t *testing.T) {
	citizen := Subject{ID: "cit-1", Role: models.RoleCitizen}

	assert.True(t, Can(citizen, OpRequestRead, Scope{OwnerID: "cit-1"}))
	assert.False(t, Can(citizen, OpRequestRead, Scope{OwnerID: "cit-2"}))
	assert.False(t, Can(citizen, OpRequestUpdateStatus, Scope{OwnerID: "cit-1"}))
}

func TestCitizenCancelOnlyWhileSubmitted(t *testing.T) {
	citizen := Subject{ID: "cit-1", Role: models.RoleCitizen}

	assert.True(t, Can(citizen, OpRequestDelete, Scope{OwnerID: "cit-1", RequestStatus: models.StatusSubmitted}))
	assert.False(t, Can(citizen, OpRequestDelete, Scope{OwnerID: "cit-1", RequestStatus: models.StatusUnderReview}))
	assert.False(t, Can(citizen, OpRequestDelete, Scope{OwnerID: "cit-2", RequestStatus: models.StatusSubmitted}))
}

func TestOfficerDepartmentScoping(t *testing.T) {
	officer := Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: strPtr("dep-1")}

	assert.True(t, Can(officer, OpRequestRead, Scope{OwnerID: "cit-1", DepartmentID: "dep-1"}))
	assert.False(t, Can(officer, OpRequestRead, Scope{OwnerID: "cit-1", DepartmentID: "dep-2"}))
	assert.True(t, Can(officer, OpRequestUpdateStatus, Scope{DepartmentID: "dep-1"}))
	assert.False(t, Can(officer, OpRequestUpdateStatus, Scope{DepartmentID: "dep-2"}))

	// staff deletion is department-scoped but not status-restricted
	assert.True(t, Can(officer, OpRequestDelete, Scope{DepartmentID: "dep-1", RequestStatus: models.StatusCompleted}))
}

func TestOfficerWithoutDepartmentDenied(t *testing.T) {
	officer := Subject{ID: "off-1", Role: models.RoleOfficer}
	assert.False(t, Can(officer, OpRequestRead, Scope{DepartmentID: "dep-1"}))
}

func TestAdminBypassesScoping(t *testing.T) {
	admin := Subject{ID: "adm-1", Role: models.RoleAdmin}

	assert.True(t, Can(admin, OpRequestRead, Scope{OwnerID: "cit-9", DepartmentID: "dep-9"}))
	assert.True(t, Can(admin, OpRequestDelete, Scope{RequestStatus: models.StatusCompleted}))
	assert.True(t, Can(admin, OpPaymentRefund, Scope{}))
	assert.True(t, Can(admin, OpUserManage, Scope{}))
	assert.True(t, Can(admin, OpDocumentDelete, Scope{UploaderID: "someone-else"}))
}

func TestPaymentCapabilities(t *testing.T) {
	citizen := Subject{ID: "cit-1", Role: models.RoleCitizen}
	officer := Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: strPtr("dep-1")}
	head := Subject{ID: "hd-1", Role: models.RoleDepartmentHead, DepartmentID: strPtr("dep-1")}

	assert.True(t, Can(citizen, OpPaymentSimulate, Scope{OwnerID: "cit-1"}))
	assert.False(t, Can(citizen, OpPaymentSimulate, Scope{OwnerID: "cit-2"}))

	// only citizens are ownership-restricted; staff may record a counter
	// payment for any request, including other departments'
	assert.True(t, Can(officer, OpPaymentSimulate, Scope{DepartmentID: "dep-1"}))
	assert.True(t, Can(officer, OpPaymentSimulate, Scope{OwnerID: "cit-9", DepartmentID: "dep-2"}))
	assert.True(t, Can(head, OpPaymentSimulate, Scope{OwnerID: "cit-9", DepartmentID: "dep-2"}))

	// refund and global listing are admin-only
	assert.False(t, Can(citizen, OpPaymentRefund, Scope{OwnerID: "cit-1"}))
	assert.False(t, Can(officer, OpPaymentRefund, Scope{DepartmentID: "dep-1"}))
	assert.False(t, Can(head, OpPaymentList, Scope{}))
}

func TestDocumentDeleteRequiresUploaderOrAdmin(t *testing.T) {
	citizen := Subject{ID: "cit-1", Role: models.RoleCitizen}
	officer := Subject{ID: "off-1", Role: models.RoleOfficer, DepartmentID: strPtr("dep-1")}

	assert.True(t, Can(citizen, OpDocumentDelete, Scope{UploaderID: "cit-1"}))
	assert.False(t, Can(citizen, OpDocumentDelete, Scope{UploaderID: "off-1"}))
	assert.True(t, Can(officer, OpDocumentDelete, Scope{UploaderID: "off-1", DepartmentID: "dep-1"}))
	assert.False(t, Can(officer, OpDocumentDelete, Scope{UploaderID: "cit-1", DepartmentID: "dep-1"}))
}

func TestDepartmentHeadUserRead(t *testing.T) {
	head := Subject{ID: "hd-1", Role: models.RoleDepartmentHead, DepartmentID: strPtr("dep-1")}

	assert.True(t, Can(head, OpUserRead, Scope{DepartmentID: "dep-1"}))
	assert.False(t, Can(head, OpUserRead, Scope{DepartmentID: "dep-2"}))
	assert.False(t, Can(head, OpUserManage, Scope{DepartmentID: "dep-1"}))
}

func TestManagementOperationsAdminOnly(t *testing.T) {
	for _, role := range []models.UserRole{models.RoleCitizen, models.RoleOfficer, models.RoleDepartmentHead} {
		sub := Subject{ID: "u-1", Role: role, DepartmentID: strPtr("dep-1")}
		assert.False(t, Can(sub, OpDepartmentManage, Scope{}), "role %s", role)
		assert.False(t, Can(sub, OpServiceManage, Scope{}), "role %s", role)
	}
}

func TestNotificationOwnerOnlyForAllRoles(t *testing.T) {
	admin := Subject{ID: "adm-1", Role: models.RoleAdmin}
	assert.True(t, Can(admin, OpNotificationAccess, Scope{OwnerID: "adm-1"}))
	assert.False(t, Can(admin, OpNotificationAccess, Scope{OwnerID: "cit-1"}))
}

func TestUnknownRoleDenied(t *testing.T) {
	d := Decide(Subject{ID: "x", Role: models.UserRole("ghost")}, OpRequestRead, Scope{OwnerID: "x"})
	assert.False(t, d.Allowed)
	assert.NotEmpty(t, d.Reason)
}
