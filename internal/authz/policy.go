package authz

import (
	"github.com/noah-isme/egov-portal-api/internal/models"
)

// Operation identifies a protected action on a target entity.
type Operation string

const (
	OpRequestCreate       Operation = "request.create"
	OpRequestRead         Operation = "request.read"
	OpRequestUpdateStatus Operation = "request.update_status"
	OpRequestDelete       Operation = "request.delete"

	OpDocumentUpload Operation = "document.upload"
	OpDocumentRead   Operation = "document.read"
	OpDocumentDelete Operation = "document.delete"

	OpPaymentSimulate Operation = "payment.simulate"
	OpPaymentRead     Operation = "payment.read"
	OpPaymentList     Operation = "payment.list"
	OpPaymentRefund   Operation = "payment.refund"

	OpUserRead   Operation = "user.read"
	OpUserManage Operation = "user.manage"

	OpDepartmentManage Operation = "department.manage"
	OpServiceManage    Operation = "service.manage"

	OpNotificationAccess Operation = "notification.access"
	OpReportExport       Operation = "report.export"
)

// Subject is the acting user as seen by the policy.
type Subject struct {
	ID           string
	Role         models.UserRole
	DepartmentID *string
}

// Scope carries the ownership attributes of the target entity. Zero values
// mean "not applicable"; the rule consuming them decides what matters.
type Scope struct {
	// OwnerID is the owning citizen of the target (request owner, payment
	// payer, notification recipient).
	OwnerID string
	// DepartmentID is the department of the target's service.
	DepartmentID string
	// UploaderID is the uploading user of a document.
	UploaderID string
	// RequestStatus is the current status of the target request, consulted
	// by the citizen cancellation rule.
	RequestStatus models.RequestStatus
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Reason: r} }

// rule decides whether a subject may perform an operation on a scoped target.
type rule func(sub Subject, sc Scope) Decision

func anyTarget(Subject, Scope) Decision { return allow() }

func ownerOnly(sub Subject, sc Scope) Decision {
	if sc.OwnerID == sub.ID {
		return allow()
	}
	return deny("access denied")
}

func ownDepartment(sub Subject, sc Scope) Decision {
	if sub.DepartmentID != nil && *sub.DepartmentID == sc.DepartmentID {
		return allow()
	}
	return deny("access denied")
}

func ownerWhileSubmitted(sub Subject, sc Scope) Decision {
	if sc.OwnerID != sub.ID || sc.RequestStatus != models.StatusSubmitted {
		return deny("cannot cancel request at this stage")
	}
	return allow()
}

func uploaderOnly(sub Subject, sc Scope) Decision {
	if sc.UploaderID == sub.ID {
		return allow()
	}
	return deny("access denied")
}

// capabilities is the declarative role-to-operation matrix. A missing entry
// means the role may never perform the operation.
var capabilities = map[models.UserRole]map[Operation]rule{
	models.RoleCitizen: {
		OpRequestCreate:      anyTarget,
		OpRequestRead:        ownerOnly,
		OpRequestDelete:      ownerWhileSubmitted,
		OpDocumentUpload:     ownerOnly,
		OpDocumentRead:       ownerOnly,
		OpDocumentDelete:     uploaderOnly,
		OpPaymentSimulate:    ownerOnly,
		OpPaymentRead:        ownerOnly,
		OpNotificationAccess: ownerOnly,
	},
	models.RoleOfficer: {
		OpRequestRead:         ownDepartment,
		OpRequestUpdateStatus: ownDepartment,
		OpRequestDelete:       ownDepartment,
		OpDocumentUpload:      ownDepartment,
		OpDocumentRead:        ownDepartment,
		OpDocumentDelete:      uploaderOnly,
		OpPaymentSimulate:     anyTarget,
		OpPaymentRead:         ownDepartment,
		OpNotificationAccess:  ownerOnly,
	},
	models.RoleDepartmentHead: {
		OpRequestRead:         ownDepartment,
		OpRequestUpdateStatus: ownDepartment,
		OpRequestDelete:       ownDepartment,
		OpDocumentUpload:      ownDepartment,
		OpDocumentRead:        ownDepartment,
		OpDocumentDelete:      uploaderOnly,
		OpPaymentSimulate:     anyTarget,
		OpPaymentRead:         ownDepartment,
		OpUserRead:            ownDepartment,
		OpNotificationAccess:  ownerOnly,
		OpReportExport:        anyTarget,
	},
	models.RoleAdmin: {
		OpRequestRead:         anyTarget,
		OpRequestUpdateStatus: anyTarget,
		OpRequestDelete:       anyTarget,
		OpDocumentUpload:      anyTarget,
		OpDocumentRead:        anyTarget,
		OpDocumentDelete:      anyTarget,
		OpPaymentSimulate:     anyTarget,
		OpPaymentRead:         anyTarget,
		OpPaymentList:         anyTarget,
		OpPaymentRefund:       anyTarget,
		OpUserRead:            anyTarget,
		OpUserManage:          anyTarget,
		OpDepartmentManage:    anyTarget,
		OpServiceManage:       anyTarget,
		OpNotificationAccess:  ownerOnly,
		OpReportExport:        anyTarget,
	},
}

// Decide evaluates the capability matrix for the subject, operation and
// target scope. Callers resolve target existence before consulting the
// policy so that NotFound is never reported as Forbidden.
func Decide(sub Subject, op Operation, sc Scope) Decision {
	ops, ok := capabilities[sub.Role]
	if !ok {
		return deny("unknown role")
	}
	r, ok := ops[op]
	if !ok {
		return deny("access denied")
	}
	return r(sub, sc)
}

// Can is a convenience wrapper returning only the boolean outcome.
func Can(sub Subject, op Operation, sc Scope) bool {
	return Decide(sub, op, sc).Allowed
}

// SubjectFromClaims builds a policy subject from JWT claims.
func SubjectFromClaims(claims *models.JWTClaims) Subject {
	return Subject{ID: claims.UserID, Role: claims.Role, DepartmentID: claims.DepartmentID}
}
