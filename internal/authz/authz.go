package authz

import (
	"github.com/google/uuid"

	pkgerrors "github.com/jewel109/mobiledoor-api/pkg/errors"
	"github.com/jewel109/mobiledoor-api/pkg/enums"
)

// Capability is a permission an actor may hold.
type Capability string

const (
	CapManageOrders   Capability = "orders:manage"
	CapManagePayments Capability = "payments:manage"
)

var roleCapabilities = map[enums.UserRole][]Capability{
	enums.UserRoleAdmin: {CapManageOrders, CapManagePayments},
	enums.UserRoleUser:  nil,
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Can reports whether the actor's role grants capability.
func (a Actor) Can(capability Capability) bool {
	for _, granted := range roleCapabilities[a.Role] {
		if granted == capability {
			return true
		}
	}
	return false
}

// Owns reports whether userID belongs to the actor.
func (a Actor) Owns(userID uuid.UUID) bool {
	return a.UserID != uuid.Nil && a.UserID == userID
}

// Require returns FORBIDDEN unless the actor holds capability.
func Require(actor Actor, capability Capability) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Can(capability) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "missing capability "+string(capability))
	}
	return nil
}

// RequireOwnerOr allows the owner of a resource or any holder of capability.
func RequireOwnerOr(actor Actor, ownerID uuid.UUID, capability Capability) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.Owns(ownerID) || actor.Can(capability) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
}
