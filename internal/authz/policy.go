// Package authz is the single audit surface for permission decisions.
// Every component consults the flat (action, role) capability table
// below instead of embedding role checks inline. Ownership predicates
// (org membership, raiser identity) are evaluated by the owning
// component against the resource itself.
package authz

import (
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
)

// Action names a guarded operation
type Action string

const (
	ActionSupplierList    Action = "supplier.list"
	ActionLinkRequest     Action = "link.request"
	ActionLinkDecide      Action = "link.decide"
	ActionLinkRemove      Action = "link.remove"
	ActionLinkList        Action = "link.list"
	ActionLinkListPending Action = "link.list_pending"
	ActionOrderCreate     Action = "order.create"
	ActionOrderDecide     Action = "order.decide"
	ActionOrderComplete   Action = "order.complete"
	ActionOrderView       Action = "order.view"
	ActionComplaintCreate Action = "complaint.create"
	ActionComplaintUpdate Action = "complaint.update"
	ActionComplaintList   Action = "complaint.list"
	ActionMessagePost     Action = "message.post"
	ActionMessageList     Action = "message.list"
)

// capabilities is the central role capability table. A missing entry
// denies.
var capabilities = map[Action]map[models.Role]bool{
	ActionSupplierList: {
		models.RoleConsumer: true,
	},
	ActionLinkRequest: {
		models.RoleConsumer: true,
	},
	ActionLinkDecide: {
		models.RoleOwner:   true,
		models.RoleManager: true,
	},
	ActionLinkRemove: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
	ActionLinkList: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
	ActionLinkListPending: {
		models.RoleOwner:   true,
		models.RoleManager: true,
	},
	ActionOrderCreate: {
		models.RoleConsumer: true,
	},
	ActionOrderDecide: {
		models.RoleOwner:   true,
		models.RoleManager: true,
	},
	ActionOrderComplete: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleConsumer: true,
	},
	ActionOrderView: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
	ActionComplaintCreate: {
		models.RoleConsumer: true,
	},
	ActionComplaintUpdate: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
	ActionComplaintList: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
	ActionMessagePost: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
	ActionMessageList: {
		models.RoleOwner:    true,
		models.RoleManager:  true,
		models.RoleSales:    true,
		models.RoleConsumer: true,
	},
}

// Allowed reports whether the role holds the capability
func Allowed(role models.Role, action Action) bool {
	return capabilities[action][role]
}

// Require returns Forbidden unless the principal's role holds the
// capability.
func Require(p models.Principal, action Action) error {
	if !Allowed(p.Role, action) {
		return apperr.Forbiddenf("role %s may not perform %s", p.Role, action)
	}
	return nil
}
