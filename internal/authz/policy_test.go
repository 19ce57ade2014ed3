package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/models"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		name   string
		role   models.Role
		action Action
		want   bool
	}{
		{"consumer browses suppliers", models.RoleConsumer, ActionSupplierList, true},
		{"owner cannot browse suppliers", models.RoleOwner, ActionSupplierList, false},
		{"consumer requests links", models.RoleConsumer, ActionLinkRequest, true},
		{"sales cannot request links", models.RoleSales, ActionLinkRequest, false},
		{"owner decides links", models.RoleOwner, ActionLinkDecide, true},
		{"manager decides links", models.RoleManager, ActionLinkDecide, true},
		{"sales cannot decide links", models.RoleSales, ActionLinkDecide, false},
		{"consumer cannot decide links", models.RoleConsumer, ActionLinkDecide, false},
		{"sales may unlink", models.RoleSales, ActionLinkRemove, true},
		{"consumer may unlink", models.RoleConsumer, ActionLinkRemove, true},
		{"sales cannot view pending queue", models.RoleSales, ActionLinkListPending, false},
		{"consumer creates orders", models.RoleConsumer, ActionOrderCreate, true},
		{"owner cannot create orders", models.RoleOwner, ActionOrderCreate, false},
		{"manager decides orders", models.RoleManager, ActionOrderDecide, true},
		{"sales cannot decide orders", models.RoleSales, ActionOrderDecide, false},
		{"consumer completes orders", models.RoleConsumer, ActionOrderComplete, true},
		{"sales cannot complete orders", models.RoleSales, ActionOrderComplete, false},
		{"sales views orders", models.RoleSales, ActionOrderView, true},
		{"consumer raises complaints", models.RoleConsumer, ActionComplaintCreate, true},
		{"sales cannot raise complaints", models.RoleSales, ActionComplaintCreate, false},
		{"sales updates complaints", models.RoleSales, ActionComplaintUpdate, true},
		{"everyone posts messages", models.RoleSales, ActionMessagePost, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.role, tc.action))
		})
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	p := models.Principal{AccountID: "acc-1", OrgID: "org-1", OrgType: models.OrgTypeSupplier, Role: models.RoleSales}

	err := Require(p, ActionLinkDecide)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	assert.NoError(t, Require(p, ActionOrderView))
}

func TestUnknownActionDenies(t *testing.T) {
	assert.False(t, Allowed(models.RoleOwner, Action("link.self_destruct")))
}

func TestUnknownRoleDenies(t *testing.T) {
	assert.False(t, Allowed(models.Role("INTERN"), ActionOrderView))
}
