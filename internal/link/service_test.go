package link_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/db/memory"
	"github.com/supplylink/core-service/internal/link"
	"github.com/supplylink/core-service/internal/models"
)

var (
	supplierOwner = models.Principal{AccountID: "acc-owner", OrgID: "sup-1", OrgType: models.OrgTypeSupplier, Role: models.RoleOwner}
	supplierSales = models.Principal{AccountID: "acc-sales", OrgID: "sup-1", OrgType: models.OrgTypeSupplier, Role: models.RoleSales}
	otherOwner    = models.Principal{AccountID: "acc-other", OrgID: "sup-2", OrgType: models.OrgTypeSupplier, Role: models.RoleOwner}
	consumer      = models.Principal{AccountID: "acc-consumer", OrgID: "con-1", OrgType: models.OrgTypeConsumer, Role: models.RoleConsumer}
)

func newFixture(t *testing.T) (*link.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.AddOrg(models.Org{ID: "sup-1", Name: "Fresh Farms", Type: models.OrgTypeSupplier, IsActive: true})
	store.AddOrg(models.Org{ID: "sup-2", Name: "Ocean Catch", Type: models.OrgTypeSupplier, IsActive: true})
	store.AddOrg(models.Org{ID: "sup-inactive", Name: "Closed Foods", Type: models.OrgTypeSupplier, IsActive: false})
	store.AddOrg(models.Org{ID: "con-1", Name: "City Bistro", Type: models.OrgTypeConsumer, IsActive: true})
	return link.NewService(store, store, store), store
}

func TestRequestCreatesPendingLink(t *testing.T) {
	svc, _ := newFixture(t)

	l, err := svc.Request(context.Background(), consumer, "sup-1")
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusPending, l.Status)
	assert.Equal(t, "sup-1", l.SupplierOrgID)
	assert.Equal(t, "con-1", l.ConsumerOrgID)
	assert.Equal(t, 1, l.Version)
}

func TestRequestRequiresConsumerRole(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Request(context.Background(), supplierOwner, "sup-2")
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestRequestUnknownSupplierNotFound(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Request(context.Background(), consumer, "sup-missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRequestConsumerOrgAsTargetNotFound(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Request(context.Background(), consumer, "con-1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRequestInactiveSupplierRejected(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Request(context.Background(), consumer, "sup-inactive")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRequestDuplicateWhilePendingConflicts(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	_, err = svc.Request(ctx, consumer, "sup-1")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestRequestDuplicateWhileApprovedConflicts(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	_, err = svc.Request(ctx, consumer, "sup-1")
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestRerequestAfterDecline(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	declined, err := svc.Decide(ctx, supplierOwner, l.ID, link.DecisionDecline)
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusDeclined, declined.Status)

	fresh, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	assert.NotEqual(t, l.ID, fresh.ID)
	assert.Equal(t, models.LinkStatusPending, fresh.Status)
}

func TestRerequestAfterUnlink(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)
	removed, err := svc.Unlink(ctx, consumer, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusRemoved, removed.Status)

	_, err = svc.Request(ctx, consumer, "sup-1")
	assert.NoError(t, err)
}

func TestDecideApprove(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	approved, err := svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusApproved, approved.Status)
	assert.Equal(t, l.Version+1, approved.Version)
}

func TestDecideBySalesForbidden(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	_, err = svc.Decide(ctx, supplierSales, l.ID, link.DecisionApprove)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestDecideByForeignSupplierHidden(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	// Another supplier probing the link learns nothing about it.
	_, err = svc.Decide(ctx, otherOwner, l.ID, link.DecisionApprove)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, errors.Is(err, apperr.ErrForbidden))
}

func TestDecideNonPendingRejected(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionDecline)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestDecideUnknownDecision(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.Decision("MAYBE"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestStaleVersionConflicts(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	// A writer holding the pre-decision version loses the race.
	_, err = store.UpdateLinkStatus(ctx, l.ID, l.Version, models.LinkStatusDeclined)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestUnlinkRequiresApproved(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	_, err = svc.Unlink(ctx, consumer, l.ID)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestUnlinkByEitherSide(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	removed, err := svc.Unlink(ctx, supplierSales, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LinkStatusRemoved, removed.Status)
}

func TestUnlinkByOutsiderHidden(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	_, err = svc.Unlink(ctx, otherOwner, l.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListSuppliersOnlyActive(t *testing.T) {
	svc, _ := newFixture(t)

	suppliers, err := svc.ListSuppliers(context.Background(), consumer)
	require.NoError(t, err)
	ids := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"sup-1", "sup-2"}, ids)
}

func TestListSuppliersForbiddenForStaff(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.ListSuppliers(context.Background(), supplierOwner)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestListPendingScopedToSupplier(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Request(ctx, consumer, "sup-2")
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx, supplierOwner)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "sup-1", pending[0].SupplierOrgID)
}

func TestListForOrgSeesBothSides(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	fromConsumer, err := svc.ListForOrg(ctx, consumer)
	require.NoError(t, err)
	fromSupplier, err := svc.ListForOrg(ctx, supplierOwner)
	require.NoError(t, err)
	require.Len(t, fromConsumer, 1)
	require.Len(t, fromSupplier, 1)
	assert.Equal(t, l.ID, fromConsumer[0].ID)
	assert.Equal(t, l.ID, fromSupplier[0].ID)
}

func TestLifecycleIsAudited(t *testing.T) {
	svc, store := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)
	_, err = svc.Unlink(ctx, consumer, l.ID)
	require.NoError(t, err)

	entries := store.AuditEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "LINK_REQUESTED", entries[0].Action)
	assert.Equal(t, "LINK_APPROVED", entries[1].Action)
	assert.Equal(t, "LINK_REMOVED", entries[2].Action)
	assert.Equal(t, consumer.AccountID, entries[0].ActorAccountID)
	assert.Equal(t, supplierOwner.AccountID, entries[1].ActorAccountID)
}

func TestApprovedLinkLookup(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	l, err := svc.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)

	_, err = svc.ApprovedLink(ctx, "sup-1", "con-1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	got, err := svc.ApprovedLink(ctx, "sup-1", "con-1")
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
}
