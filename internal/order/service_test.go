package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylink/core-service/internal/apperr"
	"github.com/supplylink/core-service/internal/db/memory"
	"github.com/supplylink/core-service/internal/events"
	"github.com/supplylink/core-service/internal/link"
	"github.com/supplylink/core-service/internal/models"
	"github.com/supplylink/core-service/internal/order"
)

var (
	supplierOwner   = models.Principal{AccountID: "acc-owner", OrgID: "sup-1", OrgType: models.OrgTypeSupplier, Role: models.RoleOwner}
	supplierManager = models.Principal{AccountID: "acc-manager", OrgID: "sup-1", OrgType: models.OrgTypeSupplier, Role: models.RoleManager}
	supplierSales   = models.Principal{AccountID: "acc-sales", OrgID: "sup-1", OrgType: models.OrgTypeSupplier, Role: models.RoleSales}
	consumer        = models.Principal{AccountID: "acc-consumer", OrgID: "con-1", OrgType: models.OrgTypeConsumer, Role: models.RoleConsumer}
	otherConsumer   = models.Principal{AccountID: "acc-other", OrgID: "con-2", OrgType: models.OrgTypeConsumer, Role: models.RoleConsumer}
)

type fixture struct {
	store  *memory.Store
	links  *link.Service
	orders *order.Service
	bus    *events.Bus
}

// newFixture seeds a supplier catalog and an APPROVED link between
// sup-1 and con-1.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.AddOrg(models.Org{ID: "sup-1", Name: "Fresh Farms", Type: models.OrgTypeSupplier, IsActive: true})
	store.AddOrg(models.Org{ID: "con-1", Name: "City Bistro", Type: models.OrgTypeConsumer, IsActive: true})
	store.AddOrg(models.Org{ID: "con-2", Name: "Harbor Cafe", Type: models.OrgTypeConsumer, IsActive: true})
	store.AddProduct(models.Product{ID: "prod-tomato", SupplierOrgID: "sup-1", Name: "Tomatoes", Unit: "kg", Price: 2.50, StockQuantity: 100, MinOrderQuantity: 5, IsActive: true})
	store.AddProduct(models.Product{ID: "prod-basil", SupplierOrgID: "sup-1", Name: "Basil", Unit: "bunch", Price: 1.20, StockQuantity: 40, MinOrderQuantity: 1, IsActive: true})
	store.AddProduct(models.Product{ID: "prod-retired", SupplierOrgID: "sup-1", Name: "Old Stock", Unit: "kg", Price: 9.99, StockQuantity: 10, MinOrderQuantity: 1, IsActive: false})

	bus := events.NewBus()
	links := link.NewService(store, store, store)
	orders := order.NewService(store, store, links, bus, store)

	ctx := context.Background()
	l, err := links.Request(ctx, consumer, "sup-1")
	require.NoError(t, err)
	_, err = links.Decide(ctx, supplierOwner, l.ID, link.DecisionApprove)
	require.NoError(t, err)

	return &fixture{store: store, links: links, orders: orders, bus: bus}
}

func (f *fixture) placeOrder(t *testing.T) models.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), consumer, "sup-1", []models.OrderItemInput{
		{ProductID: "prod-tomato", Quantity: 10},
		{ProductID: "prod-basil", Quantity: 3},
	})
	require.NoError(t, err)
	return o
}

func TestCreateSnapshotsPricesAndTotal(t *testing.T) {
	f := newFixture(t)

	o := f.placeOrder(t)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 2.50, o.Items[0].UnitPrice)
	assert.Equal(t, 25.0, o.Items[0].Subtotal)
	assert.Equal(t, 1.20, o.Items[1].UnitPrice)
	assert.InDelta(t, 3.60, o.Items[1].Subtotal, 1e-9)
	assert.InDelta(t, 28.60, o.TotalAmount, 1e-9)
}

func TestTotalSurvivesCatalogPriceChange(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)

	f.store.AddProduct(models.Product{ID: "prod-tomato", SupplierOrgID: "sup-1", Name: "Tomatoes", Unit: "kg", Price: 99.0, StockQuantity: 100, MinOrderQuantity: 5, IsActive: true})

	got, err := f.orders.Get(context.Background(), consumer, o.ID)
	require.NoError(t, err)
	assert.InDelta(t, 28.60, got.TotalAmount, 1e-9)
	assert.Equal(t, 2.50, got.Items[0].UnitPrice)
}

func TestCreateRequiresConsumerRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Create(context.Background(), supplierOwner, "sup-1", []models.OrderItemInput{{ProductID: "prod-basil", Quantity: 1}})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestCreateWithoutApprovedLink(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Create(context.Background(), otherConsumer, "sup-1", []models.OrderItemInput{{ProductID: "prod-basil", Quantity: 1}})
	assert.True(t, errors.Is(err, apperr.ErrPrecondition))
}

func TestCreateAfterUnlinkFailsPrecondition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.links.ApprovedLink(ctx, "sup-1", "con-1")
	require.NoError(t, err)
	_, err = f.links.Unlink(ctx, consumer, l.ID)
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, consumer, "sup-1", []models.OrderItemInput{{ProductID: "prod-basil", Quantity: 1}})
	assert.True(t, errors.Is(err, apperr.ErrPrecondition))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		items []models.OrderItemInput
	}{
		{"empty items", nil},
		{"zero quantity", []models.OrderItemInput{{ProductID: "prod-basil", Quantity: 0}}},
		{"unknown product", []models.OrderItemInput{{ProductID: "prod-ghost", Quantity: 1}}},
		{"inactive product", []models.OrderItemInput{{ProductID: "prod-retired", Quantity: 1}}},
		{"below minimum order quantity", []models.OrderItemInput{{ProductID: "prod-tomato", Quantity: 2}}},
		{"above stock", []models.OrderItemInput{{ProductID: "prod-basil", Quantity: 500}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, consumer, "sup-1", tc.items)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}
}

func TestDuplicateProductLinesRejected(t *testing.T) {
	f := newFixture(t)

	// Two lines of 30 would pass the stock check line by line but
	// exceed the 40 in stock combined.
	_, err := f.orders.Create(context.Background(), consumer, "sup-1", []models.OrderItemInput{
		{ProductID: "prod-basil", Quantity: 30},
		{ProductID: "prod-basil", Quantity: 30},
	})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}

func TestStoreRechecksStockAtWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Straight to the store, past the service's read-time checks.
	_, err := f.store.CreateOrder(ctx, models.Order{
		SupplierOrgID:      "sup-1",
		ConsumerOrgID:      "con-1",
		CreatedByAccountID: consumer.AccountID,
		Status:             models.OrderStatusPending,
		TotalAmount:        6000,
		Items:              []models.OrderItem{{ProductID: "prod-basil", Quantity: 5000, UnitPrice: 1.20, Subtotal: 6000}},
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	list, err := f.store.ListOrders(ctx, order.Filter{SupplierOrgID: "sup-1"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStoreAggregatesQuantitiesAcrossLines(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.CreateOrder(context.Background(), models.Order{
		SupplierOrgID:      "sup-1",
		ConsumerOrgID:      "con-1",
		CreatedByAccountID: consumer.AccountID,
		Status:             models.OrderStatusPending,
		TotalAmount:        72,
		Items: []models.OrderItem{
			{ProductID: "prod-basil", Quantity: 30, UnitPrice: 1.20, Subtotal: 36},
			{ProductID: "prod-basil", Quantity: 30, UnitPrice: 1.20, Subtotal: 36},
		},
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)
}

// failingLinks simulates an unavailable link lookup
type failingLinks struct{}

func (failingLinks) ApprovedLink(ctx context.Context, supplierOrgID, consumerOrgID string) (models.Link, error) {
	return models.Link{}, errors.New("link lookup unavailable")
}

func TestLinkLookupFailurePropagates(t *testing.T) {
	f := newFixture(t)
	orders := order.NewService(f.store, f.store, failingLinks{}, f.bus, f.store)

	_, err := orders.Create(context.Background(), consumer, "sup-1", []models.OrderItemInput{{ProductID: "prod-basil", Quantity: 1}})
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrPrecondition))
}

func TestSupplierAcceptThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	accepted, err := f.orders.UpdateStatus(ctx, supplierManager, o.ID, models.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, accepted.Status)
	assert.Equal(t, o.Version+1, accepted.Version)

	completed, err := f.orders.UpdateStatus(ctx, consumer, o.ID, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
}

func TestSupplierCompletesAcceptedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusAccepted)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusCompleted)
	assert.NoError(t, err)
}

func TestConsumerCannotAccept(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(context.Background(), consumer, o.ID, models.OrderStatusAccepted)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestSalesCannotDecideOrComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(ctx, supplierSales, o.ID, models.OrderStatusAccepted)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusAccepted)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, supplierSales, o.ID, models.OrderStatusCompleted)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestPendingToCompletedInvalid(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(context.Background(), consumer, o.ID, models.OrderStatusCompleted)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestRejectedIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusRejected)
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusAccepted)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	_, err = f.orders.UpdateStatus(ctx, consumer, o.ID, models.OrderStatusCompleted)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
}

func TestInvalidTargetStatus(t *testing.T) {
	f := newFixture(t)
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(context.Background(), supplierOwner, o.ID, models.OrderStatus("SHIPPED"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestStaleVersionConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusAccepted)
	require.NoError(t, err)

	// A writer still holding the pre-acceptance version loses.
	_, err = f.store.UpdateOrderStatus(ctx, o.ID, o.Version, models.OrderStatusRejected)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestCrossOrgProbeSeesNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	_, err := f.orders.Get(ctx, otherConsumer, o.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.False(t, errors.Is(err, apperr.ErrForbidden))

	_, err = f.orders.UpdateStatus(ctx, otherConsumer, o.ID, models.OrderStatusCompleted)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListScopedToActorSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)

	fromSupplier, err := f.orders.List(ctx, supplierSales, "")
	require.NoError(t, err)
	require.Len(t, fromSupplier, 1)
	assert.Equal(t, o.ID, fromSupplier[0].ID)

	fromConsumer, err := f.orders.List(ctx, consumer, "")
	require.NoError(t, err)
	require.Len(t, fromConsumer, 1)

	fromOther, err := f.orders.List(ctx, otherConsumer, "")
	require.NoError(t, err)
	assert.Empty(t, fromOther)
}

func TestListStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.placeOrder(t)
	f.placeOrder(t)

	_, err := f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusAccepted)
	require.NoError(t, err)

	accepted, err := f.orders.List(ctx, consumer, models.OrderStatusAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, o.ID, accepted[0].ID)

	_, err = f.orders.List(ctx, consumer, models.OrderStatus("SHIPPED"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestTransitionPublishesEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got := make(chan events.OrderEvent, 1)
	f.bus.Subscribe(func(ev events.OrderEvent) { got <- ev })

	o := f.placeOrder(t)
	_, err := f.orders.UpdateStatus(ctx, supplierOwner, o.ID, models.OrderStatusAccepted)
	require.NoError(t, err)

	select {
	case ev := <-got:
		assert.Equal(t, o.ID, ev.OrderID)
		assert.Equal(t, models.OrderStatusPending, ev.From)
		assert.Equal(t, models.OrderStatusAccepted, ev.To)
		assert.Equal(t, consumer.AccountID, ev.CreatedByAccountID)
		assert.Equal(t, supplierOwner.AccountID, ev.ActorAccountID)
	case <-time.After(2 * time.Second):
		t.Fatal("no order event received")
	}
}
