package procurement_test

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/procurement"
	"github.com/warp/erp-engine/store/rdb"
	"github.com/warp/erp-engine/store/rdb/rdbtest"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	store    *rdb.Store
	clock    *generic.ManualClock
	ledger   *inventory.Ledger
	supplier *procurement.Supplier
	product  *inventory.Product
	officer  generic.Actor
}

func newFixture(t *testing.T) fixture {
	store := rdbtest.New(t)
	clock := rdbtest.Clock()
	ctx := context.Background()

	sup, err := procurement.NewSuppliers(store, zerolog.Nop()).Create(ctx, procurement.SupplierInput{
		Name:  "Acme Supplies",
		Email: "orders@acme.test",
	})
	require.NoError(t, err)

	p, err := inventory.NewCatalog(store, clock, zerolog.Nop()).Create(ctx, inventory.ProductInput{
		Name: "Widget",
		SKU:  "W-1",
	}, 0, 0)
	require.NoError(t, err)

	return fixture{
		store:    store,
		clock:    clock,
		ledger:   inventory.NewLedger(store, clock, zerolog.Nop(), true),
		supplier: sup,
		product:  p,
		officer:  generic.Actor{UserID: 11, Username: "officer", Roles: []generic.Role{generic.RoleProcurementOfficer}},
	}
}

func (f fixture) orders() *procurement.Orders {
	return procurement.NewOrders(f.store, f.ledger, f.clock, zerolog.Nop())
}

func (f fixture) draft(t *testing.T) *procurement.PurchaseOrder {
	t.Helper()
	o, err := f.orders().Create(context.Background(), f.officer, procurement.OrderInput{SupplierID: f.supplier.ID})
	require.NoError(t, err)
	return o
}

func (f fixture) addItem(t *testing.T, orderID generic.ID, qty int64, price string) *procurement.PurchaseOrder {
	t.Helper()
	o, err := f.orders().AddItem(context.Background(), orderID, procurement.ItemInput{
		ProductID: f.product.ID,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return o
}

// failingReceiver books the receipt and then fails, so the caller's unit of
// work must roll the booking back.
type failingReceiver struct {
	inner procurement.Receiver
}

func (r failingReceiver) Receive(ctx context.Context, rc inventory.Receipt) ([]inventory.Transaction, error) {
	if _, err := r.inner.Receive(ctx, rc); err != nil {
		return nil, err
	}
	return nil, errors.New("warehouse system unavailable")
}

// =============================================================================
// FULL CYCLE
// =============================================================================

func TestPurchaseCycle_StockFollowsReceipt(t *testing.T) {
	// GIVEN: A product with 50 on hand after a manual adjustment
	// WHEN: A PO for 10 at 5.00 is created, submitted, approved and received
	// THEN: The total is 50.00, stock is 60 and the ledger holds a second
	//       row, Inbound, referencing the order
	f := newFixture(t)
	ctx := context.Background()
	orders := f.orders()

	stock, err := f.ledger.Adjust(ctx, inventory.AdjustInput{ProductID: f.product.ID, Delta: 50, Reason: "opening count"})
	require.NoError(t, err)
	require.Equal(t, int64(50), stock.Quantity)

	order := f.draft(t)
	assert.Equal(t, procurement.OrderDraft, order.Status)
	assert.True(t, order.TotalAmount.IsZero())

	order = f.addItem(t, order.ID, 10, "5.00")
	assert.Equal(t, "50.00", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "50.00", order.Items[0].LineTotal.StringFixed(2))

	order, err = orders.Submit(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderPending, order.Status)

	order, err = orders.Approve(ctx, order.ID, 21)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderApproved, order.Status)
	require.NotNil(t, order.ApprovedByID)
	assert.Equal(t, generic.ID(21), *order.ApprovedByID)

	order, err = orders.Receive(ctx, order.ID, 31)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderReceived, order.Status)

	stock, err = f.store.StockFor(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), stock.Quantity)

	txs, err := f.ledger.Transactions(ctx, inventory.TxFilter{ProductID: f.product.ID})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	inbound := txs[0]
	assert.Equal(t, inventory.TxInbound, inbound.TransactionType)
	assert.Equal(t, int64(10), inbound.Quantity)
	assert.Equal(t, inventory.RefPurchaseOrder, inbound.ReferenceType)
	assert.Equal(t, strconv.FormatInt(order.ID, 10), inbound.ReferenceID)
	assert.Equal(t, "Received from PO #"+order.Number, inbound.Notes)

	stored, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderReceived, stored.Status)
	assert.Equal(t, "50.00", stored.TotalAmount.StringFixed(2))
}

func TestCreateOrder_NumberFormat(t *testing.T) {
	f := newFixture(t)

	a := f.draft(t)
	b := f.draft(t)

	assert.Regexp(t, regexp.MustCompile(`^PO-20250310-[0-9a-f]{8}$`), a.Number)
	assert.NotEqual(t, a.Number, b.Number)
	assert.Equal(t, f.officer.UserID, a.CreatedByID)
}

func TestCreateOrder_InactiveSupplier_Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, procurement.NewSuppliers(f.store, zerolog.Nop()).Delete(ctx, f.supplier.ID))

	_, err := f.orders().Create(ctx, f.officer, procurement.OrderInput{SupplierID: f.supplier.ID})
	assert.ErrorIs(t, err, generic.ErrConflict)
}

func TestCreateOrder_UnknownSupplier_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders().Create(context.Background(), f.officer, procurement.OrderInput{SupplierID: 404})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// ITEMS AND TOTALS
// =============================================================================

func TestAddItem_TotalIsSumOfLines(t *testing.T) {
	f := newFixture(t)
	order := f.draft(t)

	f.addItem(t, order.ID, 3, "19.99")
	order = f.addItem(t, order.ID, 7, "0.10")

	assert.Equal(t, "60.67", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)

	sum := decimal.Zero
	for _, it := range order.Items {
		sum = sum.Add(it.LineTotal)
	}
	assert.True(t, sum.Equal(order.TotalAmount))
}

func TestAddItem_AfterSubmit_Conflict(t *testing.T) {
	// GIVEN: A submitted order
	// WHEN: Adding another item
	// THEN: Conflict and the total is unchanged
	f := newFixture(t)
	ctx := context.Background()
	order := f.draft(t)
	f.addItem(t, order.ID, 2, "4.00")
	_, err := f.orders().Submit(ctx, order.ID)
	require.NoError(t, err)

	_, err = f.orders().AddItem(ctx, order.ID, procurement.ItemInput{ProductID: f.product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, generic.ErrConflict)

	stored, err := f.orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.00", stored.TotalAmount.StringFixed(2))
	assert.Len(t, stored.Items, 1)
}

func TestAddItem_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.draft(t)

	_, err := f.orders().AddItem(ctx, order.ID, procurement.ItemInput{ProductID: f.product.ID, Quantity: 0, UnitPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = f.orders().AddItem(ctx, order.ID, procurement.ItemInput{ProductID: 999, Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, generic.ErrNotFound)

	_, err = f.orders().AddItem(ctx, 999, procurement.ItemInput{ProductID: f.product.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

func TestSubmit_EmptyOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.draft(t)

	_, err := f.orders().Submit(ctx, order.ID)
	assert.ErrorIs(t, err, generic.ErrValidation)

	stored, err := f.orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderDraft, stored.Status)
}

func TestTransitions_OutOfOrder_Conflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orders := f.orders()
	order := f.draft(t)
	f.addItem(t, order.ID, 1, "1.00")

	_, err := orders.Approve(ctx, order.ID, 21)
	assert.ErrorIs(t, err, generic.ErrConflict, "approve from Draft")

	_, err = orders.Receive(ctx, order.ID, 31)
	assert.ErrorIs(t, err, generic.ErrConflict, "receive from Draft")

	_, err = orders.Submit(ctx, order.ID)
	require.NoError(t, err)
	_, err = orders.Submit(ctx, order.ID)
	assert.ErrorIs(t, err, generic.ErrConflict, "submit twice")

	_, err = orders.Receive(ctx, order.ID, 31)
	assert.ErrorIs(t, err, generic.ErrConflict, "receive from Pending")

	_, err = orders.Approve(ctx, order.ID, 21)
	require.NoError(t, err)
	_, err = orders.Receive(ctx, order.ID, 31)
	require.NoError(t, err)

	_, err = orders.Receive(ctx, order.ID, 31)
	assert.ErrorIs(t, err, generic.ErrConflict, "receive twice")

	stock, err := f.store.StockFor(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stock.Quantity, "stock is booked once")
}

func TestReceive_FailureRollsBackEverything(t *testing.T) {
	// GIVEN: An approved order and a receiver that books and then fails
	// WHEN: Receiving
	// THEN: Status, stock and ledger are all unchanged
	f := newFixture(t)
	ctx := context.Background()
	order := f.draft(t)
	f.addItem(t, order.ID, 4, "2.00")
	_, err := f.orders().Submit(ctx, order.ID)
	require.NoError(t, err)
	_, err = f.orders().Approve(ctx, order.ID, 21)
	require.NoError(t, err)

	inboundBefore := adjustmentCount(t, inventory.TxInbound)
	broken := procurement.NewOrders(f.store, failingReceiver{inner: f.ledger}, f.clock, zerolog.Nop())
	_, err = broken.Receive(ctx, order.ID, 31)
	require.Error(t, err)
	assert.Equal(t, inboundBefore, adjustmentCount(t, inventory.TxInbound), "rolled back receipt is not counted")

	stored, err := f.orders().Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, procurement.OrderApproved, stored.Status)

	stock, err := f.store.StockFor(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock.Quantity)

	txs, err := f.ledger.Transactions(ctx, inventory.TxFilter{ProductID: f.product.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)

	// the order can still be received afterwards
	_, err = f.orders().Receive(ctx, order.ID, 31)
	require.NoError(t, err)
	assert.Equal(t, inboundBefore+1, adjustmentCount(t, inventory.TxInbound))
}

// adjustmentCount reads erp_inventory_adjustments_total for one type from the
// default registry.
func adjustmentCount(t *testing.T, txType inventory.TxType) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "erp_inventory_adjustments_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "type" && l.GetValue() == string(txType) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestList_FilterByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.draft(t)
	submitted := f.draft(t)
	f.addItem(t, submitted.ID, 1, "1.00")
	_, err := f.orders().Submit(ctx, submitted.ID)
	require.NoError(t, err)

	pending, err := f.orders().List(ctx, procurement.OrderPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)
	assert.Len(t, pending[0].Items, 1)

	all, err := f.orders().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []generic.ID{draft.ID, submitted.ID}, []generic.ID{all[0].ID, all[1].ID})
}
