package procurement

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/metrics"
)

// =============================================================================
// ORDER WORKFLOW
// =============================================================================

type Orders struct {
	Store    Store
	Receiver Receiver
	Clock    generic.Clock
	Log      zerolog.Logger
}

func NewOrders(store Store, receiver Receiver, clock generic.Clock, log zerolog.Logger) *Orders {
	return &Orders{Store: store, Receiver: receiver, Clock: clock, Log: log}
}

// OrderNumber formats PO-<yyyyMMdd>-<8 hex chars>.
func OrderNumber(at time.Time) string {
	return fmt.Sprintf("PO-%s-%s", at.UTC().Format("20060102"), uuid.NewString()[:8])
}

type OrderInput struct {
	SupplierID           generic.ID
	ExpectedDeliveryDate *time.Time
	Notes                string
}

// Create opens an empty Draft order for an active supplier.
func (o *Orders) Create(ctx context.Context, actor generic.Actor, in OrderInput) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := o.Store.WithTx(ctx, func(ctx context.Context) error {
		supplier, err := o.Store.GetSupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if !supplier.IsActive {
			return generic.Conflict("supplier %d is inactive", supplier.ID)
		}

		now := o.Clock.Now()
		order = &PurchaseOrder{
			Number:               OrderNumber(now),
			SupplierID:           in.SupplierID,
			OrderDate:            now,
			ExpectedDeliveryDate: in.ExpectedDeliveryDate,
			Status:               OrderDraft,
			TotalAmount:          decimal.Zero,
			Notes:                strings.TrimSpace(in.Notes),
			CreatedByID:          actor.UserID,
			Items:                []Item{},
		}
		return o.Store.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	o.Log.Info().
		Int64("order_id", order.ID).
		Str("po_number", order.Number).
		Int64("supplier_id", order.SupplierID).
		Str("actor", actor.String()).
		Msg("purchase order created")
	return order, nil
}

type ItemInput struct {
	ProductID generic.ID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// AddItem appends a line to a Draft order and adds its line total to the
// order total in the same unit of work.
func (o *Orders) AddItem(ctx context.Context, orderID generic.ID, in ItemInput) (*PurchaseOrder, error) {
	if in.Quantity <= 0 {
		return nil, generic.Validation("quantity", "quantity must be positive, got %d", in.Quantity)
	}
	if in.UnitPrice.IsNegative() {
		return nil, generic.Validation("unit_price", "unit price cannot be negative")
	}

	var order *PurchaseOrder
	err := o.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if order, err = o.Store.LockOrder(ctx, orderID); err != nil {
			return err
		}
		if order.Status != OrderDraft {
			return generic.Conflict("purchase order %s is %s, items can only be added in Draft", order.Number, order.Status)
		}
		ok, err := o.Store.ProductExists(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return generic.NotFound("product", in.ProductID)
		}

		item := &Item{
			PurchaseOrderID: orderID,
			ProductID:       in.ProductID,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			LineTotal:       in.UnitPrice.Mul(decimal.NewFromInt(in.Quantity)),
		}
		if err := o.Store.CreateItem(ctx, item); err != nil {
			return err
		}
		order.TotalAmount = order.TotalAmount.Add(item.LineTotal)
		if err := o.Store.SetOrderTotal(ctx, orderID, order.TotalAmount); err != nil {
			return err
		}
		order.Items, err = o.Store.ListItems(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Submit moves a Draft order with at least one item to Pending.
func (o *Orders) Submit(ctx context.Context, orderID generic.ID) (*PurchaseOrder, error) {
	return o.transition(ctx, orderID, OrderDraft, OrderPending, nil, func(ctx context.Context, order *PurchaseOrder) error {
		if len(order.Items) == 0 {
			return generic.Validation("items", "purchase order %s has no items", order.Number)
		}
		return nil
	})
}

// Approve moves a Pending order to Approved and records the approver.
func (o *Orders) Approve(ctx context.Context, orderID, approverID generic.ID) (*PurchaseOrder, error) {
	return o.transition(ctx, orderID, OrderPending, OrderApproved, &approverID, nil)
}

// Receive books every item into inventory and moves the order to Received.
// Any failure rolls back stock, ledger rows and status together.
func (o *Orders) Receive(ctx context.Context, orderID, actorID generic.ID) (*PurchaseOrder, error) {
	return o.transition(ctx, orderID, OrderApproved, OrderReceived, nil, func(ctx context.Context, order *PurchaseOrder) error {
		lines := make([]inventory.ReceiptLine, 0, len(order.Items))
		for _, item := range order.Items {
			lines = append(lines, inventory.ReceiptLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		_, err := o.Receiver.Receive(ctx, inventory.Receipt{
			ReferenceType: inventory.RefPurchaseOrder,
			ReferenceID:   strconv.FormatInt(order.ID, 10),
			Notes:         "Received from PO #" + order.Number,
			ActorID:       actorID,
			Lines:         lines,
		})
		return err
	})
}

// transition runs the shared guard: lock, check from, run the step specific
// work, then compare-and-set the status.
func (o *Orders) transition(ctx context.Context, orderID generic.ID, from, to OrderStatus, approverID *generic.ID,
	step func(ctx context.Context, order *PurchaseOrder) error) (*PurchaseOrder, error) {
	var order *PurchaseOrder
	err := o.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if order, err = o.Store.LockOrder(ctx, orderID); err != nil {
			return err
		}
		if order.Status != from {
			return generic.Conflict("purchase order %s is %s, expected %s", order.Number, order.Status, from)
		}
		if order.Items, err = o.Store.ListItems(ctx, orderID); err != nil {
			return err
		}
		if step != nil {
			if err := step(ctx, order); err != nil {
				return err
			}
		}
		if err := o.Store.TransitionOrder(ctx, orderID, from, to, approverID); err != nil {
			return err
		}
		order.Status = to
		if approverID != nil {
			order.ApprovedByID = approverID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	generic.AfterCommit(ctx, func() { metrics.RecordTransition("purchase_order", string(to)) })
	o.Log.Info().
		Str("entity", "purchase_order").
		Int64("id", orderID).
		Str("po_number", order.Number).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("workflow transition")
	return order, nil
}

// Get returns the order with its items in insertion order.
func (o *Orders) Get(ctx context.Context, id generic.ID) (*PurchaseOrder, error) {
	order, err := o.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Items, err = o.Store.ListItems(ctx, id); err != nil {
		return nil, err
	}
	return order, nil
}

// List returns orders newest first, optionally only those in status.
func (o *Orders) List(ctx context.Context, status OrderStatus) ([]PurchaseOrder, error) {
	orders, err := o.Store.ListOrders(ctx, status)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].Items, err = o.Store.ListItems(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
