package procurement

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/inventory"
)

// Store is the persistence surface of the procurement services.
type Store interface {
	generic.Transactor

	// Suppliers
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, id generic.ID) (*Supplier, error)
	SearchSuppliers(ctx context.Context, filter SupplierFilter) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, s *Supplier) error
	DeactivateSupplier(ctx context.Context, id generic.ID) error

	// Orders
	CreateOrder(ctx context.Context, o *PurchaseOrder) error
	GetOrder(ctx context.Context, id generic.ID) (*PurchaseOrder, error)
	// LockOrder reads the order and holds a row lock until the unit of work
	// ends, on dialects that support it.
	LockOrder(ctx context.Context, id generic.ID) (*PurchaseOrder, error)
	ListOrders(ctx context.Context, status OrderStatus) ([]PurchaseOrder, error)
	// TransitionOrder changes status only while it still equals from.
	// approverID is recorded when non-nil.
	TransitionOrder(ctx context.Context, id generic.ID, from, to OrderStatus, approverID *generic.ID) error
	// SetOrderTotal writes the total of a Draft order; Conflict otherwise.
	SetOrderTotal(ctx context.Context, id generic.ID, total decimal.Decimal) error

	// Items
	CreateItem(ctx context.Context, item *Item) error
	ListItems(ctx context.Context, orderID generic.ID) ([]Item, error)

	ProductExists(ctx context.Context, productID generic.ID) (bool, error)
}

// SupplierFilter narrows SearchSuppliers. Term matches name, contact or email.
type SupplierFilter struct {
	Term   string
	Active *bool
}

// Receiver books inbound stock. *inventory.Ledger satisfies it.
type Receiver interface {
	Receive(ctx context.Context, r inventory.Receipt) ([]inventory.Transaction, error)
}
