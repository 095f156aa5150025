package inventory

import (
	"context"
	"time"

	"github.com/warp/erp-engine/generic"
)

// Store is the persistence surface of the inventory services.
//
// Ledger rows have no update or delete method. Keep it that way.
type Store interface {
	generic.Transactor

	// Products
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id generic.ID) (*Product, error)
	SearchProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeactivateProduct(ctx context.Context, id generic.ID) error

	// Stock
	CreateStock(ctx context.Context, s *Stock) error
	// StockFor returns NotFound when the product has no stock row.
	StockFor(ctx context.Context, productID generic.ID) (*Stock, error)
	// IncrementStock adds delta to quantity in a single UPDATE and returns the
	// quantity after the change.
	IncrementStock(ctx context.Context, productID generic.ID, delta int64, at time.Time) (int64, error)
	ListStock(ctx context.Context) ([]Stock, error)
	ListLowStock(ctx context.Context) ([]Stock, error)

	// Ledger
	AppendTransaction(ctx context.Context, tx *Transaction) error
	ListTransactions(ctx context.Context, filter TxFilter) ([]Transaction, error)
	SumTransactions(ctx context.Context, productID generic.ID) (int64, error)
}

// ProductFilter narrows SearchProducts. Term matches name, SKU or description.
type ProductFilter struct {
	Term     string
	Category string
	Active   *bool
}

// TxFilter narrows ListTransactions. Results are newest first.
type TxFilter struct {
	ProductID generic.ID
	Type      TxType
}
