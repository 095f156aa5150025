package inventory

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

// Catalog manages products. Creating a product also opens its stock row so
// every product has exactly one.
type Catalog struct {
	Store Store
	Clock generic.Clock
	Log   zerolog.Logger
}

func NewCatalog(store Store, clock generic.Clock, log zerolog.Logger) *Catalog {
	return &Catalog{Store: store, Clock: clock, Log: log}
}

type ProductInput struct {
	Name          string
	SKU           string
	Description   string
	Category      string
	UnitCost      decimal.Decimal
	UnitOfMeasure string
	Barcode       string
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return generic.Validation("name", "product name is required")
	case strings.TrimSpace(in.SKU) == "":
		return generic.Validation("sku", "sku is required")
	case in.UnitCost.IsNegative():
		return generic.Validation("unit_cost", "unit cost cannot be negative")
	}
	return nil
}

func (in ProductInput) apply(p *Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.SKU = strings.TrimSpace(in.SKU)
	p.Description = in.Description
	p.Category = strings.TrimSpace(in.Category)
	p.UnitCost = in.UnitCost
	p.UnitOfMeasure = in.UnitOfMeasure
	p.Barcode = in.Barcode
}

// Create adds an active product with its stock row. A positive initial
// quantity is booked as an Initial ledger row.
func (c *Catalog) Create(ctx context.Context, in ProductInput, initialQuantity, minimumStock int64) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if initialQuantity < 0 {
		return nil, generic.Validation("initial_quantity", "initial quantity cannot be negative")
	}
	if minimumStock < 0 {
		return nil, generic.Validation("minimum_stock_level", "minimum stock level cannot be negative")
	}

	p := &Product{IsActive: true}
	in.apply(p)
	err := c.Store.WithTx(ctx, func(ctx context.Context) error {
		if err := c.Store.CreateProduct(ctx, p); err != nil {
			return err
		}
		now := c.Clock.Now()
		p.Stock = &Stock{
			ProductID:         p.ID,
			Quantity:          initialQuantity,
			MinimumStockLevel: minimumStock,
			LastUpdated:       now,
		}
		if err := c.Store.CreateStock(ctx, p.Stock); err != nil {
			return err
		}
		if initialQuantity == 0 {
			return nil
		}
		return c.Store.AppendTransaction(ctx, &Transaction{
			ProductID:       p.ID,
			Quantity:        initialQuantity,
			TransactionType: TxInitial,
			TransactionDate: now,
			ReferenceType:   RefProductCreation,
			Notes:           "Initial inventory setup",
		})
	})
	if err != nil {
		return nil, err
	}

	c.Log.Info().Int64("product_id", p.ID).Str("sku", p.SKU).Int64("initial_quantity", initialQuantity).Msg("product created")
	return p, nil
}

// Get returns the product with its stock row attached.
func (c *Catalog) Get(ctx context.Context, id generic.ID) (*Product, error) {
	p, err := c.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.attachStock(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Catalog) Search(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := c.Store.SearchProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if err := c.attachStock(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// Update overwrites the descriptive fields. The active flag is only changed
// through Update when active is non-nil.
func (c *Catalog) Update(ctx context.Context, id generic.ID, in ProductInput, active *bool) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var p *Product
	err := c.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if p, err = c.Store.GetProduct(ctx, id); err != nil {
			return err
		}
		in.apply(p)
		if active != nil {
			p.IsActive = *active
		}
		return c.Store.UpdateProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete is a soft delete: the product stays, inactive.
func (c *Catalog) Delete(ctx context.Context, id generic.ID) error {
	return c.Store.WithTx(ctx, func(ctx context.Context) error {
		if _, err := c.Store.GetProduct(ctx, id); err != nil {
			return err
		}
		return c.Store.DeactivateProduct(ctx, id)
	})
}

func (c *Catalog) attachStock(ctx context.Context, p *Product) error {
	stock, err := c.Store.StockFor(ctx, p.ID)
	if generic.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	p.Stock = stock
	return nil
}
