package rdb

import (
	"context"
	"strings"
	"time"

	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/inventory"
	"gorm.io/gorm"
)

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) CreateProduct(ctx context.Context, p *inventory.Product) error {
	return translate(s.conn(ctx).Create(p).Error, "product", p.SKU)
}

func (s *Store) GetProduct(ctx context.Context, id generic.ID) (*inventory.Product, error) {
	var p inventory.Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "product", id)
	}
	return &p, nil
}

func (s *Store) SearchProducts(ctx context.Context, filter inventory.ProductFilter) ([]inventory.Product, error) {
	q := s.conn(ctx)
	if term := strings.TrimSpace(filter.Term); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR sku LIKE ? OR description LIKE ?", like, like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	var out []inventory.Product
	err := q.Order("name, id").Find(&out).Error
	return out, translate(err, "product", "search")
}

func (s *Store) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	return translate(s.conn(ctx).Save(p).Error, "product", p.ID)
}

func (s *Store) DeactivateProduct(ctx context.Context, id generic.ID) error {
	res := s.conn(ctx).Model(&inventory.Product{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "product", id)
	}
	if res.RowsAffected == 0 {
		return generic.NotFound("product", id)
	}
	return nil
}

// =============================================================================
// STOCK
// =============================================================================

func (s *Store) CreateStock(ctx context.Context, st *inventory.Stock) error {
	st.LastUpdated = st.LastUpdated.UTC()
	return translate(s.conn(ctx).Create(st).Error, "inventory", st.ProductID)
}

func (s *Store) StockFor(ctx context.Context, productID generic.ID) (*inventory.Stock, error) {
	var st inventory.Stock
	if err := s.conn(ctx).Where("product_id = ?", productID).First(&st).Error; err != nil {
		return nil, translate(err, "inventory for product", productID)
	}
	return &st, nil
}

func (s *Store) IncrementStock(ctx context.Context, productID generic.ID, delta int64, at time.Time) (int64, error) {
	res := s.conn(ctx).Model(&inventory.Stock{}).
		Where("product_id = ?", productID).
		Updates(map[string]any{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"last_updated": at.UTC(),
		})
	if res.Error != nil {
		return 0, translate(res.Error, "inventory for product", productID)
	}
	if res.RowsAffected == 0 {
		return 0, generic.NotFound("inventory for product", productID)
	}
	var qty int64
	err := s.conn(ctx).Model(&inventory.Stock{}).Where("product_id = ?", productID).Select("quantity").Scan(&qty).Error
	return qty, translate(err, "inventory for product", productID)
}

func (s *Store) ListStock(ctx context.Context) ([]inventory.Stock, error) {
	var out []inventory.Stock
	err := s.conn(ctx).Order("product_id").Find(&out).Error
	return out, translate(err, "inventory", "list")
}

func (s *Store) ListLowStock(ctx context.Context) ([]inventory.Stock, error) {
	var out []inventory.Stock
	err := s.conn(ctx).Where("quantity <= minimum_stock_level").Order("product_id").Find(&out).Error
	return out, translate(err, "inventory", "low stock")
}

// =============================================================================
// LEDGER (insert and read only)
// =============================================================================

func (s *Store) AppendTransaction(ctx context.Context, tx *inventory.Transaction) error {
	tx.TransactionDate = tx.TransactionDate.UTC()
	return translate(s.conn(ctx).Create(tx).Error, "inventory transaction", tx.ProductID)
}

func (s *Store) ListTransactions(ctx context.Context, filter inventory.TxFilter) ([]inventory.Transaction, error) {
	q := s.conn(ctx)
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("transaction_type = ?", filter.Type)
	}
	var out []inventory.Transaction
	err := q.Order("transaction_date DESC, id DESC").Find(&out).Error
	return out, translate(err, "inventory transaction", "list")
}

func (s *Store) SumTransactions(ctx context.Context, productID generic.ID) (int64, error) {
	var sum int64
	err := s.conn(ctx).Model(&inventory.Transaction{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return sum, translate(err, "inventory transaction", productID)
}
