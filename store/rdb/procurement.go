package rdb

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/inventory"
	"github.com/warp/erp-engine/procurement"
	"gorm.io/gorm/clause"
)

// =============================================================================
// SUPPLIERS
// =============================================================================

func (s *Store) CreateSupplier(ctx context.Context, sup *procurement.Supplier) error {
	return translate(s.conn(ctx).Create(sup).Error, "supplier", sup.Name)
}

func (s *Store) GetSupplier(ctx context.Context, id generic.ID) (*procurement.Supplier, error) {
	var sup procurement.Supplier
	if err := s.conn(ctx).First(&sup, id).Error; err != nil {
		return nil, translate(err, "supplier", id)
	}
	return &sup, nil
}

func (s *Store) SearchSuppliers(ctx context.Context, filter procurement.SupplierFilter) ([]procurement.Supplier, error) {
	q := s.conn(ctx)
	if term := strings.TrimSpace(filter.Term); term != "" {
		like := "%" + term + "%"
		q = q.Where("name LIKE ? OR contact_person LIKE ? OR email LIKE ?", like, like, like)
	}
	if filter.Active != nil {
		q = q.Where("is_active = ?", *filter.Active)
	}
	var out []procurement.Supplier
	err := q.Order("name, id").Find(&out).Error
	return out, translate(err, "supplier", "search")
}

func (s *Store) UpdateSupplier(ctx context.Context, sup *procurement.Supplier) error {
	return translate(s.conn(ctx).Save(sup).Error, "supplier", sup.ID)
}

func (s *Store) DeactivateSupplier(ctx context.Context, id generic.ID) error {
	res := s.conn(ctx).Model(&procurement.Supplier{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "supplier", id)
	}
	if res.RowsAffected == 0 {
		return generic.NotFound("supplier", id)
	}
	return nil
}

// =============================================================================
// PURCHASE ORDERS
// =============================================================================

func (s *Store) CreateOrder(ctx context.Context, o *procurement.PurchaseOrder) error {
	o.OrderDate = o.OrderDate.UTC()
	return translate(s.conn(ctx).Create(o).Error, "purchase order", o.Number)
}

func (s *Store) GetOrder(ctx context.Context, id generic.ID) (*procurement.PurchaseOrder, error) {
	var o procurement.PurchaseOrder
	if err := s.conn(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err, "purchase order", id)
	}
	return &o, nil
}

// LockOrder uses SELECT ... FOR UPDATE. The SQLite dialect drops the locking
// clause; SQLite serialises writers on its own.
func (s *Store) LockOrder(ctx context.Context, id generic.ID) (*procurement.PurchaseOrder, error) {
	var o procurement.PurchaseOrder
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error
	if err != nil {
		return nil, translate(err, "purchase order", id)
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, status procurement.OrderStatus) ([]procurement.PurchaseOrder, error) {
	q := s.conn(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []procurement.PurchaseOrder
	err := q.Order("order_date DESC, id DESC").Find(&out).Error
	return out, translate(err, "purchase order", "list")
}

func (s *Store) TransitionOrder(ctx context.Context, id generic.ID, from, to procurement.OrderStatus, approverID *generic.ID) error {
	fields := map[string]any{"status": to}
	if approverID != nil {
		fields["approved_by_id"] = *approverID
	}
	res := s.conn(ctx).Model(&procurement.PurchaseOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return s.affected(ctx, res, &procurement.PurchaseOrder{}, "purchase order", id, "is no longer "+string(from))
}

func (s *Store) SetOrderTotal(ctx context.Context, id generic.ID, total decimal.Decimal) error {
	res := s.conn(ctx).Model(&procurement.PurchaseOrder{}).
		Where("id = ? AND status = ?", id, procurement.OrderDraft).
		Update("total_amount", total)
	return s.affected(ctx, res, &procurement.PurchaseOrder{}, "purchase order", id, "is no longer Draft")
}

// =============================================================================
// ITEMS
// =============================================================================

func (s *Store) CreateItem(ctx context.Context, item *procurement.Item) error {
	return translate(s.conn(ctx).Create(item).Error, "purchase order item", item.PurchaseOrderID)
}

func (s *Store) ListItems(ctx context.Context, orderID generic.ID) ([]procurement.Item, error) {
	out := []procurement.Item{}
	err := s.conn(ctx).Where("purchase_order_id = ?", orderID).Order("id").Find(&out).Error
	return out, translate(err, "purchase order item", orderID)
}

func (s *Store) ProductExists(ctx context.Context, productID generic.ID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&inventory.Product{}).Where("id = ?", productID).Count(&n).Error
	return n > 0, translate(err, "product", productID)
}
