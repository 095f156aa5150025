/*
Package procurement implements suppliers and the Purchase Order Workflow.

STATE MACHINE (strictly forward, no skipping):

  Draft --submit--> Pending --approve--> Approved --receive--> Received
  Draft --addItem--> Draft

KEY CONCEPTS:
  - TotalAmount is a running sum kept as items are added, not recomputed
    from the items on read. Items cannot be removed.
  - Receive is the only point where an order touches inventory. Stock,
    ledger rows and the status change commit together or not at all.
*/
package procurement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

type OrderStatus string

const (
	OrderDraft    OrderStatus = "Draft"
	OrderPending  OrderStatus = "Pending"
	OrderApproved OrderStatus = "Approved"
	OrderReceived OrderStatus = "Received"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderDraft, OrderPending, OrderApproved, OrderReceived} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", generic.Validation("status", "unknown purchase order status %q", s)
}

// Supplier is soft-deleted through IsActive.
type Supplier struct {
	ID            generic.ID `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:200;not null" json:"name"`
	ContactPerson string     `gorm:"size:100" json:"contact_person"`
	Email         string     `gorm:"size:100" json:"email"`
	Phone         string     `gorm:"size:50" json:"phone"`
	Address       string     `gorm:"size:500" json:"address"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }

type PurchaseOrder struct {
	ID                   generic.ID      `gorm:"primaryKey" json:"id"`
	Number               string          `gorm:"column:po_number;size:50;not null;uniqueIndex" json:"po_number"`
	SupplierID           generic.ID      `gorm:"not null;index" json:"supplier_id"`
	OrderDate            time.Time       `gorm:"not null;index" json:"order_date"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	Status               OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	Notes                string          `gorm:"size:1000" json:"notes"`
	CreatedByID          generic.ID      `gorm:"not null" json:"created_by_id"`
	ApprovedByID         *generic.ID     `json:"approved_by_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`

	Items []Item `gorm:"-" json:"items"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

// Item is one line of a purchase order. LineTotal = Quantity x UnitPrice.
type Item struct {
	ID              generic.ID      `gorm:"primaryKey" json:"id"`
	PurchaseOrderID generic.ID      `gorm:"not null;index" json:"purchase_order_id"`
	ProductID       generic.ID      `gorm:"not null;index" json:"product_id"`
	Quantity        int64           `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"line_total"`
}

func (Item) TableName() string { return "purchase_order_items" }
