package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/erp-engine/generic"
)

// =============================================================================
// PRODUCT
// =============================================================================

// Product is never hard-deleted; deletion clears IsActive.
type Product struct {
	ID            generic.ID      `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	SKU           string          `gorm:"column:sku;size:50;not null;uniqueIndex" json:"sku"`
	Description   string          `gorm:"size:1000" json:"description"`
	Category      string          `gorm:"size:100;index" json:"category"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,2)" json:"unit_cost"`
	UnitOfMeasure string          `gorm:"size:20" json:"unit_of_measure"`
	Barcode       string          `gorm:"size:100" json:"barcode"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Stock *Stock `gorm:"-" json:"inventory,omitempty"`
}

func (Product) TableName() string { return "products" }

// =============================================================================
// STOCK - the mutable on-hand snapshot, exactly one per product
// =============================================================================

type Stock struct {
	ID                generic.ID  `gorm:"primaryKey" json:"id"`
	ProductID         generic.ID  `gorm:"not null;uniqueIndex" json:"product_id"`
	Quantity          int64       `gorm:"not null" json:"quantity"`
	MinimumStockLevel int64       `gorm:"not null" json:"minimum_stock_level"`
	LocationID        *generic.ID `json:"location_id,omitempty"`
	LastUpdated       time.Time   `gorm:"not null" json:"last_updated"`
}

func (Stock) TableName() string { return "inventories" }

// IsLow reports quantity <= minimum level.
func (s Stock) IsLow() bool { return s.Quantity <= s.MinimumStockLevel }

// =============================================================================
// LEDGER ROWS
// =============================================================================

// TxType tags a ledger row. Manual adjustments may carry any caller-supplied
// tag; the constants below are the ones the system writes itself.
type TxType string

const (
	TxAddition  TxType = "Addition"
	TxReduction TxType = "Reduction"
	TxInitial   TxType = "Initial"
	TxInbound   TxType = "Inbound"
)

// Reference types name the document that caused a ledger row.
const (
	RefManualAdjustment = "ManualAdjustment"
	RefProductCreation  = "ProductCreation"
	RefPurchaseOrder    = "PurchaseOrder"
)

// Transaction is an append-only ledger row. Quantity is the signed delta.
type Transaction struct {
	ID              generic.ID  `gorm:"primaryKey" json:"id"`
	ProductID       generic.ID  `gorm:"not null;index" json:"product_id"`
	Quantity        int64       `gorm:"not null" json:"quantity"`
	TransactionType TxType      `gorm:"size:50;not null;index" json:"transaction_type"`
	TransactionDate time.Time   `gorm:"not null;index" json:"transaction_date"`
	ReferenceID     string      `gorm:"size:100" json:"reference_id,omitempty"`
	ReferenceType   string      `gorm:"size:50" json:"reference_type"`
	UserID          *generic.ID `json:"user_id,omitempty"`
	Notes           string      `gorm:"size:1000" json:"notes"`
}

func (Transaction) TableName() string { return "inventory_transactions" }
