/*
ledger.go - Inventory Ledger

PURPOSE:
  Keeps the on-hand quantity of every product together with an append-only
  history of the deltas that produced it.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: ledger rows are inserted, never updated or deleted
  2. PAIRED WRITES: every change to Stock.Quantity is made in the same unit
     of work as the ledger row that explains it
  3. RECONCILABLE: the sum of a product's ledger deltas equals its quantity.
     Verify reports any drift instead of hiding it.

NEGATIVE STOCK:
  Adjustments are applied as given. With AllowNegative set (the default) the
  quantity may go below zero and a warning is logged. Without it, a change
  that would end below zero is a Conflict and nothing is written.

CORRECTIONS:
  A wrong adjustment is corrected by another adjustment with the opposite
  sign. Both rows stay in the ledger.

SEE ALSO:
  - procurement/order.go: Receive drives this ledger for purchase orders
*/
package inventory

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/metrics"
)

// =============================================================================
// LEDGER
// =============================================================================

type Ledger struct {
	Store         Store
	Clock         generic.Clock
	Log           zerolog.Logger
	AllowNegative bool
}

func NewLedger(store Store, clock generic.Clock, log zerolog.Logger, allowNegative bool) *Ledger {
	return &Ledger{Store: store, Clock: clock, Log: log, AllowNegative: allowNegative}
}

// AdjustInput describes one manual stock correction.
type AdjustInput struct {
	ProductID generic.ID
	Delta     int64
	Reason    string
	Type      TxType // empty: Addition or Reduction by the sign of Delta
	ActorID   generic.ID
}

// Adjust applies a signed delta to the product's stock and appends one
// ledger row tagged ManualAdjustment. A zero delta still appends its row,
// typed Reduction unless the caller names a type.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*Stock, error) {
	txType := in.Type
	if strings.TrimSpace(string(txType)) == "" {
		txType = TxReduction
		if in.Delta > 0 {
			txType = TxAddition
		}
	}

	var stock *Stock
	err := l.Store.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if _, err = l.Store.StockFor(ctx, in.ProductID); err != nil {
			return err
		}
		if stock, err = l.apply(ctx, in.ProductID, in.Delta); err != nil {
			return err
		}
		return l.append(ctx, &Transaction{
			ProductID:       in.ProductID,
			Quantity:        in.Delta,
			TransactionType: txType,
			ReferenceType:   RefManualAdjustment,
			UserID:          actorRef(in.ActorID),
			Notes:           strings.TrimSpace(in.Reason),
		})
	})
	if err != nil {
		return nil, err
	}

	generic.AfterCommit(ctx, func() { metrics.RecordAdjustment(string(txType)) })
	l.Log.Info().
		Int64("product_id", in.ProductID).
		Int64("delta", in.Delta).
		Int64("quantity", stock.Quantity).
		Str("type", string(txType)).
		Msg("inventory adjusted")
	return stock, nil
}

// ReceiptLine is one product arriving with a document.
type ReceiptLine struct {
	ProductID generic.ID
	Quantity  int64
}

// Receipt is a batch of inbound stock caused by one document.
type Receipt struct {
	ReferenceType string
	ReferenceID   string
	Notes         string
	ActorID       generic.ID
	Lines         []ReceiptLine
}

// Receive books inbound stock for every line. A product without a stock row
// gets one with minimum level 0. Called inside the caller's unit of work, the
// whole receipt commits or rolls back with it, and so does its metric.
func (l *Ledger) Receive(ctx context.Context, r Receipt) ([]Transaction, error) {
	if len(r.Lines) == 0 {
		return nil, generic.Validation("lines", "receipt has no lines")
	}
	var booked []Transaction
	err := l.Store.WithTx(ctx, func(ctx context.Context) error {
		for _, line := range r.Lines {
			if line.Quantity <= 0 {
				return generic.Validation("quantity", "received quantity must be positive, got %d", line.Quantity)
			}
			if err := l.receiveLine(ctx, line); err != nil {
				return err
			}
			tx := Transaction{
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				TransactionType: TxInbound,
				ReferenceID:     r.ReferenceID,
				ReferenceType:   r.ReferenceType,
				UserID:          actorRef(r.ActorID),
				Notes:           r.Notes,
			}
			if err := l.append(ctx, &tx); err != nil {
				return err
			}
			booked = append(booked, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	generic.AfterCommit(ctx, func() {
		for _, tx := range booked {
			metrics.RecordAdjustment(string(tx.TransactionType))
		}
	})
	return booked, nil
}

func (l *Ledger) receiveLine(ctx context.Context, line ReceiptLine) error {
	_, err := l.Store.StockFor(ctx, line.ProductID)
	if generic.IsNotFound(err) {
		return l.Store.CreateStock(ctx, &Stock{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			MinimumStockLevel: 0,
			LastUpdated:       l.Clock.Now(),
		})
	}
	if err != nil {
		return err
	}
	_, err = l.apply(ctx, line.ProductID, line.Quantity)
	return err
}

// LowStock lists stock rows whose quantity is at or below the minimum level.
func (l *Ledger) LowStock(ctx context.Context) ([]Stock, error) {
	return l.Store.ListLowStock(ctx)
}

func (l *Ledger) Levels(ctx context.Context) ([]Stock, error) {
	return l.Store.ListStock(ctx)
}

func (l *Ledger) Transactions(ctx context.Context, filter TxFilter) ([]Transaction, error) {
	return l.Store.ListTransactions(ctx, filter)
}

// Reconciliation compares a product's stock with its ledger.
type Reconciliation struct {
	ProductID generic.ID `json:"product_id"`
	Quantity  int64      `json:"quantity"`
	LedgerSum int64      `json:"ledger_sum"`
	Drift     int64      `json:"drift"`
}

func (r Reconciliation) Consistent() bool { return r.Drift == 0 }

// Verify reports how far the stored quantity has drifted from the ledger.
func (l *Ledger) Verify(ctx context.Context, productID generic.ID) (Reconciliation, error) {
	var rec Reconciliation
	err := l.Store.WithTx(ctx, func(ctx context.Context) error {
		stock, err := l.Store.StockFor(ctx, productID)
		if err != nil {
			return err
		}
		sum, err := l.Store.SumTransactions(ctx, productID)
		if err != nil {
			return err
		}
		rec = Reconciliation{
			ProductID: productID,
			Quantity:  stock.Quantity,
			LedgerSum: sum,
			Drift:     stock.Quantity - sum,
		}
		return nil
	})
	if err != nil {
		return Reconciliation{}, err
	}
	if !rec.Consistent() {
		l.Log.Warn().Int64("product_id", productID).Int64("drift", rec.Drift).Msg("inventory ledger drift")
	}
	return rec, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (l *Ledger) apply(ctx context.Context, productID generic.ID, delta int64) (*Stock, error) {
	qty, err := l.Store.IncrementStock(ctx, productID, delta, l.Clock.Now())
	if err != nil {
		return nil, err
	}
	if qty < 0 {
		if !l.AllowNegative {
			return nil, generic.Conflict("product %d would go to %d on hand", productID, qty)
		}
		l.Log.Warn().Int64("product_id", productID).Int64("quantity", qty).Msg("stock is negative")
	}
	return l.Store.StockFor(ctx, productID)
}

func (l *Ledger) append(ctx context.Context, tx *Transaction) error {
	tx.TransactionDate = l.Clock.Now()
	return l.Store.AppendTransaction(ctx, tx)
}

func actorRef(id generic.ID) *generic.ID {
	if id == 0 {
		return nil
	}
	return &id
}
