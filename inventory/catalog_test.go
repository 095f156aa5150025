package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/erp-engine/generic"
	"github.com/warp/erp-engine/inventory"
)

func TestCreateProduct_BooksInitialQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.product(t, "W-1", 25, 5)
	require.NotNil(t, p.Stock)
	assert.Equal(t, int64(25), p.Stock.Quantity)

	txs, err := f.ledger(true).Transactions(ctx, inventory.TxFilter{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, inventory.TxInitial, txs[0].TransactionType)
	assert.Equal(t, inventory.RefProductCreation, txs[0].ReferenceType)
	assert.Equal(t, "Initial inventory setup", txs[0].Notes)

	requireReconciled(t, f.ledger(true), p.ID)
}

func TestCreateProduct_ZeroInitial_NoLedgerRow(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "W-1", 0, 0)

	txs, err := f.ledger(true).Transactions(context.Background(), inventory.TxFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCreateProduct_DuplicateSKU_Conflict(t *testing.T) {
	f := newFixture(t)
	f.product(t, "W-1", 0, 0)

	_, err := f.catalog().Create(context.Background(), inventory.ProductInput{Name: "Copy", SKU: "W-1"}, 0, 0)
	assert.ErrorIs(t, err, generic.ErrConflict)
}

func TestCreateProduct_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog().Create(ctx, inventory.ProductInput{SKU: "W-1"}, 0, 0)
	assert.ErrorIs(t, err, generic.ErrValidation)

	_, err = f.catalog().Create(ctx, inventory.ProductInput{Name: "W", SKU: "W-1"}, -1, 0)
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestSearchAndSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.catalog()
	keep := f.product(t, "W-1", 1, 0)
	gone := f.product(t, "W-2", 1, 0)

	require.NoError(t, c.Delete(ctx, gone.ID))

	active := true
	found, err := c.Search(ctx, inventory.ProductFilter{Term: "Widget", Active: &active})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, keep.ID, found[0].ID)
	require.NotNil(t, found[0].Stock)

	stored, err := c.Get(ctx, gone.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "W-1", 0, 0)

	inactive := false
	updated, err := f.catalog().Update(ctx, p.ID, inventory.ProductInput{
		Name:     "Widget Pro",
		SKU:      "W-1",
		UnitCost: decimal.RequireFromString("3.75"),
	}, &inactive)
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.False(t, updated.IsActive)

	_, err = f.catalog().Update(ctx, 999, inventory.ProductInput{Name: "X", SKU: "X"}, nil)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}
