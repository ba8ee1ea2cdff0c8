package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestValuation_BusinessStats(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, prodP, locW1, 10, 500) // 5000, in_stock
	f.seedItem(t, prodP, locHQ, 0, 500)  // out_of_stock, sin tienda
	exp := fixedNow.AddDate(0, 1, 0)
	_, err := f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{
		Key:             entity.NewStockKey(prodBatch, locW1).WithBatch("L1"),
		InitialQuantity: 2,
		UnitCost:        decimal.RequireFromString("150.50"),
		ExpiryDate:      &exp,
	}) // 301, low_stock
	require.NoError(t, err)

	stats, err := f.valuer.BusinessStats(f.ctx, f.scope)
	require.NoError(t, err)
	assert.True(t, stats.TotalValue.Equal(decimal.RequireFromString("5301")), "got %s", stats.TotalValue)
	assert.Equal(t, 1, stats.LowStockItems)
	assert.Equal(t, 1, stats.OutOfStockItems)
	assert.Equal(t, 2, stats.TotalProducts)

	require.Len(t, stats.Shops, 2)
	assert.Equal(t, shop1, stats.Shops[0].ShopID)
	assert.True(t, stats.Shops[0].TotalValue.Equal(decimal.RequireFromString("5301")))
	assert.Equal(t, 0, stats.Shops[0].OutOfStockItems)
	assert.Equal(t, shop2, stats.Shops[1].ShopID)
	assert.True(t, stats.Shops[1].TotalValue.IsZero(), "una tienda sin ítems aporta cero")
	assert.Equal(t, 0, stats.Shops[1].TotalProducts)
}

func TestValuation_TransferKeepsValue(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, prodP, locW1, 10, 500)

	before, err := f.valuer.BusinessStats(f.ctx, f.scope)
	require.NoError(t, err)
	_, err = f.transfer.Transfer(f.ctx, f.scope, inventory.TransferInput{
		SourceLocationID: locW1, DestinationLocationID: locW2, ProductID: prodP, Quantity: 4,
	})
	require.NoError(t, err)
	after, err := f.valuer.BusinessStats(f.ctx, f.scope)
	require.NoError(t, err)

	assert.True(t, before.TotalValue.Equal(after.TotalValue))
	shop2Stats, err := f.valuer.ShopStats(f.ctx, f.scope, shop2)
	require.NoError(t, err)
	assert.True(t, shop2Stats.TotalValue.Equal(decimal.NewFromInt(2000)))
}

func TestValuation_ShopScope(t *testing.T) {
	f := newFixture(t)

	_, err := f.valuer.ShopStats(f.ctx, f.scope, shopOther)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedScope)

	_, err = f.valuer.ShopStats(f.ctx, f.scope, "shop-none")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	empty, err := f.valuer.ShopStats(f.ctx, f.scope, shop1)
	require.NoError(t, err)
	assert.True(t, empty.TotalValue.IsZero())
	assert.Equal(t, "Centro", empty.ShopName)
}
