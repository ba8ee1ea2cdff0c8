package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		qty, reorder int64
		want         entity.ItemStatus
	}{
		{0, 5, entity.StatusOutOfStock},
		{1, 5, entity.StatusLowStock},
		{5, 5, entity.StatusLowStock},
		{6, 5, entity.StatusInStock},
		{0, 0, entity.StatusOutOfStock},
		{1, 0, entity.StatusInStock},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, entity.DeriveStatus(c.qty, c.reorder), "qty=%d reorder=%d", c.qty, c.reorder)
	}
}

func TestStockKey_Constructores(t *testing.T) {
	k := entity.NewStockKey("p1", "w1").WithBatch("L-01").WithVariant("red")
	assert.Equal(t, "p1@w1#L-01/red", k.String())
	assert.NoError(t, k.Validate())

	moved := k.AtLocation("w2")
	assert.Equal(t, "w2", moved.LocationID)
	assert.Equal(t, "w1", k.LocationID, "AtLocation no debe mutar la clave original")

	assert.Error(t, entity.StockKey{LocationID: "w1"}.Validate())
	assert.Error(t, entity.StockKey{ProductID: "p1"}.Validate())
}

func TestInventoryItem_ValueYRefresh(t *testing.T) {
	it := &entity.InventoryItem{Quantity: 3, ReorderPoint: 5, UnitCost: decimal.NewFromInt(500)}
	it.Refresh()
	assert.Equal(t, entity.StatusLowStock, it.Status)
	assert.True(t, it.Value().Equal(decimal.NewFromInt(1500)))
}

func TestMovementType_AllowsDelta(t *testing.T) {
	assert.True(t, entity.MovementPurchase.AllowsDelta(3))
	assert.False(t, entity.MovementPurchase.AllowsDelta(-3))
	assert.True(t, entity.MovementSale.AllowsDelta(-1))
	assert.False(t, entity.MovementSale.AllowsDelta(1))
	assert.True(t, entity.MovementAdjustment.AllowsDelta(-2))
	assert.True(t, entity.MovementTransfer.AllowsDelta(2))
	assert.False(t, entity.MovementAdjustment.AllowsDelta(0))
	assert.False(t, entity.MovementType("gift").AllowsDelta(1))
}
