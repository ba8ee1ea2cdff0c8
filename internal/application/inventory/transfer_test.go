package inventory_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

func TestTransfer_MovesQuantityAndCreatesDestination(t *testing.T) {
	f := newFixture(t)
	src := f.seedItem(t, prodP, locW1, 10, 500)

	res, err := f.transfer.Transfer(f.ctx, f.scope, inventory.TransferInput{
		SourceLocationID:      locW1,
		DestinationLocationID: locW2,
		ProductID:             prodP,
		Quantity:              4,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.TransferID)

	assert.Equal(t, int64(6), f.quantity(t, prodP, locW1))
	assert.Equal(t, int64(4), f.quantity(t, prodP, locW2))
	assert.True(t, res.Destination.UnitCost.Equal(decimal.NewFromInt(500)), "el destino hereda el costo del origen")
	assert.Equal(t, int64(5), res.Destination.ReorderPoint)
	assert.Equal(t, entity.StatusLowStock, res.Destination.Status)

	legs, err := f.ledger.Query(f.ctx, f.scope, repository.MovementFilter{TransferID: res.TransferID})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	byDir := map[entity.Direction]*entity.StockMovement{}
	for _, m := range legs {
		assert.Equal(t, entity.MovementTransfer, m.Type)
		assert.Equal(t, int64(4), m.Quantity())
		require.NotNil(t, m.SourceLocationID)
		require.NotNil(t, m.DestinationLocationID)
		assert.Equal(t, locW1, *m.SourceLocationID)
		assert.Equal(t, locW2, *m.DestinationLocationID)
		assert.True(t, m.CostPerUnit.Equal(decimal.NewFromInt(500)))
		byDir[m.Direction] = m
	}
	require.Contains(t, byDir, entity.DirectionOutbound)
	require.Contains(t, byDir, entity.DirectionInbound)
	assert.Equal(t, src.ID, byDir[entity.DirectionOutbound].ItemID)
	assert.Equal(t, res.Destination.ID, byDir[entity.DirectionInbound].ItemID)

	f.requireBalanced(t, src.ID)
	f.requireBalanced(t, res.Destination.ID)
}

func TestTransfer_BlendsCostIntoExistingDestination(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, prodP, locW1, 10, 500)
	f.seedItem(t, prodP, locW2, 2, 200)

	res, err := f.transfer.Transfer(f.ctx, f.scope, inventory.TransferInput{
		SourceLocationID:      locW1,
		DestinationLocationID: locW2,
		ProductID:             prodP,
		Quantity:              8,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.Source.Quantity)
	assert.Equal(t, int64(10), res.Destination.Quantity)
	// (2×200 + 8×500) / 10
	assert.True(t, res.Destination.UnitCost.Equal(decimal.NewFromInt(440)), "got %s", res.Destination.UnitCost)
	assert.True(t, res.Source.UnitCost.Equal(decimal.NewFromInt(500)))
}

func TestTransfer_Rejections(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, prodP, locW1, 10, 500)

	cases := []struct {
		name string
		in   inventory.TransferInput
		want error
	}{
		{"stock insuficiente", inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: locW2, ProductID: prodP, Quantity: 11}, domain.ErrInsufficientStock},
		{"sin ítem en origen", inventory.TransferInput{SourceLocationID: locHQ, DestinationLocationID: locW2, ProductID: prodP, Quantity: 1}, domain.ErrInsufficientStock},
		{"cantidad cero", inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: locW2, ProductID: prodP, Quantity: 0}, domain.ErrInvalidInput},
		{"misma ubicación", inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: locW1, ProductID: prodP, Quantity: 1}, domain.ErrInvalidInput},
		{"ubicación desconocida", inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: "loc-none", ProductID: prodP, Quantity: 1}, domain.ErrInvalidLocation},
		{"otro negocio", inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: locOther, ProductID: prodP, Quantity: 1}, domain.ErrUnauthorizedScope},
		{"producto ajeno", inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: locW2, ProductID: prodOther, Quantity: 1}, domain.ErrUnauthorizedScope},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfer.Transfer(f.ctx, f.scope, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Equal(t, int64(10), f.quantity(t, prodP, locW1))
	_, err := f.registry.GetItem(f.ctx, f.scope, entity.NewStockKey(prodP, locW2))
	assert.ErrorIs(t, err, domain.ErrNotFound, "un traslado fallido no deja ítem en destino")
}

func TestTransfer_OppositeDirectionsConserveQuantity(t *testing.T) {
	f := newFixture(t)
	a := f.seedItem(t, prodP, locW1, 10, 500)
	b := f.seedItem(t, prodP, locW2, 10, 500)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.transfer.Transfer(f.ctx, f.scope, inventory.TransferInput{SourceLocationID: locW1, DestinationLocationID: locW2, ProductID: prodP, Quantity: 1})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.transfer.Transfer(f.ctx, f.scope, inventory.TransferInput{SourceLocationID: locW2, DestinationLocationID: locW1, ProductID: prodP, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	total := f.quantity(t, prodP, locW1) + f.quantity(t, prodP, locW2)
	assert.Equal(t, int64(20), total)
	f.requireBalanced(t, a.ID)
	f.requireBalanced(t, b.ID)
}

func TestTransfer_BatchTrackedStockKeepsExpiryAtDestination(t *testing.T) {
	f := newFixture(t)
	exp := fixedNow.AddDate(0, 0, 5)
	src, err := f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{
		Key:             entity.NewStockKey(prodBatch, locW1).WithBatch("L-1"),
		InitialQuantity: 10,
		UnitCost:        decimal.NewFromInt(100),
		ExpiryDate:      &exp,
	})
	require.NoError(t, err)

	move := func(qty int64) *inventory.TransferResult {
		res, err := f.transfer.Transfer(f.ctx, f.scope, inventory.TransferInput{
			SourceLocationID:      locW1,
			DestinationLocationID: locW2,
			ProductID:             prodBatch,
			BatchNumber:           "L-1",
			Quantity:              qty,
		})
		require.NoError(t, err)
		return res
	}

	res := move(4)
	batches := f.store.Repos().Batches
	dstBatch, err := batches.GetByItem(f.ctx, res.Destination.ID)
	require.NoError(t, err)
	require.NotNil(t, dstBatch)
	assert.Equal(t, entity.BatchActive, dstBatch.Status)
	assert.Equal(t, "L-1", dstBatch.BatchNumber)
	require.NotNil(t, dstBatch.ExpiryDate)
	assert.True(t, dstBatch.ExpiryDate.Equal(exp))

	expiring, err := f.reorder.ListExpiringBatches(f.ctx, f.scope, inventory.StockScope{ShopID: shop2}, 30)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, res.Destination.ID, expiring[0].Item.ID)
	assert.Equal(t, int64(4), expiring[0].Item.Quantity)

	move(6)
	srcBatch, err := batches.GetByItem(f.ctx, src.ID)
	require.NoError(t, err)
	require.NotNil(t, srcBatch)
	assert.Equal(t, entity.BatchDepleted, srcBatch.Status)

	dstBatch, err = batches.GetByItem(f.ctx, res.Destination.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchActive, dstBatch.Status)

	expiring, err = f.reorder.ListExpiringBatches(f.ctx, f.scope, inventory.StockScope{}, 30)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, locW2, expiring[0].Item.Key.LocationID)
	assert.Equal(t, int64(10), expiring[0].Item.Quantity)

	f.requireBalanced(t, src.ID)
	f.requireBalanced(t, res.Destination.ID)
}
