package inventory_test

import (
	"errors"
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

func TestRegistry_CreateItem_WritesOneMovement(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)

	assert.Equal(t, int64(10), item.Quantity)
	assert.Equal(t, entity.StatusInStock, item.Status)
	assert.Equal(t, int64(5), item.ReorderPoint, "toma el punto de reorden del producto")

	movs, err := f.ledger.Query(f.ctx, f.scope, repository.MovementFilter{ItemID: item.ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(10), movs[0].Delta)
	assert.Equal(t, entity.MovementPurchase, movs[0].Type)
	assert.Equal(t, entity.DirectionInbound, movs[0].Direction)
	assert.True(t, movs[0].TotalCost.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "user-1", movs[0].PerformedBy)
}

func TestRegistry_CreateItem_DuplicateKey(t *testing.T) {
	f := newFixture(t)
	f.seedItem(t, prodP, locW1, 10, 500)

	_, err := f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{
		Key:             entity.NewStockKey(prodP, locW1),
		InitialQuantity: 3,
		UnitCost:        decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, domain.ErrDuplicateItem)
	assert.Equal(t, domain.CodeDuplicateItem, domain.Code(err))
	assert.Equal(t, int64(10), f.quantity(t, prodP, locW1), "no sobrescribe el ítem existente")

	// Otra variante es otra clave.
	_, err = f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{
		Key:             entity.NewStockKey(prodP, locW1).WithVariant("talla-m"),
		InitialQuantity: 3,
	})
	require.NoError(t, err)
}

func TestRegistry_CreateItem_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{Key: entity.NewStockKey(prodP, "loc-none")})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)

	_, err = f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{Key: entity.NewStockKey("prod-none", locW1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{Key: entity.NewStockKey(prodP, locOther)})
	assert.ErrorIs(t, err, domain.ErrUnauthorizedScope)

	_, err = f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{Key: entity.NewStockKey(prodP, locW1), InitialQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{Key: entity.NewStockKey(prodBatch, locW1), InitialQuantity: 4})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "batch_id", verr.Field)
}

func TestRegistry_ApplyDelta_InsufficientStockLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)

	_, _, err := f.registry.ApplyDelta(f.ctx, f.scope, inventory.DeltaInput{
		Key:   item.Key,
		Delta: -12,
		Type:  entity.MovementSale,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var ierr *domain.InsufficientStockError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, int64(12), ierr.Requested)
	assert.Equal(t, int64(10), ierr.Available)
	assert.False(t, domain.Retryable(err))

	assert.Equal(t, int64(10), f.quantity(t, prodP, locW1))
	movs, err := f.ledger.Query(f.ctx, f.scope, repository.MovementFilter{ItemID: item.ID})
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestRegistry_ApplyDelta_DerivesStatus(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)

	updated, mov, err := f.registry.ApplyDelta(f.ctx, f.scope, inventory.DeltaInput{Key: item.Key, Delta: -5, Type: entity.MovementSale})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Quantity)
	assert.Equal(t, entity.StatusLowStock, updated.Status)
	assert.Equal(t, entity.DirectionOutbound, mov.Direction)
	assert.Equal(t, int64(5), mov.Quantity())

	updated, _, err = f.registry.ApplyDelta(f.ctx, f.scope, inventory.DeltaInput{Key: item.Key, Delta: -5, Type: entity.MovementSale})
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.Quantity)
	assert.Equal(t, entity.StatusOutOfStock, updated.Status)

	updated, _, err = f.registry.ApplyDelta(f.ctx, f.scope, inventory.DeltaInput{Key: item.Key, Delta: 6, Type: entity.MovementReturnCustomer})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInStock, updated.Status)
	f.requireBalanced(t, item.ID)
}

func TestRegistry_ApplyDelta_WeightedAverageCost(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)

	cost := decimal.NewFromInt(700)
	updated, mov, err := f.registry.ApplyDelta(f.ctx, f.scope, inventory.DeltaInput{
		Key:      item.Key,
		Delta:    10,
		Type:     entity.MovementPurchase,
		UnitCost: &cost,
	})
	require.NoError(t, err)
	assert.True(t, updated.UnitCost.Equal(decimal.NewFromInt(600)), "got %s", updated.UnitCost)
	assert.True(t, mov.CostPerUnit.Equal(cost))
	assert.True(t, mov.TotalCost.Equal(decimal.NewFromInt(7000)))
}

func TestRegistry_ApplyDelta_Rejections(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)

	cases := []struct {
		name string
		in   inventory.DeltaInput
		want error
	}{
		{"venta positiva", inventory.DeltaInput{Key: item.Key, Delta: 3, Type: entity.MovementSale}, domain.ErrInvalidInput},
		{"compra negativa", inventory.DeltaInput{Key: item.Key, Delta: -3, Type: entity.MovementPurchase}, domain.ErrInvalidInput},
		{"delta cero", inventory.DeltaInput{Key: item.Key, Delta: 0, Type: entity.MovementAdjustment}, domain.ErrInvalidInput},
		{"tipo traslado", inventory.DeltaInput{Key: item.Key, Delta: -1, Type: entity.MovementTransfer}, domain.ErrInvalidInput},
		{"tipo desconocido", inventory.DeltaInput{Key: item.Key, Delta: -1, Type: "gift"}, domain.ErrInvalidInput},
		{"ítem inexistente", inventory.DeltaInput{Key: entity.NewStockKey(prodP, locW2), Delta: 1, Type: entity.MovementPurchase}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.registry.ApplyDelta(f.ctx, f.scope, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(10), f.quantity(t, prodP, locW1))
}

func TestRegistry_ScopeIsEnforced(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)
	other := domain.Scope{BusinessID: otherBizID, ActorID: "intruso"}

	_, err := f.registry.GetItemByID(f.ctx, other, item.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedScope)

	_, _, err = f.registry.ApplyDelta(f.ctx, other, inventory.DeltaInput{Key: item.Key, Delta: -1, Type: entity.MovementSale})
	assert.ErrorIs(t, err, domain.ErrUnauthorizedScope)

	_, err = f.registry.GetItem(f.ctx, domain.Scope{BusinessID: bizID}, item.Key)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_ConcurrentDecrementsNeverGoNegative(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, prodP, locW1, 10, 500)

	const workers = 25
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.registry.ApplyDelta(f.ctx, f.scope, inventory.DeltaInput{Key: item.Key, Delta: -1, Type: entity.MovementSale})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, workers-10, rejected)
	assert.Equal(t, int64(0), f.quantity(t, prodP, locW1))
	f.requireBalanced(t, item.ID)
}
