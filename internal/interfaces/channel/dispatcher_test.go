package channel_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/interfaces/channel"
)

var scope = domain.Scope{BusinessID: "biz-1", ActorID: "user-1"}

func newDispatcher(t *testing.T) *channel.Dispatcher {
	t.Helper()
	store := memory.New(time.Second)
	shop1, shop2 := "shop-1", "shop-2"
	store.SeedShop(entity.Shop{ID: shop1, BusinessID: "biz-1", Name: "Centro"})
	store.SeedShop(entity.Shop{ID: shop2, BusinessID: "biz-1", Name: "Norte"})
	store.SeedLocation(entity.StockLocation{ID: "loc-w1", BusinessID: "biz-1", ShopID: &shop1, Name: "W1"})
	store.SeedLocation(entity.StockLocation{ID: "loc-w2", BusinessID: "biz-1", ShopID: &shop2, Name: "W2"})
	store.SeedProduct(entity.Product{ID: "prod-p", BusinessID: "biz-1", SKU: "P-001", Name: "Café", ReorderPoint: 5})

	log := zerolog.Nop()
	reads := store.Repos()
	registry := inventory.NewRegistry(store, reads, log)
	return channel.NewDispatcher(
		registry,
		inventory.NewTransferCoordinator(store, registry, log),
		inventory.NewLedger(store, reads, registry, log),
		inventory.NewReorderEngine(reads, 30),
		inventory.NewValuationAggregator(reads),
		log,
	)
}

func payload(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func seed(t *testing.T, d *channel.Dispatcher, qty int64) dto.ItemResponse {
	t.Helper()
	env := d.Dispatch(context.Background(), scope, channel.OpStockCreate, payload(t, dto.CreateItemRequest{
		ProductID:       "prod-p",
		LocationID:      "loc-w1",
		InitialQuantity: qty,
		UnitCost:        decimal.NewFromInt(100),
		SellingPrice:    decimal.NewFromInt(150),
	}))
	require.True(t, env.Success, env.Message)
	require.NotNil(t, env.Item)
	return *env.Item
}

func TestDispatch_UpdateStock(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()
	seed(t, d, 10)

	env := d.Dispatch(ctx, scope, channel.OpStockUpdate,
		[]byte(`{"product_id":"prod-p","location_id":"loc-w1","quantity":12,"type":"decrement"}`))
	assert.False(t, env.Success)
	assert.Equal(t, domain.CodeInsufficientStock, env.Code)
	assert.False(t, env.Retryable)

	env = d.Dispatch(ctx, scope, channel.OpStockUpdate,
		[]byte(`{"product_id":"prod-p","location_id":"loc-w1","quantity":7,"type":"decrement"}`))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, int64(3), env.Item.Quantity)
	assert.Equal(t, string(entity.StatusLowStock), env.Item.Status)
	require.NotNil(t, env.Movement)
	assert.Equal(t, int64(-7), env.Movement.Delta)
	assert.Equal(t, string(entity.MovementSale), env.Movement.Type)

	env = d.Dispatch(ctx, scope, channel.OpStockUpdate,
		[]byte(`{"product_id":"prod-p","location_id":"loc-w1","quantity":2,"type":"sideways"}`))
	assert.Equal(t, domain.CodeValidation, env.Code)

	env = d.Dispatch(ctx, scope, channel.OpStockUpdate,
		[]byte(`{"product_id":"prod-p","location_id":"loc-w2","quantity":2,"type":"increment"}`))
	assert.Equal(t, domain.CodeNotFound, env.Code)
}

func TestDispatch_UnknownOperationAndBadPayload(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	env := d.Dispatch(ctx, scope, "stock.explode", nil)
	assert.False(t, env.Success)
	assert.Equal(t, domain.CodeValidation, env.Code)

	env = d.Dispatch(ctx, scope, channel.OpStockUpdate, []byte(`{"quantity":`))
	assert.Equal(t, domain.CodeValidation, env.Code)
}

func TestDispatch_TransferAndStats(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()
	seed(t, d, 10)

	env := d.Dispatch(ctx, scope, channel.OpStockTransfer, payload(t, dto.TransferRequest{
		SourceLocationID:      "loc-w1",
		DestinationLocationID: "loc-w2",
		ProductID:             "prod-p",
		Quantity:              6,
		BusinessID:            "biz-2",
	}))
	assert.Equal(t, domain.CodeUnauthorizedScope, env.Code)

	env = d.Dispatch(ctx, scope, channel.OpStockTransfer, payload(t, dto.TransferRequest{
		SourceLocationID:      "loc-w1",
		DestinationLocationID: "loc-w2",
		ProductID:             "prod-p",
		Quantity:              6,
		PerformedBy:           "user-1",
		BusinessID:            "biz-1",
	}))
	require.True(t, env.Success, env.Message)
	require.NotNil(t, env.Transfer)
	assert.Equal(t, int64(4), env.Transfer.Source.Quantity)
	assert.Equal(t, int64(6), env.Transfer.Destination.Quantity)
	require.NotNil(t, env.Transfer.Outbound.TransferID)
	assert.Equal(t, env.Transfer.TransferID, *env.Transfer.Outbound.TransferID)
	assert.Equal(t, env.Transfer.TransferID, *env.Transfer.Inbound.TransferID)

	env = d.Dispatch(ctx, scope, channel.OpLowStockCheck, []byte(`{"shop_id":"shop-1"}`))
	require.True(t, env.Success, env.Message)
	require.Len(t, env.Products, 1)
	assert.Equal(t, "W1", env.Products[0].LocationName)
	assert.Equal(t, "P-001", env.Products[0].SKU)

	env = d.Dispatch(ctx, scope, channel.OpBusinessInventory, []byte(`{"business_id":"biz-1"}`))
	require.True(t, env.Success, env.Message)
	assert.True(t, env.Stats.TotalValue.Equal(decimal.NewFromInt(1000)), env.Stats.TotalValue.String())
	assert.Equal(t, 1, env.Stats.LowStockItems)
	assert.Len(t, env.Stats.ShopStats, 2)

	env = d.Dispatch(ctx, scope, channel.OpBusinessInventory, []byte(`{"business_id":"biz-2"}`))
	assert.Equal(t, domain.CodeUnauthorizedScope, env.Code)

	env = d.Dispatch(ctx, scope, channel.OpShopInventory, []byte(`{"shop_id":"shop-2"}`))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Norte", env.ShopStats.ShopName)
	assert.True(t, env.ShopStats.TotalValue.Equal(decimal.NewFromInt(600)), env.ShopStats.TotalValue.String())
}

func TestDispatch_MovementsReverseReconcile(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()
	item := seed(t, d, 10)

	env := d.Dispatch(ctx, scope, channel.OpStockUpdate,
		[]byte(`{"product_id":"prod-p","location_id":"loc-w1","quantity":4,"type":"decrement"}`))
	require.True(t, env.Success, env.Message)
	saleID := env.Movement.ID

	env = d.Dispatch(ctx, scope, channel.OpStockMovements, payload(t, dto.MovementsRequest{ItemID: item.ID}))
	require.True(t, env.Success, env.Message)
	assert.Len(t, env.Movements, 2)
	require.NotNil(t, env.Page)
	assert.Equal(t, 50, env.Page.Limit)

	env = d.Dispatch(ctx, scope, channel.OpStockReverse, payload(t, dto.ReverseRequest{MovementID: saleID, Reason: "error de caja"}))
	require.True(t, env.Success, env.Message)
	require.Len(t, env.Movements, 1)
	assert.Equal(t, int64(4), env.Movements[0].Delta)

	env = d.Dispatch(ctx, scope, channel.OpStockReverse, payload(t, dto.ReverseRequest{MovementID: saleID}))
	assert.Equal(t, domain.CodeConflict, env.Code)
	assert.True(t, env.Retryable)

	env = d.Dispatch(ctx, scope, channel.OpStockReconcile, payload(t, dto.ReconcileRequest{ItemID: item.ID}))
	require.True(t, env.Success, env.Message)
	assert.True(t, env.Reconciliation.Balanced)
	assert.Equal(t, int64(10), env.Reconciliation.Quantity)

	env = d.Dispatch(ctx, scope, channel.OpStockGet, payload(t, dto.GetItemRequest{ProductID: "prod-p", LocationID: "loc-w1"}))
	require.True(t, env.Success, env.Message)
	assert.Equal(t, item.ID, env.Item.ID)
}
