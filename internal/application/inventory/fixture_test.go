package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

const (
	bizID      = "biz-1"
	otherBizID = "biz-2"
	shop1      = "shop-1"
	shop2      = "shop-2"
	shopOther  = "shop-x"
	locW1      = "loc-w1"
	locW2      = "loc-w2"
	locHQ      = "loc-hq"
	locOther   = "loc-x1"
	prodP      = "prod-p"
	prodBatch  = "prod-b"
	prodOther  = "prod-x"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	registry *inventory.Registry
	transfer *inventory.TransferCoordinator
	ledger   *inventory.Ledger
	reorder  *inventory.ReorderEngine
	valuer   *inventory.ValuationAggregator
	scope    domain.Scope
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New(2 * time.Second)
	strPtr := func(s string) *string { return &s }

	store.SeedShop(entity.Shop{ID: shop1, BusinessID: bizID, Name: "Centro"})
	store.SeedShop(entity.Shop{ID: shop2, BusinessID: bizID, Name: "Norte"})
	store.SeedShop(entity.Shop{ID: shopOther, BusinessID: otherBizID, Name: "Ajena"})
	store.SeedLocation(entity.StockLocation{ID: locW1, BusinessID: bizID, ShopID: strPtr(shop1), Name: "W1"})
	store.SeedLocation(entity.StockLocation{ID: locW2, BusinessID: bizID, ShopID: strPtr(shop2), Name: "W2"})
	store.SeedLocation(entity.StockLocation{ID: locHQ, BusinessID: bizID, Name: "Bodega central"})
	store.SeedLocation(entity.StockLocation{ID: locOther, BusinessID: otherBizID, ShopID: strPtr(shopOther), Name: "X1"})
	store.SeedProduct(entity.Product{ID: prodP, BusinessID: bizID, SKU: "P-001", Name: "Café", ReorderPoint: 5})
	store.SeedProduct(entity.Product{ID: prodBatch, BusinessID: bizID, SKU: "B-001", Name: "Leche", ReorderPoint: 2, HasBatchTracking: true, HasExpiryDate: true})
	store.SeedProduct(entity.Product{ID: prodOther, BusinessID: otherBizID, SKU: "X-001", Name: "Ajeno", ReorderPoint: 1})

	log := zerolog.Nop()
	reads := store.Repos()
	clock := func() time.Time { return fixedNow }
	registry := inventory.NewRegistry(store, reads, log).WithClock(clock)
	return &fixture{
		store:    store,
		registry: registry,
		transfer: inventory.NewTransferCoordinator(store, registry, log),
		ledger:   inventory.NewLedger(store, reads, registry, log),
		reorder:  inventory.NewReorderEngine(reads, 30).WithClock(clock),
		valuer:   inventory.NewValuationAggregator(reads),
		scope:    domain.Scope{BusinessID: bizID, ActorID: "user-1"},
		ctx:      context.Background(),
	}
}

// seedItem crea un ítem sin lote con la cantidad y costo dados.
func (f *fixture) seedItem(t *testing.T, productID, locationID string, qty int64, cost int64) *entity.InventoryItem {
	t.Helper()
	item, err := f.registry.CreateItem(f.ctx, f.scope, inventory.CreateItemInput{
		Key:             entity.NewStockKey(productID, locationID),
		InitialQuantity: qty,
		UnitCost:        decimal.NewFromInt(cost),
		SellingPrice:    decimal.NewFromInt(cost * 2),
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) quantity(t *testing.T, productID, locationID string) int64 {
	t.Helper()
	item, err := f.registry.GetItem(f.ctx, f.scope, entity.NewStockKey(productID, locationID))
	require.NoError(t, err)
	return item.Quantity
}

func (f *fixture) requireBalanced(t *testing.T, itemID string) {
	t.Helper()
	rec, err := f.ledger.Reconcile(f.ctx, f.scope, itemID)
	require.NoError(t, err)
	require.True(t, rec.Balanced, "cantidad %d, libro %d", rec.Quantity, rec.LedgerSum)
}

func ptr[T any](v T) *T { return &v }
