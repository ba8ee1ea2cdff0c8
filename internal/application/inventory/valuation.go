package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ShopStats totales de inventario de una tienda.
type ShopStats struct {
	ShopID          string
	ShopName        string
	TotalValue      decimal.Decimal
	LowStockItems   int
	OutOfStockItems int
	TotalProducts   int
}

// BusinessStats totales del negocio; incluye las ubicaciones sin tienda.
type BusinessStats struct {
	BusinessID      string
	TotalValue      decimal.Decimal
	LowStockItems   int
	OutOfStockItems int
	TotalProducts   int
	Shops           []ShopStats
}

// ValuationAggregator agrega cantidad × costo unitario por tienda y negocio. Solo lectura.
type ValuationAggregator struct {
	reads Repos
}

func NewValuationAggregator(reads Repos) *ValuationAggregator {
	return &ValuationAggregator{reads: reads}
}

type tally struct {
	value    decimal.Decimal
	low, out int
	products map[string]struct{}
}

func newTally() *tally {
	return &tally{value: decimal.Zero, products: map[string]struct{}{}}
}

func (t *tally) add(it *entity.InventoryItem) {
	t.value = t.value.Add(it.Value())
	switch entity.DeriveStatus(it.Quantity, it.ReorderPoint) {
	case entity.StatusLowStock:
		t.low++
	case entity.StatusOutOfStock:
		t.out++
	}
	t.products[it.Key.ProductID] = struct{}{}
}

// ShopStats totales de una tienda. Una tienda sin ítems devuelve ceros.
func (v *ValuationAggregator) ShopStats(ctx context.Context, scope domain.Scope, shopID string) (*ShopStats, error) {
	if shopID == "" {
		return nil, domain.Invalid("shop_id", "es requerido")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	shop, err := v.reads.Shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, fmt.Errorf("%w: tienda %s", domain.ErrNotFound, shopID)
	}
	if !scope.Owns(shop.BusinessID) {
		return nil, domain.ErrUnauthorizedScope
	}
	t, err := v.tallyLocations(ctx, scope, StockScope{ShopID: shopID})
	if err != nil {
		return nil, err
	}
	s := t.shopStats(shop)
	return &s, nil
}

// BusinessStats totales del negocio del alcance y el desglose por tienda.
// totalProducts cuenta productos distintos con al menos un ítem.
func (v *ValuationAggregator) BusinessStats(ctx context.Context, scope domain.Scope) (*BusinessStats, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	shops, err := v.reads.Shops.ListByBusiness(ctx, scope.BusinessID)
	if err != nil {
		return nil, err
	}
	locs, err := v.reads.Locations.ListByBusiness(ctx, scope.BusinessID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(locs))
	shopOf := make(map[string]string, len(locs))
	for _, l := range locs {
		ids = append(ids, l.ID)
		if l.ShopID != nil {
			shopOf[l.ID] = *l.ShopID
		}
	}
	var items []*entity.InventoryItem
	if len(ids) > 0 {
		if items, err = v.reads.Items.ListByLocations(ctx, ids); err != nil {
			return nil, err
		}
	}

	total := newTally()
	perShop := make(map[string]*tally, len(shops))
	for _, s := range shops {
		perShop[s.ID] = newTally()
	}
	for _, it := range items {
		if !scope.Owns(it.BusinessID) {
			continue
		}
		total.add(it)
		if t, ok := perShop[shopOf[it.Key.LocationID]]; ok {
			t.add(it)
		}
	}

	stats := &BusinessStats{
		BusinessID:      scope.BusinessID,
		TotalValue:      total.value,
		LowStockItems:   total.low,
		OutOfStockItems: total.out,
		TotalProducts:   len(total.products),
		Shops:           make([]ShopStats, 0, len(shops)),
	}
	for _, s := range shops {
		stats.Shops = append(stats.Shops, perShop[s.ID].shopStats(s))
	}
	sort.SliceStable(stats.Shops, func(i, j int) bool { return stats.Shops[i].ShopID < stats.Shops[j].ShopID })
	return stats, nil
}

func (v *ValuationAggregator) tallyLocations(ctx context.Context, scope domain.Scope, target StockScope) (*tally, error) {
	locs, err := resolveLocations(ctx, v.reads, scope, target)
	if err != nil {
		return nil, err
	}
	t := newTally()
	if len(locs) == 0 {
		return t, nil
	}
	ids := make([]string, 0, len(locs))
	for _, l := range locs {
		ids = append(ids, l.ID)
	}
	items, err := v.reads.Items.ListByLocations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if scope.Owns(it.BusinessID) {
			t.add(it)
		}
	}
	return t, nil
}

func (t *tally) shopStats(shop *entity.Shop) ShopStats {
	return ShopStats{
		ShopID:          shop.ID,
		ShopName:        shop.Name,
		TotalValue:      t.value,
		LowStockItems:   t.low,
		OutOfStockItems: t.out,
		TotalProducts:   len(t.products),
	}
}
