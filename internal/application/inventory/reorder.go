package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockScope delimita una consulta de lectura: una ubicación, las ubicaciones de una tienda
// o, vacío, todas las ubicaciones del negocio.
type StockScope struct {
	ShopID     string
	LocationID string
}

// ItemView ítem con el producto y la ubicación resueltos para reportes.
type ItemView struct {
	Item     *entity.InventoryItem
	Product  *entity.Product
	Location *entity.StockLocation
	Batch    *entity.BatchTracking
}

// ReorderEngine clasifica ítems contra su punto de reorden. Solo lectura.
type ReorderEngine struct {
	reads          Repos
	defaultHorizon int
	now            func() time.Time
}

// NewReorderEngine construye el motor. defaultHorizonDays aplica cuando la consulta de vencimientos no indica días.
func NewReorderEngine(reads Repos, defaultHorizonDays int) *ReorderEngine {
	if defaultHorizonDays <= 0 {
		defaultHorizonDays = 30
	}
	return &ReorderEngine{reads: reads, defaultHorizon: defaultHorizonDays, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (e *ReorderEngine) WithClock(now func() time.Time) *ReorderEngine {
	e.now = now
	return e
}

// ListLowStock ítems con 0 < cantidad <= punto de reorden.
func (e *ReorderEngine) ListLowStock(ctx context.Context, scope domain.Scope, target StockScope) ([]ItemView, error) {
	return e.listByStatus(ctx, scope, target, entity.StatusLowStock)
}

// ListOutOfStock ítems con cantidad 0.
func (e *ReorderEngine) ListOutOfStock(ctx context.Context, scope domain.Scope, target StockScope) ([]ItemView, error) {
	return e.listByStatus(ctx, scope, target, entity.StatusOutOfStock)
}

// ListItems todos los ítems del alcance.
func (e *ReorderEngine) ListItems(ctx context.Context, scope domain.Scope, target StockScope) ([]ItemView, error) {
	return e.listByStatus(ctx, scope, target, "")
}

// ListExpiringBatches ítems con existencias cuyo lote activo vence entre ahora y ahora+horizonDays.
// horizonDays 0 usa el horizonte configurado. Ordenado por fecha de vencimiento.
func (e *ReorderEngine) ListExpiringBatches(ctx context.Context, scope domain.Scope, target StockScope, horizonDays int) ([]ItemView, error) {
	if horizonDays < 0 {
		return nil, domain.Invalid("days", "no puede ser negativo")
	}
	if horizonDays == 0 {
		horizonDays = e.defaultHorizon
	}
	locs, items, err := e.scopedItems(ctx, scope, target)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.InventoryItem, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		byID[it.ID] = it
		ids = append(ids, it.ID)
	}
	if len(ids) == 0 {
		return []ItemView{}, nil
	}
	batches, err := e.reads.Batches.ListActiveByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	from := e.now().UTC()
	to := from.AddDate(0, 0, horizonDays)

	products := map[string]*entity.Product{}
	out := make([]ItemView, 0)
	for _, b := range batches {
		it, ok := byID[b.ItemID]
		if !ok || b.Status != entity.BatchActive || !b.ExpiresWithin(from, to) {
			continue
		}
		p, err := e.product(ctx, products, it.Key.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, ItemView{Item: it, Product: p, Location: locs[it.Key.LocationID], Batch: b})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei, ej := *out[i].Batch.ExpiryDate, *out[j].Batch.ExpiryDate
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return out[i].Item.Key.String() < out[j].Item.Key.String()
	})
	return out, nil
}

func (e *ReorderEngine) listByStatus(ctx context.Context, scope domain.Scope, target StockScope, status entity.ItemStatus) ([]ItemView, error) {
	locs, items, err := e.scopedItems(ctx, scope, target)
	if err != nil {
		return nil, err
	}
	products := map[string]*entity.Product{}
	out := make([]ItemView, 0)
	for _, it := range items {
		// El estado se deriva de nuevo: no se confía en la columna persistida.
		if status != "" && entity.DeriveStatus(it.Quantity, it.ReorderPoint) != status {
			continue
		}
		p, err := e.product(ctx, products, it.Key.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, ItemView{Item: it, Product: p, Location: locs[it.Key.LocationID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Item.Key.String() < out[j].Item.Key.String()
	})
	return out, nil
}

// scopedItems resuelve las ubicaciones del alcance y sus ítems.
func (e *ReorderEngine) scopedItems(ctx context.Context, scope domain.Scope, target StockScope) (map[string]*entity.StockLocation, []*entity.InventoryItem, error) {
	locs, err := resolveLocations(ctx, e.reads, scope, target)
	if err != nil {
		return nil, nil, err
	}
	if len(locs) == 0 {
		return map[string]*entity.StockLocation{}, nil, nil
	}
	byID := make(map[string]*entity.StockLocation, len(locs))
	ids := make([]string, 0, len(locs))
	for _, l := range locs {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}
	items, err := e.reads.Items.ListByLocations(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	owned := items[:0]
	for _, it := range items {
		if scope.Owns(it.BusinessID) {
			owned = append(owned, it)
		}
	}
	return byID, owned, nil
}

func (e *ReorderEngine) product(ctx context.Context, cache map[string]*entity.Product, id string) (*entity.Product, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p, err := e.reads.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = p
	return p, nil
}

// resolveLocations traduce StockScope a ubicaciones, validando que pertenezcan al negocio.
func resolveLocations(ctx context.Context, reads Repos, scope domain.Scope, target StockScope) ([]*entity.StockLocation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	switch {
	case target.LocationID != "":
		loc, err := reads.Locations.GetByID(ctx, target.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidLocation, target.LocationID)
		}
		if !scope.Owns(loc.BusinessID) {
			return nil, domain.ErrUnauthorizedScope
		}
		if target.ShopID != "" && !loc.BelongsToShop(target.ShopID) {
			return nil, domain.Invalid("location_id", "no pertenece a la tienda indicada")
		}
		return []*entity.StockLocation{loc}, nil
	case target.ShopID != "":
		shop, err := reads.Shops.GetByID(ctx, target.ShopID)
		if err != nil {
			return nil, err
		}
		if shop == nil {
			return nil, fmt.Errorf("%w: tienda %s", domain.ErrNotFound, target.ShopID)
		}
		if !scope.Owns(shop.BusinessID) {
			return nil, domain.ErrUnauthorizedScope
		}
		return reads.Locations.ListByShop(ctx, shop.ID)
	default:
		return reads.Locations.ListByBusiness(ctx, scope.BusinessID)
	}
}
