package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.InventoryItemRepository = itemRepo{}
	_ repository.StockMovementRepository = movementRepo{}
	_ repository.BatchRepository         = batchRepo{}
	_ repository.LocationRepository      = locationRepo{}
	_ repository.ShopRepository          = shopRepo{}
	_ repository.ProductRepository       = productRepo{}
)

type itemRepo struct{ b binding }

func (r itemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.b.write(ctx, func(st *state) error {
		if _, ok := st.itemKeys[item.Key]; ok {
			return domain.ErrDuplicateItem
		}
		st.items[item.ID] = item.Clone()
		st.itemKeys[item.Key] = item.ID
		return nil
	})
}

func (r itemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.b.read(func(st *state) error {
		if it, ok := st.items[id]; ok {
			out = it.Clone()
		}
		return nil
	})
	return out, err
}

func (r itemRepo) GetByKey(_ context.Context, key entity.StockKey) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.b.read(func(st *state) error {
		if id, ok := st.itemKeys[key]; ok {
			out = st.items[id].Clone()
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByKey: el candado de escritura del store ya serializa las transacciones.
func (r itemRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.InventoryItem, error) {
	return r.GetByKey(ctx, key)
}

func (r itemRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r itemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	return r.b.write(ctx, func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
		}
		next := item.Clone()
		next.Key = cur.Key
		next.CreatedAt = cur.CreatedAt
		st.items[item.ID] = next
		return nil
	})
}

func (r itemRepo) ListByLocations(_ context.Context, locationIDs []string) ([]*entity.InventoryItem, error) {
	want := make(map[string]struct{}, len(locationIDs))
	for _, id := range locationIDs {
		want[id] = struct{}{}
	}
	out := make([]*entity.InventoryItem, 0)
	err := r.b.read(func(st *state) error {
		for _, it := range st.items {
			if _, ok := want[it.Key.LocationID]; ok {
				out = append(out, it.Clone())
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, err
}

type movementRepo struct{ b binding }

func (r movementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	return r.b.write(ctx, func(st *state) error {
		if _, ok := st.movIndex[m.ID]; ok {
			return fmt.Errorf("%w: movimiento %s", domain.ErrConflict, m.ID)
		}
		cp := *m
		st.movIndex[m.ID] = len(st.movements)
		st.movements = append(st.movements, &cp)
		return nil
	})
}

func (r movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.b.read(func(st *state) error {
		if i, ok := st.movIndex[id]; ok {
			cp := *st.movements[i]
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r movementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, id)
}

func (r movementRepo) MarkReversed(ctx context.Context, id string) error {
	return r.b.write(ctx, func(st *state) error {
		i, ok := st.movIndex[id]
		if !ok {
			return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, id)
		}
		st.movements[i].Status = entity.MovementReversed
		return nil
	})
}

// Query devuelve los movimientos más recientes primero; a igual fecha, el último agregado primero.
func (r movementRepo) Query(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	out := make([]*entity.StockMovement, 0)
	err := r.b.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if !matches(m, f) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.StockMovement{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(m *entity.StockMovement, f repository.MovementFilter) bool {
	switch {
	case f.BusinessID != "" && m.BusinessID != f.BusinessID,
		f.ItemID != "" && m.ItemID != f.ItemID,
		f.ProductID != "" && m.ProductID != f.ProductID,
		f.LocationID != "" && m.LocationID != f.LocationID,
		f.TransferID != "" && (m.TransferID == nil || *m.TransferID != f.TransferID),
		f.Type != nil && m.Type != *f.Type,
		f.From != nil && m.CreatedAt.Before(*f.From),
		f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}

func (r movementRepo) SumDeltas(_ context.Context, itemID string) (int64, error) {
	var sum int64
	err := r.b.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ItemID == itemID {
				sum += m.Delta
			}
		}
		return nil
	})
	return sum, err
}

type batchRepo struct{ b binding }

func (r batchRepo) Create(ctx context.Context, batch *entity.BatchTracking) error {
	return r.b.write(ctx, func(st *state) error {
		cp := *batch
		st.batches[batch.ID] = &cp
		return nil
	})
}

func (r batchRepo) GetByItem(_ context.Context, itemID string) (*entity.BatchTracking, error) {
	var out *entity.BatchTracking
	err := r.b.read(func(st *state) error {
		for _, b := range st.batches {
			if b.ItemID != itemID {
				continue
			}
			if out == nil || b.CreatedAt.After(out.CreatedAt) {
				cp := *b
				out = &cp
			}
		}
		return nil
	})
	return out, err
}

func (r batchRepo) UpdateStatus(ctx context.Context, id string, status entity.BatchStatus) error {
	return r.b.write(ctx, func(st *state) error {
		b, ok := st.batches[id]
		if !ok {
			return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
		}
		b.Status = status
		return nil
	})
}

func (r batchRepo) ListActiveByItems(_ context.Context, itemIDs []string) ([]*entity.BatchTracking, error) {
	want := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		want[id] = struct{}{}
	}
	out := make([]*entity.BatchTracking, 0)
	err := r.b.read(func(st *state) error {
		for _, b := range st.batches {
			if _, ok := want[b.ItemID]; ok && b.Status == entity.BatchActive {
				cp := *b
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type locationRepo struct{ b binding }

func (r locationRepo) Create(ctx context.Context, loc *entity.StockLocation) error {
	return r.b.write(ctx, func(st *state) error {
		if _, ok := st.locations[loc.ID]; ok {
			return fmt.Errorf("%w: ubicación %s ya existe", domain.ErrConflict, loc.ID)
		}
		cp := *loc
		st.locations[loc.ID] = &cp
		return nil
	})
}

func (r locationRepo) GetByID(_ context.Context, id string) (*entity.StockLocation, error) {
	var out *entity.StockLocation
	err := r.b.read(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			cp := *l
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r locationRepo) Rename(ctx context.Context, id, name string, at time.Time) error {
	return r.b.write(ctx, func(st *state) error {
		l, ok := st.locations[id]
		if !ok {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
		l.Name = name
		l.UpdatedAt = at
		return nil
	})
}

func (r locationRepo) ListByShop(_ context.Context, shopID string) ([]*entity.StockLocation, error) {
	return r.list(func(l *entity.StockLocation) bool { return l.BelongsToShop(shopID) })
}

func (r locationRepo) ListByBusiness(_ context.Context, businessID string) ([]*entity.StockLocation, error) {
	return r.list(func(l *entity.StockLocation) bool { return l.BusinessID == businessID })
}

func (r locationRepo) list(keep func(*entity.StockLocation) bool) ([]*entity.StockLocation, error) {
	out := make([]*entity.StockLocation, 0)
	err := r.b.read(func(st *state) error {
		for _, l := range st.locations {
			if keep(l) {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

type shopRepo struct{ b binding }

func (r shopRepo) GetByID(_ context.Context, id string) (*entity.Shop, error) {
	var out *entity.Shop
	err := r.b.read(func(st *state) error {
		if s, ok := st.shops[id]; ok {
			cp := *s
			out = &cp
		}
		return nil
	})
	return out, err
}

func (r shopRepo) ListByBusiness(_ context.Context, businessID string) ([]*entity.Shop, error) {
	out := make([]*entity.Shop, 0)
	err := r.b.read(func(st *state) error {
		for _, s := range st.shops {
			if s.BusinessID == businessID {
				cp := *s
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type productRepo struct{ b binding }

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			cp := *p
			out = &cp
		}
		return nil
	})
	return out, err
}
