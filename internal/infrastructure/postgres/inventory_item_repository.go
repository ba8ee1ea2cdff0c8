package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemsTable = "inventory_items"

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

// Create inserta el ítem; la restricción única de la clave produce domain.ErrDuplicateItem.
func (r *InventoryItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	sql, args, err := psql.Insert(itemsTable).Columns(itemColumns...).Values(
		it.ID, it.BusinessID, it.Key.ProductID, it.Key.LocationID, it.Key.BatchNumber, it.Key.VariantID,
		it.Quantity, it.UnitCost, it.SellingPrice, it.ReorderPoint, string(it.Status),
		it.ExpiryDate, it.SupplierID, it.CreatedAt, it.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert item: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return classify("insert inventory item", err)
	}
	return nil
}

func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, false)
}

func (r *InventoryItemRepo) GetByKey(ctx context.Context, key entity.StockKey) (*entity.InventoryItem, error) {
	return r.getOne(ctx, keyPredicate(key), false)
}

// GetForUpdate bloquea la fila de la clave con SELECT ... FOR UPDATE.
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.InventoryItem, error) {
	return r.getOne(ctx, keyPredicate(key), true)
}

func (r *InventoryItemRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id}, true)
}

func (r *InventoryItemRepo) getOne(ctx context.Context, where squirrel.Sqlizer, forUpdate bool) (*entity.InventoryItem, error) {
	qb := psql.Select(itemColumns...).From(itemsTable).Where(where).Limit(1)
	if forUpdate {
		qb = qb.Suffix("FOR UPDATE")
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select item: %w", err)
	}
	var row itemRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get inventory item", err)
	}
	return row.toEntity(), nil
}

// Update persiste cantidad, costo, precio, reorden, estado y updated_at.
func (r *InventoryItemRepo) Update(ctx context.Context, it *entity.InventoryItem) error {
	sql, args, err := psql.Update(itemsTable).
		Set("quantity", it.Quantity).
		Set("unit_cost", it.UnitCost).
		Set("selling_price", it.SellingPrice).
		Set("reorder_point", it.ReorderPoint).
		Set("status", string(it.Status)).
		Set("updated_at", it.UpdatedAt).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return classify("update inventory item", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, it.ID)
	}
	return nil
}

func (r *InventoryItemRepo) ListByLocations(ctx context.Context, locationIDs []string) ([]*entity.InventoryItem, error) {
	if len(locationIDs) == 0 {
		return []*entity.InventoryItem{}, nil
	}
	sql, args, err := psql.Select(itemColumns...).From(itemsTable).
		Where(squirrel.Eq{"location_id": locationIDs}).
		OrderBy("product_id", "location_id", "batch_number", "variant_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list items: %w", err)
	}
	var rows []itemRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify("list inventory items", err)
	}
	out := make([]*entity.InventoryItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func keyPredicate(k entity.StockKey) squirrel.Eq {
	return squirrel.Eq{
		"product_id":   k.ProductID,
		"location_id":  k.LocationID,
		"batch_number": k.BatchNumber,
		"variant_id":   k.VariantID,
	}
}
