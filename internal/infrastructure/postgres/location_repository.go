package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.ShopRepository     = (*ShopRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una nueva ubicación.
func (r *LocationRepo) Create(ctx context.Context, l *entity.StockLocation) error {
	sql, args, err := psql.Insert("stock_locations").Columns(locationColumns...).
		Values(l.ID, l.BusinessID, l.ShopID, l.Name, l.CreatedAt, l.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert location: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return classify("insert stock location", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID; (nil, nil) si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.StockLocation, error) {
	sql, args, err := psql.Select(locationColumns...).From("stock_locations").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select location: %w", err)
	}
	var row locationRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get stock location", err)
	}
	return row.toEntity(), nil
}

// Rename cambia solo el nombre.
func (r *LocationRepo) Rename(ctx context.Context, id, name string, at time.Time) error {
	sql, args, err := psql.Update("stock_locations").
		Set("name", name).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rename location: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return classify("rename stock location", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *LocationRepo) ListByShop(ctx context.Context, shopID string) ([]*entity.StockLocation, error) {
	return r.list(ctx, squirrel.Eq{"shop_id": shopID})
}

func (r *LocationRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.StockLocation, error) {
	return r.list(ctx, squirrel.Eq{"business_id": businessID})
}

func (r *LocationRepo) list(ctx context.Context, where squirrel.Eq) ([]*entity.StockLocation, error) {
	sql, args, err := psql.Select(locationColumns...).From("stock_locations").
		Where(where).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list locations: %w", err)
	}
	var rows []locationRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify("list stock locations", err)
	}
	out := make([]*entity.StockLocation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// ShopRepo lectura de tiendas.
type ShopRepo struct {
	q Querier
}

func NewShopRepository(q Querier) *ShopRepo {
	return &ShopRepo{q: q}
}

func (r *ShopRepo) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	var row shopRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT id, business_id, name, created_at FROM shops WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get shop", err)
	}
	return &entity.Shop{ID: row.ID, BusinessID: row.BusinessID, Name: row.Name, CreatedAt: row.CreatedAt}, nil
}

func (r *ShopRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entity.Shop, error) {
	var rows []shopRow
	err := pgxscan.Select(ctx, r.q, &rows,
		`SELECT id, business_id, name, created_at FROM shops WHERE business_id = $1 ORDER BY id`, businessID)
	if err != nil {
		return nil, classify("list shops", err)
	}
	out := make([]*entity.Shop, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.Shop{ID: row.ID, BusinessID: row.BusinessID, Name: row.Name, CreatedAt: row.CreatedAt})
	}
	return out, nil
}

// ProductRepo lectura del catálogo.
type ProductRepo struct {
	q Querier
}

func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var row productRow
	err := pgxscan.Get(ctx, r.q, &row, `
		SELECT id, business_id, sku, name, category, unit_type, reorder_point,
		       has_expiry_date, has_batch_tracking, created_at, updated_at
		FROM products WHERE id = $1`, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get product", err)
	}
	return &entity.Product{
		ID:               row.ID,
		BusinessID:       row.BusinessID,
		SKU:              row.SKU,
		Name:             row.Name,
		Category:         row.Category,
		UnitType:         row.UnitType,
		ReorderPoint:     row.ReorderPoint,
		HasExpiryDate:    row.HasExpiryDate,
		HasBatchTracking: row.HasBatchTracking,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}
