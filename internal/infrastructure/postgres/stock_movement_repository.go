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

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementsTable = "stock_movements"

// StockMovementRepo libro de movimientos sobre PostgreSQL: inserta, consulta y marca reversiones.
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	sql, args, err := psql.Insert(movementsTable).Columns(movementColumns...).Values(
		m.ID, m.BusinessID, m.ItemID, m.ProductID, m.LocationID, string(m.Type), m.Delta, string(m.Direction),
		m.TransferID, m.SourceLocationID, m.DestinationLocationID, m.CostPerUnit, m.TotalCost,
		m.PerformedBy, m.Reference, m.Notes, string(m.Status), m.ReversesID, m.CreatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return classify("insert stock movement", err)
	}
	return nil
}

func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, id, false)
}

func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.getOne(ctx, id, true)
}

func (r *StockMovementRepo) getOne(ctx context.Context, id string, forUpdate bool) (*entity.StockMovement, error) {
	qb := psql.Select(movementColumns...).From(movementsTable).Where(squirrel.Eq{"id": id})
	if forUpdate {
		qb = qb.Suffix("FOR UPDATE")
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select movement: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get stock movement", err)
	}
	return row.toEntity(), nil
}

// MarkReversed es la única mutación permitida sobre un movimiento.
func (r *StockMovementRepo) MarkReversed(ctx context.Context, id string) error {
	sql, args, err := psql.Update(movementsTable).
		Set("status", string(entity.MovementReversed)).
		Where(squirrel.Eq{"id": id, "status": string(entity.MovementCompleted)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reverse movement: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return classify("mark movement reversed", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: movimiento %s no está completed", domain.ErrConflict, id)
	}
	return nil
}

// Query aplica los filtros no vacíos; más recientes primero.
func (r *StockMovementRepo) Query(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	qb := psql.Select(movementColumns...).From(movementsTable)
	eq := squirrel.Eq{}
	if f.BusinessID != "" {
		eq["business_id"] = f.BusinessID
	}
	if f.ItemID != "" {
		eq["item_id"] = f.ItemID
	}
	if f.ProductID != "" {
		eq["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		eq["location_id"] = f.LocationID
	}
	if f.TransferID != "" {
		eq["transfer_id"] = f.TransferID
	}
	if f.Type != nil {
		eq["type"] = string(*f.Type)
	}
	if len(eq) > 0 {
		qb = qb.Where(eq)
	}
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	qb = qb.OrderBy("created_at DESC", "id DESC")
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify("query stock movements", err)
	}
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *StockMovementRepo) SumDeltas(ctx context.Context, itemID string) (int64, error) {
	sql, args, err := psql.Select("COALESCE(SUM(delta), 0)::BIGINT").
		From(movementsTable).
		Where(squirrel.Eq{"item_id": itemID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sum deltas: %w", err)
	}
	var sum int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return 0, classify("sum movement deltas", err)
	}
	return sum, nil
}
