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

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchTable = "batch_tracking"

// BatchRepo registros de lote y vencimiento.
type BatchRepo struct {
	q Querier
}

func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

func (r *BatchRepo) Create(ctx context.Context, b *entity.BatchTracking) error {
	sql, args, err := psql.Insert(batchTable).Columns(batchColumns...).Values(
		b.ID, b.ItemID, b.BusinessID, b.BatchNumber, b.ExpiryDate, string(b.Status), b.CreatedAt, b.UpdatedAt,
	).ToSql()
	if err != nil {
		return fmt.Errorf("build insert batch: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return classify("insert batch", err)
	}
	return nil
}

func (r *BatchRepo) GetByItem(ctx context.Context, itemID string) (*entity.BatchTracking, error) {
	sql, args, err := psql.Select(batchColumns...).From(batchTable).
		Where(squirrel.Eq{"item_id": itemID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select batch: %w", err)
	}
	var row batchRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, classify("get batch", err)
	}
	return row.toEntity(), nil
}

func (r *BatchRepo) UpdateStatus(ctx context.Context, id string, status entity.BatchStatus) error {
	sql, args, err := psql.Update(batchTable).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update batch: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return classify("update batch status", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *BatchRepo) ListActiveByItems(ctx context.Context, itemIDs []string) ([]*entity.BatchTracking, error) {
	if len(itemIDs) == 0 {
		return []*entity.BatchTracking{}, nil
	}
	sql, args, err := psql.Select(batchColumns...).From(batchTable).
		Where(squirrel.Eq{"item_id": itemIDs, "status": string(entity.BatchActive)}).
		OrderBy("expiry_date NULLS LAST", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list batches: %w", err)
	}
	var rows []batchRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, classify("list active batches", err)
	}
	out := make([]*entity.BatchTracking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
