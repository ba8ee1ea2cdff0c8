package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

var tracer = otel.Tracer("stock-ledger/postgres")

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL READ COMMITTED.
// Cada transacción fija lock_timeout y statement_timeout: si no obtiene sus bloqueos a tiempo
// aborta con domain.ErrConflict en vez de esperar indefinidamente.
type TxRunner struct {
	pool             *pgxpool.Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
	log              zerolog.Logger
}

// NewTxRunner construye el runner con el pool y los límites de espera.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout, statementTimeout time.Duration, log zerolog.Logger) *TxRunner {
	return &TxRunner{
		pool:             pool,
		lockTimeout:      lockTimeout,
		statementTimeout: statementTimeout,
		log:              log.With().Str("component", "tx_runner").Logger(),
	}
}

// Repos devuelve repositorios sobre el pool, para lecturas fuera de transacción.
func (r *TxRunner) Repos() inventory.Repos {
	return NewRepos(r.pool)
}

// NewRepos construye todos los repositorios sobre q (pool o tx).
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Items:     NewInventoryItemRepository(q),
		Movements: NewStockMovementRepository(q),
		Batches:   NewBatchRepository(q),
		Locations: NewLocationRepository(q),
		Shops:     NewShopRepository(q),
		Products:  NewProductRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.transaction",
		trace.WithAttributes(
			attribute.Int64("tx.lock_timeout_ms", r.lockTimeout.Milliseconds()),
			attribute.Int64("tx.statement_timeout_ms", r.statementTimeout.Milliseconds()),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, domain.Code(err))
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() {
		if err != nil {
			// Contexto propio: el rollback debe completarse aunque ctx esté cancelado.
			if rbErr := tx.Rollback(context.Background()); rbErr != nil && rbErr != pgx.ErrTxClosed {
				r.log.Error().Err(rbErr).AnErr("original_error", err).Msg("rollback falló")
			}
		}
	}()

	if r.lockTimeout > 0 {
		if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return classify("set lock_timeout", err)
		}
	}
	if r.statementTimeout > 0 {
		if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", r.statementTimeout.Milliseconds())); err != nil {
			return classify("set statement_timeout", err)
		}
	}

	if err = fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}
