package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros de consulta del libro. Campos vacíos no filtran.
type MovementFilter struct {
	BusinessID string
	ItemID     string
	ProductID  string
	LocationID string
	TransferID string
	Type       *entity.MovementType
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// StockMovementRepository puerto del libro de movimientos: solo agrega y consulta.
// La única mutación permitida es marcar un movimiento como reversed.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	// GetForUpdate bloquea el movimiento para su reversión.
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	MarkReversed(ctx context.Context, id string) error
	Query(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumDeltas suma con signo los deltas de un ítem (conciliación).
	SumDeltas(ctx context.Context, itemID string) (int64, error)
}
