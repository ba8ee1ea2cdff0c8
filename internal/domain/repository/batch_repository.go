package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// BatchRepository puerto para registros de lote y vencimiento.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.BatchTracking) error
	// GetByItem devuelve el lote más reciente del ítem (cualquier estado).
	GetByItem(ctx context.Context, itemID string) (*entity.BatchTracking, error)
	UpdateStatus(ctx context.Context, id string, status entity.BatchStatus) error
	ListActiveByItems(ctx context.Context, itemIDs []string) ([]*entity.BatchTracking, error)
}
