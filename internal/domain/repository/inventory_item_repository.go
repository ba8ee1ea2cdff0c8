package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// InventoryItemRepository define el puerto para el estado materializado por (producto, ubicación[, lote, variante]).
// Las lecturas devuelven (nil, nil) cuando no existe la fila.
// Las escrituras solo se invocan desde el registro de inventario dentro de una transacción.
type InventoryItemRepository interface {
	// Create falla con domain.ErrDuplicateItem si la clave ya existe.
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetByKey(ctx context.Context, key entity.StockKey) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.InventoryItem, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// Update persiste cantidad, costo, estado y updated_at.
	Update(ctx context.Context, item *entity.InventoryItem) error
	ListByLocations(ctx context.Context, locationIDs []string) ([]*entity.InventoryItem, error)
}
