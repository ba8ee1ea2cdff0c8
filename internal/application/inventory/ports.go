package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Repos agrupa los repositorios que usa el núcleo de inventario.
// Dentro de TxRunner.Run todos comparten la misma transacción.
type Repos struct {
	Items     repository.InventoryItemRepository
	Movements repository.StockMovementRepository
	Batches   repository.BatchRepository
	Locations repository.LocationRepository
	Shops     repository.ShopRepository
	Products  repository.ProductRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. No reintenta.
// Si no obtiene los bloqueos de fila dentro del tiempo configurado devuelve domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
