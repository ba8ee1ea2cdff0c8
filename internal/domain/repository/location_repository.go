package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para StockLocation (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.StockLocation) error
	GetByID(ctx context.Context, id string) (*entity.StockLocation, error)
	Rename(ctx context.Context, id, name string, at time.Time) error
	ListByShop(ctx context.Context, shopID string) ([]*entity.StockLocation, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.StockLocation, error)
}

// ShopRepository lectura de tiendas (el alta es externa).
type ShopRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Shop, error)
	ListByBusiness(ctx context.Context, businessID string) ([]*entity.Shop, error)
}
