package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductRepository lectura del catálogo (propiedad de otro subsistema).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
