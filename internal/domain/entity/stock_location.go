package entity

import "time"

// StockLocation representa una bodega o inventario de tienda donde se almacena stock.
// ShopID es nil para ubicaciones de alcance de negocio (bodega central).
// Una vez referenciada por ítems solo admite cambio de nombre.
type StockLocation struct {
	ID         string
	BusinessID string
	ShopID     *string
	Name       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BelongsToShop indica si la ubicación pertenece a la tienda shopID.
func (l *StockLocation) BelongsToShop(shopID string) bool {
	return l.ShopID != nil && *l.ShopID == shopID
}

// Shop representa una tienda del negocio.
type Shop struct {
	ID         string
	BusinessID string
	Name       string
	CreatedAt  time.Time
}
