package entity

import "time"

// Product es la vista del catálogo que necesita el libro de stock.
// El catálogo es externo; aquí solo se leen identidad, banderas de lote/vencimiento y punto de reorden.
type Product struct {
	ID               string
	BusinessID       string
	SKU              string
	Name             string
	Category         string
	UnitType         string
	ReorderPoint     int64
	HasExpiryDate    bool
	HasBatchTracking bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RequiresBatch indica si los ítems del producto deben llevar registro de lote.
func (p *Product) RequiresBatch() bool {
	return p.HasBatchTracking || p.HasExpiryDate
}
