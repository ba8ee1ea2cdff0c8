package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus es el estado derivado de un ítem. Solo se obtiene con DeriveStatus.
type ItemStatus string

const (
	StatusInStock    ItemStatus = "in_stock"
	StatusLowStock   ItemStatus = "low_stock"
	StatusOutOfStock ItemStatus = "out_of_stock"
)

// Valid indica si el estado pertenece a la enumeración cerrada.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

// DeriveStatus calcula el estado a partir de cantidad y punto de reorden.
// out_of_stock si 0; low_stock si 0 < cantidad <= reorden; in_stock en otro caso.
func DeriveStatus(quantity, reorderPoint int64) ItemStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= reorderPoint:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// StockKey identifica un ítem: producto + ubicación, opcionalmente lote y variante.
// Cadena vacía significa "sin lote" / "sin variante".
type StockKey struct {
	ProductID   string
	LocationID  string
	BatchNumber string
	VariantID   string
}

// NewStockKey construye la clave base producto + ubicación.
func NewStockKey(productID, locationID string) StockKey {
	return StockKey{ProductID: productID, LocationID: locationID}
}

// WithBatch devuelve una copia de la clave con lote.
func (k StockKey) WithBatch(batchNumber string) StockKey {
	k.BatchNumber = batchNumber
	return k
}

// WithVariant devuelve una copia de la clave con variante.
func (k StockKey) WithVariant(variantID string) StockKey {
	k.VariantID = variantID
	return k
}

// AtLocation devuelve la misma clave en otra ubicación (destino de traslados).
func (k StockKey) AtLocation(locationID string) StockKey {
	k.LocationID = locationID
	return k
}

// Validate exige producto y ubicación.
func (k StockKey) Validate() error {
	if k.ProductID == "" {
		return fmt.Errorf("product_id requerido")
	}
	if k.LocationID == "" {
		return fmt.Errorf("location_id requerido")
	}
	return nil
}

func (k StockKey) String() string {
	s := k.ProductID + "@" + k.LocationID
	if k.BatchNumber != "" {
		s += "#" + k.BatchNumber
	}
	if k.VariantID != "" {
		s += "/" + k.VariantID
	}
	return s
}

// InventoryItem es el estado materializado de un producto en una ubicación (y lote/variante).
// Quantity siempre es igual a la suma de los deltas de sus StockMovement y nunca es negativa.
// No se elimina; solo puede llegar a cero.
type InventoryItem struct {
	ID           string
	BusinessID   string
	Key          StockKey
	Quantity     int64
	UnitCost     decimal.Decimal
	SellingPrice decimal.Decimal
	ReorderPoint int64
	Status       ItemStatus
	ExpiryDate   *time.Time
	SupplierID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Refresh recalcula el estado derivado.
func (i *InventoryItem) Refresh() {
	i.Status = DeriveStatus(i.Quantity, i.ReorderPoint)
}

// Value es cantidad × costo unitario.
func (i *InventoryItem) Value() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(i.Quantity))
}

// Clone devuelve una copia profunda.
func (i *InventoryItem) Clone() *InventoryItem {
	c := *i
	if i.ExpiryDate != nil {
		t := *i.ExpiryDate
		c.ExpiryDate = &t
	}
	if i.SupplierID != nil {
		s := *i.SupplierID
		c.SupplierID = &s
	}
	return &c
}
