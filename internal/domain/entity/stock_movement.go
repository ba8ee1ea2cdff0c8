package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementPurchase       MovementType = "purchase"
	MovementSale           MovementType = "sale"
	MovementReturnCustomer MovementType = "return_customer"
	MovementReturnSupplier MovementType = "return_supplier"
	MovementTransfer       MovementType = "transfer"
	MovementAdjustment     MovementType = "adjustment"
)

// Valid indica si el tipo pertenece a la enumeración.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturnCustomer, MovementReturnSupplier,
		MovementTransfer, MovementAdjustment:
		return true
	}
	return false
}

// AllowsDelta valida el signo del delta según el tipo.
// Compras y devoluciones de cliente entran; ventas y devoluciones a proveedor salen;
// traslados y ajustes admiten ambos sentidos.
func (t MovementType) AllowsDelta(delta int64) bool {
	if delta == 0 {
		return false
	}
	switch t {
	case MovementPurchase, MovementReturnCustomer:
		return delta > 0
	case MovementSale, MovementReturnSupplier:
		return delta < 0
	case MovementTransfer, MovementAdjustment:
		return true
	}
	return false
}

// Direction sentido del movimiento.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// DirectionOf deriva el sentido a partir del signo.
func DirectionOf(delta int64) Direction {
	if delta < 0 {
		return DirectionOutbound
	}
	return DirectionInbound
}

// MovementStatus estado de un movimiento.
type MovementStatus string

const (
	MovementCompleted MovementStatus = "completed"
	MovementReversed  MovementStatus = "reversed"
)

// StockMovement entrada inmutable del libro. Solo puede pasar a reversed cuando
// un movimiento compensatorio (ReversesID) la anula.
type StockMovement struct {
	ID                    string
	BusinessID            string
	ItemID                string
	ProductID             string
	LocationID            string
	Type                  MovementType
	Delta                 int64
	Direction             Direction
	TransferID            *string
	SourceLocationID      *string
	DestinationLocationID *string
	CostPerUnit           decimal.Decimal
	TotalCost             decimal.Decimal
	PerformedBy           string
	Reference             string
	Notes                 string
	Status                MovementStatus
	ReversesID            *string
	CreatedAt             time.Time
}

// Quantity es el valor absoluto del delta.
func (m *StockMovement) Quantity() int64 {
	if m.Delta < 0 {
		return -m.Delta
	}
	return m.Delta
}

// IsTransferLeg indica si el movimiento es una pata de un traslado.
func (m *StockMovement) IsTransferLeg() bool {
	return m.TransferID != nil
}
