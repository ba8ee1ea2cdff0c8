package entity

import "time"

// BatchStatus estado del registro de lote.
type BatchStatus string

const (
	BatchActive   BatchStatus = "active"
	BatchDepleted BatchStatus = "depleted"
	BatchExpired  BatchStatus = "expired"
)

// BatchTracking metadatos de lote y vencimiento de un ítem.
// Un ítem tiene cero o un lote activo.
type BatchTracking struct {
	ID          string
	ItemID      string
	BusinessID  string
	BatchNumber string
	ExpiryDate  *time.Time
	Status      BatchStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExpiresWithin indica si vence dentro de [from, to].
func (b *BatchTracking) ExpiresWithin(from, to time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return !b.ExpiryDate.Before(from) && !b.ExpiryDate.After(to)
}
