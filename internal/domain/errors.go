package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateItem     = errors.New("el ítem de inventario ya existe")
	ErrUnauthorizedScope = errors.New("recurso fuera del alcance del negocio")
	ErrConflict          = errors.New("conflicto de concurrencia, reintente")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidLocation   = errors.New("ubicación de stock inválida")
)

// Códigos estables expuestos a los llamadores (canal interno y HTTP).
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION"
	CodeDuplicateItem     = "DUPLICATE_ITEM"
	CodeUnauthorizedScope = "UNAUTHORIZED_SCOPE"
	CodeConflict          = "CONFLICT"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidLocation   = "INVALID_LOCATION"
	CodeInternal          = "INTERNAL"
)

// InsufficientStockError detalla un rechazo por stock insuficiente.
// errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ItemID    string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: ítem %s solicitado %d, disponible %d", ErrInsufficientStock, e.ItemID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError describe el campo que hizo fallar la validación.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Code traduce un error a su código estable. Errores desconocidos son INTERNAL.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrDuplicateItem):
		return CodeDuplicateItem
	case errors.Is(err, ErrUnauthorizedScope):
		return CodeUnauthorizedScope
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrInvalidLocation):
		return CodeInvalidLocation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	default:
		return CodeInternal
	}
}

// Retryable indica si el llamador puede reintentar automáticamente.
// Solo los conflictos de bloqueo lo son; el núcleo nunca reintenta por su cuenta.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
