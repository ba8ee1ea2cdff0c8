package dto

import "time"

// CreateLocationRequest entrada para crear una ubicación. ShopID vacío = ubicación del negocio.
type CreateLocationRequest struct {
	Name   string `json:"name"`
	ShopID string `json:"shop_id,omitempty"`
}

// RenameLocationRequest entrada para renombrar una ubicación.
type RenameLocationRequest struct {
	Name string `json:"name"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	ShopID     *string   `json:"shop_id,omitempty"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LocationListResponse lista de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
}
