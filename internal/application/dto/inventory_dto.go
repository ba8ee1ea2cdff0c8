package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección de stock.update.
const (
	UpdateIncrement = "increment"
	UpdateDecrement = "decrement"
)

// StockUpdateRequest entrada de stock.update. MovementType por defecto: purchase al incrementar, sale al decrementar.
type StockUpdateRequest struct {
	ProductID    string           `json:"product_id"`
	LocationID   string           `json:"location_id"`
	Quantity     int64            `json:"quantity"`
	Type         string           `json:"type"` // increment | decrement
	BatchID      string           `json:"batch_id,omitempty"`
	VariantID    string           `json:"variant_id,omitempty"`
	MovementType string           `json:"movement_type,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference    string           `json:"reference,omitempty"`
	Notes        string           `json:"notes,omitempty"`
}

// CreateItemRequest entrada de stock.create.
type CreateItemRequest struct {
	ProductID       string          `json:"product_id"`
	LocationID      string          `json:"location_id"`
	BatchID         string          `json:"batch_id,omitempty"`
	VariantID       string          `json:"variant_id,omitempty"`
	InitialQuantity int64           `json:"initial_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	ReorderPoint    *int64          `json:"reorder_point,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	SupplierID      *string         `json:"supplier_id,omitempty"`
	MovementType    string          `json:"movement_type,omitempty"`
	Reference       string          `json:"reference,omitempty"`
}

// TransferRequest entrada de stock.transfer. BusinessID y PerformedBy, si vienen, deben coincidir con el alcance.
type TransferRequest struct {
	SourceLocationID      string `json:"source_location_id"`
	DestinationLocationID string `json:"destination_location_id"`
	ProductID             string `json:"product_id"`
	BatchID               string `json:"batch_id,omitempty"`
	VariantID             string `json:"variant_id,omitempty"`
	Quantity              int64  `json:"quantity"`
	PerformedBy           string `json:"performed_by,omitempty"`
	BusinessID            string `json:"business_id,omitempty"`
	Reference             string `json:"reference,omitempty"`
	Notes                 string `json:"notes,omitempty"`
}

// GetItemRequest entrada de stock.get: por ItemID o por clave.
type GetItemRequest struct {
	ItemID     string `json:"item_id,omitempty" query:"item_id"`
	ProductID  string `json:"product_id,omitempty" query:"product_id"`
	LocationID string `json:"location_id,omitempty" query:"location_id"`
	BatchID    string `json:"batch_id,omitempty" query:"batch_id"`
	VariantID  string `json:"variant_id,omitempty" query:"variant_id"`
}

// StockScopeRequest entrada de stock.lowStockCheck y stock.outOfStock.
type StockScopeRequest struct {
	ShopID     string `json:"shop_id,omitempty" query:"shop_id"`
	LocationID string `json:"location_id,omitempty" query:"location_id"`
}

// ExpiringRequest entrada de stock.expiringProducts. DaysThreshold 0 usa el horizonte configurado.
type ExpiringRequest struct {
	ShopID        string `json:"shop_id,omitempty" query:"shop_id"`
	LocationID    string `json:"location_id,omitempty" query:"location_id"`
	DaysThreshold int    `json:"days_threshold,omitempty" query:"days"`
}

// BusinessInventoryRequest entrada de stats.businessInventory.
type BusinessInventoryRequest struct {
	BusinessID string `json:"business_id,omitempty"`
}

// ShopInventoryRequest entrada de stats.shopInventory.
type ShopInventoryRequest struct {
	ShopID string `json:"shop_id" query:"shop_id"`
}

// MovementsRequest entrada de stock.movements.
type MovementsRequest struct {
	ItemID     string     `json:"item_id,omitempty" query:"item_id"`
	ProductID  string     `json:"product_id,omitempty" query:"product_id"`
	LocationID string     `json:"location_id,omitempty" query:"location_id"`
	TransferID string     `json:"transfer_id,omitempty" query:"transfer_id"`
	Type       string     `json:"type,omitempty" query:"type"`
	From       *time.Time `json:"from,omitempty" query:"-"`
	To         *time.Time `json:"to,omitempty" query:"-"`
	PageRequest
}

// ReverseRequest entrada de stock.reverse.
type ReverseRequest struct {
	MovementID string `json:"movement_id"`
	Reason     string `json:"reason,omitempty"`
}

// ReconcileRequest entrada de stock.reconcile.
type ReconcileRequest struct {
	ItemID string `json:"item_id"`
}

// ItemResponse salida de un InventoryItem.
type ItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	LocationID   string          `json:"location_id"`
	BatchID      string          `json:"batch_id,omitempty"`
	VariantID    string          `json:"variant_id,omitempty"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ReorderPoint int64           `json:"reorder_point"`
	Status       string          `json:"status"`
	Value        decimal.Decimal `json:"value"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	SupplierID   *string         `json:"supplier_id,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ProductStockResponse ítem con datos de producto y ubicación (listados de reorden y vencimiento).
type ProductStockResponse struct {
	ItemResponse
	SKU          string     `json:"sku"`
	ProductName  string     `json:"product_name"`
	LocationName string     `json:"location_name"`
	BatchNumber  string     `json:"batch_number,omitempty"`
	BatchExpiry  *time.Time `json:"batch_expiry,omitempty"`
}

// MovementResponse salida de un StockMovement.
type MovementResponse struct {
	ID                    string          `json:"id"`
	ItemID                string          `json:"item_id"`
	ProductID             string          `json:"product_id"`
	LocationID            string          `json:"location_id"`
	Type                  string          `json:"type"`
	Delta                 int64           `json:"delta"`
	Quantity              int64           `json:"quantity"`
	Direction             string          `json:"direction"`
	TransferID            *string         `json:"transfer_id,omitempty"`
	SourceLocationID      *string         `json:"source_location_id,omitempty"`
	DestinationLocationID *string         `json:"destination_location_id,omitempty"`
	CostPerUnit           decimal.Decimal `json:"cost_per_unit"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	PerformedBy           string          `json:"performed_by"`
	Reference             string          `json:"reference,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	Status                string          `json:"status"`
	ReversesID            *string         `json:"reverses_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// TransferResponse salida de stock.transfer.
type TransferResponse struct {
	TransferID  string           `json:"transfer_id"`
	Source      ItemResponse     `json:"source"`
	Destination ItemResponse     `json:"destination"`
	Outbound    MovementResponse `json:"outbound"`
	Inbound     MovementResponse `json:"inbound"`
}

// ReconciliationResponse salida de stock.reconcile.
type ReconciliationResponse struct {
	ItemID    string `json:"item_id"`
	Quantity  int64  `json:"quantity"`
	LedgerSum int64  `json:"ledger_sum"`
	Balanced  bool   `json:"balanced"`
}

// ShopStatsResponse totales de una tienda.
type ShopStatsResponse struct {
	ShopID          string          `json:"shop_id"`
	ShopName        string          `json:"shop_name"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LowStockItems   int             `json:"low_stock_items"`
	OutOfStockItems int             `json:"out_of_stock_items"`
	TotalProducts   int             `json:"total_products"`
}

// InventoryStatsResponse salida de stats.businessInventory.
type InventoryStatsResponse struct {
	TotalValue      decimal.Decimal     `json:"total_value"`
	LowStockItems   int                 `json:"low_stock_items"`
	OutOfStockItems int                 `json:"out_of_stock_items"`
	TotalProducts   int                 `json:"total_products"`
	ShopStats       []ShopStatsResponse `json:"shop_stats"`
}
