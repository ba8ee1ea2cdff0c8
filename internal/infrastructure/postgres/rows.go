package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Filas con tags db para pgxscan; se traducen a entidades de dominio.

type itemRow struct {
	ID           string          `db:"id"`
	BusinessID   string          `db:"business_id"`
	ProductID    string          `db:"product_id"`
	LocationID   string          `db:"location_id"`
	BatchNumber  string          `db:"batch_number"`
	VariantID    string          `db:"variant_id"`
	Quantity     int64           `db:"quantity"`
	UnitCost     decimal.Decimal `db:"unit_cost"`
	SellingPrice decimal.Decimal `db:"selling_price"`
	ReorderPoint int64           `db:"reorder_point"`
	Status       string          `db:"status"`
	ExpiryDate   *time.Time      `db:"expiry_date"`
	SupplierID   *string         `db:"supplier_id"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

var itemColumns = []string{
	"id", "business_id", "product_id", "location_id", "batch_number", "variant_id",
	"quantity", "unit_cost", "selling_price", "reorder_point", "status",
	"expiry_date", "supplier_id", "created_at", "updated_at",
}

func (r itemRow) toEntity() *entity.InventoryItem {
	return &entity.InventoryItem{
		ID:         r.ID,
		BusinessID: r.BusinessID,
		Key: entity.StockKey{
			ProductID:   r.ProductID,
			LocationID:  r.LocationID,
			BatchNumber: r.BatchNumber,
			VariantID:   r.VariantID,
		},
		Quantity:     r.Quantity,
		UnitCost:     r.UnitCost,
		SellingPrice: r.SellingPrice,
		ReorderPoint: r.ReorderPoint,
		Status:       entity.ItemStatus(r.Status),
		ExpiryDate:   r.ExpiryDate,
		SupplierID:   r.SupplierID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type movementRow struct {
	ID                    string          `db:"id"`
	BusinessID            string          `db:"business_id"`
	ItemID                string          `db:"item_id"`
	ProductID             string          `db:"product_id"`
	LocationID            string          `db:"location_id"`
	Type                  string          `db:"type"`
	Delta                 int64           `db:"delta"`
	Direction             string          `db:"direction"`
	TransferID            *string         `db:"transfer_id"`
	SourceLocationID      *string         `db:"source_location_id"`
	DestinationLocationID *string         `db:"destination_location_id"`
	CostPerUnit           decimal.Decimal `db:"cost_per_unit"`
	TotalCost             decimal.Decimal `db:"total_cost"`
	PerformedBy           string          `db:"performed_by"`
	Reference             string          `db:"reference"`
	Notes                 string          `db:"notes"`
	Status                string          `db:"status"`
	ReversesID            *string         `db:"reverses_id"`
	CreatedAt             time.Time       `db:"created_at"`
}

var movementColumns = []string{
	"id", "business_id", "item_id", "product_id", "location_id", "type", "delta", "direction",
	"transfer_id", "source_location_id", "destination_location_id", "cost_per_unit", "total_cost",
	"performed_by", "reference", "notes", "status", "reverses_id", "created_at",
}

func (r movementRow) toEntity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:                    r.ID,
		BusinessID:            r.BusinessID,
		ItemID:                r.ItemID,
		ProductID:             r.ProductID,
		LocationID:            r.LocationID,
		Type:                  entity.MovementType(r.Type),
		Delta:                 r.Delta,
		Direction:             entity.Direction(r.Direction),
		TransferID:            r.TransferID,
		SourceLocationID:      r.SourceLocationID,
		DestinationLocationID: r.DestinationLocationID,
		CostPerUnit:           r.CostPerUnit,
		TotalCost:             r.TotalCost,
		PerformedBy:           r.PerformedBy,
		Reference:             r.Reference,
		Notes:                 r.Notes,
		Status:                entity.MovementStatus(r.Status),
		ReversesID:            r.ReversesID,
		CreatedAt:             r.CreatedAt,
	}
}

type batchRow struct {
	ID          string     `db:"id"`
	ItemID      string     `db:"item_id"`
	BusinessID  string     `db:"business_id"`
	BatchNumber string     `db:"batch_number"`
	ExpiryDate  *time.Time `db:"expiry_date"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

var batchColumns = []string{"id", "item_id", "business_id", "batch_number", "expiry_date", "status", "created_at", "updated_at"}

func (r batchRow) toEntity() *entity.BatchTracking {
	return &entity.BatchTracking{
		ID:          r.ID,
		ItemID:      r.ItemID,
		BusinessID:  r.BusinessID,
		BatchNumber: r.BatchNumber,
		ExpiryDate:  r.ExpiryDate,
		Status:      entity.BatchStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type locationRow struct {
	ID         string    `db:"id"`
	BusinessID string    `db:"business_id"`
	ShopID     *string   `db:"shop_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

var locationColumns = []string{"id", "business_id", "shop_id", "name", "created_at", "updated_at"}

func (r locationRow) toEntity() *entity.StockLocation {
	return &entity.StockLocation{
		ID:         r.ID,
		BusinessID: r.BusinessID,
		ShopID:     r.ShopID,
		Name:       r.Name,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type shopRow struct {
	ID         string    `db:"id"`
	BusinessID string    `db:"business_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
}

type productRow struct {
	ID               string    `db:"id"`
	BusinessID       string    `db:"business_id"`
	SKU              string    `db:"sku"`
	Name             string    `db:"name"`
	Category         string    `db:"category"`
	UnitType         string    `db:"unit_type"`
	ReorderPoint     int64     `db:"reorder_point"`
	HasExpiryDate    bool      `db:"has_expiry_date"`
	HasBatchTracking bool      `db:"has_batch_tracking"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}
