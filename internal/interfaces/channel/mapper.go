package channel

import (
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func toItemResponse(it *entity.InventoryItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:           it.ID,
		ProductID:    it.Key.ProductID,
		LocationID:   it.Key.LocationID,
		BatchID:      it.Key.BatchNumber,
		VariantID:    it.Key.VariantID,
		Quantity:     it.Quantity,
		UnitCost:     it.UnitCost,
		SellingPrice: it.SellingPrice,
		ReorderPoint: it.ReorderPoint,
		Status:       string(it.Status),
		Value:        it.Value(),
		ExpiryDate:   it.ExpiryDate,
		SupplierID:   it.SupplierID,
		UpdatedAt:    it.UpdatedAt,
	}
}

func toProductStock(v inventory.ItemView) dto.ProductStockResponse {
	out := dto.ProductStockResponse{ItemResponse: toItemResponse(v.Item)}
	if v.Product != nil {
		out.SKU = v.Product.SKU
		out.ProductName = v.Product.Name
	}
	if v.Location != nil {
		out.LocationName = v.Location.Name
	}
	if v.Batch != nil {
		out.BatchNumber = v.Batch.BatchNumber
		out.BatchExpiry = v.Batch.ExpiryDate
	}
	return out
}

func toProductStocks(views []inventory.ItemView) []dto.ProductStockResponse {
	out := make([]dto.ProductStockResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toProductStock(v))
	}
	return out
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                    m.ID,
		ItemID:                m.ItemID,
		ProductID:             m.ProductID,
		LocationID:            m.LocationID,
		Type:                  string(m.Type),
		Delta:                 m.Delta,
		Quantity:              m.Quantity(),
		Direction:             string(m.Direction),
		TransferID:            m.TransferID,
		SourceLocationID:      m.SourceLocationID,
		DestinationLocationID: m.DestinationLocationID,
		CostPerUnit:           m.CostPerUnit,
		TotalCost:             m.TotalCost,
		PerformedBy:           m.PerformedBy,
		Reference:             m.Reference,
		Notes:                 m.Notes,
		Status:                string(m.Status),
		ReversesID:            m.ReversesID,
		CreatedAt:             m.CreatedAt,
	}
}

func toMovementResponses(list []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toTransferResponse(r *inventory.TransferResult) *dto.TransferResponse {
	return &dto.TransferResponse{
		TransferID:  r.TransferID,
		Source:      toItemResponse(r.Source),
		Destination: toItemResponse(r.Destination),
		Outbound:    toMovementResponse(r.Outbound),
		Inbound:     toMovementResponse(r.Inbound),
	}
}

func toStatsResponse(s *inventory.BusinessStats) *dto.InventoryStatsResponse {
	shops := make([]dto.ShopStatsResponse, 0, len(s.Shops))
	for _, sh := range s.Shops {
		shops = append(shops, toShopStatsResponse(sh))
	}
	return &dto.InventoryStatsResponse{
		TotalValue:      s.TotalValue,
		LowStockItems:   s.LowStockItems,
		OutOfStockItems: s.OutOfStockItems,
		TotalProducts:   s.TotalProducts,
		ShopStats:       shops,
	}
}

func toShopStatsResponse(sh inventory.ShopStats) dto.ShopStatsResponse {
	return dto.ShopStatsResponse{
		ShopID:          sh.ShopID,
		ShopName:        sh.ShopName,
		TotalValue:      sh.TotalValue,
		LowStockItems:   sh.LowStockItems,
		OutOfStockItems: sh.OutOfStockItems,
		TotalProducts:   sh.TotalProducts,
	}
}
