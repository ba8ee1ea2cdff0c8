package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Seed catálogo inicial para el almacenamiento en memoria.
// Tiendas y productos se administran fuera del libro; aquí solo se cargan.
type Seed struct {
	Shops []struct {
		ID         string `json:"id"`
		BusinessID string `json:"business_id"`
		Name       string `json:"name"`
	} `json:"shops"`
	Locations []struct {
		ID         string  `json:"id"`
		BusinessID string  `json:"business_id"`
		ShopID     *string `json:"shop_id"`
		Name       string  `json:"name"`
	} `json:"locations"`
	Products []struct {
		ID               string `json:"id"`
		BusinessID       string `json:"business_id"`
		SKU              string `json:"sku"`
		Name             string `json:"name"`
		Category         string `json:"category"`
		UnitType         string `json:"unit_type"`
		ReorderPoint     int64  `json:"reorder_point"`
		HasExpiryDate    bool   `json:"has_expiry_date"`
		HasBatchTracking bool   `json:"has_batch_tracking"`
	} `json:"products"`
}

// LoadSeedFile lee un archivo JSON de catálogo y lo registra en el store.
func (s *Store) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(f)
}

// LoadSeed registra el catálogo leído de r. Ubicaciones con tienda de otro negocio se rechazan.
func (s *Store) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("seed: JSON inválido: %w", err)
	}
	now := time.Now().UTC()
	shopBiz := make(map[string]string, len(seed.Shops))
	for _, sh := range seed.Shops {
		if sh.ID == "" || sh.BusinessID == "" {
			return fmt.Errorf("seed: tienda sin id o business_id")
		}
		shopBiz[sh.ID] = sh.BusinessID
		s.SeedShop(entity.Shop{ID: sh.ID, BusinessID: sh.BusinessID, Name: sh.Name, CreatedAt: now})
	}
	for _, l := range seed.Locations {
		if l.ID == "" || l.BusinessID == "" {
			return fmt.Errorf("seed: ubicación sin id o business_id")
		}
		if l.ShopID != nil && shopBiz[*l.ShopID] != l.BusinessID {
			return fmt.Errorf("seed: ubicación %s referencia tienda %s de otro negocio", l.ID, *l.ShopID)
		}
		s.SeedLocation(entity.StockLocation{
			ID: l.ID, BusinessID: l.BusinessID, ShopID: l.ShopID, Name: l.Name, CreatedAt: now, UpdatedAt: now,
		})
	}
	for _, p := range seed.Products {
		if p.ID == "" || p.BusinessID == "" {
			return fmt.Errorf("seed: producto sin id o business_id")
		}
		s.SeedProduct(entity.Product{
			ID:               p.ID,
			BusinessID:       p.BusinessID,
			SKU:              p.SKU,
			Name:             p.Name,
			Category:         p.Category,
			UnitType:         p.UnitType,
			ReorderPoint:     p.ReorderPoint,
			HasExpiryDate:    p.HasExpiryDate,
			HasBatchTracking: p.HasBatchTracking,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}
	return nil
}
