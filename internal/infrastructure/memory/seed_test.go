package memory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

func TestStore_LoadSeed(t *testing.T) {
	s := memory.New(time.Second)
	err := s.LoadSeed(strings.NewReader(`{
		"shops": [{"id": "shop-1", "business_id": "biz-1", "name": "Centro"}],
		"locations": [
			{"id": "loc-1", "business_id": "biz-1", "shop_id": "shop-1", "name": "Piso"},
			{"id": "loc-hq", "business_id": "biz-1", "name": "Central"}
		],
		"products": [{"id": "prod-1", "business_id": "biz-1", "sku": "A-1", "name": "Arroz", "reorder_point": 4, "has_expiry_date": true}]
	}`))
	require.NoError(t, err)

	ctx := context.Background()
	repos := s.Repos()
	locs, err := repos.Locations.ListByShop(ctx, "shop-1")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "loc-1", locs[0].ID)

	p, err := repos.Products.GetByID(ctx, "prod-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.RequiresBatch())
	assert.Equal(t, int64(4), p.ReorderPoint)
}

func TestStore_LoadSeedRejectsCrossBusinessShop(t *testing.T) {
	s := memory.New(time.Second)
	err := s.LoadSeed(strings.NewReader(`{
		"shops": [{"id": "shop-1", "business_id": "biz-1", "name": "Centro"}],
		"locations": [{"id": "loc-x", "business_id": "biz-2", "shop_id": "shop-1", "name": "X"}]
	}`))
	assert.Error(t, err)

	assert.Error(t, s.LoadSeed(strings.NewReader(`{"shops": [`)))
}
