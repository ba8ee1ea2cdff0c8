package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

const secret = "s3cr3t-de-prueba"

func TestGenerateParse_RoundTripIdentity(t *testing.T) {
	tok, err := jwt.Generate(secret, "stock-ledger", jwt.Identity{UserID: "u-1", BusinessID: "biz-1", ShopID: "shop-1", Role: jwt.RoleAdmin}, 5)
	require.NoError(t, err)

	id, err := jwt.Parse(secret, "stock-ledger", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "biz-1", id.BusinessID)
	assert.Equal(t, "shop-1", id.ShopID)
	assert.Equal(t, jwt.RoleAdmin, id.Role)
}

func TestParse_Rejects(t *testing.T) {
	tok, err := jwt.Generate(secret, "stock-ledger", jwt.Identity{UserID: "u-1", BusinessID: "biz-1"}, 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", "", tok)
	assert.Error(t, err)

	_, err = jwt.Parse(secret, "otro-emisor", tok)
	assert.Error(t, err)

	expired, err := jwt.Generate(secret, "stock-ledger", jwt.Identity{UserID: "u-1", BusinessID: "biz-1"}, -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, "", expired)
	assert.Error(t, err)

	_, err = jwt.Generate(secret, "", jwt.Identity{UserID: "u-1"}, 5)
	assert.Error(t, err)
}
