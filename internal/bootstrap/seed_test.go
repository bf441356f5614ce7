package bootstrap

import (
	"testing"
	"time"

	"go-restaurant-sync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultFloor(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	s, err := Seed(Options{}, now)
	require.NoError(t, err)

	require.Len(t, s.Tables, 24)
	for i, tbl := range s.Tables {
		assert.Equal(t, i+1, tbl.ID)
		assert.Equal(t, model.TableAvailable, tbl.Status)
		assert.NotNil(t, tbl.OrderItems)
		assert.Empty(t, tbl.OrderItems)
		assert.Empty(t, tbl.ComandaID)
	}
	assert.Equal(t, now.UnixMilli(), s.LastGlobalUpdate)

	assert.NotNil(t, s.Products)
	assert.Empty(t, s.Transactions)
	assert.Empty(t, s.Customers)
	assert.Empty(t, s.Users)
	assert.Empty(t, s.Printers)
	assert.Empty(t, s.Connections)
}

func TestSeedIsDeterministic(t *testing.T) {
	now := time.Now()
	a, err := Seed(Options{Tables: 5}, now)
	require.NoError(t, err)
	b, err := Seed(Options{Tables: 5}, now)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a.Tables, 5)
}

func TestSeedAdmin(t *testing.T) {
	s, err := Seed(Options{AdminPIN: "2468"}, time.Now())
	require.NoError(t, err)
	require.Len(t, s.Users, 1)
	admin := s.Users[0]
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NotEqual(t, "2468", admin.Pin)
	assert.True(t, admin.CheckPin("2468"))

	_, err = Seed(Options{AdminPIN: "12"}, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidPin)
}
