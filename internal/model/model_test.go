package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSections(t *testing.T) {
	assert.Equal(t, AllSections, RoleAdmin.Sections())
	assert.NotContains(t, RoleManager.Sections(), SectionSettings)
	assert.Len(t, RoleManager.Sections(), len(AllSections)-1)
	assert.Equal(t, []Section{SectionPOS, SectionCRM}, RoleWaiter.Sections())
	assert.Equal(t, []Section{SectionKDS}, RoleChef.Sections())

	assert.True(t, RoleChef.CanAccess(SectionKDS))
	assert.False(t, RoleChef.CanAccess(SectionPOS))
	assert.False(t, Role("GUEST").CanAccess(SectionPOS))
	assert.Empty(t, Role("GUEST").Sections())
}

func TestItemTransitions(t *testing.T) {
	assert.NoError(t, CanTransition(ItemPending, ItemPreparing))
	assert.NoError(t, CanTransition(ItemPreparing, ItemReady))
	assert.NoError(t, CanTransition(ItemReady, ItemDelivered))
	assert.NoError(t, CanTransition(ItemDelivered, ItemPaid))

	err := CanTransition(ItemPaid, ItemReady)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, CanTransition(ItemReady, ItemPreparing), ErrInvalidTransition)
	assert.Empty(t, ValidItemTransitionsFrom(ItemPaid))
}

func TestPin(t *testing.T) {
	assert.True(t, ValidPin("1234"))
	assert.True(t, ValidPin("123456"))
	assert.False(t, ValidPin("123"))
	assert.False(t, ValidPin("1234567"))
	assert.False(t, ValidPin("12a4"))

	var u User
	assert.False(t, u.CheckPin("1234"))
	assert.ErrorIs(t, u.SetPin("abc"), ErrInvalidPin)

	require.NoError(t, u.SetPin("4321"))
	assert.NotEqual(t, "4321", u.Pin)
	assert.True(t, u.CheckPin("4321"))
	assert.False(t, u.CheckPin("1234"))
}

func TestPointsFor(t *testing.T) {
	assert.Equal(t, int64(0), PointsFor(decimal.RequireFromString("9.99")))
	assert.Equal(t, int64(5), PointsFor(decimal.RequireFromString("52.50")))
	assert.Equal(t, int64(10), PointsFor(decimal.NewFromInt(100)))
	assert.Equal(t, int64(0), PointsFor(decimal.NewFromInt(-30)))
}

func TestSubtotal(t *testing.T) {
	item := OrderItem{Price: decimal.RequireFromString("7.25"), Quantity: 4}
	assert.True(t, item.Subtotal().Equal(decimal.NewFromInt(29)))
}

func TestCloneIsDeep(t *testing.T) {
	s := SystemState{
		Tables:    []Table{{ID: 1, OrderItems: []OrderItem{{ID: "a"}}}},
		Customers: []Customer{{ID: "c1", Prefs: []string{"spicy"}}},
	}
	c := s.Clone()
	c.Tables[0].OrderItems[0].ID = "changed"
	c.Customers[0].Prefs[0] = "mild"

	assert.Equal(t, "a", s.Tables[0].OrderItems[0].ID)
	assert.Equal(t, "spicy", s.Customers[0].Prefs[0])
}

func TestWithoutPinsLeavesSourceAlone(t *testing.T) {
	s := SystemState{Users: []User{{ID: "u1", Pin: "hash"}}}
	out := s.WithoutPins()

	assert.Empty(t, out.Users[0].Pin)
	assert.Equal(t, "u1", out.Users[0].ID)
	assert.Equal(t, "hash", s.Users[0].Pin)
}

func TestNormalizeFillsMissingCollections(t *testing.T) {
	var s SystemState
	require.NoError(t, json.Unmarshal([]byte(`{"tables":[{"id":1,"status":"AVAILABLE"}],"lastGlobalUpdate":7}`), &s))
	s.Normalize()

	assert.NotNil(t, s.Products)
	assert.NotNil(t, s.Users)
	assert.NotNil(t, s.Tables[0].OrderItems)
	assert.Equal(t, int64(7), s.LastGlobalUpdate)
}

func TestStateJSONShape(t *testing.T) {
	s := SystemState{
		Tables: []Table{{ID: 2, Status: TableOccupied, ComandaID: "1234", OrderItems: []OrderItem{{
			ID: "i1", Price: decimal.RequireFromString("15.5"), Quantity: 2, Status: ItemPreparing,
		}}}},
		LastGlobalUpdate: 42,
	}
	s.Normalize()
	body, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Contains(t, raw, "lastGlobalUpdate")
	assert.Contains(t, raw, "transactions")
	table := raw["tables"].([]any)[0].(map[string]any)
	assert.Equal(t, "1234", table["comandaId"])
	item := table["orderItems"].([]any)[0].(map[string]any)
	assert.Equal(t, "15.5", item["price"])
}
