package operator_test

import (
	"fmt"
	"testing"
	"time"

	"go-restaurant-sync/internal/bootstrap"
	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/operator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)

func testEnv() operator.Env {
	n := 0
	return operator.Env{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
		NewComanda: func() string { return "4321" },
	}
}

func floor(t *testing.T) model.SystemState {
	t.Helper()
	s, err := bootstrap.Seed(bootstrap.Options{}, fixedNow)
	require.NoError(t, err)
	return s
}

var burger = model.Product{ID: "b1", Name: "Burger", Price: decimal.NewFromInt(15)}

func apply(s model.SystemState, p operator.Patch) model.SystemState {
	return p.Apply(s)
}

func table(t *testing.T, s model.SystemState, id int) model.Table {
	t.Helper()
	idx := s.FindTable(id)
	require.GreaterOrEqual(t, idx, 0, "table %d", id)
	return s.Tables[idx]
}

func assertOccupancy(t *testing.T, s model.SystemState) {
	t.Helper()
	for _, tbl := range s.Tables {
		if len(tbl.OrderItems) > 0 {
			assert.Equal(t, model.TableOccupied, tbl.Status, "table %d", tbl.ID)
		} else {
			assert.NotEqual(t, model.TableOccupied, tbl.Status, "table %d", tbl.ID)
		}
	}
}

func TestAddAndPayScenario(t *testing.T) {
	env := testEnv()
	s := floor(t)

	p := operator.AddOrderItem(s, env, 5, burger, 2, "")
	require.Empty(t, p.Miss)
	s = apply(s, p)

	t5 := table(t, s, 5)
	assert.Equal(t, model.TableOccupied, t5.Status)
	require.Len(t, t5.OrderItems, 1)
	item := t5.OrderItems[0]
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, model.ItemPreparing, item.Status)
	assert.Regexp(t, `^[0-9]{4}$`, t5.ComandaID)
	assertOccupancy(t, s)

	p = operator.FinalizePayment(s, env, 5, []string{item.ID}, model.PaymentCash, decimal.NewFromInt(30), decimal.Zero)
	require.Empty(t, p.Miss)
	s = apply(s, p)

	require.Len(t, s.Transactions, 1)
	assert.True(t, s.Transactions[0].Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, model.PaymentCash, s.Transactions[0].PaymentMethod)
	assert.Equal(t, "4321", s.Transactions[0].ComandaID)
	assert.Equal(t, 1, s.Transactions[0].ItemsCount)

	t5 = table(t, s, 5)
	assert.Equal(t, model.TableAvailable, t5.Status)
	assert.Empty(t, t5.ComandaID)
	assert.Empty(t, t5.OrderItems)
	assertOccupancy(t, s)
}

func TestRandomComandaIsFourDigits(t *testing.T) {
	env := operator.DefaultEnv()
	for i := 0; i < 200; i++ {
		assert.Regexp(t, `^[1-9][0-9]{3}$`, env.NewComanda())
	}
}

func TestAddOrderItemKeepsComandaAndDoesNotMerge(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 1, burger, 1, "777"))
	s = apply(s, operator.AddOrderItem(s, env, 1, burger, 1, "888"))

	t1 := table(t, s, 1)
	assert.Equal(t, "777", t1.ComandaID)
	require.Len(t, t1.OrderItems, 2)
	assert.NotEqual(t, t1.OrderItems[0].ID, t1.OrderItems[1].ID)
}

func TestAddOrderItemCapturesProductSnapshot(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s.Products = []model.Product{burger}
	s = apply(s, operator.AddOrderItem(s, env, 2, burger, 1, ""))

	repriced := burger
	repriced.Price = decimal.NewFromInt(99)
	repriced.Name = "Big Burger"
	s = apply(s, operator.SaveProduct(s, env, repriced))

	item := table(t, s, 2).OrderItems[0]
	assert.Equal(t, "Burger", item.Name)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(15)))
}

func TestAddOrderItemRejectsNonPositiveQuantity(t *testing.T) {
	s := floor(t)
	p := operator.AddOrderItem(s, testEnv(), 1, burger, 0, "")
	assert.NotEmpty(t, p.Miss)
	assert.True(t, p.Empty())
}

func TestRemoveLastItemFreesTable(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 3, burger, 1, ""))
	s = apply(s, operator.AssignCustomerToTable(s, env, 3, "c1"))
	itemID := table(t, s, 3).OrderItems[0].ID

	p := operator.RemoveOrderItem(s, env, 3, itemID)
	require.Empty(t, p.Miss)
	s = apply(s, p)

	t3 := table(t, s, 3)
	assert.Equal(t, model.TableAvailable, t3.Status)
	assert.Empty(t, t3.ComandaID)
	assert.Equal(t, "c1", t3.CustomerID)
	assertOccupancy(t, s)
}

func TestUnknownTargetsAreNoOps(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 1, burger, 1, ""))
	before := s.Clone()
	itemID := table(t, s, 1).OrderItems[0].ID

	patches := map[string]operator.Patch{
		"assign unknown table":    operator.AssignCustomerToTable(s, env, 999, "c1"),
		"add to unknown table":    operator.AddOrderItem(s, env, 999, burger, 1, ""),
		"remove unknown table":    operator.RemoveOrderItem(s, env, 999, itemID),
		"remove unknown item":     operator.RemoveOrderItem(s, env, 1, "nope"),
		"ready unknown table":     operator.MarkItemAsReady(s, env, 999, itemID),
		"ready unknown item":      operator.MarkItemAsReady(s, env, 1, "nope"),
		"advance unknown item":    operator.AdvanceItemStatus(s, env, 1, "nope", model.ItemReady),
		"finalize unknown table":  operator.FinalizePayment(s, env, 999, []string{itemID}, model.PaymentPix, decimal.Zero, decimal.Zero),
		"finalize unknown item":   operator.FinalizePayment(s, env, 1, []string{"nope"}, model.PaymentCash, decimal.Zero, decimal.Zero),
		"finalize on empty table": operator.FinalizePayment(s, env, 2, []string{itemID}, model.PaymentCash, decimal.Zero, decimal.Zero),
		"guests unknown table":    operator.SetCustomerCount(s, env, 999, 2),
		"status unknown table":    operator.SetTableStatus(s, env, 999, model.TableReserved),
	}
	for name, p := range patches {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, p.Miss)
			assert.True(t, p.Empty())
			assert.Equal(t, before, apply(s, p))
		})
	}
}

func TestPaymentAtomicity(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s.Customers = []model.Customer{{ID: "c1", Name: "Ana", Spent: decimal.NewFromInt(5), Points: 1, Prefs: []string{}}}
	fries := model.Product{ID: "f1", Name: "Fries", Price: decimal.RequireFromString("7.50")}

	s = apply(s, operator.AddOrderItem(s, env, 4, burger, 2, ""))
	s = apply(s, operator.AddOrderItem(s, env, 4, fries, 3, ""))
	s = apply(s, operator.AssignCustomerToTable(s, env, 4, "c1"))

	var ids []string
	for _, item := range table(t, s, 4).OrderItems {
		ids = append(ids, item.ID)
	}

	p := operator.FinalizePayment(s, env, 4, ids, model.PaymentCredit, decimal.NewFromInt(60), decimal.RequireFromString("7.50"))
	require.NotNil(t, p.Tables)
	require.NotNil(t, p.Transactions)
	require.NotNil(t, p.Customers)
	s = apply(s, p)

	// 2*15 + 3*7.50
	want := decimal.RequireFromString("52.50")
	require.Len(t, s.Transactions, 1)
	tx := s.Transactions[0]
	assert.True(t, tx.Amount.Equal(want), tx.Amount.String())
	assert.Equal(t, "c1", tx.CustomerID)
	assert.Equal(t, 2, tx.ItemsCount)

	require.Len(t, s.Customers, 1)
	c := s.Customers[0]
	assert.True(t, c.Spent.Equal(decimal.RequireFromString("57.50")))
	assert.Equal(t, int64(1+5), c.Points)
	assert.Equal(t, "2026-03-14", c.LastVisit)

	t4 := table(t, s, 4)
	assert.Empty(t, t4.OrderItems)
	assert.Empty(t, t4.CustomerID)
	assert.Equal(t, model.TableAvailable, t4.Status)
}

func TestPartialPaymentKeepsRestOfOrder(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 6, burger, 1, ""))
	s = apply(s, operator.AddOrderItem(s, env, 6, burger, 1, ""))
	items := table(t, s, 6).OrderItems

	s = apply(s, operator.FinalizePayment(s, env, 6, []string{items[0].ID}, model.PaymentDebit, decimal.NewFromInt(15), decimal.Zero))

	t6 := table(t, s, 6)
	require.Len(t, t6.OrderItems, 1)
	assert.Equal(t, items[1].ID, t6.OrderItems[0].ID)
	assert.Equal(t, model.TableOccupied, t6.Status)
	assert.NotEmpty(t, t6.ComandaID)
}

func TestFinalizeWithNoItemsRecordsZeroTransaction(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 7, burger, 1, ""))

	s = apply(s, operator.FinalizePayment(s, env, 7, nil, model.PaymentCash, decimal.Zero, decimal.Zero))

	require.Len(t, s.Transactions, 1)
	assert.True(t, s.Transactions[0].Amount.IsZero())
	assert.Equal(t, 0, s.Transactions[0].ItemsCount)
	assert.Len(t, table(t, s, 7).OrderItems, 1)

	s = apply(s, operator.SetTableStatus(s, env, 8, model.TableReserved))
	s = apply(s, operator.AssignCustomerToTable(s, env, 8, "c1"))
	s = apply(s, operator.FinalizePayment(s, env, 8, []string{}, model.PaymentCash, decimal.Zero, decimal.Zero))

	require.Len(t, s.Transactions, 2)
	t8 := table(t, s, 8)
	assert.Equal(t, model.TableReserved, t8.Status)
	assert.Equal(t, "c1", t8.CustomerID)
}

func TestPatchDoesNotAliasInput(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 1, burger, 1, ""))
	before := s.Clone()

	_ = operator.AddOrderItem(s, env, 1, burger, 1, "")
	_ = operator.MarkItemAsReady(s, env, 1, table(t, s, 1).OrderItems[0].ID)

	assert.Equal(t, before, s)
}

func TestMarkItemAsReadyChangesOnlyStatus(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 8, burger, 1, ""))
	before := table(t, s, 8)

	s = apply(s, operator.MarkItemAsReady(s, env, 8, before.OrderItems[0].ID))

	after := table(t, s, 8)
	assert.Equal(t, model.ItemReady, after.OrderItems[0].Status)
	after.OrderItems[0].Status = before.OrderItems[0].Status
	assert.Equal(t, before, after)
}

func TestAdvanceItemStatus(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.AddOrderItem(s, env, 9, burger, 1, ""))
	itemID := table(t, s, 9).OrderItems[0].ID

	p := operator.AdvanceItemStatus(s, env, 9, itemID, model.ItemDelivered)
	assert.Contains(t, p.Miss, "invalid item status transition")

	s = apply(s, operator.AdvanceItemStatus(s, env, 9, itemID, model.ItemReady))
	s = apply(s, operator.AdvanceItemStatus(s, env, 9, itemID, model.ItemDelivered))
	assert.Equal(t, model.ItemDelivered, table(t, s, 9).OrderItems[0].Status)

	p = operator.AdvanceItemStatus(s, env, 9, itemID, model.ItemPaid)
	assert.NotEmpty(t, p.Miss)
}

func TestAddNewTable(t *testing.T) {
	env := testEnv()

	empty := model.SystemState{}
	p := operator.AddNewTable(empty, env)
	require.Len(t, p.Tables, 1)
	assert.Equal(t, 1, p.Tables[0].ID)

	s := model.SystemState{Tables: []model.Table{{ID: 3}, {ID: 11}, {ID: 7}}}
	p = operator.AddNewTable(s, env)
	require.Len(t, p.Tables, 4)
	added := p.Tables[3]
	assert.Equal(t, 12, added.ID)
	assert.Equal(t, model.TableAvailable, added.Status)
	assert.NotNil(t, added.OrderItems)
}

func TestSetCustomerCount(t *testing.T) {
	env := testEnv()
	s := floor(t)
	s = apply(s, operator.SetCustomerCount(s, env, 2, 4))
	assert.Equal(t, 4, table(t, s, 2).CustomerCount)

	assert.NotEmpty(t, operator.SetCustomerCount(s, env, 2, -1).Miss)
}

func TestSetTableStatus(t *testing.T) {
	env := testEnv()
	s := floor(t)

	s = apply(s, operator.SetTableStatus(s, env, 10, model.TableReserved))
	assert.Equal(t, model.TableReserved, table(t, s, 10).Status)

	assert.NotEmpty(t, operator.SetTableStatus(s, env, 10, model.TableOccupied).Miss)

	s = apply(s, operator.AddOrderItem(s, env, 10, burger, 1, ""))
	assert.Equal(t, model.TableOccupied, table(t, s, 10).Status)
	assert.NotEmpty(t, operator.SetTableStatus(s, env, 10, model.TableCleaning).Miss)
	assertOccupancy(t, s)
}

func TestSaveCustomerKeepsLoyaltyTotals(t *testing.T) {
	env := testEnv()
	s := model.SystemState{Customers: []model.Customer{{
		ID: "c1", Name: "Ana", Spent: decimal.NewFromInt(120), Points: 12, LastVisit: "2026-01-02",
	}}}

	s = apply(s, operator.SaveCustomer(s, env, model.Customer{ID: "c1", Name: "Ana Maria", Prefs: []string{"vegan"}}))
	require.Len(t, s.Customers, 1)
	c := s.Customers[0]
	assert.Equal(t, "Ana Maria", c.Name)
	assert.True(t, c.Spent.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, int64(12), c.Points)
	assert.Equal(t, "2026-01-02", c.LastVisit)
	assert.Equal(t, []string{"vegan"}, c.Prefs)

	s = apply(s, operator.SaveCustomer(s, env, model.Customer{ID: "c2", Name: "Bruno"}))
	require.Len(t, s.Customers, 2)
	assert.NotNil(t, s.Customers[1].Prefs)
}

func TestSaveUserKeepsPinHashWhenEmpty(t *testing.T) {
	env := testEnv()
	s := model.SystemState{Users: []model.User{{ID: "u1", Name: "Ana", Role: model.RoleWaiter, Pin: "hash"}}}

	s = apply(s, operator.SaveUser(s, env, model.User{ID: "u1", Name: "Ana", Role: model.RoleManager}))
	require.Len(t, s.Users, 1)
	assert.Equal(t, "hash", s.Users[0].Pin)
	assert.Equal(t, model.RoleManager, s.Users[0].Role)
}

func TestSaveRejectsEmptyIDs(t *testing.T) {
	env := testEnv()
	s := model.SystemState{}
	assert.NotEmpty(t, operator.SaveProduct(s, env, model.Product{}).Miss)
	assert.NotEmpty(t, operator.SaveCustomer(s, env, model.Customer{}).Miss)
	assert.NotEmpty(t, operator.SaveUser(s, env, model.User{}).Miss)
	assert.NotEmpty(t, operator.SavePrinter(s, env, model.Printer{}).Miss)
	assert.NotEmpty(t, operator.SaveConnection(s, env, model.Connection{}).Miss)
}

func TestSavePrinterAndConnectionUpsert(t *testing.T) {
	env := testEnv()
	s := model.SystemState{}
	s = apply(s, operator.SavePrinter(s, env, model.Printer{ID: "p1", Name: "Kitchen", Station: model.StationKitchen}))
	s = apply(s, operator.SavePrinter(s, env, model.Printer{ID: "p1", Name: "Kitchen 2", Station: model.StationKitchen, Enabled: true}))
	require.Len(t, s.Printers, 1)
	assert.Equal(t, "Kitchen 2", s.Printers[0].Name)
	assert.True(t, s.Printers[0].Enabled)

	s = apply(s, operator.SaveConnection(s, env, model.Connection{ID: "ifood", Name: "iFood", Status: model.ConnectionConnected}))
	require.Len(t, s.Connections, 1)
	assert.Equal(t, model.ConnectionConnected, s.Connections[0].Status)
}
