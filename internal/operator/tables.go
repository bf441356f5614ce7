package operator

import (
	"fmt"

	"go-restaurant-sync/internal/model"

	"github.com/shopspring/decimal"
)

// updateTable copies the table list and lets fn edit the copy of table id.
// fn returns a miss reason to abandon the edit.
func updateTable(tables []model.Table, id int, fn func(t *model.Table) string) ([]model.Table, string) {
	idx := -1
	for i, t := range tables {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Sprintf("table %d not found", id)
	}

	t := tables[idx].Clone()
	if reason := fn(&t); reason != "" {
		return nil, reason
	}

	out := make([]model.Table, len(tables))
	copy(out, tables)
	out[idx] = t
	return out, ""
}

// resetTable returns an emptied table to AVAILABLE.
func resetTable(t *model.Table) {
	t.Status = model.TableAvailable
	t.ComandaID = ""
	t.OrderItems = []model.OrderItem{}
}

// AssignCustomerToTable links a customer to a table. An empty customerID
// unlinks. Customer records are not touched.
func AssignCustomerToTable(s model.SystemState, env Env, tableID int, customerID string) Patch {
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		t.CustomerID = customerID
		t.LastUpdate = env.millis()
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}

// AddOrderItem appends a new PREPARING line for product. Identical lines are
// not merged. The first line on a table opens a comanda: comandaID when the
// caller supplies one, otherwise a random 4-digit number.
func AddOrderItem(s model.SystemState, env Env, tableID int, product model.Product, qty int, comandaID string) Patch {
	if qty <= 0 {
		return miss(fmt.Sprintf("quantity %d is not positive", qty))
	}
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		now := env.millis()
		t.OrderItems = append(t.OrderItems, model.OrderItem{
			ID:        env.NewID(),
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  qty,
			Status:    model.ItemPreparing,
			Timestamp: now,
		})
		if t.ComandaID == "" {
			if comandaID == "" {
				comandaID = env.NewComanda()
			}
			t.ComandaID = comandaID
		}
		t.Status = model.TableOccupied
		t.LastUpdate = now
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}

// RemoveOrderItem drops one line. A table left without lines goes back to
// AVAILABLE and loses its comanda.
func RemoveOrderItem(s model.SystemState, env Env, tableID int, itemID string) Patch {
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		idx := t.FindItem(itemID)
		if idx < 0 {
			return fmt.Sprintf("item %s not found on table %d", itemID, tableID)
		}
		t.OrderItems = append(t.OrderItems[:idx], t.OrderItems[idx+1:]...)
		if len(t.OrderItems) == 0 {
			resetTable(t)
		}
		t.LastUpdate = env.millis()
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}

// MarkItemAsReady sets one line to READY and changes nothing else.
func MarkItemAsReady(s model.SystemState, env Env, tableID int, itemID string) Patch {
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		idx := t.FindItem(itemID)
		if idx < 0 {
			return fmt.Sprintf("item %s not found on table %d", itemID, tableID)
		}
		t.OrderItems[idx].Status = model.ItemReady
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}

// AdvanceItemStatus moves a line along the kitchen flow. Payment is not a
// kitchen step: PAID is reached only through FinalizePayment.
func AdvanceItemStatus(s model.SystemState, env Env, tableID int, itemID string, to model.ItemStatus) Patch {
	if to == model.ItemPaid {
		return miss("items are paid through FinalizePayment")
	}
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		idx := t.FindItem(itemID)
		if idx < 0 {
			return fmt.Sprintf("item %s not found on table %d", itemID, tableID)
		}
		if err := model.CanTransition(t.OrderItems[idx].Status, to); err != nil {
			return err.Error()
		}
		t.OrderItems[idx].Status = to
		t.LastUpdate = env.millis()
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}

// FinalizePayment settles the listed lines of a table. The table, the ledger
// and the assigned customer change together in one patch. An empty itemIDs
// still records a zero-amount transaction; a non-empty list that matches no
// line on the table is a miss.
func FinalizePayment(s model.SystemState, env Env, tableID int, itemIDs []string, method model.PaymentMethod, amountPaid, change decimal.Decimal) Patch {
	idx := s.FindTable(tableID)
	if idx < 0 {
		return miss(fmt.Sprintf("table %d not found", tableID))
	}
	table := s.Tables[idx]
	now := env.millis()

	selected := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		selected[id] = true
	}

	total := decimal.Zero
	paidCount := 0
	remaining := make([]model.OrderItem, 0, len(table.OrderItems))
	for _, item := range table.OrderItems {
		if selected[item.ID] {
			total = total.Add(item.Subtotal())
			paidCount++
			continue
		}
		remaining = append(remaining, item)
	}
	if len(itemIDs) > 0 && paidCount == 0 {
		return miss(fmt.Sprintf("no listed item on table %d", tableID))
	}

	var customers []model.Customer
	if table.CustomerID != "" {
		for i, c := range s.Customers {
			if c.ID != table.CustomerID {
				continue
			}
			customers = make([]model.Customer, len(s.Customers))
			copy(customers, s.Customers)
			updated := c.Clone()
			updated.Spent = updated.Spent.Add(total)
			updated.Points += model.PointsFor(total)
			updated.LastVisit = env.today()
			customers[i] = updated
			break
		}
	}

	tx := model.Transaction{
		ID:            env.NewID(),
		TableID:       table.ID,
		ComandaID:     table.ComandaID,
		Amount:        total,
		AmountPaid:    amountPaid,
		Change:        change,
		PaymentMethod: method,
		ItemsCount:    paidCount,
		Timestamp:     now,
		CustomerID:    table.CustomerID,
	}
	transactions := make([]model.Transaction, 0, len(s.Transactions)+1)
	transactions = append(transactions, s.Transactions...)
	transactions = append(transactions, tx)

	tables, _ := updateTable(s.Tables, tableID, func(t *model.Table) string {
		t.OrderItems = remaining
		if paidCount > 0 && len(remaining) == 0 {
			resetTable(t)
			t.CustomerID = ""
		}
		t.LastUpdate = now
		return ""
	})

	return Patch{Tables: tables, Transactions: transactions, Customers: customers}
}

// AddNewTable appends an AVAILABLE table numbered max(id)+1, or 1 for an
// empty floor.
func AddNewTable(s model.SystemState, env Env) Patch {
	next := 1
	for _, t := range s.Tables {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	tables := make([]model.Table, 0, len(s.Tables)+1)
	tables = append(tables, s.Tables...)
	tables = append(tables, model.Table{
		ID:         next,
		Status:     model.TableAvailable,
		OrderItems: []model.OrderItem{},
		LastUpdate: env.millis(),
	})
	return Patch{Tables: tables}
}

// SetCustomerCount records how many guests sit at a table.
func SetCustomerCount(s model.SystemState, env Env, tableID int, count int) Patch {
	if count < 0 {
		return miss(fmt.Sprintf("customer count %d is negative", count))
	}
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		t.CustomerCount = count
		t.LastUpdate = env.millis()
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}

// SetTableStatus marks an empty table AVAILABLE, RESERVED or CLEANING.
// OCCUPIED follows from the order and cannot be set directly.
func SetTableStatus(s model.SystemState, env Env, tableID int, status model.TableStatus) Patch {
	switch status {
	case model.TableAvailable, model.TableReserved, model.TableCleaning:
	default:
		return miss(fmt.Sprintf("status %s cannot be set directly", status))
	}
	tables, reason := updateTable(s.Tables, tableID, func(t *model.Table) string {
		if len(t.OrderItems) > 0 {
			return fmt.Sprintf("table %d has open items", tableID)
		}
		t.Status = status
		t.LastUpdate = env.millis()
		return ""
	})
	if reason != "" {
		return miss(reason)
	}
	return Patch{Tables: tables}
}
