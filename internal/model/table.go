package model

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableCleaning  TableStatus = "CLEANING"
)

// Table is a dining table and its running order.
// Status is OCCUPIED exactly when OrderItems is non-empty.
type Table struct {
	ID            int         `json:"id"`
	ComandaID     string      `json:"comandaId,omitempty"`
	Status        TableStatus `json:"status"`
	OrderItems    []OrderItem `json:"orderItems"`
	CustomerCount int         `json:"customerCount"`
	CustomerID    string      `json:"customerId,omitempty"`
	LastUpdate    int64       `json:"lastUpdate"`
}

func (t Table) Clone() Table {
	out := t
	out.OrderItems = append(make([]OrderItem, 0, len(t.OrderItems)), t.OrderItems...)
	return out
}

// FindItem returns the index of the order item with the given id, or -1.
func (t Table) FindItem(id string) int {
	for i, item := range t.OrderItems {
		if item.ID == id {
			return i
		}
	}
	return -1
}
