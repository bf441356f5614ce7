package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemPreparing ItemStatus = "PREPARING"
	ItemReady     ItemStatus = "READY"
	ItemDelivered ItemStatus = "DELIVERED"
	ItemPaid      ItemStatus = "PAID"
)

var ErrInvalidTransition = errors.New("invalid item status transition")

// OrderItem is one line on a table's order. Name and Price are captured when
// the line is added; later product edits do not change them.
type OrderItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Status    ItemStatus      `json:"status"`
	Paid      bool            `json:"paid"`
	Timestamp int64           `json:"timestamp"`
}

// Subtotal is price * quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// itemTransitions is the kitchen flow for a single line.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending:   {ItemPreparing},
	ItemPreparing: {ItemReady, ItemPaid},
	ItemReady:     {ItemDelivered, ItemPaid},
	ItemDelivered: {ItemPaid},
}

// ValidItemTransitionsFrom returns the statuses reachable from status.
func ValidItemTransitionsFrom(status ItemStatus) []ItemStatus {
	return itemTransitions[status]
}

// CanTransition reports whether an item may move from one status to another.
func CanTransition(from, to ItemStatus) error {
	for _, next := range itemTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}
