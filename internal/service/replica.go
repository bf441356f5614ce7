package service

import (
	"context"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/replica"

	"github.com/shopspring/decimal"
)

// Replica is the slice of *replica.Replica the terminal services use.
type Replica interface {
	Apply(ctx context.Context, m replica.Mutation) (replica.Result, error)
	Snapshot() model.SystemState
	Phase() replica.Phase
	IsSyncing() bool

	OnAddItems(ctx context.Context, tableID int, product model.Product, qty int) (replica.Result, error)
	OnRemoveItem(ctx context.Context, tableID int, itemID string) (replica.Result, error)
	OnFinalize(ctx context.Context, tableID int, itemIDs []string, method model.PaymentMethod, amountPaid, change decimal.Decimal) (replica.Result, error)
	OnMarkReady(ctx context.Context, tableID int, itemID string) (replica.Result, error)
	OnAddTable(ctx context.Context) (replica.Result, error)
	OnAssignCustomer(ctx context.Context, tableID int, customerID string) (replica.Result, error)
	OnSetGuests(ctx context.Context, tableID int, count int) (replica.Result, error)
	OnSetTableStatus(ctx context.Context, tableID int, status model.TableStatus) (replica.Result, error)
	OnAdvanceItem(ctx context.Context, tableID int, itemID string, to model.ItemStatus) (replica.Result, error)
}

var _ Replica = (*replica.Replica)(nil)
