package replica

import (
	"context"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/operator"

	"github.com/shopspring/decimal"
)

// The On* methods are the entry points UI code calls. Each returns once the
// change is applied locally; persistence continues in the background.

func (r *Replica) OnAddItems(ctx context.Context, tableID int, product model.Product, qty int) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.AddOrderItem(s, env, tableID, product, qty, "")
	})
}

func (r *Replica) OnRemoveItem(ctx context.Context, tableID int, itemID string) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.RemoveOrderItem(s, env, tableID, itemID)
	})
}

func (r *Replica) OnFinalize(ctx context.Context, tableID int, itemIDs []string, method model.PaymentMethod, amountPaid, change decimal.Decimal) (Result, error) {
	ids := append([]string(nil), itemIDs...)
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.FinalizePayment(s, env, tableID, ids, method, amountPaid, change)
	})
}

func (r *Replica) OnMarkReady(ctx context.Context, tableID int, itemID string) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.MarkItemAsReady(s, env, tableID, itemID)
	})
}

func (r *Replica) OnAddTable(ctx context.Context) (Result, error) {
	return r.Apply(ctx, operator.AddNewTable)
}

func (r *Replica) OnAssignCustomer(ctx context.Context, tableID int, customerID string) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.AssignCustomerToTable(s, env, tableID, customerID)
	})
}

func (r *Replica) OnSetGuests(ctx context.Context, tableID int, count int) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.SetCustomerCount(s, env, tableID, count)
	})
}

func (r *Replica) OnSetTableStatus(ctx context.Context, tableID int, status model.TableStatus) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.SetTableStatus(s, env, tableID, status)
	})
}

func (r *Replica) OnAdvanceItem(ctx context.Context, tableID int, itemID string, to model.ItemStatus) (Result, error) {
	return r.Apply(ctx, func(s model.SystemState, env operator.Env) operator.Patch {
		return operator.AdvanceItemStatus(s, env, tableID, itemID, to)
	})
}
