package operator

import "go-restaurant-sync/internal/model"

// Patch holds the sub-collections an operator replaced. A nil slice means the
// collection is unchanged. Miss is set when the intent referenced something
// that does not exist; such a patch changes nothing.
type Patch struct {
	Tables       []model.Table
	Transactions []model.Transaction
	Customers    []model.Customer
	Products     []model.Product
	Users        []model.User
	Printers     []model.Printer
	Connections  []model.Connection

	Miss string
}

// Empty reports whether applying the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Tables == nil && p.Transactions == nil && p.Customers == nil &&
		p.Products == nil && p.Users == nil && p.Printers == nil && p.Connections == nil
}

// Apply merges the patch over s. LastGlobalUpdate is left to the caller.
func (p Patch) Apply(s model.SystemState) model.SystemState {
	if p.Tables != nil {
		s.Tables = p.Tables
	}
	if p.Transactions != nil {
		s.Transactions = p.Transactions
	}
	if p.Customers != nil {
		s.Customers = p.Customers
	}
	if p.Products != nil {
		s.Products = p.Products
	}
	if p.Users != nil {
		s.Users = p.Users
	}
	if p.Printers != nil {
		s.Printers = p.Printers
	}
	if p.Connections != nil {
		s.Connections = p.Connections
	}
	return s
}

func miss(reason string) Patch {
	return Patch{Miss: reason}
}
