// Package bootstrap builds the first aggregate written when the shared
// document does not exist yet.
package bootstrap

import (
	"fmt"
	"time"

	"go-restaurant-sync/internal/model"
)

// DefaultTableCount is the size of a fresh floor.
const DefaultTableCount = 24

type Options struct {
	// Tables is the number of tables to create; zero means DefaultTableCount.
	Tables int
	// AdminPIN, when set, seeds one ADMIN user so a new install can log in.
	AdminPIN string
}

// Seed returns tables 1..N, all AVAILABLE with empty orders, and empty
// collections for everything else.
func Seed(opts Options, now time.Time) (model.SystemState, error) {
	n := opts.Tables
	if n <= 0 {
		n = DefaultTableCount
	}
	stamp := now.UnixMilli()

	state := model.SystemState{
		Products:         []model.Product{},
		Transactions:     []model.Transaction{},
		Customers:        []model.Customer{},
		Users:            []model.User{},
		Tables:           make([]model.Table, 0, n),
		Printers:         []model.Printer{},
		Connections:      []model.Connection{},
		LastGlobalUpdate: stamp,
	}
	for id := 1; id <= n; id++ {
		state.Tables = append(state.Tables, model.Table{
			ID:         id,
			Status:     model.TableAvailable,
			OrderItems: []model.OrderItem{},
			LastUpdate: stamp,
		})
	}

	if opts.AdminPIN != "" {
		admin := model.User{ID: "admin", Name: "Admin", Role: model.RoleAdmin}
		if err := admin.SetPin(opts.AdminPIN); err != nil {
			return model.SystemState{}, fmt.Errorf("seed admin: %w", err)
		}
		state.Users = append(state.Users, admin)
	}
	return state, nil
}
