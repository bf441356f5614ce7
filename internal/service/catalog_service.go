package service

import (
	"context"
	"errors"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/operator"
	"go-restaurant-sync/internal/replica"
	"go-restaurant-sync/pkg/validator"

	"github.com/shopspring/decimal"
)

var ErrPinRequired = errors.New("PIN is required for a new user")

// CatalogService edits the reference data in the aggregate: menu, customers,
// staff and device settings.
type CatalogService interface {
	SaveProduct(ctx context.Context, id string, req *ProductRequest) (*model.SystemState, error)
	SaveCustomer(ctx context.Context, id string, req *CustomerRequest) (*model.SystemState, error)
	SaveUser(ctx context.Context, id string, req *UserRequest) (*model.SystemState, error)
	SavePrinter(ctx context.Context, id string, req *PrinterRequest) (*model.SystemState, error)
	SaveConnection(ctx context.Context, id string, req *ConnectionRequest) (*model.SystemState, error)
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Cost        decimal.Decimal `json:"cost"`
	Stock       int             `json:"stock" validate:"gte=0"`
	SalesVolume int             `json:"sales_volume" validate:"gte=0"`
}

type CustomerRequest struct {
	Name  string   `json:"name" validate:"required"`
	Prefs []string `json:"prefs"`
}

type UserRequest struct {
	Name   string     `json:"name" validate:"required"`
	Role   model.Role `json:"role" validate:"required,oneof=ADMIN MANAGER WAITER CHEF"`
	Pin    string     `json:"pin" validate:"omitempty,pin"` // Optional on update
	Avatar string     `json:"avatar"`
}

type PrinterRequest struct {
	Name    string               `json:"name" validate:"required"`
	Address string               `json:"address"`
	Station model.PrinterStation `json:"station" validate:"required,oneof=KITCHEN BAR RECEIPT"`
	Enabled bool                 `json:"enabled"`
}

type ConnectionRequest struct {
	Name     string                 `json:"name" validate:"required"`
	Provider string                 `json:"provider"`
	Status   model.ConnectionStatus `json:"status" validate:"required,oneof=CONNECTED DISCONNECTED"`
	LastSync int64                  `json:"last_sync"`
}

type catalogService struct {
	replica Replica
}

func NewCatalogService(r Replica) CatalogService {
	return &catalogService{replica: r}
}

func (s *catalogService) SaveProduct(ctx context.Context, id string, req *ProductRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	product := model.Product{
		ID:          id,
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Cost:        req.Cost,
		Stock:       req.Stock,
		SalesVolume: req.SalesVolume,
	}
	return outcome(s.replica.Apply(ctx, func(st model.SystemState, env operator.Env) operator.Patch {
		return operator.SaveProduct(st, env, product)
	}))
}

func (s *catalogService) SaveCustomer(ctx context.Context, id string, req *CustomerRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	customer := model.Customer{ID: id, Name: req.Name, Prefs: req.Prefs}
	return outcome(s.replica.Apply(ctx, func(st model.SystemState, env operator.Env) operator.Patch {
		return operator.SaveCustomer(st, env, customer)
	}))
}

// SaveUser hashes the PIN before it reaches the aggregate; plain PINs are
// never replicated.
func (s *catalogService) SaveUser(ctx context.Context, id string, req *UserRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if s.replica.Phase() == replica.PhaseUnloaded {
		return nil, replica.ErrNotLoaded
	}

	user := model.User{ID: id, Name: req.Name, Role: req.Role, Avatar: req.Avatar}
	if req.Pin != "" {
		if err := user.SetPin(req.Pin); err != nil {
			return nil, err
		}
	} else if !hasUser(s.replica.Snapshot(), id) {
		return nil, ErrPinRequired
	}

	return outcome(s.replica.Apply(ctx, func(st model.SystemState, env operator.Env) operator.Patch {
		return operator.SaveUser(st, env, user)
	}))
}

func hasUser(st model.SystemState, id string) bool {
	for _, u := range st.Users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func (s *catalogService) SavePrinter(ctx context.Context, id string, req *PrinterRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	printer := model.Printer{ID: id, Name: req.Name, Address: req.Address, Station: req.Station, Enabled: req.Enabled}
	return outcome(s.replica.Apply(ctx, func(st model.SystemState, env operator.Env) operator.Patch {
		return operator.SavePrinter(st, env, printer)
	}))
}

func (s *catalogService) SaveConnection(ctx context.Context, id string, req *ConnectionRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	conn := model.Connection{ID: id, Name: req.Name, Provider: req.Provider, Status: req.Status, LastSync: req.LastSync}
	return outcome(s.replica.Apply(ctx, func(st model.SystemState, env operator.Env) operator.Patch {
		return operator.SaveConnection(st, env, conn)
	}))
}
