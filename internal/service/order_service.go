package service

import (
	"context"
	"errors"
	"fmt"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/replica"
	"go-restaurant-sync/pkg/validator"

	"github.com/shopspring/decimal"
)

var (
	ErrNotApplied      = errors.New("change not applied")
	ErrProductNotFound = errors.New("product not found")
)

// OrderService turns table-side requests into replica intents.
type OrderService interface {
	State() StateResponse
	AddTable(ctx context.Context) (*model.SystemState, error)
	AddItems(ctx context.Context, tableID int, req *AddItemsRequest) (*model.SystemState, error)
	RemoveItem(ctx context.Context, tableID int, itemID string) (*model.SystemState, error)
	AssignCustomer(ctx context.Context, tableID int, req *AssignCustomerRequest) (*model.SystemState, error)
	SetGuests(ctx context.Context, tableID int, req *SetGuestsRequest) (*model.SystemState, error)
	SetTableStatus(ctx context.Context, tableID int, req *SetTableStatusRequest) (*model.SystemState, error)
	Finalize(ctx context.Context, tableID int, req *PaymentRequest) (*model.SystemState, error)
	MarkReady(ctx context.Context, tableID int, itemID string) (*model.SystemState, error)
	AdvanceItem(ctx context.Context, tableID int, itemID string, req *ItemStatusRequest) (*model.SystemState, error)
}

type StateResponse struct {
	Syncing bool              `json:"syncing"`
	Phase   string            `json:"phase"`
	State   model.SystemState `json:"state"`
}

type AddItemsRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type AssignCustomerRequest struct {
	CustomerID string `json:"customer_id"` // empty unlinks
}

type SetGuestsRequest struct {
	Count int `json:"count" validate:"gte=0"`
}

type SetTableStatusRequest struct {
	Status model.TableStatus `json:"status" validate:"required,oneof=AVAILABLE OCCUPIED RESERVED CLEANING"`
}

type PaymentRequest struct {
	ItemIDs    []string            `json:"item_ids" validate:"dive,required"`
	Method     model.PaymentMethod `json:"method" validate:"required,oneof=CASH CREDIT DEBIT PIX"`
	AmountPaid decimal.Decimal     `json:"amount_paid"`
	Change     decimal.Decimal     `json:"change"`
}

type ItemStatusRequest struct {
	Status model.ItemStatus `json:"status" validate:"required,oneof=PENDING PREPARING READY DELIVERED PAID"`
}

type orderService struct {
	replica Replica
}

func NewOrderService(r Replica) OrderService {
	return &orderService{replica: r}
}

func (s *orderService) State() StateResponse {
	return StateResponse{
		Syncing: s.replica.IsSyncing(),
		Phase:   s.replica.Phase().String(),
		State:   s.replica.Snapshot().WithoutPins(),
	}
}

// outcome maps a replica result onto the service's error contract.
func outcome(res replica.Result, err error) (*model.SystemState, error) {
	if err != nil {
		return nil, err
	}
	if res.Miss != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotApplied, res.Miss)
	}
	out := res.State.WithoutPins()
	return &out, nil
}

func (s *orderService) AddTable(ctx context.Context) (*model.SystemState, error) {
	return outcome(s.replica.OnAddTable(ctx))
}

// AddItems captures the product as it is right now; later catalog edits do
// not reach lines already on the table.
func (s *orderService) AddItems(ctx context.Context, tableID int, req *AddItemsRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if s.replica.Phase() == replica.PhaseUnloaded {
		return nil, replica.ErrNotLoaded
	}
	product, ok := s.replica.Snapshot().FindProduct(req.ProductID)
	if !ok {
		return nil, ErrProductNotFound
	}
	return outcome(s.replica.OnAddItems(ctx, tableID, product, req.Quantity))
}

func (s *orderService) RemoveItem(ctx context.Context, tableID int, itemID string) (*model.SystemState, error) {
	return outcome(s.replica.OnRemoveItem(ctx, tableID, itemID))
}

func (s *orderService) AssignCustomer(ctx context.Context, tableID int, req *AssignCustomerRequest) (*model.SystemState, error) {
	return outcome(s.replica.OnAssignCustomer(ctx, tableID, req.CustomerID))
}

func (s *orderService) SetGuests(ctx context.Context, tableID int, req *SetGuestsRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	return outcome(s.replica.OnSetGuests(ctx, tableID, req.Count))
}

func (s *orderService) SetTableStatus(ctx context.Context, tableID int, req *SetTableStatusRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	return outcome(s.replica.OnSetTableStatus(ctx, tableID, req.Status))
}

func (s *orderService) Finalize(ctx context.Context, tableID int, req *PaymentRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	return outcome(s.replica.OnFinalize(ctx, tableID, req.ItemIDs, req.Method, req.AmountPaid, req.Change))
}

func (s *orderService) MarkReady(ctx context.Context, tableID int, itemID string) (*model.SystemState, error) {
	return outcome(s.replica.OnMarkReady(ctx, tableID, itemID))
}

func (s *orderService) AdvanceItem(ctx context.Context, tableID int, itemID string, req *ItemStatusRequest) (*model.SystemState, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	return outcome(s.replica.OnAdvanceItem(ctx, tableID, itemID, req.Status))
}
