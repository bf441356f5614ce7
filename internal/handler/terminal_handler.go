package handler

import (
	"encoding/json"
	"errors"

	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/replica"
	"go-restaurant-sync/internal/service"
	"go-restaurant-sync/internal/ws"
	"go-restaurant-sync/pkg/validator"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// StateTopic is the hub topic local displays follow.
const StateTopic = "state"

type TerminalHandler struct {
	orders  service.OrderService
	catalog service.CatalogService
	wsHub   *ws.Hub
}

func NewTerminalHandler(orders service.OrderService, catalog service.CatalogService, hub *ws.Hub) *TerminalHandler {
	return &TerminalHandler{orders: orders, catalog: catalog, wsHub: hub}
}

// StatePayload is what the hub sends to a new display.
func (h *TerminalHandler) StatePayload(string) ([]byte, error) {
	return json.Marshal(h.orders.State())
}

// Forward broadcasts the state on every update until updates closes.
func (h *TerminalHandler) Forward(updates <-chan model.SystemState) {
	for range updates {
		payload, err := h.StatePayload(StateTopic)
		if err != nil {
			log.Error().Err(err).Msg("encode state")
			continue
		}
		h.wsHub.Broadcast <- ws.Message{Key: StateTopic, Payload: payload}
	}
}

// GetState returns the local snapshot and sync indicator
// GET /api/v1/state
func (h *TerminalHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.orders.State())
}

// Stream pushes the state to a local display on every change
// GET /ws
func (h *TerminalHandler) Stream(c *websocket.Conn) {
	sub := ws.Subscription{Key: StateTopic, Conn: c}
	h.wsHub.Register <- sub
	defer func() { h.wsHub.Unregister <- sub }()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// AddTable opens a new table
// POST /api/v1/tables
func (h *TerminalHandler) AddTable(c *fiber.Ctx) error {
	state, err := h.orders.AddTable(c.UserContext())
	if err != nil {
		return terminalError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Table added", "data": state})
}

// AddItems adds a line for a product
// POST /api/v1/tables/:id/items
func (h *TerminalHandler) AddItems(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	var req service.AddItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.orders.AddItems(c.UserContext(), tableID, &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Item added", "data": state})
}

// RemoveItem deletes a line from a table
// DELETE /api/v1/tables/:id/items/:itemId
func (h *TerminalHandler) RemoveItem(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	state, err := h.orders.RemoveItem(c.UserContext(), tableID, c.Params("itemId"))
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item removed", "data": state})
}

// AssignCustomer links or unlinks a CRM customer
// PUT /api/v1/tables/:id/customer
func (h *TerminalHandler) AssignCustomer(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	var req service.AssignCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.orders.AssignCustomer(c.UserContext(), tableID, &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer updated", "data": state})
}

// SetGuests records the guest count
// PUT /api/v1/tables/:id/guests
func (h *TerminalHandler) SetGuests(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	var req service.SetGuestsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.orders.SetGuests(c.UserContext(), tableID, &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Guests updated", "data": state})
}

// SetTableStatus marks an empty table reserved, cleaning or available
// PUT /api/v1/tables/:id/status
func (h *TerminalHandler) SetTableStatus(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	var req service.SetTableStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.orders.SetTableStatus(c.UserContext(), tableID, &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Table status updated", "data": state})
}

// Finalize pays the selected lines
// POST /api/v1/tables/:id/payments
func (h *TerminalHandler) Finalize(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	var req service.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.orders.Finalize(c.UserContext(), tableID, &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Payment recorded", "data": state})
}

// MarkReady flags a line as ready in the kitchen
// PUT /api/v1/tables/:id/items/:itemId/ready
func (h *TerminalHandler) MarkReady(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	state, err := h.orders.MarkReady(c.UserContext(), tableID, c.Params("itemId"))
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item ready", "data": state})
}

// AdvanceItem moves a line along its status flow
// PUT /api/v1/tables/:id/items/:itemId/status
func (h *TerminalHandler) AdvanceItem(c *fiber.Ctx) error {
	tableID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid table ID"})
	}

	var req service.ItemStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.orders.AdvanceItem(c.UserContext(), tableID, c.Params("itemId"), &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item status updated", "data": state})
}

// SaveProduct creates or edits a menu entry
// PUT /api/v1/products/:id
func (h *TerminalHandler) SaveProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.catalog.SaveProduct(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product saved", "data": state})
}

// SaveCustomer creates or edits a CRM record
// PUT /api/v1/customers/:id
func (h *TerminalHandler) SaveCustomer(c *fiber.Ctx) error {
	var req service.CustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.catalog.SaveCustomer(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Customer saved", "data": state})
}

// SaveUser creates or edits a staff member
// PUT /api/v1/users/:id
func (h *TerminalHandler) SaveUser(c *fiber.Ctx) error {
	var req service.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.catalog.SaveUser(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User saved", "data": state})
}

// SavePrinter configures a ticket printer
// PUT /api/v1/printers/:id
func (h *TerminalHandler) SavePrinter(c *fiber.Ctx) error {
	var req service.PrinterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.catalog.SavePrinter(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Printer saved", "data": state})
}

// SaveConnection configures an external integration
// PUT /api/v1/connections/:id
func (h *TerminalHandler) SaveConnection(c *fiber.Ctx) error {
	var req service.ConnectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	state, err := h.catalog.SaveConnection(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return terminalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Connection saved", "data": state})
}

func terminalError(c *fiber.Ctx, err error) error {
	var verr *validator.ErrorResponse
	switch {
	case errors.As(err, &verr),
		errors.Is(err, service.ErrPinRequired),
		errors.Is(err, model.ErrInvalidPin):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotApplied):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, replica.ErrNotLoaded):
		return c.Status(503).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("terminal request failed")
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
