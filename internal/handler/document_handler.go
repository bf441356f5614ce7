package handler

import (
	"errors"

	"go-restaurant-sync/internal/service"
	"go-restaurant-sync/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type DocumentHandler struct {
	service service.DocumentService
	wsHub   *ws.Hub
}

func NewDocumentHandler(s service.DocumentService, hub *ws.Hub) *DocumentHandler {
	return &DocumentHandler{service: s, wsHub: hub}
}

// GetDocument returns the current envelope, exists=false for unknown keys
// GET /api/v1/documents/:key
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	env, err := h.service.Get(c.Params("key"))
	if err != nil {
		return documentError(c, err)
	}
	return c.JSON(env)
}

// PutDocument overwrites the whole document
// PUT /api/v1/documents/:key
func (h *DocumentHandler) PutDocument(c *fiber.Ctx) error {
	env, err := h.service.Put(c.Params("key"), c.Body())
	if err != nil {
		return documentError(c, err)
	}
	return c.JSON(fiber.Map{"key": env.Key, "revision": env.Revision})
}

// ListDocuments returns keys and revisions without bodies
// GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.service.List()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to list documents"})
	}
	return c.JSON(docs)
}

// Subscribe streams the envelope of :key, current value first
// GET /ws/documents/:key
func (h *DocumentHandler) Subscribe(c *websocket.Conn) {
	sub := ws.Subscription{Key: c.Params("key"), Conn: c}
	h.wsHub.Register <- sub
	defer func() { h.wsHub.Unregister <- sub }()

	for {
		// Subscribers only listen; reading detects the close.
		if _, _, err := c.ReadMessage(); err != nil {
			log.Debug().Err(err).Str("key", sub.Key).Msg("ws subscriber left")
			break
		}
	}
}

func documentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidKey), errors.Is(err, service.ErrInvalidDocument):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("document store failure")
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}
