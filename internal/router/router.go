package router

import (
	"go-restaurant-sync/internal/handler"
	"go-restaurant-sync/internal/middleware"
	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func newApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: name,
	})

	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	app.Get("/health", handler.Health)
	return app
}

// upgradeOnly rejects plain HTTP on websocket routes.
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return c.SendStatus(fiber.StatusUpgradeRequired)
}

// NewDocumentServer returns the app that hosts the shared documents.
func NewDocumentServer(docH *handler.DocumentHandler) *fiber.App {
	app := newApp("Restaurant Sync Document Server")

	api := app.Group("/api/v1")
	api.Get("/documents", docH.ListDocuments)
	api.Get("/documents/:key", docH.GetDocument)
	api.Put("/documents/:key", docH.PutDocument)

	app.Use("/ws", upgradeOnly)
	app.Get("/ws/documents/:key", websocket.New(docH.Subscribe))

	return app
}

// NewTerminal returns the app a terminal UI talks to.
func NewTerminal(authH *handler.AuthHandler, termH *handler.TerminalHandler, issuer *jwt.Issuer) *fiber.App {
	app := newApp("Restaurant Sync Terminal")

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/auth/login", authH.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(issuer))
	protected.Get("/auth/me", authH.Me)
	protected.Get("/state", termH.GetState)

	// POS
	pos := middleware.RequireSection(model.SectionPOS)
	protected.Post("/tables", pos, termH.AddTable)
	protected.Post("/tables/:id/items", pos, termH.AddItems)
	protected.Delete("/tables/:id/items/:itemId", pos, termH.RemoveItem)
	protected.Put("/tables/:id/customer", pos, termH.AssignCustomer)
	protected.Put("/tables/:id/guests", pos, termH.SetGuests)
	protected.Put("/tables/:id/status", pos, termH.SetTableStatus)
	protected.Post("/tables/:id/payments", pos, termH.Finalize)

	// Kitchen display
	kds := middleware.RequireSection(model.SectionKDS)
	protected.Put("/tables/:id/items/:itemId/ready", kds, termH.MarkReady)
	protected.Put("/tables/:id/items/:itemId/status", kds, termH.AdvanceItem)

	protected.Put("/products/:id", middleware.RequireSection(model.SectionInventory), termH.SaveProduct)
	protected.Put("/customers/:id", middleware.RequireSection(model.SectionCRM), termH.SaveCustomer)

	settings := middleware.RequireSection(model.SectionSettings)
	protected.Put("/users/:id", settings, termH.SaveUser)
	protected.Put("/printers/:id", settings, termH.SavePrinter)
	protected.Put("/connections/:id", settings, termH.SaveConnection)

	app.Use("/ws", upgradeOnly)
	app.Get("/ws", websocket.New(termH.Stream))

	return app
}
