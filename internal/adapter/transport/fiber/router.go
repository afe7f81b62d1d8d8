// Package fiber assembles the HTTP/WebSocket transport of SPEC_FULL.md
// §3.9 on top of the session dispatcher, grounded on the teacher's own
// fiber wiring in cmd/server/main.go and internal/adapter/http/fiber.
package fiber

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/adapter/transport/fiber/handlers"
	"github.com/seu-repo/parsec-backend/internal/adapter/transport/fiber/middleware"
	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/handshake"
	"github.com/seu-repo/parsec-backend/internal/service/session"
	"github.com/seu-repo/parsec-backend/pkg/config"
)

// Config bundles everything the router needs; Driver's event bus backs
// every device's SubscriptionRegistry entry regardless of which storage
// driver (memory or postgres) produced it (spec.md §9: "single internal
// publish API that both drivers satisfy").
type Config struct {
	AppName    string
	CORS       config.CORSConfig
	Dispatcher *session.Dispatcher
	Bootstrap  ports.BootstrapService
	Identity   ports.IdentityService
	TrustChain ports.TrustChainVerifier
	Handshake  *handshake.Service
	EventBus   ports.EventBus
	Log        *zap.Logger
}

// NewRouter builds the fiber.App wiring every endpoint of spec.md §6.
func NewRouter(cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ServerHeader:          cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(cfg.Log),
	})

	app.Use(recover.New())
	app.Use(middleware.NewCORS(cfg.CORS))

	app.Get("/health/live", handlers.Health)

	subs := handlers.NewSubscriptionRegistry(cfg.EventBus)
	cmdHandler := handlers.NewCommandHandler(cfg.Dispatcher, subs, cfg.Log)
	anonHandler := handlers.NewAnonymousHandler(cfg.Bootstrap, cfg.Identity, cfg.TrustChain, cfg.Log)
	handshakeHandler := handlers.NewHandshakeHandler(cfg.Handshake, cfg.Log)
	wsHandler := handlers.NewWebSocketHandler(cfg.Dispatcher, subs, cfg.Log)

	v2 := app.Group("/api/v2")
	v2.Post("/:org_id/anonymous", anonHandler.Handle)
	v2.Post("/:org_id/handshake", handshakeHandler.Handle)

	authed := v2.Group("", middleware.DeviceAuth(cfg.Handshake))
	authed.Post("/cmd", cmdHandler.Handle)

	authed.Use("/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	authed.Get("/events", websocket.New(wsHandler.Handle))

	return app
}
