package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/service/session"
)

// CommandHandler serves the authenticated command endpoint of spec.md §6:
// a single POST carrying a {cmd, data} envelope, dispatched through one
// Dispatcher shared by every connection.
type CommandHandler struct {
	Dispatcher *session.Dispatcher
	Subs       *SubscriptionRegistry
	Log        *zap.Logger
}

func NewCommandHandler(d *session.Dispatcher, subs *SubscriptionRegistry, log *zap.Logger) *CommandHandler {
	return &CommandHandler{Dispatcher: d, Subs: subs, Log: log}
}

func (h *CommandHandler) Handle(c *fiber.Ctx) error {
	org, ok := c.Locals("org").(domain.OrganizationID)
	if !ok || org == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing device session"})
	}
	device, ok := c.Locals("device").(domain.DeviceID)
	if !ok || device == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing device session"})
	}

	var env envelope
	if err := c.BodyParser(&env); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(responseEnvelope{Status: session.StatusBadMessage})
	}

	cmd, err := decodeAuthenticated(org, env)
	if err != nil {
		h.Log.Debug("bad_message", zap.String("cmd", env.Cmd), zap.Error(err))
		return c.Status(fiber.StatusOK).JSON(responseEnvelope{Status: session.StatusBadMessage})
	}

	sess := &session.Session{Org: org, Device: device, Subscription: h.Subs.Get(device)}
	resp := h.Dispatcher.Dispatch(c.Context(), sess, cmd)
	return c.Status(fiber.StatusOK).JSON(toResponseEnvelope(resp))
}
