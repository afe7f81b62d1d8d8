package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/service/handshake"
)

// HandshakeHandler completes the certificate-validated handshake of
// SPEC_FULL.md §3.9 and returns the short-lived session token the client
// echoes as a Bearer credential on every subsequent command/WebSocket call.
// Organization is taken from the :org_id path parameter since one backend
// instance serves many organizations.
type HandshakeHandler struct {
	Service *handshake.Service
	Log     *zap.Logger
}

func NewHandshakeHandler(svc *handshake.Service, log *zap.Logger) *HandshakeHandler {
	return &HandshakeHandler{Service: svc, Log: log}
}

type handshakeRequest struct {
	DeviceID  domain.DeviceID `json:"device_id"`
	Timestamp time.Time       `json:"timestamp"`
	Signed    []byte          `json:"signed"`
}

type handshakeResponse struct {
	Token string `json:"token"`
}

func (h *HandshakeHandler) Handle(c *fiber.Ctx) error {
	org := domain.OrganizationID(c.Params("org_id"))
	if org == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing organization id"})
	}

	var req handshakeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid handshake request"})
	}

	token, err := h.Service.Authenticate(c.Context(), org, req.DeviceID, req.Timestamp, req.Signed)
	if err != nil {
		h.Log.Debug("handshake rejected", zap.String("device", string(req.DeviceID)), zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "handshake failed"})
	}

	return c.JSON(handshakeResponse{Token: token})
}
