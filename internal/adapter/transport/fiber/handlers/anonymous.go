package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/ports"
	"github.com/seu-repo/parsec-backend/internal/service/session"
)

// AnonymousHandler serves the six pre-handshake commands of spec.md §6
// (ping, organization_bootstrap, the two invitation-creator lookups, and
// the two claim commands). A backend instance serves many organizations,
// so each request builds its own AnonymousDispatcher scoped to the
// :org_id path parameter rather than holding one fixed Org.
type AnonymousHandler struct {
	Bootstrap  ports.BootstrapService
	Identity   ports.IdentityService
	TrustChain ports.TrustChainVerifier
	Log        *zap.Logger
}

func NewAnonymousHandler(bootstrap ports.BootstrapService, identity ports.IdentityService, trustChain ports.TrustChainVerifier, log *zap.Logger) *AnonymousHandler {
	return &AnonymousHandler{Bootstrap: bootstrap, Identity: identity, TrustChain: trustChain, Log: log}
}

func (h *AnonymousHandler) Handle(c *fiber.Ctx) error {
	org := domain.OrganizationID(c.Params("org_id"))
	if org == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing organization id"})
	}

	var env envelope
	if err := c.BodyParser(&env); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(responseEnvelope{Status: session.StatusBadMessage})
	}

	cmd, err := decodeAnonymous(org, env)
	if err != nil {
		h.Log.Debug("bad_message", zap.String("cmd", env.Cmd), zap.Error(err))
		return c.Status(fiber.StatusOK).JSON(responseEnvelope{Status: session.StatusBadMessage})
	}

	d := &session.AnonymousDispatcher{Bootstrap: h.Bootstrap, Identity: h.Identity, TrustChain: h.TrustChain, Org: org, Log: h.Log}
	resp := d.Dispatch(c.Context(), cmd)
	return c.Status(fiber.StatusOK).JSON(toResponseEnvelope(resp))
}
