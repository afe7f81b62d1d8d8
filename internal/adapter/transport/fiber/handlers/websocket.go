package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/parsec-backend/internal/domain"
	"github.com/seu-repo/parsec-backend/internal/service/session"
)

// WebSocketHandler serves one command stream per connection, adapted from
// the teacher's websocket hub (internal/adapter/websocket/hub.go) readPump
// loop: instead of broadcasting opaque []byte payloads to every registered
// client, each connection gets its own Session and every frame it sends is
// decoded, dispatched, and answered in place. A blocking events_listen
// simply blocks this connection's single goroutine, exactly as it would
// block one unary command's response over HTTP.
type WebSocketHandler struct {
	Dispatcher *session.Dispatcher
	Subs       *SubscriptionRegistry
	Log        *zap.Logger
}

func NewWebSocketHandler(d *session.Dispatcher, subs *SubscriptionRegistry, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{Dispatcher: d, Subs: subs, Log: log}
}

func (h *WebSocketHandler) Handle(conn *websocket.Conn) {
	org, _ := conn.Locals("org").(domain.OrganizationID)
	device, _ := conn.Locals("device").(domain.DeviceID)
	if org == "" || device == "" {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
		return
	}

	sess := &session.Session{Org: org, Device: device, Subscription: h.Subs.Get(device)}
	defer func() {
		h.Subs.Drop(device)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.writeStatus(conn, session.StatusBadMessage)
			continue
		}

		cmd, err := decodeAuthenticated(org, env)
		if err != nil {
			h.writeStatus(conn, session.StatusBadMessage)
			continue
		}

		// One goroutine per connection processes frames sequentially, so a
		// blocking events_listen here only ever blocks this connection's
		// own next read, same as it would block one unary HTTP response.
		resp := h.Dispatcher.Dispatch(context.Background(), sess, cmd)
		if err := h.write(conn, resp); err != nil {
			return
		}
	}
}

func (h *WebSocketHandler) writeStatus(conn *websocket.Conn, status session.Status) {
	payload, _ := json.Marshal(responseEnvelope{Status: status})
	conn.WriteMessage(websocket.TextMessage, payload)
}

func (h *WebSocketHandler) write(conn *websocket.Conn, resp session.Response) error {
	payload, err := json.Marshal(toResponseEnvelope(resp))
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
