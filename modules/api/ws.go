package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/example/ezcomm-chat/modules/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const maxFrameSize = 64 * 1024

// errBadPayload marks inbound frames whose data does not match the event.
var errBadPayload = errors.New("invalid payload")

// handleWebSocket runs one connection: a hub client for outbound frames and
// a chat session driven by inbound frames. Closing the socket disconnects
// the session.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	clientID := uuid.New().String()
	c.SetReadLimit(maxFrameSize)

	client, err := m.hub.Register(clientID, c)
	if err != nil {
		m.logger.Warn("Rejected WebSocket client", "client", clientID, "error", err)
		return
	}
	session := m.chatService.NewSession(clientID)

	defer func() {
		session.Disconnect(context.Background())
		m.hub.Unregister(client)
		<-client.Done()
		m.logger.Info("WebSocket client disconnected", "client", clientID)
	}()

	m.logger.Info("WebSocket client connected", "client", clientID, "remote", c.RemoteAddr().String())

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("WebSocket read error", "client", clientID, "error", err)
			}
			return
		}

		var env domain.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			m.sendError(clientID, "Invalid message format")
			continue
		}

		if err := m.dispatch(context.Background(), session, env); err != nil {
			m.handleDispatchError(clientID, env.Event, err)
		}
	}
}

// dispatch routes one inbound frame to the session.
func (m *APIModule) dispatch(ctx context.Context, session *chat.Session, env domain.Envelope) error {
	switch env.Event {
	case domain.EventJoin:
		var req domain.JoinRequest
		if err := decode(env.Data, &req); err != nil {
			return err
		}
		return session.Join(ctx, req)

	case domain.EventMessage:
		var text string
		if err := decode(env.Data, &text); err != nil {
			return err
		}
		return session.Message(ctx, text)

	case domain.EventEdit:
		var req domain.EditRequest
		if err := decode(env.Data, &req); err != nil {
			return err
		}
		_, err := session.EditLast(ctx, req.NewText)
		return err

	case domain.EventDelete:
		_, err := session.DeleteLast(ctx)
		return err

	case domain.EventTyping:
		var req domain.TypingRequest
		if err := decode(env.Data, &req); err != nil {
			return err
		}
		return session.SetTyping(ctx, req.IsTyping)

	default:
		return fmt.Errorf("unknown event %q: %w", env.Event, errBadPayload)
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("missing data: %w", errBadPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

// handleDispatchError reports malformed frames to the client. Session state
// errors are expected protocol noise and only logged.
func (m *APIModule) handleDispatchError(clientID, event string, err error) {
	switch {
	case errors.Is(err, errBadPayload):
		m.sendError(clientID, fmt.Sprintf("Invalid %q event", event))
	case errors.Is(err, domain.ErrNameConflict), errors.Is(err, domain.ErrInvalidName):
		// join-response already carries the reason
	default:
		m.logger.Debug("Ignored event", "client", clientID, "event", event, "error", err)
	}
}

func (m *APIModule) sendError(clientID, message string) {
	if err := m.hub.SendToSession(clientID, domain.EventError, domain.ErrorPayload{Message: message}); err != nil {
		m.logger.Warn("Failed to send error", "client", clientID, "error", err)
	}
}
