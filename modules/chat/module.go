package chat

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/example/ezcomm-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module exposes the chat Service to the mono application. It publishes
// lifecycle events on the EventBus and serves read-only request-reply
// services for the REST API.
type Module struct {
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a chat module delivering through gateway.
func NewModule(gateway Gateway, logger types.Logger, opts ...Option) *Module {
	m := &Module{logger: logger}
	opts = append([]Option{WithNotifier(&busNotifier{module: m})}, opts...)
	m.service = NewService(gateway, logger, opts...)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// Service returns the chat service used by the websocket transport.
func (m *Module) Service() *Service {
	return m.service
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserJoinedV1.ToBase(),
		events.JoinRejectedV1.ToBase(),
		events.UserLeftV1.ToBase(),
		events.MessagePostedV1.ToBase(),
		events.MessageEditedV1.ToBase(),
		events.MessageDeletedV1.ToBase(),
	}
}

// RegisterServices registers the read-only room services.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceListRooms,
		json.Unmarshal,
		json.Marshal,
		m.handleListRooms,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListRooms, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceRoomLog,
		json.Unmarshal,
		json.Marshal,
		m.handleRoomLog,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRoomLog, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceStats,
		json.Unmarshal,
		json.Marshal,
		m.handleStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceStats, err)
	}

	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Chat module started", "palette_size", len(m.service.colors.palette))
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	st := m.service.Stats()
	m.logger.Info("Chat module stopped", "rooms", st.Rooms, "messages", st.Messages, "users", st.Users)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	st := m.service.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms":    st.Rooms,
			"messages": st.Messages,
			"users":    st.Users,
		},
	}
}

func (m *Module) handleListRooms(_ context.Context, _ ListRoomsRequest, _ *mono.Msg) (ListRoomsResponse, error) {
	return ListRoomsResponse{Rooms: m.service.ListRooms()}, nil
}

func (m *Module) handleRoomLog(_ context.Context, req RoomLogRequest, _ *mono.Msg) (RoomLogResponse, error) {
	if req.RoomName == "" {
		return RoomLogResponse{}, domain.ErrInvalidName
	}
	return RoomLogResponse{
		RoomName: req.RoomName,
		Messages: m.service.RoomLog(req.RoomName),
		Typing:   m.service.store.GetTypingUsers(req.RoomName),
	}, nil
}

func (m *Module) handleStats(_ context.Context, _ StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	return StatsResponse{Stats: m.service.Stats()}, nil
}

// busNotifier publishes lifecycle notifications on the module's EventBus.
// Publishing is best-effort and skipped until the bus is set.
type busNotifier struct {
	module *Module
}

func (n *busNotifier) published(name string, err error) {
	if err != nil {
		n.module.logger.Warn("Failed to publish event", "event", name, "error", err)
	}
}

func (n *busNotifier) UserJoined(_ context.Context, e events.UserJoinedEvent) {
	if bus := n.module.eventBus; bus != nil {
		n.published("UserJoined", events.UserJoinedV1.Publish(bus, e, nil))
	}
}

func (n *busNotifier) JoinRejected(_ context.Context, e events.JoinRejectedEvent) {
	if bus := n.module.eventBus; bus != nil {
		n.published("JoinRejected", events.JoinRejectedV1.Publish(bus, e, nil))
	}
}

func (n *busNotifier) UserLeft(_ context.Context, e events.UserLeftEvent) {
	if bus := n.module.eventBus; bus != nil {
		n.published("UserLeft", events.UserLeftV1.Publish(bus, e, nil))
	}
}

func (n *busNotifier) MessagePosted(_ context.Context, e events.MessagePostedEvent) {
	if bus := n.module.eventBus; bus != nil {
		n.published("MessagePosted", events.MessagePostedV1.Publish(bus, e, nil))
	}
}

func (n *busNotifier) MessageEdited(_ context.Context, e events.MessageChangedEvent) {
	if bus := n.module.eventBus; bus != nil {
		n.published("MessageEdited", events.MessageEditedV1.Publish(bus, e, nil))
	}
}

func (n *busNotifier) MessageDeleted(_ context.Context, e events.MessageChangedEvent) {
	if bus := n.module.eventBus; bus != nil {
		n.published("MessageDeleted", events.MessageDeletedV1.Publish(bus, e, nil))
	}
}
