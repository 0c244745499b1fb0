package metrics

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/example/ezcomm-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Module consumes chat lifecycle events and keeps running counters for
// the /metrics endpoint.
type Module struct {
	counters Counters
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module              = (*Module)(nil)
	_ mono.EventConsumerModule = (*Module)(nil)
)

// Counters are cumulative event counts since process start.
type Counters struct {
	Joins          atomic.Uint64
	JoinRejections atomic.Uint64
	Leaves         atomic.Uint64
	Messages       atomic.Uint64
	Edits          atomic.Uint64
	Deletes        atomic.Uint64
}

// NewModule creates a new metrics module.
func NewModule(logger types.Logger) *Module {
	return &Module{logger: logger}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "metrics"
}

// RegisterEventConsumers subscribes to every chat lifecycle event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.JoinRejectedV1, m.handleJoinRejected, m,
	); err != nil {
		return fmt.Errorf("failed to register JoinRejected consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessagePostedV1, m.handleMessagePosted, m,
	); err != nil {
		return fmt.Errorf("failed to register MessagePosted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageEditedV1, m.handleMessageEdited, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageEdited consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageDeletedV1, m.handleMessageDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"UserJoined.v1", "JoinRejected.v1", "UserLeft.v1", "MessagePosted.v1", "MessageEdited.v1", "MessageDeleted.v1"})
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.counters.Joins.Add(1)
	m.logger.Debug("Recorded join", "room", event.RoomName, "user", event.UserName)
	return nil
}

func (m *Module) handleJoinRejected(_ context.Context, event events.JoinRejectedEvent, _ *mono.Msg) error {
	m.counters.JoinRejections.Add(1)
	m.logger.Debug("Recorded join rejection", "room", event.RoomName, "user", event.UserName)
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.counters.Leaves.Add(1)
	m.logger.Debug("Recorded leave", "room", event.RoomName, "user", event.UserName)
	return nil
}

func (m *Module) handleMessagePosted(_ context.Context, _ events.MessagePostedEvent, _ *mono.Msg) error {
	m.counters.Messages.Add(1)
	return nil
}

func (m *Module) handleMessageEdited(_ context.Context, _ events.MessageChangedEvent, _ *mono.Msg) error {
	m.counters.Edits.Add(1)
	return nil
}

func (m *Module) handleMessageDeleted(_ context.Context, _ events.MessageChangedEvent, _ *mono.Msg) error {
	m.counters.Deletes.Add(1)
	return nil
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Metrics module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Metrics module stopped",
		"joins", m.counters.Joins.Load(),
		"messages", m.counters.Messages.Load())
	return nil
}

// Counters returns the live counters.
func (m *Module) Counters() *Counters {
	return &m.counters
}
