package chat

import (
	"context"
	"time"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/example/ezcomm-chat/events"
)

// Gateway delivers events to sessions and tracks room membership on the
// transport side. Delivery is best-effort.
type Gateway interface {
	// JoinRoom adds the session to the room's broadcast group.
	JoinRoom(sessionID, roomName string, member domain.RosterEntry) error
	// LeaveRoom removes the session from its broadcast group, if any.
	LeaveRoom(sessionID string)
	// RoomMembers lists the identities of sessions currently in the room.
	RoomMembers(ctx context.Context, roomName string) ([]domain.RosterEntry, error)
	// BroadcastToRoom sends an event to every session in the room.
	BroadcastToRoom(roomName, event string, payload any) error
	// SendToSession sends an event to one session.
	SendToSession(sessionID, event string, payload any) error
}

// Notifier receives lifecycle notifications after state changes are applied.
type Notifier interface {
	UserJoined(ctx context.Context, event events.UserJoinedEvent)
	JoinRejected(ctx context.Context, event events.JoinRejectedEvent)
	UserLeft(ctx context.Context, event events.UserLeftEvent)
	MessagePosted(ctx context.Context, event events.MessagePostedEvent)
	MessageEdited(ctx context.Context, event events.MessageChangedEvent)
	MessageDeleted(ctx context.Context, event events.MessageChangedEvent)
}

type nopNotifier struct{}

func (nopNotifier) UserJoined(context.Context, events.UserJoinedEvent)         {}
func (nopNotifier) JoinRejected(context.Context, events.JoinRejectedEvent)     {}
func (nopNotifier) UserLeft(context.Context, events.UserLeftEvent)             {}
func (nopNotifier) MessagePosted(context.Context, events.MessagePostedEvent)   {}
func (nopNotifier) MessageEdited(context.Context, events.MessageChangedEvent)  {}
func (nopNotifier) MessageDeleted(context.Context, events.MessageChangedEvent) {}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the lifecycle notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.store.now = now
	}
}

// WithPalette overrides the color palette.
func WithPalette(palette []domain.Color) Option {
	return func(s *Service) {
		s.colors = NewColorAllocator(palette)
	}
}
