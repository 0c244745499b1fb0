package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/go-monolith/mono/pkg/types"
)

// Service owns the chat state shared by all sessions: the user registry,
// the color allocator and the room store, plus the gateway used to reach
// connected clients.
type Service struct {
	registry *UserRegistry
	colors   *ColorAllocator
	store    *RoomStore
	gateway  Gateway
	notifier Notifier
	logger   types.Logger
	now      func() time.Time

	roomLocks map[string]*sync.Mutex
	locksMu   sync.Mutex
}

// Stats is a point-in-time summary used by health and metrics endpoints.
type Stats struct {
	Rooms    int `json:"rooms"`
	Messages int `json:"messages"`
	Users    int `json:"users"`
}

// RoomSummary describes one room for listings.
type RoomSummary struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
	Typing   int    `json:"typing"`
}

// NewService creates a Service that delivers through gateway.
func NewService(gateway Gateway, logger types.Logger, opts ...Option) *Service {
	s := &Service{
		registry:  NewUserRegistry(),
		colors:    NewColorAllocator(nil),
		store:     NewRoomStore(),
		gateway:   gateway,
		notifier:  nopNotifier{},
		logger:    logger,
		now:       time.Now,
		roomLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession creates an unjoined session for a newly connected client.
func (s *Service) NewSession(id string) *Session {
	return &Session{
		id:    id,
		svc:   s,
		state: StateUnjoined,
	}
}

// Registry returns the user registry.
func (s *Service) Registry() *UserRegistry {
	return s.registry
}

// Store returns the room store.
func (s *Service) Store() *RoomStore {
	return s.store
}

// Colors returns the color allocator.
func (s *Service) Colors() *ColorAllocator {
	return s.colors
}

// Stats summarizes rooms, messages and registered users.
func (s *Service) Stats() Stats {
	st := s.store.Stats()
	return Stats{
		Rooms:    st.Rooms,
		Messages: st.Messages,
		Users:    s.registry.Count(),
	}
}

// ListRooms returns a summary of every room.
func (s *Service) ListRooms() []RoomSummary {
	names := s.store.RoomNames()
	rooms := make([]RoomSummary, 0, len(names))
	for _, name := range names {
		rooms = append(rooms, RoomSummary{
			Name:     name,
			Messages: len(s.store.GetLog(name)),
			Typing:   len(s.store.GetTypingUsers(name)),
		})
	}
	return rooms
}

// RoomLog returns a snapshot of a room's log.
func (s *Service) RoomLog(name string) []domain.Message {
	return s.store.GetLog(name)
}

// lockRoom serializes all mutations and broadcasts for one room.
func (s *Service) lockRoom(name string) func() {
	s.locksMu.Lock()
	mu, ok := s.roomLocks[name]
	if !ok {
		mu = &sync.Mutex{}
		s.roomLocks[name] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

func (s *Service) timestamp() int64 {
	return domain.Millis(s.now())
}

// broadcastRoster sends the room's member list. Failures are logged and dropped.
func (s *Service) broadcastRoster(ctx context.Context, roomName string) {
	members, err := s.gateway.RoomMembers(ctx, roomName)
	if err != nil {
		s.logger.Warn("Failed to enumerate room members",
			"room", roomName,
			"error", fmt.Errorf("%w: %w", domain.ErrBroadcast, err))
		return
	}
	if members == nil {
		members = []domain.RosterEntry{}
	}
	s.broadcast(roomName, domain.EventRoomUsers, members)
}

// broadcastLog sends the room's full log.
func (s *Service) broadcastLog(roomName string) {
	s.broadcast(roomName, domain.EventChatUpdate, s.store.GetLog(roomName))
}

// broadcastTyping sends the room's current typing users.
func (s *Service) broadcastTyping(roomName string) {
	s.broadcast(roomName, domain.EventTyping, s.store.GetTypingUsers(roomName))
}

func (s *Service) broadcast(roomName, event string, payload any) {
	if err := s.gateway.BroadcastToRoom(roomName, event, payload); err != nil {
		s.logger.Warn("Room broadcast failed",
			"room", roomName,
			"event", event,
			"error", fmt.Errorf("%w: %w", domain.ErrBroadcast, err))
	}
}

func (s *Service) send(sessionID, event string, payload any) {
	if err := s.gateway.SendToSession(sessionID, event, payload); err != nil {
		s.logger.Warn("Session send failed",
			"session", sessionID,
			"event", event,
			"error", err)
	}
}
