package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/example/ezcomm-chat/events"
)

// State is the lifecycle state of a Session.
type State int

// Session states. Transitions only move forward.
const (
	StateUnjoined State = iota
	StateJoined
	StateDisconnected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnjoined:
		return "unjoined"
	case StateJoined:
		return "joined"
	case StateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the per-connection coordinator. It binds one identity on a
// successful join and drives the registry, the store and the gateway for
// every later event from that connection.
type Session struct {
	id       string
	svc      *Service
	state    State
	identity *domain.Identity
	mu       sync.Mutex
	once     sync.Once
}

// ID returns the session ID used by the gateway.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns a copy of the bound identity, or nil before a join.
func (s *Session) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// joined returns the identity if the session is joined.
func (s *Session) joined() (domain.Identity, error) {
	switch s.state {
	case StateJoined:
		return *s.identity, nil
	case StateDisconnected:
		return domain.Identity{}, domain.ErrSessionClosed
	default:
		return domain.Identity{}, domain.ErrNotJoined
	}
}

// Join binds the session to a room under a unique user name. On a name
// conflict the client receives a join-response carrying the error and the
// session stays unjoined.
func (s *Session) Join(ctx context.Context, req domain.JoinRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateJoined:
		return domain.ErrAlreadyJoined
	case StateDisconnected:
		return domain.ErrSessionClosed
	}

	resp := domain.JoinResponse{RoomName: req.RoomName, UserName: req.UserName}
	// Intentional: blank names are refused rather than registered as a nameless user.
	if strings.TrimSpace(req.RoomName) == "" || strings.TrimSpace(req.UserName) == "" {
		resp.Error = "A room name and a user name are required"
		s.svc.send(s.id, domain.EventJoinResponse, resp)
		return domain.ErrInvalidName
	}

	svc := s.svc
	unlock := svc.lockRoom(req.RoomName)
	defer unlock()

	if err := svc.registry.Register(req.UserName); err != nil {
		resp.Error = domain.NameTakenText(req.UserName)
		svc.send(s.id, domain.EventJoinResponse, resp)
		svc.notifier.JoinRejected(ctx, events.JoinRejectedEvent{
			SessionID: s.id,
			RoomName:  req.RoomName,
			UserName:  req.UserName,
			Timestamp: svc.now(),
		})
		return err
	}

	id := &domain.Identity{
		Room:  req.RoomName,
		User:  req.UserName,
		Color: svc.colors.Allocate(),
	}
	s.identity = id
	s.state = StateJoined

	if err := svc.gateway.JoinRoom(s.id, id.Room, id.Roster()); err != nil {
		svc.logger.Warn("Failed to add session to room group",
			"session", s.id,
			"room", id.Room,
			"error", err)
	}

	svc.store.AppendMessage(id.Room, domain.Message{
		Text:      domain.JoinedText(id.User),
		Timestamp: svc.timestamp(),
	})
	svc.broadcastRoster(ctx, id.Room)
	svc.broadcastLog(id.Room)

	resp.Color = id.Color
	svc.send(s.id, domain.EventJoinResponse, resp)

	svc.logger.Info("User joined room", "session", s.id, "room", id.Room, "user", id.User, "color", string(id.Color))
	svc.notifier.UserJoined(ctx, events.UserJoinedEvent{
		SessionID: s.id,
		RoomName:  id.Room,
		UserName:  id.User,
		Color:     string(id.Color),
		Timestamp: svc.now(),
	})
	return nil
}

// Message appends a user message to the bound room and broadcasts the log.
func (s *Session) Message(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.joined()
	if err != nil {
		return err
	}

	svc := s.svc
	unlock := svc.lockRoom(id.Room)
	defer unlock()

	svc.store.AppendMessage(id.Room, domain.Message{
		Sender:    id.User,
		Text:      text,
		Color:     id.Color,
		Timestamp: svc.timestamp(),
	})
	svc.broadcastLog(id.Room)

	svc.notifier.MessagePosted(ctx, events.MessagePostedEvent{
		RoomName:  id.Room,
		UserName:  id.User,
		Length:    len(text),
		Timestamp: svc.now(),
	})
	return nil
}

// EditLast replaces the text of the user's newest non-deleted message. The
// log is broadcast only when a message was changed.
func (s *Session) EditLast(ctx context.Context, newText string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.joined()
	if err != nil {
		return false, err
	}

	svc := s.svc
	unlock := svc.lockRoom(id.Room)
	defer unlock()

	if !svc.store.EditLastMessage(id.Room, id.User, newText) {
		return false, nil
	}
	svc.broadcastLog(id.Room)

	svc.notifier.MessageEdited(ctx, events.MessageChangedEvent{
		RoomName:  id.Room,
		UserName:  id.User,
		Timestamp: svc.now(),
	})
	return true, nil
}

// DeleteLast soft-deletes the user's newest non-deleted message. The log is
// broadcast only when a message was changed.
func (s *Session) DeleteLast(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.joined()
	if err != nil {
		return false, err
	}

	svc := s.svc
	unlock := svc.lockRoom(id.Room)
	defer unlock()

	if !svc.store.DeleteLastMessage(id.Room, id.User) {
		return false, nil
	}
	svc.broadcastLog(id.Room)

	svc.notifier.MessageDeleted(ctx, events.MessageChangedEvent{
		RoomName:  id.Room,
		UserName:  id.User,
		Timestamp: svc.now(),
	})
	return true, nil
}

// SetTyping updates the user's typing status and broadcasts the typing set.
// The broadcast happens even when the status did not change.
func (s *Session) SetTyping(_ context.Context, isTyping bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.joined()
	if err != nil {
		return err
	}

	svc := s.svc
	unlock := svc.lockRoom(id.Room)
	defer unlock()

	svc.store.SetTyping(id.Room, id.User, isTyping)
	svc.broadcastTyping(id.Room)
	return nil
}

// Disconnect releases everything the session holds and announces the
// departure. It runs at most once; an unjoined session only changes state.
func (s *Session) Disconnect(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		prev := s.state
		s.state = StateDisconnected
		if prev != StateJoined || s.identity == nil {
			s.svc.gateway.LeaveRoom(s.id)
			return
		}
		s.leave(ctx, *s.identity)
	})
}

func (s *Session) leave(ctx context.Context, id domain.Identity) {
	svc := s.svc
	svc.gateway.LeaveRoom(s.id)

	if id.Room == "" {
		if id.User != "" {
			svc.registry.Unregister(id.User)
		}
		return
	}

	unlock := svc.lockRoom(id.Room)
	defer unlock()

	if id.User != "" {
		svc.store.SetTyping(id.Room, id.User, false)
		svc.broadcastTyping(id.Room)
		svc.registry.Unregister(id.User)
	}
	if id.Color != "" {
		svc.colors.Release(id.Color)
	}

	svc.store.AppendMessage(id.Room, domain.Message{
		Text:      domain.LeftText(id.User),
		Color:     id.Color,
		Timestamp: svc.timestamp(),
	})
	svc.broadcastRoster(ctx, id.Room)
	svc.broadcastLog(id.Room)

	svc.logger.Info("User left room", "session", s.id, "room", id.Room, "user", id.User)
	svc.notifier.UserLeft(ctx, events.UserLeftEvent{
		SessionID: s.id,
		RoomName:  id.Room,
		UserName:  id.User,
		Timestamp: svc.now(),
	})
}
