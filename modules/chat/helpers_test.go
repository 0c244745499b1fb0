package chat

import (
	"context"
	"sync"
	"time"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newMockLogger() types.Logger {
	return &mockLogger{}
}

// delivery is one event recorded by fakeGateway.
type delivery struct {
	Room    string
	Session string
	Event   string
	Payload any
}

// fakeGateway records every delivery and keeps room membership in join order.
type fakeGateway struct {
	mu         sync.Mutex
	order      []string
	rooms      map[string]string
	entries    map[string]domain.RosterEntry
	broadcasts []delivery
	direct     []delivery
	rosterErr  error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		rooms:   make(map[string]string),
		entries: make(map[string]domain.RosterEntry),
	}
}

func (g *fakeGateway) JoinRoom(sessionID, roomName string, member domain.RosterEntry) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.rooms[sessionID]; !ok {
		g.order = append(g.order, sessionID)
	}
	g.rooms[sessionID] = roomName
	g.entries[sessionID] = member
	return nil
}

func (g *fakeGateway) LeaveRoom(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, sessionID)
	delete(g.entries, sessionID)
	for i, id := range g.order {
		if id == sessionID {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *fakeGateway) RoomMembers(_ context.Context, roomName string) ([]domain.RosterEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rosterErr != nil {
		return nil, g.rosterErr
	}
	members := []domain.RosterEntry{}
	for _, id := range g.order {
		if g.rooms[id] == roomName {
			members = append(members, g.entries[id])
		}
	}
	return members, nil
}

func (g *fakeGateway) BroadcastToRoom(roomName, event string, payload any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcasts = append(g.broadcasts, delivery{Room: roomName, Event: event, Payload: payload})
	return nil
}

func (g *fakeGateway) SendToSession(sessionID, event string, payload any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.direct = append(g.direct, delivery{Session: sessionID, Event: event, Payload: payload})
	return nil
}

// reset forgets recorded deliveries but keeps membership.
func (g *fakeGateway) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcasts = nil
	g.direct = nil
}

func (g *fakeGateway) broadcastEvents() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := make([]string, len(g.broadcasts))
	for i, d := range g.broadcasts {
		names[i] = d.Event
	}
	return names
}

func (g *fakeGateway) lastBroadcast(event string) (delivery, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.broadcasts) - 1; i >= 0; i-- {
		if g.broadcasts[i].Event == event {
			return g.broadcasts[i], true
		}
	}
	return delivery{}, false
}

func (g *fakeGateway) lastDirect(sessionID string) (delivery, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.direct) - 1; i >= 0; i-- {
		if g.direct[i].Session == sessionID {
			return g.direct[i], true
		}
	}
	return delivery{}, false
}

// stepClock returns a clock that advances by one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}
