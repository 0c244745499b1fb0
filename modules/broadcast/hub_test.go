package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records written frames.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	err    error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for _, f := range c.frames {
		var env domain.Envelope
		if err := json.Unmarshal(f, &env); err == nil {
			names = append(names, env.Event)
		}
	}
	return names
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func register(t *testing.T, h *Hub, id string) (*Client, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	client, err := h.Register(id, conn)
	require.NoError(t, err)
	return client, conn
}

func TestHub_BroadcastReachesRoomOnly(t *testing.T) {
	h := NewHub()
	_, a := register(t, h, "a")
	_, b := register(t, h, "b")
	_, c := register(t, h, "c")

	require.NoError(t, h.JoinRoom("a", "R", domain.RosterEntry{Name: "alice"}))
	require.NoError(t, h.JoinRoom("b", "R", domain.RosterEntry{Name: "bob"}))
	require.NoError(t, h.JoinRoom("c", "Other", domain.RosterEntry{Name: "carol"}))

	require.NoError(t, h.BroadcastToRoom("R", domain.EventChatUpdate, []domain.Message{}))

	assert.Eventually(t, func() bool { return len(a.events()) == 1 && len(b.events()) == 1 },
		time.Second, 10*time.Millisecond)
	assert.Empty(t, c.events())
	assert.Equal(t, []string{domain.EventChatUpdate}, a.events())
}

func TestHub_PreservesOrderPerClient(t *testing.T) {
	h := NewHub()
	_, a := register(t, h, "a")
	require.NoError(t, h.JoinRoom("a", "R", domain.RosterEntry{Name: "alice"}))

	require.NoError(t, h.BroadcastToRoom("R", domain.EventRoomUsers, []domain.RosterEntry{}))
	require.NoError(t, h.BroadcastToRoom("R", domain.EventChatUpdate, []domain.Message{}))
	require.NoError(t, h.SendToSession("a", domain.EventJoinResponse, domain.JoinResponse{}))

	want := []string{domain.EventRoomUsers, domain.EventChatUpdate, domain.EventJoinResponse}
	assert.Eventually(t, func() bool { return len(a.events()) == len(want) }, time.Second, 10*time.Millisecond)
	assert.Equal(t, want, a.events())
}

func TestHub_RoomMembersInJoinOrder(t *testing.T) {
	h := NewHub()
	for _, id := range []string{"1", "2", "3"} {
		register(t, h, id)
	}
	require.NoError(t, h.JoinRoom("3", "R", domain.RosterEntry{Name: "carol", Color: "#3"}))
	require.NoError(t, h.JoinRoom("1", "R", domain.RosterEntry{Name: "alice", Color: "#1"}))
	require.NoError(t, h.JoinRoom("2", "R", domain.RosterEntry{Name: "bob", Color: "#2"}))

	members, err := h.RoomMembers(context.Background(), "R")
	require.NoError(t, err)
	assert.Equal(t, []domain.RosterEntry{
		{Name: "alice", Color: "#1"},
		{Name: "bob", Color: "#2"},
		{Name: "carol", Color: "#3"},
	}, members)

	h.LeaveRoom("2")
	members, err = h.RoomMembers(context.Background(), "R")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, 2, h.RoomClientCount("R"))

	empty, err := h.RoomMembers(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestHub_UnregisterRemovesMembership(t *testing.T) {
	h := NewHub()
	client, _ := register(t, h, "a")
	require.NoError(t, h.JoinRoom("a", "R", domain.RosterEntry{Name: "alice"}))

	h.Unregister(client)
	h.Unregister(client)

	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("write pump did not stop after Unregister")
	}

	assert.Equal(t, 0, h.ClientCount())
	assert.Equal(t, 0, h.RoomClientCount("R"))
	err := h.SendToSession("a", domain.EventTyping, []string{})
	assert.True(t, errors.Is(err, ErrUnknownClient))
}

func TestHub_JoinUnknownClient(t *testing.T) {
	h := NewHub()
	err := h.JoinRoom("ghost", "R", domain.RosterEntry{Name: "x"})
	assert.ErrorIs(t, err, ErrUnknownClient)
}

func TestHub_RoomMembersCancelledContext(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.RoomMembers(ctx, "R")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHub_RunClosesClientsOnShutdown(t *testing.T) {
	h := NewHub()
	client, conn := register(t, h, "a")
	require.NoError(t, h.JoinRoom("a", "R", domain.RosterEntry{Name: "alice"}))

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()
	h.Wait()

	assert.True(t, conn.isClosed())
	<-client.Done()

	_, err := h.RoomMembers(context.Background(), "R")
	assert.ErrorIs(t, err, domain.ErrHubClosed)
	assert.ErrorIs(t, h.BroadcastToRoom("R", domain.EventTyping, nil), domain.ErrHubClosed)

	_, err = h.Register("b", &fakeConn{})
	assert.ErrorIs(t, err, domain.ErrHubClosed)

	h.Unregister(client)
}

func TestHub_WriteErrorDoesNotBlock(t *testing.T) {
	h := NewHub()
	conn := &fakeConn{err: errors.New("broken pipe")}
	client, err := h.Register("a", conn)
	require.NoError(t, err)

	for i := 0; i < defaultSendBuffer*2; i++ {
		require.NoError(t, h.SendToSession("a", domain.EventTyping, []string{}))
	}

	h.Unregister(client)
	select {
	case <-client.Done():
	case <-time.After(time.Second):
		t.Fatal("write pump blocked on failing connection")
	}
}

func TestBroadcastModule_Lifecycle(t *testing.T) {
	m := NewModule()
	ctx := context.Background()

	if name := m.Name(); name != "broadcast" {
		t.Errorf("Name() = %q, want 'broadcast'", name)
	}
	assert.False(t, m.Health(ctx).Healthy, "not healthy before start")

	require.NoError(t, m.Start(ctx))
	hub := m.GetHub()
	register(t, hub, "a")
	register(t, hub, "b")
	register(t, hub, "c")
	require.NoError(t, hub.JoinRoom("a", "lobby", domain.RosterEntry{Name: "alice"}))
	require.NoError(t, hub.JoinRoom("b", "lobby", domain.RosterEntry{Name: "bob"}))
	require.NoError(t, hub.JoinRoom("c", "den", domain.RosterEntry{Name: "carol"}))

	status := m.Health(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 3, status.Details["connected_clients"])
	assert.Equal(t, 2, status.Details["active_rooms"])
	assert.Equal(t, map[string]int{"lobby": 2, "den": 1}, status.Details["room_members"])

	require.NoError(t, m.Stop(ctx))
	assert.Equal(t, 0, hub.ClientCount())
	assert.Empty(t, hub.RoomOccupancy())
	assert.False(t, m.Health(ctx).Healthy, "not healthy after stop")
}
