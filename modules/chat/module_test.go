package chat

import (
	"context"
	"testing"

	domain "github.com/example/ezcomm-chat/domain/chat"
)

func TestModule_Name(t *testing.T) {
	m := NewModule(newFakeGateway(), newMockLogger())

	if name := m.Name(); name != "chat" {
		t.Errorf("Name() = %q, want 'chat'", name)
	}
}

func TestModule_EmitEvents(t *testing.T) {
	m := NewModule(newFakeGateway(), newMockLogger())

	if got := len(m.EmitEvents()); got != 6 {
		t.Errorf("EmitEvents() returned %d definitions, want 6", got)
	}
}

func TestModule_PublishWithoutBus(t *testing.T) {
	m := NewModule(newFakeGateway(), newMockLogger())
	ctx := context.Background()

	s := m.Service().NewSession("s1")
	if err := s.Join(ctx, domain.JoinRequest{RoomName: "R", UserName: "alice"}); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if err := s.Message(ctx, "hi"); err != nil {
		t.Fatalf("Message() error = %v", err)
	}
	s.Disconnect(ctx)
}

func TestModule_Handlers(t *testing.T) {
	m := NewModule(newFakeGateway(), newMockLogger())
	ctx := context.Background()

	s := m.Service().NewSession("s1")
	if err := s.Join(ctx, domain.JoinRequest{RoomName: "lobby", UserName: "alice"}); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if err := s.SetTyping(ctx, true); err != nil {
		t.Fatalf("SetTyping() error = %v", err)
	}

	rooms, err := m.handleListRooms(ctx, ListRoomsRequest{}, nil)
	if err != nil {
		t.Fatalf("handleListRooms() error = %v", err)
	}
	if len(rooms.Rooms) != 1 || rooms.Rooms[0].Name != "lobby" {
		t.Fatalf("handleListRooms() = %+v, want one room 'lobby'", rooms.Rooms)
	}
	if rooms.Rooms[0].Messages != 1 || rooms.Rooms[0].Typing != 1 {
		t.Errorf("room summary = %+v, want 1 message and 1 typing", rooms.Rooms[0])
	}

	logResp, err := m.handleRoomLog(ctx, RoomLogRequest{RoomName: "lobby"}, nil)
	if err != nil {
		t.Fatalf("handleRoomLog() error = %v", err)
	}
	if len(logResp.Messages) != 1 {
		t.Errorf("handleRoomLog() messages = %d, want 1", len(logResp.Messages))
	}
	if len(logResp.Typing) != 1 || logResp.Typing[0] != "alice" {
		t.Errorf("handleRoomLog() typing = %v, want [alice]", logResp.Typing)
	}

	if _, err := m.handleRoomLog(ctx, RoomLogRequest{}, nil); err == nil {
		t.Error("handleRoomLog() with empty name expected error")
	}

	stats, err := m.handleStats(ctx, StatsRequest{}, nil)
	if err != nil {
		t.Fatalf("handleStats() error = %v", err)
	}
	if stats.Stats.Users != 1 || stats.Stats.Rooms != 1 {
		t.Errorf("handleStats() = %+v", stats.Stats)
	}
}

func TestModule_Health(t *testing.T) {
	m := NewModule(newFakeGateway(), newMockLogger())

	status := m.Health(context.Background())
	if !status.Healthy {
		t.Error("Health() Healthy = false, want true")
	}
	if _, ok := status.Details["rooms"]; !ok {
		t.Error("Health() details missing 'rooms'")
	}
}
