package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ChatPort defines the read-only chat queries available to other modules.
type ChatPort interface {
	ListRooms(ctx context.Context) ([]RoomSummary, error)
	RoomLog(ctx context.Context, roomName string) (*RoomLogResponse, error)
	Stats(ctx context.Context) (Stats, error)
}

// ChatAdapter implements ChatPort using the service container.
type ChatAdapter struct {
	container mono.ServiceContainer
}

// NewChatAdapter creates a new ChatAdapter.
func NewChatAdapter(container mono.ServiceContainer) ChatPort {
	if container == nil {
		panic("chat: ServiceContainer is nil")
	}
	return &ChatAdapter{container: container}
}

// ListRooms returns a summary of every room.
func (a *ChatAdapter) ListRooms(ctx context.Context) ([]RoomSummary, error) {
	req := ListRoomsRequest{}
	var resp ListRoomsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListRooms,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return resp.Rooms, nil
}

// RoomLog returns a room's log and typing users.
func (a *ChatAdapter) RoomLog(ctx context.Context, roomName string) (*RoomLogResponse, error) {
	req := RoomLogRequest{RoomName: roomName}
	var resp RoomLogResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceRoomLog,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("failed to get room log: %w", err)
	}
	return &resp, nil
}

// Stats returns chat statistics.
func (a *ChatAdapter) Stats(ctx context.Context) (Stats, error) {
	req := StatsRequest{}
	var resp StatsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceStats,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return Stats{}, fmt.Errorf("failed to get chat stats: %w", err)
	}
	return resp.Stats, nil
}
