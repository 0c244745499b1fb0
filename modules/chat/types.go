package chat

import domain "github.com/example/ezcomm-chat/domain/chat"

// Request-reply service names.
const (
	ServiceListRooms = "list-rooms"
	ServiceRoomLog   = "room-log"
	ServiceStats     = "chat-stats"
)

// ListRoomsRequest is the request for listing rooms.
type ListRoomsRequest struct{}

// ListRoomsResponse is the response for listing rooms.
type ListRoomsResponse struct {
	Rooms []RoomSummary `json:"rooms"`
}

// RoomLogRequest is the request for a room's log.
type RoomLogRequest struct {
	RoomName string `json:"room_name"`
}

// RoomLogResponse is the response for a room's log.
type RoomLogResponse struct {
	RoomName string           `json:"room_name"`
	Messages []domain.Message `json:"messages"`
	Typing   []string         `json:"typing"`
}

// StatsRequest is the request for chat statistics.
type StatsRequest struct{}

// StatsResponse is the response for chat statistics.
type StatsResponse struct {
	Stats Stats `json:"stats"`
}
