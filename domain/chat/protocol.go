package chat

import "encoding/json"

// Event names exchanged over the websocket transport.
const (
	EventJoin         = "join"
	EventMessage      = "message"
	EventEdit         = "edit"
	EventDelete       = "delete"
	EventTyping       = "typing"
	EventJoinResponse = "join-response"
	EventChatUpdate   = "chat update"
	EventRoomUsers    = "room-users"
	EventError        = "error"
)

// Envelope is the frame format in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutboundEnvelope is the server-to-client frame with a typed payload.
type OutboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// JoinRequest is the payload of a join event.
type JoinRequest struct {
	RoomName string `json:"roomName"`
	UserName string `json:"userName"`
}

// JoinResponse echoes the join request with either a color or an error.
type JoinResponse struct {
	RoomName string `json:"roomName"`
	UserName string `json:"userName"`
	Color    Color  `json:"color,omitempty"`
	Error    string `json:"error,omitempty"`
}

// EditRequest is the payload of an edit event.
type EditRequest struct {
	NewText string `json:"newText"`
}

// TypingRequest is the payload of a typing event. Room and user names are
// informational; the session's bound identity is authoritative.
type TypingRequest struct {
	RoomName string `json:"roomName,omitempty"`
	UserName string `json:"userName,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorPayload is sent when an inbound frame cannot be handled.
type ErrorPayload struct {
	Message string `json:"message"`
}
