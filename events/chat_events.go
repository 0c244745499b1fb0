package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserJoinedEvent is emitted after a session joined a room.
type UserJoinedEvent struct {
	SessionID string    `json:"session_id"`
	RoomName  string    `json:"room_name"`
	UserName  string    `json:"user_name"`
	Color     string    `json:"color"`
	Timestamp time.Time `json:"timestamp"`
}

// JoinRejectedEvent is emitted when a join is refused because the name is taken.
type JoinRejectedEvent struct {
	SessionID string    `json:"session_id"`
	RoomName  string    `json:"room_name"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted after a joined session disconnected.
type UserLeftEvent struct {
	SessionID string    `json:"session_id"`
	RoomName  string    `json:"room_name"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagePostedEvent is emitted when a user message is appended to a room log.
type MessagePostedEvent struct {
	RoomName  string    `json:"room_name"`
	UserName  string    `json:"user_name"`
	Length    int       `json:"length"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageChangedEvent is emitted when a user edits or deletes their last message.
type MessageChangedEvent struct {
	RoomName  string    `json:"room_name"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	JoinRejectedV1 = helper.EventDefinition[JoinRejectedEvent](
		"chat",
		"JoinRejected",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)

	MessagePostedV1 = helper.EventDefinition[MessagePostedEvent](
		"chat",
		"MessagePosted",
		"v1",
	)

	MessageEditedV1 = helper.EventDefinition[MessageChangedEvent](
		"chat",
		"MessageEdited",
		"v1",
	)

	MessageDeletedV1 = helper.EventDefinition[MessageChangedEvent](
		"chat",
		"MessageDeleted",
		"v1",
	)
)
