package chat

import (
	"fmt"
	"time"
)

// Color is a display color in "#RRGGBB" form.
type Color string

// Message is one entry of a room's log. An empty Sender marks a system message.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Color     Color  `json:"color,omitempty"`
	Timestamp int64  `json:"timestamp"`
	EditedAt  *int64 `json:"editedAt,omitempty"`
	DeletedAt *int64 `json:"deletedAt,omitempty"`
}

// IsSystem reports whether the message was generated by the server.
func (m Message) IsSystem() bool {
	return m.Sender == ""
}

// IsDeleted reports whether the message has been soft-deleted.
func (m Message) IsDeleted() bool {
	return m.DeletedAt != nil
}

// Clone returns a copy that shares no pointers with m.
func (m Message) Clone() Message {
	out := m
	if m.EditedAt != nil {
		v := *m.EditedAt
		out.EditedAt = &v
	}
	if m.DeletedAt != nil {
		v := *m.DeletedAt
		out.DeletedAt = &v
	}
	return out
}

// RosterEntry is one member of a room as reported to clients.
type RosterEntry struct {
	Name  string `json:"name"`
	Color Color  `json:"color"`
}

// Identity binds a session to a room, a user name and a color.
type Identity struct {
	Room  string
	User  string
	Color Color
}

// Roster returns the roster entry for the identity.
func (i Identity) Roster() RosterEntry {
	return RosterEntry{Name: i.User, Color: i.Color}
}

// Millis converts t to epoch milliseconds, the unit used on the wire.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// JoinedText is the system message appended when a user joins a room.
func JoinedText(user string) string {
	return fmt.Sprintf("%s has joined the room", user)
}

// LeftText is the system message appended when a user leaves a room.
func LeftText(user string) string {
	return fmt.Sprintf("%s has left the room", user)
}

// NameTakenText is the join rejection reason sent to the client.
func NameTakenText(user string) string {
	return fmt.Sprintf("The name %s is already taken", user)
}
