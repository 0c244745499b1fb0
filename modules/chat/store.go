package chat

import (
	"sort"
	"strings"
	"sync"
	"time"

	domain "github.com/example/ezcomm-chat/domain/chat"
)

// room holds one room's log and typing set.
type room struct {
	messages []domain.Message
	typing   map[string]struct{}
}

// RoomStore keeps every room's message log and typing set in memory.
// Rooms are created lazily and live for the lifetime of the process.
type RoomStore struct {
	rooms map[string]*room
	now   func() time.Time
	mu    sync.RWMutex
}

// StoreStats summarizes the store's contents.
type StoreStats struct {
	Rooms    int `json:"rooms"`
	Messages int `json:"messages"`
}

// NewRoomStore creates an empty RoomStore.
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*room),
		now:   time.Now,
	}
}

// getOrCreate returns the named room, creating it if needed. Caller holds mu.
func (s *RoomStore) getOrCreate(name string) *room {
	r, ok := s.rooms[name]
	if !ok {
		r = &room{typing: make(map[string]struct{})}
		s.rooms[name] = r
	}
	return r
}

// AppendMessage adds msg to the end of the room's log and returns the stored
// copy. The timestamp is raised to the previous entry's if it would go backwards.
func (s *RoomStore) AppendMessage(roomName string, msg domain.Message) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.getOrCreate(roomName)
	if n := len(r.messages); n > 0 && msg.Timestamp < r.messages[n-1].Timestamp {
		msg.Timestamp = r.messages[n-1].Timestamp
	}
	msg = msg.Clone()
	r.messages = append(r.messages, msg)
	return msg.Clone()
}

// GetLog returns a snapshot of the room's log. Unknown rooms yield an empty log.
func (s *RoomStore) GetLog(roomName string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomName]
	if !ok {
		return []domain.Message{}
	}
	out := make([]domain.Message, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Clone()
	}
	return out
}

// lastBy returns the index of the newest non-deleted message sent by user, or -1.
func (r *room) lastBy(user string) int {
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.Sender == user && !m.IsDeleted() {
			return i
		}
	}
	return -1
}

// EditLastMessage replaces the text of the user's newest non-deleted message
// with the trimmed newText. It reports whether a message was edited.
func (s *RoomStore) EditLastMessage(roomName, userName, newText string) bool {
	if userName == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomName]
	if !ok {
		return false
	}
	i := r.lastBy(userName)
	if i < 0 {
		return false
	}
	at := domain.Millis(s.now())
	r.messages[i].Text = strings.TrimSpace(newText)
	r.messages[i].EditedAt = &at
	return true
}

// DeleteLastMessage marks the user's newest non-deleted message as deleted.
// Text is kept. It reports whether a message was deleted.
func (s *RoomStore) DeleteLastMessage(roomName, userName string) bool {
	if userName == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[roomName]
	if !ok {
		return false
	}
	i := r.lastBy(userName)
	if i < 0 {
		return false
	}
	at := domain.Millis(s.now())
	r.messages[i].DeletedAt = &at
	return true
}

// SetTyping adds or removes the user from the room's typing set.
func (s *RoomStore) SetTyping(roomName, userName string, isTyping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.getOrCreate(roomName)
	if isTyping {
		r.typing[userName] = struct{}{}
		return
	}
	delete(r.typing, userName)
}

// GetTypingUsers returns the room's typing users in sorted order.
func (s *RoomStore) GetTypingUsers(roomName string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[roomName]
	if !ok {
		return []string{}
	}
	users := make([]string, 0, len(r.typing))
	for u := range r.typing {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// RoomNames returns the names of all rooms in sorted order.
func (s *RoomStore) RoomNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns room and message counts.
func (s *RoomStore) Stats() StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := StoreStats{Rooms: len(s.rooms)}
	for _, r := range s.rooms {
		stats.Messages += len(r.messages)
	}
	return stats
}
