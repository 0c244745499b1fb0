package chat

import (
	"testing"

	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStore_AppendAndGetLog(t *testing.T) {
	s := NewRoomStore()

	assert.Empty(t, s.GetLog("lobby"))
	assert.NotNil(t, s.GetLog("lobby"))

	s.AppendMessage("lobby", domain.Message{Sender: "alice", Text: "hi", Timestamp: 10})
	s.AppendMessage("lobby", domain.Message{Sender: "bob", Text: "hey", Timestamp: 20})

	log := s.GetLog("lobby")
	require.Len(t, log, 2)
	assert.Equal(t, "hi", log[0].Text)
	assert.Equal(t, "hey", log[1].Text)
	assert.Empty(t, s.GetLog("other"))
}

func TestRoomStore_TimestampsNonDecreasing(t *testing.T) {
	s := NewRoomStore()

	s.AppendMessage("r", domain.Message{Sender: "a", Text: "1", Timestamp: 100})
	stored := s.AppendMessage("r", domain.Message{Sender: "a", Text: "2", Timestamp: 50})

	assert.Equal(t, int64(100), stored.Timestamp)
	log := s.GetLog("r")
	assert.LessOrEqual(t, log[0].Timestamp, log[1].Timestamp)
}

func TestRoomStore_GetLogIsSnapshot(t *testing.T) {
	s := NewRoomStore()
	s.AppendMessage("r", domain.Message{Sender: "a", Text: "orig", Timestamp: 1})

	snapshot := s.GetLog("r")
	snapshot[0].Text = "mutated"

	require.True(t, s.EditLastMessage("r", "a", "edited"))
	assert.Equal(t, "mutated", snapshot[0].Text)
	assert.Nil(t, snapshot[0].EditedAt, "snapshot must not observe later edits")
	assert.Equal(t, "edited", s.GetLog("r")[0].Text)
}

func TestRoomStore_EditLastMessage(t *testing.T) {
	tests := []struct {
		name     string
		log      []domain.Message
		user     string
		newText  string
		wantOK   bool
		wantText []string
	}{
		{
			name: "edits newest own message and trims",
			log: []domain.Message{
				{Sender: "alice", Text: "first"},
				{Sender: "alice", Text: "second"},
			},
			user:     "alice",
			newText:  "  fixed  ",
			wantOK:   true,
			wantText: []string{"first", "fixed"},
		},
		{
			name: "skips other senders",
			log: []domain.Message{
				{Sender: "alice", Text: "mine"},
				{Sender: "bob", Text: "theirs"},
			},
			user:     "alice",
			newText:  "changed",
			wantOK:   true,
			wantText: []string{"changed", "theirs"},
		},
		{
			name: "skips deleted messages",
			log: []domain.Message{
				{Sender: "alice", Text: "older"},
				{Sender: "alice", Text: "gone", DeletedAt: ptr(int64(5))},
			},
			user:     "alice",
			newText:  "updated",
			wantOK:   true,
			wantText: []string{"updated", "gone"},
		},
		{
			name:     "no message from user",
			log:      []domain.Message{{Sender: "bob", Text: "x"}},
			user:     "alice",
			newText:  "y",
			wantOK:   false,
			wantText: []string{"x"},
		},
		{
			name: "never touches system messages",
			log: []domain.Message{
				{Text: "alice has joined the room"},
			},
			user:     "",
			newText:  "hijack",
			wantOK:   false,
			wantText: []string{"alice has joined the room"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRoomStore()
			for _, m := range tt.log {
				s.AppendMessage("r", m)
			}

			ok := s.EditLastMessage("r", tt.user, tt.newText)
			assert.Equal(t, tt.wantOK, ok)

			log := s.GetLog("r")
			require.Len(t, log, len(tt.wantText))
			for i, want := range tt.wantText {
				assert.Equal(t, want, log[i].Text)
			}
		})
	}
}

func TestRoomStore_EditSetsEditedAt(t *testing.T) {
	s := NewRoomStore()
	s.now = stepClock()
	s.AppendMessage("r", domain.Message{Sender: "alice", Text: "hi"})

	require.True(t, s.EditLastMessage("r", "alice", "hello"))
	assert.NotNil(t, s.GetLog("r")[0].EditedAt)
}

func TestRoomStore_DeleteLastMessage(t *testing.T) {
	s := NewRoomStore()
	s.AppendMessage("r", domain.Message{Sender: "alice", Text: "one"})
	s.AppendMessage("r", domain.Message{Sender: "alice", Text: "two"})

	require.True(t, s.DeleteLastMessage("r", "alice"))
	log := s.GetLog("r")
	assert.Nil(t, log[0].DeletedAt)
	require.NotNil(t, log[1].DeletedAt)
	assert.Equal(t, "two", log[1].Text, "text is preserved on delete")

	require.True(t, s.DeleteLastMessage("r", "alice"))
	assert.NotNil(t, s.GetLog("r")[0].DeletedAt)

	assert.False(t, s.DeleteLastMessage("r", "alice"))
	assert.False(t, s.DeleteLastMessage("missing", "alice"))
}

func TestRoomStore_Typing(t *testing.T) {
	s := NewRoomStore()

	s.SetTyping("r", "carol", true)
	s.SetTyping("r", "alice", true)
	s.SetTyping("r", "alice", true)
	assert.Equal(t, []string{"alice", "carol"}, s.GetTypingUsers("r"))

	s.SetTyping("r", "carol", false)
	s.SetTyping("r", "nobody", false)
	assert.Equal(t, []string{"alice"}, s.GetTypingUsers("r"))

	assert.Empty(t, s.GetTypingUsers("unknown"))
}

func TestRoomStore_Stats(t *testing.T) {
	s := NewRoomStore()
	s.AppendMessage("a", domain.Message{Text: "x"})
	s.AppendMessage("a", domain.Message{Text: "y"})
	s.AppendMessage("b", domain.Message{Text: "z"})

	assert.Equal(t, StoreStats{Rooms: 2, Messages: 3}, s.Stats())
	assert.Equal(t, []string{"a", "b"}, s.RoomNames())
}

func ptr[T any](v T) *T {
	return &v
}
