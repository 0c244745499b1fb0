package chat

import "errors"

// Domain errors.
var (
	// ErrNameConflict is returned when a user name is already registered.
	ErrNameConflict = errors.New("user name already taken")

	// ErrInvalidName is returned when a room or user name is blank.
	ErrInvalidName = errors.New("room and user names are required")

	// ErrNotJoined is returned for room events from a session without an identity.
	ErrNotJoined = errors.New("session has not joined a room")

	// ErrAlreadyJoined is returned when a joined session sends another join.
	ErrAlreadyJoined = errors.New("session already joined a room")

	// ErrSessionClosed is returned for events arriving after disconnect.
	ErrSessionClosed = errors.New("session is closed")

	// ErrBroadcast wraps failures of the broadcast gateway.
	ErrBroadcast = errors.New("broadcast failed")

	// ErrHubClosed is returned by the gateway after shutdown.
	ErrHubClosed = errors.New("hub is closed")
)
