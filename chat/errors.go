package chat

import "errors"

var (
	// ErrBadParticipant covers empty or whitespace-only identifiers and
	// identifiers containing the room separator.
	ErrBadParticipant = errors.New("chat: invalid participant identifier")

	// ErrSameParticipant is returned when sender and receiver are the same
	// user; there is no such thing as a self-conversation.
	ErrSameParticipant = errors.New("chat: sender and receiver must differ")

	// ErrEmptyBody is returned for empty or whitespace-only message bodies.
	ErrEmptyBody = errors.New("chat: message body is empty")

	// ErrStorage wraps a persistence failure. The send failed as a whole;
	// nothing was broadcast.
	ErrStorage = errors.New("chat: failed to store message")
)
