package chat

import "strings"

// Separator joins the two participant names into a room id. Registration
// rejects usernames containing it, and RoomID rejects them again here, so a
// room id always splits back into exactly two names.
const Separator = ":"

// RoomID maps an unordered pair of usernames to the canonical conversation
// id: the pair sorted lexicographically and joined with Separator. It is
// commutative, so both sides of a conversation compute the same routing key
// no matter who opened it.
func RoomID(a, b string) (string, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" || strings.Contains(a, Separator) || strings.Contains(b, Separator) {
		return "", ErrBadParticipant
	}
	if a == b {
		return "", ErrSameParticipant
	}
	if b < a {
		a, b = b, a
	}
	return a + Separator + b, nil
}
