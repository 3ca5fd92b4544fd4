package tokenstore

import "sync"

// In-memory jti revocation set, checked on every authenticated request and
// websocket handshake. Entries live until process restart, which is at most
// the token lifetime anyway; a multi-node deployment would back this with
// Redis or the DB instead.
var (
	mu      sync.RWMutex
	revoked = map[string]struct{}{}
)

// RevokeToken marks a token id as logged out.
func RevokeToken(jti string) {
	if jti == "" {
		return
	}
	mu.Lock()
	revoked[jti] = struct{}{}
	mu.Unlock()
}

// IsRevoked reports whether the token id was revoked. An empty jti is never
// considered revoked; tokens without one simply expire.
func IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := revoked[jti]
	return ok
}
