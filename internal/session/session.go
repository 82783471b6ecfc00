// internal/session/session.go
package session

import "github.com/google/uuid"

// Session is the server-side state for one live connection. Username and
// LobbyCode are unset until the client claims a name / enters a lobby.
//
// A session is only ever mutated by its own connection's read loop, so it
// needs no lock of its own; all shared state lives behind the registry and
// the lobby store.
type Session struct {
	ID        uuid.UUID
	Username  string
	LobbyCode string
}

// New returns a fresh session with a random connection key.
func New() *Session {
	return &Session{ID: uuid.New()}
}
