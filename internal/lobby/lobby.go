// internal/lobby/lobby.go
package lobby

// Status is the lobby lifecycle state. A lobby starts waiting and moves to
// playing once both members are ready; there is no transition back — a lobby
// persists until its last member disconnects and it is deleted.
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

// MaxPlayers caps lobby membership. The game is strictly head-to-head.
const MaxPlayers = 2

// Player is one member record inside a lobby. The JSON field names are part
// of the wire contract: full lobby snapshots are sent to clients verbatim.
type Player struct {
	Username  string  `json:"username"`
	Ready     bool    `json:"ready"`
	InGame    bool    `json:"inGame"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VelocityX float64 `json:"velocityX"`
	VelocityY float64 `json:"velocityY"`

	// LastMoveTimestamp is the timestamp of the last accepted movement
	// update, non-decreasing per member. Zero means none accepted yet.
	LastMoveTimestamp int64 `json:"lastMoveTimestamp,omitempty"`
}

// Lobby is one code-keyed matchmaking unit.
type Lobby struct {
	Code    string    `json:"code"`
	Host    string    `json:"host"`
	Players []*Player `json:"players"`
	Status  Status    `json:"status"`
}

// Summary is the projection used for lobby-browsing lists.
type Summary struct {
	Code        string `json:"code"`
	Host        string `json:"host"`
	PlayerCount int    `json:"playerCount"`
	Status      Status `json:"status"`
}

// player returns the member record for username, or nil.
func (l *Lobby) player(username string) *Player {
	for _, p := range l.Players {
		if p.Username == username {
			return p
		}
	}
	return nil
}

// allReady reports whether every member has toggled ready.
func (l *Lobby) allReady() bool {
	for _, p := range l.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// allInGame reports whether every member has entered the game scene.
func (l *Lobby) allInGame() bool {
	for _, p := range l.Players {
		if !p.InGame {
			return false
		}
	}
	return true
}

// clone deep-copies the lobby so callers can marshal and broadcast snapshots
// without holding the store lock.
func (l *Lobby) clone() *Lobby {
	cp := &Lobby{
		Code:    l.Code,
		Host:    l.Host,
		Status:  l.Status,
		Players: make([]*Player, len(l.Players)),
	}
	for i, p := range l.Players {
		pc := *p
		cp.Players[i] = &pc
	}
	return cp
}
