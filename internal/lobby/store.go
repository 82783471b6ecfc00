// internal/lobby/store.go
package lobby

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrLobbyNotFound is returned when the given code maps to no lobby.
	ErrLobbyNotFound = errors.New("lobby not found")
	// ErrLobbyFull is returned on a join attempt against a full lobby.
	ErrLobbyFull = errors.New("lobby is full")
)

// codeRedrawLimit bounds the collision-retry loop in Create. With 900k codes
// and a handful of live lobbies it is effectively never reached.
const codeRedrawLimit = 64

// Store manages the active lobbies in memory, keyed by 6-digit code.
// Every mutation runs under one mutex so that concurrent joins, ready
// toggles, movement updates and disconnects on the same lobby are
// linearized. All returned Lobby values are snapshots safe to marshal and
// broadcast without further locking.
type Store struct {
	mu      sync.Mutex
	lobbies map[string]*Lobby
	log     *logrus.Logger
}

// NewStore initializes and returns an empty Store.
func NewStore(log *logrus.Logger) *Store {
	return &Store{
		lobbies: make(map[string]*Lobby),
		log:     log,
	}
}

// RemoveResult reports the outcome of RemoveMember.
type RemoveResult struct {
	Found       bool
	Deleted     bool   // lobby had no members left and was removed
	HostChanged bool   // removed member was host; Lobby.Host is the new host
	Lobby       *Lobby // snapshot after removal, nil when Deleted or !Found
}

// Create inserts a new lobby hosted by host with a freshly drawn code and
// returns its snapshot. The host is its single member, not ready, and the
// lobby starts in the waiting state.
func (s *Store) Create(host string) *Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := drawCode()
	for i := 0; i < codeRedrawLimit; i++ {
		if _, exists := s.lobbies[code]; !exists {
			break
		}
		code = drawCode()
	}
	if _, exists := s.lobbies[code]; exists {
		// Out of redraws; the old lobby is overwritten.
		s.log.Warnf("lobby code %s redraw limit hit, overwriting", code)
	}

	l := &Lobby{
		Code:    code,
		Host:    host,
		Players: []*Player{{Username: host}},
		Status:  StatusWaiting,
	}
	s.lobbies[code] = l
	return l.clone()
}

// drawCode returns a uniform random 6-digit decimal code.
func drawCode() string {
	return fmt.Sprintf("%06d", 100000+rand.Intn(900000))
}

// List returns browse projections of every active lobby. Ordering follows
// map iteration and is not guaranteed.
func (s *Store) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, 0, len(s.lobbies))
	for code, l := range s.lobbies {
		out = append(out, Summary{
			Code:        code,
			Host:        l.Host,
			PlayerCount: len(l.Players),
			Status:      l.Status,
		})
	}
	return out
}

// Get returns a snapshot of the lobby for code.
func (s *Store) Get(code string) (*Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lobbies[code]
	if !ok {
		return nil, false
	}
	return l.clone(), true
}

// Join appends username to the lobby for code and returns the updated
// snapshot. Fails with ErrLobbyNotFound or ErrLobbyFull.
func (s *Store) Join(code, username string) (*Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	if len(l.Players) >= MaxPlayers {
		return nil, ErrLobbyFull
	}
	l.Players = append(l.Players, &Player{Username: username})
	return l.clone(), nil
}

// SetReady sets username's ready flag in the lobby for code. A missing lobby
// or member is a silent no-op (ok=false): late events after teardown are
// races, not failures. When the update leaves the lobby full and unanimous,
// the status transitions waiting -> playing and started=true tells the
// caller to broadcast game start instead of a generic update.
func (s *Store) SetReady(code, username string, ready bool) (l *Lobby, started, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lob, found := s.lobbies[code]
	if !found {
		return nil, false, false
	}
	p := lob.player(username)
	if p == nil {
		return nil, false, false
	}
	p.Ready = ready

	if len(lob.Players) == MaxPlayers && lob.allReady() {
		lob.Status = StatusPlaying
		started = true
	}
	return lob.clone(), started, true
}

// RecordJoinedGame marks username as in-game at position (x, y). Missing
// lobby or member is a silent no-op. allIn reports that every member is now
// in-game, which triggers the allPlayersJoined broadcast.
func (s *Store) RecordJoinedGame(code, username string, x, y float64) (l *Lobby, allIn, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lob, found := s.lobbies[code]
	if !found {
		return nil, false, false
	}
	p := lob.player(username)
	if p == nil {
		return nil, false, false
	}
	p.X = x
	p.Y = y
	p.InGame = true
	return lob.clone(), lob.allInGame(), true
}

// ApplyMovement stores a movement update for username and reports whether it
// was accepted. An update is accepted only when its timestamp strictly
// exceeds the member's last accepted one; a stale update leaves every field
// untouched and must not be relayed to peers.
func (s *Store) ApplyMovement(code, username string, x, y, vx, vy float64, timestamp int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	lob, found := s.lobbies[code]
	if !found {
		return false
	}
	p := lob.player(username)
	if p == nil {
		return false
	}
	if p.LastMoveTimestamp != 0 && timestamp <= p.LastMoveTimestamp {
		return false
	}
	p.X = x
	p.Y = y
	p.VelocityX = vx
	p.VelocityY = vy
	p.LastMoveTimestamp = timestamp
	return true
}

// RemoveMember removes username from the lobby for code. An emptied lobby is
// deleted outright; otherwise, if the host left, the first remaining member
// is promoted and the snapshot reflects the new host.
func (s *Store) RemoveMember(code, username string) RemoveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	lob, found := s.lobbies[code]
	if !found {
		return RemoveResult{}
	}

	kept := lob.Players[:0]
	removed := false
	for _, p := range lob.Players {
		if p.Username == username {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return RemoveResult{}
	}
	lob.Players = kept

	if len(lob.Players) == 0 {
		delete(s.lobbies, code)
		s.log.Infof("lobby %s emptied, deleted", code)
		return RemoveResult{Found: true, Deleted: true}
	}

	res := RemoveResult{Found: true}
	if lob.Host == username {
		lob.Host = lob.Players[0].Username
		res.HostChanged = true
		s.log.Infof("lobby %s host left, promoted %s", code, lob.Host)
	}
	res.Lobby = lob.clone()
	return res
}
