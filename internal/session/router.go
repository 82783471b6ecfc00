// internal/session/router.go
package session

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/demirse/duelgrid/internal/history"
	"github.com/demirse/duelgrid/internal/identity"
	"github.com/demirse/duelgrid/internal/lobby"
	"github.com/demirse/duelgrid/internal/protocol"
)

// Client-facing error strings. These match what the browser client displays.
const (
	msgNameTaken       = "Username is already taken!"
	msgInvalidUsername = "Invalid username"
	msgNeedUsername    = "Please set a username first"
	msgLobbyNotFound   = "Lobby not found"
	msgLobbyFull       = "Lobby is full"
)

// Notifier delivers state-change notifications to one connection, to a lobby
// room, or to everyone. The hub implements it; tests substitute a mock.
type Notifier interface {
	ToSession(id uuid.UUID, msg protocol.Message)
	ToLobby(code string, msg protocol.Message)
	ToLobbyExcept(code string, except uuid.UUID, msg protocol.Message)
	ToAll(msg protocol.Message)
	JoinRoom(code string, id uuid.UUID)
	LeaveRoom(code string, id uuid.UUID)
}

// Router validates inbound events against session state, mutates the
// identity registry and lobby store, and pushes resulting notifications
// through the Notifier. Every precondition failure is either a
// single-recipient error or a silent no-op; nothing here terminates a
// connection or the process.
type Router struct {
	log      *logrus.Logger
	names    *identity.Registry
	lobbies  *lobby.Store
	notify   Notifier
	feed     *history.Publisher
	handlers map[string]func(*Session, json.RawMessage)
}

// NewRouter wires the router against its collaborators. feed may be nil.
func NewRouter(log *logrus.Logger, names *identity.Registry, lobbies *lobby.Store, notify Notifier, feed *history.Publisher) *Router {
	r := &Router{
		log:     log,
		names:   names,
		lobbies: lobbies,
		notify:  notify,
		feed:    feed,
	}
	r.handlers = map[string]func(*Session, json.RawMessage){
		protocol.SetUsername:      r.handleSetUsername,
		protocol.CreateLobby:      r.handleCreateLobby,
		protocol.GetLobbies:       r.handleGetLobbies,
		protocol.JoinLobby:        r.handleJoinLobby,
		protocol.PlayerReady:      r.handlePlayerReady,
		protocol.PlayerJoinedGame: r.handlePlayerJoinedGame,
		protocol.PlayerMoved:      r.handlePlayerMoved,
	}
	return r
}

// Dispatch routes one inbound envelope to its handler. Unknown events are
// logged and ignored; the client-side rejoinLobby event lands here on
// purpose, its server contract was never defined.
func (r *Router) Dispatch(s *Session, env protocol.Envelope) {
	h, ok := r.handlers[env.Event]
	if !ok {
		r.log.WithFields(logrus.Fields{
			"session": s.ID,
			"event":   env.Event,
		}).Warn("unknown event, ignoring")
		return
	}
	h(s, env.Data)
}

func (r *Router) handleSetUsername(s *Session, data json.RawMessage) {
	var name string
	if err := json.Unmarshal(data, &name); err != nil || name == "" {
		r.notify.ToSession(s.ID, protocol.Message{Event: protocol.UsernameError, Data: msgInvalidUsername})
		return
	}
	if err := r.names.Claim(name); err != nil {
		if errors.Is(err, identity.ErrNameTaken) {
			r.notify.ToSession(s.ID, protocol.Message{Event: protocol.UsernameError, Data: msgNameTaken})
		}
		return
	}
	// Renaming frees the previously held name.
	if s.Username != "" && s.Username != name {
		r.names.Release(s.Username)
	}
	s.Username = name
	r.notify.ToSession(s.ID, protocol.Message{Event: protocol.UsernameSet, Data: name})
	r.broadcastOnlinePlayers()
}

func (r *Router) handleCreateLobby(s *Session, _ json.RawMessage) {
	if s.Username == "" {
		r.notify.ToSession(s.ID, protocol.Message{Event: protocol.LobbyError, Data: msgNeedUsername})
		return
	}
	r.leaveCurrentLobby(s)

	lob := r.lobbies.Create(s.Username)
	s.LobbyCode = lob.Code
	r.notify.JoinRoom(lob.Code, s.ID)
	r.notify.ToSession(s.ID, protocol.Message{
		Event: protocol.LobbyCreated,
		Data: map[string]interface{}{
			"code":  lob.Code,
			"lobby": lob,
		},
	})
	r.feed.Publish(lob.Code, history.EventLobbyCreated, s.Username)
}

func (r *Router) handleGetLobbies(s *Session, _ json.RawMessage) {
	r.notify.ToSession(s.ID, protocol.Message{Event: protocol.LobbiesList, Data: r.lobbies.List()})
}

func (r *Router) handleJoinLobby(s *Session, data json.RawMessage) {
	if s.Username == "" {
		r.notify.ToSession(s.ID, protocol.Message{Event: protocol.LobbyError, Data: msgNeedUsername})
		return
	}
	var code string
	if err := json.Unmarshal(data, &code); err != nil || code == "" {
		r.notify.ToSession(s.ID, protocol.Message{Event: protocol.LobbyError, Data: msgLobbyNotFound})
		return
	}
	r.leaveCurrentLobby(s)

	lob, err := r.lobbies.Join(code, s.Username)
	if err != nil {
		switch {
		case errors.Is(err, lobby.ErrLobbyFull):
			r.notify.ToSession(s.ID, protocol.Message{Event: protocol.LobbyError, Data: msgLobbyFull})
		default:
			r.notify.ToSession(s.ID, protocol.Message{Event: protocol.LobbyError, Data: msgLobbyNotFound})
		}
		return
	}
	s.LobbyCode = code
	r.notify.JoinRoom(code, s.ID)
	r.notify.ToLobby(code, protocol.Message{Event: protocol.LobbyUpdate, Data: lob})
	r.broadcastLobbies()
}

func (r *Router) handlePlayerReady(s *Session, data json.RawMessage) {
	if s.LobbyCode == "" {
		return // stray event after teardown, not an error
	}
	var ready bool
	if err := json.Unmarshal(data, &ready); err != nil {
		return
	}
	lob, started, ok := r.lobbies.SetReady(s.LobbyCode, s.Username, ready)
	if !ok {
		return
	}
	if started {
		r.notify.ToLobby(s.LobbyCode, protocol.Message{Event: protocol.GameStart, Data: lob})
		r.feed.Publish(s.LobbyCode, history.EventGameStarted, s.Username)
		return
	}
	r.notify.ToLobby(s.LobbyCode, protocol.Message{Event: protocol.LobbyUpdate, Data: lob})
}

func (r *Router) handlePlayerJoinedGame(s *Session, data json.RawMessage) {
	if s.LobbyCode == "" {
		return
	}
	var joined protocol.JoinedGame
	if err := json.Unmarshal(data, &joined); err != nil {
		return
	}
	// The session's claimed name is authoritative, not the payload's.
	joined.Username = s.Username

	lob, allIn, ok := r.lobbies.RecordJoinedGame(s.LobbyCode, s.Username, joined.X, joined.Y)
	if !ok {
		return
	}
	r.notify.ToLobbyExcept(s.LobbyCode, s.ID, protocol.Message{Event: protocol.PlayerPosition, Data: joined})
	if allIn {
		r.notify.ToLobby(s.LobbyCode, protocol.Message{Event: protocol.AllPlayersJoined, Data: lob})
	}
}

func (r *Router) handlePlayerMoved(s *Session, data json.RawMessage) {
	if s.LobbyCode == "" {
		return
	}
	var mv protocol.Movement
	if err := json.Unmarshal(data, &mv); err != nil {
		return
	}
	mv.Username = s.Username

	if !r.lobbies.ApplyMovement(s.LobbyCode, s.Username, mv.X, mv.Y, mv.VelocityX, mv.VelocityY, mv.Timestamp) {
		return // stale or unknown; never relayed
	}
	r.notify.ToLobbyExcept(s.LobbyCode, s.ID, protocol.Message{Event: protocol.PlayerMoved, Data: mv})
}

// Disconnect runs the cleanup cascade for a closed connection. Every step is
// idempotent: a session may drop before claiming a name or entering a lobby,
// and each cleanup must still run.
func (r *Router) Disconnect(s *Session) {
	r.leaveCurrentLobby(s)
	if s.Username != "" {
		r.names.Release(s.Username)
		s.Username = ""
		r.broadcastOnlinePlayers()
	}
}

// leaveCurrentLobby removes the session from its lobby, if any, broadcasting
// the updated lobby to remaining members (reflecting host promotion) and the
// refreshed lobby list globally. Shared by disconnect and by create/join,
// so switching lobbies never leaves a stale membership behind.
func (r *Router) leaveCurrentLobby(s *Session) {
	if s.LobbyCode == "" {
		return
	}
	code := s.LobbyCode
	s.LobbyCode = ""
	r.notify.LeaveRoom(code, s.ID)

	res := r.lobbies.RemoveMember(code, s.Username)
	if !res.Found {
		return
	}
	if res.Deleted {
		r.feed.Publish(code, history.EventLobbyDeleted, s.Username)
	} else {
		r.notify.ToLobby(code, protocol.Message{Event: protocol.LobbyUpdate, Data: res.Lobby})
	}
	r.broadcastLobbies()
}

func (r *Router) broadcastOnlinePlayers() {
	r.notify.ToAll(protocol.Message{Event: protocol.UpdateOnlinePlayers, Data: r.names.Snapshot()})
}

func (r *Router) broadcastLobbies() {
	r.notify.ToAll(protocol.Message{Event: protocol.LobbiesList, Data: r.lobbies.List()})
}
