// internal/broadcast/hub.go
package broadcast

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/demirse/duelgrid/internal/protocol"
)

// outBufferSize is the per-connection outbound queue depth. Movement relays
// are small and frequent; the write pump should drain far faster than this.
const outBufferSize = 32

// Conn is one registered connection's outbound side. The write pump owns the
// receiving end of Out; Cancel tears down the connection's goroutines.
type Conn struct {
	ID     uuid.UUID
	Out    chan protocol.Message
	Cancel func()
}

// NewConn builds a connection with the standard outbound buffer.
func NewConn(id uuid.UUID, cancel func()) *Conn {
	return &Conn{
		ID:     id,
		Out:    make(chan protocol.Message, outBufferSize),
		Cancel: cancel,
	}
}

// Write pushes msg onto the connection's queue without blocking. When the
// queue is full or closed the message is dropped and logged; a slow client
// must never stall the event path.
func (c *Conn) Write(log *logrus.Logger, msg protocol.Message) {
	select {
	case c.Out <- msg:
	default:
		log.WithFields(logrus.Fields{
			"session": c.ID,
			"event":   msg.Event,
		}).Warn("outbound queue full, dropped message")
	}
}

// Hub delivers messages to single connections, to all members of one lobby
// room, or to every connection globally. Room membership mirrors lobby
// membership and is maintained by the session router.
type Hub struct {
	mu    sync.Mutex
	log   *logrus.Logger
	conns map[uuid.UUID]*Conn
	rooms map[string]map[uuid.UUID]struct{}
}

// NewHub returns an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		log:   log,
		conns: make(map[uuid.UUID]*Conn),
		rooms: make(map[string]map[uuid.UUID]struct{}),
	}
}

// Register adds a live connection to the hub.
func (h *Hub) Register(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID] = c
}

// Unregister removes the connection and drops it from any rooms. The write
// pump is stopped through Cancel rather than by closing Out, so a fan-out
// that raced with the unregister can never hit a closed channel.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	c, ok := h.conns[id]
	if ok {
		delete(h.conns, id)
		for code, members := range h.rooms {
			delete(members, id)
			if len(members) == 0 {
				delete(h.rooms, code)
			}
		}
	}
	h.mu.Unlock()
	if ok && c.Cancel != nil {
		c.Cancel()
	}
}

// JoinRoom adds the connection to the room for a lobby code.
func (h *Hub) JoinRoom(code string, id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		h.rooms[code] = members
	}
	members[id] = struct{}{}
}

// LeaveRoom removes the connection from the room for a lobby code.
func (h *Hub) LeaveRoom(code string, id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, code)
	}
}

// ToSession sends msg to one connection, if still registered.
func (h *Hub) ToSession(id uuid.UUID, msg protocol.Message) {
	h.mu.Lock()
	c, ok := h.conns[id]
	h.mu.Unlock()
	if ok {
		c.Write(h.log, msg)
	}
}

// ToLobby sends msg to every member of the room for code.
func (h *Hub) ToLobby(code string, msg protocol.Message) {
	for _, c := range h.roomConns(code, uuid.Nil) {
		c.Write(h.log, msg)
	}
}

// ToLobbyExcept sends msg to every room member except the sender. This is
// the fan-out used for movement relays.
func (h *Hub) ToLobbyExcept(code string, except uuid.UUID, msg protocol.Message) {
	for _, c := range h.roomConns(code, except) {
		c.Write(h.log, msg)
	}
}

// ToAll sends msg to every registered connection.
func (h *Hub) ToAll(msg protocol.Message) {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.Write(h.log, msg)
	}
}

// roomConns snapshots the room's connections under the lock so sends happen
// outside it.
func (h *Hub) roomConns(code string, except uuid.UUID) []*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[code]
	if !ok {
		return nil
	}
	conns := make([]*Conn, 0, len(members))
	for id := range members {
		if id == except {
			continue
		}
		if c, ok := h.conns[id]; ok {
			conns = append(conns, c)
		}
	}
	return conns
}
