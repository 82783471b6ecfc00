// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/demirse/duelgrid/internal/broadcast"
	"github.com/demirse/duelgrid/internal/protocol"
	"github.com/demirse/duelgrid/internal/session"
)

// writeTimeout bounds a single outbound frame write.
const writeTimeout = 5 * time.Second

// WSHandler upgrades the connection and runs it until disconnect. Each
// connection gets a session, a registration in the hub, a write pump
// goroutine, and a blocking read loop; when the read loop exits the
// disconnect cascade runs regardless of how far the client got.
func WSHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			s.Log.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exit")

		sess := session.New()
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		conn := broadcast.NewConn(sess.ID, cancel)
		s.Hub.Register(conn)

		s.Log.WithFields(logrus.Fields{
			"session": sess.ID,
			"remote":  r.RemoteAddr,
		}).Info("WebSocket connected")

		go writePump(ctx, c, conn, s)

		readPump(ctx, c, sess, s)

		// Cleanup after readPump exits: hub first so the dead connection
		// receives none of its own disconnect broadcasts.
		s.Hub.Unregister(sess.ID)
		s.Router.Disconnect(sess)

		s.Log.WithFields(logrus.Fields{
			"session": sess.ID,
			"remote":  r.RemoteAddr,
		}).Info("WebSocket disconnected")
	}
}

// readPump decodes inbound envelopes and dispatches them until the
// connection closes or the context is cancelled.
func readPump(ctx context.Context, c *websocket.Conn, sess *session.Session, s *Server) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return
			}
			if strings.Contains(err.Error(), "context canceled") {
				return
			}
			s.Log.Warnf("session %s: read error: %v", sess.ID, err)
			return
		}
		if typ != websocket.MessageText {
			s.Log.Warnf("session %s: ignoring non-text message type %d", sess.ID, typ)
			continue
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.Log.Warnf("session %s: invalid json: %v", sess.ID, err)
			continue
		}
		s.Router.Dispatch(sess, env)
	}
}

// writePump drains the session's outbound queue and pings the client every
// PingInterval. A ping with no pong inside PongTimeout means the client is
// gone; the pump exits and the read side unwinds into the disconnect path.
func writePump(ctx context.Context, c *websocket.Conn, conn *broadcast.Conn, s *Server) {
	ticker := time.NewTicker(s.Cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-conn.Out:
			data, err := json.Marshal(msg)
			if err != nil {
				s.Log.Warnf("session %s: failed to marshal %s: %v", conn.ID, msg.Event, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.Log.Warnf("session %s: write failed: %v", conn.ID, err)
				c.Close(websocket.StatusGoingAway, "write failed")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, s.Cfg.PongTimeout)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.Log.Warnf("session %s: ping failed, assuming disconnect: %v", conn.ID, err)
				c.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}
