// internal/handlers/server.go
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/demirse/duelgrid/internal/broadcast"
	"github.com/demirse/duelgrid/internal/config"
	"github.com/demirse/duelgrid/internal/history"
	"github.com/demirse/duelgrid/internal/identity"
	"github.com/demirse/duelgrid/internal/lobby"
	"github.com/demirse/duelgrid/internal/session"
)

// Server bundles the in-memory coordinator: claimed names, active lobbies,
// the broadcast hub and the event router. All state is empty at process
// start and lost at shutdown.
type Server struct {
	Log     *logrus.Logger
	Cfg     config.Config
	Hub     *broadcast.Hub
	Names   *identity.Registry
	Lobbies *lobby.Store
	Router  *session.Router
}

// NewServer constructs and wires the coordinator. feed may be nil when the
// lobby event feed is not configured.
func NewServer(cfg config.Config, log *logrus.Logger, feed *history.Publisher) *Server {
	hub := broadcast.NewHub(log)
	names := identity.NewRegistry()
	lobbies := lobby.NewStore(log)
	return &Server{
		Log:     log,
		Cfg:     cfg,
		Hub:     hub,
		Names:   names,
		Lobbies: lobbies,
		Router:  session.NewRouter(log, names, lobbies, hub, feed),
	}
}
