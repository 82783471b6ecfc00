// cmd/server/main.go
package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/demirse/duelgrid/internal/config"
	"github.com/demirse/duelgrid/internal/handlers"
	"github.com/demirse/duelgrid/internal/history"
	"github.com/demirse/duelgrid/internal/middleware"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	var feed *history.Publisher
	if cfg.RedisAddr != "" {
		var err error
		feed, err = history.Connect(cfg.RedisAddr, cfg.RedisDB, cfg.HistoryQueue, logger)
		if err != nil {
			logger.Warnf("lobby event feed disabled: %v", err)
		} else {
			defer feed.Close()
		}
	}

	srv := handlers.NewServer(cfg, logger, feed)

	r := mux.NewRouter()
	r.HandleFunc("/ws", handlers.WSHandler(srv))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.LogMiddleware(logger))
	api.HandleFunc("/lobbies", handlers.ListLobbiesHandler(srv)).Methods("GET")

	r.HandleFunc("/healthz", handlers.HealthHandler()).Methods("GET")
	r.PathPrefix("/").Handler(handlers.SPAHandler{StaticDir: cfg.StaticDir})

	logger.Infof("Running on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
