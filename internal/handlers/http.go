// internal/handlers/http.go
package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

// ListLobbiesHandler returns the current lobby-list snapshot as JSON. This
// mirrors the lobbiesList socket event for dashboards and debugging.
func ListLobbiesHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.Lobbies.List())
	}
}

// HealthHandler is a trivial liveness probe.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

// SPAHandler serves the built client bundle, falling back to index.html for
// any path that is not a file on disk so client-side routes resolve.
type SPAHandler struct {
	StaticDir string
}

func (h SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.StaticDir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.StaticDir, "index.html"))
		return
	}
	http.FileServer(http.Dir(h.StaticDir)).ServeHTTP(w, r)
}
