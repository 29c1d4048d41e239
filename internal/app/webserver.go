package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vk/jobgraph/internal/coordinator"
	"github.com/vk/jobgraph/internal/transport/socketio"
)

// healthHandler reports that the process is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// workersHandler lists the registered workers and their load.
func (a *App) workersHandler(c *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.logger.Debug("Workers endpoint hit.", "remote_addr", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(c.Workers()); err != nil {
			a.logger.Error("Failed to encode worker list.", "error", err)
		}
	}
}

// coordinatorMux routes the socket.io endpoint and the status endpoints.
func (a *App) coordinatorMux(srv *socketio.Server, c *coordinator.Coordinator) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(socketio.Path, srv.Handler())
	mux.HandleFunc("/healthz", a.healthHandler)
	mux.HandleFunc("/workers", a.workersHandler(c))
	return mux
}
