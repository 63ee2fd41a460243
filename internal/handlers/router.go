// Package handlers exposes the HTTP API: collection reads, document
// writes, key/value storage, sync status, and auth. Its wire shapes are
// the same ones the REST fallback client consumes, so a privileged node
// can serve as the fallback source for restricted peers.
package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/craftline/pricedeskgo/internal/config"
	"github.com/craftline/pricedeskgo/internal/database"
	"github.com/craftline/pricedeskgo/internal/middleware"
	"github.com/craftline/pricedeskgo/internal/storage"
	syncpkg "github.com/craftline/pricedeskgo/internal/sync"
	"github.com/craftline/pricedeskgo/internal/websocket"
	"github.com/gorilla/mux"
)

// Router wraps the mux router and the application services
type Router struct {
	*mux.Router
	db       *database.DB
	cfg      *config.Config
	orch     *syncpkg.Orchestrator
	resolver *syncpkg.Resolver
	shim     *storage.Shim
	hub      *websocket.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, orch *syncpkg.Orchestrator, resolver *syncpkg.Resolver, shim *storage.Shim, hub *websocket.Hub) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       db,
		cfg:      cfg,
		orch:     orch,
		resolver: resolver,
		shim:     shim,
		hub:      hub,
	}

	authRequired := middleware.Auth(cfg.JWTSecret)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// WebSocket endpoint for data-change notifications
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(hub, w, req)
	})

	// API routes. Fixed paths are registered before the {collection}
	// catch-all so "status" or "kv" is never read as a collection name.
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")
	api.HandleFunc("/errors", r.getErrors).Methods("GET")

	api.HandleFunc("/kv", r.listKeys).Methods("GET")
	api.HandleFunc("/kv/{key}", r.getValue).Methods("GET")
	api.Handle("/kv/{key}", authRequired(http.HandlerFunc(r.setValue))).Methods("PUT")
	api.Handle("/kv/{key}", authRequired(http.HandlerFunc(r.deleteValue))).Methods("DELETE")

	api.Handle("/sync/refresh", authRequired(http.HandlerFunc(r.refresh))).Methods("POST")

	api.HandleFunc("/{collection}", r.listCollection).Methods("GET")
	api.Handle("/{collection}", authRequired(http.HandlerFunc(r.writeDocument))).Methods("POST")
	api.Handle("/{collection}/{id}", authRequired(http.HandlerFunc(r.deleteDocument))).Methods("DELETE")

	// Static frontend, if one is deployed alongside the API
	if publicDir := os.Getenv("FRONTEND_DIR"); publicDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(publicDir)))
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"context": string(r.cfg.Context),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
