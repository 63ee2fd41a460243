package handlers

import (
	"errors"
	"net/http"

	"github.com/craftline/pricedeskgo/internal/buildinfo"
	syncpkg "github.com/craftline/pricedeskgo/internal/sync"
)

// getStatus reports the sync engine state, per-collection cache detail,
// and the resolution context the node booted with
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	status := r.orch.GetStatus()
	status["context"] = string(r.resolver.Mode())
	status["ws_clients"] = r.hub.ClientCount()
	status["started_at"] = buildinfo.StartTime
	status["uptime"] = buildinfo.Uptime().String()
	if buildinfo.CommitHash != "" {
		status["commit"] = buildinfo.CommitHash
	}
	respondJSON(w, http.StatusOK, status)
}

// getErrors returns the rolling log of caught sync errors, newest last
func (r *Router) getErrors(w http.ResponseWriter, req *http.Request) {
	entries := r.resolver.ErrorLog().Entries()
	if entries == nil {
		entries = []syncpkg.ErrorEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(entries),
		"errors": entries,
	})
}

// refresh forces a reload of one collection (?collection=) or all of them
func (r *Router) refresh(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("collection")

	if err := r.orch.Refresh(req.Context(), name); err != nil {
		if errors.Is(err, syncpkg.ErrNotReady) {
			respondError(w, http.StatusServiceUnavailable, "Data not ready yet")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	target := name
	if target == "" {
		target = "all"
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "refreshed",
		"collection": target,
	})
}
