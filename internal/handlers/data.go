package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/craftline/pricedeskgo/internal/models"
	"github.com/craftline/pricedeskgo/internal/store"
	syncpkg "github.com/craftline/pricedeskgo/internal/sync"
	"github.com/gorilla/mux"
)

// CollectionResponse is the list payload. The REST fallback client parses
// exactly this shape, so field names here are part of the sync protocol.
type CollectionResponse struct {
	Collection string          `json:"collection"`
	Count      int             `json:"count"`
	Records    []models.Record `json:"records"`
}

// WriteDocumentRequest is the document write payload.
type WriteDocumentRequest struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

// listCollection returns every record of a primary or derived collection
func (r *Router) listCollection(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["collection"]

	records, err := r.orch.GetData(req.Context(), name)
	if err != nil {
		if errors.Is(err, syncpkg.ErrNotReady) {
			respondError(w, http.StatusServiceUnavailable, "Data not ready yet")
			return
		}
		respondError(w, http.StatusNotFound, "Unknown collection: "+name)
		return
	}

	respondJSON(w, http.StatusOK, CollectionResponse{
		Collection: name,
		Count:      len(records),
		Records:    records,
	})
}

// writeDocument creates or replaces one document in a primary collection
func (r *Router) writeDocument(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["collection"]
	if !models.KnownCollection(name) {
		respondError(w, http.StatusNotFound, "Unknown collection: "+name)
		return
	}
	if models.IsDerived(name) {
		respondError(w, http.StatusBadRequest, "Collection is derived, write to products instead")
		return
	}

	var body WriteDocumentRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.ID == "" {
		respondError(w, http.StatusBadRequest, "Document id is required")
		return
	}

	if err := r.resolver.SaveDocument(req.Context(), name, body.ID, body.Fields); err != nil {
		if store.IsPermissionDenied(err) {
			respondError(w, http.StatusForbidden, "Writes are not permitted in this context")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to save document")
		return
	}

	r.refreshAfterWrite(name)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "saved",
		"collection": name,
		"id":         body.ID,
	})
}

// deleteDocument removes one document from a primary collection
func (r *Router) deleteDocument(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	name, id := vars["collection"], vars["id"]
	if !models.KnownCollection(name) || models.IsDerived(name) {
		respondError(w, http.StatusNotFound, "Unknown collection: "+name)
		return
	}

	if err := r.resolver.DeleteDocument(req.Context(), name, id); err != nil {
		if store.IsPermissionDenied(err) {
			respondError(w, http.StatusForbidden, "Deletes are not permitted in this context")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	r.refreshAfterWrite(name)
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "deleted",
		"collection": name,
		"id":         id,
	})
}

// refreshAfterWrite reloads a collection off the request path so readers
// and websocket listeners see the new data without waiting on this write.
func (r *Router) refreshAfterWrite(name string) {
	go func() {
		if err := r.orch.Refresh(context.Background(), name); err != nil {
			log.Printf("⚠️ Post-write refresh of %s failed: %v", name, err)
		}
	}()
}
