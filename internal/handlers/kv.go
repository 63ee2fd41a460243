package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// setValueRequest is the key/value write payload.
type setValueRequest struct {
	Value string `json:"value"`
}

// listKeys returns every key visible through the storage shim
func (r *Router) listKeys(w http.ResponseWriter, req *http.Request) {
	keys, err := r.shim.GetAllKeys(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list keys")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(keys),
		"keys":  keys,
	})
}

// getValue reads one key. A missing key is 404; a key that only survives
// in local fallback storage still reads back here.
func (r *Router) getValue(w http.ResponseWriter, req *http.Request) {
	key := mux.Vars(req)["key"]

	value, found, err := r.shim.GetItem(req.Context(), key)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read value")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "Key not found: "+key)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"key":   key,
		"value": value,
	})
}

// setValue writes one key through the shim's fallback chain
func (r *Router) setValue(w http.ResponseWriter, req *http.Request) {
	key := mux.Vars(req)["key"]

	var body setValueRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := r.shim.SetItem(req.Context(), key, body.Value); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to write value")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "saved",
		"key":    key,
	})
}

// deleteValue removes one key from every tier
func (r *Router) deleteValue(w http.ResponseWriter, req *http.Request) {
	key := mux.Vars(req)["key"]

	if err := r.shim.RemoveItem(req.Context(), key); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete value")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"key":    key,
	})
}
