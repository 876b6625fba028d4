package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/VADemon/archive/internal/tracker"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders the protocol error envelope. batch_id is attached only
// when non-empty; codes 4 and 8 go through writeProtocolError instead, which
// always includes it.
func writeError(w http.ResponseWriter, status, code int, message, batchID string) {
	resp := map[string]interface{}{
		"error":      message,
		"error_code": code,
	}
	if batchID != "" {
		resp["batch_id"] = batchID
	}
	writeJSON(w, status, resp)
}

func writeProtocolError(w http.ResponseWriter, perr *tracker.ProtocolError) {
	resp := map[string]interface{}{
		"error":      perr.Message,
		"error_code": perr.Code,
	}
	// Workers resolve these two by re-reading the batch id, so the field is
	// present even when it is empty.
	if perr.Code == tracker.CodeMustCommitCurrent || perr.Code == tracker.CodeSizeMismatch {
		resp["batch_id"] = perr.BatchID
	}
	writeJSON(w, http.StatusForbidden, resp)
}

// writeTrackerError maps a tracker failure onto the wire: rule violations
// become the 403 envelope, everything else is a server fault.
func writeTrackerError(w http.ResponseWriter, err error) {
	var perr *tracker.ProtocolError
	if errors.As(err, &perr) {
		writeProtocolError(w, perr)
		return
	}
	log.Printf("[api] request failed: %v", err)
	writeError(w, http.StatusInternalServerError, 500, err.Error(), "")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusInternalServerError, 500, "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}

// handleNotFound and handleMethodNotAllowed run outside the router
// middleware, so they set their own headers.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusNotFound, 404, "not found", "")
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusMethodNotAllowed, 405, "method not allowed", "")
}

func parseLimitOffset(r *http.Request) (int, int) {
	limit := 20
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
