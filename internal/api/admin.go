package api

import (
	"encoding/json"
	"net/http"

	"github.com/VADemon/archive/internal/models"

	"github.com/gorilla/mux"
)

// Operator endpoints. The verifier penalizes on evidence but never pardons;
// re-enabling a worker and unsticking a binding are human decisions.

func (s *Server) handleAdminListWorkers(w http.ResponseWriter, r *http.Request) {
	onlyDisabled := false
	if q := r.URL.Query().Get("disabled"); q == "1" || q == "true" {
		onlyDisabled = true
	}
	limit, offset := parseLimitOffset(r)

	workers, err := s.tracker.ListWorkers(r.Context(), onlyDisabled, limit, offset)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	if workers == nil {
		workers = []models.Worker{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workers": workers})
}

func (s *Server) handleAdminEnableWorker(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// The body is optional; without it the reputation resets to zero.
	var req struct {
		Reputation int64 `json:"reputation"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	ok, err := s.tracker.EnableWorker(r.Context(), id, req.Reputation)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, 404, "unknown worker", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"worker_id":  id,
		"reputation": req.Reputation,
	})
}

func (s *Server) handleAdminReleaseWorker(w http.ResponseWriter, r *http.Request) {
	ok, err := s.tracker.ForceRelease(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, 404, "unknown worker", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
