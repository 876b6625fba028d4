package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/VADemon/archive/internal/models"

	"github.com/gorilla/mux"
)

// Enrollment and recovery listing key off the remote address; everything
// else identifies the worker by the id in the request body.

func (s *Server) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	workerID, uploadBaseURL, err := s.tracker.Enroll(r.Context(), clientIP(r))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"worker_id": workerID,
		"s3_url":    uploadBaseURL,
	})
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	ids, err := s.tracker.WorkersForIP(r.Context(), clientIP(r))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"workers": ids})
}

func (s *Server) handleDispatchBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID string `json:"worker_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	batch, err := s.tracker.Dispatch(r.Context(), req.WorkerID)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeBatch(w, batch)
}

func (s *Server) handleRefetchBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID string `json:"worker_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	batch, err := s.tracker.RefetchBatch(r.Context(), req.WorkerID, mux.Vars(r)["id"])
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeBatch(w, batch)
}

func writeBatch(w http.ResponseWriter, batch *models.Batch) {
	objects := batch.Videos
	if objects == nil {
		objects = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": batch.ID,
		"objects":  objects,
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID    string `json:"worker_id"`
		BatchID     string `json:"batch_id"`
		ContentSize int64  `json:"content_size"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	uploadURL, err := s.tracker.Commit(r.Context(), req.WorkerID, req.BatchID, req.ContentSize)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	// An empty upload_url means the declared size matched the recorded one
	// and there is nothing to upload.
	writeJSON(w, http.StatusOK, map[string]interface{}{"upload_url": uploadURL})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID string `json:"worker_id"`
		BatchID  string `json:"batch_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.tracker.Finalize(r.Context(), req.WorkerID, req.BatchID); err != nil {
		writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.statsCache.mu.Lock()
	if now.Before(s.statsCache.expiresAt) && len(s.statsCache.payload) > 0 {
		cached := append([]byte(nil), s.statsCache.payload...)
		s.statsCache.mu.Unlock()
		w.Write(cached)
		return
	}
	s.statsCache.mu.Unlock()

	stats, err := s.tracker.Stats(r.Context())
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		writeError(w, http.StatusInternalServerError, 500, err.Error(), "")
		return
	}

	s.statsCache.mu.Lock()
	s.statsCache.payload = payload
	s.statsCache.expiresAt = time.Now().Add(s.statsTTL)
	s.statsCache.mu.Unlock()

	w.Write(payload)
}
