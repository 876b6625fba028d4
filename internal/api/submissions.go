package api

import (
	"net/http"

	"github.com/VADemon/archive/internal/models"
)

// Community submission endpoints. The tracker filters identifier shapes and
// deduplicates; the response lists exactly the ids that were staged.

func (s *Server) handleSubmitVideos(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Videos []string `json:"videos"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.stageSubmission(w, r, models.SubmissionVideos, req.Videos)
}

func (s *Server) handleSubmitPlaylists(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Playlists []string `json:"playlists"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.stageSubmission(w, r, models.SubmissionPlaylists, req.Playlists)
}

func (s *Server) handleSubmitChannels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Channels []string `json:"channels"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.stageSubmission(w, r, models.SubmissionChannels, req.Channels)
}

func (s *Server) stageSubmission(w http.ResponseWriter, r *http.Request, kind models.SubmissionKind, ids []string) {
	inserted, err := s.tracker.Submit(r.Context(), kind, ids)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	if inserted == nil {
		inserted = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"inserted": inserted})
}
