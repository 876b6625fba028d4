package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerRoutes(r *mux.Router, s *Server) {
	r.HandleFunc("/", s.handleLanding).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.HandleFunc("/api/stats", s.handleStats).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/workers", s.handleListWorkers).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/workers/create", s.handleCreateWorker).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/batches", s.handleDispatchBatch).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/batches/{id}", s.handleRefetchBatch).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/commit", s.handleCommit).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/finalize", s.handleFinalize).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/videos/submit", s.handleSubmitVideos).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/playlists/submit", s.handleSubmitPlaylists).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/channels/submit", s.handleSubmitChannels).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/live", s.handleLiveFeed).Methods("GET")

	registerAdminRoutes(r, s)

	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
}

func registerAdminRoutes(r *mux.Router, s *Server) {
	if s.adminSecret == "" {
		return
	}
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(adminAuthMiddleware(s.adminSecret))
	admin.HandleFunc("/workers", s.handleAdminListWorkers).Methods("GET", "OPTIONS")
	admin.HandleFunc("/workers/{id}/enable", s.handleAdminEnableWorker).Methods("POST", "OPTIONS")
	admin.HandleFunc("/workers/{id}/release", s.handleAdminReleaseWorker).Methods("POST", "OPTIONS")
}
