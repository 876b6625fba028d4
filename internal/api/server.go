package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/VADemon/archive/internal/eventbus"

	"github.com/gorilla/mux"
)

// Server owns the HTTP surface: routing, shared middleware, the stats
// response cache and the live-feed hub.
type Server struct {
	tracker     Coordinator
	bus         *eventbus.Bus
	hub         *Hub
	httpServer  *http.Server
	adminSecret string
	statsTTL    time.Duration
	statsCache  struct {
		mu        sync.Mutex
		payload   []byte
		expiresAt time.Time
	}
}

// WithAdminSecret enables the operator endpoints under /api/admin. They stay
// unregistered when no secret is configured.
func WithAdminSecret(secret string) func(*Server) {
	return func(s *Server) { s.adminSecret = secret }
}

// WithEventBus connects the live feed to the tracker's event bus.
func WithEventBus(bus *eventbus.Bus) func(*Server) {
	return func(s *Server) { s.bus = bus }
}

// WithStatsCacheTTL overrides how long a /api/stats response is reused.
func WithStatsCacheTTL(ttl time.Duration) func(*Server) {
	return func(s *Server) { s.statsTTL = ttl }
}

func NewServer(trk Coordinator, addr string, opts ...func(*Server)) *Server {
	s := &Server{
		tracker:  trk,
		hub:      newHub(),
		statsTTL: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.hub.run()
	if s.bus != nil {
		s.subscribeFeed(s.bus)
	}

	r := mux.NewRouter()
	r.Use(commonMiddleware)
	r.Use(rateLimitMiddleware)

	registerRoutes(r, s)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: r,
	}

	return s
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) StartTLS(certFile, keyFile string) error {
	return s.httpServer.ListenAndServeTLS(certFile, keyFile)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
