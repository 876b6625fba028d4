package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/VADemon/archive/internal/api"
	"github.com/VADemon/archive/internal/config"
	"github.com/VADemon/archive/internal/eventbus"
	"github.com/VADemon/archive/internal/objectstore"
	"github.com/VADemon/archive/internal/repository"
	"github.com/VADemon/archive/internal/tracker"
)

// BuildCommit is set at build time via -ldflags.
var BuildCommit = "dev"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Initializing archive swarm tracker (build %s)...", BuildCommit)
	log.Printf("DB: %s", redactDatabaseURL(cfg.DatabaseURL))
	log.Printf("Listen: %s", cfg.ListenAddr)
	log.Printf("Bucket: %s (%s)", cfg.S3.Bucket, cfg.S3.Region)

	repo, err := repository.NewRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer repo.Close()

	// Auto-migration (skip with SKIP_MIGRATION=true when another instance owns the schema)
	if os.Getenv("SKIP_MIGRATION") == "true" {
		log.Println("Database migration SKIPPED (SKIP_MIGRATION=true)")
	} else {
		log.Println("Running database migration...")
		if err := repo.Migrate(cfg.SchemaPath); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration complete.")
	}

	// With zero finished batches every dispatch hands out unverified work,
	// so declared sizes are accepted without a reference to check against.
	if finished, err := repo.FinishedBatchCount(context.Background()); err != nil {
		log.Printf("Warning: cannot count finished batches: %v", err)
	} else if finished == 0 {
		log.Println("Warning: no finished batches yet; size verification is inactive until the first finalization")
	}

	objects, err := objectstore.NewClient(cfg.S3, time.Duration(cfg.UploadURLTTLMin)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to build object store client: %v", err)
	}

	bus := eventbus.New()
	defer bus.Close()

	trk := tracker.New(repo, objects, cfg.ContentThreshold, tracker.WithBus(bus))

	apiServer := api.NewServer(trk, cfg.ListenAddr,
		api.WithAdminSecret(cfg.AdminJWTSecret),
		api.WithEventBus(bus),
		api.WithStatsCacheTTL(time.Duration(cfg.StatsCacheTTLSec)*time.Second),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""

	var redirectServer *http.Server
	if useTLS {
		// Port 80 answers every request with a permanent redirect so workers
		// holding plain http:// tracker URLs land on the TLS listener.
		_, tlsPort, _ := net.SplitHostPort(cfg.ListenAddr)
		redirectServer = &http.Server{
			Addr: ":80",
			Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				host := r.Host
				if h, _, err := net.SplitHostPort(host); err == nil {
					host = h
				}
				target := "https://" + host
				if tlsPort != "" && tlsPort != "443" {
					target += ":" + tlsPort
				}
				target += r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusMovedPermanently)
			}),
		}
		go func() {
			if err := redirectServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP redirect listener failed: %v", err)
			}
		}()
	}

	go func() {
		if useTLS {
			log.Printf("Starting API server on %s (TLS)", cfg.ListenAddr)
			if err := apiServer.StartTLS(cfg.TLSCertFile, cfg.TLSKeyFile); err != nil && err != http.ErrServerClosed {
				log.Fatalf("API server failed: %v", err)
			}
			return
		}
		log.Printf("Starting API server on %s", cfg.ListenAddr)
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if redirectServer != nil {
		redirectServer.Shutdown(shutdownCtx)
	}
	apiServer.Shutdown(shutdownCtx)
}

func redactDatabaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		if u.User != nil {
			user := u.User.Username()
			if user == "" {
				user = "user"
			}
			u.User = url.UserPassword(user, "****")
		}
		// Avoid leaking secrets embedded in query params; keep only scheme/host/path for debugging.
		u.RawQuery = ""
		return u.String()
	}

	// Best-effort fallback for malformed/DSN-like URLs.
	re := regexp.MustCompile(`(?i)(postgres(?:ql)?://[^:/?#]+):([^@]+)@`)
	if re.MatchString(raw) {
		return re.ReplaceAllString(raw, `$1:****@`)
	}
	re = regexp.MustCompile(`(?i)(password=)([^\s]+)`)
	return re.ReplaceAllString(raw, `$1****`)
}
