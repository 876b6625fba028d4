package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeTempConfig(t, `
database_url: postgres://tracker:pw@localhost:5432/tracker
listen_addr: ":9090"
content_threshold: 0.1
s3:
  access_key: AK
  secret_key: SK
  region: eu-central-1
  bucket: archive
  endpoint: example-store.com
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.ListenAddr)
	}
	if cfg.ContentThreshold != 0.1 {
		t.Errorf("expected threshold 0.1, got %v", cfg.ContentThreshold)
	}
	if cfg.S3.Bucket != "archive" || cfg.S3.Endpoint != "example-store.com" {
		t.Errorf("unexpected s3 config: %+v", cfg.S3)
	}
	if cfg.SchemaPath != "schema.sql" {
		t.Errorf("expected default schema path, got %s", cfg.SchemaPath)
	}
	if cfg.UploadURLTTLMin != 60 {
		t.Errorf("expected default upload TTL 60, got %d", cfg.UploadURLTTLMin)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env:pw@db/tracker")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_BUCKET", "swarm")
	t.Setenv("S3_ENDPOINT", "store.example.org")
	t.Setenv("CONTENT_THRESHOLD", "0.2")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env:pw@db/tracker" {
		t.Errorf("env override not applied: %s", cfg.DatabaseURL)
	}
	if cfg.ContentThreshold != 0.2 {
		t.Errorf("expected threshold 0.2, got %v", cfg.ContentThreshold)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTempConfig(t, `
database_url: postgres://file:pw@db/tracker
s3:
  region: eu-central-1
  bucket: archive
  endpoint: example-store.com
`)
	t.Setenv("DATABASE_URL", "postgres://env:pw@db/tracker")
	t.Setenv("S3_BUCKET", "override")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env:pw@db/tracker" {
		t.Errorf("expected env DSN to win, got %s", cfg.DatabaseURL)
	}
	if cfg.S3.Bucket != "override" {
		t.Errorf("expected env bucket to win, got %s", cfg.S3.Bucket)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DatabaseURL:      "postgres://t@db/t",
			ContentThreshold: 0.05,
			S3:               S3{Region: "r", Bucket: "b", Endpoint: "e"},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dsn", func(c *Config) { c.DatabaseURL = "" }},
		{"threshold zero", func(c *Config) { c.ContentThreshold = 0 }},
		{"threshold one", func(c *Config) { c.ContentThreshold = 1 }},
		{"threshold negative", func(c *Config) { c.ContentThreshold = -0.1 }},
		{"missing bucket", func(c *Config) { c.S3.Bucket = "" }},
		{"cert without key", func(c *Config) { c.TLSCertFile = "cert.pem" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
