package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// S3 holds the object store location and credentials. Endpoint is the bare
// provider domain; the bucket and region are prepended when building URLs.
type S3 struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
}

type Config struct {
	DatabaseURL      string  `yaml:"database_url"`
	ListenAddr       string  `yaml:"listen_addr"`
	SchemaPath       string  `yaml:"schema_path"`
	ContentThreshold float64 `yaml:"content_threshold"`
	S3               S3      `yaml:"s3"`
	UploadURLTTLMin  int     `yaml:"upload_url_ttl_min"`
	AdminJWTSecret   string  `yaml:"admin_jwt_secret"`
	TLSCertFile      string  `yaml:"tls_cert_file"`
	TLSKeyFile       string  `yaml:"tls_key_file"`
	StatsCacheTTLSec int     `yaml:"stats_cache_ttl_sec"`
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is fine; deployments configure everything via env.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:       ":8080",
		SchemaPath:       "schema.sql",
		ContentThreshold: 0.05,
		UploadURLTTLMin:  60,
		StatsCacheTTLSec: 10,
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	getStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	getInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	getStr("DATABASE_URL", &c.DatabaseURL)
	getStr("LISTEN_ADDR", &c.ListenAddr)
	getStr("SCHEMA_PATH", &c.SchemaPath)
	getStr("S3_ACCESS_KEY", &c.S3.AccessKey)
	getStr("S3_SECRET_KEY", &c.S3.SecretKey)
	getStr("S3_REGION", &c.S3.Region)
	getStr("S3_BUCKET", &c.S3.Bucket)
	getStr("S3_ENDPOINT", &c.S3.Endpoint)
	getStr("ADMIN_JWT_SECRET", &c.AdminJWTSecret)
	getStr("TLS_CERT_FILE", &c.TLSCertFile)
	getStr("TLS_KEY_FILE", &c.TLSKeyFile)

	if v := os.Getenv("CONTENT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ContentThreshold = f
		}
	}
	getInt("UPLOAD_URL_TTL_MIN", &c.UploadURLTTLMin)
	getInt("STATS_CACHE_TTL_SEC", &c.StatsCacheTTLSec)
}

// Validate checks the fields the tracker cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if c.ContentThreshold <= 0 || c.ContentThreshold >= 1 {
		return fmt.Errorf("content_threshold must be in (0, 1), got %v", c.ContentThreshold)
	}
	if c.S3.Bucket == "" || c.S3.Region == "" || c.S3.Endpoint == "" {
		return fmt.Errorf("s3 bucket, region and endpoint are required")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("tls_cert_file and tls_key_file must be set together")
	}
	return nil
}
