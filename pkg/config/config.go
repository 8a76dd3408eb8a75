// Package config loads typed configuration for ldpcore services from the
// environment, an optional .env file, and an optional static YAML document.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process-wide configuration for a service built on ldpcore.
type Config struct {
	Service struct {
		Name     string `env:"SERVICE_NAME,default=ldpcore"`
		LogLevel string `env:"LOG_LEVEL,default=info"`
		LogFormat string `env:"LOG_FORMAT,default=json"`
		// StoreBackend selects the persistence layer: "memory" or "postgres".
		StoreBackend string `env:"STORE_BACKEND,default=memory"`
		// EventBus selects the event transport: "inprocess", "websocket", or "redis".
		EventBus string `env:"EVENT_BUS,default=inprocess"`
		// NamespaceDocumentPath points at the optional static YAML document of
		// namespace prefixes and administrator IRIs; empty disables it.
		NamespaceDocumentPath string `env:"NAMESPACE_DOCUMENT_PATH,default="`
	}

	HTTP struct {
		Addr    string `env:"HTTP_ADDR,default=:8080"`
		BaseIRI string `env:"BASE_IRI,default=http://localhost:8080/"`
	}

	Postgres struct {
		DSN             string `env:"POSTGRES_DSN,default=postgres://localhost:5432/ldpcore?sslmode=disable"`
		MigrationsPath  string `env:"POSTGRES_MIGRATIONS_PATH,default=internal/store/migrations"`
		MaxOpenConns    int    `env:"POSTGRES_MAX_OPEN_CONNS,default=10"`
	}

	Redis struct {
		Addr string `env:"REDIS_ADDR,default=localhost:6379"`
		DB   int    `env:"REDIS_DB,default=0"`
	}

	Binary struct {
		RootPath             string   `env:"BINARY_ROOT_PATH,default=./data/binaries"`
		SupportedAlgorithms  []string `env:"BINARY_DIGEST_ALGORITHMS,default=MD5;SHA-1;SHA-256"`
	}

	// NamespacePrefixes and AdministratorIRIs are not practically settable via
	// a single environment variable and are instead loaded from an optional
	// static YAML document; see LoadNamespaceDocument.
	Namespace NamespaceDocument
}

// NamespaceDocument is the static YAML document format for namespace prefix
// maps and the administrator IRI allowlist consulted by the authorization
// engine's administrator override.
type NamespaceDocument struct {
	Prefixes        map[string]string `yaml:"prefixes"`
	AdministratorIRIs []string        `yaml:"administratorIRIs"`
}

// Load reads a .env file if present (ignored if absent), then decodes the
// environment into a Config using struct tags.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("config: decode environment: %w", err)
	}
	cfg.Binary.SupportedAlgorithms = splitSemicolon(envOr("BINARY_DIGEST_ALGORITHMS", strings.Join(cfg.Binary.SupportedAlgorithms, ";")))
	return &cfg, nil
}

// LoadNamespaceDocument reads the static YAML document of namespace prefixes
// and administrator IRIs from path and attaches it to cfg.
func (c *Config) LoadNamespaceDocument(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read namespace document: %w", err)
	}
	var doc NamespaceDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: parse namespace document: %w", err)
	}
	c.Namespace = doc
	return nil
}

// IsAdministrator reports whether agentIRI appears in the administrator
// allowlist loaded from the namespace document.
func (c *Config) IsAdministrator(agentIRI string) bool {
	for _, iri := range c.Namespace.AdministratorIRIs {
		if iri == agentIRI {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitSemicolon(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
