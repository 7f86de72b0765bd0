package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default values for optional settings. The redirect URL and client app
// origin match the local development setup of the companion SPA.
const (
	DefaultListenAddr      = ":8000"
	DefaultRedirectURL     = "http://localhost:8000/auth/callback"
	DefaultClientAppOrigin = "http://localhost:5173"
	DefaultMetricsAddr     = ":9090"

	// DefaultMaxAttachmentBytes bounds uploaded attachments (25 MiB,
	// the Gmail message size limit).
	DefaultMaxAttachmentBytes = 25 << 20
)

// Credential store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all runtime configuration, sourced from the environment.
type Config struct {
	// OAuth client credentials, required at startup.
	ClientID     string
	ClientSecret string

	// RedirectURL is the OAuth callback URL registered with the provider.
	RedirectURL string

	// ClientAppOrigin is the origin of the single-page client. It is the
	// only origin allowed by CORS and the target of the post-login redirect.
	ClientAppOrigin string

	ListenAddr string

	// CredStore selects the credential store backend: "memory" or "sqlite".
	CredStore  string
	CredDBPath string

	MaxAttachmentBytes int64

	MetricsEnabled bool
	MetricsAddr    string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		ClientID:           getEnvString("CLIENT_ID", ""),
		ClientSecret:       getEnvString("CLIENT_SECRET", ""),
		RedirectURL:        getEnvString("REDIRECT_URL", DefaultRedirectURL),
		ClientAppOrigin:    getEnvString("CLIENT_APP_ORIGIN", DefaultClientAppOrigin),
		ListenAddr:         getEnvString("LISTEN_ADDR", DefaultListenAddr),
		CredStore:          getEnvString("CRED_STORE", StoreMemory),
		CredDBPath:         getEnvString("CRED_DB_PATH", ""),
		MaxAttachmentBytes: getEnvInt64("MAX_ATTACHMENT_BYTES", DefaultMaxAttachmentBytes),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		MetricsAddr:        getEnvString("METRICS_ADDR", DefaultMetricsAddr),
		LogLevel:           getEnvString("LOG_LEVEL", "info"),
		LogFormat:          getEnvString("LOG_FORMAT", "text"),
	}
}

// Validate checks that required settings are present and consistent.
func (c Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("CLIENT_SECRET is required")
	}
	switch c.CredStore {
	case StoreMemory:
	case StoreSQLite:
		if c.CredDBPath == "" {
			return fmt.Errorf("CRED_DB_PATH is required when CRED_STORE is %q", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown credential store backend %q", c.CredStore)
	}
	if c.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must be positive")
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}
