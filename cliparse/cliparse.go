package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLen = 32

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	CookieSecret string
	BaseURL      string

	GoogleCredentialsFile string
	GoogleCredentials     string

	// CORSOrigins are extra browser origins allowed alongside BaseURL
	CORSOrigins []string

	RateLimit  string
	SessionTTL time.Duration
	LogLevel   string
}

// SecureCookies reports whether cookies should carry the Secure flag
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// AllowedOrigins lists the origins that may call the API with cookies
func (c Config) AllowedOrigins() []string {
	return append([]string{c.BaseURL}, c.CORSOrigins...)
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, sessionTTL, corsOrigins string

	fs := flag.NewFlagSet("roodle", flag.ContinueOnError)

	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public URL of the app")
	fs.StringVar(&corsOrigins, "cors-origins", "", "Extra allowed origins, comma separated")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.CookieSecret, "cookie-secret", "", "Cookie signing secret (prefer env)")
	fs.StringVar(&cfg.GoogleCredentialsFile, "google-credentials", "", "Path to Google OAuth credentials JSON")

	fs.StringVar(&cfg.RateLimit, "rate", "", "Rate limit, e.g. 10000-H")
	fs.StringVar(&sessionTTL, "session-ttl", "", "Session lifetime, e.g. 720h")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already in the environment win over the file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 8080 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if corsOrigins == "" {
		corsOrigins = os.Getenv("CORS_ORIGINS")
	}
	for _, origin := range strings.Split(corsOrigins, ",") {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	// Secrets - MUST be provided
	if cfg.CookieSecret == "" {
		cfg.CookieSecret = os.Getenv("COOKIE_SECRET")
	}
	if len(cfg.CookieSecret) < minSecretLen {
		return Config{}, fmt.Errorf("COOKIE_SECRET required (at least %d bytes)", minSecretLen)
	}

	if cfg.GoogleCredentialsFile == "" {
		cfg.GoogleCredentialsFile = os.Getenv("OAUTH2_GOOGLE_CREDENTIALS_FILE")
	}
	cfg.GoogleCredentials = os.Getenv("OAUTH2_GOOGLE_CREDENTIALS_CONTENTS")
	if cfg.GoogleCredentialsFile == "" && cfg.GoogleCredentials == "" {
		return Config{}, errors.New("OAUTH2_GOOGLE_CREDENTIALS_FILE or OAUTH2_GOOGLE_CREDENTIALS_CONTENTS required")
	}

	if cfg.RateLimit == "" {
		cfg.RateLimit = envOr("RATE_LIMIT", "10000-H")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}

	if sessionTTL == "" {
		sessionTTL = envOr("SESSION_TTL", "720h")
	}
	ttl, err := time.ParseDuration(sessionTTL)
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid session TTL %q", sessionTTL)
	}
	cfg.SessionTTL = ttl

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
