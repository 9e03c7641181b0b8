// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 8080)
  - DatabaseURL: sqlite or PostgreSQL connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - BaseURL: Public URL, used for OAuth redirects and calendar links
  - CORSOrigins: Extra browser origins allowed with cookies (e.g. a dev frontend)
  - CookieSecret: Secret for signing cookies, at least 32 bytes (required)
  - GoogleCredentialsFile / GoogleCredentials: OAuth client (one required)
  - RateLimit: Requests per caller, ulule format (default: 10000-H)
  - SessionTTL: Session lifetime (default: 720h)
  - LogLevel: debug, info, warn, or error (default: info)

# CLI Flags

	-p                   Server port
	-d                   Database URL
	-t                   Database type
	-base-url            Public URL
	-cors-origins        Extra allowed origins, comma separated
	-cookie-secret       Cookie signing secret
	-google-credentials  Google credentials file
	-rate                Rate limit
	-session-ttl         Session lifetime
	-log-level           Log level
	-env-file            Dotenv file (default: .env)

# Environment Variables

Flags fall back to environment variables:

	PORT                               → -p
	DATABASE_URL                       → -d
	DATABASE_TYPE                      → -t
	BASE_URL                           → -base-url
	CORS_ORIGINS                       → -cors-origins
	COOKIE_SECRET                      → -cookie-secret
	OAUTH2_GOOGLE_CREDENTIALS_FILE     → -google-credentials
	OAUTH2_GOOGLE_CREDENTIALS_CONTENTS (env only)
	RATE_LIMIT                         → -rate
	SESSION_TTL                        → -session-ttl
	LOG_LEVEL                          → -log-level

CLI flags take precedence over environment variables. Variables from the
dotenv file only fill in what the environment does not already define; a
missing file is ignored.
*/
package cliparse
