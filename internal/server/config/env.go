package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded before reading variables; missing is fine.
var envFile = ".env"

// parseEnv overlays values from environment variables. Variables from
// envFile are loaded first without overriding ones already set in the
// process environment. Unparseable values panic, like the other loaders.
//
// Recognized variables:
//
//	HTTP_ADDRESS, GRPC_ADDRESS, DATABASE_URL, JWT_SECRET, JWT_ALGORITHM,
//	SESSION_TTL, HASH_SCHEME, HASH_WORKERS, COOKIE_NAME, COOKIE_SAMESITE,
//	COOKIE_SECURE, ALLOWED_ORIGINS (comma separated), RUN_MIGRATIONS,
//	REVOCATION_PURGE_INTERVAL, LOG_LEVEL
func parseEnv(config *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("error loading %s: %w", envFile, err))
	}

	if v, ok := os.LookupEnv("HTTP_ADDRESS"); ok {
		config.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("GRPC_ADDRESS"); ok {
		config.GRPCAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("JWT_ALGORITHM"); ok {
		config.Algorithm = v
	}
	if v, ok := os.LookupEnv("SESSION_TTL"); ok {
		config.SessionTTL = mustDuration("SESSION_TTL", v)
	}
	if v, ok := os.LookupEnv("HASH_SCHEME"); ok {
		config.HashScheme = v
	}
	if v, ok := os.LookupEnv("HASH_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("HASH_WORKERS: %w", err))
		}
		config.HashWorkers = n
	}
	if v, ok := os.LookupEnv("COOKIE_NAME"); ok {
		config.CookieName = v
	}
	if v, ok := os.LookupEnv("COOKIE_SAMESITE"); ok {
		config.CookieSameSite = v
	}
	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		config.CookieSecure = mustBool("COOKIE_SECURE", v)
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("RUN_MIGRATIONS"); ok {
		config.RunMigrations = mustBool("RUN_MIGRATIONS", v)
	}
	if v, ok := os.LookupEnv("REVOCATION_PURGE_INTERVAL"); ok {
		config.PurgeInterval = mustDuration("REVOCATION_PURGE_INTERVAL", v)
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
}

// mustDuration accepts Go durations ("10m") and bare seconds ("600").
func mustDuration(name, v string) time.Duration {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return d
}

func mustBool(name, v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	return b
}
