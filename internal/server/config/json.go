package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "10m" and integer nanoseconds are accepted.
// Booleans are pointers to tell "false" from "absent".
type JsonConfig struct {
	HTTPAddr       string         `json:"http_addr"`
	GRPCAddr       string         `json:"grpc_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	Algorithm      string         `json:"algorithm"`
	SessionTTL     timex.Duration `json:"session_ttl"`
	HashScheme     string         `json:"hash_scheme"`
	HashWorkers    int            `json:"hash_workers"`
	CookieName     string         `json:"cookie_name"`
	CookieSameSite string         `json:"cookie_same_site"`
	CookieSecure   *bool          `json:"cookie_secure"`
	AllowedOrigins []string       `json:"allowed_origins"`
	RunMigrations  *bool          `json:"run_migrations"`
	PurgeInterval  timex.Duration `json:"purge_interval"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by the -c or -config
// flag. Without the flag nothing is loaded. Fields missing from the file
// keep their current values. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.Algorithm, c.Algorithm)
	setDuration(&config.SessionTTL, c.SessionTTL.Duration)
	setString(&config.HashScheme, c.HashScheme)
	if c.HashWorkers != 0 {
		config.HashWorkers = c.HashWorkers
	}
	setString(&config.CookieName, c.CookieName)
	setString(&config.CookieSameSite, c.CookieSameSite)
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.RunMigrations != nil {
		config.RunMigrations = *c.RunMigrations
	}
	setDuration(&config.PurgeInterval, c.PurgeInterval.Duration)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
