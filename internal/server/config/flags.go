package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., "127.0.0.1:8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-j string   token signing algorithm (HS256, HS384, HS512)
//	-t int      session validity, minutes
//	-x string   password hashing scheme (argon2id, scrypt)
//	-w int      hashing workers, 0 means one per CPU
//	-o string   allowed CORS origins, comma separated
//	-m bool     apply database migrations on startup (-m=false disables)
//
// Only the flags above are parsed; os.Args is filtered with
// flagx.FilterArgs first so other components can define their own.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"a", "g", "d", "s", "j", "t", "x", "w", "o"}, "m")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.Algorithm, "j", config.Algorithm, "token signing algorithm")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session_ttl (in minutes)")

	fs.StringVar(&config.HashScheme, "x", config.HashScheme, "password hashing scheme")
	fs.IntVar(&config.HashWorkers, "w", config.HashWorkers, "password hashing workers")

	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins")

	fs.BoolVar(&config.RunMigrations, "m", config.RunMigrations, "run database migrations")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minutes only; keep sub-minute values from other sources untouched
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
		case "o":
			config.AllowedOrigins = splitList(*origins)
		}
	})
}
