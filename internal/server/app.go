// Package server wires the gophauth components together and runs them:
// it opens the database, applies migrations, builds the hashing and token
// stack from configuration, and serves the HTTP API and gRPC endpoint
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repos       repomanager.RepositoryManager
	authService *services.AuthService
	http        *httpapi.Server
	grpc        *gs.GRPCServer
}

// openDB is a seam for tests.
var openDB = repomanager.OpenPostgres

// NewApp validates c and builds every component. Configuration problems
// are returned before any connection is opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	algorithm, err := auth.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return nil, err
	}
	signing, err := auth.NewSigningConfig([]byte(c.SecretKey), algorithm)
	if err != nil {
		return nil, err
	}
	codec, err := auth.NewCodec(signing)
	if err != nil {
		return nil, err
	}
	hasher, err := cryptox.NewDefaultRouter(c.HashScheme)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}
	sameSite, err := httpapi.ParseSameSite(c.CookieSameSite)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if c.RunMigrations {
		if err := repos.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	}

	pool := cryptox.NewPool(c.HashWorkers)
	svc := services.NewAuthService(
		repos.Credentials(db),
		hasher,
		cryptox.NewSaltGenerator(),
		codec,
		pool,
		logger,
		services.WithSessionTTL(c.SessionTTL),
		services.WithRevocations(repos.Revocations(db)),
	)

	cookies := httpapi.CookieConfig{Name: c.CookieName, SameSite: sameSite, Secure: c.CookieSecure}
	handler := httpapi.NewAuthHandler(svc, cookies, logger, db.PingContext)
	router := httpapi.NewRouter(handler, svc, httpapi.RouterConfig{Cookies: cookies, AllowedOrigins: c.AllowedOrigins}, logger)

	logger.Info(ctx, "Configured",
		"algorithm", signing.Algorithm(),
		"hash_scheme", hasher.Scheme(),
		"hash_workers", pool.Size(),
		"session_ttl", c.SessionTTL,
	)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repos:       repos,
		authService: svc,
		http:        httpapi.NewServer(c.HTTPAddr, router, logger),
		grpc:        gs.NewGRPCServer(c.GRPCAddr, logger, svc),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeRevocations drops expired revocation marks every interval until ctx
// is done.
func (app *App) purgeRevocations(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.repos.PurgeRevocations(ctx, app.db, time.Now())
			if err != nil {
				app.logger.Warn(ctx, "revocation purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "Purged revocations", "count", n)
			}
		}
	}
}

// Run serves until ctx is cancelled, a shutdown signal arrives, or one of
// the servers fails, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeRevocations(ctx, app.config.PurgeInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
