// Package cli wires the journal engine together and exposes it through a
// small interactive shell.
package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"

	"github.com/loopjournal/loop/internal/config"
	"github.com/loopjournal/loop/internal/entitlement"
	"github.com/loopjournal/loop/internal/fanout"
	"github.com/loopjournal/loop/internal/history"
	"github.com/loopjournal/loop/internal/logging"
	"github.com/loopjournal/loop/internal/media"
	"github.com/loopjournal/loop/internal/scoring"
	"github.com/loopjournal/loop/internal/services"
	"github.com/loopjournal/loop/internal/store"
	"github.com/loopjournal/loop/internal/store/local"
	"github.com/loopjournal/loop/internal/store/remote"
	"github.com/loopjournal/loop/internal/store/router"
	"github.com/loopjournal/loop/internal/streak"
)

// App owns the constructed service graph and the databases behind it.
type App struct {
	config  *config.Config
	journal *services.JournalService
	log     logging.Logger

	localDB  *sql.DB
	remoteDB *sql.DB
}

// NewApp builds the whole engine from config. A remote backend that cannot
// be reached at startup downgrades the app to local-only instead of failing:
// the device store is the source of truth for availability.
func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	localStore, localDB, err := local.Open(ctx, cfg.LocalDSN)
	if err != nil {
		return nil, err
	}

	var remoteStore store.EntryStore
	var remoteDB *sql.DB
	syncEnabled := cfg.SyncEnabled && cfg.RemoteDSN != ""
	if syncEnabled {
		var rerr error
		remoteStore, remoteDB, rerr = remote.Open(ctx, cfg.RemoteDSN, log)
		if rerr != nil {
			log.Warn(ctx, "remote backend unavailable, running local-only", "error", rerr)
			syncEnabled = false
		}
	}

	r := router.New(localStore, remoteStore, syncEnabled)
	coordinator := fanout.New(r, log)
	engine := scoring.NewEngine(log)
	streaks := streak.NewCalculator(coordinator, cfg.StreakWalkBound, log)
	hist := history.Load(ctx, cfg.HistoryPath, cfg.HistoryRetention, log)
	gate := entitlement.NewTokenVerifier(cfg.EntitlementToken, []byte(cfg.EntitlementSecret))

	opts := services.Options{}
	if cfg.S3Bucket != "" {
		opts.Media = media.NewStorage(media.Config{
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	}

	journal := services.NewJournalService(coordinator, r, engine, streaks, hist, gate, log, opts)

	return &App{
		config:   cfg,
		journal:  journal,
		log:      log,
		localDB:  localDB,
		remoteDB: remoteDB,
	}, nil
}

// Run starts the interactive shell and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Main(ctx)
}

// Close releases the database handles.
func (a *App) Close() {
	if a.localDB != nil {
		_ = a.localDB.Close()
	}
	if a.remoteDB != nil {
		_ = a.remoteDB.Close()
	}
}
