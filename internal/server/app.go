package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"LanderRescue/internal/game"
	"LanderRescue/internal/progression"
	"LanderRescue/internal/storage/sqlite"
)

// App is the assembled server.
type App struct {
	Hub    *Hub
	Store  *sqlite.Store
	Ledger *progression.Ledger
	Config AppConfig
}

// NewApp loads missions, tuning, storage and progression.
func NewApp(cfg AppConfig) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MissionsDir != "" {
		ids, err := game.LoadMissionDir(cfg.MissionsDir)
		if err != nil {
			return nil, fmt.Errorf("load missions: %w", err)
		}
		logger.Printf("loaded %d missions from %s", len(ids), cfg.MissionsDir)
	}
	thresholds := resolveThresholds(cfg, logger)

	var store *sqlite.Store
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		s, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		store = s
	}

	ledger, err := openLedger(store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Printf("touchdown envelope: safe %.1f/%.1f m/s tilt %.0f, destroy %.1f/%.1f/%.1f, settle %.1fs",
		thresholds.SafeVertical, thresholds.SafeHorizontal, thresholds.SafeTilt,
		thresholds.DestroyVertical, thresholds.DestroyHorizontal, thresholds.DestroyMagnitude,
		thresholds.SettleSeconds)

	return &App{
		Hub:    NewHub(thresholds, store, ledger, logger),
		Store:  store,
		Ledger: ledger,
		Config: cfg,
	}, nil
}

func openLedger(store *sqlite.Store, logger *log.Logger) (*progression.Ledger, error) {
	nodes := progression.CampaignNodes(game.MissionIDs())
	graph, err := progression.NewGraph(nodes)
	if err != nil {
		return nil, fmt.Errorf("build campaign graph: %w", err)
	}
	logger.Printf("campaign graph initialized with %d nodes", len(nodes))

	state := progression.NewState()
	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		data, err := store.LoadProgression(ctx, sqlite.DefaultProfile)
		switch {
		case errors.Is(err, sqlite.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			if state, err = progression.LoadSnapshot(data); err != nil {
				return nil, err
			}
		}
	}
	return progression.NewLedger(graph, state, nil, logger), nil
}

// Handler returns the HTTP surface.
func (a *App) Handler() http.Handler {
	return newMux(a.Hub)
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Run serves until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Hub.Run(ctx)
	})
	g.Go(func() error {
		a.Hub.logger.Printf("starting web server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// StartApp builds the app and serves until ctx is done.
func StartApp(ctx context.Context, cfg AppConfig) error {
	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(ctx)
}
