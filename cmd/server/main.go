package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/climatechance/internal/catalog"
	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/config"
	"github.com/playperu/climatechance/internal/database"
	"github.com/playperu/climatechance/internal/engine"
	"github.com/playperu/climatechance/internal/handler/health"
	"github.com/playperu/climatechance/internal/migrations"
	"github.com/playperu/climatechance/internal/narrative"
	"github.com/playperu/climatechance/internal/selection"
	"github.com/playperu/climatechance/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	checks := map[string]health.Checker{}

	// --- Catalog ---
	scenarios, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	if cfg.CatalogDB != "" {
		db, err := database.Open(ctx, cfg.CatalogDB)
		if err != nil {
			return fmt.Errorf("connecting to sqlite: %w", err)
		}
		defer db.Close()

		version, err := migrations.Run(ctx, db)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		scenarios, err = syncCatalog(ctx, logger, catalog.NewSQLStore(db), scenarios, cfg.CatalogPath != "")
		if err != nil {
			return err
		}
		checks["sqlite"] = dbChecker{db}
		logger.Info("connected to sqlite", "path", cfg.CatalogDB, "schema_version", version)
	}
	logger.Info("catalog loaded", "scenarios", len(scenarios))

	// --- Narrative ---
	var narrator narrative.Narrator
	if cfg.GeminiAPIKey != "" {
		gemini, err := narrative.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("creating narrator: %w", err)
		}
		defer gemini.Close()
		narrator = gemini
		logger.Info("narrator enabled", "model", cfg.GeminiModel)
	}

	// --- Redis ---
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = redisChecker{rdb}
		if narrator != nil {
			narrator = narrative.NewCached(narrator, narrative.NewRedisCache(rdb, narrative.DefaultCacheTTL), logger)
		}
		logger.Info("connected to redis")
	}

	// --- Engine ---
	eng, err := engine.New(scenarios, engineOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	matches := server.NewRegistry(eng, server.NewBroker(), cfg.TurnDeadline(), logger)
	defer matches.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Matches:  matches,
		Narrator: narrator,
		SPADir:   cfg.SPADir,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	if cfg.MatchIdleTTL > 0 {
		g.Go(func() error {
			return matches.RunEviction(gctx, cfg.MatchIdleTTL/4, cfg.MatchIdleTTL)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func loadCatalog(path string) ([]climate.Scenario, error) {
	if path == "" {
		scenarios, err := catalog.Builtin()
		if err != nil {
			return nil, fmt.Errorf("loading builtin catalog: %w", err)
		}
		return scenarios, nil
	}
	scenarios, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return scenarios, nil
}

// syncCatalog stores scenarios in the database and serves what is stored. An
// explicit catalog file replaces the stored one; otherwise the database is
// seeded only when empty.
func syncCatalog(ctx context.Context, logger *slog.Logger, store *catalog.SQLStore, scenarios []climate.Scenario, replace bool) ([]climate.Scenario, error) {
	if replace {
		if err := store.Replace(ctx, scenarios); err != nil {
			return nil, fmt.Errorf("importing catalog: %w", err)
		}
		logger.Info("catalog imported", "scenarios", len(scenarios))
	} else {
		seeded, err := store.Seed(ctx, scenarios)
		if err != nil {
			return nil, fmt.Errorf("seeding catalog: %w", err)
		}
		if seeded {
			logger.Info("catalog seeded", "scenarios", len(scenarios))
		}
	}

	stored, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stored catalog: %w", err)
	}
	return stored, nil
}

func engineOptions(cfg *config.Config, logger *slog.Logger) []engine.Option {
	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.RNGSeed != 0 {
		opts = append(opts, engine.WithSelector(selection.NewSeeded(cfg.RNGSeed)))
	}
	if cfg.TokenFloor != nil {
		opts = append(opts, engine.WithTokenFloor(*cfg.TokenFloor))
	}
	return opts
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
