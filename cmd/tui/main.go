package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/playperu/climatechance/internal/catalog"
	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/config"
	"github.com/playperu/climatechance/internal/engine"
	"github.com/playperu/climatechance/internal/narrative"
	"github.com/playperu/climatechance/internal/selection"
	"github.com/playperu/climatechance/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fs := flag.NewFlagSet("climatechance-tui", flag.ContinueOnError)
	teams := fs.String("teams", "Red:Ana,Blue:Maria", "teams as Name:player+player, separated by commas")
	questions := fs.Int("questions", climate.DefaultQuestionsPerRound, "questions per round (3, 4 or 6)")
	rounds := fs.Int("rounds", climate.DefaultTotalRounds, "number of rounds")
	seconds := fs.Int("seconds", cfg.TurnSeconds, "seconds per answer, 0 disables the timer")
	seed := fs.Int64("seed", cfg.RNGSeed, "shuffle seed, 0 picks a random one")
	catalogPath := fs.String("catalog", cfg.CatalogPath, "scenario catalog YAML, empty uses the builtin one")
	if err := fs.Parse(args); err != nil {
		return err
	}

	setups, err := parseTeams(*teams)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLog(os.Getenv("CLIMATE_TUI_LOG"), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	scenarios, err := catalog.Builtin()
	if *catalogPath != "" {
		scenarios, err = catalog.LoadFile(*catalogPath)
	}
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if *seed != 0 {
		opts = append(opts, engine.WithSelector(selection.NewSeeded(*seed)))
	}
	if cfg.TokenFloor != nil {
		opts = append(opts, engine.WithTokenFloor(*cfg.TokenFloor))
	}
	eng, err := engine.New(scenarios, opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	var narrator narrative.Narrator
	if cfg.GeminiAPIKey != "" {
		gemini, err := narrative.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return fmt.Errorf("creating narrator: %w", err)
		}
		defer gemini.Close()
		narrator = gemini
	}

	return tui.Run(eng, narrator, logger, tui.Setup{
		Teams:             setups,
		QuestionsPerRound: *questions,
		TotalRounds:       *rounds,
		TurnTime:          time.Duration(*seconds) * time.Second,
	})
}

// parseTeams reads "Red:Ana+Jose,Blue:Maria". Avatars are handed out in order.
func parseTeams(s string) ([]climate.TeamSetup, error) {
	var out []climate.TeamSetup
	for i, part := range strings.Split(s, ",") {
		name, players, _ := strings.Cut(strings.TrimSpace(part), ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("team %d has no name", i+1)
		}
		setup := climate.TeamSetup{
			Name:   name,
			Avatar: climate.Avatars[i%len(climate.Avatars)],
		}
		for _, p := range strings.Split(players, "+") {
			if p = strings.TrimSpace(p); p != "" {
				setup.Players = append(setup.Players, p)
			}
		}
		out = append(out, setup)
	}
	if len(out) == 0 {
		return nil, errors.New("no teams given")
	}
	return out, nil
}

// openLog writes logs to path. The terminal belongs to the UI, so without a
// path logs are dropped.
func openLog(path string, level slog.Level) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
