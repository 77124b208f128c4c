package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	matches := deps.Matches
	eng := matches.Engine()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Climate Chance API", "/openapi.json", "/docs"))

	// Catalog and lobby reference data.
	r.Get("/api/scenarios", handleScenarios(eng))
	r.Get("/api/lobby", handleLobbyOptions(eng))
	r.Get("/api/tables", handleTables(eng))

	r.Post("/api/matches", handleCreateMatch(matches))

	// Match routes. {matchID} resolved by matchMiddleware.
	r.Route("/api/matches/{matchID}", func(r chi.Router) {
		r.Use(matchMiddleware(matches))
		r.Get("/", handleMatchState())
		r.Get("/standings", handleStandings())
		r.Get("/narrative", handleNarrative(logger, deps.Narrator))
		r.Get("/events", handleEvents(matches.Broker()))
		r.Get("/ws", handleWS(logger, matches.Broker()))

		r.Group(func(r chi.Router) {
			r.Use(hostAuthMiddleware)
			r.Post("/actions", handleAction(logger))
			r.Delete("/", handleDeleteMatch(matches))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
