package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each dependency to its check result.
type HealthResponse map[string]struct {
	Status    string `json:"status" enum:"ok,error"`
	LatencyMS int64  `json:"latencyMs"`
}

type matchPath struct {
	MatchID string `path:"matchID"`
}

type hostAuthHeader struct {
	MatchID       string `path:"matchID"`
	Authorization string `header:"Authorization" description:"Bearer <hostKey>"`
}

type actionInput struct {
	hostAuthHeader
	ActionRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Climate Chance API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Host API for Climate Chance team quiz matches.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/scenarios
	getScenarios, _ := r.NewOperationContext(http.MethodGet, "/api/scenarios")
	getScenarios.SetSummary("List scenarios")
	getScenarios.SetDescription("Returns the scenario catalog matches draw from.")
	getScenarios.AddRespStructure([]ScenarioSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getScenarios)

	// GET /api/lobby
	getLobby, _ := r.NewOperationContext(http.MethodGet, "/api/lobby")
	getLobby.SetSummary("Lobby options")
	getLobby.SetDescription("Round sizes, team counts, avatars and achievements a lobby may offer.")
	getLobby.AddRespStructure(LobbyOptions{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLobby)

	// GET /api/tables
	getTables, _ := r.NewOperationContext(http.MethodGet, "/api/tables")
	getTables.SetSummary("Scoring tables")
	getTables.SetDescription("The individual C-Level table and the collective temperature table.")
	getTables.AddRespStructure(TablesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getTables)

	// POST /api/matches
	postMatch, _ := r.NewOperationContext(http.MethodPost, "/api/matches")
	postMatch.SetSummary("Create match")
	postMatch.SetDescription("Opens a match in the lobby. The host key in the response authorizes actions and is shown only once.")
	postMatch.AddRespStructure(CreateMatchResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	_ = r.AddOperation(postMatch)

	// GET /api/matches/{matchID}
	getMatch, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}")
	getMatch.SetSummary("Get match state")
	getMatch.SetDescription("Returns the versioned match snapshot, including the answer deadline while playing.")
	getMatch.AddReqStructure(matchPath{})
	getMatch.AddRespStructure(Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getMatch)

	// DELETE /api/matches/{matchID}
	deleteMatch, _ := r.NewOperationContext(http.MethodDelete, "/api/matches/{matchID}")
	deleteMatch.SetSummary("Delete match")
	deleteMatch.SetDescription("Ends and forgets a match. Requires the host key.")
	deleteMatch.AddReqStructure(hostAuthHeader{})
	deleteMatch.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	deleteMatch.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteMatch)

	// POST /api/matches/{matchID}/actions
	postAction, _ := r.NewOperationContext(http.MethodPost, "/api/matches/{matchID}/actions")
	postAction.SetSummary("Dispatch action")
	postAction.SetDescription("Applies one game action. Rejected actions leave the match unchanged. Requires the host key.")
	postAction.AddReqStructure(actionInput{})
	postAction.AddRespStructure(Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAction)

	// GET /api/matches/{matchID}/standings
	getStandings, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/standings")
	getStandings.SetSummary("Standings")
	getStandings.SetDescription("Teams ranked by cumulative score, lowest impact first.")
	getStandings.AddReqStructure(matchPath{})
	getStandings.AddRespStructure(StandingsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getStandings.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStandings)

	// GET /api/matches/{matchID}/narrative
	getNarrative, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/narrative")
	getNarrative.SetSummary("Round story")
	getNarrative.SetDescription("A short story about the round just played. Falls back to a fixed message when no storyteller is available.")
	getNarrative.AddReqStructure(matchPath{})
	getNarrative.AddRespStructure(NarrativeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getNarrative.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	getNarrative.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getNarrative)

	// GET /api/matches/{matchID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of match snapshots. The current snapshot is sent first.")
	getEvents.AddReqStructure(matchPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/matches/{matchID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/matches/{matchID}/ws")
	getWS.SetSummary("WebSocket feed")
	getWS.SetDescription("Upgrades to a WebSocket that pushes match events. With ?key=<hostKey> the client may also send actions.")
	getWS.AddReqStructure(matchPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
