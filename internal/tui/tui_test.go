package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/playperu/climatechance/internal/catalog"
	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
	"github.com/playperu/climatechance/internal/narrative"
	"github.com/playperu/climatechance/internal/selection"
)

type stubNarrator struct{ text string }

func (s stubNarrator) Narrate(context.Context, narrative.Request) (string, error) {
	return s.text, nil
}

func newTestModel(t *testing.T, n narrative.Narrator, turnTime time.Duration) model {
	t.Helper()
	scenarios, err := catalog.Builtin()
	if err != nil {
		t.Fatalf("builtin catalog: %v", err)
	}
	eng, err := engine.New(scenarios, engine.WithSelector(selection.NewSeeded(3)))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewModel(eng, n, logger, Setup{
		Teams: []climate.TeamSetup{
			{Name: "Red", Avatar: "🦊", Players: []string{"Ana"}},
			{Name: "Blue", Avatar: "🐼", Players: []string{"Maria"}},
		},
		QuestionsPerRound: 3,
		TotalRounds:       2,
		TurnTime:          turnTime,
	})
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		if k == "enter" {
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func toPlaying(t *testing.T, m model) model {
	t.Helper()
	m = press(t, m, "enter")
	if m.state.Status != climate.StatusScenarioAssignment {
		t.Fatalf("after start: status = %s, status line %q", m.state.Status, m.status)
	}
	m = press(t, m, "enter")
	if m.state.Status != climate.StatusPlaying {
		t.Fatalf("after proceed: status = %s", m.state.Status)
	}
	return m
}

func TestLobbyToPlaying(t *testing.T) {
	m := newTestModel(t, nil, 0)
	if m.state.Status != climate.StatusLobby {
		t.Fatalf("initial status = %s", m.state.Status)
	}
	if !strings.Contains(m.View(), "Red") {
		t.Error("lobby view does not list teams")
	}

	m = press(t, m, "enter")
	m = press(t, m, "r")
	if m.state.Status != climate.StatusScenarioAssignment {
		t.Fatalf("reshuffle changed status to %s", m.state.Status)
	}
	if len(m.state.Teams[0].Questions) != 3 {
		t.Errorf("questions after reshuffle = %d, want 3", len(m.state.Teams[0].Questions))
	}

	m = press(t, m, "enter")
	if m.state.Status != climate.StatusPlaying {
		t.Fatalf("status = %s, want PLAYING", m.state.Status)
	}
	if !m.textInput.Focused() {
		t.Error("input not focused while playing")
	}
}

func TestAnswerByNumber(t *testing.T) {
	m := toPlaying(t, newTestModel(t, nil, 0))
	q, _ := m.state.CurrentQuestion()

	m = press(t, m, "1", "enter")

	answers := m.state.Teams[0].Answers
	if len(answers) != 1 {
		t.Fatalf("answers = %d, want 1 (status %q)", len(answers), m.status)
	}
	if answers[0].QuestionID != q.ID || answers[0].Choice.ID != q.Choices[0].ID {
		t.Errorf("answer = %+v, want first choice of %s", answers[0], q.ID)
	}
	if m.state.CurrentTeamIndex != 1 {
		t.Errorf("current team = %d, want 1", m.state.CurrentTeamIndex)
	}
	if m.textInput.Value() != "" {
		t.Errorf("input not cleared: %q", m.textInput.Value())
	}
}

func TestUnmatchedAnswerKeepsTurn(t *testing.T) {
	m := toPlaying(t, newTestModel(t, nil, 0))

	m = press(t, m, "zz", "enter")

	if len(m.state.Teams[0].Answers) != 0 {
		t.Fatal("unmatched input recorded an answer")
	}
	if m.state.CurrentTeamIndex != 0 {
		t.Errorf("turn moved to %d", m.state.CurrentTeamIndex)
	}
	if !strings.Contains(m.status, "doesn't match") {
		t.Errorf("status = %q", m.status)
	}
}

func TestTimeoutPicksWorstChoice(t *testing.T) {
	m := toPlaying(t, newTestModel(t, nil, 2*time.Second))
	q, _ := m.state.CurrentQuestion()
	turn := m.turn

	next, _ := m.Update(tickMsg{turn: turn})
	m = next.(model)
	if len(m.state.Teams[0].Answers) != 0 {
		t.Fatal("answered before the deadline")
	}

	next, _ = m.Update(tickMsg{turn: turn})
	m = next.(model)

	answers := m.state.Teams[0].Answers
	if len(answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(answers))
	}
	if answers[0].Choice.ID != q.WorstChoice().ID {
		t.Errorf("choice = %s, want worst %s", answers[0].Choice.ID, q.WorstChoice().ID)
	}
	if !strings.Contains(m.status, "Time's up") {
		t.Errorf("status = %q", m.status)
	}

	// A tick from the previous turn must not answer for the next team.
	next, _ = m.Update(tickMsg{turn: turn})
	m = next.(model)
	if len(m.state.Teams[1].Answers) != 0 {
		t.Error("stale tick answered for the next team")
	}
}

func TestRoundSummary(t *testing.T) {
	m := toPlaying(t, newTestModel(t, stubNarrator{text: "The planet sighed."}, 0))

	want := map[string]int{}
	for m.state.Status == climate.StatusPlaying {
		team, _ := m.state.CurrentTeam()
		q, _ := m.state.CurrentQuestion()
		want[team.ID] += q.Choices[0].Score
		m = press(t, m, "1", "enter")
	}
	if m.state.Status != climate.StatusSummary {
		t.Fatalf("status = %s, want SUMMARY", m.state.Status)
	}
	if !m.state.ResultsCalculated {
		t.Fatal("results not calculated on entering summary")
	}
	if len(m.standings) != 2 {
		t.Fatalf("standings = %d, want 2", len(m.standings))
	}
	for _, team := range m.state.Teams {
		if team.Score != want[team.ID] {
			t.Errorf("%s score = %d, want %d", team.Name, team.Score, want[team.ID])
		}
	}
	if !m.storyPending {
		t.Error("story not requested")
	}

	msg := m.tell(m.state)()
	next, _ := m.Update(msg)
	m = next.(model)
	if m.story != "The planet sighed." {
		t.Errorf("story = %q", m.story)
	}
	if !strings.Contains(m.View(), "The planet sighed.") {
		t.Error("summary view missing story")
	}

	m = press(t, m, "enter")
	if m.state.Status != climate.StatusScenarioAssignment || m.state.CurrentRound != 2 {
		t.Errorf("after next round: status %s round %d", m.state.Status, m.state.CurrentRound)
	}
}

func TestStoryFallsBackWithoutNarrator(t *testing.T) {
	m := toPlaying(t, newTestModel(t, nil, 0))
	for m.state.Status == climate.StatusPlaying {
		m = press(t, m, "1", "enter")
	}

	next, _ := m.Update(m.tell(m.state)())
	m = next.(model)
	if m.story != narrative.FallbackMessage {
		t.Errorf("story = %q, want fallback", m.story)
	}
}

func TestRestartFromSummary(t *testing.T) {
	m := toPlaying(t, newTestModel(t, nil, 0))
	for m.state.Status == climate.StatusPlaying {
		m = press(t, m, "5", "enter")
	}

	m = press(t, m, "x")
	if m.state.Status != climate.StatusLobby {
		t.Errorf("status = %s, want LOBBY", m.state.Status)
	}
	if len(m.state.Teams) != 0 {
		t.Errorf("teams = %d after restart", len(m.state.Teams))
	}
}
