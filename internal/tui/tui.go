// Package tui is a hot-seat terminal client: one screen, teams take turns at
// the keyboard.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
	"github.com/playperu/climatechance/internal/narrative"
)

// Setup is the lobby configuration chosen on the command line.
type Setup struct {
	Teams             []climate.TeamSetup
	QuestionsPerRound int
	TotalRounds       int
	// TurnTime is the answer deadline. Zero disables it.
	TurnTime time.Duration
}

type model struct {
	engine   *engine.Engine
	narrator narrative.Narrator
	logger   *slog.Logger
	setup    Setup

	state     climate.GameState
	textInput textinput.Model
	status    string

	turn      int
	remaining time.Duration

	story        string
	storyPending bool
	standings    []climate.Team

	width int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	teamStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))

	hotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8700")).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))
)

func NewModel(eng *engine.Engine, narrator narrative.Narrator, logger *slog.Logger, setup Setup) model {
	ti := textinput.New()
	ti.Placeholder = "choice number or text..."
	ti.CharLimit = 120
	ti.Width = 50

	return model{
		engine:    eng,
		narrator:  narrator,
		logger:    logger,
		setup:     setup,
		state:     eng.Initial(),
		textInput: ti,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type tickMsg struct{ turn int }

type storyMsg struct {
	round int
	text  string
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if msg.turn != m.turn || m.state.Status != climate.StatusPlaying {
			return m, nil
		}
		m.remaining -= time.Second
		if m.remaining > 0 {
			return m, tick(m.turn)
		}
		return m.timeout()

	case storyMsg:
		if msg.round == m.state.CurrentRound && m.state.Status == climate.StatusSummary {
			m.story = msg.text
			m.storyPending = false
		}
		return m, nil
	}

	if m.state.Status == climate.StatusPlaying {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state.Status {
	case climate.StatusLobby:
		switch msg.String() {
		case "enter":
			return m.dispatch(engine.StartGame{
				Teams:             m.setup.Teams,
				QuestionsPerRound: m.setup.QuestionsPerRound,
				TotalRounds:       m.setup.TotalRounds,
			})
		case "q":
			return m, tea.Quit
		}

	case climate.StatusScenarioAssignment:
		switch msg.String() {
		case "enter":
			return m.dispatch(engine.ProceedToPlay{})
		case "r":
			return m.dispatch(engine.ReshuffleScenarios{})
		}

	case climate.StatusPlaying:
		if msg.Type == tea.KeyEnter {
			return m.submit(m.textInput.Value())
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd

	case climate.StatusSummary:
		switch msg.String() {
		case "enter":
			return m.dispatch(engine.StartNextRound{})
		case "x":
			return m.dispatch(engine.Restart{})
		}
	}
	return m, nil
}

// submit resolves typed input against the current question.
func (m model) submit(input string) (tea.Model, tea.Cmd) {
	team, _ := m.state.CurrentTeam()
	q, _ := m.state.CurrentQuestion()
	choice, ok := engine.ResolveChoice(q, input)
	if !ok {
		m.status = fmt.Sprintf("%q doesn't match a choice, try 1-%d", input, len(q.Choices))
		m.textInput.Reset()
		return m, nil
	}
	return m.dispatch(engine.AnswerQuestion{TeamID: team.ID, QuestionID: q.ID, ChoiceID: choice.ID})
}

// timeout answers for the current team with the worst choice.
func (m model) timeout() (tea.Model, tea.Cmd) {
	team, _ := m.state.CurrentTeam()
	q, _ := m.state.CurrentQuestion()
	worst := q.WorstChoice()
	m.logger.Info("answer deadline expired", "team", team.Name, "question_id", q.ID)

	next, cmd := m.dispatch(engine.AnswerQuestion{TeamID: team.ID, QuestionID: q.ID, ChoiceID: worst.ID})
	nm := next.(model)
	nm.status = fmt.Sprintf("Time's up for %s! Auto-picked: %s", team.Name, worst.Text)
	return nm, cmd
}

// dispatch applies a to the state and starts whatever the new screen needs:
// the answer timer while playing, scoring and the story on the summary.
func (m model) dispatch(a engine.Action) (tea.Model, tea.Cmd) {
	next, err := m.engine.Transition(m.state, a)
	if err != nil {
		m.status = err.Error()
		m.logger.Warn("action rejected", "action", a.Type(), "error", err)
		return m, nil
	}
	prev := m.state.Status
	m.state = next
	m.status = ""
	m.textInput.Reset()

	var cmds []tea.Cmd
	switch next.Status {
	case climate.StatusPlaying:
		m.turn++
		m.textInput.Focus()
		if m.setup.TurnTime > 0 {
			m.remaining = m.setup.TurnTime
			cmds = append(cmds, tick(m.turn))
		}
	case climate.StatusSummary:
		m.textInput.Blur()
		if prev != climate.StatusSummary && !next.ResultsCalculated {
			scored, err := m.engine.Transition(m.state, engine.CalculateResults{})
			if err != nil {
				m.status = err.Error()
				m.logger.Error("calculating results", "error", err)
				break
			}
			m.state = scored
			m.standings = engine.Standings(scored)
			m.story = ""
			m.storyPending = true
			cmds = append(cmds, m.tell(scored))
		}
	default:
		m.textInput.Blur()
	}
	return m, tea.Batch(cmds...)
}

func tick(turn int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{turn: turn} })
}

func (m model) tell(state climate.GameState) tea.Cmd {
	narrator, logger := m.narrator, m.logger
	req := narrative.RequestFromState(state)
	round := state.CurrentRound
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return storyMsg{round: round, text: narrative.Tell(ctx, narrator, req, logger)}
	}
}

func (m model) View() string {
	var s string
	switch m.state.Status {
	case climate.StatusLobby:
		s = m.viewLobby()
	case climate.StatusScenarioAssignment:
		s = m.viewAssignment()
	case climate.StatusPlaying:
		s = m.viewPlaying()
	case climate.StatusSummary:
		s = m.viewSummary()
	}
	if m.status != "" {
		s += "\n\n" + errorStyle.Render(m.status)
	}
	return "\n" + s + "\n"
}

func (m model) viewLobby() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("GIVE CLIMATE A CHANCE") + "\n\n")
	for _, t := range m.setup.Teams {
		fmt.Fprintf(&b, "  %s %s  (%s)\n", t.Avatar, t.Name, strings.Join(t.Players, ", "))
	}
	fmt.Fprintf(&b, "\n  %d questions per round, %d rounds\n\n", m.setup.QuestionsPerRound, m.setup.TotalRounds)
	b.WriteString(helpStyle.Render("enter: start   q: quit"))
	return b.String()
}

func (m model) viewAssignment() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("ROUND %d OF %d: YOUR SCENARIOS", m.state.CurrentRound, m.state.TotalRounds)) + "\n\n")
	for _, t := range m.state.Teams {
		fmt.Fprintf(&b, "%s\n  %s\n\n", teamStyle.Render(t.Avatar+" "+t.Name), t.Scenario.Title)
	}
	b.WriteString(helpStyle.Render("enter: play   r: reshuffle scenarios"))
	return b.String()
}

func (m model) viewPlaying() string {
	team, _ := m.state.CurrentTeam()
	q, _ := m.state.CurrentQuestion()

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", teamStyle.Render(team.Avatar+" "+team.Name), team.Scenario.Title)
	fmt.Fprintf(&b, "Question %d of %d  [%s]\n\n", m.state.CurrentQuestionIndex+1, len(team.Questions), q.Theme)
	b.WriteString(q.Text + "\n\n")
	for i, c := range q.Choices {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, c.Text)
	}
	if m.setup.TurnTime > 0 {
		timer := fmt.Sprintf("%ds left", int(m.remaining.Seconds()))
		if m.remaining <= 5*time.Second {
			timer = hotStyle.Render(timer)
		}
		b.WriteString("\n" + timer)
	}
	b.WriteString("\n\n" + m.textInput.View())

	main := b.String()
	if m.width == 0 {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, main, panelStyle.Render(m.viewMeter()))
}

func (m model) viewMeter() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PLANET") + "\n")
	fmt.Fprintf(&b, "%s°C\n\n", m.state.Temperature.StringFixed(0))
	b.WriteString(titleStyle.Render("TOKENS") + "\n")
	for _, t := range m.state.Teams {
		fmt.Fprintf(&b, "%s %d\n", t.Name, t.Tokens)
	}
	return b.String()
}

func (m model) viewSummary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("ROUND %d RESULTS", m.state.CurrentRound)) + "\n\n")

	change := m.state.LastTempChange
	fmt.Fprintf(&b, "Planet temperature: %s°C", m.state.Temperature.StringFixed(0))
	if change.IsPositive() {
		b.WriteString(hotStyle.Render(fmt.Sprintf("  (+%s°C)", change.StringFixed(0))))
	}
	b.WriteString("\n\n")

	for i, t := range m.standings {
		fmt.Fprintf(&b, "%d. %s  score %d  tokens %d  %s\n", i+1, teamStyle.Render(t.Avatar+" "+t.Name), t.Score, t.Tokens, t.CLevel)
		for _, a := range t.NewAchievements {
			fmt.Fprintf(&b, "     %s %s: %s\n", a.Icon, a.Name, a.Description)
		}
	}

	b.WriteString("\n")
	switch {
	case m.storyPending:
		b.WriteString(helpStyle.Render("The storyteller is writing..."))
	case m.story != "":
		width := m.width - 4
		if width < 40 {
			width = 80
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(m.story))
	}
	b.WriteString("\n\n")

	if engine.MatchOver(m.state) {
		b.WriteString(helpStyle.Render("enter: back to lobby   x: restart"))
	} else {
		b.WriteString(helpStyle.Render("enter: next round   x: restart"))
	}
	return b.String()
}

func Run(eng *engine.Engine, narrator narrative.Narrator, logger *slog.Logger, setup Setup) error {
	p := tea.NewProgram(NewModel(eng, narrator, logger, setup), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
