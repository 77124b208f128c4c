package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	errBadHostKey    = errors.New("invalid host key")
)

// Registry holds the live matches of this process.
type Registry struct {
	engine       *engine.Engine
	broker       *Broker
	turnDeadline time.Duration
	logger       *slog.Logger

	mu      sync.RWMutex
	matches map[string]*Match
}

// NewRegistry creates an empty registry. A zero turnDeadline disables the
// answer timer.
func NewRegistry(eng *engine.Engine, broker *Broker, turnDeadline time.Duration, logger *slog.Logger) *Registry {
	return &Registry{
		engine:       eng,
		broker:       broker,
		turnDeadline: turnDeadline,
		logger:       logger,
		matches:      make(map[string]*Match),
	}
}

func (r *Registry) Engine() *engine.Engine { return r.engine }

func (r *Registry) Broker() *Broker { return r.broker }

// Create opens a match in the lobby and returns it with its host key. Only
// the hash of the key is kept.
func (r *Registry) Create() (*Match, string, error) {
	hostKey := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(hostKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing host key: %w", err)
	}

	now := time.Now().UTC()
	m := &Match{
		ID:          uuid.NewString(),
		CreatedAt:   now,
		hostKeyHash: hash,
		reg:         r,
		state:       r.engine.Initial(),
		lastActive:  now,
	}

	r.mu.Lock()
	r.matches[m.ID] = m
	r.mu.Unlock()

	r.logger.Info("match created", "match_id", m.ID)
	return m, hostKey, nil
}

func (r *Registry) Get(id string) (*Match, error) {
	r.mu.RLock()
	m, ok := r.matches[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrMatchNotFound)
	}
	return m, nil
}

// Delete stops the match's timer and forgets it.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	m, ok := r.matches[id]
	delete(r.matches, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrMatchNotFound)
	}
	m.close()
	r.logger.Info("match deleted", "match_id", id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// EvictIdle deletes every match with no applied action since now-maxIdle and
// returns how many were removed.
func (r *Registry) EvictIdle(now time.Time, maxIdle time.Duration) int {
	cutoff := now.Add(-maxIdle)

	r.mu.Lock()
	var idle []*Match
	for id, m := range r.matches {
		if m.LastActive().Before(cutoff) {
			idle = append(idle, m)
			delete(r.matches, id)
		}
	}
	r.mu.Unlock()

	for _, m := range idle {
		m.close()
		r.logger.Info("idle match evicted", "match_id", m.ID, "last_active", m.LastActive())
	}
	return len(idle)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := r.EvictIdle(now, maxIdle); n > 0 {
				r.logger.Info("evicted idle matches", "count", n, "remaining", r.Len())
			}
		}
	}
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, m := range r.matches {
		m.close()
		delete(r.matches, id)
	}
	return nil
}

// Snapshot is a versioned view of a match sent to clients.
type Snapshot struct {
	MatchID  string            `json:"matchId"`
	Version  int               `json:"version"`
	State    climate.GameState `json:"state"`
	Deadline *time.Time        `json:"deadline,omitempty"`
}

// Match serializes every dispatch against one game state.
type Match struct {
	ID        string
	CreatedAt time.Time

	hostKeyHash []byte
	reg         *Registry

	mu         sync.Mutex
	state      climate.GameState
	version    int
	deadline   time.Time
	timer      *time.Timer
	closed     bool
	lastActive time.Time
}

// Authorize checks a host key against the stored hash.
func (m *Match) Authorize(hostKey string) error {
	if hostKey == "" || bcrypt.CompareHashAndPassword(m.hostKeyHash, []byte(hostKey)) != nil {
		return errBadHostKey
	}
	return nil
}

// LastActive is when the match was created or last changed state.
func (m *Match) LastActive() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActive
}

func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Match) Dispatch(a engine.Action) (Snapshot, error) {
	return m.DispatchFunc(func(climate.GameState) (engine.Action, error) { return a, nil })
}

// DispatchFunc builds the action from the current state and applies it under
// the match lock, so the action cannot race with a turn change.
func (m *Match) DispatchFunc(build func(climate.GameState) (engine.Action, error)) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, err := build(m.state)
	if err != nil {
		return m.snapshotLocked(), err
	}
	if err := m.applyLocked(a); err != nil {
		return m.snapshotLocked(), err
	}
	snap := m.snapshotLocked()
	m.reg.broker.Publish(m.ID, Event{Type: EventState, Match: &snap})
	return snap, nil
}

// applyLocked runs one transition. Entering SUMMARY triggers the round's
// calculation right away, so every round is scored exactly once.
func (m *Match) applyLocked(a engine.Action) error {
	next, err := m.reg.engine.Transition(m.state, a)
	if err != nil {
		return err
	}
	m.state = next
	m.version++
	m.lastActive = time.Now().UTC()
	m.reg.logger.Debug("action applied", "match_id", m.ID, "action", a.Type(), "status", next.Status)

	if next.Status == climate.StatusSummary && !next.ResultsCalculated {
		scored, err := m.reg.engine.Transition(m.state, engine.CalculateResults{})
		if err != nil {
			m.reg.logger.Error("calculating results", "match_id", m.ID, "error", err)
		} else {
			m.state = scored
			m.version++
			m.reg.logger.Info("round scored",
				"match_id", m.ID,
				"round", scored.CurrentRound,
				"temperature", scored.Temperature.String(),
			)
		}
	}

	m.armDeadlineLocked()
	return nil
}

func (m *Match) armDeadlineLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.deadline = time.Time{}

	d := m.reg.turnDeadline
	if d <= 0 || m.closed || m.state.Status != climate.StatusPlaying {
		return
	}
	version := m.version
	m.deadline = time.Now().Add(d).UTC()
	m.timer = time.AfterFunc(d, func() { m.expire(version) })
}

// expire answers for the current team with the worst choice when the turn at
// version is still open.
func (m *Match) expire(version int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.version != version {
		return
	}
	team, ok := m.state.CurrentTeam()
	if !ok {
		return
	}
	q, _ := m.state.CurrentQuestion()
	worst := q.WorstChoice()

	if err := m.applyLocked(engine.AnswerQuestion{TeamID: team.ID, QuestionID: q.ID, ChoiceID: worst.ID}); err != nil {
		m.reg.logger.Error("auto-submitting answer", "match_id", m.ID, "error", err)
		return
	}
	m.reg.logger.Info("answer deadline expired", "match_id", m.ID, "team", team.Name, "question_id", q.ID)

	snap := m.snapshotLocked()
	m.reg.broker.Publish(m.ID, Event{Type: EventTimeout, Match: &snap})
}

func (m *Match) snapshotLocked() Snapshot {
	snap := Snapshot{MatchID: m.ID, Version: m.version, State: m.state.Clone()}
	if !m.deadline.IsZero() {
		d := m.deadline
		snap.Deadline = &d
	}
	return snap
}

func (m *Match) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.deadline = time.Time{}
}
