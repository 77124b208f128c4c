// Package selection draws scenarios and question sets for teams. All
// randomness in a match flows through a Selector so tests can seed it.
package selection

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/playperu/climatechance/internal/climate"
)

var (
	ErrEmptyPool   = errors.New("scenario pool is empty")
	ErrNoQuestions = errors.New("scenario has no questions")
)

// Selector shuffles and draws. It is safe for concurrent use; every shuffle
// holds the lock for the whole permutation.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// NewSeeded returns a deterministic selector.
func NewSeeded(seed int64) *Selector {
	// Non-cryptographic PRNG is intentional for reproducible draws.
	// #nosec G404
	return New(rand.NewPCG(seedWord(seed, "a"), seedWord(seed, "b")))
}

// NewRandom returns a selector seeded from the runtime's random source.
func NewRandom() *Selector {
	// #nosec G404
	return New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%s", seed, salt)
	return h.Sum64()
}

// Shuffle returns a uniformly permuted copy of items.
func Shuffle[T any](s *Selector, items []T) []T {
	out := slices.Clone(items)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// ShufflePool returns a permuted copy of the scenario pool.
func (s *Selector) ShufflePool(pool []climate.Scenario) []climate.Scenario {
	return Shuffle(s, pool)
}

// AssignScenarios gives each of n teams one scenario from a fresh shuffle of
// pool. When the pool is smaller than n, the remaining teams wrap around the
// unshuffled pool by index, so two teams may share a scenario.
func (s *Selector) AssignScenarios(pool []climate.Scenario, n int) ([]climate.Scenario, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	shuffled := s.ShufflePool(pool)
	out := make([]climate.Scenario, n)
	for i := range out {
		if i < len(shuffled) {
			out[i] = shuffled[i]
			continue
		}
		out[i] = pool[i%len(pool)]
	}
	return out, nil
}

// BuildQuestionSet draws exactly size question instances from the scenario.
// Short pools are repeated until they fill the round; each drawn question
// gets its own choice shuffle and an id unique within the set.
func (s *Selector) BuildQuestionSet(sc climate.Scenario, size int) ([]climate.QuestionInstance, error) {
	var flat []climate.Question
	for _, theme := range sc.Themes {
		for _, q := range theme.Questions {
			q.Theme = theme.Name
			flat = append(flat, q)
		}
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("scenario %q: %w", sc.ID, ErrNoQuestions)
	}

	shuffled := Shuffle(s, flat)
	pool := slices.Clone(shuffled)
	for len(pool) < size {
		pool = append(pool, shuffled...)
	}

	out := make([]climate.QuestionInstance, size)
	for i, q := range pool[:size] {
		out[i] = climate.QuestionInstance{
			ID:         fmt.Sprintf("%s-%d", q.ID, i),
			TemplateID: q.ID,
			Text:       q.Text,
			Theme:      q.Theme,
			Choices:    Shuffle(s, q.Choices),
			Fact:       q.Fact,
		}
	}
	return out, nil
}
