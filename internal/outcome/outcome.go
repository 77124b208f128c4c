// Package outcome holds the static score-to-outcome lookup tables: the
// individual tier table and the collective temperature table.
package outcome

import (
	"errors"
	"fmt"
	"sort"

	"github.com/playperu/climatechance/internal/climate"
)

// ErrNoMatch means a score fell outside every configured range. It is a data
// defect in the tables, never a recoverable condition.
var ErrNoMatch = errors.New("no outcome row matches score")

// ErrNotConfigured means the table has no rows for the requested key.
var ErrNotConfigured = errors.New("outcome table not configured")

// Tier is one row of the individual table.
type Tier struct {
	Min        int    `json:"min"`
	Max        int    `json:"max"`
	Label      string `json:"label"`
	TokenDelta int    `json:"tokenDelta"`
}

// Step is one row of the collective table.
type Step struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Delta int `json:"delta"`
}

// IndividualTable maps questions-per-round to tiers ordered best to worst.
type IndividualTable map[int][]Tier

// CollectiveTable maps team count, then questions-per-round, to steps.
type CollectiveTable map[int]map[int][]Step

// Lookup returns the tier whose range contains score.
func (t IndividualTable) Lookup(questionsPerRound, score int) (Tier, error) {
	rows, ok := t[questionsPerRound]
	if !ok {
		return Tier{}, fmt.Errorf("individual table for %d questions: %w", questionsPerRound, ErrNotConfigured)
	}
	for _, r := range rows {
		if score >= r.Min && score <= r.Max {
			return r, nil
		}
	}
	return Tier{}, fmt.Errorf("individual score %d with %d questions: %w", score, questionsPerRound, ErrNoMatch)
}

// Best returns the top tier for the given round size.
func (t IndividualTable) Best(questionsPerRound int) (Tier, bool) {
	rows := t[questionsPerRound]
	if len(rows) == 0 {
		return Tier{}, false
	}
	return rows[0], true
}

// Lookup returns the step whose range contains the teams' summed round score.
func (t CollectiveTable) Lookup(teamCount, questionsPerRound, total int) (Step, error) {
	rows, ok := t[teamCount][questionsPerRound]
	if !ok {
		return Step{}, fmt.Errorf("collective table for %d teams, %d questions: %w", teamCount, questionsPerRound, ErrNotConfigured)
	}
	for _, r := range rows {
		if total >= r.Min && total <= r.Max {
			return r, nil
		}
	}
	return Step{}, fmt.Errorf("collective total %d for %d teams, %d questions: %w", total, teamCount, questionsPerRound, ErrNoMatch)
}

// Covers reports whether the table has rows for the team count and round size.
func (t CollectiveTable) Covers(teamCount, questionsPerRound int) bool {
	_, ok := t[teamCount][questionsPerRound]
	return ok
}

// TeamCounts returns the configured team counts in ascending order.
func (t CollectiveTable) TeamCounts() []int {
	counts := make([]int, 0, len(t))
	for n := range t {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	return counts
}

// Validate checks that every row set partitions [qpr*min, qpr*max] with no gap
// and no overlap, in ascending order.
func (t IndividualTable) Validate() error {
	for qpr, rows := range t {
		spans := make([][2]int, len(rows))
		for i, r := range rows {
			spans[i] = [2]int{r.Min, r.Max}
		}
		lo, hi := qpr*climate.MinChoiceScore, qpr*climate.MaxChoiceScore
		if err := checkPartition(spans, lo, hi); err != nil {
			return fmt.Errorf("individual table, %d questions: %w", qpr, err)
		}
	}
	return nil
}

// Validate checks every (team count, round size) row set the same way as
// IndividualTable.Validate over [n*qpr*min, n*qpr*max].
func (t CollectiveTable) Validate() error {
	for n, byQPR := range t {
		for qpr, rows := range byQPR {
			spans := make([][2]int, len(rows))
			for i, r := range rows {
				spans[i] = [2]int{r.Min, r.Max}
			}
			lo, hi := n*qpr*climate.MinChoiceScore, n*qpr*climate.MaxChoiceScore
			if err := checkPartition(spans, lo, hi); err != nil {
				return fmt.Errorf("collective table, %d teams, %d questions: %w", n, qpr, err)
			}
		}
	}
	return nil
}

func checkPartition(spans [][2]int, lo, hi int) error {
	if len(spans) == 0 {
		return errors.New("no rows")
	}
	next := lo
	for _, s := range spans {
		if s[0] > s[1] {
			return fmt.Errorf("row [%d,%d] is inverted", s[0], s[1])
		}
		if s[0] != next {
			if s[0] > next {
				return fmt.Errorf("gap before row [%d,%d]: %d not covered", s[0], s[1], next)
			}
			return fmt.Errorf("row [%d,%d] overlaps previous row", s[0], s[1])
		}
		next = s[1] + 1
	}
	if next-1 != hi {
		return fmt.Errorf("rows end at %d, want %d", next-1, hi)
	}
	return nil
}
