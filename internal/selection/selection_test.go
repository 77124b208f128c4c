package selection

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/playperu/climatechance/internal/climate"
)

func testScenario(id string, perTheme int) climate.Scenario {
	sc := climate.Scenario{ID: id, Title: "Scenario " + id}
	for _, theme := range []string{"Mobility", "Food", "Fashion", "Digital"} {
		t := climate.Theme{Name: theme}
		for i := 0; i < perTheme; i++ {
			q := climate.Question{ID: fmt.Sprintf("%s-%s-%d", id, theme, i), Text: "?"}
			for c := 1; c <= 5; c++ {
				q.Choices = append(q.Choices, climate.Choice{ID: fmt.Sprintf("c%d", c), Score: c})
			}
			t.Questions = append(t.Questions, q)
		}
		sc.Themes = append(sc.Themes, t)
	}
	return sc
}

func scenarioIDs(list []climate.Scenario) []string {
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

func TestSeededSelectorDeterministic(t *testing.T) {
	pool := []climate.Scenario{testScenario("s1", 1), testScenario("s2", 1), testScenario("s3", 1), testScenario("s4", 1)}

	a, err := NewSeeded(42).AssignScenarios(pool, 3)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	b, err := NewSeeded(42).AssignScenarios(pool, 3)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !slices.Equal(scenarioIDs(a), scenarioIDs(b)) {
		t.Fatalf("same seed gave %v and %v", scenarioIDs(a), scenarioIDs(b))
	}
}

func TestSeedWordChangesWithSalt(t *testing.T) {
	if seedWord(7, "a") == seedWord(7, "b") {
		t.Fatal("expected different seed words for different salts")
	}
}

func TestAssignScenariosWithoutRepeats(t *testing.T) {
	pool := []climate.Scenario{testScenario("s1", 1), testScenario("s2", 1), testScenario("s3", 1)}

	got, err := NewSeeded(1).AssignScenarios(pool, 3)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	ids := scenarioIDs(got)
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"s1", "s2", "s3"}) {
		t.Fatalf("assigned %v, want every scenario once", ids)
	}
}

func TestAssignScenariosWrapsSmallPool(t *testing.T) {
	pool := []climate.Scenario{testScenario("s1", 1), testScenario("s2", 1)}

	for n := 1; n <= 6; n++ {
		got, err := NewSeeded(int64(n)).AssignScenarios(pool, n)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("n=%d: got %d scenarios", n, len(got))
		}
		// Teams past the pool size wrap around the unshuffled order.
		for i := len(pool); i < n; i++ {
			if want := pool[i%len(pool)].ID; got[i].ID != want {
				t.Errorf("n=%d team %d: scenario %q, want %q", n, i, got[i].ID, want)
			}
		}
	}
}

func TestAssignScenariosSingleEntryPool(t *testing.T) {
	got, err := NewRandom().AssignScenarios([]climate.Scenario{testScenario("only", 1)}, 5)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	for i, s := range got {
		if s.ID != "only" {
			t.Errorf("team %d: scenario %q, want only", i, s.ID)
		}
	}
}

func TestAssignScenariosEmptyPool(t *testing.T) {
	if _, err := NewRandom().AssignScenarios(nil, 2); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("err = %v, want ErrEmptyPool", err)
	}
}

func TestBuildQuestionSetSizing(t *testing.T) {
	tests := []struct {
		name     string
		perTheme int
	}{
		{"one question per theme", 1},
		{"two per theme", 2},
		{"six per theme", 6},
	}

	for _, tt := range tests {
		for _, size := range []int{3, 4, 6} {
			t.Run(fmt.Sprintf("%s/%d", tt.name, size), func(t *testing.T) {
				set, err := NewSeeded(9).BuildQuestionSet(testScenario("s1", tt.perTheme), size)
				if err != nil {
					t.Fatalf("build: %v", err)
				}
				if len(set) != size {
					t.Fatalf("len = %d, want %d", len(set), size)
				}
				seen := make(map[string]bool)
				for _, q := range set {
					if seen[q.ID] {
						t.Fatalf("duplicate instance id %q", q.ID)
					}
					seen[q.ID] = true
					if q.Theme == "" {
						t.Errorf("instance %q has no theme", q.ID)
					}
					if len(q.Choices) != 5 {
						t.Errorf("instance %q has %d choices", q.ID, len(q.Choices))
					}
				}
			})
		}
	}
}

func TestBuildQuestionSetRepeatsTinyScenario(t *testing.T) {
	sc := climate.Scenario{ID: "tiny", Themes: []climate.Theme{{
		Name:      "Food",
		Questions: []climate.Question{{ID: "q1", Choices: []climate.Choice{{ID: "c1", Score: 1}}}},
	}}}

	set, err := NewSeeded(3).BuildQuestionSet(sc, 4)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{"q1-0", "q1-1", "q1-2", "q1-3"}
	for i, q := range set {
		if q.ID != want[i] {
			t.Errorf("instance %d id = %q, want %q", i, q.ID, want[i])
		}
		if q.TemplateID != "q1" {
			t.Errorf("instance %d template = %q, want q1", i, q.TemplateID)
		}
	}
}

func TestBuildQuestionSetDoesNotMutateTemplate(t *testing.T) {
	sc := testScenario("s1", 2)
	before := slices.Clone(sc.Themes[0].Questions[0].Choices)

	for i := 0; i < 10; i++ {
		if _, err := NewRandom().BuildQuestionSet(sc, 6); err != nil {
			t.Fatalf("build: %v", err)
		}
	}
	if !slices.Equal(before, sc.Themes[0].Questions[0].Choices) {
		t.Fatalf("template choices changed: %v", sc.Themes[0].Questions[0].Choices)
	}
}

func TestBuildQuestionSetNoQuestions(t *testing.T) {
	_, err := NewRandom().BuildQuestionSet(climate.Scenario{ID: "empty"}, 3)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestSelectorConcurrentDraws(t *testing.T) {
	pool := []climate.Scenario{testScenario("s1", 2), testScenario("s2", 2), testScenario("s3", 2)}
	sel := NewSeeded(9)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assigned, err := sel.AssignScenarios(pool, 4)
				if err != nil {
					errs <- err
					return
				}
				if _, err := sel.BuildQuestionSet(assigned[0], 6); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent draw: %v", err)
	}

	// The source must still produce full permutations afterwards.
	got := scenarioIDs(sel.ShufflePool(pool))
	slices.Sort(got)
	if !slices.Equal(got, []string{"s1", "s2", "s3"}) {
		t.Errorf("pool after concurrent use = %v", got)
	}
}
