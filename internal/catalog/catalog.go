// Package catalog loads the read-only scenario content the engine draws from.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/playperu/climatechance/internal/climate"
)

//go:embed scenarios.yaml
var builtinYAML []byte

var ErrInvalid = errors.New("invalid catalog")

// Document types as they appear in catalog YAML files.

type fileDoc struct {
	Scenarios []scenarioDoc `yaml:"scenarios"`
}

type scenarioDoc struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Icon        string     `yaml:"icon"`
	Color       string     `yaml:"color"`
	ImageURL    string     `yaml:"imageUrl"`
	Themes      []themeDoc `yaml:"themes"`
}

type themeDoc struct {
	Name      string        `yaml:"name"`
	Questions []questionDoc `yaml:"questions"`
}

type questionDoc struct {
	ID      string      `yaml:"id"`
	Text    string      `yaml:"text"`
	Choices []choiceDoc `yaml:"choices"`
	Fact    *factDoc    `yaml:"fact"`
}

type choiceDoc struct {
	ID    string `yaml:"id"`
	Text  string `yaml:"text"`
	Score int    `yaml:"score"`
}

type factDoc struct {
	Text string `yaml:"text"`
	URL  string `yaml:"url"`
}

// Builtin returns the catalog compiled into the binary.
func Builtin() ([]climate.Scenario, error) {
	return Parse(builtinYAML)
}

// LoadFile reads a catalog YAML file from disk.
func LoadFile(path string) ([]climate.Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a catalog from r.
func Load(r io.Reader) ([]climate.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) ([]climate.Scenario, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	scenarios := make([]climate.Scenario, len(doc.Scenarios))
	for i, sd := range doc.Scenarios {
		scenarios[i] = sd.toScenario()
	}
	if err := Validate(scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (d scenarioDoc) toScenario() climate.Scenario {
	sc := climate.Scenario{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Icon:        d.Icon,
		Color:       d.Color,
		ImageURL:    d.ImageURL,
		Themes:      make([]climate.Theme, len(d.Themes)),
	}
	for i, td := range d.Themes {
		theme := climate.Theme{Name: td.Name, Questions: make([]climate.Question, len(td.Questions))}
		for j, qd := range td.Questions {
			q := climate.Question{ID: qd.ID, Text: qd.Text, Theme: td.Name}
			for _, cd := range qd.Choices {
				q.Choices = append(q.Choices, climate.Choice{ID: cd.ID, Text: cd.Text, Score: cd.Score})
			}
			if qd.Fact != nil {
				q.Fact = &climate.Fact{Text: qd.Fact.Text, URL: qd.Fact.URL}
			}
			theme.Questions[j] = q
		}
		sc.Themes[i] = theme
	}
	return sc
}

// Validate enforces the catalog contract: at least one scenario, unique
// scenario ids, the same theme set everywhere, and five uniquely identified
// choices per question scored within [1,5].
func Validate(scenarios []climate.Scenario) error {
	if len(scenarios) == 0 {
		return fmt.Errorf("%w: no scenarios", ErrInvalid)
	}

	want := themeSet(scenarios[0])
	ids := make(map[string]bool, len(scenarios))
	for _, sc := range scenarios {
		if strings.TrimSpace(sc.ID) == "" {
			return fmt.Errorf("%w: scenario without id", ErrInvalid)
		}
		if ids[sc.ID] {
			return fmt.Errorf("%w: duplicate scenario id %q", ErrInvalid, sc.ID)
		}
		ids[sc.ID] = true

		if got := themeSet(sc); !slices.Equal(got, want) {
			return fmt.Errorf("%w: scenario %q themes %v, want %v", ErrInvalid, sc.ID, got, want)
		}
		if sc.QuestionCount() == 0 {
			return fmt.Errorf("%w: scenario %q has no questions", ErrInvalid, sc.ID)
		}
		for _, theme := range sc.Themes {
			for _, q := range theme.Questions {
				if err := validateQuestion(q); err != nil {
					return fmt.Errorf("%w: scenario %q: %v", ErrInvalid, sc.ID, err)
				}
			}
		}
	}
	return nil
}

func validateQuestion(q climate.Question) error {
	if q.ID == "" {
		return errors.New("question without id")
	}
	if len(q.Choices) != climate.ChoicesPerQuestion {
		return fmt.Errorf("question %q has %d choices, want %d", q.ID, len(q.Choices), climate.ChoicesPerQuestion)
	}
	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if seen[c.ID] {
			return fmt.Errorf("question %q repeats choice %q", q.ID, c.ID)
		}
		seen[c.ID] = true
		if c.Score < climate.MinChoiceScore || c.Score > climate.MaxChoiceScore {
			return fmt.Errorf("question %q choice %q scores %d", q.ID, c.ID, c.Score)
		}
	}
	return nil
}

func themeSet(sc climate.Scenario) []string {
	names := sc.ThemeNames()
	slices.Sort(names)
	return names
}
