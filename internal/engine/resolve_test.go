package engine

import (
	"testing"

	"github.com/playperu/climatechance/internal/climate"
)

func TestResolveChoice(t *testing.T) {
	q := climate.QuestionInstance{
		ID: "s1-m-1-0",
		Choices: []climate.Choice{
			{ID: "c3", Text: "Use a ride-share service to split the cost and route.", Score: 3},
			{ID: "c1", Text: "Cycle the whole way, leaving extra time to cool down and change.", Score: 1},
			{ID: "c5", Text: "Book a private car for a guaranteed stress-free, seated journey.", Score: 5},
			{ID: "c2", Text: "Take the bus and train, enjoying the time to mentally prepare.", Score: 2},
			{ID: "c4", Text: "Rent an e-scooter for a direct, door-to-door trip.", Score: 4},
		},
	}

	tests := []struct {
		name   string
		input  string
		wantID string
	}{
		{"choice id", "c5", "c5"},
		{"choice id any case", "C2", "c2"},
		{"position", "1", "c3"},
		{"position with spaces", "  4 ", "c2"},
		{"full text", "rent an e-scooter for a direct, door-to-door trip.", "c4"},
		{"prefix", "cycle the", "c1"},
		{"typo in prefix", "bok a private car", "c5"},
		{"position out of range", "6", ""},
		{"empty", "   ", ""},
		{"too short for fuzzy", "xy", ""},
		{"nothing close", "teleport", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveChoice(q, tt.input)
			if tt.wantID == "" {
				if ok {
					t.Fatalf("resolved %q to %q, want no match", tt.input, got.ID)
				}
				return
			}
			if !ok {
				t.Fatalf("%q did not resolve, want %q", tt.input, tt.wantID)
			}
			if got.ID != tt.wantID {
				t.Fatalf("%q resolved to %q, want %q", tt.input, got.ID, tt.wantID)
			}
		})
	}
}

func TestResolveChoiceAmbiguousPrefix(t *testing.T) {
	q := climate.QuestionInstance{Choices: []climate.Choice{
		{ID: "a", Text: "Take the bus"},
		{ID: "b", Text: "Take the train"},
	}}
	if got, ok := ResolveChoice(q, "take the"); ok {
		t.Fatalf("ambiguous prefix resolved to %q", got.ID)
	}
}
