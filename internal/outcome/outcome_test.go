package outcome

import (
	"errors"
	"testing"
)

func TestDefaultTablesPartitionScoreSpan(t *testing.T) {
	if err := DefaultIndividual().Validate(); err != nil {
		t.Fatalf("individual table: %v", err)
	}
	if err := DefaultCollective().Validate(); err != nil {
		t.Fatalf("collective table: %v", err)
	}
}

func TestDefaultTablesCoverLobbyRange(t *testing.T) {
	ind := DefaultIndividual()
	col := DefaultCollective()

	for _, qpr := range []int{3, 4, 6} {
		for score := qpr; score <= qpr*5; score++ {
			if _, err := ind.Lookup(qpr, score); err != nil {
				t.Errorf("individual qpr=%d score=%d: %v", qpr, score, err)
			}
		}
		for teams := 1; teams <= 6; teams++ {
			for total := teams * qpr; total <= teams*qpr*5; total++ {
				if _, err := col.Lookup(teams, qpr, total); err != nil {
					t.Errorf("collective teams=%d qpr=%d total=%d: %v", teams, qpr, total, err)
				}
			}
		}
	}
}

func TestIndividualLookup(t *testing.T) {
	tests := []struct {
		qpr       int
		score     int
		wantLabel string
		wantDelta int
	}{
		{3, 3, ClimateChampion, 5},
		{3, 4, ClimateChampion, 5},
		{3, 9, CasualConsumer, 0},
		{3, 15, CrisisCatalyst, -6},
		{4, 16, CarbonCreator, -4},
		{6, 11, ConsciousCitizen, 3},
	}

	table := DefaultIndividual()
	for _, tt := range tests {
		tier, err := table.Lookup(tt.qpr, tt.score)
		if err != nil {
			t.Fatalf("lookup(%d, %d): %v", tt.qpr, tt.score, err)
		}
		if tier.Label != tt.wantLabel {
			t.Errorf("lookup(%d, %d) label = %q, want %q", tt.qpr, tt.score, tier.Label, tt.wantLabel)
		}
		if tier.TokenDelta != tt.wantDelta {
			t.Errorf("lookup(%d, %d) delta = %d, want %d", tt.qpr, tt.score, tier.TokenDelta, tt.wantDelta)
		}
	}
}

func TestLookupMissIsError(t *testing.T) {
	table := DefaultIndividual()

	if _, err := table.Lookup(3, 16); !errors.Is(err, ErrNoMatch) {
		t.Errorf("score outside range: err = %v, want ErrNoMatch", err)
	}
	if _, err := table.Lookup(5, 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("unknown round size: err = %v, want ErrNotConfigured", err)
	}
	if _, err := DefaultCollective().Lookup(7, 3, 40); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("unknown team count: err = %v, want ErrNotConfigured", err)
	}
}

func TestCollectiveLookupTwoTeams(t *testing.T) {
	step, err := DefaultCollective().Lookup(2, 3, 18)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if step.Delta != 2 {
		t.Fatalf("delta = %d, want 2", step.Delta)
	}
}

func TestValidateDetectsDefects(t *testing.T) {
	tests := []struct {
		name  string
		table IndividualTable
	}{
		{"gap", IndividualTable{3: {{Min: 3, Max: 5}, {Min: 7, Max: 15}}}},
		{"overlap", IndividualTable{3: {{Min: 3, Max: 8}, {Min: 8, Max: 15}}}},
		{"short", IndividualTable{3: {{Min: 3, Max: 14}}}},
		{"late start", IndividualTable{3: {{Min: 4, Max: 15}}}},
		{"empty", IndividualTable{3: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBestTier(t *testing.T) {
	best, ok := DefaultIndividual().Best(4)
	if !ok {
		t.Fatal("expected a best tier for 4 questions")
	}
	if best.Label != ClimateChampion {
		t.Fatalf("best = %q, want %q", best.Label, ClimateChampion)
	}
}
