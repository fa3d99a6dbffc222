package tagging

import (
	"context"
	"testing"
)

func keys(ps []Proposal) map[string]bool {
	m := make(map[string]bool, len(ps))
	for _, p := range ps {
		m[p.Namespace+"/"+p.Key] = true
	}
	return m
}

func TestHeuristic_Suggest(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		solution  string
		wantKeys  []string
		dontWant  []string
	}{
		{
			name:      "base topic always present",
			statement: "Calculați 2+2.",
			wantKeys:  []string{"topic/matematica"},
			dontWant:  []string{"subtopic/ecuatii"},
		},
		{
			name:      "equation keyword",
			statement: "Rezolvați ecuația x^2 = 4.",
			wantKeys:  []string{"topic/matematica", "subtopic/ecuatii"},
		},
		{
			name:      "keyword in solution counts",
			statement: "Aflați x.",
			solution:  "Derivata funcției este 2x.",
			wantKeys:  []string{"subtopic/derivate", "subtopic/functii"},
		},
		{
			name:      "diacritics and ascii both match",
			statement: "Fie functia f si triunghiul ABC.",
			wantKeys:  []string{"subtopic/functii", "subtopic/geometrie-triunghi"},
		},
		{
			name:      "multiple topics",
			statement: "Probabilitatea ca termenii progresiei sa fie pari.",
			wantKeys:  []string{"subtopic/probabilitati", "subtopic/progresii"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Heuristic{}.Suggest(context.Background(), tt.statement, tt.solution)
			if err != nil {
				t.Fatalf("Suggest() error = %v", err)
			}
			m := keys(got)
			for _, k := range tt.wantKeys {
				if !m[k] {
					t.Errorf("Suggest() missing %s; got %v", k, got)
				}
			}
			for _, k := range tt.dontWant {
				if m[k] {
					t.Errorf("Suggest() unexpectedly proposed %s", k)
				}
			}
		})
	}
}

func TestHeuristic_EmptyStatement(t *testing.T) {
	got, err := Heuristic{}.Suggest(context.Background(), "   ", "derivata")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if got != nil {
		t.Errorf("Suggest(empty) = %v; want nil", got)
	}
}

func TestHeuristic_NoDuplicatePerRule(t *testing.T) {
	got, err := Heuristic{}.Suggest(context.Background(), "ecuatia si ecuația", "")
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	n := 0
	for _, p := range got {
		if p.Key == "ecuatii" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("ecuatii proposed %d times; want 1", n)
	}
}
