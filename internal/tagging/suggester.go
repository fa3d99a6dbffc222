// Package tagging proposes classification tags for an exercise from its
// statement and solution text. A language-model backed implementation can
// satisfy Suggester; when no model is configured the deterministic Heuristic
// answers, so callers never block on missing credentials.
package tagging

import (
	"context"
	"strings"
)

type Proposal struct {
	Namespace string  `json:"namespace"` // topic|subtopic|skill
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Weight    float64 `json:"weight"`
}

type Suggester interface {
	Suggest(ctx context.Context, statement, solution string) ([]Proposal, error)
}

// Heuristic tags by keyword. Deterministic for a given input.
type Heuristic struct{}

type keywordRule struct {
	needles []string
	tag     Proposal
}

var rules = []keywordRule{
	{
		needles: []string{"ecuati", "ecuați"},
		tag:     Proposal{Namespace: "subtopic", Key: "ecuatii", Label: "Ecuații", Weight: 0.9},
	},
	{
		needles: []string{"funct", "funcț"},
		tag:     Proposal{Namespace: "subtopic", Key: "functii", Label: "Funcții", Weight: 0.9},
	},
	{
		needles: []string{"triun"},
		tag:     Proposal{Namespace: "subtopic", Key: "geometrie-triunghi", Label: "Geometrie - Triunghi", Weight: 0.9},
	},
	{
		needles: []string{"derivat"},
		tag:     Proposal{Namespace: "subtopic", Key: "derivate", Label: "Derivate", Weight: 0.9},
	},
	{
		needles: []string{"integral"},
		tag:     Proposal{Namespace: "subtopic", Key: "integrale", Label: "Integrale", Weight: 0.9},
	},
	{
		needles: []string{"probabilit"},
		tag:     Proposal{Namespace: "subtopic", Key: "probabilitati", Label: "Probabilități", Weight: 0.9},
	},
	{
		needles: []string{"progresi"},
		tag:     Proposal{Namespace: "subtopic", Key: "progresii", Label: "Progresii", Weight: 0.8},
	},
}

func (Heuristic) Suggest(ctx context.Context, statement, solution string) ([]Proposal, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, nil
	}
	out := []Proposal{
		{Namespace: "topic", Key: "matematica", Label: "Matematică", Weight: 1.0},
	}
	haystack := strings.ToLower(statement + "\n" + solution)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(haystack, n) {
				out = append(out, r.tag)
				break
			}
		}
	}
	return out, nil
}
