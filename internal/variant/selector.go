package variant

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/educontent/examforge/internal/catalog"
)

// DifficultyRange is an inclusive band on the 1..10 scale.
type DifficultyRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Querier is satisfied by *sql.DB and *sql.Tx; the assembler runs selection
// inside its own transaction.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Selector draws random, non-repeating exercise samples for a section.
//
// Strict matching is tolerant of an incompletely classified catalog: an
// exercise with no item_type or exam_type stays eligible. When the strict
// pool cannot fill the section, the selector relaxes to difficulty and
// not-archived only and logs the shortfall; under-fill after relaxation is a
// legitimate result, not an error.
type Selector struct {
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type SelectorOption func(*Selector)

// WithSeed fixes the sampling order. Samples over an unchanged pool become
// deterministic, which tests rely on.
func WithSeed(seed int64) SelectorOption {
	return func(s *Selector) { s.rng = rand.New(rand.NewSource(seed)) }
}

func NewSelector(logger *zap.Logger, opts ...SelectorOption) *Selector {
	s := &Selector{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type SelectRequest struct {
	Section       SectionSpec
	ExamType      string
	Difficulty    DifficultyRange
	PreferredTags []string
	ExcludeTags   []string

	// ExcludeIDs are exercises already placed earlier in the same assembly
	// run. They stay out of the pool in both the strict and the relaxed pass;
	// tolerant matching would otherwise offer an unclassified exercise to
	// every section.
	ExcludeIDs []string
}

// Select returns up to Section.Slots() distinct exercise ids. The result can
// be shorter than requested when the pool, even relaxed, is too small.
func (s *Selector) Select(ctx context.Context, q Querier, req SelectRequest) ([]string, error) {
	slots := req.Section.Slots()
	if slots <= 0 {
		return nil, nil
	}

	ids, preferred, err := s.candidates(ctx, q, req, false)
	if err != nil {
		return nil, err
	}
	if len(ids) < slots {
		s.logger.Warn("not enough exercises for section, relaxing conditions",
			zap.String("section", req.Section.Name),
			zap.Int("found", len(ids)),
			zap.Int("needed", slots))
		ids, preferred, err = s.candidates(ctx, q, req, true)
		if err != nil {
			return nil, err
		}
	}

	s.shuffle(ids)
	orderPreferredFirst(ids, preferred)
	if len(ids) > slots {
		ids = ids[:slots]
	}
	return ids, nil
}

// candidates fetches the eligible pool. relaxed drops the taxonomic
// predicates (item_type, exam_type) and the tag refinement layer, keeping
// the difficulty band, the not-archived rule, and the already-placed
// exclusion.
func (s *Selector) candidates(ctx context.Context, q Querier, req SelectRequest, relaxed bool) ([]string, map[string]bool, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "e.difficulty >= "+arg(req.Difficulty.Min))
	conds = append(conds, "e.difficulty <= "+arg(req.Difficulty.Max))
	conds = append(conds, "(e.status != '"+catalog.StatusArchived+"' OR e.status IS NULL)")

	if len(req.ExcludeIDs) > 0 {
		ph := make([]string, len(req.ExcludeIDs))
		for i, id := range req.ExcludeIDs {
			ph[i] = arg(id)
		}
		conds = append(conds, "e.id NOT IN ("+strings.Join(ph, ",")+")")
	}

	if !relaxed {
		conds = append(conds, "(e.item_type = "+arg(req.Section.ItemType)+" OR e.item_type = '"+catalog.ItemExercitiu+"' OR e.item_type IS NULL)")
		if req.ExamType != "" {
			conds = append(conds, "(e.exam_type = "+arg(req.ExamType)+" OR e.exam_type IS NULL)")
		}
		if len(req.ExcludeTags) > 0 {
			ph := make([]string, len(req.ExcludeTags))
			for i, k := range req.ExcludeTags {
				ph[i] = arg(k)
			}
			conds = append(conds, `NOT EXISTS (SELECT 1 FROM exercise_tags et
				JOIN tags t ON t.id = et.tag_id
				WHERE et.exercise_id = e.id AND t.key IN (`+strings.Join(ph, ",")+`))`)
		}
	}

	sel := "SELECT e.id, 0"
	if !relaxed && len(req.PreferredTags) > 0 {
		ph := make([]string, len(req.PreferredTags))
		for i, k := range req.PreferredTags {
			ph[i] = arg(k)
		}
		sel = `SELECT e.id, EXISTS (SELECT 1 FROM exercise_tags et
			JOIN tags t ON t.id = et.tag_id
			WHERE et.exercise_id = e.id AND t.key IN (` + strings.Join(ph, ",") + `))`
	}

	query := sel + " FROM exercises e WHERE " + strings.Join(conds, " AND ") + " ORDER BY e.id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("select exercises: %w", err)
	}
	defer rows.Close()

	var ids []string
	preferred := map[string]bool{}
	for rows.Next() {
		var id string
		var pref bool
		if err := rows.Scan(&id, &pref); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		if pref {
			preferred[id] = true
		}
	}
	return ids, preferred, rows.Err()
}

// shuffle randomizes candidate order under the selector's rng. Sampling the
// first N of a shuffled pool is a uniform draw without replacement.
func (s *Selector) shuffle(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// orderPreferredFirst stably moves preferred-tagged candidates to the front.
// Preference biases inclusion; it never excludes unpreferred exercises.
func orderPreferredFirst(ids []string, preferred map[string]bool) {
	if len(preferred) == 0 {
		return
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if preferred[id] {
			out = append(out, id)
		}
	}
	for _, id := range ids {
		if !preferred[id] {
			out = append(out, id)
		}
	}
	copy(ids, out)
}
