package variant

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateRequest describes the paper to assemble. Difficulty and duration
// fall back to the standard defaults when zero.
type GenerateRequest struct {
	Name            string          `json:"name"`
	ExamType        string          `json:"exam_type"`
	Profile         string          `json:"profile,omitempty"`
	Year            int             `json:"year,omitempty"`
	Session         string          `json:"session,omitempty"`
	Difficulty      DifficultyRange `json:"difficulty,omitempty"`
	PreferredTags   []string        `json:"preferred_tags,omitempty"`
	ExcludeTags     []string        `json:"exclude_tags,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
}

// Generator assembles complete variants from the exercise pool. One
// generation is one transaction: either the variant and all of its
// memberships land, or nothing does.
type Generator struct {
	db       *sql.DB
	selector *Selector
	logger   *zap.Logger

	defaultDifficulty DifficultyRange
	defaultDuration   int
}

type GeneratorOption func(*Generator)

// WithDefaults replaces the fallback difficulty band and duration applied to
// requests that leave them unset.
func WithDefaults(difficulty DifficultyRange, durationMinutes int) GeneratorOption {
	return func(g *Generator) {
		g.defaultDifficulty = difficulty
		g.defaultDuration = durationMinutes
	}
}

func NewGenerator(db *sql.DB, selector *Selector, logger *zap.Logger, opts ...GeneratorOption) *Generator {
	g := &Generator{
		db:                db,
		selector:          selector,
		logger:            logger,
		defaultDifficulty: DifficultyRange{Min: 3, Max: 7},
		defaultDuration:   180,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (Summary, error) {
	// Template resolution fails before anything is written.
	tpl, err := TemplateFor(req.ExamType, req.Profile)
	if err != nil {
		return Summary{}, err
	}
	if req.Difficulty.Min == 0 && req.Difficulty.Max == 0 {
		req.Difficulty = g.defaultDifficulty
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = g.defaultDuration
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("begin generation: %w", err)
	}
	defer tx.Rollback()

	variantID := uuid.NewString()
	now := time.Now().Unix()
	_, err = tx.ExecContext(ctx, `INSERT INTO variants
		(id, name, exam_type, profile, year, session, duration_minutes, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		variantID, req.Name, req.ExamType, nullStr(req.Profile), nullInt(req.Year),
		nullStr(req.Session), req.DurationMinutes, StatusDraft, now, now)
	if err != nil {
		return Summary{}, fmt.Errorf("create variant: %w", err)
	}

	// Template order is authoritative: order_index keeps counting across
	// sections and is never reset.
	orderIndex := 0
	placed := 0
	var placedIDs []string
	fills := make([]SectionFill, 0, len(tpl.Sections))
	for _, section := range tpl.Sections {
		ids, err := g.selector.Select(ctx, tx, SelectRequest{
			Section:       section,
			ExamType:      req.ExamType,
			Difficulty:    req.Difficulty,
			PreferredTags: req.PreferredTags,
			ExcludeTags:   req.ExcludeTags,
			ExcludeIDs:    placedIDs,
		})
		if err != nil {
			return Summary{}, err
		}
		for _, exerciseID := range ids {
			_, err := tx.ExecContext(ctx, `INSERT INTO variant_exercises
				(variant_id, exercise_id, order_index, section_name)
				VALUES ($1,$2,$3,$4)`,
				variantID, exerciseID, orderIndex, section.Name)
			if err != nil {
				return Summary{}, fmt.Errorf("place exercise in %s: %w", section.Name, err)
			}
			orderIndex++
		}
		placedIDs = append(placedIDs, ids...)
		placed += len(ids)
		fills = append(fills, SectionFill{Section: section.Name, Expected: section.Slots(), Placed: len(ids)})
	}

	// Nominal total from the template, not the realized fill. An under-filled
	// paper still reports the intended points; callers cross-check
	// exercise_count against the structure.
	totalPoints := tpl.TotalPoints()
	if _, err := tx.ExecContext(ctx, `UPDATE variants SET total_points=$1, updated_at=$2 WHERE id=$3`,
		totalPoints, time.Now().Unix(), variantID); err != nil {
		return Summary{}, fmt.Errorf("update total points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("commit generation: %w", err)
	}

	g.logger.Info("variant generated",
		zap.String("variant_id", variantID),
		zap.String("exam_type", req.ExamType),
		zap.Int("exercises", placed),
		zap.Int("total_points", totalPoints))

	return Summary{
		VariantID:     variantID,
		ExerciseCount: placed,
		TotalPoints:   totalPoints,
		Sections:      fills,
	}, nil
}
