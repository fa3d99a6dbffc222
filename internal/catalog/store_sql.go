package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrArchived         = errors.New("exercise is archived")
)

type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLStore(db *sql.DB, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) PutExercise(ctx context.Context, e *Exercise) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusDraft
	}
	var metaJSON any
	if e.Metadata != nil {
		buf, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = string(buf)
	}
	now := time.Now().Unix()
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `INSERT INTO exercises
		(id, exam_type, profile, subject_part, item_type,
		 statement_latex, statement_text, answer_latex, solution_latex,
		 scoring_guide_latex, scoring_guide_text,
		 difficulty, estimated_time_sec, points, metadata_json, status,
		 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		e.ID, nullStr(e.ExamType), nullStr(e.Profile), nullStr(e.SubjectPart), nullStr(e.ItemType),
		e.StatementLatex, nullStr(e.StatementText), nullStr(e.AnswerLatex), nullStr(e.SolutionLatex),
		nullStr(e.ScoringGuideLatex), nullStr(e.ScoringGuideText),
		nullInt(e.Difficulty), nullInt(e.EstimatedTimeSec), nullInt(e.Points), metaJSON, e.Status,
		e.CreatedAt, e.UpdatedAt)
	return err
}

func (s *SQLStore) GetExercise(ctx context.Context, id string) (Exercise, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exerciseCols+` FROM exercises WHERE id=$1`, id)
	e, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrExerciseNotFound
	}
	return e, err
}

func (s *SQLStore) ListExercises(ctx context.Context, f ExerciseFilter) ([]Exercise, error) {
	q := `SELECT ` + exerciseCols + ` FROM exercises`
	var conds []string
	var args []any
	if f.ExamType != "" {
		args = append(args, f.ExamType)
		conds = append(conds, fmt.Sprintf("exam_type=$%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateExercise overwrites the mutable fields of an existing exercise.
// Archived exercises are immutable.
func (s *SQLStore) UpdateExercise(ctx context.Context, e *Exercise) error {
	cur, err := s.GetExercise(ctx, e.ID)
	if err != nil {
		return err
	}
	if cur.Status == StatusArchived {
		return ErrArchived
	}
	var metaJSON any
	if e.Metadata != nil {
		buf, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metaJSON = string(buf)
	}
	e.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `UPDATE exercises SET
		exam_type=$1, profile=$2, subject_part=$3, item_type=$4,
		statement_latex=$5, statement_text=$6, answer_latex=$7, solution_latex=$8,
		scoring_guide_latex=$9, scoring_guide_text=$10,
		difficulty=$11, estimated_time_sec=$12, points=$13, metadata_json=$14, status=$15,
		updated_at=$16
		WHERE id=$17`,
		nullStr(e.ExamType), nullStr(e.Profile), nullStr(e.SubjectPart), nullStr(e.ItemType),
		e.StatementLatex, nullStr(e.StatementText), nullStr(e.AnswerLatex), nullStr(e.SolutionLatex),
		nullStr(e.ScoringGuideLatex), nullStr(e.ScoringGuideText),
		nullInt(e.Difficulty), nullInt(e.EstimatedTimeSec), nullInt(e.Points), metaJSON, e.Status,
		e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (s *SQLStore) DeleteExercise(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exercises WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// UpsertTag creates a tag or, when (namespace, key) already exists, refreshes
// its label and returns the existing row.
func (s *SQLStore) UpsertTag(ctx context.Context, t *Tag) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	err := s.db.QueryRowContext(ctx, `INSERT INTO tags (id, namespace, key, label, parent_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (namespace, key) DO UPDATE SET label=EXCLUDED.label
		RETURNING id`,
		t.ID, t.Namespace, t.Key, nullStr(t.Label), nullStr(t.ParentID), t.CreatedAt).Scan(&t.ID)
	return err
}

func (s *SQLStore) ListTags(ctx context.Context, namespace string) ([]Tag, error) {
	q := `SELECT id, namespace, key, COALESCE(label,''), COALESCE(parent_id,''), created_at FROM tags`
	var args []any
	if namespace != "" {
		q += ` WHERE namespace=$1`
		args = append(args, namespace)
	}
	q += ` ORDER BY namespace, key`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Namespace, &t.Key, &t.Label, &t.ParentID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TagProposal is one suggested classification to attach to an exercise.
type TagProposal struct {
	Namespace  string  `json:"namespace"`
	Key        string  `json:"key"`
	Label      string  `json:"label,omitempty"`
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
	CreatedBy  string  `json:"created_by,omitempty"`
}

// ApplyTags upserts each proposal's tag row and links it to the exercise.
// Re-applying an existing link updates weight and confidence in place.
func (s *SQLStore) ApplyTags(ctx context.Context, exerciseID string, proposals []TagProposal) error {
	if _, err := s.GetExercise(ctx, exerciseID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range proposals {
		tagID := uuid.NewString()
		err := tx.QueryRowContext(ctx, `INSERT INTO tags (id, namespace, key, label, created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (namespace, key) DO UPDATE SET label=EXCLUDED.label
			RETURNING id`,
			tagID, p.Namespace, p.Key, nullStr(p.Label), time.Now().Unix()).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %s/%s: %w", p.Namespace, p.Key, err)
		}
		weight := p.Weight
		if weight == 0 {
			weight = 1.0
		}
		confidence := p.Confidence
		if confidence == 0 {
			confidence = 1.0
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO exercise_tags (exercise_id, tag_id, weight, confidence, created_by)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (exercise_id, tag_id) DO UPDATE SET weight=EXCLUDED.weight, confidence=EXCLUDED.confidence`,
			exerciseID, tagID, weight, confidence, nullStr(p.CreatedBy))
		if err != nil {
			return fmt.Errorf("link tag %s/%s: %w", p.Namespace, p.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("tags applied",
		zap.String("exercise_id", exerciseID),
		zap.Int("count", len(proposals)))
	return nil
}

func (s *SQLStore) ExerciseTags(ctx context.Context, exerciseID string) ([]AppliedTag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.namespace, t.key, COALESCE(t.label,''),
		COALESCE(t.parent_id,''), t.created_at, et.weight, et.confidence, COALESCE(et.created_by,'')
		FROM exercise_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.exercise_id=$1
		ORDER BY t.namespace, t.key`, exerciseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AppliedTag
	for rows.Next() {
		var a AppliedTag
		if err := rows.Scan(&a.ID, &a.Namespace, &a.Key, &a.Label, &a.ParentID, &a.CreatedAt,
			&a.Weight, &a.Confidence, &a.CreatedBy); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const exerciseCols = `id, COALESCE(exam_type,''), COALESCE(profile,''), COALESCE(subject_part,''),
	COALESCE(item_type,''), statement_latex, COALESCE(statement_text,''), COALESCE(answer_latex,''),
	COALESCE(solution_latex,''), COALESCE(scoring_guide_latex,''), COALESCE(scoring_guide_text,''),
	COALESCE(difficulty,0), COALESCE(estimated_time_sec,0), COALESCE(points,0),
	COALESCE(metadata_json,''), COALESCE(status,''), created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (Exercise, error) {
	var e Exercise
	var metaJSON string
	err := row.Scan(&e.ID, &e.ExamType, &e.Profile, &e.SubjectPart, &e.ItemType,
		&e.StatementLatex, &e.StatementText, &e.AnswerLatex, &e.SolutionLatex,
		&e.ScoringGuideLatex, &e.ScoringGuideText,
		&e.Difficulty, &e.EstimatedTimeSec, &e.Points,
		&metaJSON, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Exercise{}, err
	}
	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &e.Metadata); err != nil {
			e.Metadata = nil
		}
	}
	return e, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
