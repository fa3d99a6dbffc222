package variant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrVariantNotFound      = errors.New("variant not found")
	ErrExerciseNotInVariant = errors.New("exercise not found in variant")
)

type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLStore(db *sql.DB, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) Create(ctx context.Context, v *Variant) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = StatusDraft
	}
	now := time.Now().Unix()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `INSERT INTO variants
		(id, name, exam_type, profile, year, session, total_points, duration_minutes, instructions, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		v.ID, v.Name, v.ExamType, nullStr(v.Profile), nullInt(v.Year), nullStr(v.Session),
		nullInt(v.TotalPoints), nullInt(v.DurationMinutes), nullStr(v.Instructions), v.Status,
		v.CreatedAt, v.UpdatedAt)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Variant, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+variantCols+` FROM variants WHERE id=$1`, id)
	v, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Variant{}, ErrVariantNotFound
	}
	return v, err
}

func (s *SQLStore) List(ctx context.Context, f Filter) ([]Variant, error) {
	q := `SELECT ` + variantCols + ` FROM variants`
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
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, v *Variant) error {
	v.UpdatedAt = time.Now().Unix()
	res, err := s.db.ExecContext(ctx, `UPDATE variants SET
		name=$1, exam_type=$2, profile=$3, year=$4, session=$5, total_points=$6,
		duration_minutes=$7, instructions=$8, status=$9, updated_at=$10
		WHERE id=$11`,
		v.Name, v.ExamType, nullStr(v.Profile), nullInt(v.Year), nullStr(v.Session),
		nullInt(v.TotalPoints), nullInt(v.DurationMinutes), nullStr(v.Instructions), v.Status,
		v.UpdatedAt, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVariantNotFound
	}
	return nil
}

// Delete removes the variant; its membership rows go with it (cascade).
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM variants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVariantNotFound
	}
	return nil
}

// AddExercises appends exercises after the current highest order_index.
// Exercises already present are skipped, not duplicated. Manual membership
// edits recompute total_points from the realized exercise points.
func (s *SQLStore) AddExercises(ctx context.Context, variantID string, exerciseIDs []string) (int, error) {
	if _, err := s.Get(ctx, variantID); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var maxOrder int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(order_index), -1) FROM variant_exercises WHERE variant_id=$1`,
		variantID).Scan(&maxOrder)
	if err != nil {
		return 0, err
	}

	added := 0
	next := maxOrder + 1
	for _, exerciseID := range exerciseIDs {
		res, err := tx.ExecContext(ctx, `INSERT INTO variant_exercises
			(variant_id, exercise_id, order_index, section_name)
			VALUES ($1,$2,$3,NULL)
			ON CONFLICT (variant_id, exercise_id) DO NOTHING`,
			variantID, exerciseID, next)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
			next++
		}
	}
	if err := recomputePointsTx(ctx, tx, variantID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.logger.Debug("variant membership extended",
		zap.String("variant_id", variantID),
		zap.Int("added", added))
	return added, nil
}

// Entries returns the variant's exercises joined with statement fields,
// ordered by order_index.
func (s *SQLStore) Entries(ctx context.Context, variantID string) ([]EntryDetail, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		ve.variant_id, ve.exercise_id, ve.order_index, COALESCE(ve.section_name,''),
		e.statement_latex, COALESCE(e.statement_text,''), COALESCE(e.points,0),
		COALESCE(e.item_type,''), COALESCE(e.subject_part,''), COALESCE(e.difficulty,0)
		FROM variant_exercises ve
		JOIN exercises e ON e.id = ve.exercise_id
		WHERE ve.variant_id=$1
		ORDER BY ve.order_index`, variantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EntryDetail
	for rows.Next() {
		var d EntryDetail
		if err := rows.Scan(&d.VariantID, &d.ExerciseID, &d.OrderIndex, &d.SectionName,
			&d.StatementLatex, &d.StatementText, &d.Points,
			&d.ItemType, &d.SubjectPart, &d.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RemoveExercise drops one membership and closes the order_index gap so the
// sequence stays dense.
func (s *SQLStore) RemoveExercise(ctx context.Context, variantID, exerciseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM variant_exercises WHERE variant_id=$1 AND exercise_id=$2`,
		variantID, exerciseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExerciseNotInVariant
	}
	if err := reindexTx(ctx, tx, variantID); err != nil {
		return err
	}
	if err := recomputePointsTx(ctx, tx, variantID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("exercise removed from variant",
		zap.String("variant_id", variantID),
		zap.String("exercise_id", exerciseID))
	return nil
}

// Reorder rewrites order_index to follow the given exercise id order.
func (s *SQLStore) Reorder(ctx context.Context, variantID string, exerciseIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for idx, exerciseID := range exerciseIDs {
		_, err := tx.ExecContext(ctx,
			`UPDATE variant_exercises SET order_index=$1 WHERE variant_id=$2 AND exercise_id=$3`,
			idx, variantID, exerciseID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// reindexTx re-assigns dense zero-based order_index values preserving the
// current relative order.
func reindexTx(ctx context.Context, tx *sql.Tx, variantID string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT exercise_id FROM variant_exercises WHERE variant_id=$1 ORDER BY order_index`,
		variantID)
	if err != nil {
		return err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for idx, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`UPDATE variant_exercises SET order_index=$1 WHERE variant_id=$2 AND exercise_id=$3`,
			idx, variantID, id); err != nil {
			return err
		}
	}
	return nil
}

func recomputePointsTx(ctx context.Context, tx *sql.Tx, variantID string) error {
	var total int
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(e.points), 0)
		FROM variant_exercises ve JOIN exercises e ON e.id = ve.exercise_id
		WHERE ve.variant_id=$1`, variantID).Scan(&total)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE variants SET total_points=$1, updated_at=$2 WHERE id=$3`,
		total, time.Now().Unix(), variantID)
	return err
}

const variantCols = `id, name, exam_type, COALESCE(profile,''), COALESCE(year,0), COALESCE(session,''),
	COALESCE(total_points,0), COALESCE(duration_minutes,0), COALESCE(instructions,''), status,
	created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanVariant(row scanner) (Variant, error) {
	var v Variant
	err := row.Scan(&v.ID, &v.Name, &v.ExamType, &v.Profile, &v.Year, &v.Session,
		&v.TotalPoints, &v.DurationMinutes, &v.Instructions, &v.Status,
		&v.CreatedAt, &v.UpdatedAt)
	return v, err
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
