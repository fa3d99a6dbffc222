package variant

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/educontent/examforge/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

type testExercise struct {
	examType   string
	itemType   string
	difficulty int
	points     int
	status     string
}

func seedExercise(t *testing.T, dbh *sql.DB, e testExercise) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now().Unix()
	_, err := dbh.Exec(`INSERT INTO exercises
		(id, exam_type, item_type, statement_latex, difficulty, points, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, orNil(e.examType), orNil(e.itemType), "enunt", e.difficulty, e.points, orNil(e.status), now, now)
	if err != nil {
		t.Fatalf("seed exercise: %v", err)
	}
	return id
}

func seedTagged(t *testing.T, dbh *sql.DB, exerciseID, namespace, key string) {
	t.Helper()
	tagID := uuid.NewString()
	err := dbh.QueryRow(`INSERT INTO tags (id, namespace, key, created_at) VALUES ($1,$2,$3,$4)
		ON CONFLICT (namespace, key) DO UPDATE SET label=excluded.label
		RETURNING id`, tagID, namespace, key, time.Now().Unix()).Scan(&tagID)
	if err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	if _, err := dbh.Exec(`INSERT INTO exercise_tags (exercise_id, tag_id) VALUES ($1,$2)
		ON CONFLICT (exercise_id, tag_id) DO NOTHING`, exerciseID, tagID); err != nil {
		t.Fatalf("seed exercise tag: %v", err)
	}
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
