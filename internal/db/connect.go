package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:examforge.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
		// The pragma must ride the DSN so every pooled connection gets it.
		if !strings.Contains(dsn, "_pragma=foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/examforge?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS sources (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  year INTEGER,
  session TEXT,
  url_file_path TEXT,
  notes TEXT,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS source_segments (
  id TEXT PRIMARY KEY,
  source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
  page_start INTEGER NOT NULL,
  page_end INTEGER NOT NULL,
  raw_extraction TEXT,
  checksum TEXT,
  status TEXT NOT NULL DEFAULT 'EXTRACTED',
  extraction_method TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
  id TEXT PRIMARY KEY,
  exam_type TEXT,
  profile TEXT,
  subject_part TEXT,
  item_type TEXT,
  statement_latex TEXT NOT NULL,
  statement_text TEXT,
  answer_latex TEXT,
  solution_latex TEXT,
  scoring_guide_latex TEXT,
  scoring_guide_text TEXT,
  difficulty INTEGER,
  estimated_time_sec INTEGER,
  points INTEGER,
  metadata_json TEXT,
  status TEXT,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  namespace TEXT NOT NULL,
  key TEXT NOT NULL,
  label TEXT,
  parent_id TEXT REFERENCES tags(id),
  created_at INTEGER NOT NULL,
  UNIQUE(namespace, key)
);

CREATE TABLE IF NOT EXISTS exercise_tags (
  exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
  tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
  weight REAL NOT NULL DEFAULT 1.0,
  confidence REAL NOT NULL DEFAULT 1.0,
  created_by TEXT,
  PRIMARY KEY (exercise_id, tag_id)
);

CREATE TABLE IF NOT EXISTS variants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  exam_type TEXT NOT NULL,
  profile TEXT,
  year INTEGER,
  session TEXT,
  total_points INTEGER,
  duration_minutes INTEGER,
  instructions TEXT,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS variant_exercises (
  variant_id TEXT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
  exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
  order_index INTEGER NOT NULL,
  section_name TEXT,
  PRIMARY KEY (variant_id, exercise_id)
);

CREATE INDEX IF NOT EXISTS idx_exercises_difficulty ON exercises(difficulty);
CREATE INDEX IF NOT EXISTS idx_variant_exercises_order ON variant_exercises(variant_id, order_index);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS sources (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  year INTEGER,
  session TEXT,
  url_file_path TEXT,
  notes TEXT,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS source_segments (
  id TEXT PRIMARY KEY,
  source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
  page_start INTEGER NOT NULL,
  page_end INTEGER NOT NULL,
  raw_extraction TEXT,
  checksum TEXT,
  status TEXT NOT NULL DEFAULT 'EXTRACTED',
  extraction_method TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS exercises (
  id TEXT PRIMARY KEY,
  exam_type TEXT,
  profile TEXT,
  subject_part TEXT,
  item_type TEXT,
  statement_latex TEXT NOT NULL,
  statement_text TEXT,
  answer_latex TEXT,
  solution_latex TEXT,
  scoring_guide_latex TEXT,
  scoring_guide_text TEXT,
  difficulty INTEGER,
  estimated_time_sec INTEGER,
  points INTEGER,
  metadata_json TEXT,
  status TEXT,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
  id TEXT PRIMARY KEY,
  namespace TEXT NOT NULL,
  key TEXT NOT NULL,
  label TEXT,
  parent_id TEXT REFERENCES tags(id),
  created_at BIGINT NOT NULL,
  UNIQUE(namespace, key)
);

CREATE TABLE IF NOT EXISTS exercise_tags (
  exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
  tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
  weight DOUBLE PRECISION NOT NULL DEFAULT 1.0,
  confidence DOUBLE PRECISION NOT NULL DEFAULT 1.0,
  created_by TEXT,
  PRIMARY KEY (exercise_id, tag_id)
);

CREATE TABLE IF NOT EXISTS variants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  exam_type TEXT NOT NULL,
  profile TEXT,
  year INTEGER,
  session TEXT,
  total_points INTEGER,
  duration_minutes INTEGER,
  instructions TEXT,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS variant_exercises (
  variant_id TEXT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
  exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
  order_index INTEGER NOT NULL,
  section_name TEXT,
  PRIMARY KEY (variant_id, exercise_id)
);

CREATE INDEX IF NOT EXISTS idx_exercises_difficulty ON exercises(difficulty);
CREATE INDEX IF NOT EXISTS idx_variant_exercises_order ON variant_exercises(variant_id, order_index);
`
