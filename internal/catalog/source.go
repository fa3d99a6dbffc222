package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSourceNotFound = errors.New("source not found")

// Source is a provenance record for ingested material: an official exam PDF,
// a problem collection, or a manual entry batch.
type Source struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"` // pdf|oficial|culegere
	Year        int    `json:"year,omitempty"`
	Session     string `json:"session,omitempty"`
	URLFilePath string `json:"url_file_path,omitempty"`
	Notes       string `json:"notes,omitempty"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

// SourceSegment is a page range of a source together with its raw recognized
// text.
type SourceSegment struct {
	ID               string `json:"id"`
	SourceID         string `json:"source_id"`
	PageStart        int    `json:"page_start"`
	PageEnd          int    `json:"page_end"`
	RawExtraction    string `json:"raw_extraction,omitempty"`
	Checksum         string `json:"checksum,omitempty"`
	Status           string `json:"status"` // EXTRACTED|PROCESSED|FAILED
	ExtractionMethod string `json:"extraction_method"`
	CreatedAt        int64  `json:"created_at,omitempty"`
}

func (s *SQLStore) PutSource(ctx context.Context, src *Source) error {
	if src.ID == "" {
		src.ID = uuid.NewString()
	}
	src.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO sources
		(id, name, type, year, session, url_file_path, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		src.ID, src.Name, src.Type, nullInt(src.Year), nullStr(src.Session),
		nullStr(src.URLFilePath), nullStr(src.Notes), src.CreatedAt)
	return err
}

func (s *SQLStore) GetSource(ctx context.Context, id string) (Source, error) {
	var src Source
	err := s.db.QueryRowContext(ctx, `SELECT id, name, type, COALESCE(year,0), COALESCE(session,''),
		COALESCE(url_file_path,''), COALESCE(notes,''), created_at FROM sources WHERE id=$1`, id).
		Scan(&src.ID, &src.Name, &src.Type, &src.Year, &src.Session, &src.URLFilePath, &src.Notes, &src.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, ErrSourceNotFound
	}
	return src, err
}

func (s *SQLStore) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, COALESCE(year,0), COALESCE(session,''),
		COALESCE(url_file_path,''), COALESCE(notes,''), created_at FROM sources ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.ID, &src.Name, &src.Type, &src.Year, &src.Session,
			&src.URLFilePath, &src.Notes, &src.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// DeleteSource removes the source and, by cascade, its segments.
func (s *SQLStore) DeleteSource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSourceNotFound
	}
	return nil
}

func (s *SQLStore) PutSegment(ctx context.Context, seg *SourceSegment) error {
	if seg.ID == "" {
		seg.ID = uuid.NewString()
	}
	if seg.Status == "" {
		seg.Status = "EXTRACTED"
	}
	seg.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `INSERT INTO source_segments
		(id, source_id, page_start, page_end, raw_extraction, checksum, status, extraction_method, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		seg.ID, seg.SourceID, seg.PageStart, seg.PageEnd, nullStr(seg.RawExtraction),
		nullStr(seg.Checksum), seg.Status, seg.ExtractionMethod, seg.CreatedAt)
	return err
}

func (s *SQLStore) ListSegments(ctx context.Context, sourceID string) ([]SourceSegment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, source_id, page_start, page_end,
		COALESCE(raw_extraction,''), COALESCE(checksum,''), status, extraction_method, created_at
		FROM source_segments WHERE source_id=$1 ORDER BY page_start`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SourceSegment
	for rows.Next() {
		var seg SourceSegment
		if err := rows.Scan(&seg.ID, &seg.SourceID, &seg.PageStart, &seg.PageEnd,
			&seg.RawExtraction, &seg.Checksum, &seg.Status, &seg.ExtractionMethod, &seg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}
