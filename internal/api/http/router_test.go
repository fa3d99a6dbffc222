package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/educontent/examforge/internal/catalog"
	"github.com/educontent/examforge/internal/db"
	"github.com/educontent/examforge/internal/recognize"
	"github.com/educontent/examforge/internal/render"
	"github.com/educontent/examforge/internal/storage"
	"github.com/educontent/examforge/internal/tagging"
	"github.com/educontent/examforge/internal/variant"
)

func newTestRouter(t *testing.T) (chi.Router, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	blobs, err := storage.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewFSStore() error = %v", err)
	}

	logger := zap.NewNop()
	r := chi.NewRouter()
	Mount(r, Deps{
		Catalog:    catalog.NewSQLStore(dbh, logger),
		Variants:   variant.NewSQLStore(dbh, logger),
		Generator:  variant.NewGenerator(dbh, variant.NewSelector(logger, variant.WithSeed(7)), logger),
		Suggester:  tagging.Heuristic{},
		Recognizer: pageRecognizer{},
		Renderer:   &render.TextRenderer{Now: func() time.Time { return time.Unix(0, 0).UTC() }},
		Blobs:      blobs,
	})
	return r, dbh
}

// pageRecognizer recognizes every page as the same fixed text.
type pageRecognizer struct{}

func (pageRecognizer) Recognize(ctx context.Context, page []byte) (recognize.PageResult, error) {
	return recognize.PageResult{Text: "Text recunoscut"}, nil
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestExerciseLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/exercises/", map[string]any{
		"statement_latex": `Rezolvați ecuația $x^2 = 9$.`,
		"statement_text":  "Rezolvati ecuatia x^2 = 9.",
		"exam_type":       "evaluare_nationala",
		"difficulty":      3,
		"points":          5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /exercises = %d, body %s", w.Code, w.Body)
	}
	var created catalog.Exercise
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created exercise has no id")
	}

	w = doJSON(t, r, http.MethodGet, "/exercises/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/exercises/"+created.ID+"/tag", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST tag = %d, body %s", w.Code, w.Body)
	}
	w = doJSON(t, r, http.MethodGet, "/exercises/"+created.ID+"/tags", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET tags = %d", w.Code)
	}
	var tags []catalog.AppliedTag
	if err := json.Unmarshal(w.Body.Bytes(), &tags); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tag := range tags {
		if tag.Key == "ecuatii" && tag.CreatedBy == "model" {
			found = true
		}
	}
	if !found {
		t.Errorf("auto-tag did not apply ecuatii with model provenance: %+v", tags)
	}

	w = doJSON(t, r, http.MethodDelete, "/exercises/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/exercises/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET after delete = %d; want 404", w.Code)
	}
}

func TestCreateExercise_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/exercises/", map[string]any{"statement_text": "no latex"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing statement_latex = %d; want 400", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/exercises/", map[string]any{
		"statement_latex": "x", "difficulty": 11,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("difficulty 11 = %d; want 400", w.Code)
	}
}

func TestUpdateArchivedExercise_Conflict(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/exercises/", map[string]any{
		"statement_latex": "x", "status": "ARCHIVED",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}
	var created catalog.Exercise
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	w = doJSON(t, r, http.MethodPut, "/exercises/"+created.ID, map[string]any{
		"statement_latex": "y",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("PUT archived = %d; want 409", w.Code)
	}
}

func TestGenerateVariant_BadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/variants/generate", map[string]any{"name": "V"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing exam_type = %d; want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/variants/generate", map[string]any{
		"name": "V", "exam_type": "olimpiada",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unsupported exam type = %d; want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/variants/generate", map[string]any{
		"name": "V", "exam_type": "evaluare_nationala",
		"difficulty": map[string]int{"min": 8, "max": 2},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("inverted difficulty = %d; want 400", w.Code)
	}
}

func TestGenerateVariant_Success(t *testing.T) {
	r, dbh := newTestRouter(t)
	seedPool(t, dbh, 12)

	w := doJSON(t, r, http.MethodPost, "/variants/generate", map[string]any{
		"name": "EN test", "exam_type": "evaluare_nationala",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d, body %s", w.Code, w.Body)
	}
	var resp struct {
		Status        string `json:"status"`
		VariantID     string `json:"variant_id"`
		ExerciseCount int    `json:"exercise_count"`
		TotalPoints   int    `json:"total_points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "success" || resp.VariantID == "" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.ExerciseCount != 9 || resp.TotalPoints != 60 {
		t.Errorf("count/points = %d/%d; want 9/60", resp.ExerciseCount, resp.TotalPoints)
	}

	w = doJSON(t, r, http.MethodGet, "/variants/"+resp.VariantID+"/paper", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("paper = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, ".txt") {
		t.Errorf("Content-Disposition = %q; want .txt attachment", cd)
	}
	if !strings.Contains(w.Body.String(), "Subiectul I") {
		t.Errorf("paper missing section header:\n%s", w.Body)
	}
}

func TestSourceUploadAndProcess(t *testing.T) {
	r, _ := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "bac_2024.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("%PDF-1.4 scan")); err != nil {
		t.Fatal(err)
	}
	_ = mw.WriteField("name", "BAC 2024 iunie")
	_ = mw.WriteField("type", "oficial")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/sources/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body %s", w.Code, w.Body)
	}
	var src catalog.Source
	if err := json.Unmarshal(w.Body.Bytes(), &src); err != nil {
		t.Fatal(err)
	}
	if src.URLFilePath == "" {
		t.Fatal("upload did not store a file path")
	}

	w = doJSON(t, r, http.MethodPost, "/sources/"+src.ID+"/process", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("process = %d, body %s", w.Code, w.Body)
	}

	w = doJSON(t, r, http.MethodGet, "/sources/"+src.ID+"/segments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("segments = %d", w.Code)
	}
	var segs []catalog.SourceSegment
	if err := json.Unmarshal(w.Body.Bytes(), &segs); err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 {
		t.Fatalf("segments = %d; want 1", len(segs))
	}
	seg := segs[0]
	if seg.RawExtraction != "Text recunoscut" {
		t.Errorf("RawExtraction = %q; want recognizer output", seg.RawExtraction)
	}
	if seg.Status != "EXTRACTED" || seg.ExtractionMethod != "OCR" {
		t.Errorf("Status/ExtractionMethod = %s/%s; want EXTRACTED/OCR", seg.Status, seg.ExtractionMethod)
	}
	if seg.Checksum == "" {
		t.Error("segment has no checksum")
	}
}

func TestProcessSource_WithoutFile(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sources/", map[string]any{
		"name": "Culegere manuala", "type": "culegere",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create source = %d", w.Code)
	}
	var src catalog.Source
	if err := json.Unmarshal(w.Body.Bytes(), &src); err != nil {
		t.Fatal(err)
	}
	w = doJSON(t, r, http.MethodPost, "/sources/"+src.ID+"/process", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("process without file = %d; want 400", w.Code)
	}
}

// seedPool inserts n unclassified ready exercises so both sections of the
// evaluare nationala layout can fill.
func seedPool(t *testing.T, dbh *sql.DB, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := dbh.Exec(`INSERT INTO exercises
			(id, statement_latex, statement_text, difficulty, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), "Enunț", "Enunt", 5, "READY", time.Now().Unix(), time.Now().Unix())
		if err != nil {
			t.Fatal(err)
		}
	}
}
