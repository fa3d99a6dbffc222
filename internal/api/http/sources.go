package http

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/educontent/examforge/internal/catalog"
	"github.com/educontent/examforge/internal/recognize"
	"github.com/educontent/examforge/internal/storage"
)

func CreateSourceHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var src catalog.Source
		if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if src.Name == "" || src.Type == "" {
			http.Error(w, "name and type required", http.StatusBadRequest)
			return
		}
		if err := store.PutSource(r.Context(), &src); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, src)
	}
}

func ListSourcesHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListSources(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetSourceHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := store.GetSource(r.Context(), chi.URLParam(r, "sourceID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, src)
	}
}

func DeleteSourceHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSource(r.Context(), chi.URLParam(r, "sourceID")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UploadSourceHandler accepts a multipart file, stores the blob, and creates
// the source record pointing at it.
func UploadSourceHandler(store *catalog.SQLStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(64 << 20); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		name := r.FormValue("name")
		if name == "" {
			name = hdr.Filename
		}
		key := uuid.NewString() + path.Ext(hdr.Filename)
		if _, err := blobs.Put(key, file); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		src := catalog.Source{
			Name:        name,
			Type:        formOr(r, "type", "pdf"),
			Session:     r.FormValue("session"),
			Year:        parseIntDefault(r.FormValue("year"), 0),
			Notes:       r.FormValue("notes"),
			URLFilePath: key,
		}
		if err := store.PutSource(r.Context(), &src); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, src)
	}
}

// ProcessSourceHandler runs the recognizer over a source's stored file and
// records one segment per page. A page the engine fails on becomes a FAILED
// segment; the rest of the document still lands.
func ProcessSourceHandler(store *catalog.SQLStore, blobs storage.BlobStore, rec recognize.Recognizer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sourceID")
		src, err := store.GetSource(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if src.URLFilePath == "" {
			http.Error(w, "source has no stored file", http.StatusBadRequest)
			return
		}
		f, err := blobs.Get(src.URLFilePath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		checksum := fmt.Sprintf("%x", sha256.Sum256(data))

		doc := recognize.Document(r.Context(), rec, [][]byte{data})
		segments := make([]catalog.SourceSegment, 0, len(doc.Pages))
		for _, page := range doc.Pages {
			seg := catalog.SourceSegment{
				SourceID:         id,
				PageStart:        page.PageNumber,
				PageEnd:          page.PageNumber,
				RawExtraction:    page.Text,
				Checksum:         checksum,
				ExtractionMethod: "OCR",
			}
			if page.Err != "" {
				seg.Status = "FAILED"
			}
			if err := store.PutSegment(r.Context(), &seg); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			segments = append(segments, seg)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "success",
			"total_pages": doc.TotalPages,
			"segments":    segments,
		})
	}
}

func ListSegmentsHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListSegments(r.Context(), chi.URLParam(r, "sourceID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateSegmentHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var seg catalog.SourceSegment
		if err := json.NewDecoder(r.Body).Decode(&seg); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		seg.SourceID = chi.URLParam(r, "sourceID")
		if seg.ExtractionMethod == "" {
			seg.ExtractionMethod = "MANUAL"
		}
		if err := store.PutSegment(r.Context(), &seg); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, seg)
	}
}

func formOr(r *http.Request, key, def string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return def
}
