package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/educontent/examforge/internal/catalog"
	"github.com/educontent/examforge/internal/tagging"
)

func CreateExerciseHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e catalog.Exercise
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if e.StatementLatex == "" {
			http.Error(w, "statement_latex required", http.StatusBadRequest)
			return
		}
		if e.Difficulty < 0 || e.Difficulty > 10 {
			http.Error(w, "difficulty must be 1..10", http.StatusBadRequest)
			return
		}
		if err := store.PutExercise(r.Context(), &e); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func ListExercisesHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := catalog.ExerciseFilter{
			ExamType: r.URL.Query().Get("exam_type"),
			Status:   r.URL.Query().Get("status"),
			Limit:    parseIntDefault(r.URL.Query().Get("limit"), 100),
			Offset:   parseIntDefault(r.URL.Query().Get("offset"), 0),
		}
		list, err := store.ListExercises(r.Context(), f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetExerciseHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := store.GetExercise(r.Context(), chi.URLParam(r, "exerciseID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func UpdateExerciseHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e catalog.Exercise
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		e.ID = chi.URLParam(r, "exerciseID")
		if err := store.UpdateExercise(r.Context(), &e); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func DeleteExerciseHandler(store *catalog.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteExercise(r.Context(), chi.URLParam(r, "exerciseID")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// AutoTagExerciseHandler runs the tag suggester over an exercise and persists
// the proposals with model provenance.
func AutoTagExerciseHandler(store *catalog.SQLStore, suggester tagging.Suggester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "exerciseID")
		e, err := store.GetExercise(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		proposals, err := suggester.Suggest(r.Context(), e.StatementText, e.SolutionLatex)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		applied := make([]catalog.TagProposal, 0, len(proposals))
		for _, p := range proposals {
			applied = append(applied, catalog.TagProposal{
				Namespace:  p.Namespace,
				Key:        p.Key,
				Label:      p.Label,
				Weight:     p.Weight,
				Confidence: 0.8,
				CreatedBy:  "model",
			})
		}
		if err := store.ApplyTags(r.Context(), id, applied); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "tags_applied": applied})
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrExerciseNotFound),
		errors.Is(err, catalog.ErrSourceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, catalog.ErrArchived):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
