package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/educontent/examforge/internal/render"
	"github.com/educontent/examforge/internal/variant"
)

func CreateVariantHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v variant.Variant
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if v.Name == "" || v.ExamType == "" {
			http.Error(w, "name and exam_type required", http.StatusBadRequest)
			return
		}
		if err := store.Create(r.Context(), &v); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func ListVariantsHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context(), variant.Filter{
			ExamType: r.URL.Query().Get("exam_type"),
			Status:   r.URL.Query().Get("status"),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetVariantHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := store.Get(r.Context(), chi.URLParam(r, "variantID"))
		if err != nil {
			writeVariantError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func UpdateVariantHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v variant.Variant
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		v.ID = chi.URLParam(r, "variantID")
		if err := store.Update(r.Context(), &v); err != nil {
			writeVariantError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func DeleteVariantHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), chi.URLParam(r, "variantID")); err != nil {
			writeVariantError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AddVariantExercisesHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var exerciseIDs []string
		if err := json.NewDecoder(r.Body).Decode(&exerciseIDs); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		added, err := store.AddExercises(r.Context(), chi.URLParam(r, "variantID"), exerciseIDs)
		if err != nil {
			writeVariantError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "added_count": added})
	}
}

func ListVariantExercisesHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.Entries(r.Context(), chi.URLParam(r, "variantID"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

func RemoveVariantExerciseHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.RemoveExercise(r.Context(),
			chi.URLParam(r, "variantID"), chi.URLParam(r, "exerciseID"))
		if err != nil {
			writeVariantError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func ReorderVariantExercisesHandler(store *variant.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var order []string
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.Reorder(r.Context(), chi.URLParam(r, "variantID"), order); err != nil {
			writeVariantError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "reordered_count": len(order)})
	}
}

// DownloadPaperHandler renders the variant into a downloadable paper.
func DownloadPaperHandler(store *variant.SQLStore, renderer render.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "variantID")
		v, err := store.Get(r.Context(), id)
		if err != nil {
			writeVariantError(w, err)
			return
		}
		entries, err := store.Entries(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		doc := render.Document{
			Name:            v.Name,
			ExamType:        v.ExamType,
			Profile:         v.Profile,
			Year:            v.Year,
			Session:         v.Session,
			TotalPoints:     v.TotalPoints,
			DurationMinutes: v.DurationMinutes,
		}
		for _, e := range entries {
			text := e.StatementText
			if text == "" {
				text = e.StatementLatex
			}
			doc.Exercises = append(doc.Exercises, render.Exercise{
				OrderIndex:    e.OrderIndex,
				SectionName:   e.SectionName,
				StatementText: text,
				Points:        e.Points,
			})
		}
		out, err := renderer.Render(r.Context(), doc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		safeName := strings.NewReplacer(" ", "_", "/", "-").Replace(v.Name)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", safeName+".txt"))
		_, _ = w.Write(out)
	}
}

func writeVariantError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, variant.ErrVariantNotFound),
		errors.Is(err, variant.ErrExerciseNotInVariant):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
