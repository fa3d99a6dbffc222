package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/educontent/examforge/internal/variant"
)

// GenerateVariantHandler drives the assembler. An unsupported exam type is a
// 400 before anything is written; a persistence failure rolls the whole run
// back and reports 500. A successful response may still carry under-filled
// sections, callers read the structure to detect that.
func GenerateVariantHandler(gen *variant.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req variant.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.ExamType == "" {
			http.Error(w, "name and exam_type required", http.StatusBadRequest)
			return
		}
		if req.Difficulty.Min < 0 || req.Difficulty.Max > 10 || req.Difficulty.Min > req.Difficulty.Max {
			http.Error(w, "invalid difficulty range", http.StatusBadRequest)
			return
		}
		summary, err := gen.Generate(r.Context(), req)
		if err != nil {
			if errors.Is(err, variant.ErrUnsupportedExamType) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "success",
			"variant_id":     summary.VariantID,
			"exercise_count": summary.ExerciseCount,
			"total_points":   summary.TotalPoints,
			"structure":      summary.Sections,
		})
	}
}
