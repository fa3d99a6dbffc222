package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/educontent/examforge/internal/catalog"
	"github.com/educontent/examforge/internal/recognize"
	"github.com/educontent/examforge/internal/render"
	"github.com/educontent/examforge/internal/storage"
	"github.com/educontent/examforge/internal/tagging"
	"github.com/educontent/examforge/internal/variant"
)

// Deps carries the constructed components the API works with. Everything is
// built once in main and passed down; no package-level state.
type Deps struct {
	Catalog    *catalog.SQLStore
	Variants   *variant.SQLStore
	Generator  *variant.Generator
	Suggester  tagging.Suggester
	Recognizer recognize.Recognizer
	Renderer   render.Renderer
	Blobs      storage.BlobStore
}

func Mount(r chi.Router, d Deps) {
	r.Route("/exercises", func(er chi.Router) {
		er.Post("/", CreateExerciseHandler(d.Catalog))
		er.Get("/", ListExercisesHandler(d.Catalog))
		er.Get("/{exerciseID}", GetExerciseHandler(d.Catalog))
		er.Put("/{exerciseID}", UpdateExerciseHandler(d.Catalog))
		er.Delete("/{exerciseID}", DeleteExerciseHandler(d.Catalog))
		er.Get("/{exerciseID}/tags", ExerciseTagsHandler(d.Catalog))
		er.Post("/{exerciseID}/tag", AutoTagExerciseHandler(d.Catalog, d.Suggester))
	})

	r.Route("/tags", func(tr chi.Router) {
		tr.Post("/", UpsertTagHandler(d.Catalog))
		tr.Get("/", ListTagsHandler(d.Catalog))
	})

	r.Route("/sources", func(sr chi.Router) {
		sr.Post("/", CreateSourceHandler(d.Catalog))
		sr.Post("/upload", UploadSourceHandler(d.Catalog, d.Blobs))
		sr.Get("/", ListSourcesHandler(d.Catalog))
		sr.Get("/{sourceID}", GetSourceHandler(d.Catalog))
		sr.Delete("/{sourceID}", DeleteSourceHandler(d.Catalog))
		sr.Post("/{sourceID}/process", ProcessSourceHandler(d.Catalog, d.Blobs, d.Recognizer))
		sr.Get("/{sourceID}/segments", ListSegmentsHandler(d.Catalog))
		sr.Post("/{sourceID}/segments", CreateSegmentHandler(d.Catalog))
	})

	r.Route("/variants", func(vr chi.Router) {
		vr.Post("/", CreateVariantHandler(d.Variants))
		vr.Post("/generate", GenerateVariantHandler(d.Generator))
		vr.Get("/", ListVariantsHandler(d.Variants))
		vr.Get("/{variantID}", GetVariantHandler(d.Variants))
		vr.Put("/{variantID}", UpdateVariantHandler(d.Variants))
		vr.Delete("/{variantID}", DeleteVariantHandler(d.Variants))
		vr.Post("/{variantID}/exercises", AddVariantExercisesHandler(d.Variants))
		vr.Get("/{variantID}/exercises", ListVariantExercisesHandler(d.Variants))
		vr.Delete("/{variantID}/exercises/{exerciseID}", RemoveVariantExerciseHandler(d.Variants))
		vr.Put("/{variantID}/exercises/reorder", ReorderVariantExercisesHandler(d.Variants))
		vr.Get("/{variantID}/paper", DownloadPaperHandler(d.Variants, d.Renderer))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
}
