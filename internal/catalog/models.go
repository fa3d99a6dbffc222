package catalog

// Exam types the catalog understands. An empty exam type on an exercise means
// the entry has not been classified yet; the selector tolerates that.
const (
	ExamBacalaureat       = "bacalaureat"
	ExamEvaluareNationala = "evaluare_nationala"
	ExamSimulare          = "simulare"
	ExamOlimpiada         = "olimpiada"
	ExamAlta              = "alta"
)

const (
	ItemSubiect1  = "subiect_1"
	ItemSubiect2  = "subiect_2"
	ItemSubiect3  = "subiect_3"
	ItemProblema  = "problema"
	ItemExercitiu = "exercitiu" // generic, matches any section
)

const (
	StatusDraft    = "DRAFT"
	StatusReview   = "REVIEW"
	StatusReady    = "READY"
	StatusArchived = "ARCHIVED"
)

const (
	SubjectAlgebra       = "algebra"
	SubjectGeometrie     = "geometrie"
	SubjectAnaliza       = "analiza"
	SubjectTrigonometrie = "trigonometrie"
	SubjectProbabilitati = "probabilitati"
)

type Exercise struct {
	ID                string         `json:"id"`
	ExamType          string         `json:"exam_type,omitempty"`
	Profile           string         `json:"profile,omitempty"`
	SubjectPart       string         `json:"subject_part,omitempty"`
	ItemType          string         `json:"item_type,omitempty"`
	StatementLatex    string         `json:"statement_latex"`
	StatementText     string         `json:"statement_text,omitempty"`
	AnswerLatex       string         `json:"answer_latex,omitempty"`
	SolutionLatex     string         `json:"solution_latex,omitempty"`
	ScoringGuideLatex string         `json:"scoring_guide_latex,omitempty"`
	ScoringGuideText  string         `json:"scoring_guide_text,omitempty"`
	Difficulty        int            `json:"difficulty,omitempty"` // 1..10, 0 = unrated
	EstimatedTimeSec  int            `json:"estimated_time_sec,omitempty"`
	Points            int            `json:"points,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	Status            string         `json:"status,omitempty"`
	CreatedAt         int64          `json:"created_at,omitempty"`
	UpdatedAt         int64          `json:"updated_at,omitempty"`
}

type Tag struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"` // topic|subtopic|skill
	Key       string `json:"key"`
	Label     string `json:"label,omitempty"`
	ParentID  string `json:"parent_id,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// ExerciseTag links an exercise to a tag. At most one row per pair; applying
// the same tag again updates weight/confidence in place.
type ExerciseTag struct {
	ExerciseID string  `json:"exercise_id"`
	TagID      string  `json:"tag_id"`
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
	CreatedBy  string  `json:"created_by,omitempty"` // "editor", "model", "import"
}

// AppliedTag is a tag joined with its per-exercise link fields.
type AppliedTag struct {
	Tag
	Weight     float64 `json:"weight"`
	Confidence float64 `json:"confidence"`
	CreatedBy  string  `json:"created_by,omitempty"`
}

type ExerciseFilter struct {
	ExamType string
	Status   string
	Limit    int
	Offset   int
}
