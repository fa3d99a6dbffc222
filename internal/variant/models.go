package variant

const (
	StatusDraft     = "DRAFT"
	StatusReady     = "READY"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

type Variant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ExamType        string `json:"exam_type"`
	Profile         string `json:"profile,omitempty"`
	Year            int    `json:"year,omitempty"`
	Session         string `json:"session,omitempty"`
	TotalPoints     int    `json:"total_points,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Instructions    string `json:"instructions,omitempty"`
	Status          string `json:"status"`
	CreatedAt       int64  `json:"created_at,omitempty"`
	UpdatedAt       int64  `json:"updated_at,omitempty"`
}

// Entry is one exercise's membership in a variant. order_index values are
// dense and zero-based within a variant; an exercise appears at most once.
type Entry struct {
	VariantID   string `json:"variant_id"`
	ExerciseID  string `json:"exercise_id"`
	OrderIndex  int    `json:"order_index"`
	SectionName string `json:"section_name,omitempty"`
}

// EntryDetail joins membership with the exercise fields a paper needs.
type EntryDetail struct {
	Entry
	StatementLatex string `json:"statement_latex"`
	StatementText  string `json:"statement_text,omitempty"`
	Points         int    `json:"points,omitempty"`
	ItemType       string `json:"item_type,omitempty"`
	SubjectPart    string `json:"subject_part,omitempty"`
	Difficulty     int    `json:"difficulty,omitempty"`
}

type Filter struct {
	ExamType string
	Status   string
}

// SectionFill reports how one template section was populated.
type SectionFill struct {
	Section  string `json:"section"`
	Expected int    `json:"expected"`
	Placed   int    `json:"placed"`
}

// Summary is the caller-facing result of a generation run. ExerciseCount may
// be less than the structural expectation; callers decide whether a shortfall
// is acceptable.
type Summary struct {
	VariantID     string        `json:"variant_id"`
	ExerciseCount int           `json:"exercise_count"`
	TotalPoints   int           `json:"total_points"`
	Sections      []SectionFill `json:"structure"`
}
