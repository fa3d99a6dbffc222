package variant

import (
	"errors"
	"fmt"

	"github.com/educontent/examforge/internal/catalog"
)

// ErrUnsupportedExamType is returned when no template exists for the
// requested exam type. It is reported before any persistence happens.
var ErrUnsupportedExamType = errors.New("exam type not supported for auto-generation")

// SectionSpec describes one required group of items in an exam paper.
// RequiredCount counts distinct problems; when HasSubVariants is set, each
// problem expands to SubVariantsPerItem exercise slots (a, b, c).
// PointsPerItem is the total for one full problem, sub-variants included.
type SectionSpec struct {
	Name               string   `json:"name"`
	ItemType           string   `json:"item_type"`
	RequiredCount      int      `json:"count"`
	PointsPerItem      int      `json:"points_each"`
	HasSubVariants     bool     `json:"has_variants"`
	SubVariantsPerItem int      `json:"variants_per_problem,omitempty"`
	SubjectParts       []string `json:"subject_parts,omitempty"`
}

// Slots is the number of exercise slots this section needs.
func (s SectionSpec) Slots() int {
	if s.HasSubVariants && s.SubVariantsPerItem > 1 {
		return s.RequiredCount * s.SubVariantsPerItem
	}
	return s.RequiredCount
}

// Points is the section's nominal contribution to the paper total,
// independent of how many slots end up filled.
func (s SectionSpec) Points() int {
	return s.PointsPerItem * s.RequiredCount
}

type Template struct {
	ExamType string        `json:"exam_type"`
	Sections []SectionSpec `json:"sections"`
}

// TotalPoints is the nominal paper total.
func (t Template) TotalPoints() int {
	sum := 0
	for _, s := range t.Sections {
		sum += s.Points()
	}
	return sum
}

// TemplateFor resolves the built-in template for an exam type. The profile is
// accepted for forward compatibility; current templates do not vary by it.
func TemplateFor(examType, profile string) (Template, error) {
	switch examType {
	case catalog.ExamBacalaureat:
		return bacalaureatTemplate(), nil
	case catalog.ExamEvaluareNationala:
		return evaluareNationalaTemplate(), nil
	default:
		return Template{}, fmt.Errorf("%w: %s", ErrUnsupportedExamType, examType)
	}
}

func bacalaureatTemplate() Template {
	return Template{
		ExamType: catalog.ExamBacalaureat,
		Sections: []SectionSpec{
			{
				Name:          "Subiectul I",
				ItemType:      catalog.ItemSubiect1,
				RequiredCount: 6,
				PointsPerItem: 5,
				SubjectParts:  []string{catalog.SubjectAlgebra, catalog.SubjectAnaliza, catalog.SubjectGeometrie},
			},
			{
				Name:               "Subiectul II",
				ItemType:           catalog.ItemSubiect2,
				RequiredCount:      2,
				PointsPerItem:      15, // 3 sub-variants x 5p
				HasSubVariants:     true,
				SubVariantsPerItem: 3,
				SubjectParts:       []string{catalog.SubjectAlgebra, catalog.SubjectAnaliza},
			},
			{
				Name:               "Subiectul III",
				ItemType:           catalog.ItemSubiect3,
				RequiredCount:      2,
				PointsPerItem:      15,
				HasSubVariants:     true,
				SubVariantsPerItem: 3,
				SubjectParts:       []string{catalog.SubjectGeometrie, catalog.SubjectTrigonometrie},
			},
		},
	}
}

func evaluareNationalaTemplate() Template {
	return Template{
		ExamType: catalog.ExamEvaluareNationala,
		Sections: []SectionSpec{
			{
				Name:          "Subiectul I",
				ItemType:      catalog.ItemSubiect1,
				RequiredCount: 6,
				PointsPerItem: 5,
				SubjectParts:  []string{catalog.SubjectAlgebra, catalog.SubjectGeometrie, catalog.SubjectProbabilitati},
			},
			{
				Name:          "Subiectul II",
				ItemType:      catalog.ItemSubiect2,
				RequiredCount: 3,
				PointsPerItem: 10,
				SubjectParts:  []string{catalog.SubjectAlgebra, catalog.SubjectGeometrie},
			},
		},
	}
}
