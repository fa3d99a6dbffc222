// Package render produces the downloadable paper for a variant. Layout
// fidelity is not a goal here; the text renderer groups exercises by section
// in membership order and neutralizes embedded markup before it reaches the
// output.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Exercise struct {
	OrderIndex    int
	SectionName   string
	StatementText string
	Points        int
}

type Document struct {
	Name            string
	ExamType        string
	Profile         string
	Year            int
	Session         string
	TotalPoints     int
	DurationMinutes int
	Exercises       []Exercise // already in order_index order
}

type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// TextRenderer writes a plain UTF-8 paper.
type TextRenderer struct {
	Now func() time.Time // test seam; defaults to time.Now
}

func (r *TextRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	var b strings.Builder

	b.WriteString(doc.Name + "\n")
	var info []string
	if doc.ExamType != "" {
		info = append(info, strings.ReplaceAll(doc.ExamType, "_", " "))
	}
	if doc.Profile != "" {
		info = append(info, "Profil: "+doc.Profile)
	}
	if doc.Year != 0 {
		info = append(info, fmt.Sprintf("Anul %d", doc.Year))
	}
	if doc.Session != "" {
		info = append(info, doc.Session)
	}
	if len(info) > 0 {
		b.WriteString(strings.Join(info, " • ") + "\n")
	}
	var meta []string
	if doc.DurationMinutes > 0 {
		meta = append(meta, fmt.Sprintf("Timp de lucru: %d minute", doc.DurationMinutes))
	}
	if doc.TotalPoints > 0 {
		meta = append(meta, fmt.Sprintf("Punctaj total: %d puncte", doc.TotalPoints))
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " | ") + "\n")
	}
	b.WriteString(separator + "\n")

	// Sections appear in the order their first exercise occurs; within a
	// section, order_index order is preserved.
	currentSection := ""
	num := 0
	for _, ex := range doc.Exercises {
		section := ex.SectionName
		if section == "" {
			section = "Exerciții"
		}
		if section != currentSection {
			currentSection = section
			num = 0
			b.WriteString("\n" + section + "\n\n")
		}
		num++
		line := fmt.Sprintf("%d.", num)
		if ex.Points > 0 {
			line += fmt.Sprintf(" (%dp)", ex.Points)
		}
		line += " " + Flatten(ex.StatementText)
		b.WriteString(line + "\n\n")
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	b.WriteString(separator + "\n")
	b.WriteString("Generat cu ExamForge • " + now().Format("02.01.2006 15:04") + "\n")

	return []byte(b.String()), nil
}

const separator = "----------------------------------------"
