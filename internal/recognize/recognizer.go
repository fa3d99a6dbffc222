// Package recognize defines the contract for the external OCR engine that
// turns scanned pages into raw text plus extracted formulas. The engine
// itself (pix2text, mathpix, ...) runs out of process; this package only
// carries the interface and the per-page result shape.
package recognize

import "context"

type PageResult struct {
	PageNumber int      `json:"page_number"`
	Text       string   `json:"raw_text"`
	Formulas   []string `json:"latex_formulas"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Err        string   `json:"error,omitempty"`
}

type DocumentResult struct {
	Pages        []PageResult `json:"pages"`
	CombinedText string       `json:"combined_text"`
	TotalPages   int          `json:"total_pages"`
}

type Recognizer interface {
	// Recognize processes a single page image.
	Recognize(ctx context.Context, page []byte) (PageResult, error)
}

// Document runs the recognizer over every page. A failing page is recorded in
// its result and does not abort the rest of the document.
func Document(ctx context.Context, rec Recognizer, pages [][]byte) DocumentResult {
	out := DocumentResult{TotalPages: len(pages)}
	combined := ""
	for i, page := range pages {
		res, err := rec.Recognize(ctx, page)
		res.PageNumber = i + 1
		if err != nil {
			res.Err = err.Error()
		} else {
			if combined != "" {
				combined += "\n\n"
			}
			combined += res.Text
		}
		out.Pages = append(out.Pages, res)
	}
	out.CombinedText = combined
	return out
}

// Stub stands in when no OCR engine is configured. It reports every page as
// unprocessed so ingestion can proceed with manual extraction.
type Stub struct{}

func (Stub) Recognize(ctx context.Context, page []byte) (PageResult, error) {
	return PageResult{Err: "no recognizer configured"}, nil
}
