package recognize

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// fakeRecognizer returns canned text per page and fails pages listed in fail.
type fakeRecognizer struct {
	fail map[int]bool
	call int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, page []byte) (PageResult, error) {
	f.call++
	if f.fail[f.call] {
		return PageResult{}, errors.New("engine timeout")
	}
	return PageResult{Text: fmt.Sprintf("pagina %d: %s", f.call, page)}, nil
}

func TestDocument_CombinesPages(t *testing.T) {
	rec := &fakeRecognizer{}
	res := Document(context.Background(), rec, [][]byte{[]byte("a"), []byte("b")})

	if res.TotalPages != 2 || len(res.Pages) != 2 {
		t.Fatalf("TotalPages/Pages = %d/%d; want 2/2", res.TotalPages, len(res.Pages))
	}
	if res.Pages[0].PageNumber != 1 || res.Pages[1].PageNumber != 2 {
		t.Errorf("page numbers = %d, %d; want 1, 2", res.Pages[0].PageNumber, res.Pages[1].PageNumber)
	}
	want := "pagina 1: a\n\npagina 2: b"
	if res.CombinedText != want {
		t.Errorf("CombinedText = %q; want %q", res.CombinedText, want)
	}
}

func TestDocument_FailingPageDoesNotAbort(t *testing.T) {
	rec := &fakeRecognizer{fail: map[int]bool{2: true}}
	res := Document(context.Background(), rec, [][]byte{[]byte("a"), []byte("b"), []byte("c")})

	if len(res.Pages) != 3 {
		t.Fatalf("Pages = %d; want 3", len(res.Pages))
	}
	if res.Pages[1].Err == "" {
		t.Error("failing page did not record its error")
	}
	want := "pagina 1: a\n\npagina 3: c"
	if res.CombinedText != want {
		t.Errorf("CombinedText = %q; want %q", res.CombinedText, want)
	}
}

func TestStub_MarksPagesUnprocessed(t *testing.T) {
	res, err := Stub{}.Recognize(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Err == "" {
		t.Error("stub should mark the page as unprocessed")
	}
}
