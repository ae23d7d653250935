package pdf

import (
	"fmt"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"
)

// ReadPages extracts per-page plain text with the structured PDF reader.
// The reader panics on some malformed files; that is reported as an error.
func ReadPages(path string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdfreader.Open(path)
	if err != nil {
		return Result{Err: err}
	}
	defer f.Close()

	var pages []string
	var firstErr error
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", i, err)
			}
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			pages = append(pages, t)
		}
	}
	return Result{Text: strings.Join(pages, "\n"), Err: firstErr}
}
