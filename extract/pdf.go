package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls text out of a PDF page by page, in document order.
// A page that cannot be parsed (a scanned image, a font without a
// usable encoding) contributes an empty string instead of failing the
// document; only a PDF with no extractable text at all is an error.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return joinPages(pages)
}
