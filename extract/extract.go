package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"doctts/document"
)

// ErrEmptyDocument is returned when extraction produced no speakable text.
var ErrEmptyDocument = errors.New("extract: document contains no speakable text")

// Result is the normalized, speakable payload of one document.
type Result struct {
	Text              string
	Title             string
	TranscriptSkipped bool
}

// Extract turns a classified document into speakable plain text,
// dispatching on the document type. Only PDF documents can fail here;
// the other extractors always return some result, even an empty one.
func Extract(doc document.Document, includeTranscript bool) (Result, error) {
	title := extractTitle(doc.Raw)

	switch doc.Type {
	case document.Pdf:
		text, err := extractPDF(doc.Path)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Title: title}, nil
	case document.Markdown:
		return Result{Text: StripMarkdown(doc.Raw), Title: title}, nil
	case document.SummaryWithTranscript:
		text, skipped := extractSummary(doc.Raw, includeTranscript)
		return Result{Text: StripMarkdown(text), Title: title, TranscriptSkipped: skipped}, nil
	default:
		return Result{Text: doc.Raw, Title: title}, nil
	}
}

var h1Pattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// extractTitle picks a display title: the first Markdown H1, else the
// first non-empty line, else a fixed fallback. The title only feeds the
// saved artifact's file name.
func extractTitle(content string) string {
	if m := h1Pattern.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}

	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if runes := []rune(line); len(runes) > 100 {
			return string(runes[:100])
		}
		return line
	}

	return "Untitled Document"
}

// joinPages concatenates per-page text in document order with a
// paragraph break between pages. Pages that failed extraction arrive as
// empty strings and are dropped without disturbing page order.
func joinPages(pages []string) (string, error) {
	var kept []string
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page != "" {
			kept = append(kept, page)
		}
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("no text on any page: %w", ErrEmptyDocument)
	}
	return strings.Join(kept, "\n\n"), nil
}
