package document

import (
	"path/filepath"
	"strings"
)

// sniffLines bounds how far into a document the summary marker is
// searched for, so classification never depends on reading a huge file
// end to end.
const sniffLines = 40

// SummaryMarker reports whether a line prefix contains the metadata
// table emitted for video summaries. Swappable so callers with a
// different summary layout can replace the predicate.
var SummaryMarker = func(prefix string) bool {
	return strings.Contains(prefix, "| **Channel** |") &&
		strings.Contains(prefix, "| **Duration** |")
}

// Classify assigns a document type from the file path and a content
// sniff. It is a total function: anything unrecognized is plain text.
// Rules are applied in order, first match wins.
func Classify(path string, content string) Type {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".pdf" {
		return Pdf
	}

	markdownish := ext == ".md" || ext == ".markdown" || (ext == "" && looksLikeMarkdown(content))
	if markdownish && SummaryMarker(prefix(content, sniffLines)) {
		return SummaryWithTranscript
	}

	if ext == ".md" || ext == ".markdown" {
		return Markdown
	}

	return PlainText
}

// prefix returns at most n leading lines of s.
func prefix(s string, n int) string {
	for i, pos := 0, 0; i < n; i++ {
		next := strings.IndexByte(s[pos:], '\n')
		if next < 0 {
			return s
		}
		pos += next + 1
		if i == n-1 {
			return s[:pos]
		}
	}
	return s
}

func looksLikeMarkdown(content string) bool {
	for line := range strings.Lines(content) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "|") ||
			strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
		return false
	}
	return false
}
