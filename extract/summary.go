package extract

import (
	"strings"
)

// TranscriptHeading reports whether a line opens the transcript section
// of a summary document. The exact heading text is not guaranteed by
// the summary producer, so the matcher is a swappable predicate rather
// than a hard-coded constant.
var TranscriptHeading = func(line string) bool {
	line = strings.TrimSpace(line)
	return line == "## Transcript" || line == "## Full Transcript"
}

// extractSummary returns the speakable part of a summary document. The
// summary section is everything before the transcript heading; unless
// includeTranscript is set, the heading and everything after it is
// dropped and the second return is true. A document without a
// recognized heading is treated as all summary.
//
// Along the way, formatting the summary producer emits for browsers is
// rewritten for the ear: metadata table rows become "Key: Value" lines,
// table separator rows, collapsible-section HTML tags and the
// "Click to expand" hint are dropped.
func extractSummary(content string, includeTranscript bool) (string, bool) {
	var out []string
	skipped := false
	inDetails := false

	for rawLine := range strings.Lines(content) {
		line := strings.TrimRight(rawLine, "\n")
		trimmed := strings.TrimSpace(line)

		if TranscriptHeading(trimmed) {
			if !includeTranscript {
				skipped = true
				break
			}
			out = append(out, line)
			continue
		}

		if strings.HasPrefix(trimmed, "<details") {
			inDetails = true
			continue
		}
		if strings.HasPrefix(trimmed, "</details") {
			inDetails = false
			continue
		}
		if inDetails && !includeTranscript {
			if trimmed != "" {
				skipped = true
			}
			continue
		}

		if strings.Contains(trimmed, "Click to expand") {
			continue
		}

		if strings.HasPrefix(trimmed, "|") && strings.Contains(trimmed, "---") {
			continue
		}

		if strings.HasPrefix(trimmed, "|") && strings.Contains(trimmed, "**") {
			if key, value, ok := tableRow(trimmed); ok {
				out = append(out, key+": "+value)
			}
			continue
		}

		// Bare HTML tag lines, e.g. <summary> wrappers.
		if strings.HasPrefix(trimmed, "<") && strings.HasSuffix(trimmed, ">") {
			continue
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n"), skipped
}

// tableRow converts a metadata table row like "| **Channel** | Veritasium |"
// into its key and value.
func tableRow(line string) (string, string, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 3 {
		return "", "", false
	}
	key := strings.TrimSpace(strings.ReplaceAll(parts[1], "**", ""))
	value := strings.TrimSpace(strings.ReplaceAll(parts[2], "**", ""))
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
