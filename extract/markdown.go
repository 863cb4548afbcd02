package extract

import (
	"regexp"
	"strings"
)

// Markdown is stripped with ordered regex passes: structural syntax is
// removed while prose order and paragraph breaks survive, so the speech
// backend never vocalizes punctuation noise.
var (
	codeFence      = regexp.MustCompile("(?s)```.*?```")
	inlineCode     = regexp.MustCompile("`[^`]+`")
	heading        = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	imageLink      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	link           = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldStars      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicStar     = regexp.MustCompile(`\*([^*]+)\*`)
	boldUnder      = regexp.MustCompile(`__([^_]+)__`)
	italicUnder    = regexp.MustCompile(`_([^_]+)_`)
	bullet         = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	horizontalRule = regexp.MustCompile(`(?m)^-{3,}\s*$`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// StripMarkdown converts Markdown to speakable plain text.
func StripMarkdown(content string) string {
	content = codeFence.ReplaceAllString(content, "[code block]")
	content = inlineCode.ReplaceAllString(content, "")

	content = heading.ReplaceAllString(content, "$1")

	content = imageLink.ReplaceAllString(content, "$1")
	content = link.ReplaceAllString(content, "$1")

	content = boldStars.ReplaceAllString(content, "$1")
	content = italicStar.ReplaceAllString(content, "$1")
	content = boldUnder.ReplaceAllString(content, "$1")
	content = italicUnder.ReplaceAllString(content, "$1")

	content = bullet.ReplaceAllString(content, "• ")
	content = horizontalRule.ReplaceAllString(content, "")

	content = blankRuns.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
