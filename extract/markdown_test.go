package extract

import "testing"

func TestStripMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"HeadingAndBold",
			"# Title\n\nHello **world**.",
			"Title\n\nHello world.",
		},
		{
			"Link",
			"See [the docs](https://example.com/docs) for more.",
			"See the docs for more.",
		},
		{
			"Image",
			"![diagram of the pipeline](img/pipe.png)",
			"diagram of the pipeline",
		},
		{
			"CodeFence",
			"Before.\n\n```go\nfunc main() {}\n```\n\nAfter.",
			"Before.\n\n[code block]\n\nAfter.",
		},
		{
			"InlineCode",
			"Run `make test` now.",
			"Run  now.",
		},
		{
			"Emphasis",
			"*one* _two_ __three__",
			"one two three",
		},
		{
			"Bullets",
			"- first\n- second",
			"• first\n• second",
		},
		{
			"HorizontalRule",
			"above\n\n---\n\nbelow",
			"above\n\nbelow",
		},
		{
			"BlankRunsCollapse",
			"one\n\n\n\ntwo",
			"one\n\ntwo",
		},
		{
			"AllHeadingLevels",
			"## Section\n\n###### Deep",
			"Section\n\nDeep",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripMarkdown(tc.input); got != tc.expected {
				t.Errorf("StripMarkdown(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
