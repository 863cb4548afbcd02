package chunk

import (
	"strings"
	"testing"
)

func newTestSplitter(t *testing.T) *Splitter {
	t.Helper()
	splitter, err := NewSplitter()
	if err != nil {
		t.Fatal(err)
	}
	return splitter
}

func TestSplitRoundTrip(t *testing.T) {
	splitter := newTestSplitter(t)

	testCases := []struct {
		name  string
		text  string
		limit int
	}{
		{"SingleParagraph", "Just one short paragraph.", 100},
		{"TwoParagraphs", "First paragraph here.\n\nSecond paragraph here.", 100},
		{"ManySmallParagraphs", "aaa.\n\nbbb.\n\nccc.\n\nddd.\n\neee.", 12},
		{"SentencePacking", "One sentence. Two sentence. Three sentence. Four sentence. Five sentence.", 30},
		{"MixedSeparators", "Para one.\n\n\nPara two after triple newline.\n\nPara three.", 25},
		{"Unbounded", "Anything at all.\n\nMore of it.", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := splitter.Split(tc.text, tc.limit)
			if len(chunks) == 0 {
				t.Fatal("no chunks produced")
			}
			if got := Reassemble(chunks); got != tc.text {
				t.Errorf("round trip failed:\n got %q\nwant %q", got, tc.text)
			}
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d has index %d", i, c.Index)
				}
				if strings.TrimSpace(c.Text) == "" {
					t.Errorf("chunk %d is empty", i)
				}
				if tc.limit > 0 && !c.HardSplit && len(c.Text) > tc.limit {
					t.Errorf("chunk %d length %d exceeds limit %d", i, len(c.Text), tc.limit)
				}
			}
			if !chunks[len(chunks)-1].Last {
				t.Error("final chunk not marked Last")
			}
			for _, c := range chunks[:len(chunks)-1] {
				if c.Last {
					t.Errorf("chunk %d marked Last", c.Index)
				}
			}
		})
	}
}

// 7000 characters in paragraphs that never exceed the limit pack into
// exactly three chunks and lose nothing.
func TestSplitSevenThousandCharacters(t *testing.T) {
	paragraph := strings.Repeat("a", 1165)
	text := strings.Join([]string{paragraph, paragraph, paragraph, paragraph, paragraph, paragraph}, "\n\n")
	if len(text) != 7000 {
		t.Fatalf("test input is %d chars, want 7000", len(text))
	}

	chunks := newTestSplitter(t).Split(text, 3000)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Text) > 3000 {
			t.Errorf("chunk %d length %d exceeds 3000", c.Index, len(c.Text))
		}
		if c.HardSplit {
			t.Errorf("chunk %d unexpectedly hard-split", c.Index)
		}
	}
	if got := Reassemble(chunks); got != text {
		t.Error("round trip failed for 7000-char input")
	}
}

func TestSplitOversizedParagraph(t *testing.T) {
	// One paragraph over the limit, but each sentence fits: must split
	// between sentences, never inside one.
	sentence := "This sentence has a reasonable length for the test. "
	text := strings.TrimSpace(strings.Repeat(sentence, 10))

	chunks := newTestSplitter(t).Split(text, 120)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Text) > 120 {
			t.Errorf("chunk %d length %d exceeds limit", c.Index, len(c.Text))
		}
		if !strings.HasSuffix(c.Text, ".") {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", c.Index, c.Text)
		}
	}
	if got := Reassemble(chunks); got != text {
		t.Errorf("round trip failed:\n got %q\nwant %q", got, text)
	}
}

func TestSplitAbbreviationsDoNotBreakSentences(t *testing.T) {
	// "Dr." must not count as a sentence end, and tokenizing it must
	// not blow up either.
	text := "Dr. Smith went home. Then Dr. Smith came back again to work."

	chunks := newTestSplitter(t).Split(text, 45)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.HardSplit {
			t.Errorf("chunk %d hard-split instead of breaking between sentences: %q", c.Index, c.Text)
		}
		if strings.HasSuffix(c.Text, "Dr.") {
			t.Errorf("chunk %d ends inside an abbreviation: %q", c.Index, c.Text)
		}
	}
	if got := Reassemble(chunks); got != text {
		t.Errorf("round trip failed:\n got %q\nwant %q", got, text)
	}
}

func TestSplitHardSplitLastResort(t *testing.T) {
	// A single unbroken run with no sentence boundaries at all.
	text := strings.Repeat("x", 500)

	chunks := newTestSplitter(t).Split(text, 100)
	if len(chunks) != 5 {
		t.Fatalf("got %d chunks, want 5", len(chunks))
	}
	hard := false
	for _, c := range chunks {
		if len(c.Text) > 100 {
			t.Errorf("chunk %d length %d exceeds limit even for hard split", c.Index, len(c.Text))
		}
		hard = hard || c.HardSplit
	}
	if !hard {
		t.Error("hard split not flagged")
	}
	if got := Reassemble(chunks); got != text {
		t.Error("round trip failed for hard split")
	}
}

func TestSplitEmptyInput(t *testing.T) {
	splitter := newTestSplitter(t)
	for _, text := range []string{"", "   ", "\n\n\n", " \t\n \n"} {
		if chunks := splitter.Split(text, 100); len(chunks) != 0 {
			t.Errorf("Split(%q) produced %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestSplitUnboundedSingleChunk(t *testing.T) {
	text := "One.\n\nTwo.\n\nThree."
	chunks := newTestSplitter(t).Split(text, 0)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("unbounded chunk = %q, want %q", chunks[0].Text, text)
	}
}
