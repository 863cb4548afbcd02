package chunk

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Chunk is one bounded slice of normalized text, sized for a single
// synthesis request. Sep is the separator that preceded the chunk in
// the source text, so that joining Sep+Text over the whole sequence
// reproduces the source exactly.
type Chunk struct {
	Index     int
	Text      string
	Sep       string
	Last      bool
	HardSplit bool
}

const whitespace = " \t\r\n"

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Splitter cuts normalized text into chunks of at most limit bytes.
// Paragraphs are packed greedily; a paragraph over the limit is split
// at sentence boundaries, and a single oversized sentence is split at
// a rune boundary as a last resort.
type Splitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewSplitter builds a splitter around the trained English sentence
// tokenizer; the training data ships with the library, so the error is
// only ever a corrupted build.
func NewSplitter() (*Splitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	return &Splitter{tokenizer: tokenizer}, nil
}

// unit is an indivisible packing element: trimmed text plus the
// separator that preceded it in the source.
type unit struct {
	sep  string
	text string
	hard bool
}

// Split cuts text into ordered non-empty chunks. limit <= 0 means
// unbounded. Whitespace-only input yields no chunks.
func (s *Splitter) Split(text string, limit int) []Chunk {
	units := s.units(text, limit)
	return pack(units, limit)
}

// Reassemble reverses Split: concatenating Sep+Text in index order
// returns the text the chunks were cut from, minus any leading or
// trailing whitespace the first and last chunk trimmed away.
func Reassemble(chunks []Chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.Sep)
		b.WriteString(c.Text)
	}
	return b.String()
}

func (s *Splitter) units(text string, limit int) []unit {
	var out []unit
	pending := ""
	start := 0

	breaks := paragraphBreak.FindAllStringIndex(text, -1)
	for i := 0; i <= len(breaks); i++ {
		var piece, sep string
		if i < len(breaks) {
			piece = text[start:breaks[i][0]]
			sep = text[breaks[i][0]:breaks[i][1]]
			start = breaks[i][1]
		} else {
			piece = text[start:]
		}

		pieceUnits, carry := s.pieceUnits(piece, pending, limit)
		out = append(out, pieceUnits...)
		pending = carry + sep
	}

	return out
}

// pieceUnits converts one paragraph into units. sep is the separator
// owed to the paragraph's first unit; the returned carry is trailing
// whitespace that belongs to whatever unit comes next.
func (s *Splitter) pieceUnits(piece, sep string, limit int) ([]unit, string) {
	core := strings.TrimLeft(piece, whitespace)
	sep += piece[:len(piece)-len(core)]

	trimmed := strings.TrimRight(core, whitespace)
	carry := core[len(trimmed):]
	core = trimmed

	if core == "" {
		return nil, sep + carry
	}
	if limit <= 0 || len(core) <= limit {
		return []unit{{sep: sep, text: core}}, carry
	}

	var out []unit
	prev := 0
	curSep := sep
	for _, end := range append(s.sentenceEnds(core), len(core)) {
		if end <= prev || end > len(core) {
			continue
		}
		sentence := core[prev:end]
		prev = end

		body := strings.TrimRight(sentence, whitespace)
		tail := sentence[len(body):]
		if body == "" {
			curSep += sentence
			continue
		}
		out = append(out, hardSplit(body, curSep, limit)...)
		curSep = tail
	}
	return out, carry
}

// sentenceEnds locates sentence boundaries in piece as byte offsets.
// The tokenizer proposes sentences; each is mapped back onto the
// original text so that slicing at the returned offsets loses nothing.
// A boundary is extended across the whitespace that follows it. When
// the tokenizer finds no interior boundary, a plain scan for terminal
// punctuation followed by whitespace is used instead.
func (s *Splitter) sentenceEnds(piece string) []int {
	var ends []int
	pos := 0
	for _, sentence := range s.tokenizer.Tokenize(piece) {
		body := strings.TrimSpace(sentence.Text)
		if body == "" {
			continue
		}
		idx := strings.Index(piece[pos:], body)
		if idx < 0 {
			continue
		}
		end := pos + idx + len(body)
		for end < len(piece) && strings.IndexByte(whitespace, piece[end]) >= 0 {
			end++
		}
		ends = append(ends, end)
		pos = end
	}

	for _, end := range ends {
		if end < len(piece) {
			return ends
		}
	}
	return scanSentenceEnds(piece)
}

// scanSentenceEnds is the fallback boundary finder: a sentence ends at
// terminal punctuation (with any closing quotes or brackets) followed
// by whitespace.
func scanSentenceEnds(piece string) []int {
	var ends []int
	for i := 0; i < len(piece); i++ {
		if piece[i] != '.' && piece[i] != '!' && piece[i] != '?' {
			continue
		}
		j := i + 1
		for j < len(piece) && strings.IndexByte(`.!?"')]`, piece[j]) >= 0 {
			j++
		}
		k := j
		for k < len(piece) && strings.IndexByte(whitespace, piece[k]) >= 0 {
			k++
		}
		if k > j {
			ends = append(ends, k)
			i = k - 1
		}
	}
	return ends
}

// hardSplit cuts a single sentence that alone exceeds the limit at rune
// boundaries. Sentences within the limit pass through untouched.
func hardSplit(body, sep string, limit int) []unit {
	if limit <= 0 || len(body) <= limit {
		return []unit{{sep: sep, text: body}}
	}

	var out []unit
	for len(body) > 0 {
		n := limit
		if n >= len(body) {
			n = len(body)
		} else {
			for n > 0 && !utf8.RuneStart(body[n]) {
				n--
			}
			if n == 0 {
				n = limit
			}
		}
		out = append(out, unit{sep: sep, text: body[:n], hard: true})
		body = body[n:]
		sep = ""
	}
	return out
}

func pack(units []unit, limit int) []Chunk {
	var chunks []Chunk
	var b strings.Builder
	var sep string
	hard := false

	flush := func() {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Index:     len(chunks),
			Text:      b.String(),
			Sep:       sep,
			HardSplit: hard,
		})
		b.Reset()
		hard = false
	}

	for _, u := range units {
		if b.Len() > 0 && limit > 0 && b.Len()+len(u.sep)+len(u.text) > limit {
			flush()
		}
		if b.Len() == 0 {
			sep = u.sep
		} else {
			b.WriteString(u.sep)
		}
		b.WriteString(u.text)
		hard = hard || u.hard
	}
	flush()

	if len(chunks) > 0 {
		chunks[len(chunks)-1].Last = true
		chunks[0].Sep = ""
	}
	return chunks
}
