package audio

import (
	"context"
	"errors"
	"sort"

	"doctts/tts"
)

// ErrOutputWrite is returned when the destination directory or file
// cannot be created or written.
var ErrOutputWrite = errors.New("audio: output write failure")

// Segment is one synthesized chunk, ordered by Index.
type Segment struct {
	Index int
	Audio tts.Audio
}

// Job carries the per-document parameters a sink needs.
type Job struct {
	// BaseName is the document title the saved artifact is named from.
	BaseName string

	// Speed is the requested multiplier. NativeSpeed reports whether
	// the backend already applied it; if not, the sink owns the
	// time-scale transform.
	Speed       float64
	NativeSpeed bool
}

// Sink consumes a document's ordered audio segments: playback through
// the system audio output, or assembly into one persisted file. The
// returned path is empty for playback.
type Sink interface {
	Consume(ctx context.Context, segments []Segment, job Job) (string, error)
}

// byIndex orders segments regardless of synthesis completion order.
func byIndex(segments []Segment) []Segment {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })
	return ordered
}
