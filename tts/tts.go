package tts

import (
	"context"
	"errors"
)

// ErrSynthesisUnavailable is returned when a backend cannot produce
// audio: the networked backend after its retry budget, the local engine
// on its single attempt.
var ErrSynthesisUnavailable = errors.New("tts: synthesis backend unavailable")

// Audio is one synthesized segment's raw bytes.
type Audio struct {
	Data   []byte
	Format string // "mp3", "aiff", "wav"
}

// Synthesizer converts one text segment into audio. Implementations are
// a networked neural-voice service and a local engine; new backends
// implement the same contract.
type Synthesizer interface {
	// Synthesize renders text with the given voice. Backends that
	// report NativeSpeed apply speed themselves; others ignore it and
	// leave the time-scale transform to the output sink.
	Synthesize(ctx context.Context, text, voice string, speed float64) (Audio, error)

	// Name identifies the backend in logs and errors.
	Name() string

	// MaxChunkLen is the longest text, in bytes, one request may carry.
	MaxChunkLen() int

	// NativeSpeed reports whether the backend honors the speed
	// multiplier itself.
	NativeSpeed() bool
}
