package audio

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaveSink concatenates a document's segments, in index order, into one
// mp3 under its directory. When the backend lacked native speed
// control, a single time-scale pass runs over the assembled artifact,
// never per segment, so there are no audible seams.
type SaveSink struct {
	dir    string
	logger *zap.Logger
	run    func(ctx context.Context, name string, args ...string) error
}

func NewSaveSink(dir string, logger *zap.Logger) *SaveSink {
	return &SaveSink{
		dir:    dir,
		logger: logger,
		run: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %w: %s", name, err, out)
			}
			return nil
		},
	}
}

func (s *SaveSink) Consume(ctx context.Context, segments []Segment, job Job) (string, error) {
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: no segments to save", ErrOutputWrite)
	}
	segments = byIndex(segments)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create output directory: %w", ErrOutputWrite, err)
	}

	dest, err := resolveDestination(s.dir, Slug(job.BaseName))
	if err != nil {
		return "", err
	}

	needSpeed := !job.NativeSpeed && job.Speed != 1.0

	// A lone mp3 segment with no transform needs no assembly step.
	if len(segments) == 1 && segments[0].Audio.Format == "mp3" && !needSpeed {
		if err := os.WriteFile(dest, segments[0].Audio.Data, 0o644); err != nil {
			return "", fmt.Errorf("%w: write %s: %w", ErrOutputWrite, dest, err)
		}
		return dest, nil
	}

	workDir, err := os.MkdirTemp("", "doctts-save-")
	if err != nil {
		return "", fmt.Errorf("%w: create work directory: %w", ErrOutputWrite, err)
	}
	defer os.RemoveAll(workDir)

	listPath, err := writeSegmentList(workDir, segments)
	if err != nil {
		return "", err
	}

	args := assembleArgs(listPath, dest, segments[0].Audio.Format, job.Speed, needSpeed)
	if err := s.run(ctx, "ffmpeg", args...); err != nil {
		// Never leave a partial artifact behind, whether the encoder
		// failed or the run was canceled mid-write.
		os.Remove(dest)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: assemble audio: %w", ErrOutputWrite, err)
	}

	s.logger.Info("saved audio",
		zap.String("path", dest),
		zap.Int("segments", len(segments)))
	return dest, nil
}

// writeSegmentList writes segment files plus the concat manifest ffmpeg
// reads them from.
func writeSegmentList(workDir string, segments []Segment) (string, error) {
	listPath := filepath.Join(workDir, "segments.txt")
	list, err := os.Create(listPath)
	if err != nil {
		return "", fmt.Errorf("%w: create segment list: %w", ErrOutputWrite, err)
	}
	defer list.Close()

	w := bufio.NewWriter(list)
	for _, seg := range segments {
		name := fmt.Sprintf("seg-%05d-%s.%s", seg.Index, uuid.NewString(), seg.Audio.Format)
		path := filepath.Join(workDir, name)
		if err := os.WriteFile(path, seg.Audio.Data, 0o644); err != nil {
			return "", fmt.Errorf("%w: write segment %d: %w", ErrOutputWrite, seg.Index, err)
		}
		if _, err := fmt.Fprintf(w, "file '%s'\n", path); err != nil {
			return "", fmt.Errorf("%w: write segment list: %w", ErrOutputWrite, err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("%w: flush segment list: %w", ErrOutputWrite, err)
	}
	return listPath, nil
}

// assembleArgs builds the ffmpeg invocation: concat demuxer input, then
// either a stream copy when the segments are already mp3 and untouched,
// or an encode with the optional atempo filter.
func assembleArgs(listPath, dest, format string, speed float64, needSpeed bool) []string {
	args := []string{"-f", "concat", "-safe", "0", "-i", listPath}
	if needSpeed {
		args = append(args, "-filter:a", AtempoChain(speed))
	}
	if format == "mp3" && !needSpeed {
		args = append(args, "-c", "copy")
	} else {
		args = append(args, "-acodec", "libmp3lame", "-q:a", "2")
	}
	return append(args, dest)
}

// AtempoChain expresses a speed multiplier as an ffmpeg filter. atempo
// only accepts factors in [0.5, 2.0], so anything outside is chained.
func AtempoChain(speed float64) string {
	var parts []string
	for speed > 2.0 {
		parts = append(parts, "atempo=2.0")
		speed /= 2.0
	}
	for speed < 0.5 {
		parts = append(parts, "atempo=0.5")
		speed *= 2.0
	}
	parts = append(parts, fmt.Sprintf("atempo=%.4f", speed))
	return strings.Join(parts, ",")
}

// Slug derives the artifact file name from a document title: keep
// letters, digits, spaces, dashes and underscores, cap at 50 runes,
// then lowercase with dashes for spaces.
func Slug(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if runes := []rune(s); len(runes) > 50 {
		s = string(runes[:50])
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ToLower(s)
	if s == "" {
		s = "audio"
	}
	return s
}

// resolveDestination picks a path that does not collide with an
// existing artifact: base.mp3, then base-2.mp3, base-3.mp3 and so on.
// Existing files are never overwritten.
func resolveDestination(dir, base string) (string, error) {
	for i := 1; ; i++ {
		name := base + ".mp3"
		if i > 1 {
			name = fmt.Sprintf("%s-%d.mp3", base, i)
		}
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %w", ErrOutputWrite, path, err)
		}
	}
}
