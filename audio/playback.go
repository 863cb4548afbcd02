package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// players lists known playback commands in preference order.
var players = []string{"afplay", "mpv", "ffplay", "aplay"}

// PlaybackSink plays segments through the system audio output strictly
// in index order. When the backend lacked native speed control, the
// multiplier is handed to the player instead.
type PlaybackSink struct {
	player string
	logger *zap.Logger
	run    func(ctx context.Context, name string, args ...string) error
}

func NewPlaybackSink(logger *zap.Logger) (*PlaybackSink, error) {
	player, err := detectPlayer()
	if err != nil {
		return nil, err
	}
	return &PlaybackSink{
		player: player,
		logger: logger,
		run: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %w: %s", name, err, out)
			}
			return nil
		},
	}, nil
}

func detectPlayer() (string, error) {
	candidates := players
	if runtime.GOOS != "darwin" {
		candidates = players[1:]
	}
	for _, p := range candidates {
		if _, err := exec.LookPath(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no audio player found, install mpv or ffmpeg")
}

func (p *PlaybackSink) Consume(ctx context.Context, segments []Segment, job Job) (string, error) {
	segments = byIndex(segments)
	speed := 1.0
	if !job.NativeSpeed {
		speed = job.Speed
	}

	for _, seg := range segments {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		path := filepath.Join(os.TempDir(), "doctts-play-"+uuid.NewString()+"."+seg.Audio.Format)
		if err := os.WriteFile(path, seg.Audio.Data, 0o644); err != nil {
			return "", fmt.Errorf("%w: write playback segment: %w", ErrOutputWrite, err)
		}
		err := p.run(ctx, p.player, playerArgs(p.player, path, speed)...)
		os.Remove(path)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("%w: play segment %d: %w", ErrOutputWrite, seg.Index, err)
		}
	}
	return "", nil
}

// playerArgs builds the playback invocation, mapping the speed
// multiplier to whatever knob the player offers. aplay has none; it
// plays at normal speed.
func playerArgs(player, path string, speed float64) []string {
	adjusted := speed != 1.0
	switch player {
	case "afplay":
		if adjusted {
			return []string{"-r", fmt.Sprintf("%.2f", speed), path}
		}
		return []string{path}
	case "mpv":
		args := []string{"--no-video", "--really-quiet"}
		if adjusted {
			args = append(args, fmt.Sprintf("--speed=%.2f", speed))
		}
		return append(args, path)
	case "ffplay":
		args := []string{"-nodisp", "-autoexit", "-loglevel", "error"}
		if adjusted {
			args = append(args, "-af", AtempoChain(speed))
		}
		return append(args, path)
	default:
		return []string{path}
	}
}
