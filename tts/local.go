package tts

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

// baseWPM is the speaking rate local engines use at speed 1.0.
const baseWPM = 175

type LocalConfig struct {
	Engine  string // binary name; empty selects per platform
	BaseWPM int
}

func DefaultLocalConfig() LocalConfig {
	return LocalConfig{BaseWPM: baseWPM}
}

// LocalEngine drives an installed synthesis command (macOS say, or
// espeak-ng elsewhere). It applies speed natively as words per minute
// and has no meaningful request-size ceiling. Local failures are not
// transient, so there is no retry.
type LocalEngine struct {
	engine  string
	baseWPM int
	logger  *zap.Logger
	run     func(ctx context.Context, name string, args ...string) error
}

func NewLocalEngine(cfg LocalConfig, logger *zap.Logger) (*LocalEngine, error) {
	engine := cfg.Engine
	if engine == "" {
		engine = detectEngine()
	}
	if _, err := exec.LookPath(engine); err != nil {
		return nil, fmt.Errorf("local engine %q not found: %w", engine, err)
	}

	wpm := cfg.BaseWPM
	if wpm <= 0 {
		wpm = baseWPM
	}

	return &LocalEngine{
		engine:  engine,
		baseWPM: wpm,
		logger:  logger,
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

func detectEngine() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return "espeak-ng"
}

func (e *LocalEngine) Name() string      { return "local" }
func (e *LocalEngine) MaxChunkLen() int  { return 1 << 20 }
func (e *LocalEngine) NativeSpeed() bool { return true }

func (e *LocalEngine) Synthesize(ctx context.Context, text, voice string, speed float64) (Audio, error) {
	format := engineFormat(e.engine)
	out := filepath.Join(os.TempDir(), "doctts-"+uuid.NewString()+"."+format)
	defer os.Remove(out)

	args := engineArgs(e.engine, voice, localWPM(e.baseWPM, speed), out, text)
	if err := e.run(ctx, e.engine, args...); err != nil {
		if ctx.Err() != nil {
			return Audio{}, ctx.Err()
		}
		return Audio{}, fmt.Errorf("local synthesis: %w: %w", ErrSynthesisUnavailable, err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return Audio{}, fmt.Errorf("local synthesis: %w: read engine output: %w", ErrSynthesisUnavailable, err)
	}
	return Audio{Data: data, Format: format}, nil
}

// localWPM converts the speed multiplier to the words-per-minute flag
// local engines expect.
func localWPM(base int, speed float64) int {
	if speed <= 0 {
		speed = 1.0
	}
	return int(float64(base) * speed)
}

func engineFormat(engine string) string {
	if engine == "say" {
		return "aiff"
	}
	return "wav"
}

func engineArgs(engine, voice string, wpm int, outPath, text string) []string {
	if engine == "say" {
		args := []string{"-r", fmt.Sprint(wpm), "-o", outPath}
		if voice != "" {
			args = append([]string{"-v", voice}, args...)
		}
		return append(args, text)
	}
	args := []string{"-s", fmt.Sprint(wpm), "-w", outPath}
	if voice != "" {
		args = append([]string{"-v", voice}, args...)
	}
	return append(args, text)
}
