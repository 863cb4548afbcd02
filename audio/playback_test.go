package audio

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"doctts/tts"
)

func TestPlayerArgs(t *testing.T) {
	tests := []struct {
		name   string
		player string
		speed  float64
		want   []string
	}{
		{"AfplayNormal", "afplay", 1.0, []string{"x.mp3"}},
		{"AfplayFast", "afplay", 1.5, []string{"-r", "1.50", "x.mp3"}},
		{"MpvNormal", "mpv", 1.0, []string{"--no-video", "--really-quiet", "x.mp3"}},
		{"MpvFast", "mpv", 2.0, []string{"--no-video", "--really-quiet", "--speed=2.00", "x.mp3"}},
		{"FfplayNormal", "ffplay", 1.0, []string{"-nodisp", "-autoexit", "-loglevel", "error", "x.mp3"}},
		{"FfplaySlow", "ffplay", 0.5, []string{"-nodisp", "-autoexit", "-loglevel", "error", "-af", "atempo=0.5000", "x.mp3"}},
		{"AplayIgnoresSpeed", "aplay", 2.0, []string{"x.mp3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := playerArgs(tt.player, "x.mp3", tt.speed)
			if len(got) != len(tt.want) {
				t.Fatalf("args = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("args = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPlaybackSinkPlaysInIndexOrder(t *testing.T) {
	var played []string
	sink := &PlaybackSink{
		player: "mpv",
		logger: zap.NewNop(),
		run: func(ctx context.Context, name string, args ...string) error {
			path := args[len(args)-1]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			played = append(played, string(data))
			return nil
		},
	}

	segments := []Segment{
		{Index: 2, Audio: tts.Audio{Data: []byte("third"), Format: "mp3"}},
		{Index: 0, Audio: tts.Audio{Data: []byte("first"), Format: "mp3"}},
		{Index: 1, Audio: tts.Audio{Data: []byte("second"), Format: "mp3"}},
	}
	path, err := sink.Consume(context.Background(), segments, Job{Speed: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("playback should not report an output path, got %q", path)
	}
	if strings.Join(played, ",") != "first,second,third" {
		t.Errorf("play order = %v", played)
	}
}

func TestPlaybackSinkPassesSpeedWhenNotNative(t *testing.T) {
	var gotArgs []string
	sink := &PlaybackSink{
		player: "mpv",
		logger: zap.NewNop(),
		run: func(ctx context.Context, name string, args ...string) error {
			gotArgs = args
			return nil
		},
	}

	segs := []Segment{{Index: 0, Audio: tts.Audio{Data: []byte("a"), Format: "mp3"}}}

	if _, err := sink.Consume(context.Background(), segs, Job{Speed: 2.0}); err != nil {
		t.Fatal(err)
	}
	if joined := strings.Join(gotArgs, " "); !strings.Contains(joined, "--speed=2.00") {
		t.Errorf("expected speed flag, got %q", joined)
	}

	if _, err := sink.Consume(context.Background(), segs, Job{Speed: 2.0, NativeSpeed: true}); err != nil {
		t.Fatal(err)
	}
	if joined := strings.Join(gotArgs, " "); strings.Contains(joined, "--speed") {
		t.Errorf("native-speed audio should play unadjusted, got %q", joined)
	}
}

func TestPlaybackSinkStopsOnFailure(t *testing.T) {
	calls := 0
	sink := &PlaybackSink{
		player: "mpv",
		logger: zap.NewNop(),
		run: func(ctx context.Context, name string, args ...string) error {
			calls++
			return errors.New("no audio device")
		},
	}

	segments := []Segment{
		{Index: 0, Audio: tts.Audio{Data: []byte("a"), Format: "mp3"}},
		{Index: 1, Audio: tts.Audio{Data: []byte("b"), Format: "mp3"}},
	}
	_, err := sink.Consume(context.Background(), segments, Job{Speed: 1.0})
	if !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}
	if calls != 1 {
		t.Errorf("playback continued after a failure, %d calls", calls)
	}
}

func TestPlaybackSinkCanceledBetweenSegments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	sink := &PlaybackSink{
		player: "mpv",
		logger: zap.NewNop(),
		run: func(ctx context.Context, name string, args ...string) error {
			calls++
			cancel()
			return nil
		},
	}

	segments := []Segment{
		{Index: 0, Audio: tts.Audio{Data: []byte("a"), Format: "mp3"}},
		{Index: 1, Audio: tts.Audio{Data: []byte("b"), Format: "mp3"}},
	}
	_, err := sink.Consume(ctx, segments, Job{Speed: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("playback continued after cancellation, %d calls", calls)
	}
}
