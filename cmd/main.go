package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"doctts/audio"
	"doctts/config"
	"doctts/runner"
	"doctts/tts"
)

func main() {
	var (
		configPath string
		backend    string
		voice      string
		speed      float64
		saveDir    string
		full       bool
		quiet      bool
		listVoices bool
	)
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&backend, "backend", "", "synthesis backend: neural or local")
	flag.StringVar(&voice, "voice", "", "voice name or shortcut (e.g. aria, guy)")
	flag.Float64Var(&speed, "speed", 1.0, "speed multiplier, 0.5 to 3.0")
	flag.StringVar(&saveDir, "save", "", "save audio to this directory instead of playing")
	flag.BoolVar(&full, "full", false, "include the transcript section of summary documents")
	flag.BoolVar(&quiet, "quiet", false, "suppress progress output")
	flag.BoolVar(&listVoices, "list-voices", false, "list voice shortcuts and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if backend != "" {
		cfg.Backend = backend
	}
	if voice != "" {
		cfg.Voice = voice
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "speed" {
			cfg.Speed = speed
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if listVoices {
		printVoices(cfg)
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: doctts [flags] file...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger, err := newLogger(quiet)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	synth, err := newSynthesizer(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var sink audio.Sink
	if saveDir != "" {
		sink = audio.NewSaveSink(saveDir, logger)
	} else {
		sink, err = audio.NewPlaybackSink(logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	// The local engine is one process talking to one audio stack;
	// parallel requests buy nothing there.
	workers := cfg.Concurrency
	if cfg.Backend == config.BackendLocal {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		log.Fatalf("failed to create worker pool: %v", err)
	}
	defer pool.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(synth, sink, pool, logger, runner.Options{
		Voice:             cfg.ResolveVoice(cfg.Voice),
		Speed:             cfg.Speed,
		IncludeTranscript: full,
	})
	if err != nil {
		log.Fatalf("failed to create runner: %v", err)
	}
	results := r.Run(ctx, paths)

	exit := 0
	for _, res := range results {
		if !res.Succeeded {
			exit = 1
			fmt.Fprintf(os.Stderr, "%s: %s: %v\n", res.Path, res.Kind, res.Err)
		}
	}
	os.Exit(exit)
}

func newLogger(quiet bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if quiet {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}

func newSynthesizer(cfg *config.Config, logger *zap.Logger) (tts.Synthesizer, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		return tts.NewLocalEngine(cfg.LocalConfig(), logger)
	default:
		return tts.NewNeuralClient(cfg.NeuralConfig(), logger)
	}
}

func printVoices(cfg *config.Config) {
	shortcuts := make([]string, 0, len(cfg.Voices))
	for name := range cfg.Voices {
		shortcuts = append(shortcuts, name)
	}
	sort.Strings(shortcuts)
	fmt.Println("voice shortcuts:")
	for _, name := range shortcuts {
		fmt.Printf("  %s: %s\n", name, cfg.Voices[name])
	}
}
