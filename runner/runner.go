package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"doctts/audio"
	"doctts/chunk"
	"doctts/document"
	"doctts/extract"
	"doctts/tts"
)

// ErrUnsupportedInput is returned when an input path does not resolve
// to readable content.
var ErrUnsupportedInput = errors.New("runner: input path is not readable")

// Options is the explicit per-invocation configuration; the runner
// keeps no process-wide mutable state.
type Options struct {
	Voice             string
	Speed             float64
	IncludeTranscript bool
}

// Result is one document's outcome.
type Result struct {
	Path       string
	Succeeded  bool
	Kind       string
	Err        error
	OutputPath string
}

// Kind maps a pipeline error onto the reported error taxonomy.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedInput):
		return "unsupported_input"
	case errors.Is(err, extract.ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, tts.ErrSynthesisUnavailable):
		return "synthesis_unavailable"
	case errors.Is(err, audio.ErrOutputWrite):
		return "output_write_failure"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// Runner drives the pipeline over a batch of documents, one document at
// a time. A document's failure is recorded in its Result and never
// aborts the rest of the batch.
type Runner struct {
	synth    tts.Synthesizer
	sink     audio.Sink
	splitter *chunk.Splitter
	pool     *ants.Pool
	logger   *zap.Logger
	opts     Options
}

func New(synth tts.Synthesizer, sink audio.Sink, pool *ants.Pool, logger *zap.Logger, opts Options) (*Runner, error) {
	splitter, err := chunk.NewSplitter()
	if err != nil {
		return nil, err
	}
	return &Runner{
		synth:    synth,
		sink:     sink,
		splitter: splitter,
		pool:     pool,
		logger:   logger,
		opts:     opts,
	}, nil
}

// Run processes each path independently and returns one Result per
// path, in input order. After an interrupt the remaining documents are
// reported as canceled while already-completed results are kept.
func (r *Runner) Run(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Path: path, Kind: Kind(err), Err: err})
			continue
		}

		res := r.runOne(ctx, path)
		if res.Succeeded {
			r.logger.Info("document done",
				zap.String("path", path),
				zap.String("output", res.OutputPath))
		} else {
			r.logger.Error("document failed",
				zap.String("path", path),
				zap.String("kind", res.Kind),
				zap.Error(res.Err))
		}
		results = append(results, res)
	}

	succeeded := 0
	for _, res := range results {
		if res.Succeeded {
			succeeded++
		}
	}
	r.logger.Info("batch finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(results)-succeeded))

	return results
}

func (r *Runner) runOne(ctx context.Context, path string) Result {
	fail := func(err error) Result {
		return Result{Path: path, Kind: Kind(err), Err: err}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrUnsupportedInput, err))
	}

	doc := document.Document{
		Path: path,
		Type: document.Classify(path, string(raw)),
		Raw:  string(raw),
	}
	r.logger.Info("processing document",
		zap.String("path", path),
		zap.String("type", string(doc.Type)))

	extracted, err := extract.Extract(doc, r.opts.IncludeTranscript)
	if err != nil {
		return fail(err)
	}
	if extracted.TranscriptSkipped {
		r.logger.Info("transcript skipped, pass --full to include", zap.String("path", path))
	}

	chunks := r.splitter.Split(extracted.Text, r.synth.MaxChunkLen())
	if len(chunks) == 0 {
		return fail(fmt.Errorf("nothing to speak in %s: %w", path, extract.ErrEmptyDocument))
	}
	r.logger.Info("chunked document",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)),
		zap.Int("characters", len(extracted.Text)))

	segments, err := r.synthesize(ctx, chunks)
	if err != nil {
		return fail(err)
	}

	out, err := r.sink.Consume(ctx, segments, audio.Job{
		BaseName:    extracted.Title,
		Speed:       r.opts.Speed,
		NativeSpeed: r.synth.NativeSpeed(),
	})
	if err != nil {
		return fail(err)
	}

	return Result{Path: path, Succeeded: true, OutputPath: out}
}

// synthesize renders every chunk through the worker pool. Completion
// order is whatever the pool yields; segments land in their chunk's
// slot so the sink always sees index order. The first failure cancels
// the remaining work for this document.
func (r *Runner) synthesize(ctx context.Context, chunks []chunk.Chunk) ([]audio.Segment, error) {
	segments := make([]audio.Segment, len(chunks))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for _, c := range chunks {
		if runCtx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := r.pool.Submit(func() {
			defer wg.Done()
			if runCtx.Err() != nil {
				return
			}
			aud, err := r.synth.Synthesize(runCtx, c.Text, r.opts.Voice, r.opts.Speed)
			if err != nil {
				record(err)
				return
			}
			segments[c.Index] = audio.Segment{Index: c.Index, Audio: aud}
		})
		if submitErr != nil {
			wg.Done()
			record(fmt.Errorf("submit synthesis task: %w", submitErr))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}
