// Package pipeline runs extraction pipelines: frames are loaded from a file
// or an SQL query, passed through each configured extraction step in order,
// and written to a file or stdout.
//
// # Basic Usage
//
//	cfg, err := config.LoadPipeline("pipeline.yaml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(cfg, logger)
//	result, err := runner.Run(ctx)
//
// Every stage (load, transform, write) is traced in its own span and timed
// in the framex_pipeline_stage_duration_seconds histogram.
package pipeline

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/config"
	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/extract"
	"github.com/ajitpratap0/framex/pkg/frame"
	"github.com/ajitpratap0/framex/pkg/metrics"
	"github.com/ajitpratap0/framex/pkg/observability"
)

// Transform maps a batch of frames to a new batch. Transforms are applied
// sequentially in the order they were added.
type Transform func(ctx context.Context, frames []*frame.Frame) ([]*frame.Frame, error)

// Result summarises one run
type Result struct {
	Frames    int           `json:"frames"`
	RowsIn    int           `json:"rows_in"`
	FieldsIn  int           `json:"fields_in"`
	FieldsOut int           `json:"fields_out"`
	Duration  time.Duration `json:"duration"`
}

// Runner executes one pipeline configuration
type Runner struct {
	config     *config.PipelineConfig
	source     Source
	sink       Sink
	transforms []Transform
	logger     *zap.Logger
	tracer     *observability.StageTracer
}

// NewRunner creates a runner for cfg. Output without a path goes to stdout.
func NewRunner(cfg *config.PipelineConfig, logger *zap.Logger) *Runner {
	return NewRunnerWithOutput(cfg, logger, os.Stdout)
}

// NewRunnerWithOutput creates a runner that writes path-less output to w
func NewRunnerWithOutput(cfg *config.PipelineConfig, logger *zap.Logger, w io.Writer) *Runner {
	logger = logger.With(zap.String("pipeline", cfg.Name))

	r := &Runner{
		config: cfg,
		source: NewSource(cfg.Name, cfg.Input),
		sink:   NewSink(cfg.Output, w),
		logger: logger,
		tracer: observability.NewStageTracer(cfg.Name),
	}

	extractor := extract.NewFieldExtractor(
		extract.WithLogger(logger),
		extract.WithNameDeduplication(cfg.Features.Deduplicate()),
	)
	for _, step := range cfg.Steps {
		r.AddTransform(extract.NewTransformer(step, extractor).Apply)
	}
	return r
}

// AddTransform appends a transform after the configured steps
func (r *Runner) AddTransform(transform Transform) {
	r.transforms = append(r.transforms, transform)
}

// Run loads, transforms and writes the frames. It validates the
// configuration first.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	r.logger.Info("starting pipeline",
		zap.Int("steps", len(r.transforms)),
		zap.String("source", r.source.String()),
		zap.String("sink", r.sink.String()))

	var frames []*frame.Frame
	err := r.stage(ctx, "load", func(ctx context.Context) error {
		var err error
		frames, err = r.source.Load(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.FramesProcessed.WithLabelValues(r.config.Name).Add(float64(len(frames)))
	observability.RecordFrames(ctx, r.config.Name, len(frames))

	result := &Result{Frames: len(frames)}
	for _, f := range frames {
		result.RowsIn += f.Length
		result.FieldsIn += len(f.Fields)
	}

	err = r.stage(ctx, "transform", func(ctx context.Context) error {
		for i, transform := range r.transforms {
			out, err := transform(ctx, frames)
			if err != nil {
				r.logger.Debug("step failed", zap.Int("step", i))
				return err
			}
			frames = out
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, f := range frames {
		result.FieldsOut += len(f.Fields)
	}

	err = r.stage(ctx, "write", func(ctx context.Context) error {
		return r.sink.Write(ctx, frames)
	})
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	r.logger.Info("pipeline completed",
		zap.Int("frames", result.Frames),
		zap.Int("rows", result.RowsIn),
		zap.Int("fields_in", result.FieldsIn),
		zap.Int("fields_out", result.FieldsOut),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	timer := metrics.NewTimer(name)
	err := r.tracer.Trace(ctx, name, fn)
	elapsed := timer.ObserveStage()
	if err != nil {
		r.logger.Error("stage failed", append([]zap.Field{zap.String("stage", name)}, errors.LogFields(err)...)...)
		return err
	}
	r.logger.Debug("stage completed", zap.String("stage", name), zap.Duration("duration", elapsed))
	return nil
}
