// Package metrics provides Prometheus metrics for field extraction and the
// pipelines that run it.
//
// # Overview
//
// The metrics package provides:
//   - Pre-defined collectors registered with the default registry
//   - A Timer for observing stage durations
//   - A text dump of every framex metric for one-shot CLI runs
//
// # Basic Usage
//
//	rec := metrics.NewExtraction("json")
//	for _, row := range rows {
//	    rec.Row(metrics.OutcomeParsed)
//	}
//	rec.Done(len(newFields))
//
//	timer := metrics.NewTimer("transform")
//	runSteps(frames)
//	timer.ObserveStage()
package metrics

import (
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Row outcomes
const (
	OutcomeParsed  = "parsed"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// No-op reasons
const (
	ReasonNoSource      = "no_source"
	ReasonSourceMissing = "source_missing"
)

const namespace = "framex"

var (
	// RowsProcessed counts source rows by extractor and outcome.
	// Labels: format (extractor id), outcome (parsed/skipped/failed)
	//
	// Example:
	//	metrics.RowsProcessed.WithLabelValues("kvp", metrics.OutcomeParsed).Inc()
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_rows_total",
			Help:      "Total number of source rows handled by field extraction",
		},
		[]string{"format", "outcome"},
	)

	// FieldsCreated counts fields added to frames by extraction
	FieldsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_fields_created_total",
			Help:      "Total number of fields created by field extraction",
		},
		[]string{"format"},
	)

	// ExtractionDuration tracks how long one frame takes to extract
	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_duration_seconds",
			Help:      "Time spent extracting fields from one frame",
			Buckets: []float64{
				1e-5, // 10μs - a handful of rows
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms
				1e-1, // 100ms
				1,    // 1s - very large frames
			},
		},
		[]string{"format"},
	)

	// RegexpFallbacks counts regexp extractions that used the default
	// pattern because the configured one was unusable
	RegexpFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_regexp_fallbacks_total",
			Help:      "Regular expressions replaced by the default pattern",
		},
	)

	// NoopExtractions counts extractions that returned the input frame
	// unchanged. Labels: reason (no_source/source_missing)
	NoopExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extract_noop_total",
			Help:      "Extractions that left the frame unchanged",
		},
		[]string{"reason"},
	)

	// FramesProcessed counts frames read by pipeline runs
	FramesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_frames_total",
			Help:      "Total number of frames processed by pipeline runs",
		},
		[]string{"pipeline"},
	)

	// StageDuration tracks pipeline stage durations
	// Labels: stage (load/transform/write)
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Time spent in each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

// Extraction accumulates the metrics of one frame extraction and publishes
// them in bulk
type Extraction struct {
	format string
	start  time.Time
	counts map[string]int
}

// NewExtraction starts recording an extraction with the given extractor id
func NewExtraction(format string) *Extraction {
	return &Extraction{
		format: format,
		start:  time.Now(),
		counts: make(map[string]int, 3),
	}
}

// Row records the outcome of one row
func (e *Extraction) Row(outcome string) {
	e.counts[outcome]++
}

// Count returns how many rows had the outcome so far
func (e *Extraction) Count(outcome string) int {
	return e.counts[outcome]
}

// Done publishes the row counts, the number of created fields and the
// elapsed time
func (e *Extraction) Done(fieldsCreated int) time.Duration {
	for outcome, n := range e.counts {
		RowsProcessed.WithLabelValues(e.format, outcome).Add(float64(n))
	}
	FieldsCreated.WithLabelValues(e.format).Add(float64(fieldsCreated))

	elapsed := time.Since(e.start)
	ExtractionDuration.WithLabelValues(e.format).Observe(elapsed.Seconds())
	return elapsed
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name is used as the stage label by ObserveStage.
//
// Example:
//
//	timer := metrics.NewTimer("load")
//	frames, err := load(ctx)
//	logger.Info("frames loaded", zap.Duration("duration", timer.ObserveStage()))
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Stop returns the elapsed time since the timer was created
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveStage records the elapsed time in StageDuration and returns it
func (t *Timer) ObserveStage() time.Duration {
	d := t.Stop()
	StageDuration.WithLabelValues(t.name).Observe(d.Seconds())
	return d
}

// WriteText writes every framex metric in the Prometheus text format
func WriteText(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
