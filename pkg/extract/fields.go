package extract

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/frame"
	"github.com/ajitpratap0/framex/pkg/logger"
	"github.com/ajitpratap0/framex/pkg/metrics"
)

// FieldExtractor adds extracted fields to frames
type FieldExtractor struct {
	logger *zap.Logger
	dedupe bool
}

// Option configures a FieldExtractor
type Option func(*FieldExtractor)

// WithLogger sets the logger used for warnings and row diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(e *FieldExtractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNameDeduplication renames new fields that clash with a field of the
// input frame to "name 2", "name 3" and so on
func WithNameDeduplication(enabled bool) Option {
	return func(e *FieldExtractor) {
		e.dedupe = enabled
	}
}

// NewFieldExtractor creates a field extractor
func NewFieldExtractor(opts ...Option) *FieldExtractor {
	e := &FieldExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.With(zap.String("component", "extract"))
	}
	return e
}

// AddExtractedFields parses the source field of f and returns a new frame
// holding the extracted fields. The input frame is never modified.
//
// The new fields follow the order in which their keys were first seen, and
// each holds exactly f.Length values with nil where a row lacked the key.
// With opts.KeepTime the time field heads the added fields. Unless
// opts.Replace is set the original fields come before them.
//
// A missing or unset source returns f itself. A row that fails to parse
// contributes no values and does not fail the extraction. Only an unknown
// format is an error.
func (e *FieldExtractor) AddExtractedFields(f *frame.Frame, opts Options) (*frame.Frame, error) {
	if opts.Source == "" {
		metrics.NoopExtractions.WithLabelValues(metrics.ReasonNoSource).Inc()
		return f, nil
	}

	source := frame.FindField(f, opts.Source)
	if source == nil {
		e.logger.Debug("source field not found, frame left unchanged",
			zap.String("source", opts.Source),
			zap.String("frame", frameName(f)))
		metrics.NoopExtractions.WithLabelValues(metrics.ReasonSourceMissing).Inc()
		return f, nil
	}

	ext, err := Get(opts.format())
	if err != nil {
		return nil, err
	}
	parse := ext.Parser(opts, e.logger)
	usePaths := ext.ID() == JSON && len(opts.JSONPaths) > 0

	rec := metrics.NewExtraction(string(ext.ID()))
	acc := newAccumulator(f.Length)

	for row := 0; row < f.Length; row++ {
		obj := e.rowRecord(parse, source.At(row), row, rec)
		if obj == nil {
			continue
		}
		if usePaths {
			obj = ApplyJSONPaths(obj, opts.JSONPaths)
		}
		for _, key := range obj.Keys() {
			v, _ := obj.Get(key)
			acc.set(key, row, v)
		}
	}

	newFields := acc.fields()
	if e.dedupe {
		for _, field := range newFields {
			field.Name = frame.UniqueFieldName(field, f)
		}
	}

	added := newFields
	if opts.KeepTime {
		if timeField := frame.FindTimeField(f); timeField != nil {
			added = append([]*frame.Field{timeField}, newFields...)
		}
	}

	fields := make([]*frame.Field, 0, len(f.Fields)+len(added))
	if !opts.Replace {
		fields = append(fields, f.Fields...)
	}
	fields = append(fields, added...)

	elapsed := rec.Done(len(newFields))
	e.logger.Debug("fields extracted",
		zap.String("frame", frameName(f)),
		zap.String("source", opts.Source),
		zap.String("format", string(ext.ID())),
		zap.Int("rows", f.Length),
		zap.Int("failed_rows", rec.Count(metrics.OutcomeFailed)),
		zap.Int("new_fields", len(newFields)),
		zap.Duration("duration", elapsed))

	return f.WithFields(fields), nil
}

// rowRecord turns one source value into a record. Strings are parsed, maps
// and records are used as they are, and any other non-nil value yields an
// empty record. nil means the row contributes nothing.
func (e *FieldExtractor) rowRecord(parse ParseFunc, value any, row int, rec *metrics.Extraction) *Record {
	switch v := value.(type) {
	case nil:
		rec.Row(metrics.OutcomeSkipped)
		return nil
	case string:
		obj, err := parse(v)
		if err != nil {
			e.logger.Debug("row could not be parsed",
				append([]zap.Field{zap.Int("row", row)}, errors.LogFields(err)...)...)
			rec.Row(metrics.OutcomeFailed)
			return NewRecord()
		}
		if obj == nil {
			rec.Row(metrics.OutcomeSkipped)
			return nil
		}
		rec.Row(metrics.OutcomeParsed)
		return obj
	case *Record:
		rec.Row(metrics.OutcomeParsed)
		return v
	case map[string]any:
		rec.Row(metrics.OutcomeParsed)
		return RecordFromMap(v)
	default:
		rec.Row(metrics.OutcomeParsed)
		return NewRecord()
	}
}

// AddExtractedFields runs a default FieldExtractor
func AddExtractedFields(f *frame.Frame, opts Options) (*frame.Frame, error) {
	return NewFieldExtractor().AddExtractedFields(f, opts)
}

// accumulator collects per-key value columns for a fixed number of rows
type accumulator struct {
	length int
	names  []string
	values map[string][]any
}

func newAccumulator(length int) *accumulator {
	return &accumulator{
		length: length,
		values: make(map[string][]any),
	}
}

func (a *accumulator) set(key string, row int, v any) {
	column, ok := a.values[key]
	if !ok {
		column = make([]any, a.length)
		a.values[key] = column
		a.names = append(a.names, key)
	}
	column[row] = v
}

func (a *accumulator) fields() []*frame.Field {
	fields := make([]*frame.Field, len(a.names))
	for i, name := range a.names {
		column := a.values[name]
		fields[i] = frame.NewField(name, frame.InferFieldType(column), column)
	}
	return fields
}

func frameName(f *frame.Frame) string {
	if f == nil {
		return ""
	}
	return f.Name
}
