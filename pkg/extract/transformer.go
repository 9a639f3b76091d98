package extract

import (
	"context"

	"github.com/ajitpratap0/framex/pkg/frame"
	"github.com/ajitpratap0/framex/pkg/observability"
)

// Transformer applies one extraction to every frame of a batch
type Transformer struct {
	options   Options
	extractor *FieldExtractor
}

// NewTransformer creates a transformer. A nil extractor means a default one.
func NewTransformer(opts Options, extractor *FieldExtractor) *Transformer {
	if extractor == nil {
		extractor = NewFieldExtractor()
	}
	return &Transformer{
		options:   opts,
		extractor: extractor,
	}
}

// Options returns the extraction options
func (t *Transformer) Options() Options {
	return t.options
}

// Apply extracts fields from each frame in order. The first error stops the
// batch.
func (t *Transformer) Apply(ctx context.Context, frames []*frame.Frame) ([]*frame.Frame, error) {
	out := make([]*frame.Frame, len(frames))
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, span := observability.NewSpan(ctx, "extract.frame")
		span.SetAttribute("frame.index", i)
		span.SetAttribute("frame.name", frameName(f))
		span.SetAttribute("extract.source", t.options.Source)
		span.SetAttribute("extract.format", string(t.options.format()))

		result, err := t.extractor.AddExtractedFields(f, t.options)
		if err != nil {
			span.RecordError(err)
			span.End()
			return nil, err
		}
		if result != nil {
			span.SetAttribute("frame.rows", result.Length)
			span.SetAttribute("frame.fields", len(result.Fields))
		}
		span.End()

		out[i] = result
	}
	return out, nil
}
