package frame

import (
	"bytes"
	"io"
	"math"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/framex/pkg/errors"
)

// UnmarshalJSON decodes a frame, derives Length and converts time values
// written either as RFC3339 strings or as epoch milliseconds
func (f *Frame) UnmarshalJSON(data []byte) error {
	type plain Frame
	var decoded plain
	if err := gojson.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*f = Frame(decoded)
	for _, field := range f.Fields {
		if field == nil {
			continue
		}
		if field.Values == nil {
			field.Values = []any{}
		}
		if field.Type == "" {
			field.Type = InferFieldType(field.Values)
		}
		if field.Type == FieldTypeTime {
			if err := normalizeTimes(field); err != nil {
				return err
			}
		}
	}
	if len(f.Fields) > 0 && f.Fields[0] != nil {
		f.Length = f.Fields[0].Len()
	}
	return nil
}

func normalizeTimes(field *Field) error {
	for i, v := range field.Values {
		switch t := v.(type) {
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeData, "invalid time value").
					WithDetail("field", field.Name).
					WithDetail("row", i)
			}
			field.Values[i] = parsed
		case float64:
			sec, frac := math.Modf(t / 1000)
			field.Values[i] = time.Unix(int64(sec), int64(frac*1e9)).UTC()
		}
	}
	return nil
}

// DecodeJSON decodes either a single frame object or an array of frames
func DecodeJSON(data []byte) ([]*Frame, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrorTypeData, "empty frame document")
	}

	if trimmed[0] == '[' {
		var frames []*Frame
		if err := gojson.Unmarshal(trimmed, &frames); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode frames")
		}
		return frames, nil
	}

	f := &Frame{}
	if err := gojson.Unmarshal(trimmed, f); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode frame")
	}
	return []*Frame{f}, nil
}

// ReadJSON reads all frames from r
func ReadJSON(r io.Reader) ([]*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read frame document")
	}
	return DecodeJSON(data)
}

// WriteJSON writes a single frame as an object and several frames as an array
func WriteJSON(w io.Writer, frames []*Frame, indent bool) error {
	var doc any = frames
	if len(frames) == 1 {
		doc = frames[0]
	}

	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to encode frames")
	}
	return nil
}
