package extract

import (
	"bytes"
	"strconv"

	gojson "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/errors"
)

type jsonExtractor struct{}

func (jsonExtractor) ID() ID       { return JSON }
func (jsonExtractor) Name() string { return "JSON" }
func (jsonExtractor) Description() string {
	return "Parse JSON objects; top level keys become fields"
}

func (jsonExtractor) Parser(Options, *zap.Logger) ParseFunc {
	return parseJSON
}

// parseJSON decodes one JSON document. Objects keep their key order, arrays
// are keyed by index, null yields no result and other scalars yield an empty
// record.
func parseJSON(raw string) (*Record, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, errors.New(errors.ErrorTypeData, "empty JSON document")
	}

	switch data[0] {
	case '{':
		om := orderedmap.New[string, any]()
		if err := gojson.Unmarshal(data, om); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON object")
		}
		rec := NewRecord()
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			rec.Set(pair.Key, pair.Value)
		}
		return rec, nil

	case '[':
		var items []any
		if err := gojson.Unmarshal(data, &items); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON array")
		}
		rec := NewRecord()
		for i, item := range items {
			rec.Set(strconv.Itoa(i), item)
		}
		rec.root = items
		return rec, nil
	}

	var v any
	if err := gojson.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid JSON value")
	}
	if v == nil {
		return nil, nil
	}
	return NewRecord(), nil
}
