// Package extract turns a text (or object) field of a frame into new typed
// fields. Each row of the source field is parsed by an Extractor into a
// Record; the union of all record keys becomes the set of new fields.
//
// # Extractors
//
//   - json: JSON objects, arrays are keyed by index
//   - kvp: free-form key=value or key:value text
//   - delimiter: token lists, each token becomes a field set to 1
//   - regexp: named capture groups of a regular expression
//   - auto: json, kvp, delimiter and regexp in turn, first result wins
//
// # Basic Usage
//
//	out, err := extract.AddExtractedFields(f, extract.Options{
//	    Source: "line",
//	    Format: extract.JSON,
//	    JSONPaths: []extract.JSONPath{{Path: "user.id", Alias: "user"}},
//	})
package extract

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/errors"
)

// ID identifies an extractor
type ID string

const (
	JSON          ID = "json"
	KeyValuePairs ID = "kvp"
	Delimiter     ID = "delimiter"
	RegExp        ID = "regexp"
	Auto          ID = "auto"
)

// ParseFunc parses one raw row. A nil record with a nil error means the row
// produced nothing.
type ParseFunc func(raw string) (*Record, error)

// Extractor builds parse functions for one input format
type Extractor interface {
	ID() ID
	Name() string
	Description() string
	// Parser returns the parse function for opts. It is called once per
	// extraction, not per row.
	Parser(opts Options, log *zap.Logger) ParseFunc
}

// Info describes an extractor for listings
type Info struct {
	ID          ID     `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

var catalogue = []Extractor{
	jsonExtractor{},
	keyValueExtractor{},
	delimiterExtractor{},
	regexpExtractor{},
	autoExtractor{},
}

// Get returns the extractor for id. An empty id selects auto.
func Get(id ID) (Extractor, error) {
	switch id {
	case JSON:
		return jsonExtractor{}, nil
	case KeyValuePairs:
		return keyValueExtractor{}, nil
	case Delimiter:
		return delimiterExtractor{}, nil
	case RegExp:
		return regexpExtractor{}, nil
	case Auto, "":
		return autoExtractor{}, nil
	}
	return nil, errors.Newf(errors.ErrorTypeConfig, "unknown extractor %q", string(id)).
		WithDetail("format", string(id))
}

// List describes every extractor in display order
func List() []Info {
	infos := make([]Info, len(catalogue))
	for i, ext := range catalogue {
		infos[i] = Info{ID: ext.ID(), Name: ext.Name(), Description: ext.Description()}
	}
	return infos
}

// Parse runs a single extractor over one raw value
func Parse(id ID, raw string, opts Options) (*Record, error) {
	ext, err := Get(id)
	if err != nil {
		return nil, err
	}
	return ext.Parser(opts, zap.NewNop())(raw)
}

type keyValueExtractor struct{}

func (keyValueExtractor) ID() ID       { return KeyValuePairs }
func (keyValueExtractor) Name() string { return "Key+value pairs" }
func (keyValueExtractor) Description() string {
	return "Parse key=value or key:value pairs separated by whitespace or punctuation"
}

func (keyValueExtractor) Parser(Options, *zap.Logger) ParseFunc {
	return func(raw string) (*Record, error) {
		return ParseKeyValuePairs(raw), nil
	}
}
