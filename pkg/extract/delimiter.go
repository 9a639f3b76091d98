package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// DefaultDelimiter separates tokens when no delimiter is configured
const DefaultDelimiter = ","

type delimiterExtractor struct{}

func (delimiterExtractor) ID() ID       { return Delimiter }
func (delimiterExtractor) Name() string { return "Split by delimiter" }
func (delimiterExtractor) Description() string {
	return "Split a value into tokens; each token becomes a field set to 1"
}

func (delimiterExtractor) Parser(opts Options, _ *zap.Logger) ParseFunc {
	delim := opts.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	// the delimiter is literal text, surrounding whitespace is dropped
	splitter := regexp.MustCompile(`\s*` + regexp.QuoteMeta(delim) + `\s*`)

	return func(raw string) (*Record, error) {
		rec := NewRecord()
		for _, token := range splitter.Split(strings.TrimSpace(raw), -1) {
			rec.Set(token, float64(1))
		}
		return rec, nil
	}
}
