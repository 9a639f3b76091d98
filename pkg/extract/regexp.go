package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/metrics"
)

// DefaultRegExp captures the whole value into a field named NewField
const DefaultRegExp = `(?<NewField>.*)`

var (
	defaultRegexp = regexp.MustCompile(DefaultRegExp)
	literalRegexp = regexp.MustCompile(`^/(.*)/([gimsuy]*)$`)
)

type regexpExtractor struct{}

func (regexpExtractor) ID() ID       { return RegExp }
func (regexpExtractor) Name() string { return "RegExp" }
func (regexpExtractor) Description() string {
	return "Extract named capture groups of a regular expression"
}

func (regexpExtractor) Parser(opts Options, log *zap.Logger) ParseFunc {
	re := defaultRegexp
	if opts.RegExp != "" {
		compiled, err := CompileRegExp(opts.RegExp)
		if err != nil {
			log.Warn("falling back to default regular expression",
				zap.String("pattern", opts.RegExp),
				zap.String("default", DefaultRegExp),
				zap.Error(err))
			metrics.RegexpFallbacks.Inc()
		} else {
			re = compiled
		}
	}
	return regexpParser(re)
}

// CompileRegExp compiles a pattern written either plainly or as
// /pattern/flags. The flags i, m and s are honoured; g, u and y do not
// change matching of a single value and are ignored. The pattern must have
// at least one named group.
func CompileRegExp(expr string) (*regexp.Regexp, error) {
	pattern := expr
	if m := literalRegexp.FindStringSubmatch(expr); m != nil {
		pattern = m[1]
		var flags strings.Builder
		for _, f := range "ims" {
			if strings.ContainsRune(m[2], f) {
				flags.WriteRune(f)
			}
		}
		if flags.Len() > 0 {
			pattern = "(?" + flags.String() + ")" + pattern
		}
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid regular expression").
			WithDetail("pattern", expr)
	}
	for _, name := range re.SubexpNames() {
		if name != "" {
			return re, nil
		}
	}
	return nil, errors.New(errors.ErrorTypeConfig, "regular expression has no named groups").
		WithDetail("pattern", expr)
}

func regexpParser(re *regexp.Regexp) ParseFunc {
	names := re.SubexpNames()
	return func(raw string) (*Record, error) {
		loc := re.FindStringSubmatchIndex(raw)
		if loc == nil {
			return nil, nil
		}
		rec := NewRecord()
		for i, name := range names {
			if name == "" {
				continue
			}
			start, end := loc[2*i], loc[2*i+1]
			if start < 0 {
				rec.Set(name, nil)
				continue
			}
			rec.Set(name, raw[start:end])
		}
		return rec, nil
	}
}
