package extract

// JSONPath selects one value out of a parsed JSON row. The result is stored
// under Alias, or under Path when no alias is set.
type JSONPath struct {
	Path  string `json:"path" yaml:"path"`
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// key returns the output key for the path
func (p JSONPath) key() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Path
}

// Options configures one extraction
type Options struct {
	// Source names the field whose values are parsed
	Source string `json:"source" yaml:"source"`
	// Format selects the extractor; empty means auto
	Format ID `json:"format,omitempty" yaml:"format,omitempty"`
	// JSONPaths filters JSON results down to the listed paths
	JSONPaths []JSONPath `json:"jsonPaths,omitempty" yaml:"jsonPaths,omitempty"`
	// RegExp is the pattern used by the regexp extractor, optionally
	// written as /pattern/flags
	RegExp string `json:"regExp,omitempty" yaml:"regExp,omitempty"`
	// Delimiter separates tokens for the delimiter extractor; default ","
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	// Replace drops the original fields from the output
	Replace bool `json:"replace,omitempty" yaml:"replace,omitempty"`
	// KeepTime keeps the time field first in the output
	KeepTime bool `json:"keepTime,omitempty" yaml:"keepTime,omitempty"`
}

func (o Options) format() ID {
	if o.Format == "" {
		return Auto
	}
	return o.Format
}
