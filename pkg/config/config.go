package config

import (
	"github.com/ajitpratap0/framex/pkg/compression"
	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/extract"
	"github.com/ajitpratap0/framex/pkg/frame"
)

// PipelineConfig describes one extraction pipeline: where frames come from,
// the extraction steps applied in order, and where the result goes.
type PipelineConfig struct {
	// Name identifies the pipeline in logs, metrics and spans
	Name string `yaml:"name" json:"name"`

	// Input selects a frame file or an SQL query
	Input InputConfig `yaml:"input" json:"input"`

	// Output selects the result file; an empty path means stdout as JSON
	Output OutputConfig `yaml:"output" json:"output"`

	// Features toggles optional behaviour of the extraction engine
	Features FeaturesConfig `yaml:"features" json:"features"`

	// Steps are applied in order, each to the output of the previous one
	Steps []extract.Options `yaml:"steps" json:"steps"`

	// Observability settings for logging, metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// InputConfig locates the input frames
type InputConfig struct {
	Path        string     `yaml:"path,omitempty" json:"path,omitempty"`
	Format      string     `yaml:"format,omitempty" json:"format,omitempty"`
	Compression string     `yaml:"compression,omitempty" json:"compression,omitempty"`
	SQL         *SQLConfig `yaml:"sql,omitempty" json:"sql,omitempty"`
}

// SQLConfig reads a single frame from a database query
type SQLConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
	Query  string `yaml:"query" json:"query"`
}

// OutputConfig locates the output file
type OutputConfig struct {
	Path        string `yaml:"path,omitempty" json:"path,omitempty"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty"`
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	// NameDeduplication renames extracted fields that clash with existing ones
	NameDeduplication bool `yaml:"name_deduplication" json:"name_deduplication"`
}

// ObservabilityConfig contains logging, metrics and tracing settings
type ObservabilityConfig struct {
	LogLevel          string  `yaml:"log_level" json:"log_level"`
	EnableMetrics     bool    `yaml:"enable_metrics" json:"enable_metrics"`
	EnableTracing     bool    `yaml:"enable_tracing" json:"enable_tracing"`
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// NewPipelineConfig returns a pipeline configuration with defaults
func NewPipelineConfig(name string) *PipelineConfig {
	return &PipelineConfig{
		Name: name,
		Observability: ObservabilityConfig{
			LogLevel:          "info",
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingSampleRate: 1.0,
		},
	}
}

// Validate checks that the configuration can be run
func (pc *PipelineConfig) Validate() error {
	if pc.Name == "" {
		return errors.New(errors.ErrorTypeConfig, "name is required")
	}

	if err := pc.Input.validate(); err != nil {
		return err
	}
	if err := validateFile("output", pc.Output.Format, pc.Output.Compression); err != nil {
		return err
	}

	if len(pc.Steps) == 0 {
		return errors.New(errors.ErrorTypeConfig, "at least one step is required")
	}
	for i, step := range pc.Steps {
		if _, err := extract.Get(step.Format); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid step").
				WithDetail("step", i)
		}
	}

	if rate := pc.Observability.TracingSampleRate; rate < 0 || rate > 1 {
		return errors.Newf(errors.ErrorTypeConfig, "tracing_sample_rate must be between 0 and 1, got %v", rate)
	}
	return nil
}

func (in *InputConfig) validate() error {
	switch {
	case in.Path != "" && in.SQL != nil:
		return errors.New(errors.ErrorTypeConfig, "input takes either a path or sql, not both")
	case in.SQL != nil:
		if in.SQL.Driver == "" {
			return errors.New(errors.ErrorTypeConfig, "input sql driver is required")
		}
		if in.SQL.Query == "" {
			return errors.New(errors.ErrorTypeConfig, "input sql query is required")
		}
		return nil
	case in.Path != "":
		return validateFile("input", in.Format, in.Compression)
	}
	return errors.New(errors.ErrorTypeConfig, "input path or sql is required")
}

func validateFile(side, format, alg string) error {
	if format != "" {
		if _, err := frame.ParseFormat(format); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid "+side+" format")
		}
	}
	if alg != "" {
		if _, err := compression.Parse(alg); err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "invalid "+side+" compression")
		}
	}
	return nil
}

// Deduplicate reports whether extracted field names are deduplicated
func (f *FeaturesConfig) Deduplicate() bool {
	return f.NameDeduplication
}
