package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/extract"
)

const pipelineYAML = `
name: nginx
input:
  path: ${FRAMEX_TEST_INPUT}
output:
  path: out.arrow
  compression: zstd
features:
  name_deduplication: true
steps:
  - source: line
    format: json
    jsonPaths:
      - path: request.status
        alias: status
      - path: request.path
    replace: true
    keepTime: true
  - source: status
    format: kvp
observability:
  log_level: ${FRAMEX_TEST_LEVEL:-warn}
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPipeline(t *testing.T) {
	t.Setenv("FRAMEX_TEST_INPUT", "access.json.gz")

	cfg, err := LoadPipeline(writeFile(t, pipelineYAML))
	require.NoError(t, err)

	assert.Equal(t, "nginx", cfg.Name)
	assert.Equal(t, "access.json.gz", cfg.Input.Path)
	assert.Equal(t, "zstd", cfg.Output.Compression)
	assert.True(t, cfg.Features.Deduplicate())
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.EnableMetrics, "defaults survive loading")

	require.Len(t, cfg.Steps, 2)
	assert.Equal(t, extract.Options{
		Source: "line",
		Format: extract.JSON,
		JSONPaths: []extract.JSONPath{
			{Path: "request.status", Alias: "status"},
			{Path: "request.path"},
		},
		Replace:  true,
		KeepTime: true,
	}, cfg.Steps[0])
	assert.Equal(t, extract.KeyValuePairs, cfg.Steps[1].Format)
}

func TestLoad_Errors(t *testing.T) {
	var cfg PipelineConfig

	err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))

	err = Load(writeFile(t, "name: [unclosed"), &cfg)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := NewPipelineConfig("roundtrip")
	cfg.Input.SQL = &SQLConfig{Driver: "sqlite", DSN: ":memory:", Query: "SELECT 1"}
	cfg.Steps = []extract.Options{{Source: "payload", Format: extract.RegExp, RegExp: `(?<id>\d+)`}}

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPipelineConfig_Validate(t *testing.T) {
	valid := func() *PipelineConfig {
		cfg := NewPipelineConfig("p")
		cfg.Input.Path = "in.json"
		cfg.Steps = []extract.Options{{Source: "line"}}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
		errMsg string
	}{
		{"valid", func(*PipelineConfig) {}, ""},
		{"missing name", func(c *PipelineConfig) { c.Name = "" }, "name is required"},
		{"missing input", func(c *PipelineConfig) { c.Input.Path = "" }, "input path or sql is required"},
		{"both inputs", func(c *PipelineConfig) {
			c.Input.SQL = &SQLConfig{Driver: "sqlite", Query: "SELECT 1"}
		}, "either a path or sql"},
		{"sql without query", func(c *PipelineConfig) {
			c.Input.Path = ""
			c.Input.SQL = &SQLConfig{Driver: "sqlite"}
		}, "query is required"},
		{"bad input format", func(c *PipelineConfig) { c.Input.Format = "parquet" }, "invalid input format"},
		{"bad output compression", func(c *PipelineConfig) { c.Output.Compression = "brotli" }, "invalid output compression"},
		{"no steps", func(c *PipelineConfig) { c.Steps = nil }, "at least one step"},
		{"unknown step format", func(c *PipelineConfig) { c.Steps[0].Format = "xml" }, "invalid step"},
		{"bad sample rate", func(c *PipelineConfig) { c.Observability.TracingSampleRate = 2 }, "tracing_sample_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("FRAMEX_TEST_A", "alpha")

	assert.Equal(t, "x alpha y", substituteEnvVars("x ${FRAMEX_TEST_A} y"))
	assert.Equal(t, "fallback", substituteEnvVars("${FRAMEX_TEST_UNSET:-fallback}"))
	assert.Equal(t, "", substituteEnvVars("${FRAMEX_TEST_UNSET}"))
	assert.Equal(t, "alpha/alpha", substituteEnvVars("${FRAMEX_TEST_A}/${FRAMEX_TEST_A}"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}
