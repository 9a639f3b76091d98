package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/framex/pkg/extract"
	"github.com/ajitpratap0/framex/pkg/frame"
	"github.com/ajitpratap0/framex/pkg/testutil"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, stdin, args...)
	return out, err
}

func executeWithStderr(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestParsePaths(t *testing.T) {
	got := parsePaths([]string{
		"status",
		"user.id=user",
		"$.items[?(@.kind=='a')]",
		"tags[0]=first tag",
	})
	assert.Equal(t, []extract.JSONPath{
		{Path: "status"},
		{Path: "user.id", Alias: "user"},
		{Path: "$.items[?(@.kind=='a')]"},
		{Path: "tags[0]", Alias: "first tag"},
	}, got)
}

func TestExtractorsCmd(t *testing.T) {
	out, err := execute(t, "", "extractors")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[1], "json"))
	assert.True(t, strings.HasPrefix(lines[5], "auto"))
}

func TestParseCmd(t *testing.T) {
	out, err := execute(t, "", "parse", "--format", "kvp", `a=1 b="x y"`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "1", "b": "x y"}`, out)

	out, err = execute(t, `{"user": {"id": 7}}`+"\n", "parse", "-f", "json", "-p", "user.id=id", "-p", "missing")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 7, "missing": "Not Found"}`, out)

	out, err = execute(t, "", "parse", "-f", "regexp", "--regexp", `/(?<word>\w+) end/`, "no match here")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	_, err = execute(t, "", "parse", "-f", "xml", "x")
	assert.Error(t, err)
}

func TestExtractCmd(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFrameFile(t, dir, "logs.csv", testutil.NewFrame("logs",
		testutil.StringField("line", "level=info took=3", "level=error"),
	))

	out, err := execute(t, "", "extract", "-i", in, "-s", "line", "-f", "kvp", "--replace")
	require.NoError(t, err)

	frames, err := frame.DecodeJSON([]byte(out))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, "logs", frames[0].Name)
	assert.Equal(t, []string{"level", "took"}, frames[0].FieldNames())
	assert.Equal(t, []any{"info", "error"}, frames[0].Fields[0].Values)
}

func TestExtractCmd_OutputFile(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFrameFile(t, dir, "logs.json", testutil.NewFrame("logs",
		testutil.StringField("line", "1, 2", "2"),
	))
	outPath := filepath.Join(dir, "out.avro.gz")

	out, err := execute(t, "", "extract", "-i", in, "-s", "line", "-f", "delimiter", "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	frames := testutil.ReadFrameFile(t, outPath)
	require.Len(t, frames, 1)
	assert.Equal(t, []string{"line", "1", "2"}, frames[0].FieldNames())
	assert.Equal(t, []any{1.0, nil}, frames[0].Fields[1].Values)
	assert.Equal(t, []any{1.0, 1.0}, frames[0].Fields[2].Values)
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFrameFile(t, dir, "events.json", testutil.NewFrame("events",
		testutil.StringField("raw", `{"a": {"b": "deep"}}`),
	))

	cfgPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
name: events
input:
  path: ${FRAMEX_TEST_INPUT}
steps:
  - source: raw
    format: json
    jsonPaths:
      - path: a.b
        alias: b
observability:
  log_level: error
  enable_metrics: false
`), 0o644))
	t.Setenv("FRAMEX_TEST_INPUT", in)

	out, err := execute(t, "", "run", "--config", cfgPath)
	require.NoError(t, err)

	frames, err := frame.DecodeJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"raw", "b"}, frames[0].FieldNames())
	assert.Equal(t, []any{"deep"}, frames[0].Fields[1].Values)
}

func TestRunCmd_MissingConfig(t *testing.T) {
	_, err := execute(t, "", "run", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestExtractCmd_TraceMetrics(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WriteFrameFile(t, dir, "logs.json", testutil.NewFrame("logs",
		testutil.StringField("line", "a=1"),
	))

	_, stderr, err := executeWithStderr(t, "", "--trace", "--metrics", "--log-level", "error",
		"extract", "-i", in, "-s", "line")
	require.NoError(t, err)

	assert.Contains(t, stderr, "framex.frames")
	assert.Contains(t, stderr, "framex.operation.duration")
	assert.Contains(t, stderr, "framex_extract_rows_total")
}
