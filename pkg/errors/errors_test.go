package errors

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_KeepsOriginStack(t *testing.T) {
	inner := New(ErrorTypeConfig, "unknown extractor").WithDetail("format", "xml")
	outer := Wrap(inner, ErrorTypeConfig, "invalid step").WithDetail("step", 1)

	require.NotEmpty(t, inner.Stack)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Contains(t, inner.Stack[0].Function, "TestWrap_KeepsOriginStack")
	assert.Nil(t, Wrap(nil, ErrorTypeData, "nothing"))
}

func TestDetails_MergesChain(t *testing.T) {
	inner := Wrap(io.EOF, ErrorTypeFile, "failed to open input").
		WithDetail("path", "in.json").
		WithDetail("step", 0)
	outer := fmt.Errorf("pipeline %q failed: %w",
		"logs", Wrap(inner, ErrorTypeData, "load").WithDetail("step", 2))

	assert.Equal(t, map[string]interface{}{"path": "in.json", "step": 2}, Details(outer))
	assert.Empty(t, Details(io.EOF))
}

func TestTypeOfAndExitCode(t *testing.T) {
	tests := []struct {
		err  error
		typ  ErrorType
		code int
	}{
		{nil, "", 0},
		{io.EOF, "", 1},
		{New(ErrorTypeConfig, "x"), ErrorTypeConfig, 2},
		{New(ErrorTypeValidation, "x"), ErrorTypeValidation, 2},
		{fmt.Errorf("wrapped: %w", New(ErrorTypeFile, "x")), ErrorTypeFile, 3},
		{New(ErrorTypeQuery, "x"), ErrorTypeQuery, 3},
		{New(ErrorTypeData, "x"), ErrorTypeData, 4},
		{New(ErrorTypeInternal, "x"), ErrorTypeInternal, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.typ, TypeOf(tt.err), "%v", tt.err)
		assert.Equal(t, tt.code, ExitCode(tt.err), "%v", tt.err)
	}
	assert.True(t, IsType(New(ErrorTypeData, "x"), ErrorTypeData))
	assert.False(t, IsType(io.EOF, ErrorTypeData))
}

func TestFormat(t *testing.T) {
	err := Newf(ErrorTypeData, "bad row %d", 3).WithDetail("field", "line")

	assert.Equal(t, "data: bad row 3", fmt.Sprintf("%v", err))
	assert.Equal(t, "data: bad row 3", fmt.Sprintf("%s", err))

	verbose := fmt.Sprintf("%+v", err)
	assert.True(t, strings.HasPrefix(verbose, "data: bad row 3\n  field=line\n"))
	assert.Contains(t, verbose, "errors_test.go")
}

func TestLogFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeData, "failed to decode frame").WithDetail("path", "a.arrow")
	logger.Error("stage failed", LogFields(err)...)
	logger.Error("plain", LogFields(io.EOF)...)

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "data", fields["error_type"])
	assert.Equal(t, map[string]interface{}{"path": "a.arrow"}, fields["error_details"])
	assert.Contains(t, fields["error_origin"], "errors_test.go")
	assert.Equal(t, "data: failed to decode frame: unexpected EOF", fields["error"])

	plain := entries[1].ContextMap()
	assert.Equal(t, "EOF", plain["error"])
	assert.NotContains(t, plain, "error_type")
}
