// Package testutil provides testing utilities for framex
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/framex/pkg/frame"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// NewFrame builds a frame from fields. It panics when the fields do not
// share one length, so broken fixtures fail loudly.
func NewFrame(name string, fields ...*frame.Field) *frame.Frame {
	f := frame.New(name, fields...)
	if err := f.Validate(); err != nil {
		panic(err)
	}
	return f
}

// StringField builds a string field. Pass nil for a missing value.
func StringField(name string, values ...any) *frame.Field {
	return frame.NewField(name, frame.FieldTypeString, values)
}

// NumberField builds a number field. Pass nil for a missing value.
func NumberField(name string, values ...any) *frame.Field {
	return frame.NewField(name, frame.FieldTypeNumber, values)
}

// TimeField builds a time field with one value per timestamp
func TimeField(name string, times ...time.Time) *frame.Field {
	values := make([]any, len(times))
	for i, ts := range times {
		values[i] = ts
	}
	return frame.NewField(name, frame.FieldTypeTime, values)
}

// Column returns the values of the named field, failing the test when the
// field does not exist
func Column(t *testing.T, f *frame.Frame, name string) []any {
	t.Helper()
	field := frame.FindField(f, name)
	if field == nil {
		t.Fatalf("field %q not found in %v", name, f.FieldNames())
	}
	return field.Values
}

// RequireNoError fails the test immediately if err is not nil.
// The msg parameter provides additional context in the failure message.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}
