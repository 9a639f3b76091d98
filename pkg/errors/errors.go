// Package errors provides structured error handling for framex. Errors carry
// a type that decides the CLI exit code, key/value details that end up as
// log fields, and the stack of the place they were first created.
package errors

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"

	"go.uber.org/zap"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents malformed input such as a frame whose
	// fields disagree on length
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfig represents configuration errors, e.g. an unknown extractor
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents data encoding and decoding errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeQuery represents query execution errors
	ErrorTypeQuery ErrorType = "query"
)

// exitCodes maps error types to process exit codes; unlisted types exit 1
var exitCodes = map[ErrorType]int{
	ErrorTypeConfig:     2,
	ErrorTypeValidation: 2,
	ErrorTypeFile:       3,
	ErrorTypeQuery:      3,
	ErrorTypeData:       4,
}

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Format prints the message for %s and %v. %+v adds the details of the
// whole chain and the origin stack.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, e.Error())
			details := Details(e)
			for _, k := range sortedKeys(details) {
				fmt.Fprintf(s, "\n  %s=%v", k, details[k])
			}
			for _, frame := range e.Stack {
				fmt.Fprintf(s, "\n%s", frame)
			}
			return
		}
		io.WriteString(s, e.Error())
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context. The stack of a
// wrapped framex error is kept so it still points at the origin.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// TypeOf returns the type of the outermost framex error in err's chain, or
// an empty type when there is none
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Type
}

// ExitCode returns the process exit code for err: 0 for nil, 2 for
// configuration and validation errors, 3 for file and query errors, 4 for
// data errors and 1 otherwise
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := exitCodes[TypeOf(err)]; ok {
		return code
	}
	return 1
}

// Details merges the details of every framex error in err's chain. Outer
// errors win when a key repeats.
func Details(err error) map[string]interface{} {
	var chain []*Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			chain = append(chain, e)
		}
		err = errors.Unwrap(err)
	}

	merged := make(map[string]interface{})
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Details {
			merged[k] = v
		}
	}
	return merged
}

// LogFields returns zap fields describing err: the error itself, its type,
// the merged details and the origin location
func LogFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	var e *Error
	if !errors.As(err, &e) {
		return fields
	}
	fields = append(fields, zap.String("error_type", string(e.Type)))
	if details := Details(err); len(details) > 0 {
		fields = append(fields, zap.Any("error_details", details))
	}
	if len(e.Stack) > 0 {
		origin := e.Stack[0]
		fields = append(fields, zap.String("error_origin", fmt.Sprintf("%s:%d", origin.File, origin.Line)))
	}
	return fields
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
