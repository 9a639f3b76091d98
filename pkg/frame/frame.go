// Package frame provides the columnar table representation that extraction
// runs over. A Frame is an ordered list of Fields sharing one row count; a
// missing cell is represented by a nil value, never by a shorter slice.
//
// Frames are treated as immutable by the transformation packages: every
// transformation allocates a new Frame and new field slices, while unchanged
// fields may be shared between the input and output frames.
//
// Example:
//
//	f := frame.New("logs",
//	    frame.NewField("Time", frame.FieldTypeTime, times),
//	    frame.NewField("line", frame.FieldTypeString, lines),
//	)
//	if err := f.Validate(); err != nil {
//	    return err
//	}
package frame

import (
	"github.com/ajitpratap0/framex/pkg/errors"
)

// FieldType represents the value type of a field
type FieldType string

const (
	FieldTypeNumber  FieldType = "number"
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeTime    FieldType = "time"
	FieldTypeOther   FieldType = "other"
)

// Valid reports whether t is one of the known field types
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeNumber, FieldTypeString, FieldTypeBoolean, FieldTypeTime, FieldTypeOther:
		return true
	}
	return false
}

// Field is one named, typed column of a frame
type Field struct {
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	Values []any     `json:"values"`
}

// NewField creates a field. A nil values slice is treated as empty.
func NewField(name string, fieldType FieldType, values []any) *Field {
	if values == nil {
		values = []any{}
	}
	return &Field{
		Name:   name,
		Type:   fieldType,
		Values: values,
	}
}

// Len returns the number of values in the field
func (f *Field) Len() int {
	return len(f.Values)
}

// At returns the value at row i, or nil when i is out of range
func (f *Field) At(i int) any {
	if i < 0 || i >= len(f.Values) {
		return nil
	}
	return f.Values[i]
}

// Frame is an ordered set of fields with a common length
type Frame struct {
	Name   string   `json:"name,omitempty"`
	Fields []*Field `json:"fields"`
	Length int      `json:"-"`
}

// New creates a frame whose length is taken from the first field
func New(name string, fields ...*Field) *Frame {
	f := &Frame{
		Name:   name,
		Fields: fields,
	}
	if len(fields) > 0 {
		f.Length = fields[0].Len()
	}
	return f
}

// Validate checks that every field has a known type and exactly Length
// values. Empty field names are allowed.
func (f *Frame) Validate() error {
	for i, field := range f.Fields {
		if field == nil {
			return errors.Newf(errors.ErrorTypeValidation, "field %d is nil", i)
		}
		if !field.Type.Valid() {
			return errors.Newf(errors.ErrorTypeValidation, "field %q has unknown type %q", field.Name, field.Type)
		}
		if field.Len() != f.Length {
			return errors.Newf(errors.ErrorTypeValidation, "field %q has %d values, frame has %d", field.Name, field.Len(), f.Length).
				WithDetail("field", field.Name)
		}
	}
	return nil
}

// FieldNames returns the field names in order
func (f *Frame) FieldNames() []string {
	names := make([]string, len(f.Fields))
	for i, field := range f.Fields {
		names[i] = field.Name
	}
	return names
}

// WithFields returns a shallow copy of the frame carrying the given fields.
// The receiver is not modified.
func (f *Frame) WithFields(fields []*Field) *Frame {
	return &Frame{
		Name:   f.Name,
		Fields: fields,
		Length: f.Length,
	}
}

// FindField returns the first field whose name matches exactly, or nil
func FindField(f *Frame, name string) *Field {
	if f == nil {
		return nil
	}
	for _, field := range f.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// FindTimeField returns the field named "Time", falling back to "time"
func FindTimeField(f *Frame) *Field {
	if field := FindField(f, "Time"); field != nil {
		return field
	}
	return FindField(f, "time")
}
