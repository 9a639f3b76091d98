package frame

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/ajitpratap0/framex/pkg/errors"
)

// ReadCSV reads a CSV document with a header row. Column types are inferred
// from the first non-empty cell; empty cells become nil.
func ReadCSV(r io.Reader, name string) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return New(name), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read csv header")
	}

	columns := make([][]string, len(header))
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read csv row")
		}
		for i := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			columns[i] = append(columns[i], cell)
		}
	}

	fields := make([]*Field, len(header))
	for i, colName := range header {
		fields[i] = csvField(colName, columns[i])
	}

	f := New(name, fields...)
	return f, nil
}

func csvField(name string, cells []string) *Field {
	fieldType := FieldTypeString
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if _, err := time.Parse(time.RFC3339Nano, cell); err == nil {
			fieldType = FieldTypeTime
		} else {
			fieldType = InferType(cell)
		}
		break
	}

	values := make([]any, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		values[i] = cell
		switch fieldType {
		case FieldTypeNumber:
			if n, ok := AsFloat(cell); ok {
				values[i] = n
			}
		case FieldTypeBoolean:
			if b, ok := AsBool(cell); ok {
				values[i] = b
			}
		case FieldTypeTime:
			if t, err := time.Parse(time.RFC3339Nano, cell); err == nil {
				values[i] = t
			}
		}
	}
	return NewField(name, fieldType, values)
}

// WriteCSV writes the frame with a header row. Nil values are written as
// empty cells.
func WriteCSV(w io.Writer, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(f.FieldNames()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to write csv header")
	}

	row := make([]string, len(f.Fields))
	for i := 0; i < f.Length; i++ {
		for j, field := range f.Fields {
			v := field.Values[i]
			if v == nil {
				row[j] = ""
				continue
			}
			row[j] = AsString(v)
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to write csv row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to flush csv")
	}
	return nil
}
