package frame

import (
	"bytes"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	gojson "github.com/goccy/go-json"

	"github.com/ajitpratap0/framex/pkg/errors"
)

const (
	arrowTypeKey  = "framex.type"
	arrowFrameKey = "framex.name"
)

// arrowType maps a field type to its Arrow storage type
func arrowType(t FieldType) arrow.DataType {
	switch t {
	case FieldTypeNumber:
		return arrow.PrimitiveTypes.Float64
	case FieldTypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case FieldTypeTime:
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		// string and other; other is stored as JSON text
		return arrow.BinaryTypes.String
	}
}

func toArrowSchema(f *Frame) *arrow.Schema {
	fields := make([]arrow.Field, len(f.Fields))
	for i, field := range f.Fields {
		fields[i] = arrow.Field{
			Name:     field.Name,
			Type:     arrowType(field.Type),
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{arrowTypeKey}, []string{string(field.Type)}),
		}
	}
	md := arrow.NewMetadata([]string{arrowFrameKey}, []string{f.Name})
	return arrow.NewSchema(fields, &md)
}

// WriteArrow writes the frame as a single record batch in Arrow IPC file format
func WriteArrow(w io.Writer, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	mem := memory.NewGoAllocator()
	schema := toArrowSchema(f)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, field := range f.Fields {
		if err := appendArrowValues(builder.Field(i), field); err != nil {
			return err
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to create arrow writer")
	}
	if err := fw.Write(record); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to write arrow record")
	}
	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to close arrow writer")
	}
	return nil
}

func appendArrowValues(builder array.Builder, field *Field) error {
	for _, v := range field.Values {
		if v == nil {
			builder.AppendNull()
			continue
		}

		switch b := builder.(type) {
		case *array.Float64Builder:
			if n, ok := AsFloat(v); ok {
				b.Append(n)
			} else {
				b.AppendNull()
			}
		case *array.BooleanBuilder:
			if flag, ok := AsBool(v); ok {
				b.Append(flag)
			} else {
				b.AppendNull()
			}
		case *array.TimestampBuilder:
			if t, ok := AsTime(v); ok {
				b.Append(arrow.Timestamp(t.UnixMilli()))
			} else {
				b.AppendNull()
			}
		case *array.StringBuilder:
			b.Append(AsString(v))
		default:
			return errors.Newf(errors.ErrorTypeInternal, "unsupported arrow builder %T", builder)
		}
	}
	return nil
}

// ReadArrow reads every record batch of an Arrow IPC file into one frame
func ReadArrow(r io.Reader) (*Frame, error) {
	// ipc.FileReader needs random access
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read arrow data")
	}

	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open arrow file")
	}
	defer fr.Close()

	schema := fr.Schema()
	f := &Frame{Fields: make([]*Field, schema.NumFields())}
	if idx := schema.Metadata().FindKey(arrowFrameKey); idx >= 0 {
		f.Name = schema.Metadata().Values()[idx]
	}

	for i, af := range schema.Fields() {
		fieldType := FieldTypeString
		if idx := af.Metadata.FindKey(arrowTypeKey); idx >= 0 {
			fieldType = FieldType(af.Metadata.Values()[idx])
		}
		f.Fields[i] = NewField(af.Name, fieldType, nil)
	}

	for n := 0; n < fr.NumRecords(); n++ {
		record, err := fr.Record(n)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read arrow record")
		}
		for i := 0; i < int(record.NumCols()); i++ {
			col := record.Column(i)
			for row := 0; row < col.Len(); row++ {
				f.Fields[i].Values = append(f.Fields[i].Values, arrowValue(col, row, f.Fields[i].Type))
			}
		}
	}

	if len(f.Fields) > 0 {
		f.Length = f.Fields[0].Len()
	}
	return f, nil
}

func arrowValue(col arrow.Array, row int, fieldType FieldType) any {
	if col.IsNull(row) {
		return nil
	}

	switch c := col.(type) {
	case *array.Float64:
		return c.Value(row)
	case *array.Boolean:
		return c.Value(row)
	case *array.Timestamp:
		return c.Value(row).ToTime(arrow.Millisecond).UTC()
	case *array.String:
		s := c.Value(row)
		if fieldType == FieldTypeOther {
			var v any
			if err := gojson.Unmarshal([]byte(s), &v); err == nil {
				return v
			}
		}
		return s
	default:
		return nil
	}
}
