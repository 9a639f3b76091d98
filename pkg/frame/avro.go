package frame

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/linkedin/goavro/v2"

	"github.com/ajitpratap0/framex/pkg/errors"
)

const (
	avroFieldsKey = "framex.fields"
	avroNameKey   = "framex.name"
)

// avroColumn links a sanitized avro field name to the frame field it holds
type avroColumn struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	AvroName string    `json:"avro_name"`
}

func avroPrimitive(t FieldType) string {
	switch t {
	case FieldTypeNumber:
		return "double"
	case FieldTypeBoolean:
		return "boolean"
	case FieldTypeTime:
		return "long" // epoch milliseconds
	default:
		return "string"
	}
}

// sanitizeAvroName maps an arbitrary field name onto [A-Za-z_][A-Za-z0-9_]*
func sanitizeAvroName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func avroColumns(f *Frame) []avroColumn {
	used := make(map[string]int, len(f.Fields))
	cols := make([]avroColumn, len(f.Fields))
	for i, field := range f.Fields {
		avroName := sanitizeAvroName(field.Name)
		if n := used[avroName]; n > 0 {
			used[avroName] = n + 1
			avroName = fmt.Sprintf("%s_%d", avroName, n+1)
		}
		used[avroName]++
		cols[i] = avroColumn{Name: field.Name, Type: field.Type, AvroName: avroName}
	}
	return cols
}

func avroSchema(cols []avroColumn) (string, error) {
	fields := make([]map[string]any, len(cols))
	for i, col := range cols {
		fields[i] = map[string]any{
			"name":    col.AvroName,
			"type":    []any{"null", avroPrimitive(col.Type)},
			"default": nil,
		}
	}
	schema := map[string]any{
		"type":   "record",
		"name":   "frame",
		"fields": fields,
	}
	data, err := gojson.Marshal(schema)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteAvro writes the frame as an Avro object container file, one avro
// record per row
func WriteAvro(w io.Writer, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	cols := avroColumns(f)
	schema, err := avroSchema(cols)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to build avro schema")
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to create avro codec")
	}

	colsJSON, err := gojson.Marshal(cols)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode avro field map")
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: goavro.CompressionNullLabel,
		MetaData: map[string][]byte{
			avroFieldsKey: colsJSON,
			avroNameKey:   []byte(f.Name),
		},
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeData, "failed to create avro writer")
	}

	rows := make([]any, 0, f.Length)
	for i := 0; i < f.Length; i++ {
		native := make(map[string]any, len(cols))
		for j, col := range cols {
			native[col.AvroName] = avroNative(col.Type, f.Fields[j].Values[i])
		}
		rows = append(rows, native)
	}

	if len(rows) > 0 {
		if err := ocfWriter.Append(rows); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to write avro rows")
		}
	}
	return nil
}

func avroNative(t FieldType, v any) any {
	if v == nil {
		return nil
	}
	switch t {
	case FieldTypeNumber:
		if n, ok := AsFloat(v); ok {
			return goavro.Union("double", n)
		}
		return nil
	case FieldTypeBoolean:
		if b, ok := AsBool(v); ok {
			return goavro.Union("boolean", b)
		}
		return nil
	case FieldTypeTime:
		if ts, ok := AsTime(v); ok {
			return goavro.Union("long", ts.UnixMilli())
		}
		return nil
	default:
		return goavro.Union("string", AsString(v))
	}
}

// ReadAvro reads an Avro object container file written by WriteAvro
func ReadAvro(r io.Reader) (*Frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read avro data")
	}

	ocfReader, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open avro file")
	}

	meta := ocfReader.MetaData()
	var cols []avroColumn
	if raw, ok := meta[avroFieldsKey]; ok {
		if err := gojson.Unmarshal(raw, &cols); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "invalid avro field map")
		}
	} else {
		return nil, errors.New(errors.ErrorTypeData, "avro file has no framex field map")
	}

	fields := make([]*Field, len(cols))
	for i, col := range cols {
		fields[i] = NewField(col.Name, col.Type, nil)
	}

	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read avro row")
		}
		row, _ := datum.(map[string]any)
		for i, col := range cols {
			fields[i].Values = append(fields[i].Values, fromAvroNative(col.Type, row[col.AvroName]))
		}
	}
	if err := ocfReader.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to scan avro file")
	}

	return New(string(meta[avroNameKey]), fields...), nil
}

func fromAvroNative(t FieldType, v any) any {
	union, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	for _, inner := range union {
		switch t {
		case FieldTypeTime:
			if ms, ok := inner.(int64); ok {
				return time.UnixMilli(ms).UTC()
			}
		case FieldTypeOther:
			if s, ok := inner.(string); ok {
				var decoded any
				if err := gojson.Unmarshal([]byte(s), &decoded); err == nil {
					return decoded
				}
				return s
			}
		}
		return inner
	}
	return nil
}
