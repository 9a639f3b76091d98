package extract

import (
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/frame"
)

func generateLines(count int, format ID) []any {
	lines := make([]any, count)
	for i := 0; i < count; i++ {
		switch format {
		case JSON:
			lines[i] = fmt.Sprintf(`{"id": %d, "user": {"name": "user_%d"}, "ok": %t}`, i, i%50, i%2 == 0)
		case Delimiter:
			lines[i] = fmt.Sprintf("tag_%d, tag_%d, common", i%7, i%11)
		default:
			lines[i] = fmt.Sprintf(`id=%d user=user_%d msg="request %d done" ok=%t`, i, i%50, i, i%2 == 0)
		}
	}
	return lines
}

func BenchmarkParseKeyValuePairs(b *testing.B) {
	line := `level=info ts=2024-01-01T00:00:00Z msg="request done" path=/api/v1 status=200 took=12ms`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ParseKeyValuePairs(line)
	}
}

func BenchmarkAddExtractedFields(b *testing.B) {
	extractor := NewFieldExtractor(WithLogger(zap.NewNop()))

	for _, format := range []ID{JSON, KeyValuePairs, Delimiter, Auto} {
		for _, rows := range []int{100, 10000} {
			lines := generateLines(rows, format)
			if format == Auto {
				lines = generateLines(rows, KeyValuePairs)
			}
			f := frame.New("bench", frame.NewField("line", frame.FieldTypeString, lines))
			opts := Options{Source: "line", Format: format}

			b.Run(fmt.Sprintf("%s/%d", format, rows), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					if _, err := extractor.AddExtractedFields(f, opts); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkApplyJSONPaths(b *testing.B) {
	rec, err := Parse(JSON, `{"a": {"b": [1, 2, {"c": "deep"}]}, "x": 1}`, Options{})
	if err != nil {
		b.Fatal(err)
	}
	paths := []JSONPath{{Path: "a.b[2].c", Alias: "c"}, {Path: "x"}, {Path: "missing"}}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ApplyJSONPaths(rec, paths)
	}
}
