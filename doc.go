// Package framex extracts structured fields from a text column of data
// frames. Each row of the source column is parsed as JSON, key/value pairs,
// delimited tokens or a named-group regular expression, and the values found
// are appended to the frame as new, typed columns.
//
// # Quick Start
//
// Extract key/value pairs from the "line" field of a frame:
//
//	import (
//	    "github.com/ajitpratap0/framex/pkg/extract"
//	    "github.com/ajitpratap0/framex/pkg/frame"
//	)
//
//	out, err := extract.AddExtractedFields(f, extract.Options{
//	    Source: "line",
//	    Format: extract.KeyValuePairs,
//	})
//
// Run a configured pipeline:
//
//	cfg, err := config.LoadPipeline("pipeline.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := pipeline.NewRunner(cfg, logger.Get()).Run(ctx)
//
// # Key Packages
//
//	pkg/frame        - Columnar frames and the JSON, CSV, Arrow and Avro codecs
//	pkg/extract      - Extractor registry, key/value parser, JSONPath filter
//	pkg/framesource  - Frames from SQL queries (sqlite, postgres, mysql)
//	pkg/compression  - gzip, zstd, s2 and lz4 streams for frame files
//	pkg/config       - YAML pipeline configuration
//	pkg/errors       - Structured error handling
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus extraction metrics
//	pkg/observability - OpenTelemetry tracing
//	internal/pipeline - Load, extract and write runner
//
// # Extractors
//
//	json       - JSON objects; arrays are keyed by index
//	kvp        - key=value and key: value pairs, quoted values, bare words
//	delimiter  - every token becomes a field holding 1
//	regexp     - named groups of a pattern, /pattern/flags syntax accepted
//	auto       - the first of json, kvp, delimiter and regexp with a result
//
// # Command Line
//
//	framex extractors
//	framex parse --format kvp 'level=info msg="user logged in"'
//	framex extract -i logs.json.gz -s line -f json -p status -o out.arrow.zst
//	framex run --config pipeline.yaml
//
// Environment variables are supported in configuration files with
// ${VAR_NAME} and ${VAR_NAME:-default} syntax, and every CLI flag can be set
// as FRAMEX_<FLAG>.
package framex
