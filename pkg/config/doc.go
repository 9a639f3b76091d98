// Package config loads pipeline configurations for framex.
//
// Configurations are YAML files. Before parsing, ${VAR_NAME} references are
// replaced with environment variables; ${VAR_NAME:-default} supplies a value
// for unset variables.
//
// # Pipeline Files
//
//	name: nginx
//	input:
//	  path: access.json.zst
//	output:
//	  path: access.arrow
//	features:
//	  name_deduplication: true
//	steps:
//	  - source: line
//	    format: json
//	    jsonPaths:
//	      - path: request.status
//	        alias: status
//	    keepTime: true
//	observability:
//	  log_level: ${LOG_LEVEL:-info}
//
// Reading from a database instead of a file:
//
//	input:
//	  sql:
//	    driver: postgres
//	    dsn: ${DATABASE_URL}
//	    query: SELECT ts AS "Time", payload FROM events
//
// # Usage
//
//	cfg, err := config.LoadPipeline("pipeline.yaml")
//	if err != nil {
//	    return err
//	}
package config
