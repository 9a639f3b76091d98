package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/framex/pkg/config"
	"github.com/ajitpratap0/framex/pkg/extract"
)

// ExampleNewPipelineConfig demonstrates creating a pipeline configuration
// with default values.
func ExampleNewPipelineConfig() {
	cfg := config.NewPipelineConfig("logs")

	fmt.Printf("Log Level: %s\n", cfg.Observability.LogLevel)
	fmt.Printf("Metrics: %v\n", cfg.Observability.EnableMetrics)
	fmt.Printf("Tracing: %v\n", cfg.Observability.EnableTracing)

	// Output:
	// Log Level: info
	// Metrics: true
	// Tracing: false
}

// ExamplePipelineConfig_Validate shows how to validate a configuration
// before running it.
func ExamplePipelineConfig_Validate() {
	cfg := config.NewPipelineConfig("logs")
	cfg.Input.Path = "logs.json"
	cfg.Steps = []extract.Options{
		{Source: "line", Format: extract.KeyValuePairs},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration is valid!")

	cfg.Steps[0].Format = "xml"
	fmt.Println(cfg.Validate() != nil)

	// Output:
	// Configuration is valid!
	// true
}
