package main

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/internal/pipeline"
	"github.com/ajitpratap0/framex/pkg/config"
	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/extract"
	"github.com/ajitpratap0/framex/pkg/logger"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "framex v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newExtractorsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "extractors",
		Short: "List available extractors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := extract.List()
			if asJSON {
				enc := gojson.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Name, info.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON")
	return cmd
}

// stepFlags are the extraction options shared by parse and extract
type stepFlags struct {
	format    string
	paths     []string
	regExp    string
	delimiter string
}

func (f *stepFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", string(extract.Auto), "Extractor: json, kvp, delimiter, regexp or auto")
	cmd.Flags().StringArrayVarP(&f.paths, "path", "p", nil, "JSONPath to keep, optionally aliased as path=alias (json only, repeatable)")
	cmd.Flags().StringVar(&f.regExp, "regexp", "", "Pattern with named groups, e.g. /(?<level>\\w+)/i")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "Token delimiter for the delimiter extractor (default \",\")")
}

func (f *stepFlags) options(source string) extract.Options {
	return extract.Options{
		Source:    source,
		Format:    extract.ID(f.format),
		JSONPaths: parsePaths(f.paths),
		RegExp:    f.regExp,
		Delimiter: f.delimiter,
	}
}

var aliasPattern = regexp.MustCompile(`^[\w .-]+$`)

// parsePaths reads "path" or "path=alias" flag values. The alias is split
// at the last "=" only when it is a plain name, so filter expressions such
// as $.a[?(@.b=='x')] stay intact.
func parsePaths(values []string) []extract.JSONPath {
	paths := make([]extract.JSONPath, 0, len(values))
	for _, value := range values {
		p := extract.JSONPath{Path: value}
		if i := strings.LastIndex(value, "="); i > 0 && aliasPattern.MatchString(value[i+1:]) {
			p = extract.JSONPath{Path: value[:i], Alias: value[i+1:]}
		}
		paths = append(paths, p)
	}
	return paths
}

func newParseCmd() *cobra.Command {
	var step stepFlags
	cmd := &cobra.Command{
		Use:   "parse [value]",
		Short: "Parse a single value and print the extracted record",
		Long: `Parse runs one extractor over a value and prints the resulting record
as JSON. Without an argument the value is read from stdin.

Example:
  framex parse --format kvp 'level=info msg="user logged in"'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readValue(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			opts := step.options("")
			rec, err := extract.Parse(opts.Format, raw, opts)
			if err != nil {
				return err
			}
			if opts.Format == extract.JSON && len(opts.JSONPaths) > 0 {
				rec = extract.ApplyJSONPaths(rec, opts.JSONPaths)
			}

			var doc any
			if rec != nil {
				doc = rec
			}
			enc := gojson.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			return enc.Encode(doc)
		},
	}
	step.register(cmd)
	return cmd
}

func readValue(r io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeFile, "failed to read stdin")
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		step     stepFlags
		input    string
		output   string
		source   string
		replace  bool
		keepTime bool
		dedupe   bool
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract fields from one column of a frame file",
		Long: `Extract reads frames from a file, adds the fields extracted from the
source column and writes the result. Format and compression follow the
file extensions, e.g. logs.json.gz or out.arrow.zst. Without --output the
frames are printed to stdout as JSON.

Example:
  framex extract -i logs.json --source line --format json -p status -p user.id=user`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
			cfg := config.NewPipelineConfig(name)
			cfg.Input.Path = input
			cfg.Output.Path = output
			cfg.Features.NameDeduplication = dedupe

			opts := step.options(source)
			opts.Replace = replace
			opts.KeepTime = keepTime
			cfg.Steps = []extract.Options{opts}

			return a.run(cmd, cfg)
		},
	}
	step.register(cmd)
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input frame file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output frame file; stdout when empty")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Field to parse (required)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop the original fields")
	cmd.Flags().BoolVar(&keepTime, "keep-time", false, "Keep the time field first")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Rename extracted fields that clash with existing ones")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline from a YAML configuration",
		Long: `Run executes the pipeline described by a YAML file. ${VAR} and
${VAR:-default} references in the file are expanded from the environment.

Example:
  framex run --config pipeline.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadPipeline(configFile)
			if err != nil {
				return err
			}

			// the file's log level applies unless the flag or env sets one
			if !a.v.IsSet("log-level") && cfg.Observability.LogLevel != "" {
				if err := logger.Init(logger.Config{
					Level:       cfg.Observability.LogLevel,
					Development: a.v.GetBool("dev"),
				}); err != nil {
					return err
				}
			}
			if cfg.Observability.EnableTracing && !a.tracing {
				if err := a.enableTracing(cfg.Observability.TracingSampleRate); err != nil {
					return err
				}
			}
			if cfg.Observability.EnableMetrics && !a.v.IsSet("metrics") {
				a.v.Set("metrics", true)
			}

			return a.run(cmd, cfg)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Pipeline configuration file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// run executes cfg and writes path-less output to the command's stdout
func (a *app) run(cmd *cobra.Command, cfg *config.PipelineConfig) error {
	log := logger.With(zap.String("component", "framex-cli"))

	result, err := pipeline.NewRunnerWithOutput(cfg, log, cmd.OutOrStdout()).Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline %q failed: %w", cfg.Name, err)
	}

	log.Info("done",
		zap.Int("frames", result.Frames),
		zap.Int("rows", result.RowsIn),
		zap.Int("fields_added", result.FieldsOut-result.FieldsIn),
		zap.Duration("duration", result.Duration))
	return nil
}
