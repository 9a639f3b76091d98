package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/logger"
	"github.com/ajitpratap0/framex/pkg/metrics"
	"github.com/ajitpratap0/framex/pkg/observability"
)

var version = "0.1.0"

// app holds the state shared by all commands of one invocation
type app struct {
	v       *viper.Viper
	tracing bool
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("FRAMEX")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "framex",
		Short: "framex - field extraction for data frames",
		Long: `framex parses a text field of every frame row as JSON, key/value pairs,
delimited tokens or a named-group regular expression and appends the
extracted values as new columns.

Every flag can also be set from the environment, e.g. FRAMEX_LOG_LEVEL=debug.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Bool("dev", false, "Human readable development logging")
	flags.Bool("metrics", false, "Print extraction metrics to stderr on exit")
	flags.Bool("trace", false, "Export spans to stderr")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		newVersionCmd(),
		newExtractorsCmd(),
		newParseCmd(),
		newExtractCmd(a),
		newRunCmd(a),
	)
	return root
}

// setup initializes logging and tracing from flags and environment
func (a *app) setup() error {
	cfg := logger.Config{
		Level:       a.v.GetString("log-level"),
		Development: a.v.GetBool("dev"),
	}
	if cfg.Development {
		cfg.Encoding = "console"
	}
	if err := logger.Init(cfg); err != nil {
		return err
	}

	if a.v.GetBool("trace") {
		return a.enableTracing(1.0)
	}
	return nil
}

func (a *app) enableTracing(sampleRate float64) error {
	obs := observability.DefaultConfig()
	obs.Tracing.ServiceVersion = version
	obs.Tracing.SamplingRate = sampleRate
	obs.Tracing.Writer = os.Stderr
	if err := observability.Initialize(obs); err != nil {
		return err
	}
	a.tracing = true
	return nil
}

// teardown flushes spans, metrics and logs
func (a *app) teardown(cmd *cobra.Command) error {
	if a.tracing {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if a.v.GetBool("metrics") {
			if err := writeOtelMetrics(ctx, cmd.ErrOrStderr()); err != nil {
				logger.Get().Warn("failed to collect otel metrics", zap.Error(err))
			}
		}
		if err := observability.Shutdown(ctx); err != nil {
			logger.Get().Warn("failed to flush spans", zap.Error(err))
		}
	}
	if a.v.GetBool("metrics") {
		if err := metrics.WriteText(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	_ = logger.Sync()
	return nil
}

// writeOtelMetrics writes the otel metrics recorded during the run as JSON
func writeOtelMetrics(ctx context.Context, w io.Writer) error {
	rm, err := observability.CollectMetrics(ctx)
	if err != nil {
		return err
	}
	enc := gojson.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rm)
}
