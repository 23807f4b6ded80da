package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"taq/internal/config"
	"taq/internal/metrics"
	"taq/internal/stats"
	"taq/internal/table"
	"taq/internal/taq"
)

const usageText = `Usage: taq [options] <input-file> <output-file>

Converts an OB event file to a TAQ event file (both tab-separated).

Options:
  -c, --config <path>          config file (default taq.yaml, optional)
  -f, --format <format>        input file format (supported: ob)
      --on-malformed <policy>  fail or skip rows missing required fields
      --workers <n>            goroutines used to decode rows
      --stats                  print event and symbol statistics to stdout
      --metrics-file <path>    write Prometheus textfile metrics
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// UsageError is a command line the program cannot run with.
type UsageError struct{ Msg string }

func (e *UsageError) Error() string { return e.Msg }

type cliArgs struct {
	input, output string
	configPath    string
	format        string

	// overrides, applied only when the flag was given
	set         map[string]bool
	onMalformed string
	workers     int
	stats       bool
	metricsFile string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load() // best-effort: .env is optional

	a, err := parseArgs(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(stdout, usageText)
		return exitOK
	}
	var ue *UsageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "taq: %s\n\n%s", ue.Msg, usageText)
		return exitUsage
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "taq: load config: %v\n", err)
		return exitError
	}
	a.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "taq: %v\n", err)
		return exitError
	}

	logger := config.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	if err := convert(a.input, a.output, cfg, stdout, logger); err != nil {
		logger.Error("conversion failed",
			slog.String("input", a.input),
			slog.String("output", a.output),
			slog.String("err", err.Error()),
		)
		return exitError
	}
	return exitOK
}

func parseArgs(args []string) (cliArgs, error) {
	a := cliArgs{set: map[string]bool{}}

	fs := flag.NewFlagSet("taq", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&a.configPath, "c", "", "")
	fs.StringVar(&a.configPath, "config", "", "")
	fs.StringVar(&a.format, "f", "ob", "")
	fs.StringVar(&a.format, "format", "ob", "")
	fs.StringVar(&a.onMalformed, "on-malformed", "", "")
	fs.IntVar(&a.workers, "workers", 0, "")
	fs.BoolVar(&a.stats, "stats", false, "")
	fs.StringVar(&a.metricsFile, "metrics-file", "", "")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return a, err
		}
		return a, &UsageError{Msg: err.Error()}
	}
	fs.Visit(func(f *flag.Flag) { a.set[f.Name] = true })

	if a.format != "ob" {
		return a, &UsageError{Msg: fmt.Sprintf("unsupported format %q", a.format)}
	}
	if fs.NArg() != 2 {
		return a, &UsageError{Msg: fmt.Sprintf("expected <input-file> <output-file>, got %d argument(s)", fs.NArg())}
	}
	a.input, a.output = fs.Arg(0), fs.Arg(1)
	return a, nil
}

func (a cliArgs) apply(cfg *config.Config) {
	if a.set["on-malformed"] {
		cfg.OnMalformed = a.onMalformed
	}
	if a.set["workers"] {
		cfg.Workers = a.workers
	}
	if a.set["stats"] {
		cfg.Stats = a.stats
	}
	if a.set["metrics-file"] {
		cfg.MetricsFile = a.metricsFile
	}
}

// convert reads input, projects it and writes output. Nothing is written to
// output unless every earlier step succeeded.
func convert(input, output string, cfg config.Config, stdout io.Writer, logger *slog.Logger) error {
	start := time.Now()

	policy, err := taq.ParsePolicy(cfg.OnMalformed)
	if err != nil {
		return err
	}
	opts := []taq.Option{
		taq.WithPolicy(policy),
		taq.WithWorkers(cfg.Workers),
		taq.WithLogger(logger),
	}

	var collector *stats.Collector
	if cfg.Stats {
		collector = stats.NewCollector()
		opts = append(opts, taq.WithObserver(collector))
	}
	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
		opts = append(opts, taq.WithObserver(m))
	}

	in, err := table.ReadFile(input)
	if err != nil {
		return err
	}
	out, err := taq.Project(in, opts...)
	if err != nil {
		return fmt.Errorf("project %s: %w", input, err)
	}
	if err := table.WriteFile(output, out); err != nil {
		return err
	}

	elapsed := time.Since(start)
	logger.Info("converted OB to TAQ",
		slog.String("input", input),
		slog.String("output", output),
		slog.Int("input_rows", in.Len()),
		slog.Int("output_rows", out.Len()),
		slog.Duration("elapsed", elapsed),
	)

	if collector != nil {
		if err := collector.Summary().Print(stdout, input, language.English); err != nil {
			return fmt.Errorf("print stats: %w", err)
		}
	}
	if m != nil {
		m.Finish(elapsed, time.Now())
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("metrics not written", slog.String("err", err.Error()))
		}
	}
	return nil
}
