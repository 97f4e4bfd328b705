// Package cliutil holds the flag handling and batch pipeline shared by the
// splat command line tools.
package cliutil

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/splat-tools/internal/config"
	"github.com/banshee-data/splat-tools/internal/splat"
	"github.com/banshee-data/splat-tools/internal/version"
)

// Exit codes returned by the tools.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks invalid flag combinations; tools exit with ExitUsage.
var ErrUsage = errors.New("usage error")

// Section picks a tool's limit settings out of the config.
type Section func(*config.ConversionConfig) (ratio float64, maxPoints *int)

// EncodeSection and DownsampleSection select the matching config blocks.
var (
	EncodeSection Section = func(c *config.ConversionConfig) (float64, *int) {
		return c.GetEncodeRatio(), c.GetEncodeMaxPoints()
	}
	DownsampleSection Section = func(c *config.ConversionConfig) (float64, *int) {
		return c.GetDownsampleRatio(), c.GetDownsampleMaxPoints()
	}
)

// Flags is the common flag set of the splat tools. Short and long spellings
// (-o/-output, -r/-ratio, -n/-max-points) share one variable.
type Flags struct {
	fs *flag.FlagSet

	Output          string
	Ratio           float64
	MaxPoints       int
	ConfigPath      string
	Workers         int
	CatalogPath     string
	ReportDir       string
	MetricsTextfile string
	Version         bool

	withLimit bool
}

// NewFlags registers the common flags. Limit flags are only registered when
// withLimit is set; defaultRatio is shown in usage and never read directly,
// as unset flags fall through to the config file.
func NewFlags(name string, stderr io.Writer, defaultOutput string, withLimit bool, defaultRatio float64) *Flags {
	f := &Flags{fs: flag.NewFlagSet(name, flag.ContinueOnError), withLimit: withLimit}
	fs := f.fs
	fs.SetOutput(stderr)

	fs.StringVar(&f.Output, "output", defaultOutput, "output path (single input only)")
	fs.StringVar(&f.Output, "o", defaultOutput, "shorthand for -output")
	if withLimit {
		fs.Float64Var(&f.Ratio, "ratio", defaultRatio, "fraction of points to keep, in (0, 1]")
		fs.Float64Var(&f.Ratio, "r", defaultRatio, "shorthand for -ratio")
		fs.IntVar(&f.MaxPoints, "max-points", 0, "maximum points to keep (overrides -ratio)")
		fs.IntVar(&f.MaxPoints, "n", 0, "shorthand for -max-points")
	}
	fs.StringVar(&f.ConfigPath, "config", "", "path to a .json or .yaml conversion config")
	fs.IntVar(&f.Workers, "workers", config.DefaultWorkers, "files processed concurrently")
	fs.StringVar(&f.CatalogPath, "catalog", "", "sqlite catalog recording each run (disabled when empty)")
	fs.StringVar(&f.ReportDir, "report-dir", "", "directory for importance reports (disabled when empty)")
	fs.StringVar(&f.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this textfile (disabled when empty)")
	fs.BoolVar(&f.Version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] input...\n", name)
		fs.PrintDefaults()
	}
	return f
}

// Parse parses args, allowing flags before, between and after inputs. A
// "--" argument ends flag parsing. It returns the inputs in order.
func (f *Flags) Parse(args []string) ([]string, error) {
	var inputs []string
	for {
		if err := f.fs.Parse(args); err != nil {
			return nil, err
		}
		rest := f.fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(inputs, rest...), nil
		}
		if len(rest) == 0 {
			return inputs, nil
		}
		inputs = append(inputs, rest[0])
		args = rest[1:]
	}
}

// IsSet reports whether any of the named flags was given on the command line.
func (f *Flags) IsSet(names ...string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		for _, n := range names {
			if fl.Name == n {
				set = true
			}
		}
	})
	return set
}

// OutputSet reports whether -o or -output was given.
func (f *Flags) OutputSet() bool { return f.IsSet("o", "output") }

// Usage prints the flag summary.
func (f *Flags) Usage() { f.fs.Usage() }

// PrintVersion writes the build metadata line for the tool.
func (f *Flags) PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", f.fs.Name(), version.String())
}

// Options is the effective configuration of one tool invocation.
type Options struct {
	Limit           splat.Limit
	Workers         int
	CatalogPath     string
	ReportDir       string
	MetricsTextfile string
}

// Resolve merges the config file (when -config is given) with the flags.
// Flags given on the command line win over config values, which win over
// built-in defaults. A nil section resolves to KeepAll.
func (f *Flags) Resolve(section Section) (Options, error) {
	cfg := config.EmptyConversionConfig()
	if f.ConfigPath != "" {
		loaded, err := config.LoadConversionConfig(f.ConfigPath)
		if err != nil {
			return Options{}, err
		}
		cfg = loaded
	}

	opts := Options{
		Limit:           splat.KeepAll(),
		Workers:         cfg.GetWorkers(),
		CatalogPath:     cfg.GetCatalogPath(),
		ReportDir:       cfg.GetReportDir(),
		MetricsTextfile: cfg.GetMetricsTextfile(),
	}

	if section != nil {
		ratio, maxPoints := section(cfg)
		if f.withLimit && f.IsSet("r", "ratio") {
			// An explicit ratio replaces a configured max_points.
			ratio, maxPoints = f.Ratio, nil
		}
		if f.withLimit && f.IsSet("n", "max-points") {
			if f.MaxPoints < 0 {
				return Options{}, fmt.Errorf("%w: -max-points must be non-negative, got %d", ErrUsage, f.MaxPoints)
			}
			mp := f.MaxPoints
			maxPoints = &mp
		}
		opts.Limit = splat.Limit{Ratio: ratio, MaxPoints: maxPoints}
		if err := opts.Limit.Validate(); err != nil {
			return Options{}, fmt.Errorf("%w: %w", ErrUsage, err)
		}
	}

	if f.IsSet("workers") {
		if f.Workers < 1 || f.Workers > config.MaxWorkers {
			return Options{}, fmt.Errorf("%w: -workers must be between 1 and %d, got %d", ErrUsage, config.MaxWorkers, f.Workers)
		}
		opts.Workers = f.Workers
	}
	if f.IsSet("catalog") {
		opts.CatalogPath = f.CatalogPath
	}
	if f.IsSet("report-dir") {
		opts.ReportDir = f.ReportDir
	}
	if f.IsSet("metrics-textfile") {
		opts.MetricsTextfile = f.MetricsTextfile
	}
	return opts, nil
}

// DeriveOutput strips srcExt from the end of input, when present, and
// appends dstExt.
func DeriveOutput(input, srcExt, dstExt string) string {
	return strings.TrimSuffix(input, srcExt) + dstExt
}

// HasExt reports whether path ends in ext.
func HasExt(path, ext string) bool {
	return strings.HasSuffix(path, ext)
}
