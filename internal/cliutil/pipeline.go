package cliutil

import (
	"context"
	"fmt"
	"io"

	"github.com/banshee-data/splat-tools/internal/catalog"
	"github.com/banshee-data/splat-tools/internal/fsutil"
	"github.com/banshee-data/splat-tools/internal/report"
	"github.com/banshee-data/splat-tools/internal/splat"
	"github.com/banshee-data/splat-tools/internal/timeutil"
)

// Pipeline runs one batch for a tool and feeds its results to the optional
// catalog, report and metrics outputs.
type Pipeline struct {
	Tool    string
	FS      fsutil.FileSystem
	Options Options
	Stdout  io.Writer
	Stderr  io.Writer

	// Clock times the batch and stamps catalog rows; nil means RealClock.
	Clock timeutil.Clock
}

// Run processes jobs with fn, prints one progress line per file in job
// order and returns the exit code: ExitFailure when any file or optional
// output failed, ExitOK otherwise.
func (p *Pipeline) Run(ctx context.Context, jobs []splat.Job, fn splat.JobFunc) int {
	clock := p.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	var (
		cat   *catalog.Catalog
		runID string
		code  = ExitOK
	)
	if p.Options.CatalogPath != "" {
		var err error
		cat, err = catalog.Open(p.Options.CatalogPath)
		if err != nil {
			fmt.Fprintf(p.Stderr, "error: catalog: %v\n", err)
			return ExitFailure
		}
		defer cat.Close()
		cat.SetClock(clock)
		if runID, err = cat.BeginRun(p.Tool, p.Options.Limit); err != nil {
			fmt.Fprintf(p.Stderr, "error: catalog: %v\n", err)
			return ExitFailure
		}
	}

	start := clock.Now()
	results := splat.RunBatch(ctx, jobs, p.Options.Workers, fn)
	elapsed := clock.Since(start)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(p.Stderr, "  %s: error: %v\n", r.Job.Input, r.Err)
			continue
		}
		fmt.Fprintln(p.Stdout, FormatProgress(r.Stats))
	}
	if splat.Failed(results) > 0 {
		code = ExitFailure
	}

	if cat != nil {
		if err := cat.FinishRun(runID, results); err != nil {
			fmt.Fprintf(p.Stderr, "error: catalog: %v\n", err)
			code = ExitFailure
		}
	}
	if p.Options.ReportDir != "" {
		paths, err := report.NewWriter(p.FS, p.Options.ReportDir).Write(p.Tool, results)
		if err != nil {
			fmt.Fprintf(p.Stderr, "error: report: %v\n", err)
			code = ExitFailure
		}
		for _, path := range paths {
			fmt.Fprintf(p.Stdout, "  report: %s\n", path)
		}
	}
	if p.Options.MetricsTextfile != "" {
		m := report.NewMetrics()
		m.Observe(p.Tool, results, elapsed)
		if err := m.WriteTextfile(p.Options.MetricsTextfile); err != nil {
			fmt.Fprintf(p.Stderr, "error: metrics: %v\n", err)
			code = ExitFailure
		}
	}
	return code
}

// FormatProgress renders the per-file progress line:
//
//	  path: N -> K points (P%), X MB -> out
func FormatProgress(st splat.Stats) string {
	return fmt.Sprintf("  %s: %d -> %d points (%.1f%%), %.2f MB -> %s",
		st.Input, st.Points, st.Kept, 100*st.Ratio(), float64(st.Bytes)/(1024*1024), st.Output)
}
