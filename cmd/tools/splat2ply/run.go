package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/splat-tools/internal/cliutil"
	"github.com/banshee-data/splat-tools/internal/fsutil"
	"github.com/banshee-data/splat-tools/internal/splat"
)

const toolName = "splat2ply"

func run(ctx context.Context, args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) int {
	flags := cliutil.NewFlags(toolName, stderr, "", false, 0)
	inputs, err := flags.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return cliutil.ExitOK
	}
	if err != nil {
		return cliutil.ExitUsage
	}
	if flags.Version {
		flags.PrintVersion(stdout)
		return cliutil.ExitOK
	}
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "error: at least one input file is required")
		flags.Usage()
		return cliutil.ExitUsage
	}
	if flags.OutputSet() && len(inputs) > 1 {
		fmt.Fprintln(stderr, "error: -output only valid with a single input file")
		return cliutil.ExitUsage
	}

	opts, err := flags.Resolve(nil)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, cliutil.ErrUsage) {
			return cliutil.ExitUsage
		}
		return cliutil.ExitFailure
	}

	var jobs []splat.Job
	for _, in := range inputs {
		if !cliutil.HasExt(in, ".splat") {
			fmt.Fprintf(stdout, "  skip (not .splat): %s\n", in)
			continue
		}
		out := cliutil.DeriveOutput(in, ".splat", ".ply")
		if flags.OutputSet() {
			out = flags.Output
		}
		jobs = append(jobs, splat.Job{Input: in, Output: out})
	}
	if len(jobs) == 0 {
		return cliutil.ExitOK
	}

	p := &cliutil.Pipeline{Tool: toolName, FS: fsys, Options: opts, Stdout: stdout, Stderr: stderr}
	return p.Run(ctx, jobs, func(j splat.Job) (splat.Stats, error) {
		return splat.ExportFile(fsys, j.Input, j.Output)
	})
}
