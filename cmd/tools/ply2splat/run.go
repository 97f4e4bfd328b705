package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/splat-tools/internal/cliutil"
	"github.com/banshee-data/splat-tools/internal/config"
	"github.com/banshee-data/splat-tools/internal/fsutil"
	"github.com/banshee-data/splat-tools/internal/splat"
)

const (
	toolName      = "ply2splat"
	defaultOutput = "output.splat"
)

func run(ctx context.Context, args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) int {
	flags := cliutil.NewFlags(toolName, stderr, defaultOutput, true, config.DefaultEncodeRatio)
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

	opts, err := flags.Resolve(cliutil.EncodeSection)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, cliutil.ErrUsage) {
			return cliutil.ExitUsage
		}
		return cliutil.ExitFailure
	}

	jobs := make([]splat.Job, len(inputs))
	for i, in := range inputs {
		out := flags.Output
		if len(inputs) > 1 {
			out = cliutil.DeriveOutput(in, ".ply", ".splat")
		}
		jobs[i] = splat.Job{Input: in, Output: out}
	}
	if len(inputs) > 1 && flags.OutputSet() {
		fmt.Fprintln(stderr, "note: -output ignored with multiple inputs")
	}

	fmt.Fprintf(stdout, "Converting %d file(s), %s\n", len(jobs), opts.Limit)
	p := &cliutil.Pipeline{Tool: toolName, FS: fsys, Options: opts, Stdout: stdout, Stderr: stderr}
	return p.Run(ctx, jobs, func(j splat.Job) (splat.Stats, error) {
		return splat.ConvertFile(fsys, j.Input, j.Output, opts.Limit)
	})
}
