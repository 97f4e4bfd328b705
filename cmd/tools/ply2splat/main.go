// Command ply2splat converts Gaussian splatting PLY files into ranked
// 32-byte-per-point .splat streams.
//
// Usage:
//
//	ply2splat [-o output.splat] [-r ratio | -n max-points] input.ply...
//
// With several inputs each output is named after its input (scene.ply ->
// scene.splat) and -o is ignored.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/splat-tools/internal/fsutil"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, fsutil.OSFileSystem{})
	stop()
	os.Exit(code)
}
