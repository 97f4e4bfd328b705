// Command splat2ply decodes .splat streams back into Gaussian splatting PLY
// files, for inspection in tools that only read PLY.
//
// Usage:
//
//	splat2ply [-o out.ply] file.splat...
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
