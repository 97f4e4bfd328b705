// Command splat-downsample keeps the most important points of existing
// .splat files, in place or into a new file.
//
// Usage:
//
//	splat-downsample [-r 0.25 | -n max-points] file.splat...
//	splat-downsample -r 0.5 in.splat -o out.splat
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
