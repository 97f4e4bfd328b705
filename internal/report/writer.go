package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/splat-tools/internal/fsutil"
	"github.com/banshee-data/splat-tools/internal/monitoring"
	"github.com/banshee-data/splat-tools/internal/security"
	"github.com/banshee-data/splat-tools/internal/splat"
)

// Writer saves reports for a batch into Dir.
type Writer struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(fsys fsutil.FileSystem, dir string) *Writer {
	return &Writer{FS: fsys, Dir: dir}
}

// Write summarizes every successful result and writes, under w.Dir:
//
//	<tool>-summary.json    all summaries
//	<tool>-report.html     one chart per file
//	<input>.importance.png one histogram per file with scores
//
// Inputs sharing a base name get -2, -3... appended to their PNG name. It
// returns the paths written. Failed results are skipped.
func (w *Writer) Write(tool string, results []splat.Result) ([]string, error) {
	var sums []Summary
	for _, r := range results {
		if r.Err == nil {
			sums = append(sums, Summarize(r.Stats))
		}
	}
	if len(sums) == 0 {
		return nil, nil
	}

	if err := w.FS.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report dir: %w", err)
	}

	var written []string
	put := func(name string, data []byte) error {
		path, err := security.JoinWithin(w.Dir, security.SanitizeFilename(name))
		if err != nil {
			return err
		}
		if err := fsutil.WriteFileAtomic(w.FS, path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	js, err := json.MarshalIndent(sums, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := put(tool+"-summary.json", js); err != nil {
		return written, err
	}

	var page bytes.Buffer
	if err := WriteHTML(&page, tool+" importance report", sums); err != nil {
		return written, err
	}
	if err := put(tool+"-report.html", page.Bytes()); err != nil {
		return written, err
	}

	names := make(map[string]int, len(sums))
	for _, s := range sums {
		var png bytes.Buffer
		err := WriteHistogramPNG(&png, s)
		if errors.Is(err, ErrNoScores) {
			continue
		}
		if err != nil {
			monitoring.Logf("report: %s: %v", s.Input, err)
			continue
		}
		if err := put(pngName(names, s.Input), png.Bytes()); err != nil {
			return written, err
		}
	}
	return written, nil
}

// pngName returns the histogram file name for input, numbering repeats of
// the same base name in the order they are seen.
func pngName(seen map[string]int, input string) string {
	base := security.SanitizeFilename(filepath.Base(input))
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s-%d.importance.png", base, n)
	}
	return base + ".importance.png"
}
