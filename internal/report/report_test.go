package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/splat-tools/internal/fsutil"
	"github.com/banshee-data/splat-tools/internal/splat"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func rankedStats() splat.Stats {
	return splat.Stats{
		Input:  "garden.splat",
		Output: "garden.splat",
		Points: 5,
		Kept:   2,
		Bytes:  2 * splat.RecordSize,
		Scores: []float64{100, 10, 1, 0.1, math.NaN()},
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	got := Summarize(rankedStats())
	want := Summary{
		Input:    "garden.splat",
		Output:   "garden.splat",
		Points:   5,
		Kept:     2,
		Bytes:    64,
		Finite:   4,
		Min:      0.1,
		P10:      0.1,
		Median:   1,
		P90:      100,
		Max:      100,
		Mean:     111.1 / 4,
		KeptMass: 110 / 111.1,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreUnexported(Summary{}), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_NoScores(t *testing.T) {
	t.Parallel()

	s := Summarize(splat.Stats{Input: "empty.splat"})
	assert.Zero(t, s.Finite)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.KeptMass)
	assert.Nil(t, s.Bins(10))

	s = Summarize(splat.Stats{Scores: []float64{math.NaN(), math.Inf(1)}, Points: 2, Kept: 1})
	assert.Zero(t, s.Finite)
}

func TestSummary_Bins(t *testing.T) {
	t.Parallel()

	bins := Summarize(rankedStats()).Bins(3)
	require.Len(t, bins, 3)

	assert.InDelta(t, -1.0, bins[0].Lo, 1e-12)
	assert.InDelta(t, 2.0, bins[2].Hi, 1e-12)
	assert.Equal(t, Bin{Lo: bins[0].Lo, Hi: bins[0].Hi, Dropped: 1}, bins[0])
	assert.Equal(t, 1, bins[1].Dropped)
	assert.Equal(t, 0, bins[1].Kept)
	assert.Equal(t, 2, bins[2].Kept)
	assert.Equal(t, 0, bins[2].Dropped)
}

func TestSummary_BinsSingleValue(t *testing.T) {
	t.Parallel()

	s := Summarize(splat.Stats{Points: 3, Kept: 3, Scores: []float64{5, 5, 5}})
	bins := s.Bins(4)
	require.Len(t, bins, 4)
	assert.Equal(t, 3, bins[3].Kept)
}

func TestWriteHistogramPNG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHistogramPNG(&buf, Summarize(rankedStats())))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output is not a PNG")

	err := WriteHistogramPNG(&buf, Summarize(splat.Stats{Scores: []float64{0, -1}}))
	assert.ErrorIs(t, err, ErrNoScores)
}

func TestWriteHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sums := []Summary{Summarize(rankedStats()), Summarize(splat.Stats{Input: "bare.splat"})}
	require.NoError(t, WriteHTML(&buf, "splat-downsample importance report", sums))

	html := buf.String()
	assert.Contains(t, html, "splat-downsample importance report")
	assert.Contains(t, html, "garden.splat")
	assert.Contains(t, html, "bare.splat")
	assert.Contains(t, html, "echarts")
}

func TestWriter_Write(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	w := NewWriter(mfs, "/reports")

	results := []splat.Result{
		{Job: splat.Job{Input: "scans/garden.splat"}, Stats: rankedStats()},
		{Job: splat.Job{Input: "scans/broken.splat"}, Err: splat.ErrFormat},
	}
	results[0].Stats.Input = "scans/garden.splat"

	paths, err := w.Write("splat-downsample", results)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/reports/splat-downsample-summary.json",
		"/reports/splat-downsample-report.html",
		"/reports/garden.splat.importance.png",
	}, paths)

	png, err := mfs.ReadFile("/reports/garden.splat.importance.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	js, err := mfs.ReadFile("/reports/splat-downsample-summary.json")
	require.NoError(t, err)
	assert.Contains(t, string(js), `"input": "scans/garden.splat"`)
	assert.NotContains(t, string(js), "broken")
	assert.Empty(t, mfs.TempFiles())
}

func TestWriter_NothingToReport(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	paths, err := NewWriter(mfs, "/reports").Write("ply2splat", []splat.Result{{Err: splat.ErrFormat}})
	require.NoError(t, err)
	assert.Empty(t, paths)
	assert.False(t, mfs.Exists("/reports"))
}

func TestSummarize_LargeFiniteScores(t *testing.T) {
	t.Parallel()

	st := splat.Stats{Input: "huge.splat", Points: 2, Kept: 1, Scores: []float64{1e308, 1e308}}
	s := Summarize(st)
	assert.Equal(t, 1e308, s.Mean)
	assert.InDelta(t, 0.5, s.KeptMass, 1e-12)

	mfs := fsutil.NewMemoryFileSystem()
	_, err := NewWriter(mfs, "/reports").Write("ply2splat", []splat.Result{{Job: splat.Job{Input: "huge.ply"}, Stats: st}})
	require.NoError(t, err)
	js, err := mfs.ReadFile("/reports/ply2splat-summary.json")
	require.NoError(t, err)
	assert.Contains(t, string(js), `"mean": 1e+308`)
}

func TestWriter_SameBaseNameInBatch(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	a, b := rankedStats(), rankedStats()
	a.Input, b.Input = "east/x.splat", "west/x.splat"
	b.Scores = []float64{3, 2, 1}

	paths, err := NewWriter(mfs, "/reports").Write("splat-downsample", []splat.Result{{Stats: a}, {Stats: b}})
	require.NoError(t, err)
	assert.Contains(t, paths, "/reports/x.splat.importance.png")
	assert.Contains(t, paths, "/reports/x.splat-2.importance.png")

	first, err := mfs.ReadFile("/reports/x.splat.importance.png")
	require.NoError(t, err)
	second, err := mfs.ReadFile("/reports/x.splat-2.importance.png")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestMetrics_Observe(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.Observe("splat-downsample", []splat.Result{
		{Stats: splat.Stats{Points: 100, Kept: 25, Bytes: 800}},
		{Stats: splat.Stats{Points: 40, Kept: 10, Bytes: 320}},
		{Err: splat.ErrFormat},
	}, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.files.WithLabelValues("splat-downsample", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("splat-downsample", "error")))
	assert.Equal(t, 140.0, testutil.ToFloat64(m.pointsIn.WithLabelValues("splat-downsample")))
	assert.Equal(t, 35.0, testutil.ToFloat64(m.pointsKept.WithLabelValues("splat-downsample")))
	assert.Equal(t, 1120.0, testutil.ToFloat64(m.bytesOut.WithLabelValues("splat-downsample")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.duration.WithLabelValues("splat-downsample")))
	assert.Positive(t, testutil.ToFloat64(m.lastRun.WithLabelValues("splat-downsample")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.Observe("ply2splat", []splat.Result{{Stats: splat.Stats{Points: 3, Kept: 3, Bytes: 96}}}, time.Second)

	path := filepath.Join(t.TempDir(), "splat.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE splat_files_processed_total counter")
	assert.Contains(t, text, `splat_files_processed_total{status="ok",tool="ply2splat"} 1`)
	assert.Contains(t, text, `splat_bytes_written_total{tool="ply2splat"} 96`)
	assert.False(t, strings.Contains(text, `status="error"`))
}
