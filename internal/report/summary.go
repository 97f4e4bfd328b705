// Package report turns per-file conversion stats into importance
// summaries, a PNG histogram, an HTML chart page and Prometheus metrics.
package report

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/splat-tools/internal/splat"
)

// Summary describes the importance distribution of one file.
type Summary struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Points int    `json:"points"`
	Kept   int    `json:"kept"`
	Bytes  int    `json:"bytes"`

	// Finite counts scores that are neither NaN nor infinite; the
	// statistics below are computed over those only.
	Finite int     `json:"finite"`
	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`

	// KeptMass is the share of total finite importance carried by the
	// kept points.
	KeptMass float64 `json:"kept_mass"`

	scores []float64
}

// Summarize computes the importance statistics of st. Stats without
// scores yield a summary with zeroed statistics.
func Summarize(st splat.Stats) Summary {
	s := Summary{
		Input:  st.Input,
		Output: st.Output,
		Points: st.Points,
		Kept:   st.Kept,
		Bytes:  st.Bytes,
		scores: st.Scores,
	}

	sorted := finite(st.Scores)
	s.Finite = len(sorted)
	if len(sorted) == 0 {
		return s
	}
	slices.Sort(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P10 = stat.Quantile(0.1, stat.Empirical, sorted, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)

	// Sums run on scores divided by the largest magnitude; finite scores
	// near MaxFloat64 would otherwise overflow to +Inf.
	scale := math.Max(math.Abs(s.Min), math.Abs(s.Max))
	if scale == 0 {
		return s
	}
	norm := divided(sorted, scale)
	s.Mean = stat.Mean(norm, nil) * scale

	kept := min(st.Kept, len(st.Scores))
	if total := floats.Sum(norm); total > 0 {
		s.KeptMass = floats.Sum(divided(finite(st.Scores[:kept]), scale)) / total
	}
	return s
}

func divided(v []float64, by float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / by
	}
	return out
}

func finite(scores []float64) []float64 {
	out := make([]float64, 0, len(scores))
	for _, v := range scores {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Bin is one log10-importance interval with the number of kept and
// dropped points whose score falls in it.
type Bin struct {
	Lo, Hi  float64
	Kept    int
	Dropped int
}

// Bins splits the positive finite scores of s into n equal-width bins of
// log10 importance. Nil is returned when there is nothing to bin.
func (s Summary) Bins(n int) []Bin {
	if n < 1 {
		n = 1
	}
	logs, kept := s.logScores()
	if len(logs) == 0 {
		return nil
	}

	lo, hi := floats.Min(logs), floats.Max(logs)
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lo = lo + float64(i)*width
		bins[i].Hi = lo + float64(i+1)*width
	}
	bins[n-1].Hi = hi

	for i, v := range logs {
		idx := n - 1
		if width > 0 {
			idx = min(int((v-lo)/width), n-1)
		}
		if kept[i] {
			bins[idx].Kept++
		} else {
			bins[idx].Dropped++
		}
	}
	return bins
}

// logScores returns log10 of every positive finite score along with
// whether that point was kept.
func (s Summary) logScores() ([]float64, []bool) {
	logs := make([]float64, 0, len(s.scores))
	kept := make([]bool, 0, len(s.scores))
	for i, v := range s.scores {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		logs = append(logs, math.Log10(v))
		kept = append(kept, i < s.Kept)
	}
	return logs, kept
}
