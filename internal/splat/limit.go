package splat

import (
	"fmt"
	"math"
)

// DefaultEncodeRatio keeps every point when converting from PLY.
const DefaultEncodeRatio = 1.0

// DefaultDownsampleRatio keeps a quarter of the points (roughly 4x smaller files).
const DefaultDownsampleRatio = 0.25

// Limit selects how many ranked points survive truncation. When MaxPoints
// is set it replaces Ratio entirely.
type Limit struct {
	Ratio     float64
	MaxPoints *int
}

// KeepAll is the no-op limit: every point survives, reordered by importance.
func KeepAll() Limit { return Limit{Ratio: 1} }

// KeepRatio keeps floor(n*r) points.
func KeepRatio(r float64) Limit { return Limit{Ratio: r} }

// KeepMax keeps at most m points regardless of ratio.
func KeepMax(m int) Limit { return Limit{Ratio: 1, MaxPoints: &m} }

// Validate rejects ratios outside (0, 1] and negative point counts.
func (l Limit) Validate() error {
	if l.MaxPoints != nil {
		if *l.MaxPoints < 0 {
			return fmt.Errorf("%w: max points must be non-negative, got %d", ErrInvalidLimit, *l.MaxPoints)
		}
		return nil
	}
	if math.IsNaN(l.Ratio) || l.Ratio <= 0 || l.Ratio > 1 {
		return fmt.Errorf("%w: ratio must be in (0, 1], got %g", ErrInvalidLimit, l.Ratio)
	}
	return nil
}

// Keep returns the number of points to retain out of n, clamped to [0, n].
func (l Limit) Keep(n int) int {
	var keep int
	if l.MaxPoints != nil {
		keep = *l.MaxPoints
	} else {
		f := math.Floor(float64(n) * l.Ratio)
		switch {
		case math.IsNaN(f) || f <= 0:
			return 0
		case f >= float64(n):
			return n
		}
		keep = int(f)
	}
	if keep < 0 {
		return 0
	}
	if keep > n {
		return n
	}
	return keep
}

// Truncated reports whether the limit drops any of n points.
func (l Limit) Truncated(n int) bool { return l.Keep(n) < n }

func (l Limit) String() string {
	if l.MaxPoints != nil {
		return fmt.Sprintf("max-points=%d", *l.MaxPoints)
	}
	return fmt.Sprintf("ratio=%g", l.Ratio)
}
