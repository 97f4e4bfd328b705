package splat

import (
	"cmp"
	"math"
	"slices"
)

// Importance approximates a point's visual contribution: larger and more
// opaque points rank first. SourceImportance works in the log domain on raw
// PLY values; EncodedImportance works on the linear values stored in a
// record and must not be rewritten in terms of the other.

// SourceImportance is exp(s0+s1+s2) * sigmoid(opacity) for a PLY point.
func SourceImportance(p SourcePoint) float64 {
	return math.Exp(p.Scale[0]+p.Scale[1]+p.Scale[2]) / (1 + math.Exp(-p.Opacity))
}

// EncodedImportance is sx*sy*sz * a/255 for an encoded record. b must hold
// at least RecordSize bytes.
func EncodedImportance(b []byte) float64 {
	r := DecodeRecord(b)
	vol := float64(r.Scale[0]) * float64(r.Scale[1]) * float64(r.Scale[2])
	return vol * (float64(r.Color[3]) / 255)
}

// Rank returns the indices of scores ordered by descending score. Equal
// scores keep their input order and NaN scores sort last.
func Rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})
	return order
}

// RankSource ranks PLY points by SourceImportance. scores is indexed like
// points, not like order.
func RankSource(points []SourcePoint) (order []int, scores []float64) {
	scores = make([]float64, len(points))
	for i, p := range points {
		scores[i] = SourceImportance(p)
	}
	return Rank(scores), scores
}

// RankEncoded ranks the records of a .splat stream by EncodedImportance.
// The stream length must already be validated with CountRecords.
func RankEncoded(stream []byte) (order []int, scores []float64) {
	scores = make([]float64, len(stream)/RecordSize)
	for i := range scores {
		scores[i] = EncodedImportance(recordAt(stream, i))
	}
	return Rank(scores), scores
}
