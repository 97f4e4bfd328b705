package splat

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// identityRot is a valid unnormalized quaternion for fixtures.
var identityRot = [4]float64{1, 0, 0, 0}

// testPoint builds a source point with the given log-scales and opacity.
func testPoint(x float64, s0, s1, s2, opacity float64) SourcePoint {
	return SourcePoint{
		X: x, Y: -x, Z: 2 * x,
		Scale:   [3]float64{s0, s1, s2},
		DC:      [3]float64{0.1, -0.2, 0.3},
		Opacity: opacity,
		Rot:     identityRot,
	}
}

// testRecord builds an encoded record whose importance is sx*sy*sz*a/255.
func testRecord(id int, sx, sy, sz float32, a uint8) Record {
	return Record{
		Position: [3]float32{float32(id), float32(id) / 2, -float32(id)},
		Scale:    [3]float32{sx, sy, sz},
		Color:    [4]uint8{uint8(id), uint8(id >> 8), 7, a},
		Rot:      [4]uint8{255, 128, 128, 128},
	}
}

// streamOf concatenates records into a .splat stream.
func streamOf(recs ...Record) []byte {
	var out []byte
	for _, r := range recs {
		out = r.AppendTo(out)
	}
	return out
}

// plyOf encodes points as a binary Gaussian PLY.
func plyOf(t *testing.T, points []SourcePoint) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteSource(&buf, points))
	return buf.Bytes()
}

// sortedRecords splits a stream into records and sorts them bytewise, so
// two streams can be compared as unordered sets.
func sortedRecords(t *testing.T, stream []byte) []string {
	t.Helper()
	require.Zero(t, len(stream)%RecordSize, "stream length %d", len(stream))
	recs := make([]string, 0, len(stream)/RecordSize)
	for i := 0; i+RecordSize <= len(stream); i += RecordSize {
		recs = append(recs, string(stream[i:i+RecordSize]))
	}
	sort.Strings(recs)
	return recs
}
