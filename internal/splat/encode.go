package splat

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/splat-tools/internal/fsutil"
)

// SHC0 is the zeroth-band real spherical harmonic, 1/(2*sqrt(pi)).
const SHC0 = 0.28209479177387814

// Stats summarises one file's pass through the encoder or downsampler.
type Stats struct {
	Input  string
	Output string
	Points int // points read
	Kept   int // points written
	Bytes  int // output size

	// Scores holds every point's importance in ranked (descending) order;
	// the first Kept entries belong to written points.
	Scores []float64
}

// Ratio returns the fraction of points kept.
func (s Stats) Ratio() float64 {
	if s.Points == 0 {
		return 0
	}
	return float64(s.Kept) / float64(s.Points)
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// quantize maps v*255-scaled channel values onto a byte: clipped to
// [0, 255] and truncated. NaN maps to 0.
func quantize(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// EncodeRotation normalizes q and maps each component from [-1, 1] onto a
// byte via q*128+128. A zero or non-finite norm is ErrDegenerateQuaternion.
func EncodeRotation(q [4]float64) ([4]uint8, error) {
	n := quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
	norm := quat.Abs(n)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return [4]uint8{}, ErrDegenerateQuaternion
	}
	u := quat.Scale(1/norm, n)
	return [4]uint8{
		quantize(u.Real*128 + 128),
		quantize(u.Imag*128 + 128),
		quantize(u.Jmag*128 + 128),
		quantize(u.Kmag*128 + 128),
	}, nil
}

// EncodeColor converts SH DC terms and an opacity logit into RGBA bytes.
func EncodeColor(dc [3]float64, opacity float64) [4]uint8 {
	return [4]uint8{
		quantize((0.5 + SHC0*dc[0]) * 255),
		quantize((0.5 + SHC0*dc[1]) * 255),
		quantize((0.5 + SHC0*dc[2]) * 255),
		quantize(sigmoid(opacity) * 255),
	}
}

// EncodePoint converts one source Gaussian into its 32-byte record form.
// Each log-scale axis is exponentiated on its own.
func EncodePoint(p SourcePoint) (Record, error) {
	rot, err := EncodeRotation(p.Rot)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Position: [3]float32{float32(p.X), float32(p.Y), float32(p.Z)},
		Scale: [3]float32{
			float32(math.Exp(p.Scale[0])),
			float32(math.Exp(p.Scale[1])),
			float32(math.Exp(p.Scale[2])),
		},
		Color: EncodeColor(p.DC, p.Opacity),
		Rot:   rot,
	}, nil
}

// Encode ranks points by SourceImportance, keeps the first lim.Keep(n) and
// returns their records concatenated in ranked order.
func Encode(points []SourcePoint, lim Limit) ([]byte, error) {
	out, _, err := encode(points, lim)
	return out, err
}

func encode(points []SourcePoint, lim Limit) ([]byte, []float64, error) {
	if err := lim.Validate(); err != nil {
		return nil, nil, err
	}
	order, scores := RankSource(points)
	keep := lim.Keep(len(points))

	out := make([]byte, keep*RecordSize)
	for k, idx := range order[:keep] {
		rec, err := EncodePoint(points[idx])
		if err != nil {
			return nil, nil, &PointError{Index: idx, Err: err}
		}
		rec.PutTo(out[k*RecordSize:])
	}
	return out, permute(scores, order), nil
}

func permute(scores []float64, order []int) []float64 {
	ranked := make([]float64, len(order))
	for i, idx := range order {
		ranked[i] = scores[idx]
	}
	return ranked
}

// EncodeFile loads a Gaussian PLY and encodes it. Nothing is written.
func EncodeFile(fsys fsutil.FileSystem, path string, lim Limit) ([]byte, Stats, error) {
	points, err := LoadSource(fsys, path)
	if err != nil {
		return nil, Stats{Input: path}, err
	}
	out, ranked, err := encode(points, lim)
	if err != nil {
		return nil, Stats{Input: path}, fmt.Errorf("%s: %w", path, err)
	}
	return out, Stats{
		Input:  path,
		Points: len(points),
		Kept:   len(out) / RecordSize,
		Bytes:  len(out),
		Scores: ranked,
	}, nil
}

// ConvertFile encodes the PLY at in and writes the stream to out. The
// output is written only after the whole stream has been built.
func ConvertFile(fsys fsutil.FileSystem, in, out string, lim Limit) (Stats, error) {
	data, st, err := EncodeFile(fsys, in, lim)
	if err != nil {
		return st, err
	}
	if err := fsutil.WriteFileAtomic(fsys, out, data, 0o644); err != nil {
		return st, fmt.Errorf("write %s: %w", out, err)
	}
	st.Output = out
	return st, nil
}
