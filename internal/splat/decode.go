package splat

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/splat-tools/internal/fsutil"
)

// maxOpacityLogit stands in for an infinite logit; sigmoid of it is exactly
// 1 in float64 so a fully opaque alpha byte re-encodes to 255.
const maxOpacityLogit = 40

// DecodeToSource inverts EncodePoint as far as quantization allows. Color
// and alpha bytes decode to the centre of their quantization bucket and the
// rotation to a unit quaternion.
func DecodeToSource(r Record) SourcePoint {
	p := SourcePoint{
		X: float64(r.Position[0]),
		Y: float64(r.Position[1]),
		Z: float64(r.Position[2]),
	}
	for i := 0; i < 3; i++ {
		p.Scale[i] = math.Log(float64(r.Scale[i]))
		p.DC[i] = ((float64(r.Color[i])+0.5)/255 - 0.5) / SHC0
	}

	if a := r.Color[3]; a == 255 {
		p.Opacity = maxOpacityLogit
	} else {
		alpha := (float64(a) + 0.5) / 255
		p.Opacity = math.Log(alpha / (1 - alpha))
	}

	q := quat.Number{
		Real: (float64(r.Rot[0]) - 128) / 128,
		Imag: (float64(r.Rot[1]) - 128) / 128,
		Jmag: (float64(r.Rot[2]) - 128) / 128,
		Kmag: (float64(r.Rot[3]) - 128) / 128,
	}
	if n := quat.Abs(q); n > 0 {
		q = quat.Scale(1/n, q)
	}
	p.Rot = [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
	return p
}

// DecodeStream expands every record of an encoded stream into a SourcePoint,
// preserving stream order.
func DecodeStream(name string, data []byte) ([]SourcePoint, error) {
	n, err := CountRecords(name, len(data))
	if err != nil {
		return nil, err
	}
	points := make([]SourcePoint, n)
	for i := range points {
		points[i] = DecodeToSource(DecodeRecord(recordAt(data, i)))
	}
	return points, nil
}

// ExportFile decodes the stream at in and writes it to out as a Gaussian PLY.
func ExportFile(fsys fsutil.FileSystem, in, out string) (Stats, error) {
	st := Stats{Input: in}
	if err := checkStreamSize(fsys, in); err != nil {
		return st, err
	}
	data, err := fsys.ReadFile(in)
	if err != nil {
		return st, fmt.Errorf("read %s: %w", in, err)
	}
	points, err := DecodeStream(in, data)
	if err != nil {
		return st, err
	}
	var buf bytes.Buffer
	if err := WriteSource(&buf, points); err != nil {
		return st, fmt.Errorf("%s: %w", in, err)
	}
	if err := fsutil.WriteFileAtomic(fsys, out, buf.Bytes(), 0o644); err != nil {
		return st, fmt.Errorf("write %s: %w", out, err)
	}
	st.Output = out
	st.Points = len(points)
	st.Kept = len(points)
	st.Bytes = buf.Len()
	return st, nil
}
