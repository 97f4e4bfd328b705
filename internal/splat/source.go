package splat

import (
	"bytes"
	"fmt"
	"io"

	"github.com/EliCDavis/polyform/formats/ply"
	"github.com/EliCDavis/polyform/modeling"
	"github.com/EliCDavis/vector/vector3"

	"github.com/banshee-data/splat-tools/internal/fsutil"
)

// SourceFields lists the vertex properties a Gaussian PLY must provide, in
// the order they are consumed.
var SourceFields = []string{
	"x", "y", "z",
	"scale_0", "scale_1", "scale_2",
	"f_dc_0", "f_dc_1", "f_dc_2",
	"opacity",
	"rot_0", "rot_1", "rot_2", "rot_3",
}

// Attribute names polyform gives the Gaussian vertex properties it
// recognises.
const (
	scaleAttribute    = "Scale"
	fdcAttribute      = "FDC"
	opacityAttribute  = "Opacity"
	rotationAttribute = "Rotation"
)

type component struct {
	attr  string
	width int
	index int
}

// groupedFields maps a PLY property to its slot in a vector attribute.
var groupedFields = map[string]component{
	"x":       {modeling.PositionAttribute, 3, 0},
	"y":       {modeling.PositionAttribute, 3, 1},
	"z":       {modeling.PositionAttribute, 3, 2},
	"scale_0": {scaleAttribute, 3, 0},
	"scale_1": {scaleAttribute, 3, 1},
	"scale_2": {scaleAttribute, 3, 2},
	"f_dc_0":  {fdcAttribute, 3, 0},
	"f_dc_1":  {fdcAttribute, 3, 1},
	"f_dc_2":  {fdcAttribute, 3, 2},
	"opacity": {opacityAttribute, 1, 0},
	"rot_0":   {rotationAttribute, 4, 0},
	"rot_1":   {rotationAttribute, 4, 1},
	"rot_2":   {rotationAttribute, 4, 2},
	"rot_3":   {rotationAttribute, 4, 3},
}

// SourcePoint is one Gaussian as stored in a training PLY: log-domain
// scales, spherical-harmonic DC color, opacity logit and an unnormalized
// quaternion kept in rot_0..rot_3 order.
type SourcePoint struct {
	X, Y, Z float64
	Scale   [3]float64
	DC      [3]float64
	Opacity float64
	Rot     [4]float64
}

// SourceFromMesh extracts the Gaussian points of a decoded PLY mesh. path
// is used only to label errors.
func SourceFromMesh(path string, mesh modeling.Mesh) ([]SourcePoint, error) {
	view := mesh.View()
	cols := make([][]float64, len(SourceFields))
	for i, name := range SourceFields {
		col, ok := meshColumn(view, name)
		if !ok {
			return nil, &MissingFieldError{Path: path, Field: name}
		}
		if i > 0 && len(col) != len(cols[0]) {
			return nil, fmt.Errorf("%s: field %q has %d values, want %d", path, name, len(col), len(cols[0]))
		}
		cols[i] = col
	}

	points := make([]SourcePoint, len(cols[0]))
	for i := range points {
		points[i] = SourcePoint{
			X: cols[0][i], Y: cols[1][i], Z: cols[2][i],
			Scale:   [3]float64{cols[3][i], cols[4][i], cols[5][i]},
			DC:      [3]float64{cols[6][i], cols[7][i], cols[8][i]},
			Opacity: cols[9][i],
			Rot:     [4]float64{cols[10][i], cols[11][i], cols[12][i], cols[13][i]},
		}
	}
	return points, nil
}

// meshColumn finds field either as a scalar attribute named after the PLY
// property or as one component of the vector attribute it was grouped into.
func meshColumn(view modeling.MeshView, field string) ([]float64, bool) {
	if col, ok := view.Float1Data[field]; ok {
		return col, true
	}
	c, ok := groupedFields[field]
	if !ok {
		return nil, false
	}

	switch c.width {
	case 1:
		col, ok := view.Float1Data[c.attr]
		return col, ok
	case 3:
		vecs, ok := view.Float3Data[c.attr]
		if !ok {
			return nil, false
		}
		col := make([]float64, len(vecs))
		for i, v := range vecs {
			col[i] = [3]float64{v.X(), v.Y(), v.Z()}[c.index]
		}
		return col, true
	case 4:
		vecs, ok := view.Float4Data[c.attr]
		if !ok {
			return nil, false
		}
		col := make([]float64, len(vecs))
		for i, v := range vecs {
			col[i] = [4]float64{v.X(), v.Y(), v.Z(), v.W()}[c.index]
		}
		return col, true
	}
	return nil, false
}

// ReadSource decodes Gaussian points from a PLY stream.
func ReadSource(path string, r io.Reader) ([]SourcePoint, error) {
	mesh, err := ply.ReadMesh(r)
	if err != nil {
		return nil, fmt.Errorf("%s: read ply: %w", path, err)
	}
	return SourceFromMesh(path, *mesh)
}

// LoadSource reads and decodes a Gaussian PLY file from fsys.
func LoadSource(fsys fsutil.FileSystem, path string) ([]SourcePoint, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return ReadSource(path, bytes.NewReader(data))
}

// SourceMesh builds a point cloud carrying points as a position attribute
// plus one scalar attribute per remaining SourceFields property.
func SourceMesh(points []SourcePoint) modeling.Mesh {
	positions := make([]vector3.Float64, len(points))
	scalars := make(map[string][]float64, len(SourceFields)-3)
	for _, name := range SourceFields[3:] {
		scalars[name] = make([]float64, len(points))
	}
	for i, p := range points {
		positions[i] = vector3.New(p.X, p.Y, p.Z)
		vals := [...]float64{
			p.Scale[0], p.Scale[1], p.Scale[2],
			p.DC[0], p.DC[1], p.DC[2],
			p.Opacity,
			p.Rot[0], p.Rot[1], p.Rot[2], p.Rot[3],
		}
		for j, name := range SourceFields[3:] {
			scalars[name][i] = vals[j]
		}
	}
	return modeling.NewPointCloud(
		nil,
		map[string][]vector3.Float64{modeling.PositionAttribute: positions},
		nil,
		scalars,
	)
}

// WriteSource writes points as a binary Gaussian PLY.
func WriteSource(w io.Writer, points []SourcePoint) error {
	return ply.WriteBinary(w, SourceMesh(points))
}
