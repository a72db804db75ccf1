package mesh

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrFaceIndexOutOfRange is returned when a face references a missing vertex.
var ErrFaceIndexOutOfRange = errors.New("face index out of range")

// Vertex is a point in 3D space (x, y, z).
type Vertex [3]float64

// Face is a triangle given as three indices into Mesh.Vertices.
type Face [3]int

// Mesh is a triangle mesh.
type Mesh struct {
	Vertices []Vertex `json:"vertices"`
	Faces    []Face   `json:"faces"`
}

var baseVertices = [...]Vertex{
	{0, 0, 0},
	{1, 1, 1},
	{-1, 1, 1},
	{-1, -1, 1},
	{1, -1, 1},
	{0, 0, 2},
	{0.5, 0.5, 0.5},
	{-0.5, 0.5, 0.5},
	{-0.5, -0.5, 0.5},
	{0.5, -0.5, 0.5},
}

var baseFaces = [...]Face{
	{0, 1, 2},
	{0, 2, 3},
	{0, 3, 4},
	{0, 4, 1},
	{1, 2, 5},
	{2, 3, 5},
	{3, 4, 5},
	{4, 1, 5},
	{6, 7, 8},
	{6, 8, 9},
	{0, 6, 1},
	{0, 7, 2},
	{0, 8, 3},
	{0, 9, 4},
}

// Base returns a fresh copy of the base face mesh.
func Base() Mesh {
	return Mesh{Vertices: baseVertices[:], Faces: baseFaces[:]}.Clone()
}

// Vec converts v to a gonum vector.
func (v Vertex) Vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// FromVec converts a gonum vector to a Vertex.
func FromVec(p r3.Vec) Vertex {
	return Vertex{p.X, p.Y, p.Z}
}

// Validate checks that every face index addresses an existing vertex.
func (m Mesh) Validate() error {
	n := len(m.Vertices)

	for fi, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrFaceIndexOutOfRange, fi, idx, n)
			}
		}
	}

	return nil
}

// Clone returns a deep copy of m.
func (m Mesh) Clone() Mesh {
	return Mesh{
		Vertices: append([]Vertex(nil), m.Vertices...),
		Faces:    append([]Face(nil), m.Faces...),
	}
}

// Triangle returns the positions of face i.
func (m Mesh) Triangle(i int) r3.Triangle {
	f := m.Faces[i]

	return r3.Triangle{m.Vertices[f[0]].Vec(), m.Vertices[f[1]].Vec(), m.Vertices[f[2]].Vec()}
}

// Bounds returns the axis-aligned bounding box of all vertices.
// An empty mesh yields the zero box.
func (m Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}

	lo := m.Vertices[0].Vec()
	hi := lo

	for _, v := range m.Vertices[1:] {
		p := v.Vec()
		lo = r3.Vec{X: min(lo.X, p.X), Y: min(lo.Y, p.Y), Z: min(lo.Z, p.Z)}
		hi = r3.Vec{X: max(hi.X, p.X), Y: max(hi.Y, p.Y), Z: max(hi.Z, p.Z)}
	}

	return r3.Box{Min: lo, Max: hi}
}
