package mesh

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Format is a mesh serialisation format.
type Format string

const (
	// FormatJSON is the {"vertices", "faces"} document served over HTTP.
	FormatJSON Format = "json"
	// FormatOBJ is Wavefront OBJ with 1-based face indices.
	FormatOBJ Format = "obj"
	// FormatSTL is ASCII STL with one facet per face.
	FormatSTL Format = "stl"
)

// stlSolidName names the single solid in STL output.
const stlSolidName = "facemesh"

// ParseFormat resolves name case-insensitively. An empty name selects JSON.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatOBJ, FormatSTL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatOBJ:
		return "model/obj"
	case FormatSTL:
		return "model/stl"
	default:
		return "application/json"
	}
}

// Write serialises m to w in format f.
func Write(w io.Writer, m Mesh, f Format) error {
	switch f {
	case FormatJSON:
		return json.NewEncoder(w).Encode(m)
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatSTL:
		return WriteSTL(w, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// WriteOBJ writes m as Wavefront OBJ. OBJ face indices are 1-based.
func WriteOBJ(w io.Writer, m Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
	}

	for _, f := range m.Faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}

	return bw.Flush()
}

// WriteSTL writes m as ASCII STL with per-facet unit normals.
// Degenerate facets get a zero normal.
func WriteSTL(w io.Writer, m Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "solid %s\n", stlSolidName)

	for i := range m.Faces {
		t := m.Triangle(i)
		n := facetNormal(t)

		fmt.Fprintf(bw, "  facet normal %s\n", formatVec(n))
		bw.WriteString("    outer loop\n")

		for _, p := range t {
			fmt.Fprintf(bw, "      vertex %s\n", formatVec(p))
		}

		bw.WriteString("    endloop\n")
		bw.WriteString("  endfacet\n")
	}

	fmt.Fprintf(bw, "endsolid %s\n", stlSolidName)

	return bw.Flush()
}

func facetNormal(t r3.Triangle) r3.Vec {
	n := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}

	return r3.Unit(n)
}

func formatVec(p r3.Vec) string {
	return formatFloat(p.X) + " " + formatFloat(p.Y) + " " + formatFloat(p.Z)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
