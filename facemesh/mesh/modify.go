package mesh

import (
	"errors"
	"fmt"

	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyDigest is returned by Modify when no digest is supplied.
	ErrEmptyDigest = errors.New("empty digest")
	// ErrInvalidDigestChar is returned when a digest character is not a hex digit.
	ErrInvalidDigestChar = errors.New("invalid digest character")
)

// maxDigit is the largest hex digit value; it maps to a scale factor of 2.
const maxDigit = 15.0

// ScaleFactor maps a hex digit to a factor in [1, 2].
func ScaleFactor(c byte) (float64, error) {
	d, ok := digest.HexValue(c)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDigestChar, c)
	}

	return 1 + float64(d)/maxDigit, nil
}

// Modify returns a copy of m where vertex i is scaled uniformly by the
// factor of digest character i mod len(hexDigest). Faces are copied unchanged.
func Modify(m Mesh, hexDigest string) (Mesh, error) {
	if hexDigest == "" {
		return Mesh{}, ErrEmptyDigest
	}

	out := m.Clone()

	for i, v := range m.Vertices {
		f, err := ScaleFactor(hexDigest[i%len(hexDigest)])
		if err != nil {
			return Mesh{}, fmt.Errorf("vertex %d: %w", i, err)
		}

		out.Vertices[i] = FromVec(r3.Scale(f, v.Vec()))
	}

	return out, nil
}

// Generate hashes input with alg and applies the digest to the base mesh.
// It returns the mesh and the hex digest that produced it.
func Generate(input string, alg digest.Algorithm) (Mesh, string, error) {
	hexDigest := alg.Sum(input)

	m, err := Modify(Base(), hexDigest)
	if err != nil {
		return Mesh{}, "", err
	}

	return m, hexDigest, nil
}
