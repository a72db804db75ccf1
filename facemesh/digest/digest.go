package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Size is the length in hex characters of every digest produced by this package.
const Size = 64

// ErrUnknownAlgorithm is returned by ParseAlgorithm for unsupported names.
var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// Algorithm names a supported hash function.
type Algorithm string

const (
	// SHA256 is the default algorithm.
	SHA256 Algorithm = "sha256"
	// BLAKE3 uses the 256-bit BLAKE3 output.
	BLAKE3 Algorithm = "blake3"
)

// Algorithms lists every supported algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{SHA256, BLAKE3}
}

// ParseAlgorithm resolves name case-insensitively. An empty name selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case BLAKE3:
		return BLAKE3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// String returns the algorithm name.
func (a Algorithm) String() string {
	return string(a)
}

// Sum returns the lowercase hex digest of input's UTF-8 bytes.
// Unknown algorithms fall back to SHA256.
func (a Algorithm) Sum(input string) string {
	var sum [32]byte

	switch a {
	case BLAKE3:
		sum = blake3.Sum256([]byte(input))
	default:
		sum = sha256.Sum256([]byte(input))
	}

	return hex.EncodeToString(sum[:])
}

// Compute returns the lowercase hex SHA-256 digest of input. It never fails.
func Compute(input string) string {
	return SHA256.Sum(input)
}

// Fingerprint returns a 16-character hex xxhash64 of parts joined by NUL.
// It is not collision resistant and must not be used to derive meshes.
func Fingerprint(parts ...string) string {
	s := strconv.FormatUint(xxhash.Sum64String(strings.Join(parts, "\x00")), 16)

	return strings.Repeat("0", 16-len(s)) + s
}

// IsHex reports whether s is non-empty and consists only of hex digits.
func IsHex(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if _, ok := HexValue(s[i]); !ok {
			return false
		}
	}

	return true
}

// HexValue returns the numeric value of a single hex digit, upper or lower case.
func HexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
