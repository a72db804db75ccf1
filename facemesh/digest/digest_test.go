//go:build unit

package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_KnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"example string", "example_string", "9bfb55a8406617ff3e6767ec5d27fc6b5682c3a79c415ef6e084bf7d050273e6"},
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Compute(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, Size)
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Compute("héllo wörld"), Compute("héllo wörld"))
	assert.NotEqual(t, Compute("a"), Compute("b"))
}

func TestAlgorithm_Sum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Compute("x"), SHA256.Sum("x"))
	assert.Equal(t, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", BLAKE3.Sum(""))
	assert.Len(t, BLAKE3.Sum("example_string"), Size)
	assert.NotEqual(t, SHA256.Sum("example_string"), BLAKE3.Sum("example_string"))
	assert.Equal(t, SHA256.Sum("x"), Algorithm("md5").Sum("x"))
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", SHA256, false},
		{"sha256", SHA256, false},
		{" SHA256 ", SHA256, false},
		{"Blake3", BLAKE3, false},
		{"md5", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownAlgorithm)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, string(tt.want), got.String())
		})
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	fp := Fingerprint("sha256", "example_string")
	assert.Len(t, fp, 16)
	assert.True(t, IsHex(fp))
	assert.Equal(t, fp, Fingerprint("sha256", "example_string"))
	assert.NotEqual(t, fp, Fingerprint("sha256example_string"))
	assert.Equal(t, "ef46db3751d8e999", Fingerprint(""))
}

func TestIsHex(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHex("0123456789abcdefABCDEF"))
	assert.False(t, IsHex(""))
	assert.False(t, IsHex("xyz"))
	assert.False(t, IsHex("12 3"))
}

func TestHexValue(t *testing.T) {
	t.Parallel()

	v, ok := HexValue('f')
	assert.True(t, ok)
	assert.Equal(t, uint8(15), v)

	v, ok = HexValue('B')
	assert.True(t, ok)
	assert.Equal(t, uint8(11), v)

	_, ok = HexValue('g')
	assert.False(t, ok)
}
