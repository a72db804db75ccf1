//go:build unit

package constant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMetricLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "short label kept", input: "generate_3d_face", want: "generate_3d_face"},
		{name: "limit kept", input: strings.Repeat("x", MaxMetricLabelLength), want: strings.Repeat("x", MaxMetricLabelLength)},
		{name: "over limit truncated", input: strings.Repeat("y", MaxMetricLabelLength+1), want: strings.Repeat("y", MaxMetricLabelLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, SanitizeMetricLabel(tt.input))
		})
	}
}
