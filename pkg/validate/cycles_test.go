package validate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/composeviz/pkg/compose"
)

func cyclesOf(t *testing.T, text string) [][]string {
	t.Helper()
	doc, err := compose.Load(text)
	require.NoError(t, err)
	return DetectCycles(doc)
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "None",
			text: "services:\n  a: {depends_on: [b]}\n  b: {}\n",
			want: [][]string{},
		},
		{
			name: "TwoNodes",
			text: "services:\n  a: {depends_on: [b]}\n  b: {depends_on: [a]}\n",
			want: [][]string{{"a", "b", "a"}},
		},
		{
			name: "BackEdgeIntoPath",
			text: "services:\n  a: {depends_on: [b]}\n  b: {depends_on: [c]}\n  c: {depends_on: [d]}\n  d: {depends_on: [b]}\n",
			want: [][]string{{"b", "c", "d", "b"}},
		},
		{
			name: "SelfLoop",
			text: "services:\n  a: {depends_on: [a]}\n",
			want: [][]string{{"a", "a"}},
		},
		{
			name: "MappingForm",
			text: "services:\n  a:\n    depends_on:\n      b: {condition: service_started}\n  b:\n    depends_on:\n      a: {}\n",
			want: [][]string{{"a", "b", "a"}},
		},
		{
			name: "DanglingIgnored",
			text: "services:\n  a: {depends_on: [ghost, b]}\n  b: {depends_on: [a]}\n",
			want: [][]string{{"a", "b", "a"}},
		},
		{
			name: "EveryDetectionReported",
			text: "services:\n  a: {depends_on: [b, c]}\n  b: {depends_on: [a]}\n  c: {depends_on: [a, b]}\n",
			want: [][]string{{"a", "b", "a"}, {"a", "c", "a"}},
		},
		{
			name: "ExploredNodeNotRevisited",
			text: "services:\n  a: {depends_on: [c]}\n  b: {depends_on: [c]}\n  c: {depends_on: [d]}\n  d: {depends_on: [c]}\n",
			want: [][]string{{"c", "d", "c"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cyclesOf(t, tt.text))
		})
	}
}

func TestDetectCyclesFirstRepeatedLast(t *testing.T) {
	r := Validate("services:\n  A: {image: x, depends_on: [B]}\n  B: {image: x, depends_on: [A]}\n")
	require.NotEmpty(t, r.Cycles)
	for _, c := range r.Cycles {
		assert.Equal(t, c[0], c[len(c)-1])
		assert.Contains(t, c, "A")
		assert.Contains(t, c, "B")
	}
}

func TestDetectCyclesDeepChain(t *testing.T) {
	const n = 20000
	var b strings.Builder
	b.WriteString("services:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  s%d: {depends_on: [s%d]}\n", i, (i+1)%n)
	}

	cycles := cyclesOf(t, b.String())

	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], n+1)
	assert.Equal(t, "s0", cycles[0][0])
	assert.Equal(t, "s0", cycles[0][n])
}
