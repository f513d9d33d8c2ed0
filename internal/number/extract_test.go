package number

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "numcheck/pkg/domain"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []id.CanonicalNumber
	}{
		{
			name:  "one per line",
			input: "+2348012345678\n+14155550123\n",
			want:  []id.CanonicalNumber{"2348012345678", "14155550123"},
		},
		{
			// Pinned fixture from the normalization design discussion: the
			// plus form and the bare form collapse; the trunk-zero form stays
			// a distinct fallback entry.
			name:  "plus and bare forms collapse, trunk zero stays distinct",
			input: "+2348012345678\n2348012345678\n08012345678",
			want:  []id.CanonicalNumber{"2348012345678", "8012345678"},
		},
		{
			name:  "comma and semicolon separated",
			input: "+2348012345678,+14155550123;+442079460958",
			want:  []id.CanonicalNumber{"2348012345678", "14155550123", "442079460958"},
		},
		{
			name:  "tab-delimited tabular text",
			input: "name\tphone\nalice\t+2348012345678\nbob\t+14155550123",
			want:  []id.CanonicalNumber{"2348012345678", "14155550123"},
		},
		{
			name:  "garbage tokens dropped silently",
			input: "+2348012345678\nnot-a-number\n12\n+14155550123",
			want:  []id.CanonicalNumber{"2348012345678", "14155550123"},
		},
		{
			name:  "input order preserved",
			input: "+14155550123\n+2348012345678",
			want:  []id.CanonicalNumber{"14155550123", "2348012345678"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []id.CanonicalNumber{},
		},
		{
			name:  "only garbage",
			input: "hello world\nfoo,bar",
			want:  []id.CanonicalNumber{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractText(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTextIdempotent(t *testing.T) {
	input := "+2348012345678, 08012345678\n+14155550123\n+2348012345678"
	first := ExtractText(input)
	second := ExtractText(input)
	assert.Equal(t, first, second)

	// Set membership does not change when the same numbers repeat.
	assert.Len(t, first, 3)
}

func TestTokenize(t *testing.T) {
	got := Tokenize("a b\tc\nd,e;f\n\n g ")
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, got)
}
