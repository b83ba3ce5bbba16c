package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBatch(t *testing.T) {
	got := FormatBatch([]string{"a", "b\nc"})
	assert.Equal(t, "@@NODE_START_1@@\na\n@@NODE_END_1@@\n\n@@NODE_START_2@@\nb\nc\n@@NODE_END_2@@", got)
}

func TestParseBatch(t *testing.T) {
	tests := []struct {
		name     string
		response string
		n        int
		want     []string
		missing  []int
	}{
		{
			name:     "round trip",
			response: FormatBatch([]string{"one", "two\nlines", "three"}),
			n:        3,
			want:     []string{"one", "two\nlines", "three"},
		},
		{
			name:     "out of order with chatter",
			response: "Here you go:\n@@NODE_START_2@@ B @@NODE_END_2@@\n@@NODE_START_1@@\nA\n@@NODE_END_1@@",
			n:        2,
			want:     []string{"A", "B"},
		},
		{
			name:     "mismatched end marker ignored",
			response: "@@NODE_START_1@@\nA\n@@NODE_END_2@@",
			n:        1,
			missing:  []int{0},
		},
		{
			name:     "bracket fallback",
			response: "[1] Hello\n[2]   World  \nnoise",
			n:        2,
			want:     []string{"Hello", "World"},
		},
		{
			name:     "missing and out of range",
			response: FormatBatch([]string{"x", "y", "z"}),
			n:        2,
			want:     []string{"x", "y"},
		},
		{
			name:     "duplicate keeps first",
			response: "@@NODE_START_1@@\nfirst\n@@NODE_END_1@@\n@@NODE_START_1@@\nsecond\n@@NODE_END_1@@",
			n:        2,
			want:     []string{"first", ""},
			missing:  []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := ParseBatch(tt.response, tt.n)
			require.Len(t, items, tt.n)
			for _, i := range tt.missing {
				assert.ErrorIs(t, items[i].Err, ErrBatchItemMissing)
			}
			for i, want := range tt.want {
				assert.Equal(t, want, items[i].Text, "item %d", i)
			}
		})
	}
}
