package summarize

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscast/internal/utils/text"
)

func runeLengths(chunks []string) []int {
	lens := make([]int, len(chunks))
	for i, c := range chunks {
		lens[i] = text.CountRunes(c)
	}
	return lens
}

func TestChunker_Fixed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		size     int
		wantLens []int
	}{
		{name: "empty body", body: "", size: 1000, wantLens: []int{}},
		{name: "shorter than chunk", body: strings.Repeat("a", 10), size: 1000, wantLens: []int{10}},
		{name: "exact multiple", body: strings.Repeat("a", 2000), size: 1000, wantLens: []int{1000, 1000}},
		{name: "remainder", body: strings.Repeat("a", 2500), size: 1000, wantLens: []int{1000, 1000, 500}},
		{name: "multi-byte runes", body: strings.Repeat("é", 7), size: 3, wantLens: []int{3, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := NewChunker(tt.size, ChunkModeFixed).Chunk(tt.body)

			if diff := cmp.Diff(tt.wantLens, runeLengths(chunks)); diff != "" {
				t.Errorf("chunk lengths mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.body, strings.Join(chunks, ""))
		})
	}
}

func TestChunker_Fixed_PartitionProperty(t *testing.T) {
	const size = 7
	chunker := NewChunker(size, ChunkModeFixed)

	for l := 1; l <= 60; l++ {
		runes := make([]rune, l)
		for i := range runes {
			runes[i] = []rune("aé")[i%2]
		}
		body := string(runes)
		chunks := chunker.Chunk(body)

		require.Len(t, chunks, (l+size-1)/size, "length %d", l)
		require.Equal(t, body, strings.Join(chunks, ""), "length %d", l)
		for i, c := range chunks[:len(chunks)-1] {
			require.Equal(t, size, text.CountRunes(c), "length %d chunk %d", l, i)
		}
	}
}

func TestChunker_Sentence(t *testing.T) {
	tests := []struct {
		name string
		body string
		size int
		want []string
	}{
		{
			name: "packs sentences greedily",
			body: "One. Two. Three. Four.",
			size: 10,
			want: []string{"One. Two. ", "Three. ", "Four."},
		},
		{
			name: "oversized sentence kept whole",
			body: "Short. This sentence is much longer than the limit. End.",
			size: 10,
			want: []string{"Short. ", "This sentence is much longer than the limit. ", "End."},
		},
		{
			name: "no delimiter",
			body: "no sentence boundary here",
			size: 5,
			want: []string{"no sentence boundary here"},
		},
		{
			name: "trailing delimiter",
			body: "A. B. ",
			size: 100,
			want: []string{"A. B. "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := NewChunker(tt.size, ChunkModeSentence).Chunk(tt.body)

			if diff := cmp.Diff(tt.want, chunks); diff != "" {
				t.Errorf("chunks mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.body, strings.Join(chunks, ""))
		})
	}
}

func TestChunker_EmptyBodyYieldsNoChunks(t *testing.T) {
	assert.Empty(t, NewChunker(10, ChunkModeFixed).Chunk(""))
	assert.Empty(t, NewChunker(10, ChunkModeSentence).Chunk(""))
}

func TestNewChunker_DefaultMode(t *testing.T) {
	assert.Equal(t, ChunkModeFixed, NewChunker(5, "").Mode)
}
