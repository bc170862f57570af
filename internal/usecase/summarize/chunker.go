package summarize

import (
	"strings"

	"newscast/internal/utils/text"
)

const sentenceDelimiter = ". "

// Chunker splits an article body into ordered chunks whose concatenation is the body.
type Chunker struct {
	MaxLength int
	Mode      ChunkMode
}

// NewChunker returns a Chunker producing chunks of at most maxLength characters
// (sentence mode keeps an oversized sentence whole).
func NewChunker(maxLength int, mode ChunkMode) Chunker {
	if mode == "" {
		mode = ChunkModeFixed
	}
	return Chunker{MaxLength: maxLength, Mode: mode}
}

// Chunk splits body. An empty body yields no chunks.
func (c Chunker) Chunk(body string) []string {
	if body == "" {
		return nil
	}
	if c.MaxLength < 1 {
		return []string{body}
	}
	if c.Mode == ChunkModeSentence {
		return c.chunkSentences(body)
	}
	return c.chunkFixed(body)
}

// chunkFixed cuts every MaxLength runes; only the last chunk may be shorter.
func (c Chunker) chunkFixed(body string) []string {
	chunks := make([]string, 0, text.CountRunes(body)/c.MaxLength+1)
	start, n := 0, 0
	for pos := range body {
		if n == c.MaxLength {
			chunks = append(chunks, body[start:pos])
			start, n = pos, 0
		}
		n++
	}
	return append(chunks, body[start:])
}

// chunkSentences greedily packs sentences while the chunk stays within MaxLength.
func (c Chunker) chunkSentences(body string) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, sentence := range strings.SplitAfter(body, sentenceDelimiter) {
		if sentence == "" {
			continue
		}
		n := text.CountRunes(sentence)
		if currentLen > 0 && currentLen+n > c.MaxLength {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(sentence)
		currentLen += n
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
