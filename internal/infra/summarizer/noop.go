// Package summarizer provides the remote summarization endpoints used by the
// summarize use case: Hugging Face inference, OpenAI, Claude and a NoOp stand-in.
package summarizer

import (
	"context"
	"strings"
)

// NoOp returns the leading words of the input instead of calling a model.
// Useful for local runs without API credentials.
type NoOp struct{}

// NewNoOp creates a new NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns the first maxLength words of inputText.
func (n *NoOp) Summarize(ctx context.Context, inputText string, maxLength, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	words := strings.Fields(inputText)
	if maxLength > 0 && len(words) > maxLength {
		words = words[:maxLength]
	}
	return strings.Join(words, " "), nil
}
