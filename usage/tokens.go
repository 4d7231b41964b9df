package usage

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"

	"bootstrap/message"
)

// Per-message and per-reply framing overhead added by the chat format.
const (
	tokensPerMessage = 4
	tokensPerReply   = 2
)

// TokenCounter estimates token counts before a request is sent.
type TokenCounter struct {
	codec tokenizer.Codec
}

// NewTokenCounter returns a counter for model, falling back to the cl100k
// encoding for models the tokenizer does not know.
func NewTokenCounter(model string) (*TokenCounter, error) {
	codec, err := tokenizer.ForModel(tokenizer.Model(model))
	if err != nil {
		codec, err = tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			return nil, fmt.Errorf("failed to create tokenizer: %w", err)
		}
	}
	return &TokenCounter{codec: codec}, nil
}

// Count returns the number of tokens in text.
func (tc *TokenCounter) Count(text string) int {
	ids, _, err := tc.codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}

// CountPrompt estimates the input tokens of a whole request.
func (tc *TokenCounter) CountPrompt(req message.PromptRequest) int {
	total := tokensPerReply
	for _, m := range req {
		total += tc.Count(m.Content) + tokensPerMessage
	}
	return total
}
