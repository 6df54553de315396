package gemini

import (
	"context"

	"github.com/fwojciec/pagechunk"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is a model the local tokenizer knows about.
const DefaultTokenizerModel = "gemini-2.0-flash"

var _ pagechunk.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens offline with the Gemini tokenizer, so the
// ingest summary can report an estimate without an API key.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultTokenizerModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, pagechunk.Errorf(pagechunk.ECONFIG, "tokenizer for %q: %v", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{
		genai.NewContentFromText(text, "user"),
	}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
