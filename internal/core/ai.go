package core

import "context"

// GenOptions tunes a single generation call. A nil Temperature leaves the
// model default in place; the career-mapping retry needs an explicit 0.0.
type GenOptions struct {
	Temperature     *float32
	MaxOutputTokens int32
}

// Temp returns a pointer for GenOptions.Temperature.
func Temp(v float32) *float32 { return &v }

// LLMProvider wraps the external generative-text endpoint. Output is raw text
// and must be treated as untrusted, possibly-malformed data.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string, opts GenOptions) (string, error)
}
