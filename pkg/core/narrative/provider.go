// Package narrative extracts risk and outlook commentary from filing
// text with an LLM. Enrichment runs before review; failures degrade to
// absent sections, never to a failed digest.
package narrative

import "context"

// Provider is the interface for text generation backends.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
