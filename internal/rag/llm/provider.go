package llm

import "context"

// Provider is the generation capability. contextBlock carries the assembled
// course material, history the recent turns of the conversation. May be
// non-deterministic; treated as a black box that can fail.
type Provider interface {
	Generate(ctx context.Context, query string, contextBlock string, history []string) (string, error)
}
