// Package oracle defines the LLM provider contract the Memory Engine is
// built against: the system is agnostic to the model, only the embedding
// dimension is load-bearing (it sizes the VKC's index).
package oracle

import "context"

// Generator produces free-text completions from a prompt. It backs answer
// generation, extraction, decision-making, consolidation, and magnitude
// scoring — every LLM call the Memory Engine makes is a Generate call over
// a differently shaped prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder produces a fixed-width dense vector for a piece of text.
// Anthropic and Bedrock-hosted models have no first-party embeddings
// endpoint, so an Embedder is composed independently of the Generator in
// those configurations.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Oracle is the full contract the Memory Engine depends on.
type Oracle interface {
	Generator
	Embedder
}

// oracle composes an independently-chosen Generator and Embedder into a
// single Oracle, for providers whose chat and embedding backends differ.
type oracle struct {
	Generator
	Embedder
}

// Compose pairs a generation backend with an embedding backend into one
// Oracle, mirroring the reference repo's separation of a chat Provider from
// a document Embedder.
func Compose(gen Generator, emb Embedder) Oracle {
	return oracle{Generator: gen, Embedder: emb}
}
