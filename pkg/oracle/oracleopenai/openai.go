// Package oracleopenai implements oracle.Oracle against the OpenAI chat
// completions and embeddings APIs — the only reference-stack provider that
// covers both legs of the contract by itself.
package oracleopenai

import (
	"context"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/memoria-systems/memoria/pkg/errx"
)

var openaiErrors = errx.NewRegistry("ORACLE_OPENAI")

var (
	ErrMissingAPIKey  = openaiErrors.Register("MISSING_API_KEY", errx.TypeValidation, 400, "Missing OpenAI API key")
	ErrGenerate       = openaiErrors.Register("GENERATE", errx.TypeExternal, 502, "OpenAI chat completion failed")
	ErrEmbed          = openaiErrors.Register("EMBED", errx.TypeExternal, 502, "OpenAI embedding call failed")
	ErrNoContent      = openaiErrors.Register("NO_CONTENT", errx.TypeExternal, 502, "OpenAI returned no content")
	ErrNoEmbedding    = openaiErrors.Register("NO_EMBEDDING", errx.TypeExternal, 502, "OpenAI returned no embedding")
)

// Provider is an oracle.Oracle backed by OpenAI.
type Provider struct {
	client         openai.Client
	model          string
	embeddingModel string
	dimensions     int
	apiKey         string
}

// New creates an OpenAI-backed oracle. dimensions should be
// memory.EmbeddingDim; the OpenAI embeddings API accepts an explicit
// dimensions parameter for text-embedding-3-* models.
func New(apiKey, model, embeddingModel string, dimensions int, opts ...option.RequestOption) *Provider {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Provider{
		client:         openai.NewClient(options...),
		model:          model,
		embeddingModel: embeddingModel,
		dimensions:     dimensions,
		apiKey:         apiKey,
	}
}

// Generate sends prompt as a single user turn and returns the reply text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", openaiErrors.New(ErrMissingAPIKey)
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", openaiErrors.NewWithCause(ErrGenerate, err).WithDetail("model", p.model)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", openaiErrors.New(ErrNoContent).WithDetail("model", p.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns a dense vector of p.dimensions length for text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if p.apiKey == "" {
		return nil, openaiErrors.New(ErrMissingAPIKey)
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: p.embeddingModel,
	}
	if p.dimensions > 0 {
		params.Dimensions = openai.Int(int64(p.dimensions))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, openaiErrors.NewWithCause(ErrEmbed, err).WithDetail("model", p.embeddingModel)
	}
	if len(resp.Data) == 0 {
		return nil, openaiErrors.New(ErrNoEmbedding).WithDetail("model", p.embeddingModel)
	}

	raw := resp.Data[0].Embedding
	out := make([]float32, len(raw))
	for i, v := range raw {
		out[i] = float32(v)
	}
	return out, nil
}
