// Package oraclegemini implements oracle.Oracle against the Gemini API:
// content generation and text-embedding-004 embeddings.
package oraclegemini

import (
	"context"

	"google.golang.org/genai"

	"github.com/memoria-systems/memoria/pkg/errx"
)

var geminiErrors = errx.NewRegistry("ORACLE_GEMINI")

var (
	ErrClientInit  = geminiErrors.Register("CLIENT_INIT", errx.TypeExternal, 502, "Failed to initialize Gemini client")
	ErrGenerate    = geminiErrors.Register("GENERATE", errx.TypeExternal, 502, "Gemini generate content call failed")
	ErrEmbed       = geminiErrors.Register("EMBED", errx.TypeExternal, 502, "Gemini embed content call failed")
	ErrNoContent   = geminiErrors.Register("NO_CONTENT", errx.TypeExternal, 502, "Gemini returned no content")
	ErrNoEmbedding = geminiErrors.Register("NO_EMBEDDING", errx.TypeExternal, 502, "Gemini returned no embedding")
)

// Provider is an oracle.Oracle backed by Gemini.
type Provider struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

// New constructs a Gemini-backed oracle against the public Gemini API
// (not Vertex AI).
func New(ctx context.Context, apiKey, model, embeddingModel string) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, geminiErrors.NewWithCause(ErrClientInit, err)
	}
	return &Provider{client: client, model: model, embeddingModel: embeddingModel}, nil
}

// Generate sends prompt as a single-turn request and returns the reply text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(prompt)}}}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return "", geminiErrors.NewWithCause(ErrGenerate, err).WithDetail("model", p.model)
	}
	text := resp.Text()
	if text == "" {
		return "", geminiErrors.New(ErrNoContent).WithDetail("model", p.model)
	}
	return text, nil
}

// Embed returns a dense vector for text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{genai.NewPartFromText(text)}}}

	resp, err := p.client.Models.EmbedContent(ctx, p.embeddingModel, contents, nil)
	if err != nil {
		return nil, geminiErrors.NewWithCause(ErrEmbed, err).WithDetail("model", p.embeddingModel)
	}
	if len(resp.Embeddings) == 0 {
		return nil, geminiErrors.New(ErrNoEmbedding).WithDetail("model", p.embeddingModel)
	}
	return resp.Embeddings[0].Values, nil
}
