// Package oracleanthropic implements oracle.Generator against the Claude
// Messages API. Anthropic has no first-party embeddings endpoint, so this
// provider is always composed with an embedder at wiring time
// (oracle.Compose).
package oracleanthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/memoria-systems/memoria/pkg/errx"
)

var anthropicErrors = errx.NewRegistry("ORACLE_ANTHROPIC")

var (
	ErrMissingAPIKey = anthropicErrors.Register("MISSING_API_KEY", errx.TypeValidation, 400, "Missing Anthropic API key")
	ErrGenerate      = anthropicErrors.Register("GENERATE", errx.TypeExternal, 502, "Anthropic generation call failed")
	ErrNoContent     = anthropicErrors.Register("NO_CONTENT", errx.TypeExternal, 502, "Anthropic returned no content")
)

const defaultMaxTokens = 1024

// Provider is an oracle.Generator backed by Claude.
type Provider struct {
	client anthropic.Client
	model  string
	apiKey string
}

// New creates a Claude-backed generator for the given model.
func New(apiKey, model string, opts ...option.RequestOption) *Provider {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Provider{
		client: anthropic.NewClient(options...),
		model:  model,
		apiKey: apiKey,
	}
}

// Generate sends prompt as a single user turn and returns the concatenated
// text of the reply.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", anthropicErrors.New(ErrMissingAPIKey)
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", anthropicErrors.NewWithCause(ErrGenerate, err).WithDetail("model", p.model)
	}

	var out string
	for _, block := range message.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	if out == "" {
		return "", anthropicErrors.New(ErrNoContent).WithDetail("model", p.model)
	}
	return out, nil
}
