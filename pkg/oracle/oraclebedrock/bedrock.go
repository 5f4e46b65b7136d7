// Package oraclebedrock implements oracle.Generator against AWS Bedrock's
// Converse API, so the same code path works whether the hosted model is
// Claude, Llama, or any other Converse-compatible model. Bedrock has no
// embeddings endpoint wired here, so this provider is always composed with
// an embedder at wiring time (oracle.Compose).
package oraclebedrock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/memoria-systems/memoria/pkg/errx"
)

var bedrockErrors = errx.NewRegistry("ORACLE_BEDROCK")

var (
	ErrGenerate  = bedrockErrors.Register("GENERATE", errx.TypeExternal, 502, "Bedrock converse call failed")
	ErrNoContent = bedrockErrors.Register("NO_CONTENT", errx.TypeExternal, 502, "Bedrock returned no content")
)

// Provider is an oracle.Generator backed by Bedrock.
type Provider struct {
	client *bedrockruntime.Client
	model  string
}

// New wraps a Bedrock runtime client constructed from an already-resolved
// aws.Config for the given model ID.
func New(cfg aws.Config, model string) *Provider {
	return &Provider{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  model,
	}
}

// Generate issues a single-turn Converse call and returns the reply text.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := p.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(p.model),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: prompt}},
			},
		},
	})
	if err != nil {
		return "", bedrockErrors.NewWithCause(ErrGenerate, err).WithDetail("model", p.model)
	}

	output, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || len(output.Value.Content) == 0 {
		return "", bedrockErrors.New(ErrNoContent).WithDetail("model", p.model)
	}

	var text string
	for _, block := range output.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	if text == "" {
		return "", bedrockErrors.New(ErrNoContent).WithDetail("model", p.model)
	}
	return text, nil
}
