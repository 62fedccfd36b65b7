// Package openai implements model.Generator on the OpenAI Chat Completions
// API. Each invocation issues a single system+user completion; streaming and
// tool calling are intentionally out of scope for this adapter.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/sensoryx/medagent/model"
)

// Options configure the OpenAI generator. Fields mirror a minimal subset of
// the Chat Completion parameters.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Generator wraps the OpenAI client behind model.Generator.
type Generator struct {
	client *openai.Client
	opts   Options
}

var _ model.Generator = (*Generator)(nil)

// New creates a generator using the default client (API key from env).
func New(optFns ...func(o *Options)) *Generator {
	client := openai.NewClient()
	return NewFromClient(&client, optFns...)
}

// NewFromClient creates a generator from an existing client.
func NewFromClient(client *openai.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 1500,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Generator{client: client, opts: opts}
}

// GenerateText implements model.Generator.
func (g *Generator) GenerateText(ctx context.Context, systemPrompt, userContext string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userContext),
		},
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Info implements model.Generator.
func (g *Generator) Info() model.Info {
	return model.Info{Name: g.opts.Model, Provider: model.ProviderOpenAI}
}
