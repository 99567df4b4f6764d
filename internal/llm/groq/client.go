package groq

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"

	"slidesmith/internal/llm"
	"slidesmith/pkg/prompts"
)

var _ llm.Completer = (*Client)(nil)

type Client struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewClient(apiKey, model string, opts ...groq.Opts) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq api key is required")
	}

	client, err := groq.NewClient(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

// NewEngine returns a deck engine backed by Groq chat completions.
func NewEngine(apiKey, model string, p *prompts.Prompts, temps llm.Temperatures) (*llm.ChatEngine, error) {
	client, err := NewClient(apiKey, model)
	if err != nil {
		return nil, err
	}
	return llm.NewChatEngine(client, p, temps), nil
}

// Complete requests JSON object mode. Groq has no strict schema mode, so the
// shape is enforced by the prompt and the parser.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: req.System},
			{Role: groq.RoleUser, Content: req.User},
		},
		Temperature: float32(req.Temperature),
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}
