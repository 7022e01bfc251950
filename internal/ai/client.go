package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"viral-clip-gen/internal/logging"
)

// Client wraps the Gemini API client. When no API key is configured it
// stays in a degraded mode where every call reports ErrNotConfigured
// and callers fall back to their local defaults.
type Client struct {
	api   *genai.Client
	model string
	log   *logging.Logger
}

var ErrNotConfigured = errors.New("no API key configured")

func NewClient(ctx context.Context, apiKey, model string, log *logging.Logger) (*Client, error) {
	c := &Client{model: model, log: log}
	if apiKey == "" {
		log.Warnf("text generation disabled: no API key configured")
		return c, nil
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.api = api
	return c, nil
}

func (c *Client) Configured() bool { return c != nil && c.api != nil }

// generate issues one GenerateContent call and returns the aggregated
// response text.
func (c *Client) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty model response")
	}
	return text, nil
}
