// Package gemini backs the reasoning port with a plain Gemini text call.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type Reasoner struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Reasoner, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Reasoner{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

// Generate returns one short explanatory sentence for the prompt.
// Callers treat any error as non-fatal and fall back to default text.
func (r *Reasoner) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.Models.GenerateContent(
		ctx,
		r.model,
		genai.Text("Answer in one short sentence. "+prompt),
		&genai.GenerateContentConfig{CandidateCount: 1},
	)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
