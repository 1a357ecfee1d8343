// Package gemini backs the enrichment port with the Gemini API, using
// web search grounding and a structured output schema.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/genai"

	"github.com/smartsales/lead-pipeline/internal/enrich"
	"github.com/smartsales/lead-pipeline/internal/lead"
)

type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

type Enricher struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, cfg Config) (*Enricher, error) {
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
	return &Enricher{client: client, model: strings.TrimSpace(cfg.Model)}, nil
}

type responseSchema struct {
	Website       string   `json:"website"`
	Industry      string   `json:"industry"`
	EmployeeCount int      `json:"employee_count"`
	TechStack     []string `json:"tech_stack"`
	RecentNews    string   `json:"recent_news"`
}

var outputSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"website":        {Type: genai.TypeString},
		"industry":       {Type: genai.TypeString},
		"employee_count": {Type: genai.TypeInteger},
		"tech_stack":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"recent_news":    {Type: genai.TypeString},
	},
	Required: []string{
		"website",
		"industry",
		"employee_count",
		"tech_stack",
		"recent_news",
	},
}

func (e *Enricher) Enrich(ctx context.Context, l lead.Lead) (lead.Enrichment, error) {
	if strings.TrimSpace(l.CompanyName) == "" && strings.TrimSpace(l.Website) == "" {
		return lead.Enrichment{}, errors.New("lead has neither company name nor website")
	}

	resp, err := e.client.Models.GenerateContent(
		ctx,
		e.model,
		genai.Text(buildPrompt(l)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
				{URLContext: &genai.URLContext{}},
			},
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
			ResponseSchema:   outputSchema,
		},
	)
	if err != nil {
		return lead.Enrichment{}, classifyErr(err)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return lead.Enrichment{}, fmt.Errorf("gemini: parse structured json: %w", err)
	}

	return lead.Enrichment{
		Website:       strings.TrimSpace(parsed.Website),
		Industry:      strings.TrimSpace(parsed.Industry),
		EmployeeCount: parsed.EmployeeCount,
		TechStack:     parsed.TechStack,
		RecentNews:    strings.TrimSpace(parsed.RecentNews),
	}, nil
}

func buildPrompt(l lead.Lead) string {
	// Keep this prompt public-safe: company-level facts only, no contact PII
	// beyond what enrichment strictly needs.
	return strings.TrimSpace(fmt.Sprintf(`
You are a sales-lead enrichment tool. Given a company, use web search and URL context to find public company information.

Return ONLY a single JSON object with these keys:
- website (string)
- industry (string; short label such as "FinTech" or "SaaS")
- employee_count (integer; best estimate, 0 if unknown)
- tech_stack (array of strings)
- recent_news (string; one sentence, empty if none)

Rules:
- If you cannot find a field, use an empty string, empty array or 0.
- Do not include extra keys.

Company: %s
Website: %s
Notes: %s
`, l.CompanyName, l.Website, l.Notes))
}

func classifyErr(err error) error {
	// Wrap transient failures so the worker pool retries with backoff.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &enrich.TransientError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && (ne.Timeout() || ne.Temporary()) {
		return &enrich.TransientError{Err: err}
	}
	return err
}
