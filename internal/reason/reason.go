// Package reason defines the reasoning port: a text generator that turns
// a prompt into one explanatory sentence for the qualification trail.
package reason

import (
	"context"
	"strings"
)

// DefaultText is used whenever the reasoner fails or has nothing better
// to say. Reasoning failures never abort scoring.
const DefaultText = "LLM: default reasoning."

// Reasoner produces explanatory text for a prompt. Implementations may be
// slow or unreliable; callers degrade to DefaultText on error.
type Reasoner interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Canned is a deterministic offline reasoner for tests and dry runs.
type Canned struct{}

func (Canned) Generate(_ context.Context, prompt string) (string, error) {
	if strings.Contains(strings.ToLower(prompt), "qualification") {
		return "LLM: lead looks promising due to funding and tech-stack match.", nil
	}
	return DefaultText, nil
}
