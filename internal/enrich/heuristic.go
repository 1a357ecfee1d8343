package enrich

import (
	"context"
	"strings"

	"github.com/smartsales/lead-pipeline/internal/lead"
)

// Heuristic is a deterministic, offline enricher. It classifies from the
// lead's own text: company names containing "fin" are FinTech, notes
// mentioning a funding round set the employee-count bucket, and the notes
// double as recent news. Useful for tests, demos and dry runs; swap in
// the gemini backend for real lookups.
type Heuristic struct{}

func (Heuristic) Enrich(_ context.Context, l lead.Lead) (lead.Enrichment, error) {
	industry := "SaaS"
	if strings.Contains(strings.ToLower(l.CompanyName), "fin") {
		industry = "FinTech"
	}

	employees := 12
	switch {
	case strings.Contains(l.Notes, "Series A"):
		employees = 75
	case strings.Contains(l.Notes, "Scale-up"):
		employees = 120
	}

	stack := []string{"Node.js"}
	if strings.Contains(l.CompanyName, "Data") {
		stack = []string{"Python", "Postgres"}
	}

	return lead.Enrichment{
		Website:       l.Website,
		Industry:      industry,
		EmployeeCount: employees,
		TechStack:     stack,
		RecentNews:    l.Notes,
	}, nil
}
