package score

import (
	"strings"

	"github.com/smartsales/lead-pipeline/internal/lead"
)

// Rule is one scoring predicate. Rules are data so a policy can be
// loaded from the config file and swapped without touching the engine.
// Exactly one of Min (numeric fields) or Contains (text fields) applies,
// depending on Field.
type Rule struct {
	Field    string `yaml:"field"`              // employee_count, industry, recent_news, company_name, notes
	Min      int    `yaml:"min,omitempty"`      // fires when the field value >= Min (inclusive)
	Contains string `yaml:"contains,omitempty"` // fires when the field contains the substring
	Points   int    `yaml:"points"`
	Reason   string `yaml:"reason"`
}

func (r Rule) matches(l lead.Enriched) bool {
	switch r.Field {
	case "employee_count":
		return l.Enrichment.EmployeeCount >= r.Min
	case "industry":
		return r.Contains != "" && strings.Contains(l.Enrichment.Industry, r.Contains)
	case "recent_news":
		return r.Contains != "" && strings.Contains(l.Enrichment.RecentNews, r.Contains)
	case "company_name":
		return r.Contains != "" && strings.Contains(l.CompanyName, r.Contains)
	case "notes":
		return r.Contains != "" && strings.Contains(l.Notes, r.Contains)
	}
	return false
}

// DefaultRules is the reference scoring policy.
func DefaultRules() []Rule {
	return []Rule{
		{Field: "employee_count", Min: 50, Points: 30, Reason: "Team size >= 50"},
		{Field: "industry", Contains: "FinTech", Points: 25, Reason: "Industry match: FinTech"},
		{Field: "recent_news", Contains: "Series A", Points: 20, Reason: "Funding signal: Series A"},
	}
}
