package lead

import (
	"errors"
	"strings"
)

// ErrMissingID marks a lead that cannot be processed at all. Every other
// field may be empty; the pipeline degrades gracefully around blanks.
var ErrMissingID = errors.New("lead is missing an id")

// Lead is a prospective customer as ingested. Immutable for the duration
// of a processing run; enrichment output lives alongside it, not in it.
type Lead struct {
	ID           string
	CompanyName  string
	ContactName  string
	ContactEmail string
	Website      string
	Notes        string
}

// Validate reports whether the lead is well-formed enough to process.
func (l Lead) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return ErrMissingID
	}
	return nil
}

// Enrichment holds attributes derived from an external data source.
type Enrichment struct {
	Website       string
	Industry      string
	EmployeeCount int
	TechStack     []string
	RecentNews    string
}

// Enriched pairs a lead with its enrichment attributes. A lead whose
// enrichment failed carries a zero Enrichment.
type Enriched struct {
	Lead
	Enrichment Enrichment
}
