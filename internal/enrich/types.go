package enrich

import (
	"context"
	"errors"

	"github.com/smartsales/lead-pipeline/internal/lead"
)

// Enricher derives company attributes for a single lead. Implementations
// talk to external data sources and may be slow or fail; the orchestrator
// owns timeouts and the per-lead failure policy.
type Enricher interface {
	Enrich(ctx context.Context, l lead.Lead) (lead.Enrichment, error)
}

// TransientError marks an error as retryable.
//
// Worker pools should retry transient failures with backoff rather than
// immediately giving up on the lead.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
