// Package orchestrate fans a batch of leads out to a bounded pool of
// enrichment workers and fans the results back in once every lead has
// been resolved.
package orchestrate

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/smartsales/lead-pipeline/internal/enrich"
	"github.com/smartsales/lead-pipeline/internal/lead"
	"github.com/smartsales/lead-pipeline/internal/store"
	"github.com/smartsales/lead-pipeline/internal/util"
	"github.com/smartsales/lead-pipeline/internal/worker"
)

type Options struct {
	Workers        int
	MaxRetries     int
	RequestTimeout time.Duration
	RateLimitRPS   float64
}

// Orchestrator runs batch enrichment. A lead whose enrichment fails is
// returned with its original fields and an audit event; one bad lead
// never aborts the batch.
type Orchestrator struct {
	enricher enrich.Enricher
	ledger   *store.EventLedger
	logger   *log.Logger
	opts     Options
}

func New(enricher enrich.Enricher, ledger *store.EventLedger, logger *log.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{enricher: enricher, ledger: ledger, logger: logger, opts: opts}
}

// HandleBatch enriches every lead concurrently and blocks until all of
// them have resolved. The output has exactly one entry per input lead;
// order is unspecified and callers must not depend on it matching the
// input. The error is non-nil only when ctx is cancelled mid-batch, in
// which case unresolved leads are returned unenriched.
func (o *Orchestrator) HandleBatch(ctx context.Context, leads []lead.Lead) ([]lead.Enriched, error) {
	start := time.Now()

	results, err := worker.Map(ctx, leads, o.enrichOne, worker.Options{
		Workers:        o.opts.Workers,
		MaxRetries:     o.opts.MaxRetries,
		RequestTimeout: o.opts.RequestTimeout,
		RateLimitRPS:   o.opts.RateLimitRPS,
		Retryable:      enrich.IsTransient,
	})

	out := make([]lead.Enriched, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			o.ledger.Append(res.Input.ID, store.EventEnrichError, map[string]any{
				"error": util.RedactSecrets(res.Err.Error()),
			})
			o.logger.Printf("enrich failed lead=%s err=%s", res.Input.ID, util.RedactSecrets(res.Err.Error()))
			out = append(out, lead.Enriched{Lead: res.Input})
			continue
		}
		out = append(out, lead.Enriched{Lead: res.Input, Enrichment: res.Out})
	}

	o.logger.Printf("batch enrichment finished leads=%d took=%s", len(leads), time.Since(start).Round(time.Millisecond))
	return out, err
}

func (o *Orchestrator) enrichOne(ctx context.Context, l lead.Lead) (lead.Enrichment, error) {
	enriched, err := o.enricher.Enrich(ctx, l)
	if err != nil {
		return lead.Enrichment{}, err
	}
	o.ledger.Append(l.ID, store.EventEnriched, map[string]any{
		"industry":       enriched.Industry,
		"employee_count": enriched.EmployeeCount,
		"tech_stack":     enriched.TechStack,
		"recent_news":    enriched.RecentNews,
	})
	return enriched, nil
}
