// Package pipeline composes the full lead-qualification flow: parallel
// enrichment behind a fan-in barrier, sequential scoring, conditional
// outreach drafting and follow-up scheduling, and an optional evaluation
// pass. It owns the run's record store and event ledger.
package pipeline

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/smartsales/lead-pipeline/internal/enrich"
	"github.com/smartsales/lead-pipeline/internal/evaluate"
	"github.com/smartsales/lead-pipeline/internal/followup"
	"github.com/smartsales/lead-pipeline/internal/lead"
	"github.com/smartsales/lead-pipeline/internal/orchestrate"
	"github.com/smartsales/lead-pipeline/internal/outreach"
	"github.com/smartsales/lead-pipeline/internal/reason"
	"github.com/smartsales/lead-pipeline/internal/score"
	"github.com/smartsales/lead-pipeline/internal/store"
)

type Options struct {
	Orchestrate   orchestrate.Options
	Threshold     int
	Rules         []score.Rule
	FollowUpDelay time.Duration
	FollowUpNote  string
	Sender        string
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = score.DefaultThreshold
	}
	if o.FollowUpDelay <= 0 {
		o.FollowUpDelay = 5 * time.Second
	}
	if o.FollowUpNote == "" {
		o.FollowUpNote = "1st follow up"
	}
	return o
}

// Processed is one lead's final shape: the enriched lead plus its
// qualification.
type Processed struct {
	Lead          lead.Enriched
	Qualification score.Result
}

// LeadError describes a lead that was excluded from the run.
type LeadError struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Cause string `json:"cause"`
}

// Result is the point-in-time outcome of one batch run. Follow-ups that
// have not fired yet are not reflected in CRM/Memory; callers who need
// them must wait on the scheduler and re-snapshot.
type Result struct {
	Processed []Processed
	CRM       map[string]store.Record
	Memory    map[string][]store.Event
	Metrics   *evaluate.Metrics
	Errors    []LeadError
}

// Pipeline drives one or more batch runs over a shared pair of stores.
type Pipeline struct {
	records  *store.RecordStore
	ledger   *store.EventLedger
	sched    *followup.Scheduler
	orch     *orchestrate.Orchestrator
	engine   *score.Engine
	composer *outreach.Composer
	reporter *evaluate.Reporter
	logger   *log.Logger
	opts     Options
}

func New(enricher enrich.Enricher, reasoner reason.Reasoner, logger *log.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	opts = opts.withDefaults()

	records := store.NewRecordStore()
	ledger := store.NewEventLedger()
	return &Pipeline{
		records:  records,
		ledger:   ledger,
		sched:    followup.NewScheduler(records, ledger, logger),
		orch:     orchestrate.New(enricher, ledger, logger, opts.Orchestrate),
		engine:   score.NewEngine(opts.Rules, opts.Threshold, reasoner, records, ledger, logger),
		composer: outreach.NewComposer(records, opts.Sender),
		reporter: evaluate.NewReporter(records),
		logger:   logger,
		opts:     opts,
	}
}

// Records exposes the live record store, which scheduled follow-ups keep
// mutating after Run returns.
func (p *Pipeline) Records() *store.RecordStore { return p.records }

// Events exposes the live event ledger.
func (p *Pipeline) Events() *store.EventLedger { return p.ledger }

// FollowUps exposes the scheduler so callers can wait for or cancel
// pending follow-ups before shutdown.
func (p *Pipeline) FollowUps() *followup.Scheduler { return p.sched }

// Run processes one batch. Malformed leads (no id) are excluded with a
// diagnostic and the batch continues; enrichment failures degrade per
// lead inside the orchestrator. The returned error is non-nil only for
// context cancellation, and even then the best-effort snapshot is
// returned.
func (p *Pipeline) Run(ctx context.Context, leads []lead.Lead, labeled map[string]string) (*Result, error) {
	runID := uuid.NewString()
	p.logger.Printf("run=%s batch start leads=%d", runID, len(leads))

	res := &Result{}
	valid := make([]lead.Lead, 0, len(leads))
	for i, l := range leads {
		if err := l.Validate(); err != nil {
			p.logger.Printf("run=%s skipping lead index=%d: %v", runID, i, err)
			res.Errors = append(res.Errors, LeadError{Index: i, ID: l.ID, Cause: err.Error()})
			continue
		}
		valid = append(valid, l)
	}

	enriched, runErr := p.orch.HandleBatch(ctx, valid)

	for _, e := range enriched {
		q := p.engine.Score(ctx, e)
		if q.Score > p.engine.Threshold() {
			p.composer.Compose(e)
			p.sched.Schedule(e.ID, p.opts.FollowUpDelay, p.opts.FollowUpNote)
		}
		res.Processed = append(res.Processed, Processed{Lead: e, Qualification: q})
	}

	if labeled != nil {
		m := p.reporter.Evaluate(labeled)
		res.Metrics = &m
	}

	res.CRM = p.records.All()
	res.Memory = p.ledger.All()
	p.logger.Printf("run=%s batch done processed=%d skipped=%d", runID, len(res.Processed), len(res.Errors))
	return res, runErr
}
