// Package score turns an enriched lead into a qualification result by
// evaluating a declarative rule set, then records the outcome in the
// record store and the event ledger.
package score

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/smartsales/lead-pipeline/internal/lead"
	"github.com/smartsales/lead-pipeline/internal/reason"
	"github.com/smartsales/lead-pipeline/internal/store"
	"github.com/smartsales/lead-pipeline/internal/util"
)

const (
	StatusQualified = "qualified"
	StatusNurture   = "nurture"

	// DefaultThreshold is the score a lead must exceed (strictly) to be
	// qualified. Distinct from the inclusive employee-count rule bound;
	// the two are deliberately not unified.
	DefaultThreshold = 50

	maxScore = 100
)

// Result is a lead's qualification outcome.
type Result struct {
	Score   int
	Reasons []string
}

// Engine scores leads sequentially. Scoring is deterministic given the
// rule set; the reasoning port only contributes an explanatory string
// and can never change the score.
type Engine struct {
	rules     []Rule
	threshold int
	reasoner  reason.Reasoner
	records   *store.RecordStore
	ledger    *store.EventLedger
	logger    *log.Logger
}

func NewEngine(
	rules []Rule,
	threshold int,
	reasoner reason.Reasoner,
	records *store.RecordStore,
	ledger *store.EventLedger,
	logger *log.Logger,
) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Engine{
		rules:     rules,
		threshold: threshold,
		reasoner:  reasoner,
		records:   records,
		ledger:    ledger,
		logger:    logger,
	}
}

// Threshold returns the strict qualification bound.
func (e *Engine) Threshold() int { return e.threshold }

// Score evaluates the rule set over the enriched lead, appends the
// reasoner's explanation, and persists {score, status} plus a
// qualification event. Absent enrichment fields are zero values, never
// errors; a reasoner failure degrades to the default text.
func (e *Engine) Score(ctx context.Context, l lead.Enriched) Result {
	total := 0
	var reasons []string
	for _, r := range e.rules {
		if r.matches(l) {
			total += r.Points
			reasons = append(reasons, r.Reason)
		}
	}

	text, err := e.reasoner.Generate(ctx, fmt.Sprintf("qualification reasoning for lead %s", l.ID))
	if err != nil {
		e.logger.Printf("reasoner failed lead=%s err=%s", l.ID, util.RedactSecrets(err.Error()))
		text = reason.DefaultText
	}
	reasons = append(reasons, text)

	if total > maxScore {
		total = maxScore
	}
	res := Result{Score: total, Reasons: reasons}

	status := StatusNurture
	if total > e.threshold {
		status = StatusQualified
	}
	e.records.Upsert(l.ID, store.Record{"score": total, "status": status})
	e.ledger.Append(l.ID, store.EventQualification, map[string]any{
		"score":   total,
		"status":  status,
		"reasons": reasons,
	})
	e.logger.Printf("qualified lead=%s score=%d status=%s", l.ID, total, status)
	return res
}
