package score_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartsales/lead-pipeline/internal/lead"
	"github.com/smartsales/lead-pipeline/internal/reason"
	"github.com/smartsales/lead-pipeline/internal/score"
	"github.com/smartsales/lead-pipeline/internal/store"
)

type reasonFunc func(ctx context.Context, prompt string) (string, error)

func (f reasonFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func newEngine(t *testing.T, rules []score.Rule, r reason.Reasoner) (*score.Engine, *store.RecordStore, *store.EventLedger) {
	t.Helper()
	records := store.NewRecordStore()
	ledger := store.NewEventLedger()
	if r == nil {
		r = reason.Canned{}
	}
	return score.NewEngine(rules, 0, r, records, ledger, nil), records, ledger
}

func TestScore_ReferencePolicy(t *testing.T) {
	t.Parallel()

	e, records, ledger := newEngine(t, nil, nil)

	// AcmePay after heuristic enrichment: 75 employees (+30), SaaS (no
	// industry points), "Series A" news (+20) = 50, which does not clear
	// the strict >50 bound.
	res := e.Score(context.Background(), lead.Enriched{
		Lead: lead.Lead{ID: "L1", CompanyName: "AcmePay"},
		Enrichment: lead.Enrichment{
			Industry:      "SaaS",
			EmployeeCount: 75,
			RecentNews:    "Series A",
		},
	})

	assert.Equal(t, 50, res.Score)
	assert.Contains(t, res.Reasons, "Team size >= 50")
	assert.Contains(t, res.Reasons, "Funding signal: Series A")

	rec := records.Get("L1")
	assert.Equal(t, 50, rec["score"])
	assert.Equal(t, score.StatusNurture, rec["status"], "threshold is strict: 50 is not > 50")

	evs := ledger.Read("L1")
	if assert.Len(t, evs, 1) {
		assert.Equal(t, store.EventQualification, evs[0].Kind)
	}
}

func TestScore_StatusMatchesScoreThreshold(t *testing.T) {
	t.Parallel()

	e, records, _ := newEngine(t, nil, nil)

	e.Score(context.Background(), lead.Enriched{
		Lead: lead.Lead{ID: "Q1"},
		Enrichment: lead.Enrichment{
			Industry:      "FinTech",
			EmployeeCount: 120,
			RecentNews:    "Series A",
		},
	})

	rec := records.Get("Q1")
	score75 := rec["score"].(int)
	assert.Equal(t, 75, score75)
	assert.Equal(t, score.StatusQualified, rec["status"])
}

func TestScore_ClampedToHundred(t *testing.T) {
	t.Parallel()

	rules := []score.Rule{
		{Field: "employee_count", Min: 0, Points: 60, Reason: "a"},
		{Field: "industry", Contains: "Fin", Points: 60, Reason: "b"},
	}
	e, _, _ := newEngine(t, rules, nil)

	res := e.Score(context.Background(), lead.Enriched{
		Lead:       lead.Lead{ID: "L1"},
		Enrichment: lead.Enrichment{Industry: "FinTech"},
	})
	assert.Equal(t, 100, res.Score)
}

func TestScore_MissingEnrichmentIsNotAnError(t *testing.T) {
	t.Parallel()

	e, records, _ := newEngine(t, nil, nil)

	res := e.Score(context.Background(), lead.Enriched{Lead: lead.Lead{ID: "L1"}})
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, score.StatusNurture, records.Get("L1")["status"])
	assert.GreaterOrEqual(t, res.Score, 0, "rule sums are never negative")
}

func TestScore_ReasonerFailureDegradesToDefaultText(t *testing.T) {
	t.Parallel()

	failing := reasonFunc(func(context.Context, string) (string, error) {
		return "", errors.New("llm unavailable")
	})
	e, _, _ := newEngine(t, nil, failing)

	res := e.Score(context.Background(), lead.Enriched{Lead: lead.Lead{ID: "L1"}})
	assert.Contains(t, res.Reasons, reason.DefaultText)
}

func TestScore_ReasonerTextAlwaysAppended(t *testing.T) {
	t.Parallel()

	e, _, _ := newEngine(t, nil, nil)

	res := e.Score(context.Background(), lead.Enriched{Lead: lead.Lead{ID: "L1"}})
	if assert.NotEmpty(t, res.Reasons) {
		assert.Contains(t, res.Reasons[len(res.Reasons)-1], "LLM:")
	}
}
