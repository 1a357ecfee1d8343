// Package evaluate computes precision/recall for a run's qualification
// decisions against labeled ground truth.
package evaluate

import (
	"github.com/smartsales/lead-pipeline/internal/score"
	"github.com/smartsales/lead-pipeline/internal/store"
)

// Metrics is the 2x2 confusion matrix plus derived rates. Precision and
// recall are 0.0 when their denominators are zero.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	TN        int     `json:"tn"`
	FN        int     `json:"fn"`
}

// Reporter reads qualification statuses out of the record store. It
// never mutates state.
type Reporter struct {
	records *store.RecordStore
}

func NewReporter(records *store.RecordStore) *Reporter {
	return &Reporter{records: records}
}

// Evaluate classifies each labeled lead by its current store status
// (absent leads count as nurture) and returns the resulting metrics.
func (r *Reporter) Evaluate(labeled map[string]string) Metrics {
	var m Metrics
	for id, label := range labeled {
		predicted := score.StatusNurture
		if v, ok := r.records.Get(id)["status"].(string); ok {
			predicted = v
		}
		predictedQualified := predicted == score.StatusQualified
		labeledQualified := label == score.StatusQualified
		switch {
		case predictedQualified && labeledQualified:
			m.TP++
		case predictedQualified && !labeledQualified:
			m.FP++
		case !predictedQualified && !labeledQualified:
			m.TN++
		default:
			m.FN++
		}
	}
	if m.TP+m.FP > 0 {
		m.Precision = float64(m.TP) / float64(m.TP+m.FP)
	}
	if m.TP+m.FN > 0 {
		m.Recall = float64(m.TP) / float64(m.TP+m.FN)
	}
	return m
}
