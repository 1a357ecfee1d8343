// Package outreach drafts a first-touch message for a qualified lead.
package outreach

import (
	"fmt"

	"github.com/smartsales/lead-pipeline/internal/lead"
	"github.com/smartsales/lead-pipeline/internal/store"
)

// DefaultSender signs drafts when no sender name is configured.
const DefaultSender = "Daniyal"

// Draft is a composed outreach message.
type Draft struct {
	Subject string
	Body    string
}

// Composer templates drafts from lead fields and persists them to the
// record store. Pure templating; no external calls.
type Composer struct {
	records *store.RecordStore
	sender  string
}

func NewComposer(records *store.RecordStore, sender string) *Composer {
	if sender == "" {
		sender = DefaultSender
	}
	return &Composer{records: records, sender: sender}
}

// Compose drafts a message for the lead and upserts it under the
// "outreach" key.
func (c *Composer) Compose(l lead.Enriched) Draft {
	news := l.Enrichment.RecentNews
	if news == "" {
		news = "your recent activities"
	}
	d := Draft{
		Subject: fmt.Sprintf("Quick question about %s and your %s stack", l.CompanyName, l.Enrichment.Industry),
		Body: fmt.Sprintf(
			"Hi %s,\n\nI noticed %s at %s and thought there might be a fit.\n\nAre you available for a 15-minute call next week?\n\nBest,\n%s",
			l.ContactName, news, l.CompanyName, c.sender,
		),
	}
	c.records.Upsert(l.ID, store.Record{
		"outreach": map[string]any{"subject": d.Subject, "body": d.Body},
	})
	return d
}
