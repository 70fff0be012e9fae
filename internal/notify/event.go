// Package notify fans ledger events out to live subscribers.
package notify

import "time"

// Event types
const (
	EventReportImported = "report.imported"
	EventBetsUpdated    = "bets.updated"
)

// Event is a ledger change pushed to subscribers
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	Time    time.Time   `json:"timestamp"`
}

// ReportImported is the payload of a report.imported event
type ReportImported struct {
	ReportID  int64    `json:"report_id"`
	Slug      string   `json:"slug"`
	Label     string   `json:"label"`
	Updated   int      `json:"updated_bets"`
	Unmatched []string `json:"unmatched_bets"`
}

// BetsUpdated is the payload of a bets.updated event
type BetsUpdated struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// NewReportImported builds a report.imported event
func NewReportImported(payload ReportImported) Event {
	return Event{Type: EventReportImported, Payload: payload, Time: time.Now().UTC()}
}

// NewBetsUpdated builds a bets.updated event
func NewBetsUpdated(payload BetsUpdated) Event {
	return Event{Type: EventBetsUpdated, Payload: payload, Time: time.Now().UTC()}
}

// Publisher delivers events. Publish must not block the caller.
type Publisher interface {
	Publish(event Event)
}

// Multi publishes every event to each publisher in turn
type Multi []Publisher

// Publish implements Publisher
func (m Multi) Publish(event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(event)
		}
	}
}

// Nop discards events
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(Event) {}
