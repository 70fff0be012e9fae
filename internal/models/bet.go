package models

import (
	"time"
)

// BetStatus represents the grading state of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusPush    BetStatus = "push"
	BetStatusVoid    BetStatus = "void"
)

// IsTerminal reports whether the status is a graded outcome
func (s BetStatus) IsTerminal() bool {
	switch s {
	case BetStatusWon, BetStatusLost, BetStatusPush, BetStatusVoid:
		return true
	default:
		return false
	}
}

// IsValid reports whether the status is one of the known values
func (s BetStatus) IsValid() bool {
	return s == BetStatusPending || s.IsTerminal()
}

// BetRecord represents a wagered pick as stored in the data store
type BetRecord struct {
	ID          int64     `db:"id" json:"id"`
	ReportID    *int64    `db:"report_id" json:"report_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Stake       *float64  `db:"stake" json:"stake"`
	Odds        *string   `db:"odds" json:"odds"`
	DecimalOdds *float64  `db:"decimal_odds" json:"decimal_odds"`
	EventDate   *string   `db:"event_date" json:"event_date"`
	Status      BetStatus `db:"status" json:"status"`
	ResultNotes *string   `db:"result_notes" json:"result_notes"`
	Category    *string   `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsPending checks if the bet is still waiting for a result
func (b *BetRecord) IsPending() bool {
	return b.Status == BetStatusPending
}

// IsGraded checks that the bet carries a terminal status and the report that graded it
func (b *BetRecord) IsGraded() bool {
	return b.Status.IsTerminal() && b.ReportID != nil
}

// BetFields is a partial set of bet columns. Nil pointers are left untouched
// on update; on create they are stored as NULL.
type BetFields struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Stake       *float64   `json:"stake,omitempty"`
	Odds        *string    `json:"odds,omitempty"`
	DecimalOdds *float64   `json:"decimal_odds,omitempty"`
	EventDate   *string    `json:"event_date,omitempty"`
	Status      *BetStatus `json:"status,omitempty"`
	ResultNotes *string    `json:"result_notes,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ReportID    *int64     `json:"report_id,omitempty"`

	// ClearUnset writes explicit NULLs for the descriptive columns that are
	// nil. Manual re-submission of a pending bet overwrites the whole row.
	ClearUnset bool `json:"-"`
}

// Columns returns the fields as a column map. With ClearUnset the
// descriptive columns are always present, holding nil when unset.
func (f BetFields) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	put := func(name string, isNil bool, value interface{}) {
		if !isNil {
			cols[name] = value
		} else if f.ClearUnset {
			cols[name] = nil
		}
	}

	put("title", f.Title == nil, deref(f.Title))
	put("description", f.Description == nil, deref(f.Description))
	put("stake", f.Stake == nil, derefFloat(f.Stake))
	put("odds", f.Odds == nil, deref(f.Odds))
	put("decimal_odds", f.DecimalOdds == nil, derefFloat(f.DecimalOdds))
	put("event_date", f.EventDate == nil, deref(f.EventDate))
	put("category", f.Category == nil, deref(f.Category))

	if f.Status != nil {
		cols["status"] = string(*f.Status)
	}
	if f.ResultNotes != nil {
		cols["result_notes"] = *f.ResultNotes
	}
	if f.ReportID != nil {
		cols["report_id"] = *f.ReportID
	}
	return cols
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
