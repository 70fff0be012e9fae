package reconcile

import (
	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

// RawManualBet is one bet as submitted by the admin form. Values are
// untyped JSON and are sanitized before use.
type RawManualBet map[string]interface{}

// ManualBetInput is a sanitized manual bet
type ManualBetInput struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description"`
	Stake       *float64 `json:"stake"`
	Odds        *string  `json:"odds"`
	DecimalOdds *float64 `json:"decimal_odds"`
	EventDate   *string  `json:"event_date" validate:"omitempty,datetime=2006-01-02"`
	Category    *string  `json:"category"`
}

// SanitizeManualBets normalizes raw admin input, dropping rows without a title
func SanitizeManualBets(raw []RawManualBet) []ManualBetInput {
	inputs := make([]ManualBetInput, 0, len(raw))
	for _, bet := range raw {
		title := normalize.TrimmedString(bet["title"])
		if title == nil {
			continue
		}

		description := normalize.TrimmedString(bet["description"])
		if _, isString := bet["description"].(string); !isString {
			description = normalize.TrimmedString(bet["notes"])
		}

		eventDate := bet["eventDate"]
		if eventDate == nil {
			eventDate = bet["date"]
		}

		odds := normalize.TrimmedString(bet["odds"])
		inputs = append(inputs, ManualBetInput{
			Title:       *title,
			Description: description,
			Stake:       normalize.Number(bet["stake"]),
			Odds:        odds,
			DecimalOdds: normalize.DecimalOddsFromString(odds),
			EventDate:   normalize.NormalizeDate(eventDate),
			Category:    normalize.TrimmedString(bet["category"]),
		})
	}
	return inputs
}

// Fields returns the full pending-bet row for this input
func (in ManualBetInput) Fields() models.BetFields {
	title := in.Title
	status := models.BetStatusPending
	return models.BetFields{
		Title:       &title,
		Description: in.Description,
		Stake:       in.Stake,
		Odds:        in.Odds,
		DecimalOdds: in.DecimalOdds,
		EventDate:   in.EventDate,
		Category:    in.Category,
		Status:      &status,
		ClearUnset:  true,
	}
}

// PlannedUpdate overwrites an existing pending bet
type PlannedUpdate struct {
	BetID  int64
	Fields models.BetFields
}

// UpsertPlan lists the writes for a manual submission, in input order
type UpsertPlan struct {
	Creates []models.BetFields
	Updates []PlannedUpdate
}

// Created is the number of new bets in the plan
func (p UpsertPlan) Created() int { return len(p.Creates) }

// Updated is the number of overwritten bets in the plan
func (p UpsertPlan) Updated() int { return len(p.Updates) }

// PlanManualUpsert pairs each input with a pending bet of exactly the same
// normalized title. Matched bets are overwritten, the rest are created.
func PlanManualUpsert(inputs []ManualBetInput, pending []models.BetRecord) UpsertPlan {
	plan := UpsertPlan{
		Creates: []models.BetFields{},
		Updates: []PlannedUpdate{},
	}

	ws := newWorkingSet(pending)
	for _, in := range inputs {
		title := normalize.NormalizeTitle(in.Title)
		existing, ok := ws.take(func(entry string) bool { return entry == title })
		if ok {
			plan.Updates = append(plan.Updates, PlannedUpdate{BetID: existing.ID, Fields: in.Fields()})
			continue
		}
		plan.Creates = append(plan.Creates, in.Fields())
	}
	return plan
}
