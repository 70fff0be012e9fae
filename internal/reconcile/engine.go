package reconcile

import (
	"strings"

	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

// MissingStatusSuffix is appended to unmatched titles whose result could not be read
const MissingStatusSuffix = " (missing status)"

// BetUpdate is one grading instruction for a matched pending bet
type BetUpdate struct {
	BetID  int64
	Title  string
	Fields models.BetFields
}

// Result is the outcome of one reconciliation run
type Result struct {
	Updates   []BetUpdate
	Unmatched []string
	Matched   int
}

// pendingEntry pairs a pending bet with its matching key
type pendingEntry struct {
	bet        models.BetRecord
	normalized string
}

// workingSet is the per-call view of pending bets. Entries are consumed at
// most once; order follows the pending list.
type workingSet struct {
	entries  []pendingEntry
	consumed []bool
}

func newWorkingSet(pending []models.BetRecord) *workingSet {
	ws := &workingSet{
		entries:  make([]pendingEntry, len(pending)),
		consumed: make([]bool, len(pending)),
	}
	for i, bet := range pending {
		ws.entries[i] = pendingEntry{bet: bet, normalized: normalize.NormalizeTitle(bet.Title)}
	}
	return ws
}

// take returns the first unconsumed entry accepted by match and marks it used
func (ws *workingSet) take(match func(entry string) bool) (models.BetRecord, bool) {
	for i, entry := range ws.entries {
		if ws.consumed[i] || !match(entry.normalized) {
			continue
		}
		ws.consumed[i] = true
		return entry.bet, true
	}
	return models.BetRecord{}, false
}

// fuzzyMatch is true when either title contains the other
func fuzzyMatch(extracted string) func(string) bool {
	return func(pending string) bool {
		if pending == "" {
			return false
		}
		return pending == extracted ||
			strings.Contains(pending, extracted) ||
			strings.Contains(extracted, pending)
	}
}

// Reconcile matches extracted bet results against pending bets and builds
// the updates that grade them. Each pending bet satisfies at most one
// extracted result; the first pending bet in order wins a tie. The run never
// fails: anything that cannot be applied is reported in Unmatched.
func Reconcile(extraction *models.Extraction, pending []models.BetRecord, reportID int64) Result {
	result := Result{
		Updates:   []BetUpdate{},
		Unmatched: []string{},
	}
	if extraction == nil {
		return result
	}

	ws := newWorkingSet(pending)
	for _, extracted := range extraction.Bets {
		title := normalize.NormalizeTitle(extracted.Title)
		if title == "" {
			continue
		}

		bet, ok := ws.take(fuzzyMatch(title))
		if !ok {
			result.Unmatched = append(result.Unmatched, extracted.Title)
			continue
		}

		status, ok := normalize.NormalizeBetStatus(extracted.Status)
		if !ok {
			result.Unmatched = append(result.Unmatched, extracted.Title+MissingStatusSuffix)
			continue
		}

		result.Updates = append(result.Updates, BetUpdate{
			BetID:  bet.ID,
			Title:  bet.Title,
			Fields: gradingFields(extracted, status, reportID),
		})
	}

	result.Matched = len(result.Updates)
	return result
}

// gradingFields sets status and report id, plus whichever descriptive
// fields the extraction actually carried.
func gradingFields(extracted models.ExtractedBet, status models.BetStatus, reportID int64) models.BetFields {
	rid := reportID
	fields := models.BetFields{
		Status:   &status,
		ReportID: &rid,
	}

	fields.ResultNotes = normalize.FirstNonBlank(extracted.ResultNotes, extracted.Notes, extracted.Description)
	fields.Stake = normalize.Round2(extracted.Stake)
	if odds := normalize.TrimmedString(extracted.Odds); odds != nil {
		fields.Odds = odds
		fields.DecimalOdds = normalize.DecimalOddsFromString(odds)
	}
	fields.Category = normalize.TrimmedString(extracted.Category)
	fields.EventDate = normalize.NormalizeDate(extracted.EventDate)

	return fields
}
