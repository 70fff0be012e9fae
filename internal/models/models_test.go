package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetStatus(t *testing.T) {
	assert.False(t, BetStatusPending.IsTerminal())
	assert.True(t, BetStatusPending.IsValid())
	for _, s := range []BetStatus{BetStatusWon, BetStatusLost, BetStatusPush, BetStatusVoid} {
		assert.True(t, s.IsTerminal(), s)
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, BetStatus("settled").IsValid())
}

func TestBetRecordGrading(t *testing.T) {
	reportID := int64(3)
	bet := BetRecord{Status: BetStatusPending}
	assert.True(t, bet.IsPending())
	assert.False(t, bet.IsGraded())

	bet.Status = BetStatusWon
	assert.False(t, bet.IsGraded())
	bet.ReportID = &reportID
	assert.True(t, bet.IsGraded())
}

func TestBetFieldsColumns(t *testing.T) {
	title := "Chiefs -3"
	stake := 25.0
	status := BetStatusWon
	reportID := int64(9)

	t.Run("partial update omits nil fields", func(t *testing.T) {
		cols := BetFields{Stake: &stake, Status: &status, ReportID: &reportID}.Columns()
		assert.Equal(t, map[string]interface{}{
			"stake":     25.0,
			"status":    "won",
			"report_id": int64(9),
		}, cols)
	})

	t.Run("clear unset writes nulls for descriptive columns", func(t *testing.T) {
		pending := BetStatusPending
		cols := BetFields{Title: &title, Status: &pending, ClearUnset: true}.Columns()
		assert.Equal(t, map[string]interface{}{
			"title":        "Chiefs -3",
			"description":  nil,
			"stake":        nil,
			"odds":         nil,
			"decimal_odds": nil,
			"event_date":   nil,
			"category":     nil,
			"status":       "pending",
		}, cols)
	})
}

func TestUploadUpdateColumns(t *testing.T) {
	reportID := int64(12)
	cols := UploadUpdate{Status: UploadStatusCompleted, ProcessedReportID: &reportID, ClearError: true}.Columns()
	assert.Equal(t, map[string]interface{}{
		"status":              "completed",
		"processed_report_id": int64(12),
		"error":               nil,
		"storage_path":        nil,
	}, cols)

	msg := "boom"
	cols = UploadUpdate{Status: UploadStatusFailed, Error: &msg}.Columns()
	assert.Equal(t, map[string]interface{}{"status": "failed", "error": "boom"}, cols)
}

func TestExtractionHasBets(t *testing.T) {
	var nilExtraction *Extraction
	assert.False(t, nilExtraction.HasBets())
	assert.False(t, (&Extraction{}).HasBets())
	assert.True(t, (&Extraction{Bets: []ExtractedBet{{Title: "x"}}}).HasBets())
}
