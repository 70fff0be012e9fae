package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

const testReportID int64 = 42

func pendingBet(id int64, title string) models.BetRecord {
	return models.BetRecord{ID: id, Title: title, Status: models.BetStatusPending}
}

func extractedBet(title, status string) models.ExtractedBet {
	return models.ExtractedBet{Title: title, Status: status}
}

func TestReconcileEndToEndScenario(t *testing.T) {
	pending := []models.BetRecord{
		pendingBet(1, "Chiefs -3"),
		pendingBet(2, "Over 47.5 Bills/Jets"),
	}
	extraction := &models.Extraction{Bets: []models.ExtractedBet{
		extractedBet("Chiefs -3.0", "won"),
		extractedBet("Random Team ML", "lost"),
	}}

	result := Reconcile(extraction, pending, testReportID)

	require.Len(t, result.Updates, 1)
	assert.Equal(t, 1, result.Matched)
	update := result.Updates[0]
	assert.Equal(t, int64(1), update.BetID)
	require.NotNil(t, update.Fields.Status)
	assert.Equal(t, models.BetStatusWon, *update.Fields.Status)
	require.NotNil(t, update.Fields.ReportID)
	assert.Equal(t, testReportID, *update.Fields.ReportID)
	assert.Equal(t, []string{"Random Team ML"}, result.Unmatched)
}

func TestReconcileMatchingRules(t *testing.T) {
	tests := []struct {
		name          string
		pending       []models.BetRecord
		extracted     []models.ExtractedBet
		wantIDs       []int64
		wantUnmatched []string
	}{
		{
			name:      "exact match ignoring case and spacing",
			pending:   []models.BetRecord{pendingBet(1, "Eagles  ML")},
			extracted: []models.ExtractedBet{extractedBet(" eagles ml ", "win")},
			wantIDs:   []int64{1},
		},
		{
			name:      "unicode spaces from OCR count as whitespace",
			pending:   []models.BetRecord{pendingBet(1, "Bills\u00a0ML Week 3")},
			extracted: []models.ExtractedBet{extractedBet("Bills ML\u2009Week 3", "won")},
			wantIDs:   []int64{1},
		},
		{
			name:      "pending title contains extracted title",
			pending:   []models.BetRecord{pendingBet(1, "Ravens -6.5 (1u)")},
			extracted: []models.ExtractedBet{extractedBet("Ravens -6.5", "L")},
			wantIDs:   []int64{1},
		},
		{
			name:      "extracted title contains pending title",
			pending:   []models.BetRecord{pendingBet(1, "Lions +3")},
			extracted: []models.ExtractedBet{extractedBet("Week 4: Lions +3 vs GB", "push")},
			wantIDs:   []int64{1},
		},
		{
			name:      "first pending bet wins a tie",
			pending:   []models.BetRecord{pendingBet(7, "Bills ML parlay"), pendingBet(3, "Bills ML")},
			extracted: []models.ExtractedBet{extractedBet("Bills ML", "won")},
			wantIDs:   []int64{7},
		},
		{
			name:    "pending bet is consumed by the first extracted result",
			pending: []models.BetRecord{pendingBet(1, "Packers -2.5")},
			extracted: []models.ExtractedBet{
				extractedBet("Packers -2.5", "won"),
				extractedBet("Packers -2.5 1H", "lost"),
			},
			wantIDs:       []int64{1},
			wantUnmatched: []string{"Packers -2.5 1H"},
		},
		{
			name:    "duplicate pending titles are consumed in order",
			pending: []models.BetRecord{pendingBet(1, "Over 44"), pendingBet(2, "Over 44")},
			extracted: []models.ExtractedBet{
				extractedBet("Over 44", "won"),
				extractedBet("Over 44", "lost"),
			},
			wantIDs: []int64{1, 2},
		},
		{
			name:    "blank extracted titles are skipped silently",
			pending: []models.BetRecord{pendingBet(1, "Texans +7")},
			extracted: []models.ExtractedBet{
				extractedBet("   ", "won"),
				extractedBet("", "won"),
			},
			wantIDs: nil,
		},
		{
			name:          "blank pending titles never match",
			pending:       []models.BetRecord{pendingBet(1, "  ")},
			extracted:     []models.ExtractedBet{extractedBet("Jets ML", "won")},
			wantUnmatched: []string{"Jets ML"},
		},
		{
			name:    "unrecognised status consumes the bet and is reported",
			pending: []models.BetRecord{pendingBet(1, "Saints +4"), pendingBet(2, "Saints +4 alt")},
			extracted: []models.ExtractedBet{
				extractedBet("Saints +4", "graded"),
				extractedBet("Saints +4", "won"),
			},
			wantIDs:       []int64{2},
			wantUnmatched: []string{"Saints +4 (missing status)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Reconcile(&models.Extraction{Bets: tt.extracted}, tt.pending, testReportID)

			var ids []int64
			for _, u := range result.Updates {
				ids = append(ids, u.BetID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, len(tt.wantIDs), result.Matched)
			if tt.wantUnmatched == nil {
				assert.Empty(t, result.Unmatched)
			} else {
				assert.Equal(t, tt.wantUnmatched, result.Unmatched)
			}
		})
	}
}

func TestReconcilePartialUpdateFields(t *testing.T) {
	pending := []models.BetRecord{pendingBet(5, "Cowboys -7"), pendingBet(6, "Under 41")}
	extraction := &models.Extraction{Bets: []models.ExtractedBet{
		{
			Title:       "Cowboys -7",
			Status:      "W",
			Stake:       normalize.Float(110.456),
			Odds:        normalize.String(" -110 "),
			EventDate:   normalize.String("Sep 15, 2024"),
			Category:    normalize.String(" NFL Spread "),
			ResultNotes: normalize.String("  "),
			Notes:       normalize.String("Covered late"),
			Description: normalize.String("ignored"),
		},
		{
			Title:  "Under 41",
			Status: "loss",
			Odds:   normalize.String("   "),
		},
	}}

	result := Reconcile(extraction, pending, testReportID)
	require.Len(t, result.Updates, 2)

	full := result.Updates[0].Fields
	assert.Equal(t, "Covered late", *full.ResultNotes)
	assert.Equal(t, 110.46, *full.Stake)
	assert.Equal(t, "-110", *full.Odds)
	assert.Equal(t, 1.909, *full.DecimalOdds)
	assert.Equal(t, "NFL Spread", *full.Category)
	assert.Equal(t, "2024-09-15", *full.EventDate)
	assert.Nil(t, full.Title)

	sparse := result.Updates[1].Fields
	assert.Equal(t, models.BetStatusLost, *sparse.Status)
	assert.Nil(t, sparse.ResultNotes)
	assert.Nil(t, sparse.Stake)
	assert.Nil(t, sparse.Odds)
	assert.Nil(t, sparse.DecimalOdds)
	assert.Nil(t, sparse.Category)
	assert.Nil(t, sparse.EventDate)

	cols := sparse.Columns()
	assert.Equal(t, map[string]interface{}{"status": "lost", "report_id": testReportID}, cols)
}

func TestReconcileIsIdempotentOnceGraded(t *testing.T) {
	extraction := &models.Extraction{Bets: []models.ExtractedBet{
		extractedBet("Chiefs -3", "won"),
		extractedBet("Bills ML", "lost"),
	}}

	first := Reconcile(extraction, []models.BetRecord{pendingBet(1, "Chiefs -3"), pendingBet(2, "Bills ML")}, testReportID)
	require.Equal(t, 2, first.Matched)

	second := Reconcile(extraction, nil, testReportID)
	assert.Zero(t, second.Matched)
	assert.Empty(t, second.Updates)
	assert.Equal(t, []string{"Chiefs -3", "Bills ML"}, second.Unmatched)
}

func TestReconcileEmptyInputs(t *testing.T) {
	result := Reconcile(nil, []models.BetRecord{pendingBet(1, "x")}, testReportID)
	assert.NotNil(t, result.Updates)
	assert.NotNil(t, result.Unmatched)
	assert.Zero(t, result.Matched)

	result = Reconcile(&models.Extraction{}, nil, testReportID)
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Unmatched)
}

func TestReconcileDoesNotMutatePendingInput(t *testing.T) {
	pending := []models.BetRecord{pendingBet(1, "A"), pendingBet(2, "B")}
	snapshot := append([]models.BetRecord(nil), pending...)

	Reconcile(&models.Extraction{Bets: []models.ExtractedBet{extractedBet("A", "won")}}, pending, testReportID)
	assert.Equal(t, snapshot, pending)
}

func TestDeriveReportFields(t *testing.T) {
	t.Run("derives net profit and ROI", func(t *testing.T) {
		draft := DeriveReportFields(models.ExtractedReport{
			Label:        normalize.String("NFL Week 3 Report!!"),
			TotalWagered: normalize.Float(100),
			TotalReturn:  normalize.Float(120),
		}, nil, "week3.pdf")

		require.NotNil(t, draft.NetProfit)
		require.NotNil(t, draft.ROIPercent)
		assert.Equal(t, 20.0, *draft.NetProfit)
		assert.Equal(t, 20.0, *draft.ROIPercent)
		assert.Equal(t, "nfl-week-3-report", draft.Slug)
		assert.Equal(t, "week3.pdf", draft.SourcePDF)
	})

	t.Run("derives total return from net profit", func(t *testing.T) {
		draft := DeriveReportFields(models.ExtractedReport{
			TotalWagered: normalize.Float(250),
			NetProfit:    normalize.Float(-37.5),
		}, nil, "x.pdf")

		assert.Equal(t, 212.5, *draft.TotalReturn)
		assert.Equal(t, -15.0, *draft.ROIPercent)
	})

	t.Run("keeps provided values", func(t *testing.T) {
		draft := DeriveReportFields(models.ExtractedReport{
			TotalWagered: normalize.Float(100),
			TotalReturn:  normalize.Float(150),
			NetProfit:    normalize.Float(49.999),
			ROIPercent:   normalize.Float(12.3456),
			HitRate:      normalize.Float(55.555),
		}, nil, "x.pdf")

		assert.Equal(t, 50.0, *draft.NetProfit)
		assert.Equal(t, 12.35, *draft.ROIPercent)
		assert.Equal(t, 55.56, *draft.HitRate)
	})

	t.Run("zero wagered leaves ROI unknown", func(t *testing.T) {
		draft := DeriveReportFields(models.ExtractedReport{
			TotalWagered: normalize.Float(0),
			NetProfit:    normalize.Float(0),
		}, nil, "x.pdf")

		assert.Nil(t, draft.ROIPercent)
		assert.Equal(t, 0.0, *draft.TotalReturn)
	})

	t.Run("unknown totals stay unknown", func(t *testing.T) {
		draft := DeriveReportFields(models.ExtractedReport{TotalReturn: normalize.Float(80)}, nil, "x.pdf")

		assert.Nil(t, draft.TotalWagered)
		assert.Nil(t, draft.NetProfit)
		assert.Nil(t, draft.ROIPercent)
		assert.Nil(t, draft.HitRate)
	})
}

func TestDeriveReportLabelAndSummary(t *testing.T) {
	draft := DeriveReportFields(models.ExtractedReport{
		Label:      normalize.String("   "),
		ReportDate: normalize.String("2024-09-22T12:00:00Z"),
		Scope:      normalize.String("  NFL  "),
		Summary:    normalize.String(""),
	}, normalize.String(" Strong week for unders. "), "Week 4 Recap.PDF")

	assert.Equal(t, "Week 4 Recap", draft.Label)
	assert.Equal(t, "week-4-recap", draft.Slug)
	assert.Equal(t, "2024-09-22", *draft.ReportDate)
	assert.Equal(t, "NFL", *draft.Scope)
	assert.Equal(t, "Strong week for unders.", *draft.Summary)

	assert.Equal(t, "Own summary", *ResolveSummary(normalize.String("Own summary"), normalize.String("notes")))
	assert.Nil(t, ResolveSummary(nil, normalize.String(" ")))
}

func TestSameLabelProducesSameSlug(t *testing.T) {
	a := DeriveReportFields(models.ExtractedReport{Label: normalize.String("Week 5 ROI")}, nil, "a.pdf")
	b := DeriveReportFields(models.ExtractedReport{Label: normalize.String("week 5 roi!")}, nil, "b.pdf")
	assert.Equal(t, a.Slug, b.Slug)
}

func TestSanitizeManualBets(t *testing.T) {
	raw := []RawManualBet{
		{"title": "  Chiefs -3 ", "description": " Divisional ", "notes": "ignored", "stake": "$1,100", "odds": " -110 ", "eventDate": "Sep 15, 2024", "category": " NFL "},
		{"title": "Bills ML", "notes": "from notes", "stake": 50.0, "odds": "2.2", "date": "2024-09-16"},
		{"title": "Blank description", "description": "   ", "notes": "not used"},
		{"title": "   "},
		{"stake": 10.0},
	}

	inputs := SanitizeManualBets(raw)
	require.Len(t, inputs, 3)

	first := inputs[0]
	assert.Equal(t, "Chiefs -3", first.Title)
	assert.Equal(t, "Divisional", *first.Description)
	assert.Equal(t, 1100.0, *first.Stake)
	assert.Equal(t, "-110", *first.Odds)
	assert.Equal(t, 1.909, *first.DecimalOdds)
	assert.Equal(t, "2024-09-15", *first.EventDate)
	assert.Equal(t, "NFL", *first.Category)

	second := inputs[1]
	assert.Equal(t, "from notes", *second.Description)
	assert.Equal(t, 2.2, *second.DecimalOdds)
	assert.Equal(t, "2024-09-16", *second.EventDate)
	assert.Nil(t, second.Category)

	assert.Nil(t, inputs[2].Description)
}

func TestPlanManualUpsert(t *testing.T) {
	pending := []models.BetRecord{
		pendingBet(1, "Chiefs -3"),
		pendingBet(2, "Chiefs -3"),
		pendingBet(3, "Over 47.5 Bills/Jets"),
	}
	inputs := []ManualBetInput{
		{Title: "chiefs  -3"},
		{Title: "Over 47.5"},
		{Title: "CHIEFS -3", Stake: normalize.Float(25)},
		{Title: "Chiefs -3"},
	}

	plan := PlanManualUpsert(inputs, pending)

	assert.Equal(t, 2, plan.Updated())
	assert.Equal(t, 2, plan.Created())
	assert.Equal(t, int64(1), plan.Updates[0].BetID)
	assert.Equal(t, int64(2), plan.Updates[1].BetID)
	assert.Equal(t, 25.0, *plan.Updates[1].Fields.Stake)
	assert.Equal(t, "Over 47.5", *plan.Creates[0].Title)

	cols := plan.Updates[0].Fields.Columns()
	assert.Equal(t, "pending", cols["status"])
	assert.Contains(t, cols, "stake")
	assert.Nil(t, cols["stake"])
	assert.NotContains(t, cols, "report_id")
}
