//go:build integration

package store

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/roi-ledger/internal/config"
	"github.com/yourusername/roi-ledger/internal/database"
	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

const testSchemaSQL = `
CREATE TABLE IF NOT EXISTS reports (
	id BIGSERIAL PRIMARY KEY,
	slug TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL,
	report_date DATE,
	scope TEXT,
	total_wagered NUMERIC,
	total_return NUMERIC,
	net_profit NUMERIC,
	roi_percent NUMERIC,
	hit_rate NUMERIC,
	summary TEXT,
	source_pdf TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS bets (
	id BIGSERIAL PRIMARY KEY,
	report_id BIGINT REFERENCES reports(id),
	title TEXT NOT NULL,
	description TEXT,
	stake NUMERIC,
	odds TEXT,
	decimal_odds NUMERIC,
	event_date DATE,
	status TEXT NOT NULL DEFAULT 'pending',
	result_notes TEXT,
	category TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS uploads (
	id BIGSERIAL PRIMARY KEY,
	type TEXT NOT NULL,
	filename TEXT NOT NULL,
	status TEXT NOT NULL,
	processed_report_id BIGINT REFERENCES reports(id),
	storage_path TEXT,
	error TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
TRUNCATE uploads, bets, reports RESTART IDENTITY CASCADE;`

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("ROI_LEDGER_TEST_DB_HOST")
	if host == "" {
		t.Skip("ROI_LEDGER_TEST_DB_HOST not set")
	}
	port, err := strconv.Atoi(envOr("ROI_LEDGER_TEST_DB_PORT", "5432"))
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.NewDB(ctx, &config.DatabaseConfig{
		Host:           host,
		Port:           port,
		Name:           envOr("ROI_LEDGER_TEST_DB_NAME", "roi_ledger_test"),
		User:           envOr("ROI_LEDGER_TEST_DB_USER", "postgres"),
		Password:       os.Getenv("ROI_LEDGER_TEST_DB_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.GetPool().Exec(ctx, testSchemaSQL)
	require.NoError(t, err)
	return NewPostgresStore(db)
}

func TestPostgresStoreLifecycle(t *testing.T) {
	st := setupPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, st.Ping(ctx))

	first, err := st.UpsertReport(ctx, draftFixture())
	require.NoError(t, err)
	assert.Equal(t, "week-3", first.Slug)

	merged := draftFixture()
	merged.Label = "Week 3 (final)"
	merged.TotalWagered = normalize.Float(100)
	second, err := st.UpsertReport(ctx, merged)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Week 3 (final)", second.Label)
	require.NotNil(t, second.TotalWagered)
	assert.Equal(t, 100.0, *second.TotalWagered)

	title := "Chiefs -3"
	pending := models.BetStatusPending
	bet, err := st.CreateBet(ctx, models.BetFields{
		Title:      &title,
		Stake:      normalize.Float(25),
		EventDate:  normalize.String("2024-09-15"),
		Status:     &pending,
		ClearUnset: true,
	})
	require.NoError(t, err)
	assert.True(t, bet.IsPending())
	require.NotNil(t, bet.EventDate)
	assert.Equal(t, "2024-09-15", *bet.EventDate)

	open, err := st.ListPendingBets(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	won := models.BetStatusWon
	require.NoError(t, st.UpdateBet(ctx, bet.ID, models.BetFields{Status: &won, ReportID: &second.ID}))

	recent, err := st.ListRecentResults(ctx, 12)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].IsGraded())

	byStatus, err := st.ListBets(ctx, models.BetStatusWon, models.BetStatusLost)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	err = st.UpdateBet(ctx, bet.ID+100, models.BetFields{Status: &won})
	assert.ErrorIs(t, err, models.ErrNotFound)

	upload, err := st.CreateUpload(ctx, models.UploadRecord{
		Type:     models.UploadTypeResultPDF,
		Filename: "week3.pdf",
		Status:   models.UploadStatusProcessing,
	})
	require.NoError(t, err)
	assert.NotZero(t, upload.ID)
	require.NoError(t, st.UpdateUpload(ctx, upload.ID, models.UploadUpdate{
		Status:            models.UploadStatusCompleted,
		ProcessedReportID: &second.ID,
		ClearError:        true,
	}))

	reports, err := st.ListReports(ctx)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
