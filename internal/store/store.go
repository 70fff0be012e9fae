// Package store persists reports, bets and uploads. Two implementations
// share the Store contract: a PostgREST client and a direct Postgres one.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/models"
)

// Table names
const (
	TableReports = "reports"
	TableBets    = "bets"
	TableUploads = "uploads"
)

// Store is the data access contract used by the services
type Store interface {
	ListReports(ctx context.Context) ([]models.ReportRecord, error)
	ListPendingBets(ctx context.Context) ([]models.BetRecord, error)
	ListRecentResults(ctx context.Context, limit int) ([]models.BetRecord, error)
	// ListBets returns every bet, or only those in statuses, newest update first
	ListBets(ctx context.Context, statuses ...models.BetStatus) ([]models.BetRecord, error)
	CreateBet(ctx context.Context, fields models.BetFields) (models.BetRecord, error)
	UpdateBet(ctx context.Context, id int64, fields models.BetFields) error
	// UpsertReport inserts the draft or merges it into the row with the same slug
	UpsertReport(ctx context.Context, draft models.ReportDraft) (models.ReportRecord, error)
	CreateUpload(ctx context.Context, upload models.UploadRecord) (models.UploadRecord, error)
	UpdateUpload(ctx context.Context, id int64, update models.UploadUpdate) error
	Ping(ctx context.Context) error
}

// RequestError is a non-2xx response from the data store
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("data store request failed (%d): %s", e.Status, e.Body)
}

// observe records a store operation in the metrics registry
func observe(operation string, start time.Time, err error) {
	metrics.RecordStoreRequest(operation, time.Since(start).Seconds(), err)
}

// reportColumns maps a draft to its column values
func reportColumns(draft models.ReportDraft) map[string]interface{} {
	return map[string]interface{}{
		"slug":          draft.Slug,
		"label":         draft.Label,
		"report_date":   nullableString(draft.ReportDate),
		"scope":         nullableString(draft.Scope),
		"total_wagered": nullableFloat(draft.TotalWagered),
		"total_return":  nullableFloat(draft.TotalReturn),
		"net_profit":    nullableFloat(draft.NetProfit),
		"roi_percent":   nullableFloat(draft.ROIPercent),
		"hit_rate":      nullableFloat(draft.HitRate),
		"summary":       nullableString(draft.Summary),
		"source_pdf":    draft.SourcePDF,
	}
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
