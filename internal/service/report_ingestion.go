package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/extraction"
	"github.com/yourusername/roi-ledger/internal/logger"
	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/notify"
	"github.com/yourusername/roi-ledger/internal/reconcile"
	"github.com/yourusername/roi-ledger/internal/store"
)

// IngestResult is the outcome of one report import
type IngestResult struct {
	UploadID      int64               `json:"-"`
	Report        models.ReportRecord `json:"report"`
	UpdatedBets   int                 `json:"updatedBets"`
	UnmatchedBets []string            `json:"unmatchedBets"`
}

// ReportIngestionService imports PDF reports: it extracts the document,
// merges the report row and grades the pending bets it mentions. Every
// import is tracked by an upload row.
type ReportIngestionService struct {
	store     store.Store
	extractor extraction.Extractor
	maxBytes  int64
	opts      options
	audit     *logger.AuditLogger
	ingestLog *logger.IngestLogger
	logger    *logrus.Entry
}

// NewReportIngestionService creates the ingestion service
func NewReportIngestionService(
	st store.Store,
	extractor extraction.Extractor,
	maxBytes int64,
	log *logrus.Logger,
	opts ...Option,
) *ReportIngestionService {
	return &ReportIngestionService{
		store:     st,
		extractor: extractor,
		maxBytes:  maxBytes,
		opts:      buildOptions(opts),
		audit:     logger.NewAuditLogger(log),
		ingestLog: logger.NewIngestLogger(log),
		logger:    log.WithField("component", "report_ingestion"),
	}
}

// Ready reports whether the extractor can be called
func (s *ReportIngestionService) Ready() bool {
	if s.extractor == nil {
		return false
	}
	if c, ok := s.extractor.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Ingest imports one PDF report. A blank fileName gets a generated one.
// On any collaborator failure the upload is marked failed and the error is
// returned; bets graded before the failure stay graded.
func (s *ReportIngestionService) Ingest(ctx context.Context, fileName string, pdf []byte) (*IngestResult, error) {
	if !s.Ready() {
		return nil, ErrExtractionUnavailable
	}
	if len(pdf) == 0 {
		return nil, ErrEmptyReport
	}
	if s.maxBytes > 0 && int64(len(pdf)) > s.maxBytes {
		return nil, &ReportTooLargeError{Limit: s.maxBytes}
	}
	if strings.TrimSpace(fileName) == "" {
		fileName = fmt.Sprintf("report-%d.pdf", s.opts.now().UnixMilli())
	}

	upload, err := s.store.CreateUpload(ctx, models.UploadRecord{
		Type:     models.UploadTypeResultPDF,
		Filename: fileName,
		Status:   models.UploadStatusProcessing,
	})
	if err != nil {
		metrics.RecordReportImport(false)
		s.audit.LogReportFailed(0, fileName, err)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	result, err := s.process(ctx, fileName, pdf)
	if err == nil && upload.ID != 0 {
		reportID := result.Report.ID
		err = s.store.UpdateUpload(ctx, upload.ID, models.UploadUpdate{
			Status:            models.UploadStatusCompleted,
			ProcessedReportID: &reportID,
			ClearError:        true,
		})
		if err != nil {
			err = fmt.Errorf("failed to complete upload: %w", err)
		}
	}
	if err != nil {
		if result != nil {
			s.opts.invalidate()
		}
		s.markFailed(ctx, upload.ID, err)
		metrics.RecordReportImport(false)
		s.audit.LogReportFailed(upload.ID, fileName, err)
		return nil, err
	}

	result.UploadID = upload.ID
	metrics.RecordReportImport(true)
	s.audit.LogReportImported(upload.ID, fileName, result.Report.Slug, result.Report.ID,
		result.UpdatedBets, len(result.UnmatchedBets))
	s.opts.changed(notify.NewReportImported(notify.ReportImported{
		ReportID:  result.Report.ID,
		Slug:      result.Report.Slug,
		Label:     result.Report.Label,
		Updated:   result.UpdatedBets,
		Unmatched: result.UnmatchedBets,
	}))
	return result, nil
}

// process runs extraction and reconciliation. Once the report row is written
// the partial result is returned alongside any later error.
func (s *ReportIngestionService) process(ctx context.Context, fileName string, pdf []byte) (*IngestResult, error) {
	start := time.Now()
	extracted, err := s.extractor.Extract(ctx, pdf, fileName)
	if err != nil {
		return nil, err
	}
	s.ingestLog.LogExtraction(fileName, s.modelName(), len(pdf), len(extracted.Bets),
		float64(time.Since(start).Milliseconds()))

	draft := reconcile.DeriveReportFields(extracted.Report, extracted.Notes, fileName)
	report, err := s.store.UpsertReport(ctx, draft)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Report: report, UnmatchedBets: []string{}}
	if !extracted.HasBets() {
		return result, nil
	}

	pending, err := s.store.ListPendingBets(ctx)
	if err != nil {
		return result, err
	}

	outcome := reconcile.Reconcile(extracted, pending, report.ID)
	for _, update := range outcome.Updates {
		if err := s.store.UpdateBet(ctx, update.BetID, update.Fields); err != nil {
			return result, err
		}
		result.UpdatedBets++

		status := string(*update.Fields.Status)
		metrics.RecordBetGraded(status)
		s.audit.LogBetGraded(update.BetID, update.Title, status, report.ID)
	}

	result.UnmatchedBets = outcome.Unmatched
	metrics.RecordUnmatched(len(outcome.Unmatched))
	s.ingestLog.LogReconciliation(report.ID, len(pending), outcome.Matched, outcome.Unmatched)
	for _, title := range outcome.Unmatched {
		s.ingestLog.LogUnmatched(report.ID, title)
	}
	return result, nil
}

// markFailed records the failure on the upload row. It is best effort: the
// original error is what the caller sees.
func (s *ReportIngestionService) markFailed(ctx context.Context, uploadID int64, cause error) {
	if uploadID == 0 {
		return
	}
	message := truncate(cause.Error(), models.MaxUploadErrorLength)
	err := s.store.UpdateUpload(ctx, uploadID, models.UploadUpdate{
		Status: models.UploadStatusFailed,
		Error:  &message,
	})
	if err != nil {
		s.logger.WithError(err).WithField("upload_id", uploadID).Warn("Failed to mark upload as failed")
	}
}

func (s *ReportIngestionService) modelName() string {
	if m, ok := s.extractor.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
