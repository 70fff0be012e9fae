package logger

import (
	"github.com/sirupsen/logrus"
)

// IngestLogger provides dedicated logging for report extraction and reconciliation.
type IngestLogger struct {
	*logrus.Entry
}

// NewIngestLogger creates a new ingestion logger.
func NewIngestLogger(baseLogger *logrus.Logger) *IngestLogger {
	return &IngestLogger{
		Entry: baseLogger.WithField("component", "ingestion"),
	}
}

// LogExtraction logs a completed document extraction.
func (il *IngestLogger) LogExtraction(fileName, model string, pdfBytes, betsExtracted int, durationMs float64) {
	il.WithFields(logrus.Fields{
		"file_name":      fileName,
		"model":          model,
		"pdf_bytes":      pdfBytes,
		"bets_extracted": betsExtracted,
		"duration_ms":    durationMs,
	}).Info("Document extraction completed")
}

// LogReconciliation logs the outcome of matching extracted results to pending bets.
func (il *IngestLogger) LogReconciliation(reportID int64, pending, matched int, unmatched []string) {
	entry := il.WithFields(logrus.Fields{
		"report_id":       reportID,
		"pending_bets":    pending,
		"matched_bets":    matched,
		"unmatched_count": len(unmatched),
	})
	if len(unmatched) > 0 {
		entry = entry.WithField("unmatched", unmatched)
	}
	entry.Info("Reconciliation completed")
}

// LogUnmatched logs one extracted result that could not be applied.
func (il *IngestLogger) LogUnmatched(reportID int64, title string) {
	il.WithFields(logrus.Fields{
		"report_id": reportID,
		"title":     title,
	}).Debug("Extracted bet left unmatched")
}
