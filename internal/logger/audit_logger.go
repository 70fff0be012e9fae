package logger

import (
	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogReportImported logs a completed PDF import.
func (al *AuditLogger) LogReportImported(uploadID int64, fileName, slug string, reportID int64, updatedBets, unmatchedBets int) {
	al.WithFields(logrus.Fields{
		"upload_id":      uploadID,
		"file_name":      fileName,
		"report_slug":    slug,
		"report_id":      reportID,
		"updated_bets":   updatedBets,
		"unmatched_bets": unmatchedBets,
	}).Info("Report import recorded")
}

// LogReportFailed logs an import that was aborted.
func (al *AuditLogger) LogReportFailed(uploadID int64, fileName string, err error) {
	al.WithFields(logrus.Fields{
		"upload_id": uploadID,
		"file_name": fileName,
	}).WithError(err).Warn("Report import failed")
}

// LogBetGraded logs a pending bet moving to a graded status.
func (al *AuditLogger) LogBetGraded(betID int64, title, status string, reportID int64) {
	al.WithFields(logrus.Fields{
		"bet_id":    betID,
		"title":     title,
		"new_state": status,
		"report_id": reportID,
	}).Info("Bet graded")
}

// LogManualSubmission logs an admin bet submission.
func (al *AuditLogger) LogManualSubmission(uploadName string, created, updated int) {
	al.WithFields(logrus.Fields{
		"upload_name": uploadName,
		"created":     created,
		"updated":     updated,
	}).Info("Manual bet submission recorded")
}

// LogUnauthorizedAttempt logs an admin request that failed the token check.
func (al *AuditLogger) LogUnauthorizedAttempt(path, remoteAddr string) {
	al.WithFields(logrus.Fields{
		"path":        path,
		"remote_addr": remoteAddr,
	}).Warn("Rejected admin request")
}
