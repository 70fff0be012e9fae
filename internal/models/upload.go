package models

import "time"

// UploadType identifies what an upload carried
type UploadType string

const (
	UploadTypeResultPDF   UploadType = "result_pdf"
	UploadTypeCurrentBets UploadType = "current_bets"
)

// UploadStatus tracks the processing state of an upload
type UploadStatus string

const (
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// MaxUploadErrorLength bounds the error text stored on a failed upload
const MaxUploadErrorLength = 500

// UploadRecord is the audit row kept for every admin submission
type UploadRecord struct {
	ID                int64        `db:"id" json:"id"`
	Type              UploadType   `db:"type" json:"type"`
	Filename          string       `db:"filename" json:"filename"`
	Status            UploadStatus `db:"status" json:"status"`
	ProcessedReportID *int64       `db:"processed_report_id" json:"processed_report_id"`
	StoragePath       *string      `db:"storage_path" json:"storage_path"`
	Error             *string      `db:"error" json:"error"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `db:"updated_at" json:"updated_at"`
}

// UploadUpdate carries the columns changed when an upload finishes
type UploadUpdate struct {
	Status            UploadStatus
	ProcessedReportID *int64
	Error             *string
	// ClearError writes explicit NULLs for error and storage_path
	ClearError bool
}

// Columns returns the update as a column map
func (u UploadUpdate) Columns() map[string]interface{} {
	cols := map[string]interface{}{"status": string(u.Status)}
	if u.ProcessedReportID != nil {
		cols["processed_report_id"] = *u.ProcessedReportID
	}
	if u.Error != nil {
		cols["error"] = *u.Error
	} else if u.ClearError {
		cols["error"] = nil
		cols["storage_path"] = nil
	}
	return cols
}
