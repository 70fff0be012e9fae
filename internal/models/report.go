package models

import "time"

// ReportRecord represents one ingested weekly ROI summary
type ReportRecord struct {
	ID           int64     `db:"id" json:"id"`
	Slug         string    `db:"slug" json:"slug"`
	Label        string    `db:"label" json:"label"`
	ReportDate   *string   `db:"report_date" json:"report_date"`
	Scope        *string   `db:"scope" json:"scope"`
	TotalWagered *float64  `db:"total_wagered" json:"total_wagered"`
	TotalReturn  *float64  `db:"total_return" json:"total_return"`
	NetProfit    *float64  `db:"net_profit" json:"net_profit"`
	ROIPercent   *float64  `db:"roi_percent" json:"roi_percent"`
	HitRate      *float64  `db:"hit_rate" json:"hit_rate"`
	Summary      *string   `db:"summary" json:"summary"`
	SourcePDF    *string   `db:"source_pdf" json:"source_pdf"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ReportDraft is the derived, not yet persisted, form of a report. The slug
// is the merge key.
type ReportDraft struct {
	Slug         string   `json:"slug"`
	Label        string   `json:"label"`
	ReportDate   *string  `json:"report_date"`
	Scope        *string  `json:"scope"`
	TotalWagered *float64 `json:"total_wagered"`
	TotalReturn  *float64 `json:"total_return"`
	NetProfit    *float64 `json:"net_profit"`
	ROIPercent   *float64 `json:"roi_percent"`
	HitRate      *float64 `json:"hit_rate"`
	Summary      *string  `json:"summary"`
	SourcePDF    string   `json:"source_pdf"`
}
