// Package reconcile turns document extractions into report rows and bet
// updates. Nothing in this package performs I/O; callers fetch the inputs
// and persist the outputs.
package reconcile

import (
	"strings"

	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

// DeriveReportFields builds the report draft for an extraction, filling in
// totals that can be computed from the ones the document did provide.
func DeriveReportFields(report models.ExtractedReport, extractionNotes *string, fileName string) models.ReportDraft {
	label := ResolveLabel(report.Label, fileName)

	totalWagered := normalize.Round2(report.TotalWagered)
	totalReturn := normalize.Round2(report.TotalReturn)
	netProfit := normalize.Round2(report.NetProfit)
	roiPercent := normalize.Round2(report.ROIPercent)

	if totalWagered != nil && totalReturn != nil && netProfit == nil {
		netProfit = normalize.Round2(normalize.Float(*totalReturn - *totalWagered))
	}
	if totalWagered != nil && netProfit != nil && totalReturn == nil {
		totalReturn = normalize.Round2(normalize.Float(*totalWagered + *netProfit))
	}
	if totalWagered != nil && *totalWagered != 0 && netProfit != nil && roiPercent == nil {
		roiPercent = normalize.Round2(normalize.Float(*netProfit / *totalWagered * 100))
	}

	return models.ReportDraft{
		Slug:         normalize.Slugify(label),
		Label:        label,
		ReportDate:   normalize.NormalizeDate(report.ReportDate),
		Scope:        normalize.TrimmedString(report.Scope),
		TotalWagered: totalWagered,
		TotalReturn:  totalReturn,
		NetProfit:    netProfit,
		ROIPercent:   roiPercent,
		HitRate:      normalize.Round2(report.HitRate),
		Summary:      ResolveSummary(report.Summary, extractionNotes),
		SourcePDF:    fileName,
	}
}

// ResolveLabel prefers the extracted label and falls back to the file name
// without its .pdf extension.
func ResolveLabel(extracted *string, fileName string) string {
	if label := normalize.TrimmedString(extracted); label != nil {
		return *label
	}
	return strings.TrimSpace(normalize.StripPDFExtension(fileName))
}

// ResolveSummary prefers the report summary, then the extraction notes
func ResolveSummary(summary, notes *string) *string {
	return normalize.FirstNonBlank(summary, notes)
}
