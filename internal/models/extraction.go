package models

// Extraction is the canonical form of a document-extraction result. Every
// field has already been through the normalization pass; nil means the
// source had no usable value.
type Extraction struct {
	Report ExtractedReport
	Bets   []ExtractedBet
	Notes  *string
}

// ExtractedReport holds the report summary fields read from a document
type ExtractedReport struct {
	Label        *string
	ReportDate   *string
	Scope        *string
	TotalWagered *float64
	TotalReturn  *float64
	NetProfit    *float64
	ROIPercent   *float64
	HitRate      *float64
	Summary      *string
}

// ExtractedBet holds one graded bet read from a document. Title and Status
// keep the raw text so unmatched entries can be reported verbatim.
type ExtractedBet struct {
	Title       string
	Status      string
	Stake       *float64
	Odds        *string
	EventDate   *string
	Category    *string
	ResultNotes *string
	Notes       *string
	Description *string
}

// HasBets reports whether the extraction carries any bet results
func (e *Extraction) HasBets() bool {
	return e != nil && len(e.Bets) > 0
}
