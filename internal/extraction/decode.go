package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

var (
	openingFence = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closingFence = regexp.MustCompile("```$")
)

// rawExtraction mirrors the model's JSON before normalization
type rawExtraction struct {
	Report json.RawMessage `json:"report"`
	Bets   json.RawMessage `json:"bets"`
	Notes  interface{}     `json:"notes"`
}

// StripJSONFence removes a surrounding markdown code fence, if any
func StripJSONFence(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = openingFence.ReplaceAllString(cleaned, "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// DecodeExtraction parses a model payload into the canonical extraction.
// Loosely typed fields are normalized here; values that cannot be read
// become nil rather than failing the decode. Only a missing or non-object
// report is fatal.
func DecodeExtraction(payload []byte) (*models.Extraction, error) {
	cleaned := StripJSONFence(string(payload))
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}

	var raw rawExtraction
	if err := decodeWithNumbers([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var report map[string]interface{}
	if len(raw.Report) == 0 || decodeWithNumbers(raw.Report, &report) != nil || report == nil {
		return nil, fmt.Errorf("%w: missing report object", ErrMalformedResponse)
	}

	extraction := &models.Extraction{
		Report: decodeReport(report),
		Bets:   []models.ExtractedBet{},
		Notes:  normalize.TrimmedString(raw.Notes),
	}

	// A bets value that is not an array of objects carries no results.
	var bets []interface{}
	if len(raw.Bets) > 0 && decodeWithNumbers(raw.Bets, &bets) == nil {
		for _, item := range bets {
			if bet, ok := item.(map[string]interface{}); ok {
				extraction.Bets = append(extraction.Bets, decodeBet(bet))
			}
		}
	}

	return extraction, nil
}

func decodeWithNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func decodeReport(r map[string]interface{}) models.ExtractedReport {
	return models.ExtractedReport{
		Label:        text(r["label"]),
		ReportDate:   normalize.NormalizeDate(r["reportDate"]),
		Scope:        text(r["scope"]),
		TotalWagered: normalize.Number(r["totalWagered"]),
		TotalReturn:  normalize.Number(r["totalReturn"]),
		NetProfit:    normalize.Number(r["netProfit"]),
		ROIPercent:   normalize.Number(r["roiPercent"]),
		HitRate:      normalize.Number(r["hitRate"]),
		Summary:      text(r["summary"]),
	}
}

func decodeBet(b map[string]interface{}) models.ExtractedBet {
	bet := models.ExtractedBet{
		Stake:       normalize.Number(b["stake"]),
		Odds:        text(b["odds"]),
		EventDate:   normalize.NormalizeDate(b["eventDate"]),
		Category:    text(b["category"]),
		ResultNotes: text(b["resultNotes"]),
		Notes:       text(b["notes"]),
		Description: text(b["description"]),
	}
	if title, ok := b["title"].(string); ok {
		bet.Title = title
	}
	if status, ok := b["status"].(string); ok {
		bet.Status = status
	}
	return bet
}

// text reads a string field. Numbers are kept in their literal form so odds
// such as -110 survive a numeric encoding.
func text(v interface{}) *string {
	switch s := v.(type) {
	case string:
		return &s
	case json.Number:
		str := s.String()
		return &str
	default:
		return nil
	}
}
