package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
)

const (
	reportSelectFields = "id,slug,label,report_date,scope,total_wagered,total_return,net_profit,roi_percent,hit_rate,summary,source_pdf,created_at,updated_at"
	betSelectFields    = "id,report_id,title,description,stake,odds,decimal_odds,event_date,status,result_notes,category,created_at,updated_at"
	uploadSelectFields = "id,type,filename,status,processed_report_id,storage_path,error,created_at,updated_at"

	preferRepresentation = "return=representation"
	preferMerge          = "resolution=merge-duplicates"
)

// Doer executes HTTP requests. httpclient.RateLimitedClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// RESTStore talks to a PostgREST endpoint such as Supabase
type RESTStore struct {
	baseURL string
	key     string
	client  Doer
	logger  *logrus.Entry
}

// NewRESTStore creates a store rooted at baseURL, authenticating with key
func NewRESTStore(baseURL, key string, client Doer, logger *logrus.Logger) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  client,
		logger:  logger.WithField("component", "rest_store"),
	}
}

type restRequest struct {
	method string
	query  url.Values
	body   interface{}
	prefer []string
}

// do sends one PostgREST request and returns the raw response body, or nil
// for 204 responses
func (s *RESTStore) do(ctx context.Context, table string, r restRequest) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, table)
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", table, err)
		}
		body = bytes.NewReader(payload)
	}

	method := r.method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", table, err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if len(r.prefer) > 0 {
		req.Header.Set("Prefer", strings.Join(r.prefer, ","))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s request failed: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", table, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Body: string(data)}
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	return data, nil
}

// rows decodes a response body into loosely typed rows. Anything other than
// a JSON array yields no rows.
func rows(data []byte) ([]map[string]interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.TrimSpace(data)[0] != '[' {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out []map[string]interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return out, nil
}

func (s *RESTStore) queryBets(ctx context.Context, op string, query url.Values) (bets []models.BetRecord, err error) {
	defer func(start time.Time) { observe(op, start, err) }(time.Now())

	query.Set("select", betSelectFields)
	data, err := s.do(ctx, TableBets, restRequest{query: query})
	if err != nil {
		return nil, err
	}
	raw, err := rows(data)
	if err != nil {
		return nil, err
	}
	bets = make([]models.BetRecord, 0, len(raw))
	for _, row := range raw {
		bets = append(bets, coerceBetRow(row))
	}
	return bets, nil
}

// ListReports returns every report, newest report date first
func (s *RESTStore) ListReports(ctx context.Context) (reports []models.ReportRecord, err error) {
	defer func(start time.Time) { observe("list_reports", start, err) }(time.Now())

	query := url.Values{}
	query.Set("select", reportSelectFields)
	query.Add("order", "report_date.desc.nullslast,created_at.desc")

	data, err := s.do(ctx, TableReports, restRequest{query: query})
	if err != nil {
		return nil, err
	}
	raw, err := rows(data)
	if err != nil {
		return nil, err
	}
	reports = make([]models.ReportRecord, 0, len(raw))
	for _, row := range raw {
		reports = append(reports, coerceReportRow(row))
	}
	return reports, nil
}

// ListPendingBets returns pending bets, earliest event first
func (s *RESTStore) ListPendingBets(ctx context.Context) ([]models.BetRecord, error) {
	query := url.Values{}
	query.Set("status", "eq."+string(models.BetStatusPending))
	query.Set("order", "event_date.asc.nullslast,created_at.asc")
	return s.queryBets(ctx, "list_pending_bets", query)
}

// ListRecentResults returns the most recently graded bets
func (s *RESTStore) ListRecentResults(ctx context.Context, limit int) ([]models.BetRecord, error) {
	query := url.Values{}
	query.Set("status", "not.eq."+string(models.BetStatusPending))
	query.Set("order", "updated_at.desc")
	query.Set("limit", fmt.Sprint(limit))
	return s.queryBets(ctx, "list_recent_results", query)
}

// ListBets returns all bets, or those in statuses, most recently updated first
func (s *RESTStore) ListBets(ctx context.Context, statuses ...models.BetStatus) ([]models.BetRecord, error) {
	query := url.Values{}
	switch len(statuses) {
	case 0:
	case 1:
		query.Set("status", "eq."+string(statuses[0]))
	default:
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		query.Set("status", "in.("+strings.Join(names, ",")+")")
	}
	query.Set("order", "updated_at.desc")
	return s.queryBets(ctx, "list_bets", query)
}

// CreateBet inserts one bet and returns the stored row
func (s *RESTStore) CreateBet(ctx context.Context, fields models.BetFields) (bet models.BetRecord, err error) {
	defer func(start time.Time) { observe("create_bet", start, err) }(time.Now())

	data, err := s.do(ctx, TableBets, restRequest{
		method: http.MethodPost,
		body:   []map[string]interface{}{fields.Columns()},
		prefer: []string{preferRepresentation},
	})
	if err != nil {
		return models.BetRecord{}, err
	}
	raw, err := rows(data)
	if err != nil {
		return models.BetRecord{}, err
	}
	if len(raw) == 0 {
		return models.BetRecord{}, fmt.Errorf("create bet: %w", models.ErrNotFound)
	}
	return coerceBetRow(raw[0]), nil
}

// UpdateBet applies a partial update to one bet
func (s *RESTStore) UpdateBet(ctx context.Context, id int64, fields models.BetFields) (err error) {
	defer func(start time.Time) { observe("update_bet", start, err) }(time.Now())

	query := url.Values{}
	query.Set("id", fmt.Sprintf("eq.%d", id))
	_, err = s.do(ctx, TableBets, restRequest{
		method: http.MethodPatch,
		query:  query,
		body:   fields.Columns(),
		prefer: []string{preferRepresentation},
	})
	return err
}

// UpsertReport merges the draft on slug. PostgREST may return an empty
// representation for a merge, so the row is then read back by slug.
func (s *RESTStore) UpsertReport(ctx context.Context, draft models.ReportDraft) (report models.ReportRecord, err error) {
	defer func(start time.Time) { observe("upsert_report", start, err) }(time.Now())

	query := url.Values{}
	query.Set("on_conflict", "slug")
	data, err := s.do(ctx, TableReports, restRequest{
		method: http.MethodPost,
		query:  query,
		body:   []map[string]interface{}{reportColumns(draft)},
		prefer: []string{preferRepresentation, preferMerge},
	})
	if err != nil {
		return models.ReportRecord{}, err
	}
	raw, err := rows(data)
	if err != nil {
		return models.ReportRecord{}, err
	}
	if len(raw) > 0 {
		return coerceReportRow(raw[0]), nil
	}

	s.logger.WithField("slug", draft.Slug).Debug("Empty upsert representation, reading report back by slug")
	lookup := url.Values{}
	lookup.Set("select", reportSelectFields)
	lookup.Set("slug", "eq."+draft.Slug)
	lookup.Set("limit", "1")
	data, err = s.do(ctx, TableReports, restRequest{query: lookup})
	if err != nil {
		return models.ReportRecord{}, err
	}
	raw, err = rows(data)
	if err != nil {
		return models.ReportRecord{}, err
	}
	if len(raw) == 0 {
		return models.ReportRecord{}, models.ErrNotPersisted
	}
	return coerceReportRow(raw[0]), nil
}

// CreateUpload inserts an upload audit row
func (s *RESTStore) CreateUpload(ctx context.Context, upload models.UploadRecord) (created models.UploadRecord, err error) {
	defer func(start time.Time) { observe("create_upload", start, err) }(time.Now())

	data, err := s.do(ctx, TableUploads, restRequest{
		method: http.MethodPost,
		body: []map[string]interface{}{{
			"type":     string(upload.Type),
			"filename": upload.Filename,
			"status":   string(upload.Status),
		}},
		prefer: []string{preferRepresentation},
	})
	if err != nil {
		return models.UploadRecord{}, err
	}
	raw, err := rows(data)
	if err != nil {
		return models.UploadRecord{}, err
	}
	if len(raw) == 0 {
		return upload, nil
	}
	return coerceUploadRow(raw[0]), nil
}

// UpdateUpload changes the status of an upload
func (s *RESTStore) UpdateUpload(ctx context.Context, id int64, update models.UploadUpdate) (err error) {
	defer func(start time.Time) { observe("update_upload", start, err) }(time.Now())

	query := url.Values{}
	query.Set("id", fmt.Sprintf("eq.%d", id))
	_, err = s.do(ctx, TableUploads, restRequest{
		method: http.MethodPatch,
		query:  query,
		body:   update.Columns(),
	})
	return err
}

// Ping checks that the endpoint answers an authenticated read
func (s *RESTStore) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("select", "id")
	query.Set("limit", "1")
	_, err := s.do(ctx, TableReports, restRequest{query: query})
	return err
}

func coerceReportRow(row map[string]interface{}) models.ReportRecord {
	return models.ReportRecord{
		ID:           intValue(row["id"]),
		Slug:         stringValue(row["slug"]),
		Label:        stringValue(row["label"]),
		ReportDate:   optionalString(row["report_date"]),
		Scope:        optionalString(row["scope"]),
		TotalWagered: normalize.Round2(normalize.Number(row["total_wagered"])),
		TotalReturn:  normalize.Round2(normalize.Number(row["total_return"])),
		NetProfit:    normalize.Round2(normalize.Number(row["net_profit"])),
		ROIPercent:   normalize.Round2(normalize.Number(row["roi_percent"])),
		HitRate:      normalize.Round2(normalize.Number(row["hit_rate"])),
		Summary:      optionalString(row["summary"]),
		SourcePDF:    optionalString(row["source_pdf"]),
		CreatedAt:    timeValue(row["created_at"]),
		UpdatedAt:    timeValue(row["updated_at"]),
	}
}

func coerceBetRow(row map[string]interface{}) models.BetRecord {
	status := models.BetStatus(stringValue(row["status"]))
	if status == "" {
		status = models.BetStatusPending
	}
	return models.BetRecord{
		ID:          intValue(row["id"]),
		ReportID:    optionalInt(row["report_id"]),
		Title:       stringValue(row["title"]),
		Description: optionalString(row["description"]),
		Stake:       normalize.Round2(normalize.Number(row["stake"])),
		Odds:        optionalString(row["odds"]),
		DecimalOdds: normalize.RoundDecimal(normalize.Number(row["decimal_odds"]), 3),
		EventDate:   optionalString(row["event_date"]),
		Status:      status,
		ResultNotes: optionalString(row["result_notes"]),
		Category:    optionalString(row["category"]),
		CreatedAt:   timeValue(row["created_at"]),
		UpdatedAt:   timeValue(row["updated_at"]),
	}
}

func coerceUploadRow(row map[string]interface{}) models.UploadRecord {
	return models.UploadRecord{
		ID:                intValue(row["id"]),
		Type:              models.UploadType(stringValue(row["type"])),
		Filename:          stringValue(row["filename"]),
		Status:            models.UploadStatus(stringValue(row["status"])),
		ProcessedReportID: optionalInt(row["processed_report_id"]),
		StoragePath:       optionalString(row["storage_path"]),
		Error:             optionalString(row["error"]),
		CreatedAt:         timeValue(row["created_at"]),
		UpdatedAt:         timeValue(row["updated_at"]),
	}
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

func optionalString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := stringValue(v)
	return &s
}

func intValue(v interface{}) int64 {
	if id := optionalInt(v); id != nil {
		return *id
	}
	return 0
}

func optionalInt(v interface{}) *int64 {
	n, ok := normalize.ParseNumber(v)
	if !ok {
		return nil
	}
	id := int64(n)
	return &id
}

// timeValue parses a PostgREST timestamp, defaulting to now when absent
func timeValue(v interface{}) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Now().UTC()
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
