package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/roi-ledger/internal/models"
)

// MockExtractor mocks the document extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, pdf []byte, fileName string) (*models.Extraction, error) {
	args := m.Called(ctx, pdf, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Extraction), args.Error(1)
}

func (m *MockExtractor) Configured() bool { return true }

func (m *MockExtractor) Model() string { return "test-model" }

// memoryStore is an in-memory Store. failOn makes the named operation fail.
type memoryStore struct {
	mu       sync.Mutex
	reports  []models.ReportRecord
	bets     []models.BetRecord
	uploads  []models.UploadRecord
	nextID   int64
	clock    time.Time
	failOn   map[string]error
	calls    []string
	statuses [][]models.BetStatus
}

var errStoreDown = errors.New("data store request failed (503): unavailable")

func newMemoryStore() *memoryStore {
	return &memoryStore{
		nextID: 100,
		clock:  time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC),
		failOn: map[string]error{},
	}
}

func (s *memoryStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *memoryStore) record(op string) error {
	s.calls = append(s.calls, op)
	return s.failOn[op]
}

func (s *memoryStore) addPending(title string) models.BetRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := s.tick()
	bet := models.BetRecord{ID: s.nextID, Title: title, Status: models.BetStatusPending, CreatedAt: now, UpdatedAt: now}
	s.bets = append(s.bets, bet)
	return bet
}

func (s *memoryStore) bet(id int64) models.BetRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bets {
		if b.ID == id {
			return b
		}
	}
	return models.BetRecord{}
}

func (s *memoryStore) ListReports(ctx context.Context) ([]models.ReportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListReports"); err != nil {
		return nil, err
	}
	return append([]models.ReportRecord{}, s.reports...), nil
}

func (s *memoryStore) ListPendingBets(ctx context.Context) ([]models.BetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListPendingBets"); err != nil {
		return nil, err
	}
	out := []models.BetRecord{}
	for _, b := range s.bets {
		if b.Status == models.BetStatusPending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memoryStore) ListRecentResults(ctx context.Context, limit int) ([]models.BetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListRecentResults"); err != nil {
		return nil, err
	}
	out := []models.BetRecord{}
	for _, b := range s.bets {
		if b.Status != models.BetStatusPending {
			out = append(out, b)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memoryStore) ListBets(ctx context.Context, statuses ...models.BetStatus) ([]models.BetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, statuses)
	if err := s.record("ListBets"); err != nil {
		return nil, err
	}
	out := []models.BetRecord{}
	for _, b := range s.bets {
		if len(statuses) == 0 || containsStatus(statuses, b.Status) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func containsStatus(statuses []models.BetStatus, status models.BetStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s *memoryStore) CreateBet(ctx context.Context, fields models.BetFields) (models.BetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateBet"); err != nil {
		return models.BetRecord{}, err
	}
	s.nextID++
	now := s.tick()
	bet := models.BetRecord{ID: s.nextID, CreatedAt: now}
	applyFields(&bet, fields, now)
	s.bets = append(s.bets, bet)
	return bet, nil
}

func (s *memoryStore) UpdateBet(ctx context.Context, id int64, fields models.BetFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateBet"); err != nil {
		return err
	}
	for i := range s.bets {
		if s.bets[i].ID == id {
			applyFields(&s.bets[i], fields, s.tick())
			return nil
		}
	}
	return models.ErrNotFound
}

func applyFields(bet *models.BetRecord, f models.BetFields, now time.Time) {
	if f.Title != nil {
		bet.Title = *f.Title
	}
	if f.Description != nil || f.ClearUnset {
		bet.Description = f.Description
	}
	if f.Stake != nil || f.ClearUnset {
		bet.Stake = f.Stake
	}
	if f.Odds != nil || f.ClearUnset {
		bet.Odds = f.Odds
	}
	if f.DecimalOdds != nil || f.ClearUnset {
		bet.DecimalOdds = f.DecimalOdds
	}
	if f.EventDate != nil || f.ClearUnset {
		bet.EventDate = f.EventDate
	}
	if f.Category != nil || f.ClearUnset {
		bet.Category = f.Category
	}
	if f.Status != nil {
		bet.Status = *f.Status
	}
	if f.ResultNotes != nil {
		bet.ResultNotes = f.ResultNotes
	}
	if f.ReportID != nil {
		bet.ReportID = f.ReportID
	}
	bet.UpdatedAt = now
}

func (s *memoryStore) UpsertReport(ctx context.Context, draft models.ReportDraft) (models.ReportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpsertReport"); err != nil {
		return models.ReportRecord{}, err
	}
	source := draft.SourcePDF
	row := models.ReportRecord{
		Slug:         draft.Slug,
		Label:        draft.Label,
		ReportDate:   draft.ReportDate,
		Scope:        draft.Scope,
		TotalWagered: draft.TotalWagered,
		TotalReturn:  draft.TotalReturn,
		NetProfit:    draft.NetProfit,
		ROIPercent:   draft.ROIPercent,
		HitRate:      draft.HitRate,
		Summary:      draft.Summary,
		SourcePDF:    &source,
		UpdatedAt:    s.tick(),
	}
	for i := range s.reports {
		if s.reports[i].Slug == draft.Slug {
			row.ID = s.reports[i].ID
			row.CreatedAt = s.reports[i].CreatedAt
			s.reports[i] = row
			return row, nil
		}
	}
	s.nextID++
	row.ID = s.nextID
	row.CreatedAt = row.UpdatedAt
	s.reports = append(s.reports, row)
	return row, nil
}

func (s *memoryStore) CreateUpload(ctx context.Context, upload models.UploadRecord) (models.UploadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CreateUpload"); err != nil {
		return models.UploadRecord{}, err
	}
	s.nextID++
	upload.ID = s.nextID
	s.uploads = append(s.uploads, upload)
	return upload, nil
}

func (s *memoryStore) UpdateUpload(ctx context.Context, id int64, update models.UploadUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateUpload"); err != nil {
		return err
	}
	for i := range s.uploads {
		if s.uploads[i].ID == id {
			s.uploads[i].Status = update.Status
			if update.ProcessedReportID != nil {
				s.uploads[i].ProcessedReportID = update.ProcessedReportID
			}
			s.uploads[i].Error = update.Error
			return nil
		}
	}
	return models.ErrNotFound
}

func (s *memoryStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record("Ping")
}

// countingCache records invalidations
type countingCache struct {
	invalidations int
}

func (c *countingCache) Invalidate() { c.invalidations++ }
