package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/roi-ledger/internal/logger"
	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/notify"
	"github.com/yourusername/roi-ledger/internal/reconcile"
	"github.com/yourusername/roi-ledger/internal/store"
)

// ManualResult is the outcome of an admin bet submission
type ManualResult struct {
	Created int                `json:"created"`
	Updated int                `json:"updated"`
	Total   int                `json:"total"`
	Skipped int                `json:"skipped"`
	Bets    []models.BetRecord `json:"bets"`
}

// BetService lists bets and applies admin submissions of pending bets
type BetService struct {
	store    store.Store
	validate *validator.Validate
	opts     options
	audit    *logger.AuditLogger
	logger   *logrus.Entry
}

// NewBetService creates the bet service
func NewBetService(st store.Store, log *logrus.Logger, opts ...Option) *BetService {
	return &BetService{
		store:    st,
		validate: validator.New(),
		opts:     buildOptions(opts),
		audit:    logger.NewAuditLogger(log),
		logger:   log.WithField("component", "bet_service"),
	}
}

// SubmitManual upserts the submitted bets into the pending set. A bet whose
// title exactly matches a pending bet overwrites it; any other is created.
func (s *BetService) SubmitManual(ctx context.Context, raw []reconcile.RawManualBet) (*ManualResult, error) {
	if len(raw) == 0 {
		return nil, ErrNoBetsSupplied
	}

	inputs := make([]reconcile.ManualBetInput, 0, len(raw))
	for _, in := range reconcile.SanitizeManualBets(raw) {
		if err := s.validate.Struct(in); err != nil {
			if !onlyEventDateInvalid(err) {
				s.logger.WithError(err).WithField("title", in.Title).Warn("Dropping invalid bet row")
				continue
			}
			s.logger.WithField("title", in.Title).WithField("event_date", *in.EventDate).
				Warn("Clearing invalid event date")
			in.EventDate = nil
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return nil, ErrNoValidBets
	}

	pending, err := s.store.ListPendingBets(ctx)
	if err != nil {
		return nil, err
	}

	wrote := false
	fail := func(err error) (*ManualResult, error) {
		if wrote {
			s.opts.invalidate()
		}
		return nil, err
	}

	plan := reconcile.PlanManualUpsert(inputs, pending)
	for _, update := range plan.Updates {
		if err := s.store.UpdateBet(ctx, update.BetID, update.Fields); err != nil {
			return fail(err)
		}
		wrote = true
	}
	for _, fields := range plan.Creates {
		if _, err := s.store.CreateBet(ctx, fields); err != nil {
			return fail(err)
		}
		wrote = true
	}

	uploadName := fmt.Sprintf("manual-%d", s.opts.now().UnixMilli())
	if _, err := s.store.CreateUpload(ctx, models.UploadRecord{
		Type:     models.UploadTypeCurrentBets,
		Filename: uploadName,
		Status:   models.UploadStatusCompleted,
	}); err != nil {
		return fail(fmt.Errorf("failed to record upload: %w", err))
	}

	metrics.RecordManualSubmission(plan.Created(), plan.Updated())
	s.audit.LogManualSubmission(uploadName, plan.Created(), plan.Updated())
	s.opts.changed(notify.NewBetsUpdated(notify.BetsUpdated{
		Created: plan.Created(),
		Updated: plan.Updated(),
		Total:   len(inputs),
	}))

	current, err := s.store.ListPendingBets(ctx)
	if err != nil {
		return nil, err
	}
	return &ManualResult{
		Created: plan.Created(),
		Updated: plan.Updated(),
		Total:   len(inputs),
		Skipped: len(raw) - len(inputs),
		Bets:    current,
	}, nil
}

// onlyEventDateInvalid is true when every validation failure is on the event date
func onlyEventDateInvalid(err error) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() != "EventDate" {
			return false
		}
	}
	return true
}

// List returns bets for a status filter: empty for every bet, "pending" for
// the pending queue in event order, a single status, or a comma separated
// list merged newest update first.
func (s *BetService) List(ctx context.Context, statusFilter string) ([]models.BetRecord, error) {
	filter := strings.TrimSpace(statusFilter)
	switch {
	case filter == "":
		return s.store.ListBets(ctx)
	case filter == string(models.BetStatusPending):
		return s.store.ListPendingBets(ctx)
	case strings.Contains(filter, ","):
		return s.listMany(ctx, strings.Split(filter, ","))
	default:
		return s.store.ListBets(ctx, models.BetStatus(filter))
	}
}

func (s *BetService) listMany(ctx context.Context, statuses []string) ([]models.BetRecord, error) {
	results := make([][]models.BetRecord, len(statuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range statuses {
		i, status := i, strings.TrimSpace(status)
		if status == "" {
			continue
		}
		g.Go(func() error {
			bets, err := s.store.ListBets(gctx, models.BetStatus(status))
			if err != nil {
				return err
			}
			results[i] = bets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := []models.BetRecord{}
	for _, bets := range results {
		merged = append(merged, bets...)
	}
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].UpdatedAt.After(merged[b].UpdatedAt)
	})
	return merged, nil
}

// ListReports returns every report, newest report date first
func (s *BetService) ListReports(ctx context.Context) ([]models.ReportRecord, error) {
	return s.store.ListReports(ctx)
}
