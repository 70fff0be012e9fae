package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/roi-ledger/internal/metrics"
	"github.com/yourusername/roi-ledger/internal/models"
	"github.com/yourusername/roi-ledger/internal/normalize"
	"github.com/yourusername/roi-ledger/internal/store"
)

const (
	snapshotCacheKey = "dashboard"

	// DefaultRecentResults is how many graded bets the dashboard shows
	DefaultRecentResults = 12
)

// Totals aggregates every report
type Totals struct {
	Wagered     float64 `json:"totalWagered"`
	NetProfit   float64 `json:"netProfit"`
	TotalReturn float64 `json:"totalReturn"`
	BlendedROI  float64 `json:"blendedRoi"`
}

// DisplayTotals are the totals formatted for display
type DisplayTotals struct {
	Wagered     string `json:"totalWagered"`
	NetProfit   string `json:"netProfit"`
	TotalReturn string `json:"totalReturn"`
	BlendedROI  string `json:"blendedRoi"`
}

// Snapshot is everything the dashboard renders
type Snapshot struct {
	Reports       []models.ReportRecord `json:"reports"`
	PendingBets   []models.BetRecord    `json:"currentBets"`
	RecentResults []models.BetRecord    `json:"recentBets"`
	Totals        Totals                `json:"totals"`
	Display       DisplayTotals         `json:"display"`
	// Degraded is set when the store could not be read; the lists are empty
	Degraded    bool      `json:"degraded"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// DashboardService builds dashboard snapshots and caches them
type DashboardService struct {
	store       store.Store
	cache       *cache.Cache
	ttl         time.Duration
	recentLimit int
	logger      *logrus.Entry
}

// NewDashboardService creates the service. A ttl of zero disables caching.
func NewDashboardService(st store.Store, ttl time.Duration, recentLimit int, log *logrus.Logger) *DashboardService {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentResults
	}
	s := &DashboardService{
		store:       st,
		ttl:         ttl,
		recentLimit: recentLimit,
		logger:      log.WithField("component", "dashboard"),
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Snapshot returns the cached snapshot or builds a fresh one. It never
// fails: a store error yields an empty, degraded snapshot that is not cached.
func (s *DashboardService) Snapshot(ctx context.Context) *Snapshot {
	if s.cache != nil {
		if cached, ok := s.cache.Get(snapshotCacheKey); ok {
			metrics.RecordDashboardCache(true)
			return cached.(*Snapshot)
		}
		metrics.RecordDashboardCache(false)
	}

	snapshot, err := s.build(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Dashboard data unavailable, rendering empty snapshot")
		return newSnapshot(nil, nil, nil, true)
	}

	metrics.UpdateDashboard(len(snapshot.PendingBets), snapshot.Totals.BlendedROI)
	if s.cache != nil {
		s.cache.Set(snapshotCacheKey, snapshot, cache.DefaultExpiration)
	}
	return snapshot
}

// Invalidate drops the cached snapshot
func (s *DashboardService) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(snapshotCacheKey)
	}
}

// Refresh rebuilds the cached snapshot
func (s *DashboardService) Refresh(ctx context.Context) *Snapshot {
	s.Invalidate()
	return s.Snapshot(ctx)
}

func (s *DashboardService) build(ctx context.Context) (*Snapshot, error) {
	var (
		reports []models.ReportRecord
		pending []models.BetRecord
		recent  []models.BetRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reports, err = s.store.ListReports(gctx)
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.store.ListPendingBets(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.store.ListRecentResults(gctx, s.recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return newSnapshot(reports, pending, recent, false), nil
}

func newSnapshot(reports []models.ReportRecord, pending, recent []models.BetRecord, degraded bool) *Snapshot {
	if reports == nil {
		reports = []models.ReportRecord{}
	}
	if pending == nil {
		pending = []models.BetRecord{}
	}
	if recent == nil {
		recent = []models.BetRecord{}
	}

	totals := ComputeTotals(reports)
	return &Snapshot{
		Reports:       reports,
		PendingBets:   pending,
		RecentResults: recent,
		Totals:        totals,
		Display: DisplayTotals{
			Wagered:     normalize.FormatCurrency(&totals.Wagered),
			NetProfit:   normalize.FormatCurrency(&totals.NetProfit),
			TotalReturn: normalize.FormatCurrency(&totals.TotalReturn),
			BlendedROI:  normalize.FormatPercent(&totals.BlendedROI),
		},
		Degraded:    degraded,
		GeneratedAt: time.Now().UTC(),
	}
}

// ComputeTotals sums the known report totals; unknown values count as zero.
// Blended ROI is net profit over wagered, or zero when nothing was wagered.
func ComputeTotals(reports []models.ReportRecord) Totals {
	var t Totals
	for _, r := range reports {
		if r.TotalWagered != nil {
			t.Wagered += *r.TotalWagered
		}
		if r.NetProfit != nil {
			t.NetProfit += *r.NetProfit
		}
		if r.TotalReturn != nil {
			t.TotalReturn += *r.TotalReturn
		}
	}
	if t.Wagered > 0 {
		t.BlendedROI = t.NetProfit / t.Wagered * 100
	}
	return t
}
