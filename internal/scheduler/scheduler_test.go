package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/roi-ledger/internal/logger"
	"github.com/yourusername/roi-ledger/internal/service"
)

type countingRefresher struct {
	calls    int32
	degraded bool
}

func (c *countingRefresher) Refresh(ctx context.Context) *service.Snapshot {
	atomic.AddInt32(&c.calls, 1)
	return &service.Snapshot{Degraded: c.degraded}
}

func TestScheduleRejectsBadExpression(t *testing.T) {
	s := NewScheduler(logger.Discard())
	err := s.ScheduleDashboardRefresh("not a cron", &countingRefresher{})
	assert.Error(t, err)
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(logger.Discard())
	assert.Error(t, s.Start())
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(logger.Discard())
	refresher := &countingRefresher{}
	require.NoError(t, s.ScheduleDashboardRefresh("@every 10ms", refresher))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleDashboardRefresh("@every 1s", refresher), "cannot add jobs while running")

	require.Eventually(t, func() bool { return atomic.LoadInt32(&refresher.calls) > 0 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}

func TestNextRunsUseUTC(t *testing.T) {
	s := NewScheduler(logger.Discard())
	require.NoError(t, s.ScheduleDashboardRefresh("0 6 * * *", &countingRefresher{}))
	require.NoError(t, s.Start())
	defer s.Stop()

	next := s.NextRuns()
	require.Len(t, next, 1)
	assert.Equal(t, 6, next[0].UTC().Hour())
	assert.Equal(t, 0, next[0].Minute())
}

func TestRefreshDashboardHandlesDegradedSnapshot(t *testing.T) {
	s := NewScheduler(logger.Discard())
	refresher := &countingRefresher{degraded: true}
	s.refreshDashboard(refresher)
	assert.Equal(t, int32(1), refresher.calls)
}
