package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tonbox-app/tonbox/internal/clock"
	leaderboarddomain "github.com/tonbox-app/tonbox/internal/leaderboard/domain"
)

type fakeLeaderboard struct {
	rollups int
	err     error
}

func (f *fakeLeaderboard) Top(ctx context.Context, limit int) ([]leaderboarddomain.Entry, error) {
	return nil, nil
}

func (f *fakeLeaderboard) Rollup(ctx context.Context) error {
	f.rollups++
	return f.err
}

func newTestScheduler(t *testing.T, svc leaderboarddomain.Service) *Scheduler {
	t.Helper()

	sched, err := New(Params{
		Log:            zap.NewNop(),
		LeaderboardSvc: svc,
		Clock:          clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return sched
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Params{LeaderboardSvc: &fakeLeaderboard{}, Clock: clock.NewFakeClock(time.Now())})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunOnce_InvokesRollup(t *testing.T) {
	fake := &fakeLeaderboard{}
	sched := newTestScheduler(t, fake)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, fake.rollups)

	require.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 2, fake.rollups)
}

func TestRunOnce_PropagatesJobError(t *testing.T) {
	fake := &fakeLeaderboard{err: errors.New("boom")}
	sched := newTestScheduler(t, fake)

	err := sched.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, fake.rollups)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 5*time.Minute, cfg.RunInterval)
	assert.Equal(t, time.Minute, cfg.JobTimeout)

	custom := Config{RunInterval: time.Hour, JobTimeout: 30 * time.Second}.withDefaults()
	assert.Equal(t, time.Hour, custom.RunInterval)
	assert.Equal(t, 30*time.Second, custom.JobTimeout)
}
