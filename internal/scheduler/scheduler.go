package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tonbox-app/tonbox/internal/clock"
	leaderboarddomain "github.com/tonbox-app/tonbox/internal/leaderboard/domain"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log            *zap.Logger
	LeaderboardSvc leaderboarddomain.Service
	Clock          clock.Clock
	Config         Config `optional:"true"`
}

// Scheduler drives the periodic background jobs, currently the
// leaderboard rank rollup.
type Scheduler struct {
	log            *zap.Logger
	cfg            Config
	clock          clock.Clock
	leaderboardSvc leaderboarddomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.LeaderboardSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            p.Config.withDefaults(),
		clock:          p.Clock,
		leaderboardSvc: p.LeaderboardSvc,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"leaderboard_rollup", s.leaderboardSvc.Rollup},
	}

	var err error
	for _, job := range jobs {
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}
	return err
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	if err := fn(ctx); err != nil {
		log.Warn("job failed", zap.Error(err), zap.Duration("took", s.clock.Now().Sub(start)))
		return err
	}
	log.Debug("job finished", zap.Duration("took", s.clock.Now().Sub(start)))
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
