package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type archiveCleaner interface {
	Cleanup(now time.Time) (int, error)
}

// MaintenanceService periodically prunes expired report archives and idle
// planning sessions.
type MaintenanceService struct {
	reports  archiveCleaner
	sessions SessionStore
	schedule string
	logger   *zap.Logger
	now      func() time.Time
	cron     *cron.Cron
}

// NewMaintenanceService constructs the service. schedule is a standard
// five-field cron spec.
func NewMaintenanceService(reports archiveCleaner, sessions SessionStore, schedule string, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = "0 3 * * *"
	}
	return &MaintenanceService{
		reports:  reports,
		sessions: sessions,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the maintenance job and starts the scheduler.
func (s *MaintenanceService) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule maintenance %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.logger.Info("maintenance scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *MaintenanceService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce performs a single maintenance pass.
func (s *MaintenanceService) RunOnce(ctx context.Context) {
	now := s.now()
	if s.reports != nil {
		removed, err := s.reports.Cleanup(now)
		if err != nil {
			s.logger.Warn("report cleanup failed", zap.Error(err))
		} else {
			s.logger.Info("report cleanup finished", zap.Int("removed", removed))
		}
	}
	if s.sessions != nil {
		removed, err := s.sessions.Sweep(ctx, now)
		if err != nil {
			s.logger.Warn("session sweep failed", zap.Error(err))
		} else {
			s.logger.Info("session sweep finished", zap.Int("removed", removed))
		}
	}
}
