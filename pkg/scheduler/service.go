package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/unicef-drp/unicefdata/pkg/observability"
)

// Reloader is the slice of the metadata store the refresher drives
type Reloader interface {
	Reload() error
}

// Service periodically reloads the metadata snapshot
type Service interface {
	// Start begins the refresh loop; blocks until the context is canceled
	Start(ctx context.Context) error

	// Stop gracefully shuts down the refresh loop
	Stop() error
}

type service struct {
	log      logrus.FieldLogger
	config   *Config
	reloader Reloader
	schedule cron.Schedule
	done     chan struct{}
}

// NewService creates a metadata refresh scheduler
func NewService(logger logrus.FieldLogger, cfg *Config, reloader Reloader) (Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var schedule cron.Schedule
	if cfg.Enabled {
		schedule, _ = parseSchedule(cfg.Schedule) // validated above
	}

	return &service{
		log:      logger.WithField("component", "refresh-scheduler"),
		config:   cfg,
		reloader: reloader,
		schedule: schedule,
		done:     make(chan struct{}),
	}, nil
}

func (s *service) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Debug("Metadata refresh scheduler is disabled")

		return nil
	}

	s.log.WithField("schedule", s.config.Schedule).Info("Starting metadata refresh scheduler")

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()

			return ctx.Err()
		case <-s.done:
			timer.Stop()

			return nil
		case <-timer.C:
			s.refresh()
		}
	}
}

func (s *service) refresh() {
	if err := s.reloader.Reload(); err != nil {
		observability.RecordMetadataReload("error")
		s.log.WithError(err).Warn("Scheduled metadata refresh failed, keeping current snapshot")

		return
	}

	observability.RecordMetadataReload("success")
	s.log.Info("Refreshed metadata snapshot")
}

func (s *service) Stop() error {
	close(s.done)

	return nil
}

// Verify interface compliance at compile time
var _ Service = (*service)(nil)
