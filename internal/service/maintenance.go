package service

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"github.com/go-co-op/gocron/v2"
)

// Maintenance runs the periodic event-log pruning job.
type Maintenance struct {
	store     eventstore.Store
	retention time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
	log       *slog.Logger
}

func NewMaintenance(store eventstore.Store, retention, interval time.Duration, logger *slog.Logger) *Maintenance {
	return &Maintenance{
		store:     store,
		retention: retention,
		interval:  interval,
		log:       logger,
	}
}

// Start creates the scheduler and registers the prune job.
func (m *Maintenance) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	m.scheduler = scheduler

	_, err = scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.prune),
		gocron.WithName("event-log-prune"),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	m.log.Info("maintenance scheduler started",
		slog.Duration("interval", m.interval),
		slog.Duration("retention", m.retention))
	return nil
}

func (m *Maintenance) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-m.retention)
	removed, err := m.store.Prune(ctx, cutoff)
	if err != nil {
		m.log.Warn("event log prune failed", logfields.Error(err))
		return
	}
	if removed > 0 {
		m.log.Info("event log pruned",
			slog.Int64("removed", removed), slog.Time("cutoff", cutoff))
	}
}

// Stop shuts down the scheduler, waiting for a running job to finish.
func (m *Maintenance) Stop() {
	if m.scheduler == nil {
		return
	}
	if err := m.scheduler.Shutdown(); err != nil {
		m.log.Warn("scheduler shutdown failed", logfields.Error(err))
	}
}
