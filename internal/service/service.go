package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/lifecycle"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/publisher"
	"git.home.luguber.info/inful/sitebuilder/internal/sitestore"
	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
)

// Service owns the runtime and its supporting processes: maintenance
// scheduler, optional NATS notifier, optional config watcher.
type Service struct {
	Runtime *Runtime

	// MetricsHandler serves the Prometheus registry; wired into the
	// admin server by the caller.
	MetricsHandler http.Handler

	notifier    *lifecycle.Notifier
	maintenance *Maintenance
	watcher     *ConfigWatcher
	log         *slog.Logger
}

// New builds the full pipeline from configuration. The projection is
// rebuilt from the event log so site summaries survive restarts.
func New(cfg *config.Config, version string, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := sitestore.New(cfg.Site.Directory)
	if err != nil {
		return nil, err
	}

	var gen generator.TextGenerator
	if cfg.Generator.APIKey != "" {
		client, err := generator.NewClient(cfg.Generator)
		if err != nil {
			return nil, err
		}
		gen = client
	} else {
		logger.Warn("no generator api key configured, section prose uses fallback text")
	}

	events, err := eventstore.NewSQLiteStore(cfg.Events.Path)
	if err != nil {
		return nil, err
	}
	history := eventstore.NewSiteHistoryProjection(events, 1000)
	if err := history.Rebuild(context.Background()); err != nil {
		logger.Warn("event history rebuild failed", slog.Any("error", err))
	}

	bus := lifecycle.NewBus(events, logger)
	bus.SubscribeAll(func(ev eventstore.Event) error {
		history.Apply(ev)
		return nil
	})

	registry := prom.NewRegistry()
	registry.MustRegister(promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(registry)

	injector := assets.NewInjector(store, assets.Options{
		Concurrency:  cfg.Assets.Concurrency,
		FetchTimeout: cfg.Assets.FetchTimeoutDuration(),
		Recorder:     rec,
		Logger:       logger,
	})

	pub, err := buildPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Runtime: &Runtime{
			cfg:       cfg,
			gen:       gen,
			store:     store,
			injector:  injector,
			publisher: pub,
			bus:       bus,
			events:    events,
			history:   history,
			auditor:   linkverify.NewAuditor(store),
			rec:       rec,
			log:       logger,
			version:   version,
			startTime: time.Now(),
		},
		MetricsHandler: metrics.HTTPHandler(registry),
		maintenance: NewMaintenance(events,
			cfg.Events.RetentionDuration(), cfg.Events.PruneIntervalDuration(), logger),
		log: logger,
	}

	if cfg.NATS.Enabled {
		notifier, err := lifecycle.NewNotifier(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			return nil, err
		}
		notifier.Attach(bus)
		svc.notifier = notifier
	}

	return svc, nil
}

func buildPublisher(cfg *config.Config, logger *slog.Logger) (publisher.Publisher, error) {
	switch cfg.Publish.Mode {
	case "", "none":
		return publisher.Noop{}, nil
	case "s3":
		return publisher.NewS3CLI(cfg.Publish.S3.Bucket, cfg.Publish.S3.DistributionID,
			cfg.Publish.S3.CLIPath, logger), nil
	case "git":
		g := cfg.Publish.Git
		return publisher.NewGit(g.URL, g.Branch, g.AuthorName, g.AuthorEmail, g.Token, logger), nil
	default:
		return nil, fmt.Errorf("unknown publish mode %q", cfg.Publish.Mode)
	}
}

// WatchConfig starts watching the given config file and hot-reloads the
// per-request settings on change.
func (s *Service) WatchConfig(path string) error {
	w, err := NewConfigWatcher(path, s.log, func(cfg *config.Config) {
		s.Runtime.ReloadConfig(cfg)
	})
	if err != nil {
		return err
	}
	s.watcher = w
	return s.watcher.Start()
}

// Start launches the background processes. The HTTP servers are started
// separately by the caller.
func (s *Service) Start() error {
	return s.maintenance.Start()
}

// Stop shuts down background processes and closes the event log.
func (s *Service) Stop() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.maintenance != nil {
		s.maintenance.Stop()
	}
	if s.notifier != nil {
		s.notifier.Close()
	}
	if s.Runtime.events != nil {
		if err := s.Runtime.events.Close(); err != nil {
			s.log.Warn("event store close failed", slog.Any("error", err))
		}
	}
}
