// Package service assembles the pipeline components into the serve-mode
// runtime behind the HTTP surface.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/assembler"
	"git.home.luguber.info/inful/sitebuilder/internal/assets"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/lifecycle"
	"git.home.luguber.info/inful/sitebuilder/internal/linkverify"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/publisher"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
	"git.home.luguber.info/inful/sitebuilder/internal/sitestore"
)

// Runtime implements the pipeline surface the HTTP handlers call. All state
// transitions of a site funnel through here so events and metrics stay
// consistent no matter which endpoint triggered them.
type Runtime struct {
	mu  sync.RWMutex
	cfg *config.Config

	gen       generator.TextGenerator
	store     *sitestore.Store
	injector  *assets.Injector
	publisher publisher.Publisher
	bus       *lifecycle.Bus
	events    eventstore.Store
	history   *eventstore.SiteHistoryProjection
	auditor   *linkverify.Auditor
	rec       metrics.Recorder
	log       *slog.Logger

	version   string
	startTime time.Time
}

// siteID derives the event-log identifier for a site name. The default
// (unnamed) site is tracked as "default".
func siteID(name string) string {
	if slug := site.Slugify(name); slug != "" {
		return slug
	}
	return "default"
}

func (rt *Runtime) config() *config.Config {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.cfg
}

// ReloadConfig swaps the runtime configuration. Only per-request knobs
// (refinement, callback fallback, auto deploy) take effect; server ports
// and storage paths require a restart.
func (rt *Runtime) ReloadConfig(cfg *config.Config) {
	rt.mu.Lock()
	rt.cfg = cfg
	rt.mu.Unlock()
	rt.log.Info("configuration reloaded")
}

// Generate assembles a full generation package for a request.
func (rt *Runtime) Generate(ctx context.Context, req assembler.Request) (*site.GenerationPackage, error) {
	cfg := rt.config()
	start := time.Now()
	ctx = observability.WithStage(observability.WithSiteID(ctx, siteID(req.BusinessName)), "generate")

	asm := assembler.New(rt.gen, assembler.Options{
		DefaultCallbackURL: cfg.Site.DefaultCallbackURL,
		RefineInputs:       cfg.Generator.RefineInputs,
		Logger:             rt.log,
	})
	pkg, err := asm.Assemble(ctx, req)
	rt.rec.ObserveStageDuration(metrics.StageGenerate, time.Since(start))
	if err != nil {
		rt.rec.IncStageResult(metrics.StageGenerate, metrics.ResultFailed)
		return nil, err
	}
	rt.rec.IncStageResult(metrics.StageGenerate, metrics.ResultSuccess)

	rt.emit(ctx, func() (eventstore.Event, error) {
		return eventstore.NewSiteGenerated(siteID(req.BusinessName), eventstore.SiteGeneratedPayload{
			Category: req.WebsiteType,
			Pages:    len(pkg.Pages),
			Images:   len(pkg.ImagesNeeded),
			Voices:   len(pkg.VoiceScriptsNeeded),
		})
	})
	observability.InfoContext(ctx, "generation package assembled",
		logfields.Count(len(pkg.Pages)),
		slog.Int("images", len(pkg.ImagesNeeded)),
		slog.Int("voices", len(pkg.VoiceScriptsNeeded)))
	return pkg, nil
}

// Bootstrap writes a package's pages into the site directory.
func (rt *Runtime) Bootstrap(ctx context.Context, siteName string, pkg *site.GenerationPackage) (int, error) {
	start := time.Now()
	ctx = observability.WithStage(observability.WithSiteID(ctx, siteID(siteName)), "bootstrap")
	unlock := rt.store.Lock(siteName)
	err := rt.store.Bootstrap(siteName, pkg.Pages)
	unlock()

	rt.rec.ObserveStageDuration(metrics.StageBootstrap, time.Since(start))
	if err != nil {
		rt.rec.IncStageResult(metrics.StageBootstrap, metrics.ResultFailed)
		return 0, err
	}
	rt.rec.IncStageResult(metrics.StageBootstrap, metrics.ResultSuccess)

	rt.emit(ctx, func() (eventstore.Event, error) {
		return eventstore.NewSiteBootstrapped(siteID(siteName), eventstore.SiteBootstrappedPayload{
			Pages: len(pkg.Pages),
			Dir:   rt.store.Dir(siteName),
		})
	})
	observability.InfoContext(ctx, "site bootstrapped",
		logfields.Count(len(pkg.Pages)), logfields.Dir(rt.store.Dir(siteName)))
	return len(pkg.Pages), nil
}

// SubmitAssets processes a delivery and, when the site becomes fully
// resolved and auto deploy is enabled, publishes it immediately. The
// returned bool reports whether an auto deploy ran.
func (rt *Runtime) SubmitAssets(ctx context.Context, siteName string, delivery site.Delivery) (*assets.Report, bool, error) {
	id := siteID(siteName)
	start := time.Now()
	report, err := rt.injector.Submit(ctx, siteName, delivery)
	rt.rec.ObserveStageDuration(metrics.StageInject, time.Since(start))
	if err != nil {
		rt.rec.IncStageResult(metrics.StageInject, metrics.ResultFailed)
		return nil, false, err
	}
	if len(report.Failed) > 0 {
		rt.rec.IncStageResult(metrics.StageInject, metrics.ResultWarning)
	} else {
		rt.rec.IncStageResult(metrics.StageInject, metrics.ResultSuccess)
	}

	for _, assetID := range report.SavedImages {
		rt.emitAssetSaved(ctx, id, assetID, assets.KindImage, site.ImageAssetPath(assetID))
	}
	for _, assetID := range report.SavedVoices {
		rt.emitAssetSaved(ctx, id, assetID, assets.KindVoice, site.AudioAssetPath(assetID))
	}
	for _, failed := range report.Failed {
		rt.emit(ctx, func() (eventstore.Event, error) {
			return eventstore.NewAssetFetchFailed(id, eventstore.AssetFetchFailedPayload{
				AssetID: failed.ID, Kind: failed.Kind, Reason: failed.Reason,
			})
		})
	}
	rt.emit(ctx, func() (eventstore.Event, error) {
		return eventstore.NewAssetsSubmitted(id, eventstore.AssetsSubmittedPayload{
			Images:               len(delivery.Images),
			Voices:               len(delivery.Voices),
			Failed:               len(report.Failed),
			PlaceholdersResolved: report.PlaceholdersResolved,
			State:                string(report.State),
		})
	})

	cfg := rt.config()
	if report.State == site.StateFullyResolved && cfg.Publish.AutoDeploy && rt.publisher.Mode() != "none" {
		if _, err := rt.Deploy(ctx, siteName); err != nil {
			rt.log.Warn("auto deploy failed", logfields.SiteID(id), logfields.Error(err))
			return report, false, nil
		}
		return report, true, nil
	}
	return report, false, nil
}

func (rt *Runtime) emitAssetSaved(ctx context.Context, id, assetID, kind, path string) {
	rt.emit(ctx, func() (eventstore.Event, error) {
		return eventstore.NewAssetSaved(id, eventstore.AssetSavedPayload{
			AssetID: assetID, Kind: kind, Path: path,
		})
	})
}

// Deploy publishes the site directory with the configured publisher.
func (rt *Runtime) Deploy(ctx context.Context, siteName string) (string, error) {
	id := siteID(siteName)
	dir := rt.store.Dir(siteName)
	if !rt.store.Exists(siteName) {
		return "", sberrors.ValidationFailed("site", "no bootstrapped pages to deploy")
	}

	start := time.Now()
	err := rt.publisher.Deploy(ctx, dir)
	elapsed := time.Since(start)
	rt.rec.ObserveStageDuration(metrics.StagePublish, elapsed)
	rt.rec.IncPublishOutcome(rt.publisher.Mode(), err == nil)

	if err != nil {
		rt.rec.IncStageResult(metrics.StagePublish, metrics.ResultFailed)
		rt.emit(ctx, func() (eventstore.Event, error) {
			return eventstore.NewPublishFailed(id, eventstore.PublishFailedPayload{
				Mode: rt.publisher.Mode(), Reason: err.Error(),
			})
		})
		return "", err
	}

	rt.rec.IncStageResult(metrics.StagePublish, metrics.ResultSuccess)
	rt.emit(ctx, func() (eventstore.Event, error) {
		return eventstore.NewSitePublished(id, eventstore.SitePublishedPayload{
			Mode: rt.publisher.Mode(), Dir: dir, DurationMS: elapsed.Milliseconds(),
		})
	})
	rt.log.Info("site published",
		logfields.SiteID(id), logfields.Dir(dir),
		slog.String("mode", rt.publisher.Mode()),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return dir, nil
}

// Audit verifies the stored pages of a site.
func (rt *Runtime) Audit(siteName string) (*linkverify.Report, error) {
	if !rt.store.Exists(siteName) {
		return nil, sberrors.PageNotFound("index.html")
	}
	return rt.auditor.Audit(siteName)
}

// Summaries returns the per-site projection of the event log.
func (rt *Runtime) Summaries() []eventstore.SiteSummary {
	if rt.history == nil {
		return nil
	}
	return rt.history.Summaries()
}

// SiteEvents returns the raw event log of one site.
func (rt *Runtime) SiteEvents(ctx context.Context, id string) ([]eventstore.Event, error) {
	if rt.events == nil {
		return nil, nil
	}
	return rt.events.GetBySiteID(ctx, id)
}

func (rt *Runtime) StartTime() time.Time { return rt.startTime }
func (rt *Runtime) Version() string      { return rt.version }

// emit publishes an event on the bus. Event construction or delivery
// problems are logged, never surfaced; the pipeline result already
// happened.
func (rt *Runtime) emit(ctx context.Context, build func() (eventstore.Event, error)) {
	if rt.bus == nil {
		return
	}
	ev, err := build()
	if err != nil {
		rt.log.Warn("event not constructed", logfields.Error(err))
		return
	}
	if err := rt.bus.Publish(ctx, ev); err != nil {
		rt.log.Warn("event delivery failed",
			slog.String("event_type", ev.Type()), logfields.Error(err))
	}
}
