package service

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher monitors the configuration file and invokes a callback
// with the freshly loaded config after changes settle.
type ConfigWatcher struct {
	configPath string
	onReload   func(*config.Config)
	watcher    *fsnotify.Watcher
	stopChan   chan struct{}
	reloadChan chan struct{}
	debounce   time.Duration
	log        *slog.Logger
}

func NewConfigWatcher(configPath string, logger *slog.Logger, onReload func(*config.Config)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &ConfigWatcher{
		configPath: absPath,
		onReload:   onReload,
		watcher:    watcher,
		stopChan:   make(chan struct{}),
		reloadChan: make(chan struct{}, 1),
		debounce:   2 * time.Second,
		log:        logger,
	}, nil
}

// Start begins monitoring. The parent directory is watched rather than
// the file itself so editors that replace the file keep triggering.
func (cw *ConfigWatcher) Start() error {
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", configDir, err)
	}

	cw.log.Info("configuration watcher started", logfields.Path(cw.configPath))

	go cw.watchLoop()
	go cw.reloadLoop()
	return nil
}

func (cw *ConfigWatcher) Stop() {
	close(cw.stopChan)
	if err := cw.watcher.Close(); err != nil {
		cw.log.Warn("file watcher close failed", logfields.Error(err))
	}
}

func (cw *ConfigWatcher) watchLoop() {
	configFile := filepath.Base(cw.configPath)

	for {
		select {
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				cw.triggerReload()
			case event.Op&fsnotify.Remove != 0:
				cw.log.Warn("config file removed", logfields.Path(event.Name))
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warn("config watcher error", logfields.Error(err))
		}
	}
}

func (cw *ConfigWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

// reloadLoop coalesces bursts of file events into one reload.
func (cw *ConfigWatcher) reloadLoop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-cw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-cw.reloadChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(cw.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			cw.reload()
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := config.Load(cw.configPath)
	if err != nil {
		cw.log.Warn("config reload skipped, file did not validate", logfields.Error(err))
		return
	}
	cw.onReload(cfg)
}
