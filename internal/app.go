package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/hearthhq/datacache/cache"
	"github.com/hearthhq/datacache/config"
	"github.com/hearthhq/datacache/logging"
	"github.com/hearthhq/datacache/ui"
)

// Application represents the main application orchestrator
type Application struct {
	config     *config.Config
	configFile string

	cache    *cache.Cache[any]
	workload *Workload
	watcher  *config.Watcher
	ui       *ui.Dashboard

	eventLog   io.WriteCloser
	sinkID     int
	uiListener int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger logging.LoggerInterface

	// Application state
	running bool
	mu      sync.RWMutex
}

// NewApplication creates a new application instance. configFile names the
// configuration file to watch for hot reload; an empty path disables
// watching.
func NewApplication(cfg *config.Config, configFile string) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		config:     cfg,
		configFile: configFile,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logging.GetLogger(),
	}

	if err := app.bootstrap(); err != nil {
		cancel()
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}

	return app, nil
}

// Run starts the application and blocks until shutdown
func (a *Application) Run() error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("application is already running")
	}
	a.running = true
	a.mu.Unlock()

	a.logger.Info("Starting HearthCache")

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// Start all components
	if err := a.start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	// Handle signals in a separate goroutine
	a.wg.Add(1)
	go a.handleSignals(sigCh)

	// Block on the dashboard, or on the context in compact mode
	var err error
	if a.config.UI.CompactMode {
		err = a.runBackground()
	} else {
		err = a.runInteractive()
	}

	// Signal shutdown
	a.cancel()

	// Wait for all goroutines to finish
	a.wg.Wait()

	// Perform cleanup
	if shutdownErr := a.shutdown(); shutdownErr != nil {
		a.logger.Errorf("Shutdown error: %v", shutdownErr)
		a.emergencyShutdown()
		if err == nil {
			err = shutdownErr
		}
	}

	a.logger.Info("HearthCache stopped")
	return err
}

// start launches all application components
func (a *Application) start() error {
	a.logger.Info("Starting application components")

	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
	}

	// Initial warm-up, then the steady read/write loops
	a.workload.Seed(a.ctx)
	a.workload.Start(a.ctx)

	return nil
}

// runInteractive starts the dashboard and blocks until it exits
func (a *Application) runInteractive() error {
	a.logger.Info("Starting interactive dashboard")
	return a.ui.Start()
}

// runBackground runs without the dashboard, logging cache statistics
// periodically until the context is cancelled
func (a *Application) runBackground() error {
	a.logger.Info("Running in background mode")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return nil
		case <-ticker.C:
			stats := a.cache.Stats()
			a.logger.Infof("cache: %d entries, hit rate %.1f%%, %d writes, %d refreshes, %d evictions",
				stats.TotalEntries, stats.HitRate*100, stats.Writes, stats.Refreshes, stats.Evictions)
		}
	}
}

// handleSignals handles OS signals
func (a *Application) handleSignals(sigCh <-chan os.Signal) {
	defer a.wg.Done()

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case os.Interrupt, syscall.SIGTERM:
				a.logger.Info("Received shutdown signal")
				if a.ui != nil {
					a.ui.Stop()
				}
				a.cancel()
				return

			case syscall.SIGHUP:
				a.logger.Info("Received SIGHUP, reloading configuration")
				a.reloadConfig()
			}

		case <-a.ctx.Done():
			return
		}
	}
}

// reloadConfig forces a configuration reload through the watcher
func (a *Application) reloadConfig() {
	if a.watcher == nil {
		a.logger.Warn("No config file is being watched, nothing to reload")
		return
	}
	a.watcher.Reload()
}

// applyConfigChange is called by the config watcher with a freshly loaded
// configuration. Only settings that can change at runtime are applied; the
// cache keeps the topology it was built with.
func (a *Application) applyConfigChange(newCfg *config.Config) {
	a.mu.Lock()
	old := a.config
	a.config = newCfg
	a.mu.Unlock()

	if newCfg.App.LogLevel != old.App.LogLevel {
		logging.SetGlobalLevel(newCfg.App.LogLevel)
		a.logger.Infof("Log level changed to %s", newCfg.App.LogLevel)
	}
	if newCfg.Cache != old.Cache {
		a.logger.Warn("Cache settings changed on disk, restart to apply them")
	}
	if a.ui != nil && newCfg.UI != old.UI {
		a.ui.Send(ui.ConfigUpdateMsg{Config: ui.Config{
			Theme:       newCfg.UI.Theme,
			RefreshRate: newCfg.UI.RefreshRate,
			TimeFormat:  newCfg.UI.TimeFormat,
			PageSize:    newCfg.UI.TablePageSize,
		}})
		a.logger.Infof("Dashboard settings updated: theme=%s", newCfg.UI.Theme)
	}
}

// GetCache returns the cache instance
func (a *Application) GetCache() *cache.Cache[any] {
	return a.cache
}

// GetWorkload returns the demo workload
func (a *Application) GetWorkload() *Workload {
	return a.workload
}

// GetConfig returns the current configuration
func (a *Application) GetConfig() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// IsRunning returns whether the application is currently running
func (a *Application) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// dashboardSource adapts the cache and workload to the dashboard's data
// interface.
type dashboardSource struct {
	cache    *cache.Cache[any]
	workload *Workload
}

func (s dashboardSource) CacheStats() cache.Stats {
	return s.cache.Stats()
}

func (s dashboardSource) Entries() []cache.EntryInfo {
	keys := s.cache.Keys()
	sort.Strings(keys)

	infos := make([]cache.EntryInfo, 0, len(keys))
	for _, key := range keys {
		if info, ok := s.cache.EntryInfo(key); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

func (s dashboardSource) Counters() (reads, writes int64) {
	return s.workload.Reads(), s.workload.Writes()
}

func (s dashboardSource) ClearCache() {
	s.cache.Clear()
}

func (s dashboardSource) ResetStats() {
	s.cache.ResetStats()
}
