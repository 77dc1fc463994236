package internal

import (
	"fmt"

	"github.com/hearthhq/datacache/cache"
	"github.com/hearthhq/datacache/config"
	"github.com/hearthhq/datacache/ui"
)

// bootstrap initializes all application components
func (a *Application) bootstrap() error {
	a.logger.Info("Bootstrapping application")

	// 1. Validate configuration
	if err := a.validateConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// 2. Set up the cache
	if err := a.setupCache(); err != nil {
		return fmt.Errorf("failed to setup cache: %w", err)
	}

	// 3. Open the event log
	if err := a.setupEventLog(); err != nil {
		return fmt.Errorf("failed to setup event log: %w", err)
	}

	// 4. Build the demo workload
	if err := a.setupWorkload(); err != nil {
		return fmt.Errorf("failed to setup workload: %w", err)
	}

	// 5. Set up config hot reload
	if err := a.setupConfigWatcher(); err != nil {
		return fmt.Errorf("failed to setup config watcher: %w", err)
	}

	// 6. Initialize the dashboard
	if err := a.initializeUI(); err != nil {
		return fmt.Errorf("failed to initialize UI: %w", err)
	}

	a.logger.Info("Bootstrap completed successfully")
	return nil
}

// validateConfig validates the application configuration
func (a *Application) validateConfig() error {
	if a.config == nil {
		return fmt.Errorf("configuration is nil")
	}

	// The workload needs at least one key to drive
	demo := a.config.Demo
	if len(demo.Users)+len(demo.GroceryLists)+len(demo.DocFolders) == 0 {
		return fmt.Errorf("at least one user, grocery list, or document folder must be configured")
	}

	if a.config.UI.RefreshRate <= 0 {
		return fmt.Errorf("refresh rate must be positive")
	}

	if err := config.ValidateTheme(a.config.UI.Theme); err != nil {
		a.logger.Warnf("Invalid theme %q, using 'dark'", a.config.UI.Theme)
		a.config.UI.Theme = "dark"
	}

	return nil
}

// setupCache initializes the cache and registers it as the process default
func (a *Application) setupCache() error {
	a.logger.Info("Setting up cache")

	cacheConfig := a.config.CacheOptions()
	cacheConfig.Logger = a.logger

	a.cache = cache.InitDefault(cacheConfig)

	a.logger.Infof("Cache initialized: ttl=%v max_entries=%d refresh_threshold=%.2f",
		a.config.Cache.DefaultTTL, a.config.Cache.MaxEntries, a.config.Cache.RefreshThreshold)
	return nil
}

// setupEventLog attaches a JSONL event sink when an event log is configured.
// A .gz path is written compressed.
func (a *Application) setupEventLog() error {
	path := a.config.Demo.EventLog
	if path == "" {
		return nil
	}

	log, err := OpenEventLog(path)
	if err != nil {
		return fmt.Errorf("open event log %s: %w", path, err)
	}

	a.eventLog = log
	a.sinkID = a.cache.AddListener(cache.NewEventSink[any](log).Listener())

	a.logger.Infof("Event log enabled: %s", path)
	return nil
}

// setupWorkload builds the demo workload over the configured key families
func (a *Application) setupWorkload() error {
	a.workload = NewWorkload(a.cache, a.config.Demo, a.logger)
	a.logger.Infof("Workload initialized: %d keys", len(a.workload.Keys()))
	return nil
}

// setupConfigWatcher arms hot reload for the config file, when one is known
func (a *Application) setupConfigWatcher() error {
	if a.configFile == "" {
		return nil
	}

	watcher, err := config.NewWatcher(a.configFile, a.applyConfigChange)
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	a.watcher = watcher
	a.logger.Infof("Watching %s for configuration changes", a.configFile)
	return nil
}

// initializeUI initializes the dashboard
func (a *Application) initializeUI() error {
	if a.config.UI.CompactMode {
		a.logger.Info("Compact mode enabled, skipping dashboard")
		return nil
	}

	uiConfig := ui.Config{
		Theme:       a.config.UI.Theme,
		RefreshRate: a.config.UI.RefreshRate,
		TimeFormat:  a.config.UI.TimeFormat,
		PageSize:    a.config.UI.TablePageSize,
	}

	a.ui = ui.NewDashboard(uiConfig, dashboardSource{cache: a.cache, workload: a.workload})
	a.uiListener = a.cache.AddListener(a.ui.CacheListener())

	a.logger.Infof("Dashboard initialized: theme=%s", a.config.UI.Theme)
	return nil
}
