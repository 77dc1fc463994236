package internal

import (
	"context"
	"fmt"
	"time"
)

// shutdown performs graceful shutdown of all application components
func (a *Application) shutdown() error {
	a.logger.Info("Initiating graceful shutdown...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Update running state
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()

	// Stop components in reverse order of initialization
	shutdownSteps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Dashboard", a.stopUI},
		{"Config Watcher", a.stopConfigWatcher},
		{"Workload", a.stopWorkload},
		{"Event Log", a.stopEventLog},
		{"Cache", a.stopCache},
	}

	var errs []error
	for _, step := range shutdownSteps {
		if err := step.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
			a.logger.Errorf("Failed to stop %s: %v", step.name, err)
		}
	}

	// Aggregate errors
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	a.logger.Info("Graceful shutdown completed")
	return nil
}

// stopUI detaches the dashboard from the cache and stops it
func (a *Application) stopUI(ctx context.Context) error {
	if a.ui == nil {
		return nil
	}

	a.cache.RemoveListener(a.uiListener)
	a.ui.Stop()
	return nil
}

// stopConfigWatcher stops watching the configuration file
func (a *Application) stopConfigWatcher(ctx context.Context) error {
	if a.watcher == nil {
		return nil
	}

	return a.watcher.Stop()
}

// stopWorkload waits for the read and write loops to drain. The run context
// is already cancelled by the time shutdown runs, so this normally returns
// immediately.
func (a *Application) stopWorkload(ctx context.Context) error {
	if a.workload == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		a.workload.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("workload loops did not drain: %w", ctx.Err())
	}
}

// stopEventLog detaches the event sink and closes the log file
func (a *Application) stopEventLog(ctx context.Context) error {
	if a.eventLog == nil {
		return nil
	}

	a.cache.RemoveListener(a.sinkID)
	return a.eventLog.Close()
}

// stopCache disposes the cache, cancelling refresh schedules and in-flight
// background fetches
func (a *Application) stopCache(ctx context.Context) error {
	if a.cache == nil {
		return nil
	}

	a.cache.Dispose()
	return nil
}

// emergencyShutdown force-stops components after a failed graceful shutdown
func (a *Application) emergencyShutdown() {
	a.logger.Warn("Performing emergency shutdown")

	if a.watcher != nil {
		a.watcher.Stop()
	}

	if a.eventLog != nil {
		a.eventLog.Close()
	}

	if a.cache != nil {
		a.cache.Dispose()
	}

	a.logger.Warn("Emergency shutdown completed")
}
