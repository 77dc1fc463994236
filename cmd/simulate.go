package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/hearthhq/datacache/cache"
	"github.com/hearthhq/datacache/config"
	"github.com/hearthhq/datacache/internal"
	"github.com/hearthhq/datacache/logging"
	"github.com/hearthhq/datacache/models"
)

var (
	simulateDuration time.Duration
	simulateOutput   string
	simulateEvents   string
)

// SimulationReport is what a headless run hands back: the workload volume,
// the cache's lifetime counters, the surviving entries, and a household
// summary folded from whatever is still cached.
type SimulationReport struct {
	Duration string                `json:"duration"`
	Keys     int                   `json:"keys"`
	Reads    int64                 `json:"reads"`
	Writes   int64                 `json:"writes"`
	Stats    cache.Stats           `json:"stats"`
	Entries  []cache.EntryInfo     `json:"entries"`
	Snapshot models.FamilySnapshot `json:"snapshot"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the workload headless and report cache statistics",
	Long: `Drive the cache with the simulated household workload for a fixed
duration, without the dashboard, and report what happened.

Useful for comparing tuning changes: run the same workload against
different TTLs, entry caps or refresh thresholds and compare hit rates.

Examples:
  hearthcache simulate                          # 30s run, summary output
  hearthcache simulate -d 2m --output table    # Per-key table after 2 minutes
  hearthcache simulate --ttl 10s -o json       # Short TTL, machine-readable report
  hearthcache simulate --events events.jsonl   # Also record every cache event`,

	RunE: func(cmd *cobra.Command, args []string) error {
		// Load and validate configuration
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Override configuration with command line flags
		if err := applyRunFlags(cfg); err != nil {
			return fmt.Errorf("failed to apply command flags: %w", err)
		}
		if err := applySimulateFlags(cfg); err != nil {
			return fmt.Errorf("failed to apply command flags: %w", err)
		}

		// Initialize global logger
		if err := logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		report, err := runSimulation(cfg)
		if err != nil {
			return err
		}

		return outputSimulationReport(report)
	},
}

func init() {
	simulateCmd.Flags().DurationVarP(&simulateDuration, "duration", "d", 30*time.Second, "how long to run the workload")
	simulateCmd.Flags().StringVarP(&simulateOutput, "output", "o", "summary", "output format (summary, table, json)")
	simulateCmd.Flags().StringVar(&simulateEvents, "events", "", "append every cache event to this JSONL file (.gz compresses)")

	// Cache tuning flags shared with the dashboard
	addCacheFlags(simulateCmd)

	rootCmd.AddCommand(simulateCmd)
}

func applySimulateFlags(cfg *config.Config) error {
	if simulateDuration < time.Second {
		return fmt.Errorf("duration too small: %v (minimum: 1s)", simulateDuration)
	}
	if simulateDuration > time.Hour {
		return fmt.Errorf("duration too large: %v (maximum: 1h)", simulateDuration)
	}

	// Validate output format
	validOutputs := []string{"summary", "table", "json"}
	found := false
	for _, output := range validOutputs {
		if strings.EqualFold(simulateOutput, output) {
			simulateOutput = strings.ToLower(simulateOutput)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid output format: %s (valid options: %s)",
			simulateOutput, strings.Join(validOutputs, ", "))
	}

	if simulateEvents != "" {
		cfg.Demo.EventLog = simulateEvents
	}

	return nil
}

func runSimulation(cfg *config.Config) (*SimulationReport, error) {
	logger := logging.GetLogger()

	cacheConfig := cfg.CacheOptions()
	cacheConfig.Logger = logger

	c := cache.New[any](cacheConfig)
	defer c.Dispose()

	if cfg.Demo.EventLog != "" {
		eventLog, err := internal.OpenEventLog(cfg.Demo.EventLog)
		if err != nil {
			return nil, fmt.Errorf("open event log %s: %w", cfg.Demo.EventLog, err)
		}
		defer eventLog.Close()
		c.AddListener(cache.NewEventSink[any](eventLog).Listener())
	}

	workload := internal.NewWorkload(c, cfg.Demo, logger)

	// Run until the duration elapses or the user interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, simulateDuration)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Simulating %d keys for %v...\n", len(workload.Keys()), simulateDuration)
	}

	start := time.Now()
	workload.Seed(ctx)
	workload.Start(ctx)
	workload.Wait()
	elapsed := time.Since(start)

	// Stats and entry snapshots come first: the household snapshot below
	// reads through the cache and would count extra hits.
	stats := c.Stats()

	keys := c.Keys()
	sort.Strings(keys)
	entries := make([]cache.EntryInfo, 0, len(keys))
	for _, key := range keys {
		if info, ok := c.EntryInfo(key); ok {
			entries = append(entries, info)
		}
	}

	return &SimulationReport{
		Duration: elapsed.Round(10 * time.Millisecond).String(),
		Keys:     len(workload.Keys()),
		Reads:    workload.Reads(),
		Writes:   workload.Writes(),
		Stats:    stats,
		Entries:  entries,
		Snapshot: workload.Snapshot(),
	}, nil
}

func outputSimulationReport(report *SimulationReport) error {
	switch simulateOutput {
	case "table":
		return outputSimulationTable(report)
	case "json":
		return outputSimulationJSON(report)
	case "summary":
		return outputSimulationSummary(report)
	default:
		return fmt.Errorf("unsupported output format: %s", simulateOutput)
	}
}

func outputSimulationTable(report *SimulationReport) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintln(w, "Key\tHits\tVersion\tAge\tRemaining\tExpired")

	// Data rows
	for _, e := range report.Entries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%t\n",
			e.Key,
			e.Hits,
			e.Version,
			e.Age.Round(time.Millisecond),
			e.RemainingTTL.Round(time.Millisecond),
			e.Expired)
	}

	return w.Flush()
}

func outputSimulationJSON(report *SimulationReport) error {
	data, err := sonic.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write([]byte("\n"))
	return err
}

func outputSimulationSummary(report *SimulationReport) error {
	stats := report.Stats

	fmt.Printf("Simulation Summary\n")
	fmt.Printf("==================\n\n")
	fmt.Printf("Duration: %s\n", report.Duration)
	fmt.Printf("Keys: %d\n", report.Keys)
	fmt.Printf("Workload: %d reads, %d writes\n", report.Reads, report.Writes)
	fmt.Printf("\nCache:\n")
	fmt.Printf("  Live Entries: %d\n", stats.TotalEntries)
	fmt.Printf("  Hits: %d\n", stats.Hits)
	fmt.Printf("  Misses: %d\n", stats.Misses)
	fmt.Printf("  Hit Rate: %.1f%%\n", stats.HitRate*100)
	fmt.Printf("  Refreshes: %d\n", stats.Refreshes)
	fmt.Printf("  Evictions: %d\n", stats.Evictions)
	fmt.Printf("  Writes: %d\n", stats.Writes)
	fmt.Printf("\nHousehold snapshot:\n")
	fmt.Printf("  Open Todos: %d\n", report.Snapshot.OpenTodos)
	fmt.Printf("  Upcoming Events: %d\n", report.Snapshot.UpcomingEvents)
	fmt.Printf("  Groceries Left: %d\n", report.Snapshot.GroceriesLeft)
	fmt.Printf("  Documents: %d\n", report.Snapshot.DocumentCount)

	return nil
}
