package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive cache dashboard",
	Long: `Start hearthcache in interactive dashboard mode.

The dashboard shows the cache working against the simulated household
workload in real time:
- Hit rate, entry count and lifetime counters
- A live table of cached entries with age, TTL and hit counts
- A scrolling feed of cache events (hits, misses, refreshes, evictions)
- Scheduled calendar refreshes keeping shared agendas warm

Examples:
  hearthcache run                                # Run with default settings
  hearthcache run --ttl 30s --max-entries 50    # Tighter cache limits
  hearthcache run --refresh 500ms --theme light # Custom refresh rate and theme
  hearthcache run --no-refresh                  # Expire-only mode, no proactive refresh
  hearthcache run --compact                     # Headless, stats to the log only`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func init() {
	// Same tuning flags as the bare root command
	addDashboardFlags(runCmd)

	// Bind flags to viper for configuration
	_ = viper.BindPFlag("cache.default_ttl", runCmd.Flags().Lookup("ttl"))
	_ = viper.BindPFlag("cache.max_entries", runCmd.Flags().Lookup("max-entries"))
	_ = viper.BindPFlag("ui.refresh_rate", runCmd.Flags().Lookup("refresh"))
	_ = viper.BindPFlag("ui.theme", runCmd.Flags().Lookup("theme"))

	// Add to root command
	rootCmd.AddCommand(runCmd)
}
