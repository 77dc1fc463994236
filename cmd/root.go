package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hearthhq/datacache/config"
	"github.com/hearthhq/datacache/internal"
	"github.com/hearthhq/datacache/logging"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
	verbose  bool
	// Dashboard flags moved to root so plain `hearthcache` starts it
	runTTL       time.Duration
	runMax       int
	runThreshold float64
	runNoRefresh bool
	runRefresh   time.Duration
	runTheme     string
	runCompact   bool
)

var rootCmd = &cobra.Command{
	Use:   "hearthcache",
	Short: "Family data cache with a live dashboard",
	Long: `hearthcache runs an in-memory TTL cache in front of a simulated household
data store and shows its behavior live: hits, misses, proactive refreshes,
evictions and the scheduled refreshes that keep shared calendars warm.

The workload models a family organizer: per-user todo lists and agendas,
shared grocery lists and document folders. Running hearthcache without a
subcommand starts the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hearthcache.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Dashboard flags (now default behavior)
	addDashboardFlags(rootCmd)

	// Bind flags to viper
	if err := viper.BindPFlag("app.log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		// During initialization, print to stderr
		fmt.Fprintf(os.Stderr, "Failed to bind log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("app.log_file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind log-file flag: %v\n", err)
	}
	if err := viper.BindPFlag("app.verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind verbose flag: %v\n", err)
	}
	if err := viper.BindPFlag("cache.default_ttl", rootCmd.Flags().Lookup("ttl")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind ttl flag: %v\n", err)
	}
	if err := viper.BindPFlag("cache.max_entries", rootCmd.Flags().Lookup("max-entries")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind max-entries flag: %v\n", err)
	}
	if err := viper.BindPFlag("ui.refresh_rate", rootCmd.Flags().Lookup("refresh")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind refresh flag: %v\n", err)
	}
	if err := viper.BindPFlag("ui.theme", rootCmd.Flags().Lookup("theme")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind theme flag: %v\n", err)
	}
}

// addCacheFlags registers the cache tuning flags on a command. Flag names
// match what config.FlagSource recognizes, so the same set works on the
// root command and on subcommands.
func addCacheFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&runTTL, "ttl", 0, "default entry TTL (e.g. 30s, 5m)")
	cmd.Flags().IntVar(&runMax, "max-entries", 0, "maximum number of cached entries")
	cmd.Flags().Float64Var(&runThreshold, "refresh-threshold", 0, "fraction of TTL after which reads refresh in the background (0-1]")
	cmd.Flags().BoolVar(&runNoRefresh, "no-refresh", false, "disable proactive background refresh")
}

// addDashboardFlags registers the cache flags plus the UI tuning flags.
func addDashboardFlags(cmd *cobra.Command) {
	addCacheFlags(cmd)
	cmd.Flags().DurationVarP(&runRefresh, "refresh", "r", 0, "dashboard refresh interval (e.g. 1s, 500ms)")
	cmd.Flags().StringVarP(&runTheme, "theme", "t", "", "UI theme (dark, light, auto)")
	cmd.Flags().BoolVar(&runCompact, "compact", false, "run headless without the dashboard")
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in the working directory and under the home directory
		viper.AddConfigPath(".")
		viper.AddConfigPath(home + "/.config/hearthcache")
		viper.SetConfigType("yaml")
		viper.SetConfigName("hearthcache")
	}

	// Environment variable prefix
	viper.SetEnvPrefix("HEARTHCACHE")
	viper.AutomaticEnv()

	// Set default values
	setDefaults()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "HearthCache")
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.log_file", "hearthcache.log")

	// Cache defaults
	viper.SetDefault("cache.default_ttl", "5m")
	viper.SetDefault("cache.max_entries", 100)
	viper.SetDefault("cache.refresh_threshold", 0.5)
	viper.SetDefault("cache.disable_background_refresh", false)

	// Demo workload defaults
	viper.SetDefault("demo.users", []string{"alice", "ben", "casey"})
	viper.SetDefault("demo.grocery_lists", []string{"weekly", "party"})
	viper.SetDefault("demo.doc_folders", []string{"school", "medical"})
	viper.SetDefault("demo.fetch_latency", "150ms")
	viper.SetDefault("demo.failure_rate", 0.15)
	viper.SetDefault("demo.read_interval", "400ms")
	viper.SetDefault("demo.write_interval", "3s")
	viper.SetDefault("demo.schedule_interval", "5s")

	// UI defaults
	viper.SetDefault("ui.theme", "dark")
	viper.SetDefault("ui.refresh_rate", "1s")
	viper.SetDefault("ui.table_page_size", 20)
	viper.SetDefault("ui.time_format", "15:04:05")
}

// runDashboard is the shared entry point of the root and run commands.
func runDashboard(cmd *cobra.Command) error {
	// Load and validate configuration
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override configuration with command line flags
	if err := applyRunFlags(cfg); err != nil {
		return fmt.Errorf("failed to apply command flags: %w", err)
	}

	// Initialize global logger
	if err := logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create and run application
	app, err := internal.NewApplication(cfg, watchedConfigFile())
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Starting hearthcache dashboard...\n")
		fmt.Fprintf(os.Stderr, "Configuration: %+v\n", cfg)
	}

	return app.Run()
}

func loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	// Create config loader
	loader := config.NewLoader()

	// An explicit --config file replaces the default search paths.
	// Otherwise layer the default paths, most specific file merged last.
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", cfgFile)
		}
		loader.AddSource(config.NewFileSource(cfgFile))
	} else {
		paths := config.ConfigPaths()
		for i := len(paths) - 1; i >= 0; i-- {
			loader.AddSource(config.NewFileSource(paths[i]))
		}
	}

	// Add environment variable source
	loader.AddSource(config.NewEnvSource("HEARTHCACHE"))

	// Add command line flags source
	loader.AddSource(config.NewFlagSource(cmd.Flags()))

	// Add validator
	loader.AddValidator(config.NewStandardValidator())

	// Load configuration with defaults as fallback
	cfg, err := loader.LoadWithDefaults()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyRunFlags applies the dashboard flags on top of the loaded
// configuration, with friendlier range errors than the validator's.
func applyRunFlags(cfg *config.Config) error {
	// Apply entry TTL if provided
	if runTTL > 0 {
		if runTTL < time.Second {
			return fmt.Errorf("ttl too small: %v (minimum: 1s)", runTTL)
		}
		if runTTL > 24*time.Hour {
			return fmt.Errorf("ttl too large: %v (maximum: 24h)", runTTL)
		}
		cfg.Cache.DefaultTTL = runTTL
	}

	// Apply entry cap if provided
	if runMax > 0 {
		if runMax > 100000 {
			return fmt.Errorf("max-entries too large: %d (maximum: 100000)", runMax)
		}
		cfg.Cache.MaxEntries = runMax
	}

	// Apply refresh threshold if provided
	if runThreshold > 0 {
		if err := config.ValidateRefreshThreshold(runThreshold); err != nil {
			return err
		}
		cfg.Cache.RefreshThreshold = runThreshold
	}

	// Disable proactive refresh if requested
	if runNoRefresh {
		cfg.Cache.DisableBackgroundRefresh = true
	}

	// Apply dashboard refresh interval if provided
	if runRefresh > 0 {
		if runRefresh < 100*time.Millisecond {
			return fmt.Errorf("refresh interval too small: %v (minimum: 100ms)", runRefresh)
		}
		if runRefresh > 1*time.Minute {
			return fmt.Errorf("refresh interval too large: %v (maximum: 1m)", runRefresh)
		}
		cfg.UI.RefreshRate = runRefresh
	}

	// Apply theme if provided
	if runTheme != "" {
		validThemes := []string{"dark", "light", "auto"}
		found := false
		for _, theme := range validThemes {
			if strings.EqualFold(runTheme, theme) {
				cfg.UI.Theme = strings.ToLower(runTheme)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("invalid theme: %s (valid options: %s)",
				runTheme, strings.Join(validThemes, ", "))
		}
	}

	// Apply headless mode
	if runCompact {
		cfg.UI.CompactMode = true
	}

	// Apply global logging flags
	if logLevel != "" {
		if err := config.ValidateLogLevel(logLevel); err != nil {
			return err
		}
		cfg.App.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.App.LogFile = logFile
	}
	if verbose {
		cfg.App.Verbose = true
	}

	return nil
}

// watchedConfigFile resolves the file the hot-reload watcher should follow:
// the explicit --config path when given, otherwise the first default path
// that exists. An empty result disables watching.
func watchedConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	for _, path := range config.ConfigPaths() {
		expanded := os.ExpandEnv(path)
		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}
	return ""
}
