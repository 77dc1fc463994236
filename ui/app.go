package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hearthhq/datacache/cache"
)

// Dashboard drives the interactive terminal dashboard. It owns the Bubble
// Tea program and the channel that bridges cache events into the update
// loop.
type Dashboard struct {
	model   Model
	program *tea.Program
	config  Config
	source  DataSource
	events  chan cache.Event[any]
	ctx     context.Context
	cancel  context.CancelFunc
}

// Config holds dashboard configuration
type Config struct {
	Theme       string
	RefreshRate time.Duration
	TimeFormat  string
	PageSize    int
}

// DefaultConfig returns the default dashboard configuration
var DefaultConfig = Config{
	Theme:       "dark",
	RefreshRate: time.Second,
	TimeFormat:  "15:04:05",
	PageSize:    20,
}

// normalize fills in zero values so a partially populated Config still
// renders sensibly.
func (c Config) normalize() Config {
	if c.Theme == "" {
		c.Theme = DefaultConfig.Theme
	}
	if c.RefreshRate <= 0 {
		c.RefreshRate = DefaultConfig.RefreshRate
	}
	if c.TimeFormat == "" {
		c.TimeFormat = DefaultConfig.TimeFormat
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultConfig.PageSize
	}
	return c
}

// DataSource supplies the dashboard with cache and workload snapshots.
// Snapshot methods are polled once per refresh tick; the mutating methods
// back the clear and reset key bindings.
type DataSource interface {
	CacheStats() cache.Stats
	Entries() []cache.EntryInfo
	Counters() (reads, writes int64)
	ClearCache()
	ResetStats()
}

// eventBuffer is the capacity of the listener-to-dashboard channel. The
// feed is best effort: when the dashboard falls behind, new events are
// dropped rather than blocking cache operations.
const eventBuffer = 512

// NewDashboard creates a dashboard bound to the given data source.
func NewDashboard(cfg Config, source DataSource) *Dashboard {
	ctx, cancel := context.WithCancel(context.Background())
	cfg = cfg.normalize()

	events := make(chan cache.Event[any], eventBuffer)
	model := NewModel(cfg, source, events)

	d := &Dashboard{
		model:  model,
		config: cfg,
		source: source,
		events: events,
		ctx:    ctx,
		cancel: cancel,
	}

	// Inline display without the alt screen, so cache activity stays in
	// the terminal scrollback after exit.
	d.program = tea.NewProgram(
		model,
		tea.WithContext(ctx),
	)

	return d
}

// Start runs the dashboard and blocks until it exits.
func (d *Dashboard) Start() error {
	_, err := d.program.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) {
		// Stop was requested, not a failure.
		return nil
	}
	return err
}

// Stop shuts the dashboard down. Safe to call whether or not Start is
// currently blocked.
func (d *Dashboard) Stop() {
	if d.program != nil {
		d.program.Kill()
	}
	if d.cancel != nil {
		d.cancel()
	}
}

// CacheListener returns a cache listener that feeds the dashboard's event
// stream. The send never blocks: if the buffer is full the event is
// dropped, so a slow terminal cannot stall cache operations.
func (d *Dashboard) CacheListener() cache.Listener[any] {
	return func(event cache.Event[any]) {
		select {
		case d.events <- event:
		default:
		}
	}
}

// Send delivers a message to the running program.
func (d *Dashboard) Send(msg tea.Msg) {
	if d.program != nil {
		d.program.Send(msg)
	}
}

// IsRunning returns true until Stop has been called.
func (d *Dashboard) IsRunning() bool {
	return d.ctx.Err() == nil
}
