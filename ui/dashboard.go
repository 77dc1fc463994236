package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/hearthhq/datacache/cache"
	"github.com/hearthhq/datacache/ui/components"
)

const (
	// maxFeedEvents bounds the in-memory event feed
	maxFeedEvents = 64
	// eventFeedLines is how many feed entries render at once
	eventFeedLines = 8
	// statusVisible is how long an action result stays in the footer
	statusVisible = 5 * time.Second
	// keyColumnWidth is the width of the key column in the entry table
	keyColumnWidth = 32
)

// DashboardView renders the cache dashboard: the stats header with the
// hit-rate bar, the live entry table and the recent event feed.
type DashboardView struct {
	stats      cache.Stats
	entries    []cache.EntryInfo
	feed       []cache.Event[any]
	reads      int64
	writes     int64
	paused     bool
	status     string
	statusAt   time.Time
	lastUpdate time.Time
	startedAt  time.Time

	width  int
	height int
	config Config
	keys   KeyMap
	styles Styles
}

// NewDashboardView creates a new dashboard view
func NewDashboardView(cfg Config) *DashboardView {
	return &DashboardView{
		config:    cfg.normalize(),
		keys:      DefaultKeyMap(),
		styles:    NewStyles(GetThemeByName(cfg.Theme)),
		startedAt: time.Now(),
	}
}

// UpdateSnapshot replaces the rendered cache state
func (d *DashboardView) UpdateSnapshot(stats cache.Stats, entries []cache.EntryInfo, reads, writes int64) {
	d.stats = stats
	d.entries = entries
	d.reads = reads
	d.writes = writes
	d.lastUpdate = time.Now()
}

// AppendEvent adds an event to the feed, dropping the oldest entries once
// the feed is full.
func (d *DashboardView) AppendEvent(event cache.Event[any]) {
	d.feed = append(d.feed, event)
	if len(d.feed) > maxFeedEvents {
		d.feed = d.feed[len(d.feed)-maxFeedEvents:]
	}
}

// SetPaused toggles the paused badge
func (d *DashboardView) SetPaused(paused bool) {
	d.paused = paused
}

// SetStatus shows a transient action result in the footer
func (d *DashboardView) SetStatus(status string) {
	d.status = status
	d.statusAt = time.Now()
}

// Resize updates the dashboard dimensions
func (d *DashboardView) Resize(width, height int) {
	d.width = width
	d.height = height
}

// UpdateConfig applies new settings, including a theme change
func (d *DashboardView) UpdateConfig(cfg Config) {
	d.config = cfg.normalize()
	d.styles = NewStyles(GetThemeByName(d.config.Theme))
}

// View renders the dashboard
func (d *DashboardView) View() string {
	sections := []string{
		d.renderHeader(),
		d.renderEntries(),
		d.renderEvents(),
		d.renderFooter(),
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// renderHeader renders the title line, the hit-rate bar and the counters
func (d *DashboardView) renderHeader() string {
	title := d.styles.Title.Render("HearthCache")
	if d.paused {
		title += "  " + d.styles.Paused.Render("PAUSED")
	}

	meta := d.styles.Muted.Render(fmt.Sprintf("up %s  ·  updated %s",
		components.FormatDuration(time.Since(d.startedAt)),
		d.lastUpdate.Format(d.config.TimeFormat)))

	return strings.Join([]string{
		title + "  " + meta,
		d.renderHitRate(),
		d.renderCounters(),
	}, "\n")
}

// renderHitRate renders the hit-rate progress bar
func (d *DashboardView) renderHitRate() string {
	total := d.stats.Hits + d.stats.Misses
	bar := components.NewProgressBar("Hit Rate", float64(d.stats.Hits), float64(total))
	bar.SetWidth(d.barWidth())
	bar.SetColor(components.HitRateColorScheme.GetProgressColor(bar.Percentage))
	return bar.Render()
}

// renderCounters renders the lifetime counter line
func (d *DashboardView) renderCounters() string {
	pairs := []string{
		d.renderCounter("entries", components.FormatCount(int64(d.stats.TotalEntries))),
		d.renderCounter("hits", components.FormatCount(d.stats.Hits)),
		d.renderCounter("misses", components.FormatCount(d.stats.Misses)),
		d.renderCounter("writes", components.FormatCount(d.stats.Writes)),
		d.renderCounter("refreshes", components.FormatCount(d.stats.Refreshes)),
		d.renderCounter("evictions", components.FormatCount(d.stats.Evictions)),
		d.renderCounter("workload r/w", fmt.Sprintf("%s/%s",
			components.FormatCount(d.reads), components.FormatCount(d.writes))),
	}
	return strings.Join(pairs, "   ")
}

// renderCounter renders a single labelled counter
func (d *DashboardView) renderCounter(label, value string) string {
	return d.styles.Muted.Render(label+" ") + d.styles.Bold.Render(value)
}

// renderEntries renders the live entry table, one page at most
func (d *DashboardView) renderEntries() string {
	title := d.styles.Subtitle.Render(fmt.Sprintf("Entries (%d)", len(d.entries)))

	if len(d.entries) == 0 {
		return title + "\n" + d.styles.Muted.Render("cache is empty")
	}

	header := fmt.Sprintf("%-*s %8s %8s %8s %6s %4s",
		keyColumnWidth, "KEY", "AGE", "TTL", "LEFT", "HITS", "VER")

	rows := []string{title, d.styles.TableHeader.Render(header)}

	visible := d.entries
	if len(visible) > d.config.PageSize {
		visible = visible[:d.config.PageSize]
	}

	for _, info := range visible {
		line := fmt.Sprintf("%-*s %8s %8s %8s %6d %4d",
			keyColumnWidth, components.Truncate(info.Key, keyColumnWidth),
			components.FormatDuration(info.Age),
			components.FormatDuration(info.TTL),
			components.FormatDuration(info.RemainingTTL),
			info.Hits,
			info.Version,
		)

		style := d.styles.TableRow
		if info.Expired {
			style = d.styles.Muted
		}
		rows = append(rows, style.Render(line))
	}

	if hidden := len(d.entries) - len(visible); hidden > 0 {
		rows = append(rows, d.styles.Muted.Render(fmt.Sprintf("… and %d more", hidden)))
	}

	return strings.Join(rows, "\n")
}

// renderEvents renders the scrolling event feed, newest last
func (d *DashboardView) renderEvents() string {
	title := d.styles.Subtitle.Render("Recent Events")

	if len(d.feed) == 0 {
		return title + "\n" + d.styles.Muted.Render("no events yet")
	}

	start := len(d.feed) - eventFeedLines
	if start < 0 {
		start = 0
	}

	lines := []string{title}
	for _, event := range d.feed[start:] {
		ts := d.styles.Muted.Render(event.Time.Format(d.config.TimeFormat))
		kind := d.styles.EventStyle(event.Type).Render(fmt.Sprintf("%-9s", string(event.Type)))

		detail := event.Key
		if event.Type == cache.EventEviction && event.Reason != "" {
			detail += "  (" + string(event.Reason) + ")"
		}

		lines = append(lines, ts+"  "+kind+" "+d.styles.Normal.Render(detail))
	}

	return strings.Join(lines, "\n")
}

// renderFooter renders the key help and any transient status
func (d *DashboardView) renderFooter() string {
	help := make([]string, 0, 5)
	for _, binding := range d.keys.ShortHelp() {
		help = append(help,
			d.styles.Bold.Render(binding.Help().Key)+" "+d.styles.Muted.Render(binding.Help().Desc))
	}

	line := strings.Join(help, d.styles.Muted.Render("  ·  "))
	if d.status != "" && time.Since(d.statusAt) < statusVisible {
		line = d.styles.Success.Render(d.status) + "   " + line
	}
	return line
}

// barWidth sizes the hit-rate bar to the terminal, within sane bounds
func (d *DashboardView) barWidth() int {
	width := d.width - 40
	if width > 40 {
		width = 40
	}
	if width < 10 {
		width = 10
	}
	return width
}
