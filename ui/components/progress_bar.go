package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a labelled horizontal bar with optional value and
// percentage readouts.
type ProgressBar struct {
	Label       string
	Current     float64
	Max         float64
	Percentage  float64 // 0-100
	Width       int
	ShowValue   bool
	ShowPercent bool
	Color       lipgloss.Color
	Style       ProgressBarStyle
}

// ProgressBarStyle configures the bar's characters and text styles
type ProgressBarStyle struct {
	BarChar         string
	EmptyChar       string
	BarBracketStart string
	BarBracketEnd   string
	LabelStyle      lipgloss.Style
	ValueStyle      lipgloss.Style
	PercentStyle    lipgloss.Style
}

// ColorThreshold maps a percentage floor to a color
type ColorThreshold struct {
	Value float64
	Color lipgloss.Color
}

// ProgressColorScheme picks a color from a percentage
type ProgressColorScheme struct {
	Thresholds []ColorThreshold
	Default    lipgloss.Color
}

// HitRateColorScheme colors a cache hit-rate bar: red when most lookups
// miss, green once the cache is doing its job.
var HitRateColorScheme = ProgressColorScheme{
	Thresholds: []ColorThreshold{
		{Value: 0, Color: "#F87171"},  // red below 50%
		{Value: 50, Color: "#FB923C"}, // orange 50-75%
		{Value: 75, Color: "#FBBF24"}, // amber 75-90%
		{Value: 90, Color: "#34D399"}, // green from 90%
	},
	Default: "#F87171",
}

// GetProgressColor returns the color for a percentage
func (pcs ProgressColorScheme) GetProgressColor(percentage float64) lipgloss.Color {
	for i := len(pcs.Thresholds) - 1; i >= 0; i-- {
		if percentage >= pcs.Thresholds[i].Value {
			return pcs.Thresholds[i].Color
		}
	}
	return pcs.Default
}

// NewProgressBar creates a progress bar. A zero max renders as empty.
func NewProgressBar(label string, current, max float64) *ProgressBar {
	percentage := 0.0
	if max > 0 {
		percentage = math.Min(100, (current/max)*100)
	}

	return &ProgressBar{
		Label:       label,
		Current:     current,
		Max:         max,
		Percentage:  percentage,
		Width:       40,
		ShowValue:   true,
		ShowPercent: true,
		Style:       DefaultProgressBarStyle(),
	}
}

// DefaultProgressBarStyle returns the default bar style
func DefaultProgressBarStyle() ProgressBarStyle {
	return ProgressBarStyle{
		BarChar:         "█",
		EmptyChar:       "░",
		BarBracketStart: "[",
		BarBracketEnd:   "]",
		LabelStyle:      lipgloss.NewStyle().Bold(true),
		ValueStyle:      lipgloss.NewStyle(),
		PercentStyle:    lipgloss.NewStyle().Faint(true),
	}
}

// Render renders the bar
func (pb *ProgressBar) Render() string {
	fillLength := int(float64(pb.Width) * pb.Percentage / 100)
	if fillLength > pb.Width {
		fillLength = pb.Width
	}
	if fillLength < 0 {
		fillLength = 0
	}
	emptyLength := pb.Width - fillLength

	barContent := strings.Repeat(pb.Style.BarChar, fillLength) +
		strings.Repeat(pb.Style.EmptyChar, emptyLength)

	bar := fmt.Sprintf("%s%s%s",
		pb.Style.BarBracketStart,
		barContent,
		pb.Style.BarBracketEnd,
	)

	if pb.Color != "" {
		bar = lipgloss.NewStyle().Foreground(pb.Color).Render(bar)
	}

	parts := []string{
		pb.Style.LabelStyle.Render(pb.Label),
		bar,
	}

	if pb.ShowValue {
		value := fmt.Sprintf("%s/%s", FormatCount(int64(pb.Current)), FormatCount(int64(pb.Max)))
		parts = append(parts, pb.Style.ValueStyle.Render(value))
	}

	if pb.ShowPercent {
		parts = append(parts, pb.Style.PercentStyle.Render(FormatPercent(pb.Percentage, 1)))
	}

	return strings.Join(parts, " ")
}

// SetWidth sets the bar width, keeping a usable minimum
func (pb *ProgressBar) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	pb.Width = width
}

// Update replaces the current value and recomputes the percentage
func (pb *ProgressBar) Update(current float64) {
	pb.Current = current
	if pb.Max > 0 {
		pb.Percentage = math.Min(100, (current/pb.Max)*100)
	}
}

// SetColor sets the bar color
func (pb *ProgressBar) SetColor(color lipgloss.Color) {
	pb.Color = color
}

// SetMax replaces the maximum and recomputes the percentage
func (pb *ProgressBar) SetMax(max float64) {
	pb.Max = max
	if pb.Max > 0 {
		pb.Percentage = math.Min(100, (pb.Current/pb.Max)*100)
	}
}
