package components

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		current  float64
		max      float64
		expected float64 // expected percentage
	}{
		{
			name:     "half full",
			label:    "Hit Rate",
			current:  50,
			max:      100,
			expected: 50.0,
		},
		{
			name:     "full",
			label:    "Hit Rate",
			current:  100,
			max:      100,
			expected: 100.0,
		},
		{
			name:     "empty",
			label:    "Hit Rate",
			current:  0,
			max:      100,
			expected: 0.0,
		},
		{
			name:     "over max is capped",
			label:    "Hit Rate",
			current:  150,
			max:      100,
			expected: 100.0,
		},
		{
			name:     "zero max",
			label:    "Hit Rate",
			current:  50,
			max:      0,
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.label, tt.current, tt.max)

			if pb.Label != tt.label {
				t.Errorf("Expected label %s, got %s", tt.label, pb.Label)
			}

			if pb.Percentage != tt.expected {
				t.Errorf("Expected percentage %f, got %f", tt.expected, pb.Percentage)
			}
		})
	}
}

func TestProgressBar_Render(t *testing.T) {
	pb := NewProgressBar("Hit Rate", 75, 100)
	pb.SetWidth(20)

	result := pb.Render()

	if !strings.Contains(result, "Hit Rate") {
		t.Error("Expected result to contain the label")
	}

	if !strings.Contains(result, "75.0%") {
		t.Errorf("Expected result to contain the percentage, got %s", result)
	}

	if !strings.Contains(result, "75/100") {
		t.Errorf("Expected result to contain the value readout, got %s", result)
	}

	if !strings.Contains(result, "[") || !strings.Contains(result, "]") {
		t.Error("Expected result to contain progress bar brackets")
	}
}

func TestProgressBar_RenderLargeCounts(t *testing.T) {
	pb := NewProgressBar("Hit Rate", 1500, 3000)

	result := pb.Render()

	if !strings.Contains(result, "1.5K/3.0K") {
		t.Errorf("Expected K-suffixed value readout, got %s", result)
	}
}

func TestProgressBar_Update(t *testing.T) {
	pb := NewProgressBar("Hit Rate", 25, 100)

	pb.Update(75)
	if pb.Current != 75 || pb.Percentage != 75.0 {
		t.Errorf("Update failed: current=%f, percentage=%f", pb.Current, pb.Percentage)
	}

	pb.Update(150)
	if pb.Percentage != 100.0 {
		t.Errorf("Expected percentage to be capped at 100.0, got %f", pb.Percentage)
	}
}

func TestProgressBar_SetWidth(t *testing.T) {
	pb := NewProgressBar("Hit Rate", 50, 100)

	pb.SetWidth(30)
	if pb.Width != 30 {
		t.Errorf("Expected width 30, got %d", pb.Width)
	}

	pb.SetWidth(5)
	if pb.Width != 10 {
		t.Errorf("Expected width to be constrained to minimum 10, got %d", pb.Width)
	}
}

func TestProgressBar_SetMax(t *testing.T) {
	pb := NewProgressBar("Hit Rate", 50, 100)

	pb.SetMax(50)
	if pb.Percentage != 100.0 {
		t.Errorf("Expected percentage 100.0 after halving max, got %f", pb.Percentage)
	}
}

func TestHitRateColorScheme(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   lipgloss.Color
	}{
		{25, "#F87171"}, // red
		{60, "#FB923C"}, // orange
		{80, "#FBBF24"}, // amber
		{95, "#34D399"}, // green
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0f%%", tt.percentage), func(t *testing.T) {
			color := HitRateColorScheme.GetProgressColor(tt.percentage)
			if color != tt.expected {
				t.Errorf("Expected color %s, got %s", tt.expected, color)
			}
		})
	}
}

func BenchmarkProgressBar_Render(b *testing.B) {
	pb := NewProgressBar("Hit Rate", 50, 100)
	pb.SetWidth(40)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pb.Render()
	}
}
