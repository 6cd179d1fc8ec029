package colormap

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Legend describes a colored scale and its labelled range.
type Legend struct {
	Title string
	Unit  string
	Lo    float64
	Hi    float64
	Color func(t float64) colorful.Color
}

func NewLegend(title, unit string, lo, hi float64, r Ramp) Legend {
	return Legend{Title: title, Unit: unit, Lo: lo, Hi: hi, Color: r.At}
}

// MachLegend spans [lo,hi] with the sonic color pinned at M = 1.
func MachLegend(lo, hi float64) Legend {
	return Legend{
		Title: "Mach",
		Lo:    lo,
		Hi:    hi,
		Color: func(t float64) colorful.Color {
			return Mach.At(lo+t*(hi-lo), lo, hi)
		},
	}
}

// Swatches samples n evenly spaced colors from low to high.
func (l Legend) Swatches(n int) []colorful.Color {
	if n < 2 {
		n = 2
	}
	out := make([]colorful.Color, n)
	for i := range out {
		out[i] = l.Color(float64(i) / float64(n-1))
	}
	return out
}

// Render draws the legend as a single colored bar with range labels.
func (l Legend) Render(width int) string {
	if l.Color == nil {
		return ""
	}
	var bar strings.Builder
	for _, c := range l.Swatches(width) {
		bar.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c.Clamped().Hex())).Render(" "))
	}
	title := lipgloss.NewStyle().Bold(true).Render(l.Title)
	labels := fmt.Sprintf("%s %s  %s %s", formatValue(l.Lo), l.Unit, formatValue(l.Hi), l.Unit)
	return lipgloss.JoinVertical(lipgloss.Left, title, bar.String(), strings.TrimSpace(labels))
}

func formatValue(v float64) string {
	switch {
	case v == 0:
		return "0"
	case v >= 1e4 || v <= -1e4:
		return fmt.Sprintf("%.2e", v)
	case v >= 100 || v <= -100:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
