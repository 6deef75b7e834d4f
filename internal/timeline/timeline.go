// Package timeline projects annotation time ranges onto a horizontal track
// and turns handle drags on that track back into retiming patches.
package timeline

import (
	"fmt"
	"math"

	"overlaytv/internal/models"
)

// TickCount is the number of labels under the track, at 10% steps.
const TickCount = 11

// Projector is the linear map between [0, Duration] seconds and
// [0, Width] pixels of track.
type Projector struct {
	Duration float64
	Width    float64
}

func (p Projector) known() bool {
	return p.Duration > 0 && !math.IsInf(p.Duration, 0) && !math.IsNaN(p.Duration)
}

// Percent maps t to a position in [0, 100].
func (p Projector) Percent(t float64) float64 {
	if !p.known() {
		return 0
	}
	return clamp(t/p.Duration, 0, 1) * 100
}

// TimeAt maps a pixel position on the track to a time in [0, Duration].
func (p Projector) TimeAt(x float64) float64 {
	if !p.known() || p.Width <= 0 {
		return 0
	}
	return clamp(x/p.Width, 0, 1) * p.Duration
}

// Seek is the time a click on the track jumps to.
func (p Projector) Seek(x float64) float64 { return p.TimeAt(x) }

// Bar is an annotation's block on the track.
type Bar struct {
	ID       string
	Type     models.Kind
	Left     float64 // percent
	Width    float64 // percent
	Selected bool
}

// Bars lays out one block per annotation in insertion order.
func (p Projector) Bars(list []models.Annotation, selected string) []Bar {
	out := make([]Bar, len(list))
	for i, a := range list {
		left := p.Percent(a.StartTime)
		out[i] = Bar{
			ID:       a.ID,
			Type:     a.Type,
			Left:     left,
			Width:    p.Percent(a.EndTime) - left,
			Selected: a.ID == selected,
		}
	}
	return out
}

// Ticks returns TickCount labels at 10% steps of the duration.
func (p Projector) Ticks() []string {
	out := make([]string, TickCount)
	for i := range out {
		var t float64
		if p.known() {
			t = p.Duration * float64(i) / float64(TickCount-1)
		}
		out[i] = FormatTime(t)
	}
	return out
}

// FormatTime renders seconds as m:ss.
func FormatTime(t float64) string {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		t = 0
	}
	s := int(t)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// CountLabel is the overlay counter shown above the track.
func CountLabel(n int) string {
	if n == 1 {
		return "1 overlay"
	}
	return fmt.Sprintf("%d overlays", n)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
