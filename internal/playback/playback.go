// Package playback defines what the editor needs from a video player and
// provides a clock-free in-memory player for tests, scripts and server-side
// rendering.
package playback

import (
	"math"
	"sync"
)

// Source is an external player. The editor never decodes video; it reads
// the current time and duration and issues seek and play/pause commands.
type Source interface {
	CurrentTime() float64
	// Duration is 0 until metadata has loaded.
	Duration() float64
	Playing() bool
	Seek(t float64)
	TogglePlay()
}

// Manual is a Source whose clock only moves when told to. It is safe for
// concurrent use.
type Manual struct {
	mu       sync.Mutex
	current  float64
	duration float64
	playing  bool
}

// NewManual returns a paused player at time 0 with the given duration.
func NewManual(duration float64) *Manual {
	m := &Manual{}
	m.SetDuration(duration)
	return m
}

func (m *Manual) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manual) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Manual) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

// SetDuration simulates metadata loading. Non-finite or negative values
// are treated as unknown.
func (m *Manual) SetDuration(d float64) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
	m.current = m.clamp(m.current)
}

// Seek moves the playhead, clamped to [0, duration].
func (m *Manual) Seek(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.clamp(t)
}

// Advance moves the playhead forward by dt seconds, stopping at the end.
func (m *Manual) Advance(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.clamp(m.current + dt)
	if m.duration > 0 && m.current >= m.duration {
		m.playing = false
	}
}

func (m *Manual) TogglePlay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = !m.playing
}

func (m *Manual) SetPlaying(p bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = p
}

func (m *Manual) clamp(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if m.duration > 0 && t > m.duration {
		return m.duration
	}
	return t
}
