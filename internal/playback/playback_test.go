package playback

import (
	"math"
	"testing"
)

func TestSeekClamps(t *testing.T) {
	m := NewManual(60)
	tests := []struct {
		seek, want float64
	}{
		{10, 10},
		{-3, 0},
		{75, 60},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		m.Seek(tt.seek)
		if got := m.CurrentTime(); got != tt.want {
			t.Errorf("Seek(%v) -> %v, want %v", tt.seek, got, tt.want)
		}
	}
}

func TestUnknownDurationDoesNotClampForward(t *testing.T) {
	m := NewManual(0)
	m.Seek(500)
	if m.CurrentTime() != 500 {
		t.Errorf("CurrentTime = %v, want 500", m.CurrentTime())
	}
	m.SetDuration(math.Inf(1))
	if m.Duration() != 0 {
		t.Errorf("infinite duration stored as %v", m.Duration())
	}
}

func TestAdvanceStopsAtEnd(t *testing.T) {
	m := NewManual(10)
	m.TogglePlay()
	if !m.Playing() {
		t.Fatal("TogglePlay did not start playback")
	}
	m.Advance(4)
	if m.CurrentTime() != 4 || !m.Playing() {
		t.Fatalf("after Advance(4): time=%v playing=%v", m.CurrentTime(), m.Playing())
	}
	m.Advance(20)
	if m.CurrentTime() != 10 || m.Playing() {
		t.Errorf("after running off the end: time=%v playing=%v", m.CurrentTime(), m.Playing())
	}
}

func TestSetDurationClampsPlayhead(t *testing.T) {
	m := NewManual(0)
	m.Seek(30)
	m.SetDuration(20)
	if m.CurrentTime() != 20 {
		t.Errorf("CurrentTime = %v, want 20", m.CurrentTime())
	}
}
