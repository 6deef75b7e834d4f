package timeline

import (
	"math"

	"overlaytv/internal/models"
)

// Handle names the part of a bar being dragged.
type Handle int

const (
	HandleStart Handle = iota
	HandleMove
	HandleEnd
)

func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleMove:
		return "move"
	case HandleEnd:
		return "end"
	}
	return "unknown"
}

// Drag is one handle drag on the track. Every move is computed against the
// range the annotation had when the drag began, so rejected moves don't
// drift it.
type Drag struct {
	ID     string
	Handle Handle

	proj       Projector
	grab       float64
	start, end float64
}

// BeginDrag starts dragging handle h of a, grabbed at track position x.
func (p Projector) BeginDrag(a models.Annotation, h Handle, x float64) *Drag {
	return &Drag{
		ID:     a.ID,
		Handle: h,
		proj:   p,
		grab:   p.TimeAt(x),
		start:  a.StartTime,
		end:    a.EndTime,
	}
}

// Move returns the retiming patch for the pointer at track position x. ok
// is false unless the edges stay more than MinGap apart; the caller then
// leaves the annotation alone.
func (d *Drag) Move(x float64) (models.Patch, bool) {
	t := d.proj.TimeAt(x)
	switch d.Handle {
	case HandleStart:
		if t >= d.end-models.MinGap {
			return models.Patch{}, false
		}
		return models.Patch{StartTime: models.Ptr(t)}, true
	case HandleEnd:
		if t <= d.start+models.MinGap {
			return models.Patch{}, false
		}
		return models.Patch{EndTime: models.Ptr(t)}, true
	case HandleMove:
		length := d.end - d.start
		start := math.Max(0, d.start+(t-d.grab))
		end := start + length
		if d.proj.known() && end >= d.proj.Duration {
			// Pin the right edge exactly; start+length may round past it.
			end = d.proj.Duration
			start = end - length
		}
		if start < 0 {
			// Longer than the video; nothing valid to move to.
			return models.Patch{}, false
		}
		return models.Patch{StartTime: models.Ptr(start), EndTime: models.Ptr(end)}, true
	}
	return models.Patch{}, false
}

// SetStart is a typed-in start time. It is clamped at 0 and rejected when
// it would not leave more than MinGap before end.
func SetStart(a models.Annotation, v float64) (models.Patch, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Patch{}, false
	}
	v = math.Max(0, v)
	if v >= a.EndTime-models.MinGap {
		return models.Patch{}, false
	}
	return models.Patch{StartTime: models.Ptr(v)}, true
}

// SetEnd is a typed-in end time. It is clamped at duration when that is
// known and rejected when it would not leave more than MinGap after start.
func SetEnd(a models.Annotation, v, duration float64) (models.Patch, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Patch{}, false
	}
	if duration > 0 {
		v = math.Min(v, duration)
	}
	if v <= a.StartTime+models.MinGap {
		return models.Patch{}, false
	}
	return models.Patch{EndTime: models.Ptr(v)}, true
}
