package editor

import (
	"overlaytv/internal/timeline"
)

// Track returns the timeline projection for a track width pixels wide.
func (e *Editor) Track(width float64) timeline.Projector {
	return timeline.Projector{Duration: e.player.Duration(), Width: width}
}

// TrackBars lays out every annotation on the track.
func (e *Editor) TrackBars(width float64) []timeline.Bar {
	return e.Track(width).Bars(e.store.All(), e.store.Selected())
}

// SeekTrack jumps playback to the clicked track position.
func (e *Editor) SeekTrack(x, width float64) {
	e.player.Seek(e.Track(width).Seek(x))
}

// BeginTrackDrag grabs a handle of annotation id and selects it.
func (e *Editor) BeginTrackDrag(id string, h timeline.Handle, x, width float64) bool {
	a, ok := e.store.Get(id)
	if !ok {
		return false
	}
	e.SyncDuration()
	e.store.Select(id)
	e.trackDrag = e.Track(width).BeginDrag(a, h, x)
	return true
}

// DragTrack moves the grabbed handle. It reports whether the annotation
// was retimed; moves that would break the minimum gap are ignored.
func (e *Editor) DragTrack(x float64) bool {
	if e.trackDrag == nil {
		return false
	}
	patch, ok := e.trackDrag.Move(x)
	if !ok {
		return false
	}
	return e.store.Update(e.trackDrag.ID, patch)
}

func (e *Editor) EndTrackDrag() { e.trackDrag = nil }

// SetStart applies a typed-in start time.
func (e *Editor) SetStart(id string, v float64) bool {
	a, ok := e.store.Get(id)
	if !ok {
		return false
	}
	patch, ok := timeline.SetStart(a, v)
	return ok && e.store.Update(id, patch)
}

// SetEnd applies a typed-in end time.
func (e *Editor) SetEnd(id string, v float64) bool {
	a, ok := e.store.Get(id)
	if !ok {
		return false
	}
	e.SyncDuration()
	patch, ok := timeline.SetEnd(a, v, e.player.Duration())
	return ok && e.store.Update(id, patch)
}

// DeleteSelected removes the active annotation.
func (e *Editor) DeleteSelected() bool {
	id := e.store.Selected()
	if id == "" {
		return false
	}
	return e.store.Remove(id)
}

// CountLabel is the overlay counter text.
func (e *Editor) CountLabel() string { return timeline.CountLabel(e.store.Len()) }
