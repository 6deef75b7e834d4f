// Package store holds the ordered, in-memory collection of annotations for
// one editing session.
//
// Insertion order is paint order: later annotations draw on top and are
// hit-tested first. Every operation is total; updates and removals that name
// an unknown id are silent no-ops so that late or duplicated events can't
// break the editor. The store is not safe for concurrent use; it is owned by
// the single event-handling context.
package store

import (
	"math"

	"github.com/google/uuid"

	"overlaytv/internal/models"
)

type Store struct {
	items    []models.Annotation
	index    map[string]int
	selected string
	duration float64
	newID    func() string
}

type Option func(*Store)

// WithIDFunc replaces the id generator.
func WithIDFunc(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New returns an empty store. Ids are UUIDv7 strings, so they sort in
// creation order.
func New(opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int),
		newID: func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetDuration records the media duration once it is known. Updates that
// would push an end time past it are rejected.
func (s *Store) SetDuration(d float64) {
	if d > 0 && !math.IsInf(d, 0) {
		s.duration = d
	}
}

func (s *Store) Duration() float64 { return s.duration }

// Add appends a new annotation built from payload and makes it the
// selection. The visible window starts at currentTime and lasts
// DefaultWindow seconds, clipped to duration. A duration of zero means it
// is not known yet and the window is not clipped.
func (s *Store) Add(tool models.Tool, payload models.Payload, currentTime, duration float64) models.Annotation {
	s.SetDuration(duration)
	start, end := defaultWindow(currentTime, duration)

	a := models.Annotation{
		ID:        s.newID(),
		StartTime: start,
		EndTime:   end,
		Type:      models.KindForTool(tool),
		Data:      payload,
	}.Clone()

	s.index[a.ID] = len(s.items)
	s.items = append(s.items, a)
	s.selected = a.ID
	return a.Clone()
}

func defaultWindow(currentTime, duration float64) (float64, float64) {
	start := math.Max(0, currentTime)
	if duration <= 0 {
		return start, start + models.DefaultWindow
	}
	start = math.Min(start, duration)
	end := math.Min(start+models.DefaultWindow, duration)
	if end <= start {
		// Created on the last frame: keep a non-empty window by reaching back.
		start = math.Max(0, end-models.MinGap)
	}
	return start, end
}

// Update merges p into the annotation with the given id. It reports false,
// leaving the store untouched, when the id is unknown or when p retimes the
// annotation into an invalid range (start >= end, negative start, or past
// the known duration).
func (s *Store) Update(id string, p models.Patch) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	merged := p.Apply(s.items[i])
	retimed := p.StartTime != nil || p.EndTime != nil
	if retimed && !s.validRange(merged.StartTime, merged.EndTime) {
		return false
	}
	s.items[i] = merged
	return true
}

func (s *Store) validRange(start, end float64) bool {
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return false
	}
	if start < 0 || start >= end {
		return false
	}
	if s.duration > 0 && end > s.duration {
		return false
	}
	return true
}

// Remove drops the annotation, clearing the selection if it pointed at it.
func (s *Store) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.reindex()
	if s.selected == id {
		s.selected = ""
	}
	return true
}

func (s *Store) reindex() {
	clear(s.index)
	for i, a := range s.items {
		s.index[a.ID] = i
	}
}

// Get returns a copy of the annotation.
func (s *Store) Get(id string) (models.Annotation, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Annotation{}, false
	}
	return s.items[i].Clone(), true
}

// All returns copies of every annotation in insertion order.
func (s *Store) All() []models.Annotation {
	out := make([]models.Annotation, len(s.items))
	for i, a := range s.items {
		out[i] = a.Clone()
	}
	return out
}

// VisibleAt returns the annotations with StartTime <= t <= EndTime in
// insertion order.
func (s *Store) VisibleAt(t float64) []models.Annotation {
	var out []models.Annotation
	for _, a := range s.items {
		if a.VisibleAt(t) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (s *Store) Len() int { return len(s.items) }

// Select makes id the active annotation. Unknown ids clear the selection.
func (s *Store) Select(id string) {
	if _, ok := s.index[id]; !ok {
		id = ""
	}
	s.selected = id
}

// Selected returns the active annotation id, or "" when nothing is selected.
func (s *Store) Selected() string { return s.selected }

// Clear empties the store, as on loading a new video.
func (s *Store) Clear() {
	s.items = nil
	clear(s.index)
	s.selected = ""
	s.duration = 0
}

// Load replaces the contents with annotations from persisted state.
// Entries without an id get a fresh one and duplicate ids keep the first
// occurrence. Time ranges are taken as stored; malformed payloads are kept
// and skipped at render time.
func (s *Store) Load(list []models.Annotation) {
	s.items = make([]models.Annotation, 0, len(list))
	clear(s.index)
	s.selected = ""
	for _, a := range list {
		if a.ID == "" {
			a.ID = s.newID()
		}
		if _, dup := s.index[a.ID]; dup {
			continue
		}
		s.index[a.ID] = len(s.items)
		s.items = append(s.items, a.Clone())
	}
}
