package models

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"overlaytv/internal/geometry"
)

// Kind tags the payload variant of an annotation.
type Kind string

const (
	KindDrawing Kind = "drawing"
	KindText    Kind = "text"
)

// Payload is the variant body of an annotation. It is implemented only by
// DrawingData and TextData; consumers switch on the concrete type.
type Payload interface {
	Kind() Kind
	Offset() geometry.Point
	clone() Payload
}

// Path is one continuous stroke. Points are relative (0..1) coordinates.
type Path struct {
	Points []geometry.Point `json:"points" yaml:"points"`
	Color  string           `json:"color" yaml:"color"`
	Size   float64          `json:"size" yaml:"size"`
}

// DrawingData holds freehand strokes. OffsetX/OffsetY translate every path
// without rewriting the stored points.
type DrawingData struct {
	Paths   []Path  `json:"paths" yaml:"paths"`
	OffsetX float64 `json:"offsetX" yaml:"offsetX"`
	OffsetY float64 `json:"offsetY" yaml:"offsetY"`
}

func (DrawingData) Kind() Kind { return KindDrawing }

func (d DrawingData) Offset() geometry.Point {
	return geometry.Point{X: d.OffsetX, Y: d.OffsetY}
}

func (d DrawingData) clone() Payload {
	if d.Paths == nil {
		return d
	}
	paths := make([]Path, len(d.Paths))
	for i, p := range d.Paths {
		paths[i] = p
		paths[i].Points = append([]geometry.Point(nil), p.Points...)
	}
	d.Paths = paths
	return d
}

// TextData is a single line of text anchored at its baseline-left corner.
type TextData struct {
	Text    string  `json:"text" yaml:"text"`
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Color   string  `json:"color" yaml:"color"`
	Size    float64 `json:"size" yaml:"size"`
	Font    string  `json:"font" yaml:"font"`
	OffsetX float64 `json:"offsetX" yaml:"offsetX"`
	OffsetY float64 `json:"offsetY" yaml:"offsetY"`
}

func (TextData) Kind() Kind { return KindText }

func (t TextData) Offset() geometry.Point {
	return geometry.Point{X: t.OffsetX, Y: t.OffsetY}
}

// Anchor is the relative baseline-left position before the offset.
func (t TextData) Anchor() geometry.Point {
	return geometry.Point{X: t.X, Y: t.Y}
}

func (t TextData) clone() Payload { return t }

// Annotation is a time-bound overlay object. Geometry inside Data is always
// resolution independent.
type Annotation struct {
	ID        string
	StartTime float64
	EndTime   float64
	Type      Kind
	Data      Payload
}

// VisibleAt reports whether t falls inside [StartTime, EndTime].
func (a Annotation) VisibleAt(t float64) bool {
	return a.StartTime <= t && t <= a.EndTime
}

// Clone returns a deep copy so callers can't alias store-owned slices.
func (a Annotation) Clone() Annotation {
	if a.Data != nil {
		a.Data = a.Data.clone()
	}
	return a
}

// Drawing returns the drawing payload, if that is what Data holds.
func (a Annotation) Drawing() (DrawingData, bool) {
	d, ok := a.Data.(DrawingData)
	return d, ok
}

// Text returns the text payload, if that is what Data holds.
func (a Annotation) Text() (TextData, bool) {
	t, ok := a.Data.(TextData)
	return t, ok
}

// annotationWire is the persisted shape shared with the browser editor.
type annotationWire struct {
	ID        string  `json:"id" yaml:"id"`
	StartTime float64 `json:"startTime" yaml:"startTime"`
	EndTime   float64 `json:"endTime" yaml:"endTime"`
	Type      Kind    `json:"type" yaml:"type"`
	Data      any     `json:"data,omitempty" yaml:"data,omitempty"`
}

func (a Annotation) wire() annotationWire {
	w := annotationWire{ID: a.ID, StartTime: a.StartTime, EndTime: a.EndTime, Type: a.Type}
	if a.Data != nil {
		w.Data = a.Data
	}
	return w
}

func (a Annotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.wire())
}

func (a *Annotation) UnmarshalJSON(b []byte) error {
	var w struct {
		ID        string          `json:"id"`
		StartTime float64         `json:"startTime"`
		EndTime   float64         `json:"endTime"`
		Type      Kind            `json:"type"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*a = Annotation{ID: w.ID, StartTime: w.StartTime, EndTime: w.EndTime, Type: w.Type}
	if len(w.Data) == 0 || string(w.Data) == "null" {
		return nil
	}
	// A payload that doesn't decode leaves Data nil; render and hit-test
	// skip such annotations and the rest of the document still loads.
	switch w.Type {
	case KindDrawing:
		var d DrawingData
		if json.Unmarshal(w.Data, &d) == nil {
			a.Data = d
		}
	case KindText:
		var t TextData
		if json.Unmarshal(w.Data, &t) == nil {
			a.Data = t
		}
	}
	return nil
}

func (a Annotation) MarshalYAML() (any, error) {
	return a.wire(), nil
}

func (a *Annotation) UnmarshalYAML(node *yaml.Node) error {
	var w struct {
		ID        string    `yaml:"id"`
		StartTime float64   `yaml:"startTime"`
		EndTime   float64   `yaml:"endTime"`
		Type      Kind      `yaml:"type"`
		Data      yaml.Node `yaml:"data"`
	}
	if err := node.Decode(&w); err != nil {
		return err
	}
	*a = Annotation{ID: w.ID, StartTime: w.StartTime, EndTime: w.EndTime, Type: w.Type}
	if w.Data.Kind == 0 {
		return nil
	}
	switch w.Type {
	case KindDrawing:
		var d DrawingData
		if w.Data.Decode(&d) == nil {
			a.Data = d
		}
	case KindText:
		var t TextData
		if w.Data.Decode(&t) == nil {
			a.Data = t
		}
	}
	return nil
}
