package render

import (
	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
)

const (
	// SelectionMargin is the gap between an annotation and its dashed
	// selection rectangle.
	SelectionMargin = 5.0

	// HitTolerance widens every bounding box during hit-testing.
	HitTolerance = 5.0
)

// Measurer reports the advance width of a string in a font family at a
// pixel size. fonts.Registry implements it.
type Measurer interface {
	TextWidth(s, family string, size float64) float64
}

// FontSize is the on-screen font size of t at viewport v.
func FontSize(t models.TextData, v geometry.Viewport) float64 {
	size := t.Size
	if size <= 0 {
		size = models.DefaultTextSize
	}
	return size * v.Scale()
}

// StrokeWidth is the on-screen line width of p at viewport v.
func StrokeWidth(p models.Path, v geometry.Viewport) float64 {
	size := p.Size
	if size <= 0 {
		size = models.DefaultStrokeSize
	}
	return size * v.Scale()
}

// TextOrigin is the absolute baseline-left point of t.
func TextOrigin(t models.TextData, v geometry.Viewport) geometry.Point {
	return geometry.ToAbsolute(t.Anchor(), v, t.Offset())
}

// Bounds returns the absolute bounding box of a at viewport v. ok is false
// for annotations with nothing to draw.
func Bounds(a models.Annotation, v geometry.Viewport, m Measurer) (geometry.Box, bool) {
	switch d := a.Data.(type) {
	case models.DrawingData:
		return drawingBounds(d, v)
	case models.TextData:
		if d.Text == "" {
			return geometry.Box{}, false
		}
		return textBounds(d.Text, TextOrigin(d, v), d.Font, FontSize(d, v), m), true
	}
	return geometry.Box{}, false
}

func drawingBounds(d models.DrawingData, v geometry.Viewport) (geometry.Box, bool) {
	off := d.Offset()
	var pts []geometry.Point
	for _, p := range d.Paths {
		for _, pt := range p.Points {
			pts = append(pts, geometry.ToAbsolute(pt, v, off))
		}
	}
	return geometry.BoundsOf(pts)
}

// textBounds spans from the baseline up one font size, and across the
// measured advance.
func textBounds(s string, origin geometry.Point, family string, fontSize float64, m Measurer) geometry.Box {
	var w float64
	if m != nil {
		w = m.TextWidth(s, family, fontSize)
	}
	return geometry.Box{X: origin.X, Y: origin.Y - fontSize, Width: w, Height: fontSize}
}

// HitTest returns the topmost annotation under p. visible is in paint
// order, so it is scanned from the end.
func HitTest(visible []models.Annotation, p geometry.Point, v geometry.Viewport, m Measurer) (models.Annotation, bool) {
	for i := len(visible) - 1; i >= 0; i-- {
		box, ok := Bounds(visible[i], v, m)
		if !ok {
			continue
		}
		if box.Inset(HitTolerance).Contains(p) {
			return visible[i], true
		}
	}
	return models.Annotation{}, false
}
