// Package render paints visible annotations and in-progress input onto a
// raster surface.
//
// Rendering is a pure function of a Scene: the caller repaints whenever the
// store changes, the playback time moves, or the viewport is resized. All
// stored geometry is relative; absolute positions are derived from the
// Scene's viewport on every pass.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
)

const (
	selectionColor = "#ff3366"
	selectionWidth = 2.0
	selectionDash  = 5.0

	shadowOffset = 2.0
	caretWidth   = 2.0
)

// FaceSource supplies font faces and measurements.
type FaceSource interface {
	Measurer
	Face(family string, size float64) (text.Face, error)
}

// LiveStroke is a stroke being captured. Points are absolute viewport
// pixels.
type LiveStroke struct {
	Points []geometry.Point
	Color  string
	Size   float64
}

// LiveText is an open text-input session.
type LiveText struct {
	Anchor       geometry.Point // absolute baseline-left
	Value        string
	Color        string
	Size         float64 // reference-resolution font size
	Font         string
	CaretVisible bool
}

// Scene is everything one repaint depends on.
type Scene struct {
	Viewport geometry.Viewport

	// Annotations are the visible annotations in insertion order.
	Annotations []models.Annotation

	ActiveID     string
	ShowOutlines bool

	// EditingID is skipped; it is drawn through Text instead.
	EditingID string

	Stroke *LiveStroke
	Text   *LiveText
}

type Renderer struct {
	faces FaceSource
	log   *slog.Logger
}

func NewRenderer(faces FaceSource, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{faces: faces, log: logger}
}

// Measurer exposes the renderer's text measurement for hit-testing.
func (r *Renderer) Measurer() Measurer { return r.faces }

// Image renders sc onto a fresh transparent surface sized to the
// viewport's raster size.
func (r *Renderer) Image(sc Scene) (image.Image, error) {
	w, h := sc.Viewport.RasterSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: empty viewport %vx%v", sc.Viewport.Width, sc.Viewport.Height)
	}
	dc := gg.NewContext(w, h)
	defer dc.Close()

	err := r.Render(dc, sc)
	if ferr := dc.FlushGPU(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	return dc.Image(), err
}

// WritePNG renders sc and encodes it to w as a PNG with an alpha channel.
func (r *Renderer) WritePNG(w io.Writer, sc Scene) error {
	width, height := sc.Viewport.RasterSize()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: empty viewport %vx%v", sc.Viewport.Width, sc.Viewport.Height)
	}
	dc := gg.NewContext(width, height)
	defer dc.Close()

	if err := r.Render(dc, sc); err != nil {
		return err
	}
	if err := dc.FlushGPU(); err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// Render clears dc and paints sc. dc must be sized to the viewport's
// raster size. Annotations without a usable payload are skipped.
func (r *Renderer) Render(dc *gg.Context, sc Scene) error {
	p := painter{dc: dc, ratio: sc.Viewport.Ratio(), faces: r.faces, log: r.log}
	dc.Clear()

	for _, a := range sc.Annotations {
		if sc.EditingID != "" && a.ID == sc.EditingID {
			continue
		}
		switch d := a.Data.(type) {
		case models.DrawingData:
			p.drawing(d, sc.Viewport)
		case models.TextData:
			if d.Text == "" {
				continue
			}
			p.text(d.Text, TextOrigin(d, sc.Viewport), orDefault(d.Color, models.DefaultBrushColor), d.Font, FontSize(d, sc.Viewport))
		default:
			continue
		}
		if sc.ShowOutlines && a.ID == sc.ActiveID {
			if box, ok := Bounds(a, sc.Viewport, r.faces); ok {
				p.selection(box)
			}
		}
	}

	if sc.Stroke != nil {
		p.polyline(sc.Stroke.Points, orDefault(sc.Stroke.Color, models.DefaultBrushColor), sc.Stroke.Size*sc.Viewport.Scale())
	}
	if sc.Text != nil {
		p.liveText(*sc.Text, sc.Viewport)
	}
	return errors.Join(p.errs...)
}

// painter converts device-independent coordinates to raster pixels. Text
// drawing in gg ignores the context transform, so scaling is done here
// rather than with dc.Scale.
type painter struct {
	dc    *gg.Context
	ratio float64
	faces FaceSource
	log   *slog.Logger
	errs  []error
}

func (p *painter) px(v float64) float64 { return v * p.ratio }

func (p *painter) check(err error) {
	if err != nil {
		p.errs = append(p.errs, err)
	}
}

func (p *painter) drawing(d models.DrawingData, v geometry.Viewport) {
	off := d.Offset()
	for _, path := range d.Paths {
		if len(path.Points) < 2 {
			continue
		}
		pts := make([]geometry.Point, len(path.Points))
		for i, pt := range path.Points {
			pts[i] = geometry.ToAbsolute(pt, v, off)
		}
		p.polyline(pts, orDefault(path.Color, models.DefaultBrushColor), StrokeWidth(path, v))
	}
}

func (p *painter) polyline(pts []geometry.Point, color string, width float64) {
	if len(pts) < 2 {
		return
	}
	dc := p.dc
	dc.ClearPath()
	dc.ClearDash()
	dc.SetHexColor(color)
	dc.SetLineWidth(p.px(width))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(p.px(pts[0].X), p.px(pts[0].Y))
	for _, pt := range pts[1:] {
		dc.LineTo(p.px(pt.X), p.px(pt.Y))
	}
	p.check(dc.Stroke())
}

func (p *painter) selection(box geometry.Box) {
	b := box.Inset(SelectionMargin)
	dc := p.dc
	dc.ClearPath()
	dc.SetHexColor(selectionColor)
	dc.SetLineWidth(p.px(selectionWidth))
	dc.SetDash(p.px(selectionDash), p.px(selectionDash))
	dc.DrawRectangle(p.px(b.X), p.px(b.Y), p.px(b.Width), p.px(b.Height))
	p.check(dc.Stroke())
	dc.ClearDash()
}

// text draws s with a drop shadow so it stays legible over any frame. It
// returns the face used, or nil when none could be loaded.
func (p *painter) text(s string, origin geometry.Point, color, family string, fontSize float64) text.Face {
	if fontSize <= 0 {
		return nil
	}
	face, err := p.faces.Face(family, p.px(fontSize))
	if err != nil {
		p.log.Warn("skipping text, font unavailable", "font", family, "error", err)
		return nil
	}
	dc := p.dc
	dc.SetFont(face)
	dc.SetRGBA(0, 0, 0, 0.8)
	dc.DrawString(s, p.px(origin.X+shadowOffset), p.px(origin.Y+shadowOffset))
	dc.SetHexColor(color)
	dc.DrawString(s, p.px(origin.X), p.px(origin.Y))
	return face
}

func (p *painter) liveText(lt LiveText, v geometry.Viewport) {
	fontSize := lt.Size * v.Scale()
	color := orDefault(lt.Color, models.DefaultBrushColor)
	if lt.Value != "" {
		p.text(lt.Value, lt.Anchor, color, lt.Font, fontSize)
	}
	if !lt.CaretVisible || fontSize <= 0 {
		return
	}
	x := lt.Anchor.X + p.faces.TextWidth(lt.Value, lt.Font, fontSize)
	dc := p.dc
	dc.ClearPath()
	dc.SetHexColor(color)
	dc.DrawRectangle(p.px(x), p.px(lt.Anchor.Y-fontSize), p.px(caretWidth), p.px(fontSize))
	p.check(dc.Fill())
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
