// Package interaction turns pointer and keyboard events into store
// mutations.
//
// The Controller is an explicit state machine with one current state. All
// transitions run synchronously on the caller's goroutine; the only
// background work is the caret blinker of an open text session, which is
// started on entering TextEditing and stopped on every way out of it.
package interaction

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
	"overlaytv/internal/render"
	"overlaytv/internal/store"
)

type State int

const (
	Idle State = iota
	Drawing
	Dragging
	TextEditing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Dragging:
		return "dragging"
	case TextEditing:
		return "text-editing"
	}
	return "unknown"
}

// Player is the part of the external player the controller reads and
// commands.
type Player interface {
	CurrentTime() float64
	Duration() float64
	Playing() bool
	TogglePlay()
}

// Key names handled while a text session is open. Any other key that is a
// single character is appended.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
)

// Cursor hints for the host.
const (
	CursorDefault   = "default"
	CursorMove      = "move"
	CursorCrosshair = "crosshair"
	CursorText      = "text"
	CursorCell      = "cell"
)

type textSession struct {
	anchor    geometry.Point // absolute baseline-left
	value     []rune
	editingID string
	startedAt time.Time
}

type Controller struct {
	store   *store.Store
	tools   *models.ToolState
	player  Player
	measure render.Measurer

	viewport geometry.Viewport
	state    State

	path     []geometry.Point // absolute, while Drawing
	dragID   string
	dragLast geometry.Point
	text     *textSession

	ctx     context.Context
	blinker *Blinker
	repaint func()
	now     func() time.Time
	log     *slog.Logger
}

type Option func(*Controller)

// WithRepaint sets the callback the caret blinker uses to request a frame.
// It is called from the blinker goroutine.
func WithRepaint(f func()) Option {
	return func(c *Controller) { c.repaint = f }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithContext bounds the lifetime of background work such as the caret
// blinker.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns an idle controller. tools is shared with the toolbar: the
// controller reads it to stamp new annotations and writes it back when an
// existing text enters edit mode.
func New(st *store.Store, tools *models.ToolState, player Player, m render.Measurer, opts ...Option) *Controller {
	c := &Controller{
		store:   st,
		tools:   tools,
		player:  player,
		measure: m,
		ctx:     context.Background(),
		now:     time.Now,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State { return c.state }

// SetViewport records the current drawing-surface rectangle. Pointer
// coordinates are interpreted against it.
func (c *Controller) SetViewport(v geometry.Viewport) { c.viewport = v }

func (c *Controller) Viewport() geometry.Viewport { return c.viewport }

// EditingID is the annotation under an open text session, or "".
func (c *Controller) EditingID() string {
	if c.text == nil {
		return ""
	}
	return c.text.editingID
}

// SessionValue is the text typed so far in an open session.
func (c *Controller) SessionValue() string {
	if c.text == nil {
		return ""
	}
	return string(c.text.value)
}

// PointerDown dispatches on the active tool. A press while a text session
// is open discards that session first.
func (c *Controller) PointerDown(p geometry.Point) {
	if c.state != Idle {
		c.Cancel()
	}
	switch c.tools.Tool {
	case models.ToolSelect:
		c.selectAt(p)
	case models.ToolDraw:
		if c.player.Playing() {
			return
		}
		c.state = Drawing
		c.path = []geometry.Point{p}
	case models.ToolText:
		if c.player.Playing() {
			return
		}
		c.openText(textSession{anchor: p})
	case models.ToolErase:
		if c.player.Playing() {
			return
		}
		if hit, ok := c.hitTest(p); ok {
			c.store.Remove(hit.ID)
			c.log.Debug("annotation erased", "id", hit.ID)
		}
	}
}

func (c *Controller) selectAt(p geometry.Point) {
	hit, ok := c.hitTest(p)
	if !ok {
		c.store.Select("")
		c.player.TogglePlay()
		return
	}
	c.store.Select(hit.ID)
	switch d := hit.Data.(type) {
	case models.TextData:
		c.tools.SyncFromText(d)
		c.openText(textSession{
			anchor:    render.TextOrigin(d, c.viewport),
			value:     []rune(d.Text),
			editingID: hit.ID,
		})
	case models.DrawingData:
		c.state = Dragging
		c.dragID = hit.ID
		c.dragLast = p
	}
}

func (c *Controller) hitTest(p geometry.Point) (models.Annotation, bool) {
	visible := c.store.VisibleAt(c.player.CurrentTime())
	return render.HitTest(visible, p, c.viewport, c.measure)
}

func (c *Controller) PointerMove(p geometry.Point) {
	switch c.state {
	case Drawing:
		c.path = append(c.path, p)
	case Dragging:
		cur, ok := c.store.Get(c.dragID)
		if !ok || cur.Data == nil {
			c.endDrag()
			return
		}
		delta := geometry.DeltaToRelative(p.Sub(c.dragLast), c.viewport)
		off := cur.Data.Offset().Add(delta)
		c.store.Update(c.dragID, models.OffsetPatch(cur, off.X, off.Y))
		c.dragLast = p
	}
}

// PointerUp ends a drag, or commits a captured stroke of at least two
// points. Shorter strokes are dropped as misclicks.
func (c *Controller) PointerUp() {
	switch c.state {
	case Dragging:
		c.endDrag()
	case Drawing:
		pts := c.path
		c.path = nil
		c.state = Idle
		if len(pts) < 2 || c.viewport.Empty() {
			return
		}
		rel := make([]geometry.Point, len(pts))
		for i, pt := range pts {
			rel[i] = geometry.ToRelative(pt, c.viewport)
		}
		a := c.store.Add(models.ToolDraw, models.DrawingData{
			Paths: []models.Path{{Points: rel, Color: c.tools.BrushColor, Size: c.tools.BrushSize}},
		}, c.player.CurrentTime(), c.player.Duration())
		c.log.Debug("drawing committed", "id", a.ID, "points", len(rel))
	}
}

// PointerLeave is treated as a release.
func (c *Controller) PointerLeave() { c.PointerUp() }

func (c *Controller) endDrag() {
	c.state = Idle
	c.dragID = ""
}

// KeyDown handles a key. Escape cancels any in-flight input; other keys
// only matter while a text session is open. It reports whether the key
// was consumed.
func (c *Controller) KeyDown(key string) bool {
	if key == KeyEscape && c.state != Idle {
		c.Cancel()
		return true
	}
	if c.state != TextEditing || c.text == nil {
		return false
	}
	switch key {
	case KeyEnter:
		c.commitText()
	case KeyBackspace:
		if n := len(c.text.value); n > 0 {
			c.text.value = c.text.value[:n-1]
		}
	default:
		if utf8.RuneCountInString(key) != 1 {
			return false
		}
		c.text.value = append(c.text.value, []rune(key)...)
	}
	return true
}

func (c *Controller) commitText() {
	s := c.closeText()
	if s == nil {
		return
	}
	value := string(s.value)
	if strings.TrimSpace(value) == "" {
		return
	}
	if s.editingID != "" {
		c.store.Update(s.editingID, models.Patch{Text: &models.TextPatch{
			Text:  models.Ptr(value),
			Color: models.Ptr(c.tools.BrushColor),
			Size:  models.Ptr(c.tools.TextSize()),
			Font:  models.Ptr(c.tools.TextFont),
		}})
		return
	}
	if c.viewport.Empty() {
		return
	}
	anchor := geometry.ToRelative(s.anchor, c.viewport)
	a := c.store.Add(models.ToolText, models.TextData{
		Text:  value,
		X:     anchor.X,
		Y:     anchor.Y,
		Color: c.tools.BrushColor,
		Size:  c.tools.TextSize(),
		Font:  c.tools.TextFont,
	}, c.player.CurrentTime(), c.player.Duration())
	c.log.Debug("text committed", "id", a.ID)
}

func (c *Controller) openText(s textSession) {
	s.startedAt = c.now()
	c.text = &s
	c.state = TextEditing
	c.blinker = StartBlinker(c.ctx, BlinkInterval, c.repaint)
}

func (c *Controller) closeText() *textSession {
	s := c.text
	c.text = nil
	c.blinker.Stop()
	c.blinker = nil
	c.state = Idle
	return s
}

// SetTool switches the active tool, discarding any uncommitted input.
func (c *Controller) SetTool(t models.Tool) {
	if !t.Valid() {
		return
	}
	c.Cancel()
	c.tools.Tool = t
}

// Cancel abandons whatever is in flight. Nothing partial is stored.
func (c *Controller) Cancel() {
	switch c.state {
	case Drawing:
		c.path = nil
		c.state = Idle
	case Dragging:
		c.endDrag()
	case TextEditing:
		c.closeText()
	}
}

// Close cancels in-flight input and releases the caret timer.
func (c *Controller) Close() { c.Cancel() }

// Blinking reports whether a caret timer is running.
func (c *Controller) Blinking() bool { return c.blinker != nil }

func (c *Controller) Cursor() string {
	switch c.state {
	case Dragging:
		return CursorMove
	case Drawing:
		return CursorCrosshair
	case TextEditing:
		return CursorText
	}
	switch c.tools.Tool {
	case models.ToolDraw:
		return CursorCrosshair
	case models.ToolText:
		return CursorText
	case models.ToolErase:
		return CursorCell
	}
	return CursorDefault
}

// Decorate adds the in-progress stroke or text session to a scene.
func (c *Controller) Decorate(sc *render.Scene) {
	switch c.state {
	case Drawing:
		sc.Stroke = &render.LiveStroke{
			Points: append([]geometry.Point(nil), c.path...),
			Color:  c.tools.BrushColor,
			Size:   c.tools.BrushSize,
		}
	case TextEditing:
		if c.text == nil {
			return
		}
		sc.EditingID = c.text.editingID
		sc.Text = &render.LiveText{
			Anchor:       c.text.anchor,
			Value:        string(c.text.value),
			Color:        c.tools.BrushColor,
			Size:         c.tools.TextSize(),
			Font:         c.tools.TextFont,
			CaretVisible: CaretVisible(c.now().Sub(c.text.startedAt)),
		}
	}
}
