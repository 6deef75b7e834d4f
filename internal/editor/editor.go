// Package editor wires one annotation session together: the store, the
// interaction controller, the timeline, the renderer, the player and a
// share transport. Hosts feed it input events and ask it for frames.
package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"overlaytv/internal/geometry"
	"overlaytv/internal/interaction"
	"overlaytv/internal/models"
	"overlaytv/internal/playback"
	"overlaytv/internal/render"
	"overlaytv/internal/share"
	"overlaytv/internal/store"
	"overlaytv/internal/timeline"
)

// Editor is not safe for concurrent use. Input events, time updates and
// frame requests all come from the host's event loop.
type Editor struct {
	store     *store.Store
	tools     *models.ToolState
	player    playback.Source
	ctrl      *interaction.Controller
	renderer  *render.Renderer
	transport share.Transport

	videoURL     string
	shareBase    string
	showOutlines bool
	trackDrag    *timeline.Drag

	repaint chan struct{}
	cancel  context.CancelFunc
	log     *slog.Logger
}

type config struct {
	transport share.Transport
	shareBase string
	readOnly  bool
	storeOpts []store.Option
	log       *slog.Logger
}

type Option func(*config)

func WithTransport(t share.Transport) Option {
	return func(c *config) { c.transport = t }
}

// WithShareBase sets the page URL share links point at.
func WithShareBase(base string) Option {
	return func(c *config) { c.shareBase = base }
}

// ReadOnly suppresses selection outlines, as in a shared view.
func ReadOnly() Option {
	return func(c *config) { c.readOnly = true }
}

func WithStoreOptions(opts ...store.Option) Option {
	return func(c *config) { c.storeOpts = append(c.storeOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// New builds an editor around player. The renderer also supplies text
// measurement for hit-testing.
func New(player playback.Source, renderer *render.Renderer, opts ...Option) *Editor {
	cfg := config{transport: share.LinkTransport{}, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Editor{
		store:        store.New(cfg.storeOpts...),
		tools:        models.DefaultToolState(),
		player:       player,
		renderer:     renderer,
		transport:    cfg.transport,
		shareBase:    cfg.shareBase,
		showOutlines: !cfg.readOnly,
		repaint:      make(chan struct{}, 1),
		cancel:       cancel,
		log:          cfg.log,
	}
	e.ctrl = interaction.New(e.store, e.tools, player, renderer.Measurer(),
		interaction.WithContext(ctx),
		interaction.WithRepaint(e.requestRepaint),
		interaction.WithLogger(cfg.log),
	)
	return e
}

// Repaints delivers a value whenever the caret blinker wants a new frame.
// Sends never block; bursts collapse into one pending value.
func (e *Editor) Repaints() <-chan struct{} { return e.repaint }

func (e *Editor) requestRepaint() {
	select {
	case e.repaint <- struct{}{}:
	default:
	}
}

// Close abandons in-flight input and stops background work.
func (e *Editor) Close() {
	e.ctrl.Close()
	e.cancel()
}

func (e *Editor) Store() *store.Store                 { return e.store }
func (e *Editor) Tools() *models.ToolState            { return e.tools }
func (e *Editor) Controller() *interaction.Controller { return e.ctrl }
func (e *Editor) Player() playback.Source             { return e.player }
func (e *Editor) VideoURL() string                    { return e.videoURL }

func (e *Editor) SetViewport(v geometry.Viewport) { e.ctrl.SetViewport(v) }

// SyncDuration copies the player's duration into the store once metadata
// has loaded.
func (e *Editor) SyncDuration() { e.store.SetDuration(e.player.Duration()) }

func (e *Editor) PointerDown(p geometry.Point) { e.SyncDuration(); e.ctrl.PointerDown(p) }
func (e *Editor) PointerMove(p geometry.Point) { e.ctrl.PointerMove(p) }
func (e *Editor) PointerUp()                   { e.ctrl.PointerUp() }
func (e *Editor) PointerLeave()                { e.ctrl.PointerLeave() }
func (e *Editor) KeyDown(key string) bool      { return e.ctrl.KeyDown(key) }
func (e *Editor) SetTool(t models.Tool)        { e.ctrl.SetTool(t) }

func (e *Editor) SetBrushColor(c string) { e.tools.BrushColor = c }
func (e *Editor) SetBrushSize(s float64) { e.tools.SetBrushSize(s) }
func (e *Editor) SetFont(f string)       { e.tools.TextFont = f }

// Scene describes the current frame.
func (e *Editor) Scene() render.Scene {
	sc := render.Scene{
		Viewport:     e.ctrl.Viewport(),
		Annotations:  e.store.VisibleAt(e.player.CurrentTime()),
		ActiveID:     e.store.Selected(),
		ShowOutlines: e.showOutlines,
	}
	e.ctrl.Decorate(&sc)
	return sc
}

// Frame renders the current overlay layer.
func (e *Editor) Frame() (image.Image, error) {
	return e.renderer.Image(e.Scene())
}

func (e *Editor) WriteFrame(w io.Writer) error {
	return e.renderer.WritePNG(w, e.Scene())
}

// Project snapshots the shareable state.
func (e *Editor) Project() models.Project {
	return models.Project{VideoURL: e.videoURL, Annotations: e.store.All()}
}

// LoadProject replaces the session's contents.
func (e *Editor) LoadProject(p models.Project) {
	e.ctrl.Cancel()
	e.trackDrag = nil
	e.videoURL = p.VideoURL
	e.store.Load(p.Annotations)
	e.SyncDuration()
}

// NewVideo drops every annotation and in-flight session and points the
// session at url.
func (e *Editor) NewVideo(url string) {
	e.ctrl.Cancel()
	e.trackDrag = nil
	e.store.Clear()
	e.videoURL = url
	e.player.Seek(0)
	e.log.Info("new video loaded", "url", url)
}

// Share saves the project and returns its token and link. On failure the
// session is untouched and the call may be retried.
func (e *Editor) Share(ctx context.Context) (token, link string, err error) {
	if e.videoURL == "" {
		return "", "", errors.New("share: no video loaded")
	}
	token, err = e.transport.Save(ctx, e.Project())
	if err != nil {
		e.log.Warn("share failed", "error", err)
		return "", "", fmt.Errorf("share: %w", err)
	}
	link = token
	if e.shareBase != "" {
		if link, err = share.Link(e.shareBase, token); err != nil {
			return "", "", err
		}
	}
	e.log.Info("project shared", "annotations", e.store.Len())
	return token, link, nil
}

// Open loads a shared project by token or link. The current session is
// replaced only when loading succeeds.
func (e *Editor) Open(ctx context.Context, tokenOrLink string) error {
	token, err := share.TokenFromLink(tokenOrLink)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	p, err := e.transport.Load(ctx, token)
	if err != nil {
		e.log.Warn("open failed", "error", err)
		return fmt.Errorf("open: %w", err)
	}
	e.LoadProject(p)
	return nil
}
