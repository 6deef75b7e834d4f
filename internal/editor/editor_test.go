package editor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"overlaytv/internal/fonts"
	"overlaytv/internal/geometry"
	"overlaytv/internal/interaction"
	"overlaytv/internal/models"
	"overlaytv/internal/playback"
	"overlaytv/internal/render"
	"overlaytv/internal/share"
	"overlaytv/internal/timeline"
)

type failingTransport struct{}

func (failingTransport) Save(context.Context, models.Project) (string, error) {
	return "", share.ErrTransport
}

func (failingTransport) Load(context.Context, string) (models.Project, error) {
	return models.Project{}, share.ErrTransport
}

func newEditor(t *testing.T, opts ...Option) (*Editor, *playback.Manual) {
	t.Helper()
	reg := fonts.NewRegistry()
	t.Cleanup(func() { reg.Close() })
	player := playback.NewManual(60)
	e := New(player, render.NewRenderer(reg, nil), opts...)
	t.Cleanup(e.Close)
	e.SetViewport(geometry.NewViewport(400, 200))
	e.NewVideo("https://example.com/v.mp4")
	return e, player
}

func draw(e *Editor, pts ...geometry.Point) {
	e.PointerDown(pts[0])
	for _, p := range pts[1:] {
		e.PointerMove(p)
	}
	e.PointerUp()
}

func TestDrawAndFrame(t *testing.T) {
	e, player := newEditor(t)
	e.SetTool(models.ToolDraw)
	player.Seek(3)
	draw(e, geometry.Point{X: 100, Y: 100}, geometry.Point{X: 300, Y: 100})

	if e.Store().Len() != 1 {
		t.Fatalf("store len = %d", e.Store().Len())
	}
	img, err := e.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if _, _, _, a := img.At(200, 100).RGBA(); a == 0 {
		t.Error("committed stroke not in frame")
	}

	player.Seek(20)
	img, _ = e.Frame()
	if _, _, _, a := img.At(200, 100).RGBA(); a != 0 {
		t.Error("stroke drawn outside its time window")
	}
}

func TestShareOpenRoundTrip(t *testing.T) {
	e, player := newEditor(t, WithShareBase("https://overlay.tv/view"))
	e.SetTool(models.ToolDraw)
	player.Seek(1)
	draw(e, geometry.Point{X: 10, Y: 10}, geometry.Point{X: 50, Y: 50})

	token, link, err := e.Share(context.Background())
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if !strings.HasPrefix(link, "https://overlay.tv/view?d=") {
		t.Errorf("link = %q", link)
	}

	viewer, _ := newEditor(t, ReadOnly())
	if err := viewer.Open(context.Background(), link); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if viewer.VideoURL() != "https://example.com/v.mp4" || viewer.Store().Len() != 1 {
		t.Errorf("opened project: url=%q len=%d", viewer.VideoURL(), viewer.Store().Len())
	}
	if viewer.Scene().ShowOutlines {
		t.Error("read-only view shows outlines")
	}
	if token == "" {
		t.Error("empty token")
	}
}

func TestShareFailureLeavesStateAlone(t *testing.T) {
	e, _ := newEditor(t, WithTransport(failingTransport{}))
	e.Store().Add(models.ToolDraw, models.DrawingData{}, 0, 60)
	before := e.Project()

	if _, _, err := e.Share(context.Background()); !errors.Is(err, share.ErrTransport) {
		t.Errorf("Share err = %v", err)
	}
	if err := e.Open(context.Background(), "tok"); !errors.Is(err, share.ErrTransport) {
		t.Errorf("Open err = %v", err)
	}
	after := e.Project()
	if after.VideoURL != before.VideoURL || len(after.Annotations) != len(before.Annotations) {
		t.Error("failed transport changed the session")
	}
}

func TestOpenInvalidTokenKeepsSession(t *testing.T) {
	e, _ := newEditor(t)
	e.Store().Add(models.ToolDraw, models.DrawingData{}, 0, 60)
	if err := e.Open(context.Background(), "!!!"); !errors.Is(err, share.ErrInvalidToken) {
		t.Errorf("err = %v", err)
	}
	if e.Store().Len() != 1 {
		t.Error("session replaced after a bad token")
	}
}

func TestNewVideoResets(t *testing.T) {
	e, player := newEditor(t)
	e.Store().Add(models.ToolDraw, models.DrawingData{}, 0, 60)
	e.SetTool(models.ToolText)
	e.PointerDown(geometry.Point{X: 50, Y: 50})
	player.Seek(30)

	e.NewVideo("https://example.com/other.mp4")

	if e.Store().Len() != 0 || e.Store().Selected() != "" {
		t.Error("store not cleared")
	}
	if e.Controller().State() != interaction.Idle || e.Controller().Blinking() {
		t.Error("text session survived a new video")
	}
	if player.CurrentTime() != 0 {
		t.Errorf("playhead = %v", player.CurrentTime())
	}
}

func TestTrackDragRejectsMinGap(t *testing.T) {
	e, _ := newEditor(t)
	a := e.Store().Add(models.ToolDraw, models.DrawingData{}, 2, 60)
	e.Store().Update(a.ID, models.Patch{EndTime: models.Ptr(10.0)})

	// 600px track over 60s: 10px per second.
	if !e.BeginTrackDrag(a.ID, timeline.HandleStart, 20, 600) {
		t.Fatal("BeginTrackDrag failed")
	}
	if e.DragTrack(98) {
		t.Error("drag to 9.8 applied")
	}
	e.EndTrackDrag()
	got, _ := e.Store().Get(a.ID)
	if got.StartTime != 2 {
		t.Errorf("StartTime = %v, want 2", got.StartTime)
	}
}

func TestTrackMoveAndNumericEdits(t *testing.T) {
	e, _ := newEditor(t)
	a := e.Store().Add(models.ToolDraw, models.DrawingData{}, 10, 60)

	e.BeginTrackDrag(a.ID, timeline.HandleMove, 100, 600)
	if !e.DragTrack(600) {
		t.Fatal("move rejected")
	}
	got, _ := e.Store().Get(a.ID)
	if got.StartTime != 55 || got.EndTime != 60 {
		t.Errorf("after move: [%v, %v], want [55, 60]", got.StartTime, got.EndTime)
	}
	e.EndTrackDrag()

	if !e.SetStart(a.ID, 50) {
		t.Error("SetStart(50) rejected")
	}
	if e.SetEnd(a.ID, 50.2) {
		t.Error("SetEnd(50.2) accepted")
	}
	if !e.SetEnd(a.ID, 90) {
		t.Error("SetEnd(90) rejected")
	}
	got, _ = e.Store().Get(a.ID)
	if got.StartTime != 50 || got.EndTime != 60 {
		t.Errorf("after edits: [%v, %v], want [50, 60]", got.StartTime, got.EndTime)
	}
}

func TestTrackMoveToEndOfOddDuration(t *testing.T) {
	e, player := newEditor(t)
	player.SetDuration(93.7)
	a := e.Store().Add(models.ToolDraw, models.DrawingData{}, 0, 93.7)
	if !e.Store().Update(a.ID, models.Patch{StartTime: models.Ptr(1.3), EndTime: models.Ptr(11.7)}) {
		t.Fatal("setup retime rejected")
	}

	e.BeginTrackDrag(a.ID, timeline.HandleMove, 0, 1000)
	if !e.DragTrack(1000) {
		t.Fatal("move to the end of the track rejected")
	}
	e.EndTrackDrag()
	got, _ := e.Store().Get(a.ID)
	if got.EndTime != 93.7 || got.StartTime <= 83 {
		t.Errorf("after move: [%v, %v], want end pinned at 93.7", got.StartTime, got.EndTime)
	}
}

func TestSeekTrackAndDelete(t *testing.T) {
	e, player := newEditor(t)
	e.SeekTrack(150, 600)
	if player.CurrentTime() != 15 {
		t.Errorf("playhead = %v, want 15", player.CurrentTime())
	}

	e.Store().Add(models.ToolDraw, models.DrawingData{}, 0, 60)
	if e.CountLabel() != "1 overlay" {
		t.Errorf("CountLabel = %q", e.CountLabel())
	}
	if !e.DeleteSelected() || e.Store().Len() != 0 {
		t.Error("DeleteSelected did not remove the annotation")
	}
	if e.DeleteSelected() {
		t.Error("DeleteSelected with nothing selected reported success")
	}
}

func TestCaretRequestsRepaint(t *testing.T) {
	e, _ := newEditor(t)
	e.SetTool(models.ToolText)
	e.PointerDown(geometry.Point{X: 50, Y: 50})

	select {
	case <-e.Repaints():
	case <-time.After(2 * time.Second):
		t.Fatal("no repaint request while a text session is open")
	}
	e.KeyDown(interaction.KeyEscape)
	if e.Controller().Blinking() {
		t.Error("blinker still running after Escape")
	}
}
