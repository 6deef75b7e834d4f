// Package replay drives an editor from a scripted event sequence and
// exports overlay frames.
package replay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"overlaytv/internal/editor"
	"overlaytv/internal/geometry"
	"overlaytv/internal/models"
	"overlaytv/internal/playback"
)

// Script is a recorded editing session.
type Script struct {
	Video    string   `yaml:"video"`
	Duration float64  `yaml:"duration"`
	Viewport Viewport `yaml:"viewport"`
	Steps    []Step   `yaml:"steps"`

	// Frames lists the playback times to export after the steps run.
	Frames []float64 `yaml:"frames"`
}

type Viewport struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	PixelRatio float64 `yaml:"pixelRatio"`
}

// Geometry converts to the engine's viewport.
func (v Viewport) Geometry() geometry.Viewport {
	return geometry.Viewport{Width: v.Width, Height: v.Height, PixelRatio: v.PixelRatio}
}

// Step is one batch of input. Fields apply in declaration order; unset
// fields are skipped.
type Step struct {
	Seek   *float64         `yaml:"seek"`
	Tool   models.Tool      `yaml:"tool"`
	Color  string           `yaml:"color"`
	Size   float64          `yaml:"size"`
	Font   string           `yaml:"font"`
	Down   *geometry.Point  `yaml:"down"`
	Move   []geometry.Point `yaml:"move"`
	Up     bool             `yaml:"up"`
	Type   string           `yaml:"type"`
	Keys   []string         `yaml:"keys"`
	Retime *Retime          `yaml:"retime"`
	Delete bool             `yaml:"delete"`
}

// Retime sets the selected annotation's range by typed-in values.
type Retime struct {
	Start *float64 `yaml:"start"`
	End   *float64 `yaml:"end"`
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("script viewport must be positive, got %vx%v", s.Viewport.Width, s.Viewport.Height)
	}
	for i, st := range s.Steps {
		if st.Tool != "" && !st.Tool.Valid() {
			return fmt.Errorf("step %d: unknown tool %q", i, st.Tool)
		}
	}
	return nil
}

// NewPlayer returns a paused player with the script's duration.
func (s *Script) NewPlayer() *playback.Manual {
	return playback.NewManual(s.Duration)
}

// Run resets e to the script's video and plays every step against it.
func (s *Script) Run(e *editor.Editor) {
	e.NewVideo(s.Video)
	e.SetViewport(s.Viewport.Geometry())
	for _, st := range s.Steps {
		st.apply(e)
	}
}

func (st Step) apply(e *editor.Editor) {
	if st.Seek != nil {
		e.Player().Seek(*st.Seek)
	}
	if st.Tool != "" {
		e.SetTool(st.Tool)
	}
	if st.Color != "" {
		e.SetBrushColor(st.Color)
	}
	if st.Size > 0 {
		e.SetBrushSize(st.Size)
	}
	if st.Font != "" {
		e.SetFont(st.Font)
	}
	if st.Down != nil {
		e.PointerDown(*st.Down)
	}
	for _, p := range st.Move {
		e.PointerMove(p)
	}
	if st.Up {
		e.PointerUp()
	}
	for _, r := range st.Type {
		e.KeyDown(string(r))
	}
	for _, k := range st.Keys {
		e.KeyDown(k)
	}
	if st.Retime != nil {
		id := e.Store().Selected()
		if st.Retime.Start != nil {
			e.SetStart(id, *st.Retime.Start)
		}
		if st.Retime.End != nil {
			e.SetEnd(id, *st.Retime.End)
		}
	}
	if st.Delete {
		e.DeleteSelected()
	}
}
