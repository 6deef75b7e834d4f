package models

// Tool is the active editing tool.
type Tool string

const (
	ToolSelect Tool = "select"
	ToolDraw   Tool = "draw"
	ToolText   Tool = "text"
	ToolErase  Tool = "erase"
)

// Valid reports whether t is a known tool.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolDraw, ToolText, ToolErase:
		return true
	}
	return false
}

// KindForTool returns the annotation kind a new object created with tool
// gets tagged with.
func KindForTool(t Tool) Kind {
	if t == ToolText {
		return KindText
	}
	return KindDrawing
}

const (
	DefaultBrushColor = "#ff3366"
	DefaultBrushSize  = 4.0
	MinBrushSize      = 1.0
	MaxBrushSize      = 20.0
	DefaultFont       = "Syne"

	// TextSizeFactor converts a brush size into a reference-resolution
	// font size, and back when an existing text enters edit mode.
	TextSizeFactor = 6.0

	// Render fallbacks for payload fields that are absent.
	DefaultStrokeSize = 4.0
	DefaultTextSize   = 24.0
)

// Palette is the set of colours offered by the toolbar.
var Palette = []string{"#ff3366", "#00ffaa", "#ffaa00", "#3366ff", "#ffffff", "#ffff00"}

// Fonts is the set of font families offered by the toolbar.
var Fonts = []string{"Syne", "Pacifico", "Space Mono"}

// ToolState is the shared toolbar state. It is not persisted per
// annotation; it is stamped into new annotations and written back when an
// existing text annotation enters edit mode.
type ToolState struct {
	Tool       Tool
	BrushColor string
	BrushSize  float64
	TextFont   string
}

// DefaultToolState matches the toolbar on first load.
func DefaultToolState() *ToolState {
	return &ToolState{
		Tool:       ToolSelect,
		BrushColor: DefaultBrushColor,
		BrushSize:  DefaultBrushSize,
		TextFont:   DefaultFont,
	}
}

// TextSize is the font size a text committed with the current brush gets.
func (s *ToolState) TextSize() float64 {
	return s.BrushSize * TextSizeFactor
}

// SetBrushSize clamps size into the toolbar's range.
func (s *ToolState) SetBrushSize(size float64) {
	s.BrushSize = min(max(size, MinBrushSize), MaxBrushSize)
}

// SyncFromText copies a text annotation's style into the toolbar. Absent
// fields leave the toolbar value alone.
func (s *ToolState) SyncFromText(t TextData) {
	if t.Color != "" {
		s.BrushColor = t.Color
	}
	if t.Size > 0 {
		s.SetBrushSize(t.Size / TextSizeFactor)
	}
	if t.Font != "" {
		s.TextFont = t.Font
	}
}

const (
	// DefaultWindow is how long a new annotation stays on screen.
	DefaultWindow = 5.0

	// MinGap is the shortest time range an annotation may be resized to.
	MinGap = 0.5
)
