package models

import (
	"encoding/json"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"overlaytv/internal/geometry"
)

// A document as produced by the browser editor's share link.
const browserDocument = `{
  "videoUrl": "https://youtube.com/watch?v=abc",
  "overlays": [
    {"id": "1712000000000", "startTime": 1.5, "endTime": 6.5, "type": "drawing",
     "data": {"paths": [{"points": [{"x": 0.1, "y": 0.1}, {"x": 0.2, "y": 0.25}], "color": "#ff3366", "size": 4}],
              "offsetX": 0.05, "offsetY": 0}},
    {"id": "1712000000001", "startTime": 2, "endTime": 7, "type": "text",
     "data": {"text": "Hi", "x": 0.5, "y": 0.5, "color": "#ffffff", "size": 24, "font": "Pacifico",
              "offsetX": 0, "offsetY": 0}},
    {"id": "1712000000002", "startTime": 3, "endTime": 4, "type": "text"}
  ]
}`

func TestDecodeBrowserDocument(t *testing.T) {
	var p Project
	if err := json.Unmarshal([]byte(browserDocument), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.VideoURL != "https://youtube.com/watch?v=abc" {
		t.Errorf("VideoURL = %q", p.VideoURL)
	}
	if len(p.Annotations) != 3 {
		t.Fatalf("got %d annotations, want 3", len(p.Annotations))
	}

	d, ok := p.Annotations[0].Drawing()
	if !ok {
		t.Fatalf("first annotation data = %T, want DrawingData", p.Annotations[0].Data)
	}
	if len(d.Paths) != 1 || len(d.Paths[0].Points) != 2 || d.OffsetX != 0.05 {
		t.Errorf("drawing payload decoded wrong: %+v", d)
	}

	txt, ok := p.Annotations[1].Text()
	if !ok || txt.Text != "Hi" || txt.Font != "Pacifico" {
		t.Errorf("text payload decoded wrong: %+v", p.Annotations[1].Data)
	}

	if p.Annotations[2].Data != nil {
		t.Errorf("annotation without data should have nil payload, got %T", p.Annotations[2].Data)
	}
}

func TestBadPayloadKeepsRestOfDocument(t *testing.T) {
	const doc = `{
  "videoUrl": "https://example.com/v.mp4",
  "overlays": [
    {"id": "good", "startTime": 0, "endTime": 5, "type": "text",
     "data": {"text": "Hi", "x": 0.5, "y": 0.5, "size": 24}},
    {"id": "bad", "startTime": 1, "endTime": 6, "type": "drawing",
     "data": {"paths": [{"points": [{"x": 0.1, "y": 0.1}], "color": "#fff", "size": "4"}]}},
    {"id": "partial", "startTime": 2, "endTime": 7, "type": "drawing",
     "data": {"paths": [{"points": [{"x": 0.1}, {"y": 0.2}]}]}}
  ]
}`
	var p Project
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(p.Annotations) != 3 {
		t.Fatalf("got %d annotations, want 3", len(p.Annotations))
	}
	if txt, ok := p.Annotations[0].Text(); !ok || txt.Text != "Hi" {
		t.Errorf("valid text lost: %+v", p.Annotations[0])
	}
	bad := p.Annotations[1]
	if bad.ID != "bad" || bad.StartTime != 1 || bad.EndTime != 6 || bad.Data != nil {
		t.Errorf("bad payload should decode to a nil payload: %+v", bad)
	}
	d, ok := p.Annotations[2].Drawing()
	if !ok || len(d.Paths[0].Points) != 2 || d.Paths[0].Points[0].Y != 0 || d.Paths[0].Size != 0 {
		t.Errorf("absent numeric fields should default to 0: %+v", p.Annotations[2].Data)
	}
}

func TestBadYAMLPayloadKeepsRestOfDocument(t *testing.T) {
	src := `
videoUrl: https://example.com/v.mp4
overlays:
  - id: bad
    startTime: 0
    endTime: 5
    type: text
    data: {text: hi, size: [1, 2]}
  - id: good
    startTime: 1
    endTime: 3
    type: text
    data: {text: hello}
`
	var p Project
	if err := yaml.Unmarshal([]byte(src), &p); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(p.Annotations) != 2 || p.Annotations[0].Data != nil {
		t.Fatalf("annotations = %+v", p.Annotations)
	}
	if txt, ok := p.Annotations[1].Text(); !ok || txt.Text != "hello" {
		t.Errorf("valid text lost: %+v", p.Annotations[1])
	}
}

func TestEncodeKeepsBrowserFieldNames(t *testing.T) {
	a := Annotation{
		ID: "x", StartTime: 1, EndTime: 2, Type: KindText,
		Data: TextData{Text: "yo", X: 0.1, Y: 0.2, Color: "#fff", Size: 24, Font: "Syne"},
	}
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(b, &generic); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"id", "startTime", "endTime", "type", "data"} {
		if _, ok := generic[key]; !ok {
			t.Errorf("encoded annotation is missing %q: %s", key, b)
		}
	}
	data := generic["data"].(map[string]any)
	for _, key := range []string{"text", "x", "y", "color", "size", "font", "offsetX", "offsetY"} {
		if _, ok := data[key]; !ok {
			t.Errorf("encoded text data is missing %q: %s", key, b)
		}
	}
}

func TestYAMLProjectFile(t *testing.T) {
	src := `
videoUrl: https://example.com/v.mp4
overlays:
  - id: a
    startTime: 0
    endTime: 5
    type: drawing
    data:
      paths:
        - points: [{x: 0.1, y: 0.1}, {x: 0.3, y: 0.3}]
          color: "#00ffaa"
          size: 6
  - id: b
    startTime: 1
    endTime: 3
    type: text
    data: {text: hello, x: 0.2, y: 0.8, color: "#ffff00", size: 30, font: Space Mono}
`
	var p Project
	if err := yaml.Unmarshal([]byte(src), &p); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(p.Annotations) != 2 {
		t.Fatalf("got %d annotations, want 2", len(p.Annotations))
	}
	d, ok := p.Annotations[0].Drawing()
	if !ok || d.Paths[0].Color != "#00ffaa" || d.Paths[0].Size != 6 {
		t.Errorf("drawing decoded wrong: %+v", p.Annotations[0].Data)
	}
	txt, ok := p.Annotations[1].Text()
	if !ok || txt.Font != "Space Mono" {
		t.Errorf("text decoded wrong: %+v", p.Annotations[1].Data)
	}

	out, err := yaml.Marshal(p)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	var again Project
	if err := yaml.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-decode: %v\n%s", err, out)
	}
	if !reflect.DeepEqual(p, again) {
		t.Errorf("YAML re-encode changed the project:\n%s", out)
	}
}

func TestPatchMergesPayloadFields(t *testing.T) {
	a := Annotation{
		ID: "t", StartTime: 1, EndTime: 6, Type: KindText,
		Data: TextData{Text: "old", X: 0.4, Y: 0.6, Color: "#fff", Size: 24, Font: "Syne", OffsetX: 0.1},
	}
	got := Patch{Text: &TextPatch{Text: Ptr("new"), Color: Ptr("#000")}}.Apply(a)

	txt, _ := got.Text()
	want := TextData{Text: "new", X: 0.4, Y: 0.6, Color: "#000", Size: 24, Font: "Syne", OffsetX: 0.1}
	if txt != want {
		t.Errorf("Apply = %+v, want %+v", txt, want)
	}
	if orig, _ := a.Text(); orig.Text != "old" {
		t.Error("Apply modified its input")
	}
}

func TestPatchIgnoresMismatchedVariant(t *testing.T) {
	a := Annotation{ID: "d", StartTime: 0, EndTime: 5, Type: KindDrawing, Data: DrawingData{OffsetX: 0.2}}
	got := Patch{Text: &TextPatch{Text: Ptr("nope")}}.Apply(a)
	if !reflect.DeepEqual(got, a) {
		t.Errorf("text patch on a drawing changed it: %+v", got)
	}
}

func TestEmptyPatchIsIdentity(t *testing.T) {
	a := Annotation{
		ID: "d", StartTime: 2, EndTime: 7, Type: KindDrawing,
		Data: DrawingData{Paths: []Path{{Points: nil, Color: "#fff", Size: 3}}, OffsetY: -0.1},
	}
	before, _ := json.Marshal(a)
	after, _ := json.Marshal(Patch{}.Apply(a))
	if string(before) != string(after) {
		t.Errorf("empty patch changed annotation:\n%s\n%s", before, after)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	a := Annotation{ID: "d", Type: KindDrawing, Data: DrawingData{Paths: []Path{{Points: []geometry.Point{{X: 1, Y: 1}}}}}}
	c := a.Clone()
	d, _ := c.Drawing()
	d.Paths[0].Points[0].X = 99

	orig, _ := a.Drawing()
	if orig.Paths[0].Points[0].X != 1 {
		t.Error("Clone shares point storage with the original")
	}
}

func TestToolStateSyncFromText(t *testing.T) {
	s := DefaultToolState()
	s.SyncFromText(TextData{Color: "#00ffaa", Size: 48, Font: "Space Mono"})
	if s.BrushColor != "#00ffaa" || s.BrushSize != 8 || s.TextFont != "Space Mono" {
		t.Errorf("SyncFromText = %+v", s)
	}
	if s.TextSize() != 48 {
		t.Errorf("TextSize = %v, want 48", s.TextSize())
	}

	s.SyncFromText(TextData{})
	if s.BrushColor != "#00ffaa" || s.BrushSize != 8 {
		t.Errorf("empty payload should not reset the toolbar: %+v", s)
	}
}

func TestToolStateSyncFromTextClampsBrush(t *testing.T) {
	tests := []struct {
		size, want float64
	}{
		{200, MaxBrushSize},
		{3, MinBrushSize},
		{60, 10},
	}
	for _, tt := range tests {
		s := DefaultToolState()
		s.SyncFromText(TextData{Size: tt.size})
		if s.BrushSize != tt.want {
			t.Errorf("SyncFromText(size %v): BrushSize = %v, want %v", tt.size, s.BrushSize, tt.want)
		}
	}
}

func TestKindForTool(t *testing.T) {
	tests := map[Tool]Kind{
		ToolText:   KindText,
		ToolDraw:   KindDrawing,
		ToolSelect: KindDrawing,
	}
	for tool, want := range tests {
		if got := KindForTool(tool); got != want {
			t.Errorf("KindForTool(%s) = %s, want %s", tool, got, want)
		}
	}
}
