package models

// Patch is a partial update. Nil fields are left untouched; payload patches
// only apply when they match the annotation's payload variant, and merge
// field by field so unspecified payload keys survive.
type Patch struct {
	StartTime *float64
	EndTime   *float64
	Drawing   *DrawingPatch
	Text      *TextPatch
}

type DrawingPatch struct {
	Paths   []Path
	OffsetX *float64
	OffsetY *float64
}

type TextPatch struct {
	Text    *string
	X       *float64
	Y       *float64
	Color   *string
	Size    *float64
	Font    *string
	OffsetX *float64
	OffsetY *float64
}

// Ptr is a helper for building patches.
func Ptr[T any](v T) *T { return &v }

// Apply returns a with the patch merged in. a itself is not modified.
func (p Patch) Apply(a Annotation) Annotation {
	out := a.Clone()
	if p.StartTime != nil {
		out.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		out.EndTime = *p.EndTime
	}
	switch d := out.Data.(type) {
	case DrawingData:
		if p.Drawing != nil {
			out.Data = p.Drawing.apply(d)
		}
	case TextData:
		if p.Text != nil {
			out.Data = p.Text.apply(d)
		}
	}
	return out
}

func (p DrawingPatch) apply(d DrawingData) DrawingData {
	if p.Paths != nil {
		d.Paths = DrawingData{Paths: p.Paths}.clone().(DrawingData).Paths
	}
	setFloat(&d.OffsetX, p.OffsetX)
	setFloat(&d.OffsetY, p.OffsetY)
	return d
}

func (p TextPatch) apply(t TextData) TextData {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Font != nil {
		t.Font = *p.Font
	}
	setFloat(&t.X, p.X)
	setFloat(&t.Y, p.Y)
	setFloat(&t.Size, p.Size)
	setFloat(&t.OffsetX, p.OffsetX)
	setFloat(&t.OffsetY, p.OffsetY)
	return t
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// OffsetPatch builds a patch that sets the translation of whichever
// payload a carries.
func OffsetPatch(a Annotation, offsetX, offsetY float64) Patch {
	switch a.Data.(type) {
	case DrawingData:
		return Patch{Drawing: &DrawingPatch{OffsetX: &offsetX, OffsetY: &offsetY}}
	case TextData:
		return Patch{Text: &TextPatch{OffsetX: &offsetX, OffsetY: &offsetY}}
	}
	return Patch{}
}
