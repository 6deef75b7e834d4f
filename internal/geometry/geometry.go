// internal/geometry/geometry.go
package geometry

// ReferenceWidth is the viewport width that stroke sizes and font sizes are
// authored against. Visual weight scales by currentWidth / ReferenceWidth.
const ReferenceWidth = 800.0

// Point is a 2-D coordinate. Whether it is relative (0..1) or absolute
// (device-independent pixels) depends on where it came from.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Viewport is the on-screen rectangle of the drawing surface, queried from
// the host at render and hit-test time. Width and Height are in
// device-independent pixels; PixelRatio scales them to the backing raster.
type Viewport struct {
	Width      float64
	Height     float64
	PixelRatio float64
}

// NewViewport returns a viewport with a pixel ratio of 1.
func NewViewport(width, height float64) Viewport {
	return Viewport{Width: width, Height: height, PixelRatio: 1}
}

// Empty reports whether the viewport has no drawable area.
func (v Viewport) Empty() bool {
	return v.Width <= 0 || v.Height <= 0
}

// Ratio returns the pixel ratio, defaulting to 1.
func (v Viewport) Ratio() float64 {
	if v.PixelRatio <= 0 {
		return 1
	}
	return v.PixelRatio
}

// RasterSize is the backing surface size in physical pixels.
func (v Viewport) RasterSize() (int, int) {
	r := v.Ratio()
	return int(v.Width*r + 0.5), int(v.Height*r + 0.5)
}

// Scale is the factor applied to reference-resolution sizes (stroke width,
// font size) so they keep the same visual weight at this viewport width.
func (v Viewport) Scale() float64 {
	if v.Width <= 0 {
		return 1
	}
	return v.Width / ReferenceWidth
}

// ToRelative converts a viewport-local pixel point to fractions of the
// viewport size. An empty viewport maps everything to the origin.
func ToRelative(p Point, v Viewport) Point {
	if v.Empty() {
		return Point{}
	}
	return Point{X: p.X / v.Width, Y: p.Y / v.Height}
}

// ToAbsolute converts a relative point plus a relative offset into viewport
// pixels: relative*dimension + offset*dimension.
func ToAbsolute(p Point, v Viewport, offset Point) Point {
	return Point{
		X: p.X*v.Width + offset.X*v.Width,
		Y: p.Y*v.Height + offset.Y*v.Height,
	}
}

// DeltaToRelative converts a pixel displacement into a relative one.
func DeltaToRelative(d Point, v Viewport) Point {
	return ToRelative(d, v)
}

// Box is an axis-aligned rectangle in viewport pixels.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// Inset grows the box by margin on every side (a negative margin shrinks it).
func (b Box) Inset(margin float64) Box {
	return Box{
		X:      b.X - margin,
		Y:      b.Y - margin,
		Width:  b.Width + 2*margin,
		Height: b.Height + 2*margin,
	}
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.Width &&
		p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// BoundsOf returns the axis-aligned box spanning pts. ok is false when pts
// is empty.
func BoundsOf(pts []Point) (box Box, ok bool) {
	if len(pts) == 0 {
		return Box{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}
