// Package fonts maps the toolbar's font families onto embedded faces and
// measures text with them.
package fonts

import (
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// families maps toolbar family names to the embedded font they render with.
var families = map[string][]byte{
	"Syne":       goregular.TTF,
	"Pacifico":   goitalic.TTF,
	"Space Mono": gomono.TTF,
}

const fallbackFamily = "Syne"

// maxCachedFaces bounds the face cache. Sizes come from viewport widths
// and stored documents, so the set of keys is open ended.
const maxCachedFaces = 64

type faceKey struct {
	family string
	size   float64
}

// Registry lazily parses font sources and caches faces by family and size.
// The cache is dropped wholesale once it holds maxCachedFaces entries.
type Registry struct {
	mu      sync.Mutex
	sources map[string]*text.FontSource
	faces   map[faceKey]text.Face
}

func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]*text.FontSource),
		faces:   make(map[faceKey]text.Face),
	}
}

// Resolve returns the family a name renders with. Unknown names fall back
// to the default family.
func Resolve(family string) string {
	if _, ok := families[family]; ok {
		return family
	}
	return fallbackFamily
}

// Face returns a face for family at size pixels, rounded to a whole pixel
// of at least 1.
func (r *Registry) Face(family string, size float64) (text.Face, error) {
	family = Resolve(family)
	size = max(math.Round(size), 1)
	key := faceKey{family: family, size: size}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	src, ok := r.sources[family]
	if !ok {
		var err error
		src, err = text.NewFontSource(families[family])
		if err != nil {
			return nil, fmt.Errorf("load font %q: %w", family, err)
		}
		r.sources[family] = src
	}
	if len(r.faces) >= maxCachedFaces {
		clear(r.faces)
	}
	f := src.Face(size)
	r.faces[key] = f
	return f, nil
}

// TextWidth is the advance width of s in pixels. It returns 0 when the
// face can't be loaded or size is not positive.
func (r *Registry) TextWidth(s, family string, size float64) float64 {
	if s == "" || size <= 0 {
		return 0
	}
	f, err := r.Face(family, size)
	if err != nil {
		return 0
	}
	w, _ := text.Measure(s, f)
	return w
}

// Close releases every parsed font source.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for name, src := range r.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.sources, name)
	}
	clear(r.faces)
	return first
}
