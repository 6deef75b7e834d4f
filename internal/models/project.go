package models

import (
	"time"

	"github.com/google/uuid"
)

// Project is the shareable state: which video, and what is drawn on it.
type Project struct {
	VideoURL    string       `json:"videoUrl" yaml:"videoUrl"`
	Annotations []Annotation `json:"overlays" yaml:"overlays"`
}

// Clone deep-copies the project.
func (p Project) Clone() Project {
	out := Project{VideoURL: p.VideoURL, Annotations: make([]Annotation, len(p.Annotations))}
	for i, a := range p.Annotations {
		out.Annotations[i] = a.Clone()
	}
	return out
}

// ProjectRecord is a project as held by the remote document store.
type ProjectRecord struct {
	ID      uuid.UUID `json:"id"`
	Project Project   `json:"project"`

	// Version is bumped on every save.
	Version int `json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
