package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"unicode/utf8"

	"overlaytv/internal/models"
)

const (
	MaxVideoURLLength = 2048
	MaxAnnotations    = 500
	MaxPointsPerItem  = 10000
	MaxTextLength     = 500 // runes

	MaxPreviewSide = 4096
	MaxQRSize      = 2048
)

var (
	ErrVideoURLRequired   = errors.New("videoUrl is required")
	ErrVideoURLTooLong    = errors.New("videoUrl too long - maximum 2048 characters")
	ErrInvalidVideoURL    = errors.New("videoUrl must be an absolute http or https URL")
	ErrTooManyAnnotations = errors.New("too many overlays - maximum 500 allowed")
	ErrTooManyPoints      = errors.New("drawing too detailed - maximum 10000 points per overlay")
	ErrTextTooLong        = errors.New("text too long - maximum 500 characters")
	ErrInvalidTime        = errors.New("startTime and endTime must be finite and non-negative")
	ErrInvalidSize        = errors.New("size out of range")
)

// ValidateProject checks a project before it is stored. Annotation-level
// failures are wrapped with the offending index.
func ValidateProject(p models.Project) error {
	if err := ValidateVideoURL(p.VideoURL); err != nil {
		return err
	}
	if len(p.Annotations) > MaxAnnotations {
		return ErrTooManyAnnotations
	}
	for i, a := range p.Annotations {
		if err := validateAnnotation(a); err != nil {
			return fmt.Errorf("overlay %d: %w", i, err)
		}
	}
	return nil
}

func ValidateVideoURL(raw string) error {
	if raw == "" {
		return ErrVideoURLRequired
	}
	if len(raw) > MaxVideoURLLength {
		return ErrVideoURLTooLong
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidVideoURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidVideoURL
	}
	return nil
}

func validateAnnotation(a models.Annotation) error {
	if !validTime(a.StartTime) || !validTime(a.EndTime) {
		return ErrInvalidTime
	}
	switch d := a.Data.(type) {
	case models.DrawingData:
		n := 0
		for _, p := range d.Paths {
			n += len(p.Points)
		}
		if n > MaxPointsPerItem {
			return ErrTooManyPoints
		}
	case models.TextData:
		if utf8.RuneCountInString(d.Text) > MaxTextLength {
			return ErrTextTooLong
		}
	}
	return nil
}

func validTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0) && t >= 0
}

// ValidatePreviewSize bounds a requested preview raster.
func ValidatePreviewSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxPreviewSide || height > MaxPreviewSide {
		return fmt.Errorf("%w: preview must be between 1x1 and %dx%d", ErrInvalidSize, MaxPreviewSide, MaxPreviewSide)
	}
	return nil
}

func ValidateQRSize(size int) error {
	if size <= 0 || size > MaxQRSize {
		return fmt.Errorf("%w: qr size must be between 1 and %d", ErrInvalidSize, MaxQRSize)
	}
	return nil
}
