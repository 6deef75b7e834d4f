// Package share saves and restores a project through an opaque token.
//
// Two transports exist: LinkTransport packs the whole project into the
// token itself, RemoteTransport stores it in the document service and uses
// the project id as the token. Callers only see Transport.
package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"overlaytv/internal/models"
)

var (
	// ErrInvalidToken means the token could not be decoded or names
	// nothing.
	ErrInvalidToken = errors.New("invalid share token")

	// ErrTransport means the save or load failed in a way that may succeed
	// on retry.
	ErrTransport = errors.New("share transport failed")
)

// TokenParam is the query parameter a share link carries its token in.
const TokenParam = "d"

type Transport interface {
	Save(ctx context.Context, p models.Project) (string, error)
	Load(ctx context.Context, token string) (models.Project, error)
}

// Link builds <base>?d=<token>, keeping any other query parameters base
// already has.
func Link(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("share link base %q: %w", base, err)
	}
	q := u.Query()
	q.Set(TokenParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// TokenFromLink extracts the token from a share link. A bare token is
// returned as is.
func TokenFromLink(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidToken
	}
	if !strings.Contains(raw, "?") && !strings.Contains(raw, "://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	tok := u.Query().Get(TokenParam)
	if tok == "" {
		return "", fmt.Errorf("%w: link has no %q parameter", ErrInvalidToken, TokenParam)
	}
	return tok, nil
}

// QRCode renders link as a square PNG of size pixels.
func QRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
