package share

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"overlaytv/internal/models"
)

// maxDecodedSize bounds how much a token may inflate to.
const maxDecodedSize = 8 << 20

// LinkTransport stores the project inside the token: JSON, deflated, then
// base64url without padding so it can sit in a query string.
type LinkTransport struct{}

func (LinkTransport) Save(_ context.Context, p models.Project) (string, error) {
	return EncodeToken(p)
}

func (LinkTransport) Load(_ context.Context, token string) (models.Project, error) {
	return DecodeToken(token)
}

func EncodeToken(p models.Project) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("compress project: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress project: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func DecodeToken(token string) (models.Project, error) {
	var p models.Project
	packed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	zr := flate.NewReader(bytes.NewReader(packed))
	defer zr.Close()

	raw, err := io.ReadAll(io.LimitReader(zr, maxDecodedSize+1))
	if err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if len(raw) > maxDecodedSize {
		return p, fmt.Errorf("%w: decoded project too large", ErrInvalidToken)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return p, nil
}
