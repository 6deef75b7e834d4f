package share

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"overlaytv/internal/models"
)

const defaultHTTPTimeout = 15 * time.Second

// RemoteTransport keeps projects in the document service. The token is the
// project id.
type RemoteTransport struct {
	baseURL    string
	httpClient *http.Client
}

type RemoteOption func(*RemoteTransport)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(t *RemoteTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// NewRemoteTransport talks to the service rooted at baseURL, for example
// http://localhost:8080.
func NewRemoteTransport(baseURL string, opts ...RemoteOption) *RemoteTransport {
	t := &RemoteTransport{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (t *RemoteTransport) Save(ctx context.Context, p models.Project) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := t.do(ctx, http.MethodPost, "/api/v1/projects", body, &out); err != nil {
		return "", fmt.Errorf("%w: save: %w", ErrTransport, err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("%w: save: response has no id", ErrTransport)
	}
	return out.ID, nil
}

func (t *RemoteTransport) Load(ctx context.Context, token string) (models.Project, error) {
	if _, err := uuid.Parse(token); err != nil {
		return models.Project{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var rec models.ProjectRecord
	err := t.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(token), nil, &rec)
	if err != nil {
		var se *httpStatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return models.Project{}, fmt.Errorf("%w: project %s not found", ErrInvalidToken, token)
		}
		return models.Project{}, fmt.Errorf("%w: load: %w", ErrTransport, err)
	}
	return rec.Project, nil
}

func (t *RemoteTransport) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &httpStatusError{StatusCode: resp.StatusCode, Body: string(msg)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
