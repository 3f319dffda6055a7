// ABOUTME: Read-only HTTP blob source
// ABOUTME: Fetches assets from <baseURL>/<id> on a static file server or CDN
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSource resolves assets by GET <baseURL>/<id>
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP source. A nil client uses a client with a 30s timeout.
func NewHTTP(baseURL string, client *http.Client) (*HTTPSource, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}, nil
}

func (h *HTTPSource) url(id string) string {
	return h.baseURL + "/" + strings.TrimPrefix(id, "/")
}

// Resolve downloads the asset
func (h *HTTPSource) Resolve(ctx context.Context, id string) (*Blob, error) {
	resp, err := h.do(ctx, http.MethodGet, id)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http read %s: %w", id, unavailable(ctx, err))
	}

	asset := h.asset(id, resp)
	asset.Size = int64(len(data))
	detectFormat(&asset, data)

	return &Blob{Asset: asset, Data: data, Origin: OriginStore}, nil
}

// Stat issues a HEAD request for the asset
func (h *HTTPSource) Stat(ctx context.Context, id string) (*Asset, error) {
	resp, err := h.do(ctx, http.MethodHead, id)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	asset := h.asset(id, resp)
	return &asset, nil
}

func (h *HTTPSource) do(ctx context.Context, method, id string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.url(id), nil)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", id, err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http %s %s: %w", method, id, unavailable(ctx, err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("http %s %s: %w", method, id, ErrNotFound)
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("http %s %s: HTTP %d: %w", method, id, resp.StatusCode, ErrUnavailable)
	}
}

func (h *HTTPSource) asset(id string, resp *http.Response) Asset {
	a := newAsset(id, id)
	a.URL = h.url(id)
	a.Size = resp.ContentLength
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		a.ContentType = ct
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			a.LastModified = t
		}
	}
	return a
}

var _ Source = (*HTTPSource)(nil)
