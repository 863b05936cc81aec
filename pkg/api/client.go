package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"tableflip.dev/dash/pkg/habit"
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/widget"
)

// RequestTimeout bounds every remote call.
const RequestTimeout = 10 * time.Second

// Client implements Service over HTTP with an opaque bearer credential.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ Service = (*Client)(nil)

// New builds a client from config. The bearer token is read from the
// configured token file and attached by an oauth2 transport; the client
// never inspects or refreshes it.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", cfg.BaseURL, err)
	}
	raw, err := os.ReadFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("api: read token: %w", err)
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: strings.TrimSpace(string(raw)),
	})
	return &Client{
		base: base,
		http: oauth2.NewClient(context.Background(), src),
	}, nil
}

// NewWithHTTPClient builds a client around a caller-supplied HTTP client.
// Intended for tests against httptest servers.
func NewWithHTTPClient(baseURL string, hc *http.Client) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: base, http: hc}, nil
}

// Widgets implements Service.
func (c *Client) Widgets(ctx context.Context) ([]widget.Widget, error) {
	var out []widget.Widget
	if err := c.do(ctx, http.MethodGet, "/api/widgets", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

// Sections implements Service.
func (c *Client) Sections(ctx context.Context) ([]section.Section, error) {
	var out []section.Section
	if err := c.do(ctx, http.MethodGet, "/api/sections", nil, &out); err != nil {
		return nil, err
	}
	return section.SortByPosition(out), nil
}

// SetSectionPositions implements Service.
func (c *Client) SetSectionPositions(ctx context.Context, placements []section.Placement) error {
	return c.do(ctx, http.MethodPut, "/api/sections/positions", placements, nil)
}

// WidgetData implements Service.
func (c *Client) WidgetData(ctx context.Context, id string) (json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("api: widget id required")
	}
	var out json.RawMessage
	path := "/api/widgets/" + url.PathEscape(id) + "/data"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetHabitCompletion implements Service.
func (c *Client) SetHabitCompletion(ctx context.Context, comp habit.Completion) error {
	if comp.HabitID == "" {
		return fmt.Errorf("api: habit id required")
	}
	return c.do(ctx, http.MethodPost, "/api/habits/completion", comp, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("api: invalid path %q: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.ResolveReference(ref).String(), reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		trimmed := strings.TrimSpace(string(msg))
		if trimmed == "" {
			trimmed = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("api: %s (status %d)", trimmed, resp.StatusCode)
	}
}
