// Package gateway is the HTTP client for the session persistence gateway.
// All calls are single-attempt; retry policy belongs to the caller.
package gateway

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

	"github.com/jasonknight/anthropide-sub001/internal/model"
)

// Error is a structured gateway failure: an HTTP-level status plus a
// human-readable message suitable for the status line or a toast.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (http %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// IsNotFound reports whether err is a gateway 404 (no session stored yet).
func IsNotFound(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.StatusCode == http.StatusNotFound
}

type Client struct {
	base string
	hc   *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) projectURL(name string, suffix string) string {
	return c.base + "/api/projects/" + url.PathEscape(name) + suffix
}

// LoadSession fetches the session document for a project. A missing session
// surfaces as an *Error with StatusCode 404; use IsNotFound to branch on it.
func (c *Client) LoadSession(ctx context.Context, project string) (*model.Session, error) {
	var doc model.Session
	if err := c.do(ctx, http.MethodGet, c.projectURL(project, "/session"), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveSession replaces the stored session document for a project wholesale.
func (c *Client) SaveSession(ctx context.Context, project string, doc *model.Session) error {
	return c.do(ctx, http.MethodPut, c.projectURL(project, "/session"), doc, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.do(ctx, http.MethodGet, c.base+"/api/projects", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) CreateProject(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, http.MethodPost, c.base+"/api/projects", body, nil)
}

func (c *Client) DeleteProject(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.projectURL(name, ""), nil, nil)
}

func (c *Client) do(ctx context.Context, method, u string, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Message: fmt.Sprintf("gateway unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Message: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}

// errorMessage extracts the server's {"error": "..."} payload, falling back
// to the HTTP status text.
func errorMessage(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	return http.StatusText(resp.StatusCode)
}
