package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RecordRequest is the body accepted by POST /record.
type RecordRequest struct {
	URL        string `json:"url"`
	Method     string `json:"method"`
	StatusCode int    `json:"statusCode"`
}

// Remote talks to a history service over HTTP (POST /record, GET /history).
type Remote struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewRemote returns a client for the service at baseURL.
func NewRemote(baseURL string) *Remote {
	return &Remote{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Remote) client() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}

func (r *Remote) Record(ctx context.Context, e Entry) (Entry, error) {
	if strings.TrimSpace(e.URL) == "" {
		return Entry{}, ErrInvalidEntry
	}
	body, err := json.Marshal(RecordRequest{URL: e.URL, Method: e.Method, StatusCode: e.StatusCode})
	if err != nil {
		return Entry{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/record", bytes.NewReader(body))
	if err != nil {
		return Entry{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out Entry
	if err := r.do(req, http.StatusCreated, &out); err != nil {
		return Entry{}, err
	}
	return out, nil
}

func (r *Remote) List(ctx context.Context, q Query) ([]Entry, error) {
	v := url.Values{}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	u := r.BaseURL + "/history"
	if len(v) > 0 {
		u += "?" + v.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var out []Entry
	if err := r.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close is a no-op; the HTTP client has nothing to release.
func (r *Remote) Close() error { return nil }

func (r *Remote) do(req *http.Request, want int, out any) error {
	resp, err := r.client().Do(req)
	if err != nil {
		return fmt.Errorf("history: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("history: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("history: decode response: %w", err)
	}
	return nil
}
