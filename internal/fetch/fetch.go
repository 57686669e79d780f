// Package fetch downloads JSON documents, optionally through a CORS-style
// relay that wraps the body as {"contents": "..."}, and records every
// attempt in the fetch history.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/oakwood-commons/jsondiff/internal/history"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

// Synthetic status codes recorded for attempts without an HTTP response.
const (
	StatusNoResponse = 0
	StatusTimeout    = http.StatusRequestTimeout
)

const (
	DefaultTimeout       = 15 * time.Second
	defaultRecordTimeout = 5 * time.Second
	maxPendingRecords    = 16
)

// maxBodyBytes caps a response body; larger bodies fail with KindTooLarge.
var maxBodyBytes int64 = 32 << 20

// Kind classifies a fetch failure.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindNoResponse Kind = "no_response"
	KindHTTP       Kind = "http"
	KindRelay      Kind = "relay"
	KindParse      Kind = "parse"
	KindTooLarge   Kind = "too_large"
)

// Error is returned for every failed fetch. StatusCode is the code that was
// recorded in history.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case KindTimeout:
		return fmt.Sprintf("fetch %s: request timed out", e.URL)
	case KindNoResponse:
		return fmt.Sprintf("fetch %s: no response: %v", e.URL, e.Err)
	case KindTooLarge:
		return fmt.Sprintf("fetch %s: response too large (limit %d bytes)", e.URL, maxBodyBytes)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Result is a successfully fetched and formatted document.
type Result struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
	Text       string `json:"text"`
}

// Client fetches documents. The zero value fetches directly with
// DefaultTimeout and records nothing.
type Client struct {
	// RelayURL, when set, is called as RelayURL?url=<target>.
	RelayURL   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Recorder   history.Recorder

	wg      sync.WaitGroup
	pending chan struct{}
	once    sync.Once
}

// New returns a client for the given relay (empty for direct fetches).
func New(relayURL string, timeout time.Duration, rec history.Recorder) *Client {
	return &Client{RelayURL: relayURL, Timeout: timeout, Recorder: rec}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Get fetches target, unwraps the relay envelope when a relay is configured,
// and returns the document in canonical form.
func (c *Client) Get(ctx context.Context, target string) (*Result, error) {
	lgr := logger.FromContext(ctx).WithValues(logger.URLKey, target)

	res, ferr := c.get(ctx, target)
	if ferr != nil {
		c.record(ctx, history.Entry{URL: target, Method: http.MethodGet, StatusCode: ferr.StatusCode})
		lgr.V(1).Info("fetch failed", "kind", string(ferr.Kind), logger.StatusKey, ferr.StatusCode)
		return nil, ferr
	}
	c.record(ctx, history.Entry{URL: target, Method: http.MethodGet, StatusCode: res.StatusCode})
	lgr.V(1).Info("fetched", logger.StatusKey, res.StatusCode)
	return res, nil
}

func (c *Client) get(ctx context.Context, target string) (*Result, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	reqURL := target
	if c.RelayURL != "" {
		reqURL = relayRequestURL(c.RelayURL, target)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNoResponse, URL: target, StatusCode: StatusNoResponse, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, transportError(target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, transportError(target, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, &Error{Kind: KindTooLarge, URL: target, StatusCode: resp.StatusCode, Err: errors.New("response too large")}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindHTTP, URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	status := resp.StatusCode
	raw := string(body)
	if c.RelayURL != "" {
		var rerr *Error
		raw, status, rerr = unwrapRelay(target, body)
		if rerr != nil {
			return nil, rerr
		}
	}

	v, err := jsontree.Parse(raw)
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: target, StatusCode: status, Err: err}
	}
	return &Result{URL: target, StatusCode: status, Text: jsontree.Format(v)}, nil
}

func relayRequestURL(relay, target string) string {
	sep := "?"
	if strings.Contains(relay, "?") {
		sep = "&"
	}
	return relay + sep + "url=" + url.QueryEscape(target)
}

// unwrapRelay extracts "contents" from the relay envelope. Relays that
// report the upstream status in status.http_code have it honored.
func unwrapRelay(target string, body []byte) (string, int, *Error) {
	if !gjson.ValidBytes(body) {
		return "", http.StatusOK, &Error{Kind: KindRelay, URL: target, StatusCode: http.StatusOK, Err: errors.New("relay returned invalid JSON")}
	}
	status := http.StatusOK
	if code := gjson.GetBytes(body, "status.http_code"); code.Exists() && code.Int() > 0 {
		status = int(code.Int())
	}
	if status < 200 || status > 299 {
		return "", status, &Error{Kind: KindHTTP, URL: target, StatusCode: status, Err: fmt.Errorf("upstream status %d", status)}
	}
	contents := gjson.GetBytes(body, "contents")
	if !contents.Exists() || contents.Type != gjson.String {
		return "", status, &Error{Kind: KindRelay, URL: target, StatusCode: status, Err: errors.New(`relay response has no "contents" string`)}
	}
	return contents.String(), status, nil
}

func transportError(target string, err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, URL: target, StatusCode: StatusTimeout, Err: err}
	}
	return &Error{Kind: KindNoResponse, URL: target, StatusCode: StatusNoResponse, Err: err}
}

// record hands the entry to the recorder without blocking the caller. When
// too many records are already in flight the entry is dropped and logged.
func (c *Client) record(ctx context.Context, e history.Entry) {
	if c.Recorder == nil {
		return
	}
	c.once.Do(func() { c.pending = make(chan struct{}, maxPendingRecords) })
	lgr := logger.FromContext(ctx)

	select {
	case c.pending <- struct{}{}:
	default:
		lgr.Info("history backlog full, dropping entry", logger.URLKey, e.URL)
		return
	}

	c.wg.Add(1)
	go func() {
		defer func() {
			<-c.pending
			c.wg.Done()
		}()
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultRecordTimeout)
		defer cancel()
		if _, err := c.Recorder.Record(rctx, e); err != nil {
			lgr.Error(err, "failed to record fetch history", logger.URLKey, e.URL)
		}
	}()
}

// Wait blocks until in-flight history records finish.
func (c *Client) Wait() {
	c.wg.Wait()
}
