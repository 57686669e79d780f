package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/jsondiff/internal/differ"
	"github.com/oakwood-commons/jsondiff/internal/fetch"
	"github.com/oakwood-commons/jsondiff/internal/history"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, store history.Store) (*Server, *fetch.Client) {
	t.Helper()
	if store == nil {
		store = history.NewMemoryStore()
	}
	f := fetch.New("", 2*time.Second, store)
	s, err := New(Options{History: store, Fetcher: f, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return s, f
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNewRequiresHistory(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRecordAndHistory(t *testing.T) {
	sqlite, err := history.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	for name, store := range map[string]history.Store{"memory": history.NewMemoryStore(), "sqlite": sqlite} {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestServer(t, store)

			for i, u := range []string{"https://a.test", "https://b.test", "https://c.test"} {
				rec := do(t, s, http.MethodPost, "/record", history.RecordRequest{URL: u, Method: "get", StatusCode: 200 + i})
				require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
				e := decodeBody[history.Entry](t, rec)
				assert.NotEmpty(t, e.ID)
				assert.Equal(t, "GET", e.Method)
				// entries recorded within the same second still need a stable order
				time.Sleep(2 * time.Millisecond)
			}

			rec := do(t, s, http.MethodGet, "/history", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			all := decodeBody[[]history.Entry](t, rec)
			require.Len(t, all, 3)
			assert.Equal(t, "https://c.test", all[0].URL)
			assert.Equal(t, "https://a.test", all[2].URL)

			rec = do(t, s, http.MethodGet, "/history?limit=1&offset=1", nil)
			page := decodeBody[[]history.Entry](t, rec)
			require.Len(t, page, 1)
			assert.Equal(t, "https://b.test", page[0].URL)

			rec = do(t, s, http.MethodGet, "/history?offset=10", nil)
			assert.Equal(t, "[]\n", rec.Body.String())
		})
	}
}

func TestRecordValidation(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/record", history.RecordRequest{URL: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/record", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "invalid request body")

	rec = do(t, s, http.MethodGet, "/history?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, s, http.MethodGet, "/history?offset=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoteClientAgainstServer(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	remote := history.NewRemote(ts.URL + "/")
	ctx := context.Background()
	e, err := remote.Record(ctx, history.Entry{URL: "https://x.test", StatusCode: 404})
	require.NoError(t, err)
	assert.Equal(t, 404, e.StatusCode)

	list, err := remote.List(ctx, history.Query{Limit: 5})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)
}

func TestCompare(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/compare", CompareRequest{
		Left:  `{"a":1,"b":{"c":2}}`,
		Right: `{"a":1,"b":{"c":3}}`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[CompareResponse](t, rec)
	assert.Equal(t, 1, resp.Stats.Added)
	assert.Equal(t, 1, resp.Stats.Removed)
	assert.False(t, resp.Stats.Identical)
	assert.Equal(t, resp.Left, differ.Reconstruct(resp.Segments, differ.Left))
	assert.Equal(t, resp.Right, differ.Reconstruct(resp.Segments, differ.Right))
}

func TestCompareWithIgnoreRules(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/compare", `{
		"left": "{\"a\":1,\"b\":{\"c\":2,\"d\":3}}",
		"right": "{\"a\":1,\"b\":{\"c\":9,\"d\":3}}",
		"ignore": {"fieldPaths": ["b.c"]}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[CompareResponse](t, rec)
	assert.True(t, resp.Stats.Identical)
	assert.NotContains(t, resp.Left, `"c"`)
}

func TestCompareParseError(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/compare", CompareRequest{Left: `{"a":1,}`, Right: `{}`})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "left", resp.Side)
	assert.Contains(t, resp.Error, "JSON parse error")
	assert.Equal(t, 1, resp.Line)
	assert.NotContains(t, rec.Body.String(), "segments")
}

func TestCompareMalformedScalar(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, left := range []string{"nul", "hello world"} {
		rec := do(t, s, http.MethodPost, "/api/compare", CompareRequest{Left: left, Right: `{}`})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, left)
		assert.Equal(t, "left", decodeBody[ErrorResponse](t, rec).Side)
	}

	rec := do(t, s, http.MethodPost, "/api/compare", CompareRequest{Left: "a: 1\n", Right: `{"a":1}`, Format: "yaml"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[CompareResponse](t, rec).Stats.Identical)
}

func TestCompareBadIgnoreRegex(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/compare", `{"left":"{}","right":"{}","ignore":{"regexPattern":"("}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "ignore options")
}

func TestFormat(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/format", textRequest{Text: `{"b":[1,2],"a":{}}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{\n  \"b\": [\n    1,\n    2\n  ],\n  \"a\": {}\n}", decodeBody[textRequest](t, rec).Text)

	rec = do(t, s, http.MethodPost, "/api/format", textRequest{Text: `{"a":`})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, decodeBody[ErrorResponse](t, rec).Side)
}

func TestPaths(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/paths", pathsRequest{
		Text:  `{"user":{"name":"x","tags":["a"]},"usage":1}`,
		Input: "us",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[pathsResponse](t, rec)
	assert.Equal(t, []string{"user", "user.name", "user.tags", "user.tags[0]", "usage"}, resp.Paths)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "user", resp.Suggestions[0].Display)
	assert.Equal(t, "field", resp.Suggestions[0].Kind)

	rec = do(t, s, http.MethodPost, "/api/paths", pathsRequest{Text: `[]`})
	resp = decodeBody[pathsResponse](t, rec)
	assert.Empty(t, resp.Paths)
	assert.Equal(t, "{\"paths\":[],\"suggestions\":[]}\n", rec.Body.String())
}

func TestFields(t *testing.T) {
	s, _ := newTestServer(t, nil)
	text := `{"a":{"k1":1,"k2":2,"k3":3,"k4":4,"k5":5,"k6":6,"k7":7},"b":2}`

	rec := do(t, s, http.MethodPost, "/api/fields", fieldsRequest{Text: text})
	resp := decodeBody[fieldsResponse](t, rec)
	assert.Equal(t, []string{"a", "b"}, resp.Keys)

	rec = do(t, s, http.MethodPost, "/api/fields", fieldsRequest{Text: text, Path: []string{"a"}})
	resp = decodeBody[fieldsResponse](t, rec)
	assert.Len(t, resp.Keys, 7)
	assert.Len(t, resp.Visible, 5)
	assert.Equal(t, 2, resp.Hidden)

	rec = do(t, s, http.MethodPost, "/api/fields", fieldsRequest{Text: text, Path: []string{"b"}})
	resp = decodeBody[fieldsResponse](t, rec)
	assert.Empty(t, resp.Keys)
	assert.Equal(t, 0, resp.Hidden)
}

func TestLocate(t *testing.T) {
	s, _ := newTestServer(t, nil)
	text := "{\n  \"note\": \"{ \\\"id\\\": 1 }\",\n  \"é\": {\n    \"id\": 2\n  }\n}"

	rec := do(t, s, http.MethodPost, "/api/locate", locateRequest{Text: text, Path: []string{"é", "id"}, LineHeight: 10, VisibleLines: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[locateResponse](t, rec)
	assert.Equal(t, `"id":`, text[resp.Start:resp.End])
	assert.Equal(t, 3, resp.Line)
	assert.Equal(t, resp.Start-1, resp.StartUTF16)
	assert.Equal(t, float64(25), resp.ScrollTop)

	rec = do(t, s, http.MethodPost, "/api/locate", locateRequest{Text: text, Path: []string{"missing"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocateFallsBackForInvalidText(t *testing.T) {
	s, _ := newTestServer(t, nil)
	text := "{\n  \"a\": {\n    \"b\": 1,\n"

	rec := do(t, s, http.MethodPost, "/api/locate", locateRequest{Text: text, Path: []string{"a", "b"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[locateResponse](t, rec)
	assert.Equal(t, `"b":`, text[resp.Start:resp.End])
}

func TestFetchRecordsHistory(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"b":1,"a":[true]}`))
	}))
	defer origin.Close()

	store := history.NewMemoryStore()
	s, f := newTestServer(t, store)

	rec := do(t, s, http.MethodPost, "/api/fetch", fetchRequest{URL: origin.URL + "/doc"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[fetch.Result](t, rec)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}", res.Text)

	rec = do(t, s, http.MethodPost, "/api/fetch", fetchRequest{URL: origin.URL + "/missing"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	er := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "http", er.Kind)
	require.NotNil(t, er.StatusCode)
	assert.Equal(t, 404, *er.StatusCode)

	rec = do(t, s, http.MethodPost, "/api/fetch", fetchRequest{URL: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.Wait()
	entries, err := store.List(context.Background(), history.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	codes := []int{entries[0].StatusCode, entries[1].StatusCode}
	assert.ElementsMatch(t, []int{200, 404}, codes)
}

func TestExportHTML(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/export/html", CompareRequest{Left: `{"a":1}`, Right: `{"a":2}`, Title: "orders"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="json-diff-20240301-120000.html"`, rec.Header().Get("Content-Disposition"))
	body := rec.Body.String()
	assert.Contains(t, body, "orders")
	assert.Contains(t, body, `class="removed"`)
	assert.Contains(t, body, `class="added"`)
}

func TestExportPDF(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/export/pdf", CompareRequest{Left: `{"a":1}`, Right: `{"a":2}`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = do(t, s, http.MethodPost, "/api/export/pdf", CompareRequest{Left: `[`, Right: `{}`})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestExportPDFLargeDocument(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var left, right strings.Builder
	left.WriteString("[")
	right.WriteString("[")
	for i := 0; i < 20000; i++ {
		if i > 0 {
			left.WriteString(",")
			right.WriteString(",")
		}
		fmt.Fprintf(&left, "%d", i)
		if i >= 10000 && i < 10500 {
			fmt.Fprintf(&right, "%d", -i)
		} else {
			fmt.Fprintf(&right, "%d", i)
		}
	}
	left.WriteString("]")
	right.WriteString("]")

	rec := do(t, s, http.MethodPost, "/api/export/pdf", CompareRequest{Left: left.String(), Right: right.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
