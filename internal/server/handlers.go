package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/oakwood-commons/jsondiff/internal/compare"
	"github.com/oakwood-commons/jsondiff/internal/completion"
	"github.com/oakwood-commons/jsondiff/internal/differ"
	"github.com/oakwood-commons/jsondiff/internal/export"
	"github.com/oakwood-commons/jsondiff/internal/fetch"
	"github.com/oakwood-commons/jsondiff/internal/filter"
	"github.com/oakwood-commons/jsondiff/internal/history"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
	"github.com/oakwood-commons/jsondiff/internal/locator"
	"github.com/oakwood-commons/jsondiff/internal/navigator"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

// CompareRequest is the body of /api/compare and the export endpoints.
type CompareRequest struct {
	Left   string         `json:"left"`
	Right  string         `json:"right"`
	Ignore filter.Options `json:"ignore"`
	Format string         `json:"format,omitempty"`
	Title  string         `json:"title,omitempty"`
}

// CompareResponse carries the diff of a successful comparison.
type CompareResponse struct {
	Left     string           `json:"left"`
	Right    string           `json:"right"`
	Segments []differ.Segment `json:"segments"`
	Stats    differ.Stats     `json:"stats"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	Side       string `json:"side,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Kind       string `json:"kind,omitempty"`
	StatusCode *int   `json:"statusCode,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type pathsRequest struct {
	Text  string `json:"text"`
	Input string `json:"input"`
	Limit int    `json:"limit"`
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	Text    string `json:"text"`
	Display string `json:"display"`
	Kind    string `json:"kind"`
}

type pathsResponse struct {
	Paths       []string     `json:"paths"`
	Suggestions []Suggestion `json:"suggestions"`
}

type fieldsRequest struct {
	Text     string   `json:"text"`
	Path     []string `json:"path"`
	Expanded bool     `json:"expanded"`
}

type fieldsResponse struct {
	Keys    []string `json:"keys"`
	Visible []string `json:"visible"`
	Hidden  int      `json:"hidden"`
}

type locateRequest struct {
	Text         string   `json:"text"`
	Path         []string `json:"path"`
	LineHeight   float64  `json:"lineHeight"`
	VisibleLines int      `json:"visibleLines"`
}

type locateResponse struct {
	Start      int     `json:"start"`
	End        int     `json:"end"`
	StartUTF16 int     `json:"startUTF16"`
	EndUTF16   int     `json:"endUTF16"`
	Line       int     `json:"line"`
	ScrollTop  float64 `json:"scrollTop"`
}

type fetchRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req history.RecordRequest
	if !decode(w, r, &req) {
		return
	}
	e, err := s.opts.History.Record(r.Context(), history.Entry{
		URL:        req.URL,
		Method:     req.Method,
		StatusCode: req.StatusCode,
	})
	if errors.Is(err, history.ErrInvalidEntry) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		s.internalError(w, r, "record history entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", s.opts.HistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.opts.History.List(r.Context(), history.Query{Limit: limit, Offset: offset})
	if err != nil {
		s.internalError(w, r, "list history", err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decode(w, r, &req) {
		return
	}
	res, ok := s.compare(w, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, CompareResponse{
		Left:     res.Left,
		Right:    res.Right,
		Segments: nonNil(res.Segments),
		Stats:    res.Stats,
	})
}

// compare runs req and writes the error reply when it fails.
func (s *Server) compare(w http.ResponseWriter, req CompareRequest) (*compare.Result, bool) {
	format, err := jsontree.ParseInputFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	res, err := compare.Request{Left: req.Left, Right: req.Right, Ignore: req.Ignore, Format: format}.Run()
	if err != nil {
		writeCompareError(w, err)
		return nil, false
	}
	return res, true
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := compare.Format(req.Text)
	if err != nil {
		writeCompareError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, textRequest{Text: out})
}

func (s *Server) handlePaths(w http.ResponseWriter, r *http.Request) {
	var req pathsRequest
	if !decode(w, r, &req) {
		return
	}
	root, err := compare.Parse(req.Text, jsontree.FormatJSON, "")
	if err != nil {
		writeCompareError(w, err)
		return
	}
	paths := navigator.ExtractPaths(root)
	resp := pathsResponse{Paths: nonNil(paths), Suggestions: []Suggestion{}}
	if strings.TrimSpace(req.Input) != "" {
		for _, c := range completion.Suggest(paths, req.Input, req.Limit) {
			resp.Suggestions = append(resp.Suggestions, Suggestion{Text: c.Text, Display: c.Display, Kind: kindName(c.Kind)})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func kindName(k completion.CompletionKind) string {
	if k == completion.CompletionIndex {
		return "index"
	}
	return "field"
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if !decode(w, r, &req) {
		return
	}
	root, err := compare.Parse(req.Text, jsontree.FormatJSON, "")
	if err != nil {
		writeCompareError(w, err)
		return
	}
	keys := nonNil(navigator.ChildKeys(root, req.Path))
	visible, hidden := navigator.VisibleFields(keys, req.Expanded)
	writeJSON(w, http.StatusOK, fieldsResponse{Keys: keys, Visible: nonNil(visible), Hidden: hidden})
}

// handleLocate matches keys by parsed position. Text that does not parse,
// such as a document being edited, falls back to the brace-depth scan.
func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if !decode(w, r, &req) {
		return
	}
	path := make(jsontree.Path, 0, len(req.Path))
	for _, step := range req.Path {
		path = append(path, jsontree.Key(step))
	}
	span, ok := locator.Locate(req.Text, path)
	if !ok {
		if _, err := jsontree.Parse(req.Text); err != nil {
			span, ok = locator.HeuristicLocate(req.Text, req.Path)
		}
	}
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("field %q not found", strings.Join(req.Path, ".")))
		return
	}

	lh := req.LineHeight
	if lh <= 0 {
		lh = s.opts.LineHeight
	}
	visible := req.VisibleLines
	if visible <= 0 {
		visible = s.opts.VisibleLines
	}
	u := span.UTF16(req.Text)
	writeJSON(w, http.StatusOK, locateResponse{
		Start:      span.Start,
		End:        span.End,
		StartUTF16: u.Start,
		EndUTF16:   u.End,
		Line:       span.Line(req.Text),
		ScrollTop:  locator.ScrollTarget(req.Text, span, lh, visible),
	})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	res, err := s.opts.Fetcher.Get(r.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		var fe *fetch.Error
		if !errors.As(err, &fe) {
			s.internalError(w, r, "fetch", err)
			return
		}
		status := http.StatusBadGateway
		if fe.Kind == fetch.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		code := fe.StatusCode
		writeJSON(w, status, ErrorResponse{Error: fe.Error(), Kind: string(fe.Kind), StatusCode: &code})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "application/pdf", "pdf", export.PDF)
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "text/html; charset=utf-8", "html", export.HTML)
}

// handleExport renders into a buffer first so a failed render never sends a
// partial file with a 200 status.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, contentType, ext string, render func(io.Writer, export.Report) error) {
	var req CompareRequest
	if !decode(w, r, &req) {
		return
	}
	res, ok := s.compare(w, req)
	if !ok {
		return
	}
	rep := export.Report{Title: req.Title, Generated: s.opts.Now(), Segments: res.Segments}

	var buf bytes.Buffer
	if err := render(&buf, rep); err != nil {
		if errors.Is(err, export.ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.internalError(w, r, "export "+ext, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="json-diff-%s.%s"`, rep.Generated.Format("20060102-150405"), ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, what string, err error) {
	logger.FromContext(r.Context()).Error(err, what)
	writeError(w, http.StatusInternalServerError, fmt.Errorf("%s: %w", what, err))
}

// writeCompareError maps parse failures to 422 with their position; any
// other comparison error is a bad request.
func writeCompareError(w http.ResponseWriter, err error) {
	var pe *compare.ParseError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  pe.Error(),
			Side:   string(pe.Side),
			Line:   pe.Line,
			Column: pe.Column,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
