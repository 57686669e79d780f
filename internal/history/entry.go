// Package history stores one entry per remote fetch attempt and lists them
// newest first.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oakwood-commons/jsondiff/internal/limiter"
)

// ErrInvalidEntry is returned when an entry has no URL.
var ErrInvalidEntry = errors.New("history: entry url is required")

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("history: store is closed")

// Entry is a single fetch attempt. StatusCode is the HTTP status, or a
// synthetic code for attempts that got no response.
type Entry struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Method     string    `json:"method"`
	StatusCode int       `json:"statusCode"`
	Timestamp  time.Time `json:"timestamp"`
}

// Query selects a window of the newest-first list.
type Query struct {
	Limit  int
	Offset int
}

func (q Query) window() limiter.Config {
	return limiter.Config{Limit: max(q.Limit, 0), Offset: max(q.Offset, 0)}
}

// Recorder accepts new entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) (Entry, error)
}

// Store is a Recorder that can also list what it recorded.
type Store interface {
	Recorder
	List(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}

// prepare validates e and fills ID, Method and Timestamp when unset.
func prepare(e Entry, now func() time.Time) (Entry, error) {
	e.URL = strings.TrimSpace(e.URL)
	if e.URL == "" {
		return Entry{}, ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if e.Method == "" {
		e.Method = "GET"
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now()
	}
	e.Timestamp = e.Timestamp.UTC()
	return e, nil
}
