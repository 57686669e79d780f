package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/fetch"
	"github.com/oakwood-commons/jsondiff/internal/history"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

const stdinArg = "-"

// openHistory opens the configured history store: the remote service when
// history.remote_url is set, the SQLite file otherwise.
func (o *rootOptions) openHistory(ctx context.Context) (history.Store, error) {
	if u := strings.TrimSpace(o.cfg.History.RemoteURL); u != "" {
		logger.FromContext(ctx).V(1).Info("using remote history", logger.URLKey, u)
		return history.NewRemote(u), nil
	}
	path := o.cfg.History.DBPath
	if path == "" {
		return nil, errors.New("history.db_path is empty")
	}
	store, err := history.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).V(1).Info("opened history", logger.PathKey, path)
	return store, nil
}

// documentReader resolves document arguments. The fetch client and its
// history store are opened on first use of a URL.
type documentReader struct {
	opts      *rootOptions
	cmd       *cobra.Command
	relayURL  string
	store     history.Store
	client    *fetch.Client
	stdinRead bool
}

func newDocumentReader(cmd *cobra.Command, opts *rootOptions) *documentReader {
	return &documentReader{opts: opts, cmd: cmd, relayURL: opts.cfg.Fetch.RelayURL}
}

// Read returns the text named by arg: "-" reads stdin, http(s) URLs are
// fetched and recorded in history, anything else is a file path.
func (r *documentReader) Read(ctx context.Context, arg string) (string, error) {
	switch {
	case arg == stdinArg:
		if r.stdinRead {
			return "", errors.New("stdin can only be used for one document")
		}
		r.stdinRead = true
		data, err := io.ReadAll(r.cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case isURL(arg):
		client, err := r.fetcher(ctx)
		if err != nil {
			return "", err
		}
		res, err := client.Get(ctx, arg)
		if err != nil {
			return "", err
		}
		return res.Text, nil
	default:
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func (r *documentReader) fetcher(ctx context.Context) (*fetch.Client, error) {
	if r.client != nil {
		return r.client, nil
	}
	store, err := r.opts.openHistory(ctx)
	if err != nil {
		return nil, err
	}
	r.store = store
	r.client = fetch.New(r.relayURL, r.opts.cfg.Fetch.Timeout, store)
	return r.client, nil
}

// Close waits for pending history writes and closes the store.
func (r *documentReader) Close() error {
	if r.client != nil {
		r.client.Wait()
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// singleDocumentArg is the positional argument for commands that read one
// document; it defaults to stdin.
func singleDocumentArg(args []string) string {
	if len(args) == 0 {
		return stdinArg
	}
	return args[0]
}
