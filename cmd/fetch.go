package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/internal/history"
)

func newFetchCmd(root *rootOptions) *cobra.Command {
	var (
		relay   string
		timeout time.Duration
		save    string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Download a JSON document and print it in canonical form",
		Long: `Fetch URL directly or through the configured relay and print the document
in canonical form. Every attempt, failed or not, is recorded in history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isURL(args[0]) {
				return fmt.Errorf("%q is not an http(s) URL", args[0])
			}
			reader := newDocumentReader(cmd, root)
			if cmd.Flags().Changed("relay") {
				reader.relayURL = relay
			}
			if cmd.Flags().Changed("timeout") {
				root.cfg.Fetch.Timeout = timeout
			}
			defer reader.Close()

			client, err := reader.fetcher(cmd.Context())
			if err != nil {
				return err
			}
			res, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text := res.Text + "\n"
			if save != "" {
				if err := os.WriteFile(save, []byte(text), 0o644); err != nil {
					return err
				}
				infof(cmd, "saved %s (HTTP %d)", save, res.StatusCode)
				return nil
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "text", "":
				_, err = fmt.Fprint(out, formatter.ColorJSON(text, noColor(cmd, out)))
				return err
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			default:
				return fmt.Errorf("unknown output format %q (expected text or json)", output)
			}
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&relay, "relay", "", "relay base URL, called as RELAY?url=URL (overrides fetch.relay_url)")
	fs.DurationVar(&timeout, "timeout", 15*time.Second, "request timeout (overrides fetch.timeout)")
	fs.StringVar(&save, "save", "", "write the document to this file instead of stdout")
	fs.StringVarP(&output, "output", "o", "text", "output format: text|json")
	return cmd
}

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		offset int
		output string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fetch attempts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 || offset < 0 {
				return fmt.Errorf("--limit and --offset must be non-negative")
			}
			if !cmd.Flags().Changed("limit") {
				limit = root.cfg.History.DefaultLimit
			}
			store, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), history.Query{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			return renderHistory(cmd, entries, output)
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&limit, "limit", 50, "show at most N entries (0 shows all; default history.default_limit)")
	fs.IntVar(&offset, "offset", 0, "skip the newest N entries")
	fs.StringVarP(&output, "output", "o", "table", "output format: table|json")

	var (
		method string
		status int
	)
	record := &cobra.Command{
		Use:   "record URL",
		Short: "Append an entry to the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := root.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			e, err := store.Record(cmd.Context(), history.Entry{URL: args[0], Method: method, StatusCode: status})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}
	record.Flags().StringVar(&method, "method", http.MethodGet, "HTTP method")
	record.Flags().IntVar(&status, "status", http.StatusOK, "status code (0 for no response)")
	cmd.AddCommand(record)
	return cmd
}

func renderHistory(cmd *cobra.Command, entries []history.Entry, output string) error {
	out := cmd.OutOrStdout()
	switch strings.ToLower(output) {
	case "table", "":
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history")
			return nil
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				e.Timestamp.Local().Format(time.DateTime),
				statusText(e.StatusCode),
				e.Method,
				e.URL,
			})
		}
		width := 0
		if isTerminal(out) {
			width = formatter.TerminalWidth()
		}
		_, err := fmt.Fprint(out, formatter.RenderTable([]string{"TIME", "STATUS", "METHOD", "URL"}, rows, noColor(cmd, out), width))
		return err
	case "json":
		if entries == nil {
			entries = []history.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unknown output format %q (expected table or json)", output)
	}
}

func statusText(code int) string {
	if code == 0 {
		return "-"
	}
	return strconv.Itoa(code)
}
