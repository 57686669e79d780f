package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/fetch"
	"github.com/oakwood-commons/jsondiff/internal/server"
	"github.com/oakwood-commons/jsondiff/pkg/logger"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr         string
		dbPath       string
		readTimeout  time.Duration
		writeTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the history service and comparison API over HTTP",
		Long: `Serve the fetch history (POST /record, GET /history) and JSON endpoints for
compare, format, paths, fields, locate, fetch and export under /api.
SIGINT and SIGTERM shut the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("read-timeout") {
				cfg.Server.ReadTimeout = readTimeout
			}
			if cmd.Flags().Changed("write-timeout") {
				cfg.Server.WriteTimeout = writeTimeout
			}
			if cmd.Flags().Changed("db") {
				root.cfg.History.DBPath = dbPath
				root.cfg.History.RemoteURL = ""
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			lgr := logger.FromContext(ctx)

			store, err := root.openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := server.New(server.Options{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				History:      store,
				HistoryLimit: cfg.History.DefaultLimit,
				Fetcher:      fetch.New(cfg.Fetch.RelayURL, cfg.Fetch.Timeout, store),
				LineHeight:   cfg.Display.LineHeight,
				VisibleLines: cfg.Display.VisibleLines,
				Logger:       lgr,
			})
			if err != nil {
				return err
			}
			infof(cmd, "listening on http://%s", cfg.Server.Addr)
			return srv.ListenAndServe(ctx)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&addr, "addr", server.DefaultAddr, "listen address (overrides server.addr)")
	fs.StringVar(&dbPath, "db", "", "SQLite history file (overrides history.db_path)")
	fs.DurationVar(&readTimeout, "read-timeout", server.DefaultReadTimeout, "HTTP read timeout")
	fs.DurationVar(&writeTimeout, "write-timeout", server.DefaultWriteTimeout, "HTTP write timeout")
	return cmd
}
