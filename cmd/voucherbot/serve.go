package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voucherbot/internal/config"
	"voucherbot/internal/logging"
	"voucherbot/internal/server"
	"voucherbot/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP routing API",
	Long: `Serves the routing engine over HTTP.

  POST /api/v1/route           route a message within a session
  GET  /api/v1/sessions/{id}   inspect session state
  DELETE /api/v1/sessions/{id} drop a session
  GET  /healthz                liveness check

The config file is watched for changes; server address changes require a
restart but LLM settings apply on the next request.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := session.Open(cfg.Session.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(buildEngine(), store, cfg.Server.Addr)

	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		cfg = next
		logging.Boot("configuration updated")
	})
	if err == nil {
		if err := watcher.Start(ctx); err != nil {
			logging.Server("config watch unavailable: %v", err)
		} else {
			defer watcher.Stop()
		}
	} else {
		logging.Server("config watch unavailable: %v", err)
	}

	return srv.Run(ctx)
}
