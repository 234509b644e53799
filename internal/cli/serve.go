package cli

import (
	"fmt"
	"time"

	"github.com/existflow/taskdeck/internal/logger"
	"github.com/existflow/taskdeck/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local trigger server",
	Long: `Run the local HTTP server that widgets and hotkeys call into.

It exposes sync/done/create, serves the cached task list, catches the OAuth
redirect, and keeps the cache warm with a periodic refresh.`,
	RunE: runServe,
}

var (
	serveAddr    string
	serveRefresh time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().DurationVar(&serveRefresh, "refresh", 15*time.Minute, "Periodic refresh interval (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.ListenAddr
	}

	srv := server.New(a.syncer, a.store, a.creds, a.oauth())
	if serveRefresh > 0 {
		srv.StartPeriodicRefresh(serveRefresh)
	}

	fmt.Printf("TaskDeck trigger server on %s\n", addr)
	logger.Info("trigger server starting", logger.F("addr", addr), logger.F("refresh", serveRefresh.String()))
	return srv.Start(addr)
}
