package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelpipe/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered artifacts for the remote publishing API",
		Long: "Exposes the download directory read-only under /downloads/ so the " +
			"remote API can fetch rendered files during container creation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			addr := bind
			if addr == "" {
				addr = cfg.Paths.ServeBind
			}
			srv, err := server.New(cfg.Paths.DownloadDir, addr, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(runCtx)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Bind address (defaults to paths.serve_bind)")
	return cmd
}
