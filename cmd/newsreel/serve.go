package main

import (
	"os/signal"
	"syscall"

	"github.com/mohammad-safakhou/newsreel/internal/logger"
	srv "github.com/mohammad-safakhou/newsreel/internal/server"
	"github.com/mohammad-safakhou/newsreel/session"
	"github.com/spf13/cobra"
)

func serveCMD(opts *rootOptions) *cobra.Command {
	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP studio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			deps := srv.Deps{
				Config:   a.cfg,
				Sessions: session.NewStore(session.InMemoryStore, a.studio),
				Gatherer: a.registry,
				Log:      a.log,
			}
			if a.ledger != nil {
				deps.Ledger = a.ledger
			}
			if serveAddr == "" {
				serveAddr = a.cfg.Server.Address
			}
			return srv.Run(ctx, srv.New(deps), serveAddr, logger.Component(a.log, "http"))
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.address)")

	return serve
}
