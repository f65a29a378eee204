package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roboyoz/hotline/internal/messages"
	"github.com/roboyoz/hotline/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the hotline webhooks",
		Long: `Serve the hotline webhooks.

Routes:
  POST /voice/<state>          telephony provider webhooks (voice markup replies)
  POST /web/<state>            browser client (JSON replies)
  GET  /token?identity=<name>  browser-client access token
  GET  /asset/<key>            static audio and other assets
  GET  /api/health             health check
  GET  /api/interviews[/<n>]   stored interviews

The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := slog.Default()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
			}
			defer func() {
				if err := closeStore(); err != nil {
					logger.Warn("closing store", "error", err)
				}
			}()

			machine, catalog, err := buildMachine(cfg)
			if err != nil {
				return err
			}
			if missing := machine.MissingMessages(); len(missing) > 0 {
				logger.Warn("message catalog is incomplete", "missing", missing)
			}

			assetStore, _, err := openAssets(cfg)
			if err != nil {
				return fmt.Errorf("opening assets: %w", err)
			}

			var signatureToken string
			if cfg.SignaturesEnabled() {
				if cfg.Twilio.AuthToken == "" {
					return errors.New("server.validate_signatures needs twilio.auth_token")
				}
				signatureToken = cfg.Twilio.AuthToken
			}

			srv, err := webserver.New(webserver.Config{
				Addr:           cfg.Server.Addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Machine:        machine,
				Store:          store,
				Notifier:       cfg.Notifier(logger),
				Lookup:         cfg.CallerNamer(),
				Voice:          cfg.VoiceOptions(),
				Tokens:         cfg.TokenConfig(),
				Assets:         assetStore,
				SignatureToken: signatureToken,
				PublicURL:      cfg.Server.PublicURL,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			if cfg.WatchCatalog() {
				w, err := messages.NewWatcher(cfg.Resolve(cfg.Catalog.Path), catalog, logger)
				if err != nil {
					return err
				}
				g.Go(func() error { return w.Run(gctx) })
			}
			g.Go(func() error { return srv.ListenAndServe(gctx) })

			logger.Info("roboyoz serving",
				"addr", cfg.Server.Addr,
				"storage", cfg.Storage.Driver,
				"config", cfg.Path,
				"signatures", cfg.SignaturesEnabled())
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
