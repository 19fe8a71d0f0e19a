// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dbgate/cli/internal/assets"
	"dbgate/cli/internal/gateway"
	"dbgate/cli/internal/health"
	"dbgate/cli/internal/logging"
)

var (
	serveAddr       string
	serveStatic     string
	serveHealthAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	Long: `Serve the table and routine API, the static pages and /healthz.

The database is taken from DBGATE_DSN, DATABASE_URL, the config file or the
OS keychain, in that order. Use 'dbgate connect' to store one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess, err := openSession(ctx)
		if err != nil {
			pterm.Error.Println(logging.PresentError("cannot start gateway", err))
			return err
		}
		defer sess.Close()

		cfg := sess.cfg
		if serveAddr != "" {
			cfg.ListenAddr = serveAddr
		}
		if serveStatic != "" {
			cfg.StaticRoot = serveStatic
		}
		if serveHealthAddr != "" {
			cfg.HealthAddr = serveHealthAddr
		}

		src, err := assets.Open(ctx, cfg.StaticRoot, assets.S3Options{
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3SecretKey(keychainS3Secret),
		})
		if err != nil {
			return err
		}

		sess.logger.Info("starting", sess.logger.Args(
			"version", Version,
			"backend", string(sess.target.Type),
			"source", string(sess.source),
			"static", src.String(),
			"strict_column_types", cfg.StrictColumnTypes,
		))

		srv := gateway.New(sess.exec, sess.builder, src, sess.logger)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.ListenAndServe(gctx, cfg.ListenAddr) })
		if cfg.HealthAddr != "" {
			checker := health.NewChecker(sess.db, 15*time.Second, sess.logger)
			g.Go(func() error {
				checker.Run(gctx)
				return nil
			})
			g.Go(func() error { return checker.Serve(gctx, cfg.HealthAddr) })
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			sess.logger.Error("gateway stopped", sess.logger.Args("error", err.Error()))
			return err
		}
		sess.logger.Info("gateway stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8000)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "Static page root: a directory or s3://bucket/prefix")
	serveCmd.Flags().StringVar(&serveHealthAddr, "health-addr", "", "Serve gRPC health checks on this address")
}
