package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/luxfi/safehash/pkg/api"
	"github.com/luxfi/safehash/pkg/backup"
	"github.com/luxfi/safehash/pkg/logger"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the hash API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Listen address, overrides server.listen",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("listen") {
				cfg.Server.Listen = c.String("listen")
			}

			d, err := buildDeps(cfg, depsOptions{decode: true, memoryCache: true, publish: true})
			if err != nil {
				return err
			}
			defer d.Close()

			if cfg.Cache.BackupDir != "" && d.cache != nil {
				mgr, err := backup.NewManager(d.cache, cfg.Cache.BackupDir, cfg.Cache.BackupPeriod, cfg.Cache.BackupKeep)
				if err != nil {
					return err
				}
				mgr.Start()
				defer mgr.Stop()
				logger.Info("ABI cache backups enabled", "dir", cfg.Cache.BackupDir, "period", cfg.Cache.BackupPeriod.String())
			}

			srv := api.NewServer(d.service, d.metrics, api.Config{
				ListenAddr:     cfg.Server.Listen,
				RateLimit:      cfg.Server.RateLimit,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Gatherer:       d.registry,
			})
			_, errCh := srv.Start()
			logger.Info("HTTP API listening", "addr", cfg.Server.Listen, "environment", cfg.Environment)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Warn("Shutdown signal received, stopping...")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
