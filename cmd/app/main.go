package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/app"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "keygate",
		Usage: "License-key authorization service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":8080",
				Usage: "HTTP listen address",
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   "file",
				Sources: cli.EnvVars("KEYGATE_STORE"),
				Usage:   "Key store backend: file or sqlite",
			},
			&cli.StringFlag{
				Name:    "key-file",
				Value:   "./keys.json",
				Sources: cli.EnvVars("KEYGATE_KEY_FILE"),
				Usage:   "Path of the JSON key store (file backend)",
			},
			&cli.StringFlag{
				Name:    "db-path",
				Value:   "./keygate.sqlite",
				Sources: cli.EnvVars("KEYGATE_DB_PATH"),
				Usage:   "SQLite file path (audit, notifications, sqlite backend)",
			},
			&cli.StringFlag{
				Name:    "admin-secret",
				Sources: cli.EnvVars("KEYGATE_ADMIN_SECRET"),
				Usage:   "Shared secret for admin operations (unset disables them)",
			},
			&cli.StringFlag{
				Name:    "telemetry-id",
				Sources: cli.EnvVars("KEYGATE_TELEMETRY_ID"),
				Usage:   "Expected telemetry id (unset accepts all pings)",
			},
			&cli.DurationFlag{
				Name:    "heartbeat-window",
				Value:   12 * time.Hour,
				Sources: cli.EnvVars("KEYGATE_HEARTBEAT_WINDOW"),
				Usage:   "Duration added to a key's expiry per heartbeat",
			},
			&cli.DurationFlag{
				Name:    "sweep-interval",
				Sources: cli.EnvVars("KEYGATE_SWEEP_INTERVAL"),
				Usage:   "Proactive expiry sweep interval (0 disables)",
			},
			&cli.StringFlag{
				Name:    "webhook-url",
				Sources: cli.EnvVars("KEYGATE_WEBHOOK_URL"),
				Usage:   "Notification webhook target URL (unset logs events instead)",
			},
			&cli.StringFlag{
				Name:    "webhook-secret",
				Sources: cli.EnvVars("KEYGATE_WEBHOOK_SECRET"),
				Usage:   "HMAC-SHA256 signing secret for outbound webhook requests",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg := app.Config{
				Addr:            c.String("addr"),
				StoreBackend:    c.String("store"),
				KeyFilePath:     c.String("key-file"),
				DBPath:          c.String("db-path"),
				AdminSecret:     c.String("admin-secret"),
				TelemetryID:     c.String("telemetry-id"),
				HeartbeatWindow: c.Duration("heartbeat-window"),
				SweepInterval:   c.Duration("sweep-interval"),
				WebhookURL:      c.String("webhook-url"),
				WebhookSecret:   c.String("webhook-secret"),
			}

			server, closer, err := app.NewServer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer func() {
				if closeErr := closer.Close(); closeErr != nil {
					log.Printf("close resources: %v", closeErr)
				}
			}()

			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", cfg.Addr)
				errCh <- server.ListenAndServe()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case sig := <-sigCh:
				log.Printf("received signal %s", sig)
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
