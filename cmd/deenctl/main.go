// Command deenctl is the operations CLI for the Deen X Zikr backend.
//
// Usage:
//
//	deenctl dispatch
//	deenctl dispatch --window 15
//	deenctl vapid
//	deenctl subs list --limit 50
//	deenctl subs deactivate --endpoint https://...
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"
	_ "time/tzdata"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/deenxzikr/deen-api/internal/cache"
	"github.com/deenxzikr/deen-api/internal/config"
	"github.com/deenxzikr/deen-api/internal/db"
	"github.com/deenxzikr/deen-api/internal/prayer"
	"github.com/deenxzikr/deen-api/internal/push"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "deenctl",
		Short: "Deen X Zikr operations CLI",
	}

	root.AddCommand(dispatchCmd())
	root.AddCommand(vapidCmd())
	root.AddCommand(subsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// dispatch command
// --------------------------------------------------------------------------

func dispatchCmd() *cobra.Command {
	var window int
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one prayer reminder dispatch pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				sender, err := push.NewWebPushSender(push.VAPIDConfig{
					PublicKey:  cfg.VAPIDPublicKey,
					PrivateKey: cfg.VAPIDPrivateKey,
					Subject:    cfg.VAPIDSubject,
				})
				if err != nil {
					return err
				}

				aladhan := prayer.NewClient("", 60, logger)
				evaluator := prayer.NewEvaluator(prayer.NewCachedSource(aladhan, cache.New(true)))
				dispatcher := push.NewDispatcher(push.NewPGStore(pool.Pool), sender, evaluator, window, logger)

				start := time.Now()
				summary, err := dispatcher.Run(ctx, start)
				if err != nil {
					return err
				}
				logger.Info("Dispatch finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"total", summary.Total, "sent", summary.Sent,
					"skipped", summary.Skipped, "expired", summary.Expired)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&window, "window", 10, "Lookahead window in minutes")
	return cmd
}

// --------------------------------------------------------------------------
// vapid command
// --------------------------------------------------------------------------

func vapidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid",
		Short: "Generate a VAPID key pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
			if err != nil {
				return fmt.Errorf("generate VAPID keys: %w", err)
			}
			fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
			fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// subs commands
// --------------------------------------------------------------------------

func subsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subs",
		Short: "Inspect and adjust stored subscriptions",
	}
	cmd.AddCommand(subsListCmd())
	cmd.AddCommand(subsDeactivateCmd())
	return cmd
}

func subsListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored subscriptions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				store := push.NewPGStore(pool.Pool)
				subs, err := store.ListAll(ctx, limit)
				if err != nil {
					return err
				}
				for _, s := range subs {
					state := "active"
					if !s.Active {
						state = "inactive"
					}
					fmt.Printf("%-8s  %-24s  %-20s  method=%-2d  updated=%s  last=%s\n",
						state, truncate(s.LocationName, 24), s.Timezone, s.Method,
						s.UpdatedAt.Format(time.RFC3339), s.LastNotifiedKey)
				}
				logger.Info("Listed subscriptions", "count", len(subs))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to list")
	return cmd
}

func subsDeactivateCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate a subscription by endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if endpoint == "" {
				return fmt.Errorf("--endpoint is required")
			}
			return runWithPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				store := push.NewPGStore(pool.Pool)
				if err := store.Deactivate(ctx, endpoint, time.Now()); err != nil {
					return err
				}
				logger.Info("Subscription deactivated", "endpoint", endpoint)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Subscription endpoint URL")
	return cmd
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func runWithPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return err
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
