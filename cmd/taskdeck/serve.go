package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/huckwnmo101/taskdeck/internal/api"
	"github.com/huckwnmo101/taskdeck/internal/auth"
	"github.com/huckwnmo101/taskdeck/internal/rules"
	"github.com/huckwnmo101/taskdeck/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the taskdeck HTTP API server.

The auth secret must be set in the config file or via the
TASKDECK_AUTH_SECRET environment variable.

Example:
  TASKDECK_AUTH_SECRET=s3cret taskdeck serve
  taskdeck serve --addr :9000`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		if cfg.Auth.Secret == "" {
			fmt.Fprintf(os.Stderr, "Error: auth secret is not configured (set auth.secret or TASKDECK_AUTH_SECRET)\n")
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.Database.Path})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		authMgr, err := auth.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		rulesSvc := rules.NewService(store, rules.CascadePolicy(cfg.Cascade.Policy))
		server := api.NewServer(store, rulesSvc, authMgr, cfg.Server.RateLimit)

		httpServer := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("\n%s Taskdeck API listening\n\n", green("✓"))
		fmt.Printf("  Address:  %s\n", cyan(cfg.Server.Addr))
		fmt.Printf("  Database: %s\n", cyan(cfg.Database.Path))
		fmt.Println()

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
