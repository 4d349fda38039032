package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/lab-kiosk/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kiosk API server",
	Long: `Start the kiosk API server.
Opens the store, applies migrations, warms the gallery cache and serves
/upload_image, /verify_reservation and /kiosk/setup until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().Bool("skip-migrate", false, "Do not apply migrations on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	log := newLogger(cfg)

	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(&cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if !mustGetBool(cmd, "skip-migrate") {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	svc, cache, err := newService(ctx, cfg, store, log)
	if err != nil {
		return err
	}

	// Warm the cache so the first kiosk request does not pay for the full load.
	if _, err := cache.GetAll(ctx); err != nil {
		log.Warn(ctx, "initial gallery load failed", "error", err)
	} else {
		fmt.Printf("Gallery loaded with %d enrolled users\n", cache.Len())
	}

	server := web.NewServer(cfg, svc, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Lab Kiosk API on http://%s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
