package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/codetour/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tours over HTTP",
	Long: `Serve every tour found in the tours directory. Pages stay in sync with
the reader over a WebSocket; editing a tour document reloads open pages.

Examples:
  codetour serve                       # Serve ./tours on localhost:8080
  codetour serve -p 3000 --watch=false # Another port, no reloading
  codetour serve --content-root docs   # Tours under docs/tours`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().Bool("watch", true, "Reload tours when their documents change")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("tour.watch", serveCmd.Flags().Lookup("watch"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	env, err := newEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	srv, err := server.New(env.config, server.WithLogger(env.logger), server.WithFilesystem(env.content))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving tours at http://%s\n", env.config.Addr())

	select {
	case err := <-errCh:
		// Start only returns early when the listener fails
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	env.logger.Info(context.Background(), "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		env.logger.Error(shutdownCtx, err, "Error during server shutdown")
		return err
	}
	return <-errCh
}
