// Package serve runs the web front end
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/camt-xlsx/cmd/root"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/web"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload web interface",
	Long: `Start an HTTP server with an upload form. Uploaded camt documents are
extracted with the selected profile, previewed in the browser and offered as
an Excel download.

The server also exposes a JSON API:
  GET  /api/profiles   list the extraction profiles
  POST /api/extract    extract uploaded documents and return the records

Example:
  camt-xlsx serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	cfg := c.GetConfig()
	log := root.GetLogger()

	listen := cfg.Server.Address
	if addr != "" {
		listen = addr
	}

	srv := web.NewServer(c, log, web.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		DownloadTTL:    cfg.Server.DownloadTTL,
		FileName:       cfg.Output.FileName,
		DefaultProfile: cfg.Profile.Name,
	})
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting web server", logging.F("address", listen), logging.F(logging.FieldProfile, cfg.Profile.Name))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
