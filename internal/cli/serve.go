package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/phisheye/phisheye/internal/api"
	"github.com/phisheye/phisheye/internal/pipeline"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP scoring API",
	Long: `Serve exposes the scan pipeline over HTTP.

Endpoints:
  GET  /api/v1/health      service and classifier status
  POST /api/v1/scan        score one URL
  POST /api/v1/scan/batch  score up to 100 URLs
  GET  /api/v1/history     the caller's recent scans

Callers identify themselves with the X-Caller-ID header; anonymous callers
are tracked by a hash of client address and user agent.

Example:
  phisheye serve
  phisheye serve --addr :9090
  PHISHEYE_MONGO_URI=mongodb://localhost:27017 phisheye serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	// .env is optional; deployments usually set real environment variables
	_ = godotenv.Load()

	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	scanner := pipeline.NewScanner(cfg, st)
	server := api.NewServer(scanner, st, cfg.Concurrency, Version, verbose)

	httpServer := &http.Server{
		Addr:              serveAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "Listening on %s\n", serveAddr)
	if !scanner.ClassifierAvailable() {
		fmt.Fprintf(os.Stderr, "Classifier artifact not loaded; scoring heuristic-only\n")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	return g.Wait()
}
