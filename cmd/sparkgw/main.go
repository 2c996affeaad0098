// sparkgw - demo HTTP gateway in front of the remote calculation API.
// Exposes health, raw invocation and predefined scenario endpoints for
// browser and demo clients.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/infra/config"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
	"github.com/cosmosolder/sparkbridge/internal/infra/sqlite"
	"github.com/cosmosolder/sparkbridge/internal/server"
	"github.com/cosmosolder/sparkbridge/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("sparkgw", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config", "", "Path to optional YAML config file")
	host := fs.String("host", "0.0.0.0", "Listen host")
	port := fs.Int("port", 8080, "Listen port")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(errOut, "sparkgw: %v\n", err) //nolint:errcheck
		return 1
	}

	// The gateway needs only the endpoint configuration; the mode flag and
	// request file of the bridge binary do not apply here.
	endpointCfg := dispatch.EndpointConfig{
		BaseURL:      cfg.APIURL,
		TenantName:   cfg.TenantName,
		SyntheticKey: cfg.SyntheticKey,
	}
	if err := endpointCfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "sparkgw: %v\n", err) //nolint:errcheck
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		bus      eventbus.EventBus
		recorder *audit.Recorder
	)
	if cfg.AuditDB != "" {
		db, err := sqlite.Open(ctx, cfg.AuditDB)
		if err != nil {
			fmt.Fprintf(errOut, "sparkgw: %v\n", err) //nolint:errcheck
			return 1
		}
		defer db.Close() //nolint:errcheck

		b := eventbus.New()
		recorder = audit.NewRecorder(db)
		recorder.Start(ctx, b)
		bus = b
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Host = *host
	serverCfg.Port = *port
	srv := server.NewServer(dispatch.New(endpointCfg), bus, recorder, serverCfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "sparkgw: %v\n", err) //nolint:errcheck
			return 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(errOut, "sparkgw: %v\n", err) //nolint:errcheck
			return 1
		}
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `sparkgw - demo HTTP gateway for the remote calculation API

Usage:
  sparkgw [options]

Options:
  --version        Show version information
  --help           Show this help message
  --config FILE    Optional YAML config file (environment variables win)
  --host HOST      Listen host (default: 0.0.0.0)
  --port PORT      Listen port (default: 8080)

Endpoints:
  GET  /health
  POST /api/invoke
  GET  /api/scenarios
  POST /api/scenarios/{name}/run
  GET  /api/invocations        (when AUDIT_DB is set)`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
