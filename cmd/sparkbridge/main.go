// sparkbridge - configuration-driven bridge to a remote calculation API.
// Runs either as an MCP tool server over stdio or as a one-shot file runner,
// selected by SERVE_AS_TOOL.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cosmosolder/sparkbridge/internal/domain/audit"
	"github.com/cosmosolder/sparkbridge/internal/domain/dispatch"
	"github.com/cosmosolder/sparkbridge/internal/infra/config"
	"github.com/cosmosolder/sparkbridge/internal/infra/eventbus"
	"github.com/cosmosolder/sparkbridge/internal/infra/sqlite"
	"github.com/cosmosolder/sparkbridge/internal/runner"
	"github.com/cosmosolder/sparkbridge/internal/toolserver"
	"github.com/cosmosolder/sparkbridge/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("sparkbridge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")
	configPath := fs.String("config", "", "Path to optional YAML config file")

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
		fmt.Fprintf(errOut, "sparkbridge: %v\n", err) //nolint:errcheck
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "sparkbridge: %v\n", err) //nolint:errcheck
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher := dispatch.New(dispatch.EndpointConfig{
		BaseURL:      cfg.APIURL,
		TenantName:   cfg.TenantName,
		SyntheticKey: cfg.SyntheticKey,
	})

	var bus eventbus.EventBus
	if cfg.AuditDB != "" {
		db, err := sqlite.Open(ctx, cfg.AuditDB)
		if err != nil {
			fmt.Fprintf(errOut, "sparkbridge: %v\n", err) //nolint:errcheck
			return 1
		}
		defer db.Close() //nolint:errcheck

		b := eventbus.New()
		audit.NewRecorder(db).Start(ctx, b)
		bus = b
	}

	if cfg.ToolMode() {
		if err := toolserver.New(dispatcher, bus).Run(ctx); err != nil {
			fmt.Fprintf(errOut, "sparkbridge: tool server: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	}

	outPath, res, err := runner.RunOnce(ctx, dispatcher, cfg.RequestFile, bus)
	if err != nil {
		fmt.Fprintf(errOut, "sparkbridge: %v\n", err) //nolint:errcheck
		return 1
	}
	if res.OK() {
		fmt.Fprintf(out, "results written to %s\n", outPath) //nolint:errcheck
	} else {
		fmt.Fprintf(out, "call failed (%s); results written to %s\n", res.ErrorMessage(), outPath) //nolint:errcheck
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `sparkbridge - bridge to a remote calculation API

Usage:
  sparkbridge [options]

Options:
  --version        Show version information
  --help           Show this help message
  --config FILE    Optional YAML config file (environment variables win)

Environment:
  API_URL          Remote API endpoint URL (required)
  SYNTHETIC_KEY    API authentication key (required)
  SERVE_AS_TOOL    true = MCP tool server over stdio, false = one-shot run (required)
  API_JSON         Request file path (required when SERVE_AS_TOOL=false)
  TENANT_NAME      Tenant header value (default: presales)
  AUDIT_DB         SQLite invocation log path (optional)

Examples:
  SERVE_AS_TOOL=true sparkbridge
  SERVE_AS_TOOL=false API_JSON=request.json sparkbridge`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
