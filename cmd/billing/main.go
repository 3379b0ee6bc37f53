// CLI entry point for the fulfill-billing service.
package main

import (
	"fmt"
	"os"

	appbilling "github.com/turtacn/fulfill-billing/internal/application/billing"
	"github.com/turtacn/fulfill-billing/internal/config"
	"github.com/turtacn/fulfill-billing/internal/domain/vendor"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/fulfill-billing/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/fulfill-billing/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	cfg, err := loadConfig(configPathFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// CLI logging goes to stderr so command output stays parseable.
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            "warn",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	vendorRepo := repositories.NewPostgresVendorRepo(conn, logger)
	recordRepo := repositories.NewPostgresRecordRepo(conn, logger)
	rateRepo := repositories.NewPostgresRateRepo(conn, logger)
	invoiceRepo := repositories.NewPostgresInvoiceRepo(conn, logger)

	identity := vendor.NewIdentityService(vendorRepo, logger)
	filter := appbilling.NewRecordFilter(identity, recordRepo, logger)
	fees := appbilling.NewFeeService(vendorRepo, filter, rateRepo, logger)
	invoices := appbilling.NewInvoiceService(vendorRepo, fees, invoiceRepo, nil, nil, logger)

	root := cli.NewRootCommand(cli.Dependencies{
		VendorRepo: vendorRepo,
		Identity:   identity,
		Invoices:   invoices,
		Logger:     logger,
	})

	if err := root.Execute(); err != nil {
		cli.PrintError(root, err)
		os.Exit(1)
	}
}

// configPathFromArgs extracts the --config/-c flag before cobra parses it, so
// that dependencies can be wired ahead of command execution.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case len(arg) > len("--config=") && arg[:len("--config=")] == "--config=":
			return arg[len("--config="):]
		}
	}
	return ""
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("billing.yaml"); err == nil {
		return config.Load("billing.yaml")
	}
	return config.LoadFromEnv()
}
