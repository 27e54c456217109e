package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"invoicemerge/internal/config"
	"invoicemerge/internal/importer"
	"invoicemerge/internal/logger"
	"invoicemerge/internal/report"
)

var version = "1.0.0"

// errNoConfig is returned by commands when the environment did not yield a valid configuration
var errNoConfig = errors.New("configuration not loaded")

var (
	cfg    *config.Config
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "invoicemerge [zoho.csv] [eboekhouden.tsv]",
	Short: "Merge Zoho Books and e-boekhouden invoice exports into one SQL import",
	Long: `invoicemerge reads a Zoho Books invoice CSV and an e-boekhouden invoice export,
deduplicates them (Zoho Books wins when an invoice number exists in both) and
writes an idempotent PostgreSQL upsert script plus a JSON audit report.

Positional arguments override ZOHO_CSV_PATH and EBOEKHOUDEN_EXPORT_PATH.

Environment variables:
  OUTPUT_SQL      - SQL script path (default: import_all_invoices_deduped.sql)
  OUTPUT_REPORT   - JSON report path (default: import_all_invoices_deduped_report.json)
  OUTPUT_XLSX     - Optional spreadsheet of the merged invoices
  RULES_FILE      - Customer aliases and source overrides (default: configs/rules.yaml)
  CUSTOMER_COUNTRY, CUSTOMERS_TABLE, INVOICES_TABLE - Target schema`,
	Example: `  # Use the paths from the environment
  invoicemerge

  # Explicit exports
  invoicemerge ~/Downloads/Factuur.csv ~/Downloads/Facturen.csv`,
	Version:      version,
	Args:         cobra.MaximumNArgs(2),
	SilenceUsage: true,
	RunE:         runImport,
}

// Execute runs the CLI with the loaded configuration. loadErr is reported by
// any command that needs configuration.
func Execute(c *config.Config, loadErr error) {
	log := logger.WithComponent("cmd")

	cfg, cfgErr = c, loadErr

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

func loadedConfig() (*config.Config, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, fmt.Errorf("%w: %w", errNoConfig, cfgErr)
		}
		return nil, errNoConfig
	}
	return cfg, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")

	c, err := loadedConfig()
	if err != nil {
		return err
	}

	in := importer.Inputs{
		ZohoPath:        c.ZohoCSVPath,
		EBoekhoudenPath: c.EBoekhoudenExportPath,
		OutputSQL:       c.OutputSQL,
		OutputReport:    c.OutputReport,
		OutputXLSX:      c.OutputXLSX,
		RulesPath:       c.RulesFile,
	}
	if len(args) > 0 {
		in.ZohoPath = args[0]
	}
	if len(args) > 1 {
		in.EBoekhoudenPath = args[1]
	}

	rules, err := config.LoadRules(c.RulesFile, c.RulesFileExplicit())
	if err != nil {
		return err
	}

	log.Debug().
		Str("zoho", in.ZohoPath).
		Str("eboekhouden", in.EBoekhoudenPath).
		Str("rules", c.RulesFile).
		Msg("Resolved inputs")

	res, err := importer.NewService(rules, c.SQLOptions()).Run(cmd.Context(), in)
	if err != nil {
		return err
	}

	report.PrintSummary(cmd.OutOrStdout(), res.Audit, res.Outputs)
	return nil
}
