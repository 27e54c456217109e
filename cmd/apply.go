package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"invoicemerge/internal/database"
	"invoicemerge/internal/logger"
)

var errNoDatabaseURL = errors.New("DATABASE_URL environment variable is required")

var applyCmd = &cobra.Command{
	Use:   "apply [script.sql]",
	Short: "Apply a generated import script to PostgreSQL",
	Long: `Apply runs a script produced by invoicemerge against the database in DATABASE_URL.

The script carries its own transaction, so a failure leaves the database
unchanged. Applying the same script twice only refreshes updated_at.

Without an argument the script at OUTPUT_SQL is applied.`,
	Example: `  DATABASE_URL=postgres://app@localhost:5432/app invoicemerge apply import_all_invoices_deduped.sql`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("apply")

	c, err := loadedConfig()
	if err != nil {
		return err
	}
	if c.DatabaseURL == "" {
		return errNoDatabaseURL
	}

	path := c.OutputSQL
	if len(args) > 0 {
		path = args[0]
	}
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	log.Info().
		Str("script", path).
		Int("bytes", len(script)).
		Msg("Applying import script")

	statements, err := database.ApplyScript(cmd.Context(), c.DatabaseURL, string(script))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Applied %s (%d new invoices)\n", path, database.InsertedRows(statements))
	return nil
}
