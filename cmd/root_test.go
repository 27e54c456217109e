package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicemerge/internal/config"
)

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ZohoCSVPath:           filepath.Join(dir, "zoho.csv"),
		EBoekhoudenExportPath: filepath.Join(dir, "eboekhouden.tsv"),
		OutputSQL:             filepath.Join(dir, "out.sql"),
		OutputReport:          filepath.Join(dir, "report.json"),
		RulesFile:             config.DefaultRulesFile,
		CustomerCountry:       "NL",
		CustomersTable:        "public.customers",
		InvoicesTable:         "public.customer_invoices",
	}, dir
}

func execute(t *testing.T, c *config.Config, args ...string) (string, error) {
	t.Helper()
	cfg, cfgErr = c, nil
	t.Cleanup(func() { cfg, cfgErr = nil, nil })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Import(t *testing.T) {
	c, dir := testConfig(t)
	zoho := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(zoho, []byte(
		"Invoice Date,Invoice ID,Invoice Number,Invoice Status,Customer Name,Total,Balance,Quantity,Item Price,Item Total,Item Tax Amount\n"+
			"2025-01-05,1,INV-1,Sent,Acme,121.00,121.00,1,100,100,21\n"), 0o644))
	require.NoError(t, os.WriteFile(c.EBoekhoudenExportPath, []byte("no table here\n"), 0o644))

	out, err := execute(t, c, zoho)
	require.NoError(t, err)

	assert.Contains(t, out, "✅ Wrote "+c.OutputSQL+" (1 invoices) and "+c.OutputReport)
	assert.Contains(t, out, "- e-boekhouden error: header_not_found")
	assert.FileExists(t, c.OutputSQL)
	assert.FileExists(t, c.OutputReport)
}

func TestRootCommand_MissingInput(t *testing.T) {
	c, _ := testConfig(t)

	_, err := execute(t, c)
	assert.Error(t, err)
	assert.NoFileExists(t, c.OutputSQL)
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	c, _ := testConfig(t)

	_, err := execute(t, c, "a.csv", "b.tsv", "c")
	assert.Error(t, err)
}

func TestRootCommand_NoConfig(t *testing.T) {
	_, err := execute(t, nil)
	assert.ErrorIs(t, err, errNoConfig)
}

func TestApplyCommand_RequiresDatabaseURL(t *testing.T) {
	c, _ := testConfig(t)

	_, err := execute(t, c, "apply", "script.sql")
	assert.ErrorIs(t, err, errNoDatabaseURL)
}
