package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"invoicemerge/internal/logger"
	"invoicemerge/internal/sqlgen"
)

// DefaultRulesFile is read when RULES_FILE is not set. It may be absent.
const DefaultRulesFile = "configs/rules.yaml"

type Config struct {
	// Input exports
	ZohoCSVPath           string `validate:"required"`
	EBoekhoudenExportPath string `validate:"required"`

	// Output artefacts
	OutputSQL    string `validate:"required"`
	OutputReport string `validate:"required"`
	OutputXLSX   string

	// Business rules (customer aliases, source overrides)
	RulesFile string `validate:"required"`

	// Target schema
	CustomerCountry string `validate:"required,len=2,uppercase"`
	CustomersTable  string `validate:"required"`
	InvoicesTable   string `validate:"required"`

	// Database, only needed by the apply command
	DatabaseURL string

	// Logging Configuration
	LogLevel      string `validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat     string `validate:"oneof=json console"`
	LogTimeFormat string
	LogOutput     string `validate:"required"`
}

func Load() (*Config, error) {
	defaults := sqlgen.DefaultOptions()

	config := &Config{
		ZohoCSVPath:           getEnv("ZOHO_CSV_PATH", "zoho.csv"),
		EBoekhoudenExportPath: getEnv("EBOEKHOUDEN_EXPORT_PATH", "eboekhouden.tsv"),
		OutputSQL:             getEnv("OUTPUT_SQL", "import_all_invoices_deduped.sql"),
		OutputReport:          getEnv("OUTPUT_REPORT", "import_all_invoices_deduped_report.json"),
		OutputXLSX:            getEnv("OUTPUT_XLSX", ""),
		RulesFile:             getEnv("RULES_FILE", DefaultRulesFile),
		CustomerCountry:       getEnv("CUSTOMER_COUNTRY", defaults.CustomerCountry),
		CustomersTable:        getEnv("CUSTOMERS_TABLE", defaults.CustomersTable),
		InvoicesTable:         getEnv("INVOICES_TABLE", defaults.InvoicesTable),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// RulesFileExplicit reports whether the rules file was chosen by the user
// rather than defaulted. Only an explicit file must exist.
func (c *Config) RulesFileExplicit() bool {
	return c.RulesFile != DefaultRulesFile
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// SQLOptions returns the target schema for the generated script
func (c *Config) SQLOptions() sqlgen.Options {
	opts := sqlgen.DefaultOptions()
	opts.CustomersTable = c.CustomersTable
	opts.InvoicesTable = c.InvoicesTable
	opts.CustomerCountry = c.CustomerCountry
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
