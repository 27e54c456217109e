package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"invoicemerge/internal/logger"
	"invoicemerge/internal/normalize"
)

// Rules holds the business rules that are data rather than code
type Rules struct {
	// CustomerAliases maps a raw export customer name to its canonical name
	CustomerAliases map[string]string `yaml:"customer_aliases" validate:"omitempty,dive,keys,required,endkeys,required"`

	// InvoiceSourceOverrides forces one source to win for an invoice number
	InvoiceSourceOverrides map[string]string `yaml:"invoice_source_overrides" validate:"omitempty,dive,keys,required,endkeys,oneof=zoho_books eboekhouden"`
}

// Aliases returns the alias table for the parsers
func (r *Rules) Aliases() *normalize.AliasTable {
	return normalize.NewAliasTable(r.CustomerAliases)
}

// LoadRules reads the YAML rules file at path. A missing file yields empty
// rules unless required is set.
func LoadRules(path string, required bool) (*Rules, error) {
	const op = "LoadRules"

	log := logger.WithComponent("config")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			log.Warn().Str("path", path).Msg("Rules file not found, continuing without aliases or overrides")
			return &Rules{}, nil
		}
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, path, err)
	}

	return ParseRules(data)
}

// ParseRules decodes and validates a rules document
func ParseRules(data []byte) (*Rules, error) {
	const op = "ParseRules"

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%s: failed to parse rules: %w", op, err)
	}
	if err := validator.New().Struct(&rules); err != nil {
		return nil, fmt.Errorf("%s: invalid rules: %w", op, err)
	}
	return &rules, nil
}
