// Package importer runs one invoice import end to end.
//
// A run reads the Zoho Books CSV and the e-boekhouden export, merges them,
// and writes three artefacts:
//   - the SQL upsert script (OUTPUT_SQL)
//   - the JSON audit report (OUTPUT_REPORT)
//   - optionally, a spreadsheet of the merged set (OUTPUT_XLSX)
//
// All artefacts are staged as temporary files in their target directory and
// renamed into place only after every one of them was written, so a failed run
// leaves the previous outputs untouched.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"invoicemerge/internal/config"
	"invoicemerge/internal/logger"
	"invoicemerge/internal/merge"
	"invoicemerge/internal/report"
	"invoicemerge/internal/source"
	"invoicemerge/internal/sqlgen"
	"invoicemerge/pkg/models"
)

// Inputs names the files of one run
type Inputs struct {
	ZohoPath        string
	EBoekhoudenPath string

	OutputSQL    string
	OutputReport string
	OutputXLSX   string // empty disables the workbook

	// RulesPath is recorded in the report only
	RulesPath string
}

// Result is what a successful run produced
type Result struct {
	RunID    string
	Invoices []*models.Invoice
	Script   string
	Audit    *report.Audit
	Outputs  report.Outputs
}

// Service runs imports with a fixed set of business rules and target schema
type Service struct {
	rules *config.Rules
	opts  sqlgen.Options
	now   func() time.Time
	log   zerolog.Logger
}

// NewService creates an import service. A nil rules value means no aliases and no overrides.
func NewService(rules *config.Rules, opts sqlgen.Options) *Service {
	if rules == nil {
		rules = &config.Rules{}
	}
	return &Service{
		rules: rules,
		opts:  opts,
		now:   time.Now,
		log:   logger.WithComponent("importer"),
	}
}

// Run executes one import. Missing or unreadable inputs abort the run before
// anything is written.
func (s *Service) Run(ctx context.Context, in Inputs) (*Result, error) {
	const op = "Run"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	runID := uuid.NewString()
	log := logger.WithRunID(s.log, runID)
	log.Info().
		Str("zoho", in.ZohoPath).
		Str("eboekhouden", in.EBoekhoudenPath).
		Int("aliases", len(s.rules.CustomerAliases)).
		Int("overrides", len(s.rules.InvoiceSourceOverrides)).
		Msg("Starting invoice import")

	aliases := s.rules.Aliases()
	zoho, err := source.ParseFile(source.NewZohoParser(aliases), in.ZohoPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	eboek, err := source.ParseFile(source.NewEBoekhoudenParser(aliases), in.EBoekhoudenPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged, mergeReport := merge.NewEngine(s.rules.InvoiceSourceOverrides).Merge(zoho.Invoices, eboek.Invoices)

	script, err := sqlgen.Generate(merged, s.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to render script: %w", op, err)
	}

	audit := report.NewAudit(runID, s.now(), report.Inputs{
		Zoho:        in.ZohoPath,
		EBoekhouden: in.EBoekhoudenPath,
		Rules:       in.RulesPath,
	}, zoho, eboek, mergeReport)

	artefacts := []artefact{
		{path: in.OutputSQL, write: func(w io.Writer) error {
			_, err := io.WriteString(w, script)
			return err
		}},
		{path: in.OutputReport, write: audit.WriteJSON},
	}
	if in.OutputXLSX != "" {
		artefacts = append(artefacts, artefact{path: in.OutputXLSX, write: func(w io.Writer) error {
			return report.WriteXLSX(w, merged, mergeReport)
		}})
	}
	if err := writeAll(artefacts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info().
		Int("invoices", len(merged)).
		Int("conflicts", mergeReport.ConflictCount).
		Int("skipped_rows", audit.SkippedRows()).
		Str("sql", in.OutputSQL).
		Str("report", in.OutputReport).
		Msg("Invoice import finished")

	return &Result{
		RunID:    runID,
		Invoices: merged,
		Script:   script,
		Audit:    audit,
		Outputs:  report.Outputs{SQL: in.OutputSQL, Report: in.OutputReport, XLSX: in.OutputXLSX},
	}, nil
}

type artefact struct {
	path  string
	write func(io.Writer) error
	tmp   string
}

// writeAll stages every artefact next to its target, then renames them into
// place. Staged files are removed when any step fails.
func writeAll(artefacts []artefact) (err error) {
	defer func() {
		if err != nil {
			for _, a := range artefacts {
				if a.tmp != "" {
					os.Remove(a.tmp)
				}
			}
		}
	}()

	for i := range artefacts {
		tmp, err := stage(artefacts[i].path, artefacts[i].write)
		if err != nil {
			return err
		}
		artefacts[i].tmp = tmp
	}
	for i := range artefacts {
		if err := os.Rename(artefacts[i].tmp, artefacts[i].path); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", artefacts[i].path, err)
		}
		artefacts[i].tmp = ""
	}
	return nil
}

func stage(path string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return f.Name(), nil
}
