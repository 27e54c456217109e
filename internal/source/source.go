// Package source turns bookkeeping exports into canonical invoices.
//
// Each export format has its own Parser. Parsers never fail on bad rows: a row
// that lacks a required field is returned as a Skip with a typed reason, so the
// audit report can enumerate what was dropped and why.
package source

import (
	"io"
	"sort"

	"invoicemerge/pkg/models"
)

// Parser converts one export into canonical invoices
type Parser interface {
	// System returns the external_system value of the invoices this parser produces
	System() string

	// Parse reads the whole export. Only I/O and decode failures are errors.
	Parse(r io.Reader) (*Result, error)
}

// SkipReason explains why a row produced no invoice or line item
type SkipReason string

const (
	SkipMissingID     SkipReason = "missing_invoice_id"
	SkipMissingNumber SkipReason = "missing_invoice_number"
	SkipBadDate       SkipReason = "unparseable_invoice_date"
	SkipShortRow      SkipReason = "too_few_fields"
)

// Skip is the outcome of a row that was dropped
type Skip struct {
	Row    int        // 1-based line number in the input
	Reason SkipReason // why the row was dropped
}

// Result is what a parser produced from one export
type Result struct {
	System string

	// Invoices in first-appearance order
	Invoices []*models.Invoice

	// Rows is the number of data rows read (excluding headers and preamble)
	Rows int

	// LineRows is the number of rows that contributed a line item
	LineRows int

	Skipped []Skip

	// HeaderNotFound is set when the export has no recognisable header line
	HeaderNotFound bool
}

// SkipCounts aggregates skips per reason
func (r *Result) SkipCounts() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// SkipReasons returns the distinct reasons in sorted order
func (r *Result) SkipReasons() []SkipReason {
	counts := r.SkipCounts()
	reasons := make([]SkipReason, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

func (r *Result) skip(row int, reason SkipReason) {
	r.Skipped = append(r.Skipped, Skip{Row: row, Reason: reason})
}
