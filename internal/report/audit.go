// Package report produces the artefacts that describe an import run: the JSON
// audit document, an optional spreadsheet and the console summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"invoicemerge/internal/merge"
	"invoicemerge/internal/source"
)

// ErrorHeaderNotFound is the eboekhouden_error value for an export without a header line
const ErrorHeaderNotFound = "header_not_found"

// Inputs names the files a run read
type Inputs struct {
	Zoho        string `json:"zoho"`
	EBoekhouden string `json:"eboekhouden"`
	Rules       string `json:"rules,omitempty"`
}

// Audit is the JSON report written next to the SQL script
type Audit struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Inputs      Inputs    `json:"inputs"`

	ZohoLineRows int                       `json:"zoho_line_rows"`
	ZohoSkipped  map[source.SkipReason]int `json:"zoho_skipped_rows"`
	EBoekSkipped map[source.SkipReason]int `json:"eboekhouden_skipped_rows"`
	EBoekError   string                    `json:"eboekhouden_error,omitempty"`

	*merge.Report
}

// NewAudit assembles the audit document from the parser results and the merge report
func NewAudit(runID string, at time.Time, inputs Inputs, zoho, eboek *source.Result, rep *merge.Report) *Audit {
	a := &Audit{
		RunID:        runID,
		GeneratedAt:  at.UTC(),
		Inputs:       inputs,
		ZohoLineRows: zoho.LineRows,
		ZohoSkipped:  zoho.SkipCounts(),
		EBoekSkipped: eboek.SkipCounts(),
		Report:       rep,
	}
	if eboek.HeaderNotFound {
		a.EBoekError = ErrorHeaderNotFound
	}
	return a
}

// SkippedRows is the total number of rows dropped by both parsers
func (a *Audit) SkippedRows() int {
	n := 0
	for _, c := range a.ZohoSkipped {
		n += c
	}
	for _, c := range a.EBoekSkipped {
		n += c
	}
	return n
}

// WriteJSON writes the audit as indented UTF-8 JSON
func (a *Audit) WriteJSON(w io.Writer) error {
	const op = "WriteJSON"

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
