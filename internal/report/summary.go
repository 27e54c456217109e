package report

import (
	"fmt"
	"io"
)

// Outputs names the files a run wrote. XLSX is empty when no workbook was requested.
type Outputs struct {
	SQL    string
	Report string
	XLSX   string
}

// PrintSummary writes the short human-readable result of a run
func PrintSummary(w io.Writer, a *Audit, out Outputs) {
	fmt.Fprintf(w, "✅ Wrote %s (%d invoices) and %s\n", out.SQL, a.MergedCount, out.Report)
	if out.XLSX != "" {
		fmt.Fprintf(w, "✅ Wrote %s\n", out.XLSX)
	}
	fmt.Fprintf(w, "- Zoho invoices: %d (from %d line-rows)\n", a.ZohoCount, a.ZohoLineRows)
	fmt.Fprintf(w, "- e-boekhouden invoices: %d\n", a.EBoekCount)
	if a.EBoekError != "" {
		fmt.Fprintf(w, "- e-boekhouden error: %s\n", a.EBoekError)
	}
	fmt.Fprintf(w, "- Overlap invoice_numbers (Zoho preferred): %d\n", a.OverlapCount)
	if a.ConflictCount > 0 {
		fmt.Fprintf(w, "- Overlap total conflicts: %d\n", a.ConflictCount)
	}
	if n := len(a.Renamed); n > 0 {
		fmt.Fprintf(w, "- Renamed due to duplicate key: %d\n", n)
	}
	if n := a.SkippedRows(); n > 0 {
		fmt.Fprintf(w, "- Skipped rows: %d\n", n)
	}
}
