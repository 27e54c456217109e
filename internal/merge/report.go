package merge

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MaxOverlapDetails caps the overlap list kept in the report
const MaxOverlapDetails = 200

// conflictTolerance is the largest total difference that is not a conflict
var conflictTolerance = decimal.New(1, -2)

// Report is the audit trail of one merge
type Report struct {
	MergedCount int `json:"merged_invoice_count"`
	ZohoCount   int `json:"zoho_invoice_count"`
	EBoekCount  int `json:"eboekhouden_invoice_count"`

	OverlapCount   int       `json:"overlap_invoice_numbers"`
	OverlapDetails []Overlap `json:"overlap_details"`

	ConflictCount int        `json:"overlap_conflicts_count"`
	Conflicts     []Conflict `json:"overlap_conflicts"`

	// MultipleZohoSameNumber counts Zoho invoices sharing one invoice number
	MultipleZohoSameNumber map[string]int `json:"conflicts_multiple_zoho_same_number"`

	Renamed []Rename `json:"renamed_due_to_customer_dupe"`
}

// Overlap describes an invoice number present in both exports
type Overlap struct {
	InvoiceNumber string      `json:"invoice_number"`
	Used          string      `json:"used"`
	Zoho          OverlapSide `json:"zoho"`
	EBoekhouden   OverlapSide `json:"eboekhouden"`
}

// OverlapSide is one export's view of an overlapping invoice
type OverlapSide struct {
	Customer string      `json:"customer"`
	Date     string      `json:"date"`
	Total    json.Number `json:"total"`
}

// Conflict is an overlap whose totals differ by more than one cent
type Conflict struct {
	InvoiceNumber    string      `json:"invoice_number"`
	ZohoTotal        json.Number `json:"zoho_total"`
	EBoekhoudenTotal json.Number `json:"eboekhouden_total"`
	Override         *string     `json:"override"`
}

// Rename records an invoice number rewritten to resolve a key collision
type Rename struct {
	OriginalInvoiceNumber string `json:"original_invoice_number"`
	NewInvoiceNumber      string `json:"new_invoice_number"`
	Customer              string `json:"customer"`
	Reason                string `json:"reason"`
	Source                string `json:"source"`
}

// money renders an amount as a bare JSON number with two decimals
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
