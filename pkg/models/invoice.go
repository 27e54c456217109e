package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the payment state written to customer_invoices.status
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// External system identifiers as stored in customer_invoices.external_system
const (
	SystemZohoBooks   = "zoho_books"
	SystemEBoekhouden = "eboekhouden"
)

// DefaultPaymentTermDays is used when a source has no due date
const DefaultPaymentTermDays = 14

type Invoice struct {
	// Identity
	InvoiceNumber  string // Human-readable invoice number, rewritten at most once by the merge stage
	ExternalID     string // Native identifier in the source system
	ExternalSystem string // SystemZohoBooks or SystemEBoekhouden

	// Dates (UTC midnight, no time component)
	InvoiceDate time.Time
	DueDate     *time.Time

	// Party, after alias resolution
	CustomerName string

	// Amounts (2 places, half-up)
	AmountIncl        decimal.Decimal // VAT-inclusive total, never negative
	OutstandingAmount decimal.Decimal // 0 unless Status is pending

	Status      Status
	OrderNumber string // ORD-YYYYMMDD, not unique
	Notes       string

	LineItems []LineItem
}

// LineItem is one entry of the line_items JSON array
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	HasVAT      bool            `json:"has_vat"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	Total       decimal.Decimal `json:"total"`
}

// MergeKey identifies one surviving invoice in the merged set
type MergeKey struct {
	Customer      string
	InvoiceNumber string
}

// MergeKey returns the (customer, invoice number) key used for deduplication
func (inv *Invoice) MergeKey() MergeKey {
	return MergeKey{
		Customer:      strings.ToLower(strings.TrimSpace(inv.CustomerName)),
		InvoiceNumber: strings.TrimSpace(inv.InvoiceNumber),
	}
}

// Rename rewrites the invoice number when the merge stage resolves a collision
func (inv *Invoice) Rename(number string) {
	inv.InvoiceNumber = number
}

// EffectiveExternalID falls back to the invoice number for sources without their own id
func (inv *Invoice) EffectiveExternalID() string {
	if inv.ExternalID != "" {
		return inv.ExternalID
	}
	return inv.InvoiceNumber
}
