package sqlgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
	"invoicemerge/pkg/models"
)

// ErrInvalidIdentifier is returned for table names that are not plain (schema.)identifiers
var ErrInvalidIdentifier = errors.New("invalid SQL identifier")

var identifierRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// Options controls the target schema of the generated script
type Options struct {
	CustomersTable  string // customer dimension table
	InvoicesTable   string // invoice fact table
	CustomerCountry string // country for customers created by the script
	CustomerStatus  string // status for customers created by the script
}

// DefaultOptions targets public.customers and public.customer_invoices
func DefaultOptions() Options {
	return Options{
		CustomersTable:  "public.customers",
		InvoicesTable:   "public.customer_invoices",
		CustomerCountry: "NL",
		CustomerStatus:  "active",
	}
}

func (o Options) validate() error {
	for _, table := range []string{o.CustomersTable, o.InvoicesTable} {
		if !identifierRe.MatchString(table) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
		}
	}
	return nil
}

// StagedRow is one row of the invoice_data VALUES table
type StagedRow struct {
	RowNo             Int
	InvoiceNumber     Text
	InvoiceDate       Date
	DueDate           Literal
	CustomerName      Text
	Amount            Numeric
	OutstandingAmount Numeric
	Status            Text
	OrderNumber       Text
	Notes             Text
	LineItems         JSONB
	ExternalID        Text
	ExternalSystem    Text
}

// stagedColumns lists the invoice_data columns in StagedRow.values order
var stagedColumns = []string{
	"row_no",
	"invoice_number",
	"invoice_date",
	"due_date",
	"customer_name",
	"amount",
	"outstanding_amount",
	"status",
	"order_number",
	"notes",
	"line_items",
	"external_id",
	"external_system",
}

func (r StagedRow) values() []Literal {
	return []Literal{
		r.RowNo,
		r.InvoiceNumber,
		r.InvoiceDate,
		r.DueDate,
		r.CustomerName,
		r.Amount,
		r.OutstandingAmount,
		r.Status,
		r.OrderNumber,
		r.Notes,
		r.LineItems,
		r.ExternalID,
		r.ExternalSystem,
	}
}

// Request is the typed form of an upsert script
type Request struct {
	Options Options
	Rows    []StagedRow

	// TotalAmount is the sum of all staged amounts, for the script header
	TotalAmount decimal.Decimal
}

// jsonLineItem fixes the number formatting of line_items entries
type jsonLineItem struct {
	Description string      `json:"description"`
	Quantity    json.Number `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	HasVAT      bool        `json:"has_vat"`
	Subtotal    json.Number `json:"subtotal"`
	VATAmount   json.Number `json:"vat_amount"`
	Total       json.Number `json:"total"`
}

func moneyNumber(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// Build converts the merged invoices, in order, into a Request
func Build(invoices []*models.Invoice, opts Options) (*Request, error) {
	const op = "Build"

	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := &Request{Options: opts, TotalAmount: decimal.Zero}
	for i, inv := range invoices {
		items := make([]jsonLineItem, 0, len(inv.LineItems))
		for _, li := range inv.LineItems {
			items = append(items, jsonLineItem{
				Description: li.Description,
				Quantity:    json.Number(li.Quantity.Round(2).String()),
				UnitPrice:   moneyNumber(li.UnitPrice),
				HasVAT:      li.HasVAT,
				Subtotal:    moneyNumber(li.Subtotal),
				VATAmount:   moneyNumber(li.VATAmount),
				Total:       moneyNumber(li.Total),
			})
		}
		lineItems, err := NewJSONB(items)
		if err != nil {
			return nil, fmt.Errorf("%s: invoice %s: %w", op, inv.InvoiceNumber, err)
		}

		var due Literal = Null{Cast: "date"}
		if inv.DueDate != nil {
			due = Date(*inv.DueDate)
		}

		amount := inv.AmountIncl.Round(2)
		req.TotalAmount = req.TotalAmount.Add(amount)
		req.Rows = append(req.Rows, StagedRow{
			RowNo:             Int(i + 1),
			InvoiceNumber:     Text(inv.InvoiceNumber),
			InvoiceDate:       Date(inv.InvoiceDate),
			DueDate:           due,
			CustomerName:      Text(inv.CustomerName),
			Amount:            Numeric(amount),
			OutstandingAmount: Numeric(inv.OutstandingAmount.Round(2)),
			Status:            Text(inv.Status),
			OrderNumber:       Text(inv.OrderNumber),
			Notes:             Text(inv.Notes),
			LineItems:         lineItems,
			ExternalID:        Text(inv.EffectiveExternalID()),
			ExternalSystem:    Text(inv.ExternalSystem),
		})
	}
	return req, nil
}
