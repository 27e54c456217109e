package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"invoicemerge/internal/logger"
	"invoicemerge/internal/normalize"
	"invoicemerge/pkg/models"
)

// Zoho Books export columns
const (
	zohoColInvoiceID     = "Invoice ID"
	zohoColInvoiceNumber = "Invoice Number"
	zohoColInvoiceDate   = "Invoice Date"
	zohoColDueDate       = "Due Date"
	zohoColCustomer      = "Customer Name"
	zohoColTotal         = "Total"
	zohoColBalance       = "Balance"
	zohoColStatus        = "Invoice Status"
	zohoColQuantity      = "Quantity"
	zohoColItemPrice     = "Item Price"
	zohoColItemTotal     = "Item Total"
	zohoColItemTax       = "Item Tax Amount"
	zohoColItemName      = "Item Name"
	zohoColItemDesc      = "Item Desc"
)

const (
	zohoNotes              = "Geïmporteerd uit Zoho Books"
	defaultItemDescription = "Dienstverlening"
	zohoMaxDescription     = 300
	maxNotesLength         = 500
)

// ZohoParser reads the Zoho Books invoice CSV, which repeats the invoice-level
// columns on every line-item row.
type ZohoParser struct {
	aliases *normalize.AliasTable
	log     zerolog.Logger
}

// NewZohoParser creates a parser that resolves customer names through aliases
func NewZohoParser(aliases *normalize.AliasTable) *ZohoParser {
	return &ZohoParser{
		aliases: aliases,
		log:     logger.WithComponent("zoho-parser"),
	}
}

// System implements Parser.
func (p *ZohoParser) System() string {
	return models.SystemZohoBooks
}

// Parse implements Parser. Rows are grouped by Invoice ID; the first row of a
// group supplies the invoice-level fields and every row adds one line item.
func (p *ZohoParser) Parse(r io.Reader) (*Result, error) {
	const op = "Parse"

	cr := csv.NewReader(newTextReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Result{System: p.System()}, nil
	}
	if err != nil {
		return nil, NewSourceError(op, p.System(), "", fmt.Errorf("%w: header: %v", ErrDecodeFailed, err))
	}
	cols := indexColumns(header)

	result := &Result{System: p.System()}
	byID := make(map[string]*models.Invoice)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, NewSourceError(op, p.System(), "", fmt.Errorf("%w: %v", ErrDecodeFailed, err))
		}
		line, _ := cr.FieldPos(0)
		result.Rows++

		row := csvRow{cols: cols, rec: rec}
		invID := row.get(zohoColInvoiceID)
		invNo := row.get(zohoColInvoiceNumber)
		if invID == "" {
			result.skip(line, SkipMissingID)
			continue
		}
		if invNo == "" {
			result.skip(line, SkipMissingNumber)
			continue
		}
		invDate, ok := normalize.ParseDate(row.get(zohoColInvoiceDate), normalize.DialectISO)
		if !ok {
			p.log.Debug().Int("row", line).Str("invoice_number", invNo).Msg("Skipping row with unparseable invoice date")
			result.skip(line, SkipBadDate)
			continue
		}

		inv, seen := byID[invID]
		if !seen {
			inv = p.newInvoice(row, invID, invNo, invDate)
			byID[invID] = inv
			result.Invoices = append(result.Invoices, inv)
		}
		inv.LineItems = append(inv.LineItems, zohoLineItem(row))
		result.LineRows++
	}

	p.log.Info().
		Int("rows", result.Rows).
		Int("invoices", len(result.Invoices)).
		Int("skipped", len(result.Skipped)).
		Msg("Zoho Books export parsed")

	return result, nil
}

func (p *ZohoParser) newInvoice(row csvRow, invID, invNo string, invDate time.Time) *models.Invoice {
	total := normalize.ParseMoney(row.get(zohoColTotal))
	balance := normalize.ParseMoney(row.get(zohoColBalance))
	status, outstanding := zohoStatus(total, balance, row.get(zohoColStatus))

	due, ok := normalize.ParseDate(row.get(zohoColDueDate), normalize.DialectISO)
	if !ok {
		due = invDate.AddDate(0, 0, models.DefaultPaymentTermDays)
	}

	return &models.Invoice{
		InvoiceNumber:     invNo,
		ExternalID:        invID,
		ExternalSystem:    models.SystemZohoBooks,
		InvoiceDate:       invDate,
		DueDate:           &due,
		CustomerName:      p.aliases.Resolve(row.get(zohoColCustomer)),
		AmountIncl:        total.Abs(),
		OutstandingAmount: outstanding,
		Status:            status,
		OrderNumber:       normalize.OrderNumber(invDate),
		Notes:             normalize.Truncate(zohoNotes, maxNotesLength),
	}
}

// zohoStatus maps the invoice total, open balance and Zoho status text to a
// status and outstanding amount. A positive balance wins over a "closed" status.
func zohoStatus(total, balance decimal.Decimal, statusText string) (models.Status, decimal.Decimal) {
	switch {
	case total.IsNegative():
		return models.StatusCancelled, decimal.Zero
	case balance.IsPositive():
		return models.StatusPending, balance
	}

	switch strings.ToLower(strings.TrimSpace(statusText)) {
	case "closed", "paid":
		return models.StatusPaid, decimal.Zero
	}
	// balance is zero or negative here; an overpaid invoice owes nothing
	return models.StatusPending, decimal.Max(balance, decimal.Zero)
}

func zohoLineItem(row csvRow) models.LineItem {
	qtyText := row.get(zohoColQuantity)
	if qtyText == "" {
		qtyText = "1"
	}
	subtotal := normalize.ParseMoney(row.get(zohoColItemTotal))
	tax := normalize.ParseMoney(row.get(zohoColItemTax))

	description := normalize.JoinDescription(row.get(zohoColItemName), row.get(zohoColItemDesc))
	if description == "" {
		description = defaultItemDescription
	}

	return models.LineItem{
		Description: normalize.Truncate(description, zohoMaxDescription),
		Quantity:    normalize.ParseMoney(qtyText),
		UnitPrice:   normalize.ParseMoney(row.get(zohoColItemPrice)),
		HasVAT:      tax.IsPositive(),
		Subtotal:    subtotal,
		VATAmount:   tax,
		Total:       normalize.Round2(subtotal.Add(tax)),
	}
}

// csvRow gives header-name access to one CSV record
type csvRow struct {
	cols map[string]int
	rec  []string
}

func (r csvRow) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

// indexColumns maps trimmed header names to their position; the first occurrence wins
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}
