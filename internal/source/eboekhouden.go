package source

import (
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

// e-boekhouden export columns
const (
	ebColDate       = "Datum"
	ebColNumber     = "Nummer"
	ebColCustomer   = "Relatie"
	ebColAmountExcl = "Bedrag (Excl)"
	ebColAmountIncl = "Bedrag (Incl)"
	ebColText       = "Factuurtekst"
)

const (
	ebNotes          = "Geïmporteerd uit e-boekhouden"
	ebMaxDescription = 200
	ebMinFields      = 5
)

// headerMarkers must all occur on the header line, in any order
var headerMarkers = []string{ebColDate, ebColNumber, ebColCustomer}

// EBoekhoudenParser reads the e-boekhouden invoice overview. The export starts
// with a free-form preamble; the table begins at the first line carrying all
// header markers.
type EBoekhoudenParser struct {
	// Delimiter separates cells in the header and data lines
	Delimiter string

	aliases *normalize.AliasTable
	log     zerolog.Logger
}

// NewEBoekhoudenParser creates a tab-delimited parser that resolves customer names through aliases
func NewEBoekhoudenParser(aliases *normalize.AliasTable) *EBoekhoudenParser {
	return &EBoekhoudenParser{
		Delimiter: "\t",
		aliases:   aliases,
		log:       logger.WithComponent("eboekhouden-parser"),
	}
}

// System implements Parser.
func (p *EBoekhoudenParser) System() string {
	return models.SystemEBoekhouden
}

// Parse implements Parser. Every data row yields exactly one invoice with one
// line item, in source order. A missing header is reported through
// Result.HeaderNotFound, not as an error.
func (p *EBoekhoudenParser) Parse(r io.Reader) (*Result, error) {
	const op = "Parse"

	data, err := io.ReadAll(newTextReader(r))
	if err != nil {
		return nil, NewSourceError(op, p.System(), "", fmt.Errorf("%w: %v", ErrDecodeFailed, err))
	}
	lines := splitLines(string(data))
	result := &Result{System: p.System()}

	headerIdx := p.findHeader(lines)
	if headerIdx < 0 {
		p.log.Warn().Int("lines", len(lines)).Msg("No header line found, export contributes no invoices")
		result.HeaderNotFound = true
		return result, nil
	}

	header := strings.Split(lines[headerIdx], p.Delimiter)
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	for i := headerIdx + 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1
		result.Rows++

		parts := strings.Split(line, p.Delimiter)
		if len(parts) < ebMinFields {
			result.skip(lineNo, SkipShortRow)
			continue
		}
		row := zipRow(header, parts)

		invDate, ok := normalize.ParseDate(row[ebColDate], normalize.DialectNL)
		if !ok {
			p.log.Debug().Int("row", lineNo).Msg("Skipping row with unparseable invoice date")
			result.skip(lineNo, SkipBadDate)
			continue
		}
		invNo := strings.TrimSpace(row[ebColNumber])
		if invNo == "" {
			result.skip(lineNo, SkipMissingNumber)
			continue
		}

		result.Invoices = append(result.Invoices, p.newInvoice(row, invNo, invDate))
		result.LineRows++
	}

	p.log.Info().
		Int("rows", result.Rows).
		Int("invoices", len(result.Invoices)).
		Int("skipped", len(result.Skipped)).
		Msg("e-boekhouden export parsed")

	return result, nil
}

func (p *EBoekhoudenParser) findHeader(lines []string) int {
	for i, line := range lines {
		if hasAllMarkers(line) {
			return i
		}
	}
	return -1
}

func (p *EBoekhoudenParser) newInvoice(row map[string]string, invNo string, invDate time.Time) *models.Invoice {
	excl := normalize.ParseMoney(row[ebColAmountExcl])
	incl := normalize.ParseMoney(row[ebColAmountIncl])

	text := strings.TrimSpace(row[ebColText])
	notes := text
	description := normalize.Truncate(text, ebMaxDescription)
	if text == "" {
		notes = ebNotes
		description = defaultItemDescription
	}

	status := models.StatusPaid
	vat := normalize.Round2(incl.Sub(excl).Abs())
	if incl.IsNegative() {
		status = models.StatusCancelled
		vat = decimal.Zero
	}

	due := invDate.AddDate(0, 0, models.DefaultPaymentTermDays)

	return &models.Invoice{
		InvoiceNumber:     invNo,
		ExternalID:        invNo,
		ExternalSystem:    models.SystemEBoekhouden,
		InvoiceDate:       invDate,
		DueDate:           &due,
		CustomerName:      p.aliases.Resolve(row[ebColCustomer]),
		AmountIncl:        incl.Abs(),
		OutstandingAmount: decimal.Zero,
		Status:            status,
		OrderNumber:       normalize.OrderNumber(invDate),
		Notes:             normalize.Truncate(notes, maxNotesLength),
		LineItems: []models.LineItem{{
			Description: description,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   excl.Abs(),
			HasVAT:      vat.IsPositive(),
			Subtotal:    excl.Abs(),
			VATAmount:   vat,
			Total:       incl.Abs(),
		}},
	}
}

func hasAllMarkers(line string) bool {
	for _, marker := range headerMarkers {
		if !strings.Contains(line, marker) {
			return false
		}
	}
	return true
}

// zipRow pairs header names with cells positionally; extra cells on either side are ignored
func zipRow(header, parts []string) map[string]string {
	row := make(map[string]string, len(header))
	for i := 0; i < len(header) && i < len(parts); i++ {
		if _, dup := row[header[i]]; !dup {
			row[header[i]] = parts[i]
		}
	}
	return row
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
