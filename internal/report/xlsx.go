package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"invoicemerge/internal/merge"
	"invoicemerge/pkg/models"
)

const (
	sheetInvoices  = "Invoices"
	sheetConflicts = "Conflicts"
)

var invoiceHeaders = []interface{}{
	"Invoice Date",
	"Invoice Number",
	"Customer",
	"Amount",
	"Outstanding",
	"Status",
	"Due Date",
	"Order Number",
	"External System",
	"External ID",
}

var conflictHeaders = []interface{}{
	"Invoice Number",
	"Zoho Total",
	"e-boekhouden Total",
	"Override",
}

// WriteXLSX writes a workbook with the merged invoices and the overlap conflicts
func WriteXLSX(w io.Writer, invoices []*models.Invoice, rep *merge.Report) error {
	const op = "WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetInvoices); err != nil {
		return fmt.Errorf("%s: failed to rename sheet: %w", op, err)
	}
	if _, err := f.NewSheet(sheetConflicts); err != nil {
		return fmt.Errorf("%s: failed to create sheet: %w", op, err)
	}

	rows := [][]interface{}{invoiceHeaders}
	for _, inv := range invoices {
		rows = append(rows, invoiceToValues(inv))
	}
	if err := writeRows(f, sheetInvoices, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows = [][]interface{}{conflictHeaders}
	if rep != nil {
		for _, c := range rep.Conflicts {
			rows = append(rows, conflictToValues(c))
		}
	}
	if err := writeRows(f, sheetConflicts, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: failed to write workbook: %w", op, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func invoiceToValues(inv *models.Invoice) []interface{} {
	due := ""
	if inv.DueDate != nil {
		due = inv.DueDate.Format("2006-01-02")
	}
	return []interface{}{
		inv.InvoiceDate.Format("2006-01-02"),
		inv.InvoiceNumber,
		inv.CustomerName,
		inv.AmountIncl.Round(2).InexactFloat64(),
		inv.OutstandingAmount.Round(2).InexactFloat64(),
		string(inv.Status),
		due,
		inv.OrderNumber,
		inv.ExternalSystem,
		inv.EffectiveExternalID(),
	}
}

func conflictToValues(c merge.Conflict) []interface{} {
	override := ""
	if c.Override != nil {
		override = *c.Override
	}
	return []interface{}{
		c.InvoiceNumber,
		c.ZohoTotal.String(),
		c.EBoekhoudenTotal.String(),
		override,
	}
}
