package merge_test

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"invoicemerge/internal/merge"
	"invoicemerge/pkg/models"
)

// Example demonstrates merging overlapping exports where Zoho Books wins.
func Example() {
	day := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	zoho := []*models.Invoice{{
		InvoiceNumber:  "INV-1",
		ExternalSystem: models.SystemZohoBooks,
		InvoiceDate:    day,
		CustomerName:   "Acme",
		AmountIncl:     decimal.RequireFromString("100.00"),
	}}
	eboek := []*models.Invoice{
		{
			InvoiceNumber:  "INV-1",
			ExternalSystem: models.SystemEBoekhouden,
			InvoiceDate:    day,
			CustomerName:   "Acme",
			AmountIncl:     decimal.RequireFromString("150.00"),
		},
		{
			InvoiceNumber:  "INV-2",
			ExternalSystem: models.SystemEBoekhouden,
			InvoiceDate:    day.AddDate(0, 0, 1),
			CustomerName:   "Acme",
			AmountIncl:     decimal.RequireFromString("75.00"),
		},
	}

	merged, report := merge.NewEngine(nil).Merge(zoho, eboek)

	for _, inv := range merged {
		fmt.Printf("%s %s %s %s\n", inv.InvoiceDate.Format("2006-01-02"), inv.InvoiceNumber, inv.ExternalSystem, inv.AmountIncl.StringFixed(2))
	}
	for _, c := range report.Conflicts {
		fmt.Printf("conflict %s: zoho %s, eboekhouden %s\n", c.InvoiceNumber, c.ZohoTotal, c.EBoekhoudenTotal)
	}

	// Output:
	// 2025-01-05 INV-1 zoho_books 100.00
	// 2025-01-06 INV-2 eboekhouden 75.00
	// conflict INV-1: zoho 100.00, eboekhouden 150.00
}

// ExampleNewEngine demonstrates forcing e-boekhouden for one invoice number.
func ExampleNewEngine() {
	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	overrides := map[string]string{"GS-0503": models.SystemEBoekhouden}

	zoho := []*models.Invoice{{InvoiceNumber: "GS-0503", ExternalSystem: models.SystemZohoBooks, InvoiceDate: day, CustomerName: "Acme"}}
	eboek := []*models.Invoice{{InvoiceNumber: "GS-0503", ExternalSystem: models.SystemEBoekhouden, InvoiceDate: day, CustomerName: "Acme"}}

	merged, report := merge.NewEngine(overrides).Merge(zoho, eboek)

	fmt.Println(len(merged), merged[0].ExternalSystem, report.OverlapDetails[0].Used)

	// Output:
	// 1 eboekhouden eboekhouden
}
