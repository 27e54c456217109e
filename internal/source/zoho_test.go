package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"invoicemerge/internal/normalize"
	"invoicemerge/pkg/models"
)

const zohoHeader = "Invoice Date,Invoice ID,Invoice Number,Invoice Status,Customer Name,Due Date,Total,Balance,Item Name,Item Desc,Quantity,Item Price,Item Total,Item Tax Amount\n"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func parseZoho(t *testing.T, body string, aliases map[string]string) *Result {
	t.Helper()
	p := NewZohoParser(normalize.NewAliasTable(aliases))
	res, err := p.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return res
}

func TestZohoParser_GroupsLineItems(t *testing.T) {
	body := "\ufeff" + zohoHeader +
		"2025-01-10,1001,GS-0001,Closed,Steck 013,2025-01-24,181.50,0,Website,Hosting 2025,1,100.00,100.00,21.00\n" +
		"2025-01-10,1001,GS-0001,Closed,Steck 013,2025-01-24,181.50,0,,Support,2.5,20,50.00,10.50\n" +
		"2025-01-12,1002,GS-0002,Sent,Acme,,60.50,60.50,,,,50,50,10.50\n"

	res := parseZoho(t, body, map[string]string{"Steck 013": "Steck013"})

	assert.Equal(t, models.SystemZohoBooks, res.System)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 3, res.LineRows)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Invoices, 2)

	first := res.Invoices[0]
	assert.Equal(t, "GS-0001", first.InvoiceNumber)
	assert.Equal(t, "1001", first.ExternalID)
	assert.Equal(t, "Steck013", first.CustomerName)
	assert.Equal(t, models.StatusPaid, first.Status)
	assert.True(t, first.AmountIncl.Equal(dec("181.50")))
	assert.True(t, first.OutstandingAmount.IsZero())
	assert.Equal(t, "ORD-20250110", first.OrderNumber)
	assert.Equal(t, "Geïmporteerd uit Zoho Books", first.Notes)
	require.NotNil(t, first.DueDate)
	assert.Equal(t, time.Date(2025, 1, 24, 0, 0, 0, 0, time.UTC), *first.DueDate)

	require.Len(t, first.LineItems, 2)
	assert.Equal(t, "Website — Hosting 2025", first.LineItems[0].Description)
	assert.True(t, first.LineItems[0].Total.Equal(dec("121.00")))
	assert.True(t, first.LineItems[0].HasVAT)
	assert.Equal(t, "Support", first.LineItems[1].Description)
	assert.True(t, first.LineItems[1].Quantity.Equal(dec("2.5")))

	second := res.Invoices[1]
	assert.Equal(t, models.StatusPending, second.Status)
	assert.True(t, second.OutstandingAmount.Equal(dec("60.50")))
	require.NotNil(t, second.DueDate)
	assert.Equal(t, time.Date(2025, 1, 26, 0, 0, 0, 0, time.UTC), *second.DueDate, "due date defaults to +14 days")
	require.Len(t, second.LineItems, 1)
	assert.Equal(t, "Dienstverlening", second.LineItems[0].Description)
	assert.True(t, second.LineItems[0].Quantity.Equal(dec("1")), "empty quantity defaults to 1")
}

func TestZohoParser_SkipsRowsWithoutRequiredFields(t *testing.T) {
	body := zohoHeader +
		"2025-01-10,,GS-0001,Closed,Acme,,10,0,,,1,10,10,0\n" +
		"2025-01-10,1002,,Closed,Acme,,10,0,,,1,10,10,0\n" +
		"10-01-2025,1003,GS-0003,Closed,Acme,,10,0,,,1,10,10,0\n" +
		"2025-01-11,1004,GS-0004,Closed,Acme,,10,0,,,1,10,10,0\n"

	res := parseZoho(t, body, nil)

	require.Len(t, res.Invoices, 1)
	assert.Equal(t, "GS-0004", res.Invoices[0].InvoiceNumber)
	assert.Equal(t, []Skip{
		{Row: 2, Reason: SkipMissingID},
		{Row: 3, Reason: SkipMissingNumber},
		{Row: 4, Reason: SkipBadDate},
	}, res.Skipped)
	assert.Equal(t, map[SkipReason]int{SkipMissingID: 1, SkipMissingNumber: 1, SkipBadDate: 1}, res.SkipCounts())
	assert.Equal(t, []SkipReason{SkipMissingID, SkipMissingNumber, SkipBadDate}, res.SkipReasons())
}

func TestZohoStatus(t *testing.T) {
	cases := []struct {
		name        string
		total       string
		balance     string
		text        string
		status      models.Status
		outstanding string
	}{
		{"credit note", "-50.00", "0", "Closed", models.StatusCancelled, "0"},
		{"credit note with balance", "-50.00", "20", "Open", models.StatusCancelled, "0"},
		{"open balance", "100.00", "40.00", "Partially Paid", models.StatusPending, "40.00"},
		{"closed with balance stays pending", "100.00", "40.00", "Closed", models.StatusPending, "40.00"},
		{"closed", "100.00", "0", "Closed", models.StatusPaid, "0"},
		{"paid", "100.00", "0", "paid", models.StatusPaid, "0"},
		{"sent without balance", "100.00", "0", "Sent", models.StatusPending, "0"},
		{"overpaid", "100.00", "-5", "Overdue", models.StatusPending, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, outstanding := zohoStatus(dec(tc.total), dec(tc.balance), tc.text)
			assert.Equal(t, tc.status, status)
			assert.True(t, outstanding.Equal(dec(tc.outstanding)), "outstanding = %s", outstanding)
		})
	}
}

func TestZohoParser_NegativeTotalIsStoredUnsigned(t *testing.T) {
	body := zohoHeader + "2025-02-01,2001,CN-0001,Closed,Acme,,\"-1.185,80\",0,,,1,-980,-980,-205.80\n"

	res := parseZoho(t, body, nil)

	require.Len(t, res.Invoices, 1)
	inv := res.Invoices[0]
	assert.Equal(t, models.StatusCancelled, inv.Status)
	assert.True(t, inv.AmountIncl.Equal(dec("1185.80")))
	assert.False(t, inv.LineItems[0].HasVAT)
}

func TestZohoParser_EmptyInput(t *testing.T) {
	res := parseZoho(t, "", nil)
	assert.Empty(t, res.Invoices)
	assert.Zero(t, res.Rows)
}

func TestParseFile_MissingInput(t *testing.T) {
	_, err := ParseFile(NewZohoParser(nil), filepath.Join(t.TempDir(), "absent.csv"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputMissing))
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, models.SystemZohoBooks, srcErr.Source)
	assert.Equal(t, "Open", srcErr.Op)
}

func TestParseFile_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zoho.csv")
	body := zohoHeader + "2025-01-10,1001,GS-0001,Closed,Acme,,10,0,,,1,10,10,0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	res, err := ParseFile(NewZohoParser(nil), path)

	require.NoError(t, err)
	require.Len(t, res.Invoices, 1)
}
