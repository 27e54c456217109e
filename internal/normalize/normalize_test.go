package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"1.185,80", "1185.8"},
		{"1185.80", "1185.8"},
		{"-907,50", "-907.5"},
		{"-907.50", "-907.5"},
		{"12,5", "12.5"},
		{"1.234.567,89", "1234567.89"},
		{"  42 ", "42"},
		{"", "0"},
		{"n/a", "0"},
		{"1,234", "0"}, // comma without 1-2 trailing digits is not a decimal separator
	}
	for _, tc := range cases {
		got := ParseAmount(tc.in)
		assert.Truef(t, decimal.RequireFromString(tc.expected).Equal(got),
			"ParseAmount(%q) = %s, want %s", tc.in, got, tc.expected)
	}
}

func TestParseAmount_EUAndUSAgree(t *testing.T) {
	pairs := [][2]string{
		{"1.185,80", "1185.80"},
		{"0,01", "0.01"},
		{"-12.000,00", "-12000.00"},
		{"99,9", "99.9"},
	}
	for _, p := range pairs {
		assert.True(t, ParseAmount(p[0]).Equal(ParseAmount(p[1])), "%s vs %s", p[0], p[1])
	}
}

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, "10.01", Round2(decimal.RequireFromString("10.005")).StringFixed(2))
	assert.Equal(t, "-10.01", Round2(decimal.RequireFromString("-10.005")).StringFixed(2))
	assert.Equal(t, "10.00", Round2(decimal.RequireFromString("10.004")).StringFixed(2))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-03-07", DialectISO)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate(" 07-03-2025 ", DialectNL)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDate("07-03-2025", DialectISO)
	assert.False(t, ok)
	_, ok = ParseDate("2025-03-07", DialectNL)
	assert.False(t, ok)
	_, ok = ParseDate("", DialectISO)
	assert.False(t, ok)
}

func TestOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-20250307", OrderNumber(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)))
}

func TestAliasTable(t *testing.T) {
	table := NewAliasTable(map[string]string{
		"Steck 013":          "Steck013",
		" Best Bottles B.V.": "Jouwgeboortewijn ",
	})

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "Steck013", table.Resolve("Steck 013"))
	assert.Equal(t, "Jouwgeboortewijn", table.Resolve("  Best Bottles B.V."))
	assert.Equal(t, "Unknown BV", table.Resolve(" Unknown BV "))

	var empty *AliasTable
	assert.Equal(t, "Acme", empty.Resolve("Acme "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Geïm", Truncate("Geïmporteerd", 4))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestJoinDescription(t *testing.T) {
	assert.Equal(t, "Website — Hosting 2025", JoinDescription("Website", "Hosting 2025"))
	assert.Equal(t, "Hosting 2025", JoinDescription("", "Hosting 2025"))
	assert.Equal(t, "Website", JoinDescription(" Website ", ""))
	assert.Equal(t, "", JoinDescription("", ""))
}
