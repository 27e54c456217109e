package normalize

import (
	"strings"
	"time"
)

// Dialect selects the date layout a source writes
type Dialect int

const (
	DialectISO Dialect = iota // YYYY-MM-DD
	DialectNL                 // DD-MM-YYYY
)

func (d Dialect) layout() string {
	if d == DialectNL {
		return "02-01-2006"
	}
	return "2006-01-02"
}

func (d Dialect) String() string {
	if d == DialectNL {
		return "nl"
	}
	return "iso"
}

// ParseDate parses s in the given dialect. The second return value is false when
// s is empty or does not match the layout.
func ParseDate(s string, dialect Dialect) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dialect.layout(), s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// OrderNumber derives the order number from the invoice date
func OrderNumber(invoiceDate time.Time) string {
	return "ORD-" + CompactDate(invoiceDate)
}

// CompactDate formats t as YYYYMMDD
func CompactDate(t time.Time) string {
	return t.Format("20060102")
}
