package sqlgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Literal is a value that renders itself as a PostgreSQL literal. Every value
// placed into a generated script goes through one of these types.
type Literal interface {
	SQL() string
}

// Text is a string literal
type Text string

// SQL doubles single quotes. Backslashes switch to an escape string (E'...')
// so the result is the same regardless of standard_conforming_strings.
func (t Text) SQL() string {
	s := strings.ReplaceAll(string(t), "'", "''")
	if strings.Contains(s, `\`) {
		return "E'" + strings.ReplaceAll(s, `\`, `\\`) + "'"
	}
	return "'" + s + "'"
}

// Date is a calendar date cast to ::date
type Date time.Time

func (d Date) SQL() string {
	return Text(time.Time(d).Format("2006-01-02")).SQL() + "::date"
}

// Numeric is an unquoted decimal with two places
type Numeric decimal.Decimal

func (n Numeric) SQL() string {
	return decimal.Decimal(n).StringFixed(2)
}

// Int is an unquoted integer
type Int int

func (i Int) SQL() string {
	return strconv.Itoa(int(i))
}

// Null is a typed NULL, e.g. NULL::date
type Null struct {
	Cast string
}

func (n Null) SQL() string {
	if n.Cast == "" {
		return "NULL"
	}
	return "NULL::" + n.Cast
}

// JSONB is a JSON document in a dollar-quoted string cast to ::jsonb
type JSONB struct {
	payload string
}

// NewJSONB encodes v without HTML escaping, so non-ASCII text and <>& are kept verbatim.
func NewJSONB(v any) (JSONB, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return JSONB{}, fmt.Errorf("encode jsonb: %w", err)
	}
	return JSONB{payload: strings.TrimSuffix(buf.String(), "\n")}, nil
}

// SQL picks the first dollar-quote tag that does not occur in the payload.
// Encoded JSON never starts or ends with '$', so the tag cannot fuse with it.
func (j JSONB) SQL() string {
	tag := "$$"
	for i := 0; strings.Contains(j.payload, tag); i++ {
		if i == 0 {
			tag = "$j$"
		} else {
			tag = fmt.Sprintf("$j%d$", i)
		}
	}
	return tag + j.payload + tag + "::jsonb"
}

// String returns the encoded JSON
func (j JSONB) String() string {
	return j.payload
}
