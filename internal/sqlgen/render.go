// Package sqlgen renders merged invoices into one idempotent, transactional
// upsert script.
//
// The script stages all rows in a VALUES table, resolves each customer name to
// an existing customer (case-insensitive on company_name or name), creates the
// missing customers in the same statement, then updates invoices that already
// exist for (customer_id, invoice_number) and inserts the rest. Running it a
// second time only touches updated_at.
package sqlgen

import (
	"fmt"
	"strings"

	"invoicemerge/pkg/models"
)

const scriptHeader = `-- =====================================================
-- IMPORT ALL INVOICES (DEDUPED) FROM ZOHO + E-BOEKHOUDEN EXPORTS
-- - Zoho chosen when the same invoice_number exists in both sources
-- - Customer aliases applied from the rules file
-- =====================================================
-- Total invoices: %d
-- Total amount (incl): €%s

`

// upsertStatement takes, in order: customers table, invoices table, staged
// VALUES rows, column list, customer status literal, customer country literal.
const upsertStatement = `WITH invoice_data AS (
  SELECT * FROM (
    VALUES
    %[3]s
  ) AS t(
    %[4]s
  )
),
customer_names AS (
  SELECT DISTINCT customer_name
  FROM invoice_data
),
customer_mapping AS (
  SELECT
    cn.customer_name,
    (
      SELECT c.id
      FROM %[1]s c
      WHERE lower(c.company_name) = lower(cn.customer_name)
         OR lower(c.name) = lower(cn.customer_name)
      ORDER BY c.id
      LIMIT 1
    ) AS customer_id
  FROM customer_names cn
),
new_customers AS (
  INSERT INTO %[1]s (
    name,
    company_name,
    status,
    country,
    created_at,
    updated_at
  )
  SELECT DISTINCT ON (lower(cm.customer_name))
    cm.customer_name AS name,
    cm.customer_name AS company_name,
    %[5]s AS status,
    %[6]s AS country,
    NOW() AS created_at,
    NOW() AS updated_at
  FROM customer_mapping cm
  WHERE cm.customer_id IS NULL
  ORDER BY lower(cm.customer_name), cm.customer_name
  RETURNING id, company_name
),
updated_customer_mapping AS (
  SELECT
    cm.customer_name,
    COALESCE(cm.customer_id, nc.id) AS customer_id
  FROM customer_mapping cm
  LEFT JOIN new_customers nc
    ON lower(nc.company_name) = lower(cm.customer_name)
),
final_data AS (
  SELECT DISTINCT ON (ucm.customer_id, id.invoice_number)
    ucm.customer_id,
    id.invoice_number,
    id.invoice_date,
    id.due_date,
    id.order_number,
    id.amount,
    id.outstanding_amount,
    id.status,
    id.external_id,
    id.external_system,
    id.notes,
    id.line_items
  FROM invoice_data id
  JOIN updated_customer_mapping ucm ON ucm.customer_name = id.customer_name
  WHERE ucm.customer_id IS NOT NULL
  ORDER BY ucm.customer_id, id.invoice_number, id.row_no
),
updated AS (
  UPDATE %[2]s ci
  SET
    invoice_date = fd.invoice_date,
    due_date = fd.due_date,
    order_number = fd.order_number,
    amount = fd.amount,
    outstanding_amount = fd.outstanding_amount,
    status = fd.status,
    external_id = fd.external_id,
    external_system = fd.external_system,
    notes = fd.notes,
    line_items = fd.line_items,
    updated_at = NOW()
  FROM final_data fd
  WHERE ci.customer_id = fd.customer_id
    AND ci.invoice_number = fd.invoice_number
  RETURNING ci.id, ci.customer_id, ci.invoice_number
)
INSERT INTO %[2]s (
  customer_id,
  invoice_number,
  invoice_date,
  due_date,
  order_number,
  amount,
  outstanding_amount,
  status,
  external_id,
  external_system,
  notes,
  line_items,
  created_at,
  updated_at
)
SELECT
  fd.customer_id,
  fd.invoice_number,
  fd.invoice_date,
  fd.due_date,
  fd.order_number,
  fd.amount,
  fd.outstanding_amount,
  fd.status,
  fd.external_id,
  fd.external_system,
  fd.notes,
  fd.line_items,
  NOW(),
  NOW()
FROM final_data fd
WHERE NOT EXISTS (
  SELECT 1
  FROM updated u
  WHERE u.customer_id = fd.customer_id
    AND u.invoice_number = fd.invoice_number
);
`

// Render writes the script for req. Identical requests render identical bytes.
func Render(req *Request) (string, error) {
	const op = "Render"

	if err := req.Options.validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, scriptHeader, len(req.Rows), req.TotalAmount.StringFixed(2))
	b.WriteString("BEGIN;\n\n")

	if len(req.Rows) == 0 {
		b.WriteString("-- No invoices to import\n\n")
	} else {
		rows := make([]string, 0, len(req.Rows))
		for _, row := range req.Rows {
			rows = append(rows, renderRow(row))
		}
		fmt.Fprintf(&b, upsertStatement,
			req.Options.CustomersTable,
			req.Options.InvoicesTable,
			strings.Join(rows, ",\n    "),
			strings.Join(stagedColumns, ",\n    "),
			Text(req.Options.CustomerStatus).SQL(),
			Text(req.Options.CustomerCountry).SQL(),
		)
		b.WriteString("\n")
	}

	b.WriteString("COMMIT;\n\n")
	fmt.Fprintf(&b, "-- Imported/updated %d invoices\n", len(req.Rows))
	return b.String(), nil
}

// Generate builds and renders the script for invoices in one step
func Generate(invoices []*models.Invoice, opts Options) (string, error) {
	req, err := Build(invoices, opts)
	if err != nil {
		return "", err
	}
	return Render(req)
}

func renderRow(row StagedRow) string {
	values := row.values()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.SQL()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
