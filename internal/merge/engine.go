// Package merge combines the Zoho Books and e-boekhouden invoice sets into one
// deduplicated list.
//
// Zoho Books is the primary source: when an invoice number exists in both
// exports the Zoho record is kept unless an override names e-boekhouden.
// Overlaps and total mismatches are reported, never rejected.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"invoicemerge/internal/logger"
	"invoicemerge/internal/normalize"
	"invoicemerge/pkg/models"
)

const renameReason = "duplicate (customer_name, invoice_number) in merged set"

// Engine merges the two canonical invoice sets
type Engine struct {
	overrides map[string]string
	log       zerolog.Logger
}

// NewEngine creates an engine. overrides maps an invoice number to the
// external system that must win for it.
func NewEngine(overrides map[string]string) *Engine {
	normalized := make(map[string]string, len(overrides))
	for number, system := range overrides {
		normalized[strings.TrimSpace(number)] = strings.TrimSpace(system)
	}
	return &Engine{
		overrides: normalized,
		log:       logger.WithComponent("merge"),
	}
}

// Merge deduplicates zoho and eboek, both in source order, and returns the
// survivors sorted by (invoice date, invoice number). e-boekhouden invoices may
// be renamed in place to resolve key collisions.
func (e *Engine) Merge(zoho, eboek []*models.Invoice) ([]*models.Invoice, *Report) {
	report := &Report{
		ZohoCount:              len(zoho),
		EBoekCount:             len(eboek),
		OverlapDetails:         []Overlap{},
		Conflicts:              []Conflict{},
		MultipleZohoSameNumber: map[string]int{},
		Renamed:                []Rename{},
	}

	// Group Zoho by invoice number, keeping first-seen order
	zohoByNumber := make(map[string][]*models.Invoice)
	var numbers []string
	for _, inv := range zoho {
		number := strings.TrimSpace(inv.InvoiceNumber)
		if _, seen := zohoByNumber[number]; !seen {
			numbers = append(numbers, number)
		}
		zohoByNumber[number] = append(zohoByNumber[number], inv)
	}

	merged := newOrderedSet()
	for _, number := range numbers {
		group := zohoByNumber[number]
		if len(group) > 1 {
			report.MultipleZohoSameNumber[number] = len(group)
			e.log.Warn().
				Str("invoice_number", number).
				Int("records", len(group)).
				Msg("Multiple Zoho invoices share one number, keeping the first")
		}
		chosen := group[0]
		merged.put(chosen.MergeKey(), chosen)
	}

	for _, einv := range eboek {
		number := strings.TrimSpace(einv.InvoiceNumber)
		group, overlaps := zohoByNumber[number]
		if !overlaps {
			e.insert(merged, einv, report)
			continue
		}

		zinv := group[0]
		override := e.overrides[number]
		e.recordOverlap(report, number, zinv, einv, override)

		if override != models.SystemEBoekhouden {
			continue
		}
		zkey, ekey := zinv.MergeKey(), einv.MergeKey()
		if zkey == ekey {
			merged.put(zkey, einv)
			continue
		}
		merged.remove(zkey)
		e.insert(merged, einv, report)
	}

	out := merged.list()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].InvoiceDate.Equal(out[j].InvoiceDate) {
			return out[i].InvoiceDate.Before(out[j].InvoiceDate)
		}
		return out[i].InvoiceNumber < out[j].InvoiceNumber
	})
	report.MergedCount = len(out)

	e.log.Info().
		Int("zoho", report.ZohoCount).
		Int("eboekhouden", report.EBoekCount).
		Int("merged", report.MergedCount).
		Int("overlaps", report.OverlapCount).
		Int("conflicts", report.ConflictCount).
		Int("renamed", len(report.Renamed)).
		Msg("Invoices merged")

	return out, report
}

// insert adds inv under its merge key, renaming it to NUMBER-YYYYMMDD when the
// key is already taken.
func (e *Engine) insert(merged *orderedSet, inv *models.Invoice, report *Report) {
	key := inv.MergeKey()
	if !merged.has(key) {
		merged.put(key, inv)
		return
	}

	original := inv.InvoiceNumber
	base := fmt.Sprintf("%s-%s", strings.TrimSpace(original), normalize.CompactDate(inv.InvoiceDate))
	candidate := base
	for n := 2; merged.has(models.MergeKey{Customer: key.Customer, InvoiceNumber: candidate}); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}

	report.Renamed = append(report.Renamed, Rename{
		OriginalInvoiceNumber: original,
		NewInvoiceNumber:      candidate,
		Customer:              inv.CustomerName,
		Reason:                renameReason,
		Source:                inv.ExternalSystem,
	})
	e.log.Warn().
		Str("invoice_number", original).
		Str("new_invoice_number", candidate).
		Str("customer", inv.CustomerName).
		Msg("Renamed invoice to resolve duplicate key")

	inv.Rename(candidate)
	merged.put(inv.MergeKey(), inv)
}

func (e *Engine) recordOverlap(report *Report, number string, zinv, einv *models.Invoice, override string) {
	ztot := normalize.Round2(zinv.AmountIncl)
	etot := normalize.Round2(einv.AmountIncl)

	used := models.SystemZohoBooks
	if override != "" {
		used = override
	}

	report.OverlapCount++
	if len(report.OverlapDetails) < MaxOverlapDetails {
		report.OverlapDetails = append(report.OverlapDetails, Overlap{
			InvoiceNumber: number,
			Used:          used,
			Zoho:          side(zinv),
			EBoekhouden:   side(einv),
		})
	}

	if ztot.Sub(etot).Abs().GreaterThan(conflictTolerance) {
		var ov *string
		if override != "" {
			ov = &override
		}
		report.ConflictCount++
		report.Conflicts = append(report.Conflicts, Conflict{
			InvoiceNumber:    number,
			ZohoTotal:        money(ztot),
			EBoekhoudenTotal: money(etot),
			Override:         ov,
		})
		e.log.Warn().
			Str("invoice_number", number).
			Str("zoho_total", ztot.StringFixed(2)).
			Str("eboekhouden_total", etot.StringFixed(2)).
			Str("used", used).
			Msg("Overlapping invoice totals differ")
	}
}

func side(inv *models.Invoice) OverlapSide {
	return OverlapSide{
		Customer: inv.CustomerName,
		Date:     inv.InvoiceDate.Format("2006-01-02"),
		Total:    money(normalize.Round2(inv.AmountIncl)),
	}
}

// orderedSet keeps insertion order so the merged output never depends on map iteration
type orderedSet struct {
	entries []*models.Invoice
	index   map[models.MergeKey]int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[models.MergeKey]int)}
}

func (s *orderedSet) has(key models.MergeKey) bool {
	_, ok := s.index[key]
	return ok
}

// put replaces the entry at key in place, or appends it
func (s *orderedSet) put(key models.MergeKey, inv *models.Invoice) {
	if i, ok := s.index[key]; ok {
		s.entries[i] = inv
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, inv)
}

func (s *orderedSet) remove(key models.MergeKey) {
	if i, ok := s.index[key]; ok {
		s.entries[i] = nil
		delete(s.index, key)
	}
}

func (s *orderedSet) list() []*models.Invoice {
	out := make([]*models.Invoice, 0, len(s.index))
	for _, inv := range s.entries {
		if inv != nil {
			out = append(out, inv)
		}
	}
	return out
}
