// Package services provides business logic on top of the entity store:
// dashboard aggregation and the invoice write-side lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"faturas/internal/core"
	"faturas/internal/store"
)

const (
	// trailingWindowDays is the lookback used by partner rankings and
	// category distribution, anchored to the instant of the call.
	trailingWindowDays = 90

	// nextWeekDays is the horizon for the "to pay / to receive" buckets.
	nextWeekDays = 7
)

var (
	ErrInvalidLimit = errors.New("limit must be a positive integer")
	ErrInvalidDays  = errors.New("days must be a non-negative integer")
	ErrInvalidRole  = errors.New("partner role must be supplier or client")
)

// categoryIcons maps category display names to dashboard icon identifiers.
var categoryIcons = map[string]string{
	"Aluguel/Instalações": "building",
	"Equipamentos":        "computer",
	"Serviços":            "service",
	"Materiais":           "archive",
}

const fallbackIcon = "folder"

// placeholderName labels rankings whose partner or category was deleted.
const placeholderName = "Unknown"

// DashboardService computes the dashboard statistics bundle, rankings and
// time-windowed invoice views. Every call recomputes from a fresh store
// snapshot; the clock is sampled exactly once per call so that all date
// comparisons within one computation see the same instant.
type DashboardService struct {
	store store.Store
	now   func() time.Time
}

// NewDashboardService creates the service. A nil clock defaults to
// time.Now; tests inject a fixed clock.
func NewDashboardService(st store.Store, clock func() time.Time) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{store: st, now: clock}
}

// Stats computes the headline dashboard numbers.
//
// Pending payables split into two disjoint date buckets: due within the
// next seven days (toPay) and already past due (overduePayables) — an
// invoice can never appear in both. Paid/received sums cover settlements
// whose transaction date falls in the current calendar month.
func (s *DashboardService) Stats(ctx context.Context) (core.DashboardStats, error) {
	invoices, err := s.store.ListInvoiceRecords(ctx, "")
	if err != nil {
		return core.DashboardStats{}, fmt.Errorf("list invoices: %w", err)
	}

	now := s.now()
	weekAhead := now.AddDate(0, 0, nextWeekDays)

	stats := core.DashboardStats{TotalInvoices: len(invoices)}

	for _, inv := range invoices {
		switch inv.InvoiceType {
		case core.Payable:
			switch {
			case inv.Status == core.StatusPending && !inv.DueDate.Before(now) && !inv.DueDate.After(weekAhead):
				stats.ToPay.Cents += inv.Amount.Cents
				stats.NextWeekPayables++
			case inv.Status == core.StatusPending && inv.DueDate.Before(now):
				stats.OverduePayables.Cents += inv.Amount.Cents
			case inv.Status == core.StatusPaid && settledInMonth(inv, now):
				stats.Paid.Cents += inv.Amount.Cents
			}
		case core.Receivable:
			switch {
			case inv.Status == core.StatusPending && !inv.DueDate.Before(now) && !inv.DueDate.After(weekAhead):
				stats.ToReceive.Cents += inv.Amount.Cents
				stats.NextWeekReceivables++
			case inv.Status == core.StatusPending && inv.DueDate.Before(now):
				stats.OverdueReceivables.Cents += inv.Amount.Cents
			case inv.Status == core.StatusReceived && settledInMonth(inv, now):
				stats.Received.Cents += inv.Amount.Cents
			}
		}
	}

	return stats, nil
}

// settledInMonth reports whether the invoice's transaction date falls in
// the same calendar month and year as now.
func settledInMonth(inv core.Invoice, now time.Time) bool {
	if inv.TransactionDate == nil {
		return false
	}
	return inv.TransactionDate.Month() == now.Month() && inv.TransactionDate.Year() == now.Year()
}

// TopPartners ranks partners by total invoiced amount over the trailing
// 90 days. role narrows the ranking: supplier considers only payables,
// client only receivables, empty considers everything.
//
// Percentages are normalized over the returned top-N set, not the full
// population. Ties sort by ascending partner id.
func (s *DashboardService) TopPartners(ctx context.Context, limit int, role core.EntityType) ([]core.TopPartner, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	invoiceType, err := roleToInvoiceType(role)
	if err != nil {
		return nil, err
	}

	invoices, err := s.store.ListInvoiceRecords(ctx, invoiceType)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	partners, err := s.store.ListPartners(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	byID := make(map[int64]core.Partner, len(partners))
	for _, p := range partners {
		byID[p.ID] = p
	}

	windowStart := s.now().AddDate(0, 0, -trailingWindowDays)

	totals := make(map[int64]int64)
	for _, inv := range invoices {
		if inv.IssueDate.Before(windowStart) {
			continue
		}
		totals[inv.PartnerID] += inv.Amount.Cents
	}

	ranking := make([]core.TopPartner, 0, len(totals))
	for partnerID, cents := range totals {
		row := core.TopPartner{
			ID:    partnerID,
			Name:  placeholderName,
			Total: core.Money{Cents: cents},
			Type:  core.UnknownEntity,
		}
		if p, ok := byID[partnerID]; ok {
			row.Name = p.Name
			row.Type = p.EntityType
		}
		ranking = append(ranking, row)
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Total.Cents != ranking[j].Total.Cents {
			return ranking[i].Total.Cents > ranking[j].Total.Cents
		}
		return ranking[i].ID < ranking[j].ID
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}

	var grandTotal int64
	for _, row := range ranking {
		grandTotal += row.Total.Cents
	}
	// Zero grand total means every percentage is zero, never a division.
	if grandTotal > 0 {
		for i := range ranking {
			ranking[i].Percentage = float64(ranking[i].Total.Cents) / float64(grandTotal) * 100
		}
	}

	return ranking, nil
}

// roleToInvoiceType maps a partner role filter to the invoice type it
// implies: suppliers are ranked by payables, clients by receivables.
func roleToInvoiceType(role core.EntityType) (core.InvoiceType, error) {
	switch role {
	case "":
		return "", nil
	case core.Supplier:
		return core.Payable, nil
	case core.Client:
		return core.Receivable, nil
	default:
		return "", ErrInvalidRole
	}
}

// CategoryDistribution breaks the trailing 90 days of invoices down by
// category, with payable and receivable sub-totals kept apart.
//
// Unlike TopPartners there is no truncation: percentages are normalized
// over the entire result set.
func (s *DashboardService) CategoryDistribution(ctx context.Context) ([]core.CategoryDistribution, error) {
	invoices, err := s.store.ListInvoiceRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	windowStart := s.now().AddDate(0, 0, -trailingWindowDays)

	payable := make(map[int64]int64)
	receivable := make(map[int64]int64)
	for _, inv := range invoices {
		if inv.IssueDate.Before(windowStart) {
			continue
		}
		switch inv.InvoiceType {
		case core.Payable:
			payable[inv.CategoryID] += inv.Amount.Cents
		case core.Receivable:
			receivable[inv.CategoryID] += inv.Amount.Cents
		}
	}

	seen := make(map[int64]struct{}, len(payable)+len(receivable))
	for id := range payable {
		seen[id] = struct{}{}
	}
	for id := range receivable {
		seen[id] = struct{}{}
	}

	distribution := make([]core.CategoryDistribution, 0, len(seen))
	var grandTotal int64
	for categoryID := range seen {
		row := core.CategoryDistribution{
			ID:              categoryID,
			Name:            placeholderName,
			TotalPayable:    core.Money{Cents: payable[categoryID]},
			TotalReceivable: core.Money{Cents: receivable[categoryID]},
			Icon:            fallbackIcon,
		}
		if c, ok := byID[categoryID]; ok {
			row.Name = c.Name
			if icon, ok := categoryIcons[c.Name]; ok {
				row.Icon = icon
			}
		}
		grandTotal += row.TotalPayable.Cents + row.TotalReceivable.Cents
		distribution = append(distribution, row)
	}

	if grandTotal > 0 {
		for i := range distribution {
			total := distribution[i].TotalPayable.Cents + distribution[i].TotalReceivable.Cents
			distribution[i].Percentage = float64(total) / float64(grandTotal) * 100
		}
	}

	sort.Slice(distribution, func(i, j int) bool {
		ti := distribution[i].TotalPayable.Cents + distribution[i].TotalReceivable.Cents
		tj := distribution[j].TotalPayable.Cents + distribution[j].TotalReceivable.Cents
		if ti != tj {
			return ti > tj
		}
		return distribution[i].ID < distribution[j].ID
	})

	return distribution, nil
}

// UpcomingInvoices lists pending invoices due within [now, now+days],
// soonest first, optionally filtered by invoice type.
func (s *DashboardService) UpcomingInvoices(ctx context.Context, days int, invoiceType core.InvoiceType) ([]core.InvoiceWithRelations, error) {
	if days < 0 {
		return nil, ErrInvalidDays
	}
	invoices, err := s.store.ListInvoices(ctx, invoiceType)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	now := s.now()
	horizon := now.AddDate(0, 0, days)

	out := invoices[:0]
	for _, inv := range invoices {
		if inv.Status != core.StatusPending {
			continue
		}
		if inv.DueDate.Before(now) || inv.DueDate.After(horizon) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// OverdueInvoices lists pending invoices whose due date has passed,
// most recently overdue first, optionally filtered by invoice type.
func (s *DashboardService) OverdueInvoices(ctx context.Context, invoiceType core.InvoiceType) ([]core.InvoiceWithRelations, error) {
	invoices, err := s.store.ListInvoices(ctx, invoiceType)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	now := s.now()

	out := invoices[:0]
	for _, inv := range invoices {
		if inv.Status != core.StatusPending || !inv.DueDate.Before(now) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.After(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
