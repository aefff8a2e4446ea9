package core

import (
	"errors"
	"testing"
	"time"
)

func validInvoice() Invoice {
	return Invoice{
		InvoiceType: Payable,
		Number:      "NF-1001",
		PartnerID:   1,
		CategoryID:  1,
		IssueDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Amount:      Money{Cents: 150000},
		Status:      StatusPending,
	}
}

func TestInvoiceValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
		want   error
	}{
		{"valid", func(*Invoice) {}, nil},
		{"bad type", func(i *Invoice) { i.InvoiceType = "nota" }, ErrInvalidInvoiceType},
		{"empty number", func(i *Invoice) { i.Number = "  " }, ErrEmptyNumber},
		{"no partner", func(i *Invoice) { i.PartnerID = 0 }, ErrMissingPartner},
		{"no category", func(i *Invoice) { i.CategoryID = 0 }, ErrMissingCategory},
		{"zero issue date", func(i *Invoice) { i.IssueDate = time.Time{} }, ErrZeroIssueDate},
		{"zero due date", func(i *Invoice) { i.DueDate = time.Time{} }, ErrZeroDueDate},
		{"zero amount", func(i *Invoice) { i.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(i *Invoice) { i.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"bad status", func(i *Invoice) { i.Status = "open" }, ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(&inv)
			if err := inv.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPartnerValidate(t *testing.T) {
	p := Partner{Name: "ACME Ltda", DocumentNumber: "12.345.678/0001-90", EntityType: Supplier}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid partner rejected: %v", err)
	}

	p.EntityType = "vendor"
	if err := p.Validate(); !errors.Is(err, ErrInvalidEntityType) {
		t.Errorf("expected ErrInvalidEntityType, got %v", err)
	}

	p = Partner{Name: "", DocumentNumber: "x", EntityType: Client}
	if err := p.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestEntityTypeMatches(t *testing.T) {
	if !Both.Matches(Supplier) || !Both.Matches(Client) {
		t.Error("a partner tagged both must match either role")
	}
	if Supplier.Matches(Client) {
		t.Error("a supplier must not match the client role")
	}
}
