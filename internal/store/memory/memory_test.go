package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"faturas/internal/core"
	"faturas/internal/store"
)

func TestNewSeededBootstrapsDefaultCategories(t *testing.T) {
	s := NewSeeded()
	cats, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(cats) != len(store.DefaultCategories) {
		t.Fatalf("expected %d seeded categories, got %d", len(store.DefaultCategories), len(cats))
	}
	if cats[0].Name != "Aluguel/Instalações" || cats[0].ID != 1 {
		t.Fatalf("unexpected first category: %+v", cats[0])
	}
}

func TestNewSeededWithCustomSet(t *testing.T) {
	s := NewSeeded(core.Category{Name: "Frete"})
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != 1 || cats[0].Name != "Frete" {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}

func TestPartnerDocumentUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreatePartner(ctx, core.Partner{
		Name: "ACME Ltda", DocumentNumber: "11.111.111/0001-11", EntityType: core.Supplier,
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}

	_, err = s.CreatePartner(ctx, core.Partner{
		Name: "Outro", DocumentNumber: "11.111.111/0001-11", EntityType: core.Client,
	})
	if !errors.Is(err, store.ErrDuplicateDocument) {
		t.Fatalf("expected ErrDuplicateDocument, got %v", err)
	}

	// Updating a partner with its own document must not trip the check.
	first.Name = "ACME S.A."
	if _, err := s.UpdatePartner(ctx, first.ID, first); err != nil {
		t.Fatalf("update with own document: %v", err)
	}
}

func TestListPartnersByEntityType(t *testing.T) {
	ctx := context.Background()
	s := New()
	mustCreatePartner(t, s, "Fornece Tudo", "1", core.Supplier)
	mustCreatePartner(t, s, "Compra Tudo", "2", core.Client)
	mustCreatePartner(t, s, "Faz Tudo", "3", core.Both)

	suppliers, _ := s.ListPartners(ctx, core.Supplier)
	if len(suppliers) != 2 {
		t.Fatalf("expected supplier+both, got %d partners", len(suppliers))
	}

	all, _ := s.ListPartners(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 partners, got %d", len(all))
	}
}

func TestDanglingReferencesAreDropped(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	partner := mustCreatePartner(t, s, "ACME", "1", core.Supplier)

	inv, err := s.CreateInvoice(ctx, core.Invoice{
		InvoiceType: core.Payable,
		Number:      "NF-1",
		PartnerID:   partner.ID,
		CategoryID:  1,
		IssueDate:   time.Now(),
		DueDate:     time.Now().AddDate(0, 0, 10),
		Amount:      core.Money{Cents: 10000},
		Status:      core.StatusPending,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if _, err := s.GetInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("joined read before delete: %v", err)
	}

	if err := s.DeletePartner(ctx, partner.ID); err != nil {
		t.Fatalf("delete partner: %v", err)
	}

	// The invoice row still exists but no longer joins.
	if _, err := s.GetInvoice(ctx, inv.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after partner delete, got %v", err)
	}
	list, _ := s.ListInvoices(ctx, "")
	if len(list) != 0 {
		t.Fatalf("dangling invoice must be dropped from lists, got %d", len(list))
	}
}

func TestCreateInvoiceDefaultsToPending(t *testing.T) {
	ctx := context.Background()
	s := New()
	inv, err := s.CreateInvoice(ctx, core.Invoice{
		InvoiceType: core.Receivable,
		Number:      "NF-2",
		PartnerID:   1,
		CategoryID:  1,
		IssueDate:   time.Now(),
		DueDate:     time.Now(),
		Amount:      core.Money{Cents: 500},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.Status != core.StatusPending {
		t.Fatalf("expected pending status, got %q", inv.Status)
	}
	if inv.ID != 1 || inv.CreatedAt.IsZero() {
		t.Fatalf("id/createdAt not assigned: %+v", inv)
	}
}

func TestUpdateInvoicePreservesProvenance(t *testing.T) {
	ctx := context.Background()
	s := New()
	created, _ := s.CreateInvoice(ctx, core.Invoice{
		InvoiceType: core.Payable, Number: "NF-3", PartnerID: 1, CategoryID: 1,
		IssueDate: time.Now(), DueDate: time.Now(), Amount: core.Money{Cents: 100},
		CreatedBy: 42,
	})

	paidAt := time.Now()
	updated := created
	updated.Status = core.StatusPaid
	updated.TransactionDate = &paidAt
	updated.CreatedBy = 99 // must be ignored

	got, err := s.UpdateInvoice(ctx, created.ID, updated)
	if err != nil {
		t.Fatalf("update invoice: %v", err)
	}
	if got.CreatedBy != 42 {
		t.Errorf("createdBy must be preserved, got %d", got.CreatedBy)
	}
	if got.Status != core.StatusPaid || got.TransactionDate == nil {
		t.Errorf("payment fields not applied: %+v", got)
	}
	if got.CreatedAt != created.CreatedAt {
		t.Errorf("createdAt must be preserved")
	}
}

func TestUsernameUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	u, err := s.CreateUser(ctx, core.User{Username: "maria", Name: "Maria", Email: "m@x.br"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Role != core.RoleOrdinary {
		t.Errorf("expected default role, got %q", u.Role)
	}
	if _, err := s.CreateUser(ctx, core.User{Username: "maria"}); !errors.Is(err, store.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "maria"); err != nil {
		t.Fatalf("get by username: %v", err)
	}
}

func mustCreatePartner(t *testing.T, s *Store, name, doc string, et core.EntityType) core.Partner {
	t.Helper()
	p, err := s.CreatePartner(context.Background(), core.Partner{
		Name: name, DocumentNumber: doc, EntityType: et,
	})
	if err != nil {
		t.Fatalf("create partner %s: %v", name, err)
	}
	return p
}
