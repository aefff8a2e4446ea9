package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"faturas/internal/core"
	"faturas/internal/store"
	"faturas/internal/store/memory"
)

func newInvoiceFixture(t *testing.T) (*InvoiceService, *memory.Store, core.Partner) {
	t.Helper()
	st := memory.NewSeeded()
	p, err := st.CreatePartner(context.Background(), core.Partner{
		Name: "ACME Ltda", DocumentNumber: "11.111.111/0001-11", EntityType: core.Supplier,
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}
	// nil events client: publishing is a no-op.
	return NewInvoiceService(st, nil), st, p
}

func validInvoice(partnerID int64, typ core.InvoiceType) core.Invoice {
	return core.Invoice{
		InvoiceType: typ,
		Number:      "NF-1001",
		PartnerID:   partnerID,
		CategoryID:  1,
		IssueDate:   testNow,
		DueDate:     testNow.AddDate(0, 0, 15),
		Amount:      core.Money{Cents: 123456},
	}
}

func TestInvoiceCreateDefaultsToPending(t *testing.T) {
	svc, _, p := newInvoiceFixture(t)

	created, err := svc.Create(context.Background(), validInvoice(p.ID, core.Payable))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != core.StatusPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.ID == 0 {
		t.Error("expected an assigned id")
	}
}

func TestInvoiceCreateRejectsInvalid(t *testing.T) {
	svc, _, p := newInvoiceFixture(t)

	tests := []struct {
		name    string
		mutate  func(*core.Invoice)
		wantErr error
	}{
		{"zero amount", func(i *core.Invoice) { i.Amount.Cents = 0 }, core.ErrInvalidAmount},
		{"negative amount", func(i *core.Invoice) { i.Amount.Cents = -100 }, core.ErrInvalidAmount},
		{"empty number", func(i *core.Invoice) { i.Number = "" }, core.ErrEmptyNumber},
		{"missing partner", func(i *core.Invoice) { i.PartnerID = 0 }, core.ErrMissingPartner},
		{"missing category", func(i *core.Invoice) { i.CategoryID = 0 }, core.ErrMissingCategory},
		{"zero due date", func(i *core.Invoice) { i.DueDate = time.Time{} }, core.ErrZeroDueDate},
		{"bad type", func(i *core.Invoice) { i.InvoiceType = "loan" }, core.ErrInvalidInvoiceType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice(p.ID, core.Payable)
			tt.mutate(&inv)
			if _, err := svc.Create(context.Background(), inv); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecordPaymentPayable(t *testing.T) {
	svc, _, p := newInvoiceFixture(t)
	created, err := svc.Create(context.Background(), validInvoice(p.ID, core.Payable))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	when := testNow.AddDate(0, 0, 2)
	settled, err := svc.RecordPayment(context.Background(), created.ID, "pix", when)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}

	if settled.Status != core.StatusPaid {
		t.Errorf("payable settles to %q, want paid", settled.Status)
	}
	if settled.PaymentMethod != "pix" {
		t.Errorf("payment method = %q, want pix", settled.PaymentMethod)
	}
	if settled.TransactionDate == nil || !settled.TransactionDate.Equal(when) {
		t.Errorf("transaction date = %v, want %v", settled.TransactionDate, when)
	}
}

func TestRecordPaymentReceivable(t *testing.T) {
	svc, _, p := newInvoiceFixture(t)
	created, err := svc.Create(context.Background(), validInvoice(p.ID, core.Receivable))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	settled, err := svc.RecordPayment(context.Background(), created.ID, "boleto", testNow)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if settled.Status != core.StatusReceived {
		t.Errorf("receivable settles to %q, want received", settled.Status)
	}
}

func TestRecordPaymentUnknownInvoice(t *testing.T) {
	svc, _, _ := newInvoiceFixture(t)
	if _, err := svc.RecordPayment(context.Background(), 999, "pix", testNow); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCancelInvoice(t *testing.T) {
	svc, st, p := newInvoiceFixture(t)
	created, err := svc.Create(context.Background(), validInvoice(p.ID, core.Payable))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	canceled, err := svc.Cancel(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != core.StatusCanceled {
		t.Errorf("status = %q, want canceled", canceled.Status)
	}

	stored, err := st.GetInvoice(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != core.StatusCanceled {
		t.Errorf("stored status = %q, want canceled", stored.Status)
	}
}

func TestDeleteInvoice(t *testing.T) {
	svc, st, p := newInvoiceFixture(t)
	created, err := svc.Create(context.Background(), validInvoice(p.ID, core.Payable))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetInvoice(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestUpdateInvoiceRevalidates(t *testing.T) {
	svc, _, p := newInvoiceFixture(t)
	created, err := svc.Create(context.Background(), validInvoice(p.ID, core.Payable))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	created.Amount.Cents = -1
	if _, err := svc.Update(context.Background(), created.ID, created); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
}
