package worker

import (
	"context"
	"testing"
	"time"

	"faturas/internal/amqp"
	"faturas/internal/core"
	"faturas/internal/store/memory"
)

func seedInvoice(t *testing.T, st *memory.Store) core.Invoice {
	t.Helper()
	ctx := context.Background()
	p, err := st.CreatePartner(ctx, core.Partner{
		Name: "ACME Ltda", DocumentNumber: "1", EntityType: core.Supplier,
	})
	if err != nil {
		t.Fatalf("create partner: %v", err)
	}
	inv, err := st.CreateInvoice(ctx, core.Invoice{
		InvoiceType: core.Payable, Number: "NF-1", PartnerID: p.ID, CategoryID: 1,
		IssueDate: time.Now(), DueDate: time.Now().AddDate(0, 0, 10),
		Amount: core.Money{Cents: 12345}, Status: core.StatusPending,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func TestHandleEventResolvesInvoice(t *testing.T) {
	st := memory.NewSeeded()
	inv := seedInvoice(t, st)
	w := NewNotificationWorker(st)

	handler := w.Handler(context.Background())
	if err := handler(amqp.NewInvoiceEventMessage(inv.ID, amqp.ActionSettled)); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestHandleEventSkipsMissingInvoice(t *testing.T) {
	st := memory.NewSeeded()
	w := NewNotificationWorker(st)

	// A missing invoice must not requeue forever.
	handler := w.Handler(context.Background())
	if err := handler(amqp.NewInvoiceEventMessage(999, amqp.ActionCreated)); err != nil {
		t.Fatalf("expected missing invoice to be dropped, got %v", err)
	}
}

func TestHandleEventDeletedSkipsLookup(t *testing.T) {
	st := memory.NewSeeded()
	w := NewNotificationWorker(st)

	handler := w.Handler(context.Background())
	if err := handler(amqp.NewInvoiceEventMessage(42, amqp.ActionDeleted)); err != nil {
		t.Fatalf("handler: %v", err)
	}
}
