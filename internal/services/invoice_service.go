package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"faturas/internal/amqp"
	"faturas/internal/core"
	"faturas/internal/store"
)

// InvoiceService owns the invoice write side: creation, updates and the
// payment/cancellation transitions. Lifecycle events go out over AMQP on
// a best-effort basis; the store write is the source of truth and never
// fails because publishing did.
type InvoiceService struct {
	store  store.Store
	events *amqp.Client
}

func NewInvoiceService(st store.Store, events *amqp.Client) *InvoiceService {
	return &InvoiceService{store: st, events: events}
}

// Create validates and persists a new invoice. Status defaults to pending
// when unset; createdBy must already be stamped by the caller.
func (s *InvoiceService) Create(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	if inv.Status == "" {
		inv.Status = core.StatusPending
	}
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, err
	}

	created, err := s.store.CreateInvoice(ctx, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

// Update validates and replaces an existing invoice.
func (s *InvoiceService) Update(ctx context.Context, id int64, inv core.Invoice) (core.Invoice, error) {
	if err := inv.Validate(); err != nil {
		return core.Invoice{}, err
	}

	updated, err := s.store.UpdateInvoice(ctx, id, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("update invoice: %w", err)
	}

	s.publish(ctx, updated.ID, amqp.ActionUpdated)
	return updated, nil
}

// RecordPayment settles a pending invoice: payables become paid,
// receivables become received, and the transaction date is recorded.
func (s *InvoiceService) RecordPayment(ctx context.Context, id int64, method string, when time.Time) (core.Invoice, error) {
	joined, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}

	inv := joined.Invoice
	switch inv.InvoiceType {
	case core.Payable:
		inv.Status = core.StatusPaid
	case core.Receivable:
		inv.Status = core.StatusReceived
	}
	inv.PaymentMethod = method
	inv.TransactionDate = &when

	updated, err := s.store.UpdateInvoice(ctx, id, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("record payment: %w", err)
	}

	s.publish(ctx, updated.ID, amqp.ActionSettled)
	return updated, nil
}

// Cancel marks an invoice canceled. The display classifier deliberately
// keeps classifying canceled invoices by date.
func (s *InvoiceService) Cancel(ctx context.Context, id int64) (core.Invoice, error) {
	joined, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}

	inv := joined.Invoice
	inv.Status = core.StatusCanceled

	updated, err := s.store.UpdateInvoice(ctx, id, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("cancel invoice: %w", err)
	}

	s.publish(ctx, updated.ID, amqp.ActionCanceled)
	return updated, nil
}

// Delete removes an invoice. Partner and category rows are untouched.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	s.publish(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *InvoiceService) publish(ctx context.Context, id int64, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishInvoiceEvent(ctx, id, action); err != nil {
		// Don't fail the request - the write already succeeded.
		slog.ErrorContext(ctx, "Failed to publish invoice event",
			"id", id, "action", action, "error", err)
	}
}

// Close releases the event channel if one was configured.
func (s *InvoiceService) Close() error {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			return fmt.Errorf("close events: %w", err)
		}
	}
	return nil
}
