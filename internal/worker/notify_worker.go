// Package worker processes invoice lifecycle events consumed from AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"faturas/internal/amqp"
	applog "faturas/internal/log"
	"faturas/internal/store"
)

// NotificationWorker turns invoice events into structured notification
// log records, enriched with the invoice's current state.
type NotificationWorker struct {
	store store.Store
}

func NewNotificationWorker(st store.Store) *NotificationWorker {
	return &NotificationWorker{store: st}
}

// Handler returns the AMQP message handler bound to ctx.
func (w *NotificationWorker) Handler(ctx context.Context) func(*amqp.InvoiceEventMessage) error {
	return func(msg *amqp.InvoiceEventMessage) error {
		return w.handleEvent(ctx, msg)
	}
}

func (w *NotificationWorker) handleEvent(ctx context.Context, msg *amqp.InvoiceEventMessage) error {
	slog.InfoContext(ctx, "Processing invoice event",
		applog.FieldInvoiceID, msg.ID,
		applog.FieldAction, msg.Action,
		"timestamp", msg.Timestamp)

	// Nothing left to look up once the invoice is gone.
	if msg.Action == amqp.ActionDeleted {
		slog.InfoContext(ctx, "Invoice deleted", applog.FieldInvoiceID, msg.ID)
		return nil
	}

	inv, err := w.store.GetInvoice(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The invoice or one of its references was removed between
			// publish and consume. Drop the event instead of requeueing.
			slog.WarnContext(ctx, "Invoice no longer resolves, skipping event",
				applog.FieldInvoiceID, msg.ID, applog.FieldAction, msg.Action)
			return nil
		}
		return fmt.Errorf("get invoice %d: %w", msg.ID, err)
	}

	fields := applog.NewFields().
		WithInvoice(inv.Number, inv.Amount.Cents, inv.Partner.Name, inv.Category.Name).
		ToSlice()
	fields = append(fields,
		applog.FieldInvoiceID, inv.ID,
		applog.FieldAction, msg.Action,
		"type", inv.InvoiceType,
		"status", inv.Status,
		"amount", inv.Amount.BRL(),
		"due_date", inv.DueDate)

	slog.InfoContext(ctx, "Invoice event", fields...)

	return nil
}
