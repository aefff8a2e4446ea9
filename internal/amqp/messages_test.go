package amqp

import (
	"testing"
	"time"
)

func TestNewInvoiceEventMessage(t *testing.T) {
	msg := NewInvoiceEventMessage(42, ActionSettled)

	if msg.ID != 42 {
		t.Errorf("ID = %d, want 42", msg.ID)
	}
	if msg.Action != ActionSettled {
		t.Errorf("Action = %q, want %q", msg.Action, ActionSettled)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestInvoiceEventMessage_JSON(t *testing.T) {
	msg := &InvoiceEventMessage{
		ID:        7,
		Action:    ActionCreated,
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := InvoiceEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("InvoiceEventMessageFromJSON() error = %v", err)
	}

	if parsed.ID != msg.ID || parsed.Action != msg.Action || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("round trip mismatch: %+v != %+v", parsed, msg)
	}
}

func TestInvoiceEventMessage_InvalidJSON(t *testing.T) {
	if _, err := InvoiceEventMessageFromJSON([]byte(`{"id": "nope"}`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
