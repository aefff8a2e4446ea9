package amqp

import (
	"errors"
	"testing"
)

func TestDispositionForAcksHandledEvents(t *testing.T) {
	body, err := NewInvoiceEventMessage(7, ActionCreated).ToJSON()
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}

	var got *InvoiceEventMessage
	disposition, err := dispositionFor(body, false, func(msg *InvoiceEventMessage) error {
		got = msg
		return nil
	})
	if err != nil {
		t.Fatalf("dispositionFor: %v", err)
	}
	if disposition != ackDelivery {
		t.Errorf("disposition = %d, want ack", disposition)
	}
	if got == nil || got.ID != 7 || got.Action != ActionCreated {
		t.Errorf("handler received %+v", got)
	}
}

func TestDispositionForDiscardsMalformedBody(t *testing.T) {
	disposition, err := dispositionFor([]byte("not json"), false, func(*InvoiceEventMessage) error {
		t.Fatal("handler should not run for malformed bodies")
		return nil
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if disposition != discardDelivery {
		t.Errorf("disposition = %d, want discard", disposition)
	}
}

func TestDispositionForRequeuesFirstFailureOnly(t *testing.T) {
	body, err := NewInvoiceEventMessage(9, ActionUpdated).ToJSON()
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	fail := func(*InvoiceEventMessage) error { return errors.New("store unavailable") }

	disposition, err := dispositionFor(body, false, fail)
	if err == nil {
		t.Fatal("expected an error on first failure")
	}
	if disposition != requeueDelivery {
		t.Errorf("first failure disposition = %d, want requeue", disposition)
	}

	disposition, err = dispositionFor(body, true, fail)
	if err == nil {
		t.Fatal("expected an error on redelivered failure")
	}
	if disposition != discardDelivery {
		t.Errorf("redelivered failure disposition = %d, want discard", disposition)
	}
}
