package amqp

import (
	"encoding/json"
	"time"
)

// Invoice lifecycle actions carried by events.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionSettled  = "settled"
	ActionCanceled = "canceled"
	ActionDeleted  = "deleted"
)

// InvoiceEventMessage is a lightweight lifecycle event. Consumers fetch
// the full invoice from the store when they need more than the id.
type InvoiceEventMessage struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInvoiceEventMessage(id int64, action string) *InvoiceEventMessage {
	return &InvoiceEventMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *InvoiceEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InvoiceEventMessageFromJSON(data []byte) (*InvoiceEventMessage, error) {
	var msg InvoiceEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
