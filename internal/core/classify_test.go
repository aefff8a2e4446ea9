package core

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		status  Status
		dueDate time.Time
		want    DisplayStatus
	}{
		{"paid stays paid even when overdue", StatusPaid, yesterday, DisplayPaid},
		{"paid stays paid when due in future", StatusPaid, tomorrow, DisplayPaid},
		{"received is terminal like paid", StatusReceived, yesterday, DisplayPaid},
		{"pending before now is overdue", StatusPending, yesterday, DisplayOverdue},
		{"pending after now is due", StatusPending, tomorrow, DisplayDue},
		{"pending due exactly now is due", StatusPending, now, DisplayDue},
		{"canceled falls through to overdue", StatusCanceled, yesterday, DisplayOverdue},
		{"canceled falls through to due", StatusCanceled, tomorrow, DisplayDue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.status, tt.dueDate, nil, now)
			if got != tt.want {
				t.Errorf("Classify(%q, %v) = %v, want %v", tt.status, tt.dueDate, got, tt.want)
			}
		})
	}
}

func TestClassifyIgnoresPaymentDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	paidAt := now.AddDate(0, 0, -3)

	got := Classify(StatusPending, now.AddDate(0, 0, -1), &paidAt, now)
	if got != DisplayOverdue {
		t.Errorf("payment date must not affect a pending invoice: got %v", got)
	}
}

func TestDueSoon(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		days    int
		want    bool
	}{
		{"three days out within week", now.AddDate(0, 0, 3), 7, true},
		{"already overdue", now.AddDate(0, 0, -1), 7, false},
		{"exactly now is not soon", now, 7, false},
		{"exactly at horizon is not soon", now.AddDate(0, 0, 7), 7, false},
		{"just inside horizon", now.AddDate(0, 0, 7).Add(-time.Hour), 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DueSoon(tt.dueDate, now, tt.days); got != tt.want {
				t.Errorf("DueSoon(%v, %d) = %v, want %v", tt.dueDate, tt.days, got, tt.want)
			}
		})
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	if !Overdue(now.Add(-time.Second), now) {
		t.Error("a due date in the past must be overdue")
	}
	if Overdue(now, now) {
		t.Error("a due date exactly now must not be overdue")
	}
}
