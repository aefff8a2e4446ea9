package core

import "time"

const (
	DisplayPaid    DisplayStatus = "paid"
	DisplayDue     DisplayStatus = "due"
	DisplayOverdue DisplayStatus = "overdue"
)

// DisplayStatus is the time-sensitive classification shown to users,
// distinct from the persisted invoice status.
type DisplayStatus string

// Classify derives the display status of an invoice from its recorded
// status and due date, relative to the given instant. Callers pass the
// current time explicitly so that classification stays deterministic
// under test; the HTTP layer passes time.Now().
//
// A paid payable or received receivable is terminal. Everything else is
// classified by date alone: canceled invoices deliberately fall through
// to the due/overdue comparison, matching the behavior users see today.
//
// paymentDate is part of the contract but does not affect the result.
func Classify(status Status, dueDate time.Time, paymentDate *time.Time, now time.Time) DisplayStatus {
	_ = paymentDate
	if status.Settled() {
		return DisplayPaid
	}
	if dueDate.Before(now) {
		return DisplayOverdue
	}
	return DisplayDue
}

// Overdue reports whether the due date has passed the given instant.
func Overdue(dueDate, now time.Time) bool {
	return dueDate.Before(now)
}

// DueSoon reports whether the due date falls strictly inside the window
// (now, now+horizonDays): due dates today or exactly at the horizon are
// not "soon".
func DueSoon(dueDate, now time.Time, horizonDays int) bool {
	horizon := now.AddDate(0, 0, horizonDays)
	return dueDate.After(now) && dueDate.Before(horizon)
}
