package core

// UnknownEntity is the placeholder entity type attached to rankings whose
// partner no longer resolves.
const UnknownEntity EntityType = "unknown"

// DashboardStats is the headline bundle for the dashboard, computed for a
// single instant.
type DashboardStats struct {
	TotalInvoices int `json:"totalInvoices"`

	// Payables
	ToPay           Money `json:"toPay"`
	OverduePayables Money `json:"overduePayables"`
	Paid            Money `json:"paid"`

	// Receivables
	ToReceive          Money `json:"toReceive"`
	OverdueReceivables Money `json:"overdueReceivables"`
	Received           Money `json:"received"`

	// Pending invoices due within the next seven days (counts, not sums).
	NextWeekPayables    int `json:"nextWeekPayables"`
	NextWeekReceivables int `json:"nextWeekReceivables"`
}

// TopPartner is one row of the partner ranking over the trailing window.
// Percentage is relative to the returned top-N set, not the full population.
type TopPartner struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Total      Money      `json:"total"`
	Percentage float64    `json:"percentage"`
	Type       EntityType `json:"type"`
}

// CategoryDistribution is one row of the category breakdown over the
// trailing window. Percentage is relative to the whole result set.
type CategoryDistribution struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	TotalPayable    Money   `json:"totalPayable"`
	TotalReceivable Money   `json:"totalReceivable"`
	Percentage      float64 `json:"percentage"`
	Icon            string  `json:"icon"`
}
