package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Payable    InvoiceType = "payable"
	Receivable InvoiceType = "receivable"
)

const (
	Supplier EntityType = "supplier"
	Client   EntityType = "client"
	Both     EntityType = "both"
)

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusReceived Status = "received"
	StatusCanceled Status = "canceled"
)

const (
	RoleAdmin    Role = "admin"
	RoleOrdinary Role = "ordinary"
)

type (
	InvoiceType string
	EntityType  string
	Status      string
	Role        string

	User struct {
		ID        int64     `json:"id"`
		Username  string    `json:"username"`
		Password  string    `json:"-"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Role      Role      `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
	}

	Partner struct {
		ID             int64      `json:"id"`
		Name           string     `json:"name"`
		DocumentNumber string     `json:"documentNumber"` // CNPJ/CPF
		EntityType     EntityType `json:"entityType"`
		Email          string     `json:"email,omitempty"`
		Phone          string     `json:"phone,omitempty"`
		Address        string     `json:"address,omitempty"`
		ContactName    string     `json:"contactName,omitempty"`
		BankDetails    string     `json:"bankDetails,omitempty"`
		CreatedAt      time.Time  `json:"createdAt"`
	}

	Category struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	Invoice struct {
		ID              int64       `json:"id"`
		InvoiceType     InvoiceType `json:"invoiceType"`
		Number          string      `json:"number"`
		PartnerID       int64       `json:"partnerId"`
		CategoryID      int64       `json:"categoryId"`
		IssueDate       time.Time   `json:"issueDate"`
		DueDate         time.Time   `json:"dueDate"`
		Amount          Money       `json:"amount"`
		Description     string      `json:"description,omitempty"`
		Status          Status      `json:"status"`
		PaymentMethod   string      `json:"paymentMethod,omitempty"`
		TransactionDate *time.Time  `json:"transactionDate,omitempty"`
		AttachmentXML   string      `json:"attachmentXml,omitempty"`
		AttachmentPDF   string      `json:"attachmentPdf,omitempty"`
		Notes           string      `json:"notes,omitempty"`
		CreatedAt       time.Time   `json:"createdAt"`
		CreatedBy       int64       `json:"createdBy"`
	}

	// InvoiceWithRelations is an invoice joined with its partner and category.
	InvoiceWithRelations struct {
		Invoice
		Partner  Partner  `json:"partner"`
		Category Category `json:"category"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDocument      = errors.New("empty document number")
	ErrEmptyNumber        = errors.New("empty invoice number")
	ErrInvalidEntityType  = errors.New("invalid entity type")
	ErrInvalidInvoiceType = errors.New("invalid invoice type")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrZeroIssueDate      = errors.New("issue date cannot be zero")
	ErrZeroDueDate        = errors.New("due date cannot be zero")
	ErrMissingPartner     = errors.New("missing partner reference")
	ErrMissingCategory    = errors.New("missing category reference")
)

func (t InvoiceType) Valid() bool {
	return t == Payable || t == Receivable
}

func (t EntityType) Valid() bool {
	return t == Supplier || t == Client || t == Both
}

// Matches reports whether a partner tagged with this entity type serves the
// requested role. Partners tagged "both" match either role.
func (t EntityType) Matches(want EntityType) bool {
	return t == want || t == Both
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusReceived, StatusCanceled:
		return true
	}
	return false
}

// Settled reports whether the recorded status is terminal for display
// purposes: a paid payable or a received receivable.
func (s Status) Settled() bool {
	return s == StatusPaid || s == StatusReceived
}

func (p Partner) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.DocumentNumber) == "" {
		return ErrEmptyDocument
	}
	if !p.EntityType.Valid() {
		return ErrInvalidEntityType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (inv Invoice) Validate() error {
	if !inv.InvoiceType.Valid() {
		return ErrInvalidInvoiceType
	}
	if strings.TrimSpace(inv.Number) == "" {
		return ErrEmptyNumber
	}
	if inv.PartnerID <= 0 {
		return ErrMissingPartner
	}
	if inv.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if inv.IssueDate.IsZero() {
		return ErrZeroIssueDate
	}
	if inv.DueDate.IsZero() {
		return ErrZeroDueDate
	}
	if err := inv.Amount.Validate(); err != nil {
		return err
	}
	if !inv.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
