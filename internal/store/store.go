// Package store defines the entity store contract: keyed access to users,
// partners, categories and invoices. Implementations live in subpackages
// (in-memory) and in internal/storage (SQLite).
package store

import (
	"context"
	"errors"

	"faturas/internal/core"
)

var (
	// ErrNotFound is returned when a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateDocument is returned when a partner's document number is
	// already registered to another partner.
	ErrDuplicateDocument = errors.New("duplicate document number")
	// ErrDuplicateName is returned when a category name is already taken.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("duplicate username")
)

// Ports for the entity store.
type (
	UserStore interface {
		GetUser(ctx context.Context, id int64) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		ListUsers(ctx context.Context) ([]core.User, error)
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		DeleteUser(ctx context.Context, id int64) error
	}

	PartnerStore interface {
		GetPartner(ctx context.Context, id int64) (core.Partner, error)
		// ListPartners returns all partners, or only those matching the
		// given role when entityType is non-empty ("both" matches either).
		ListPartners(ctx context.Context, entityType core.EntityType) ([]core.Partner, error)
		CreatePartner(ctx context.Context, p core.Partner) (core.Partner, error)
		UpdatePartner(ctx context.Context, id int64, p core.Partner) (core.Partner, error)
		// DeletePartner removes the partner without touching invoices that
		// reference it; joined reads drop the dangling rows.
		DeletePartner(ctx context.Context, id int64) error
	}

	CategoryStore interface {
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, id int64, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id int64) error
	}

	InvoiceStore interface {
		// GetInvoice returns the invoice joined with its partner and
		// category; ErrNotFound when either reference dangles.
		GetInvoice(ctx context.Context, id int64) (core.InvoiceWithRelations, error)
		// ListInvoices returns all invoices, optionally filtered by type,
		// joined with their relations. Invoices whose partner or category
		// no longer resolves are silently dropped.
		ListInvoices(ctx context.Context, invoiceType core.InvoiceType) ([]core.InvoiceWithRelations, error)
		// ListInvoiceRecords returns the raw invoice rows without joining,
		// dangling references included. The dashboard aggregates over this
		// set and substitutes placeholders for unresolved references.
		ListInvoiceRecords(ctx context.Context, invoiceType core.InvoiceType) ([]core.Invoice, error)
		CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error)
		UpdateInvoice(ctx context.Context, id int64, inv core.Invoice) (core.Invoice, error)
		DeleteInvoice(ctx context.Context, id int64) error
	}

	// Store is the full entity store contract.
	Store interface {
		UserStore
		PartnerStore
		CategoryStore
		InvoiceStore
	}
)

// DefaultCategories is the fixed set seeded at store initialization.
// Tests and alternative deployments can seed their own set instead.
var DefaultCategories = []core.Category{
	{Name: "Aluguel/Instalações", Description: "Despesas com aluguel e manutenção de instalações"},
	{Name: "Equipamentos", Description: "Compra e manutenção de equipamentos"},
	{Name: "Serviços", Description: "Prestação de serviços diversos"},
	{Name: "Materiais", Description: "Materiais de escritório e consumíveis"},
	{Name: "Vendas", Description: "Vendas de produtos ou serviços"},
}
