// Package memory implements the entity store with mutex-guarded maps.
// This is the reference backend: single process, single writer, ids from
// simple counters. There is no referential integrity between invoices and
// their partner/category; joined reads drop rows whose references no
// longer resolve, which is the documented behavior after hard deletes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"faturas/internal/core"
	"faturas/internal/store"
)

type Store struct {
	mu sync.Mutex

	users      map[int64]core.User
	partners   map[int64]core.Partner
	categories map[int64]core.Category
	invoices   map[int64]core.Invoice

	nextUserID     int64
	nextPartnerID  int64
	nextCategoryID int64
	nextInvoiceID  int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:          make(map[int64]core.User),
		partners:       make(map[int64]core.Partner),
		categories:     make(map[int64]core.Category),
		invoices:       make(map[int64]core.Invoice),
		nextUserID:     1,
		nextPartnerID:  1,
		nextCategoryID: 1,
		nextInvoiceID:  1,
	}
}

// NewSeeded returns a store bootstrapped with the given categories,
// falling back to store.DefaultCategories when none are given.
func NewSeeded(categories ...core.Category) *Store {
	s := New()
	if len(categories) == 0 {
		categories = store.DefaultCategories
	}
	for _, c := range categories {
		// Seeding ignores duplicates so it stays idempotent.
		_, _ = s.CreateCategory(context.Background(), c)
	}
	return s
}

// User methods

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sortByID(out, func(u core.User) int64 { return u.ID })
	return out, nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return core.User{}, store.ErrDuplicateUsername
		}
	}
	if u.Role == "" {
		u.Role = core.RoleOrdinary
	}
	u.ID = s.nextUserID
	s.nextUserID++
	u.CreatedAt = time.Now()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// Partner methods

func (s *Store) GetPartner(_ context.Context, id int64) (core.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partners[id]
	if !ok {
		return core.Partner{}, store.ErrNotFound
	}
	return p, nil
}

func (s *Store) ListPartners(_ context.Context, entityType core.EntityType) ([]core.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		if entityType != "" && !p.EntityType.Matches(entityType) {
			continue
		}
		out = append(out, p)
	}
	sortByID(out, func(p core.Partner) int64 { return p.ID })
	return out, nil
}

func (s *Store) CreatePartner(_ context.Context, p core.Partner) (core.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDocument(p.DocumentNumber, 0); err != nil {
		return core.Partner{}, err
	}
	p.ID = s.nextPartnerID
	s.nextPartnerID++
	p.CreatedAt = time.Now()
	s.partners[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePartner(_ context.Context, id int64, p core.Partner) (core.Partner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.partners[id]
	if !ok {
		return core.Partner{}, store.ErrNotFound
	}
	if err := s.checkDocument(p.DocumentNumber, id); err != nil {
		return core.Partner{}, err
	}
	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	s.partners[id] = p
	return p, nil
}

func (s *Store) DeletePartner(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.partners, id)
	return nil
}

// checkDocument enforces document-number uniqueness across partners.
// Callers hold the lock. self is the id being updated, 0 on create.
func (s *Store) checkDocument(document string, self int64) error {
	document = strings.TrimSpace(document)
	for _, p := range s.partners {
		if p.ID != self && p.DocumentNumber == document {
			return store.ErrDuplicateDocument
		}
	}
	return nil
}

// Category methods

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sortByID(out, func(c core.Category) int64 { return c.ID })
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCategoryName(c.Name, 0); err != nil {
		return core.Category{}, err
	}
	c.ID = s.nextCategoryID
	s.nextCategoryID++
	c.CreatedAt = time.Now()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.categories[id]
	if !ok {
		return core.Category{}, store.ErrNotFound
	}
	if err := s.checkCategoryName(c.Name, id); err != nil {
		return core.Category{}, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	s.categories[id] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) checkCategoryName(name string, self int64) error {
	name = strings.TrimSpace(name)
	for _, c := range s.categories {
		if c.ID != self && c.Name == name {
			return store.ErrDuplicateName
		}
	}
	return nil
}

// Invoice methods

func (s *Store) GetInvoice(_ context.Context, id int64) (core.InvoiceWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return core.InvoiceWithRelations{}, store.ErrNotFound
	}
	joined, ok := s.join(inv)
	if !ok {
		return core.InvoiceWithRelations{}, store.ErrNotFound
	}
	return joined, nil
}

func (s *Store) ListInvoices(_ context.Context, invoiceType core.InvoiceType) ([]core.InvoiceWithRelations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.InvoiceWithRelations, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if invoiceType != "" && inv.InvoiceType != invoiceType {
			continue
		}
		if joined, ok := s.join(inv); ok {
			out = append(out, joined)
		}
	}
	sortByID(out, func(i core.InvoiceWithRelations) int64 { return i.ID })
	return out, nil
}

func (s *Store) ListInvoiceRecords(_ context.Context, invoiceType core.InvoiceType) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if invoiceType != "" && inv.InvoiceType != invoiceType {
			continue
		}
		out = append(out, inv)
	}
	sortByID(out, func(i core.Invoice) int64 { return i.ID })
	return out, nil
}

func (s *Store) CreateInvoice(_ context.Context, inv core.Invoice) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.nextInvoiceID
	s.nextInvoiceID++
	inv.CreatedAt = time.Now()
	if inv.Status == "" {
		inv.Status = core.StatusPending
	}
	s.invoices[inv.ID] = inv
	return inv, nil
}

func (s *Store) UpdateInvoice(_ context.Context, id int64, inv core.Invoice) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.invoices[id]
	if !ok {
		return core.Invoice{}, store.ErrNotFound
	}
	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	inv.CreatedBy = existing.CreatedBy
	s.invoices[id] = inv
	return inv, nil
}

func (s *Store) DeleteInvoice(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

// join resolves an invoice's partner and category. Callers hold the lock.
func (s *Store) join(inv core.Invoice) (core.InvoiceWithRelations, bool) {
	partner, ok := s.partners[inv.PartnerID]
	if !ok {
		return core.InvoiceWithRelations{}, false
	}
	category, ok := s.categories[inv.CategoryID]
	if !ok {
		return core.InvoiceWithRelations{}, false
	}
	return core.InvoiceWithRelations{Invoice: inv, Partner: partner, Category: category}, true
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}
