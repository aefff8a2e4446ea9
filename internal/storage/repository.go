// Package storage provides the SQLite-backed entity store. Dates are
// stored as RFC 3339 strings and amounts as integer cents.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"faturas/internal/core"
	"faturas/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database connection is still usable. Readiness
// probes call this through the server's health check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// timeFormat is the column encoding for all date/time values.
const timeFormat = time.RFC3339Nano

func encodeTime(t time.Time) string { return t.UTC().Format(timeFormat) }

func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeFormat, s)
}

// mapConstraintErr translates SQLite uniqueness violations to store errors.
func mapConstraintErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "partners.document_number"):
		return store.ErrDuplicateDocument
	case strings.Contains(msg, "categories.name"):
		return store.ErrDuplicateName
	case strings.Contains(msg, "users.username"):
		return store.ErrDuplicateUsername
	}
	return err
}

func isConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Users

const userColumns = "id, username, password, name, email, role, created_at"

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var (
		u         core.User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Name, &u.Email, &u.Role, &createdAt); err != nil {
		return core.User{}, err
	}
	t, err := decodeTime(createdAt)
	if err != nil {
		return core.User{}, fmt.Errorf("decode created_at: %w", err)
	}
	u.CreatedAt = t
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []core.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.Role == "" {
		u.Role = core.RoleOrdinary
	}
	u.CreatedAt = time.Now()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, password, name, email, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.Username, u.Password, u.Name, u.Email, u.Role, encodeTime(u.CreatedAt))
	if err != nil {
		if isConstraintErr(err) {
			return core.User{}, mapConstraintErr(err)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("last insert id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) DeleteUser(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "users", id)
}

// Partners

const partnerColumns = "id, name, document_number, entity_type, email, phone, address, contact_name, bank_details, created_at"

func scanPartner(row interface{ Scan(...any) error }) (core.Partner, error) {
	var (
		p         core.Partner
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.DocumentNumber, &p.EntityType, &p.Email,
		&p.Phone, &p.Address, &p.ContactName, &p.BankDetails, &createdAt); err != nil {
		return core.Partner{}, err
	}
	t, err := decodeTime(createdAt)
	if err != nil {
		return core.Partner{}, fmt.Errorf("decode created_at: %w", err)
	}
	p.CreatedAt = t
	return p, nil
}

func (r *SQLiteRepository) GetPartner(ctx context.Context, id int64) (core.Partner, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+partnerColumns+" FROM partners WHERE id = ?", id)
	p, err := scanPartner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Partner{}, store.ErrNotFound
	}
	if err != nil {
		return core.Partner{}, fmt.Errorf("get partner: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListPartners(ctx context.Context, entityType core.EntityType) ([]core.Partner, error) {
	query := "SELECT " + partnerColumns + " FROM partners"
	args := []any{}
	if entityType != "" {
		// "both" serves either role.
		query += " WHERE entity_type = ? OR entity_type = ?"
		args = append(args, entityType, core.Both)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	defer rows.Close()

	partners := []core.Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partner: %w", err)
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

func (r *SQLiteRepository) CreatePartner(ctx context.Context, p core.Partner) (core.Partner, error) {
	p.CreatedAt = time.Now()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO partners (name, document_number, entity_type, email, phone, address, contact_name, bank_details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.DocumentNumber, p.EntityType, p.Email, p.Phone, p.Address,
		p.ContactName, p.BankDetails, encodeTime(p.CreatedAt))
	if err != nil {
		if isConstraintErr(err) {
			return core.Partner{}, mapConstraintErr(err)
		}
		return core.Partner{}, fmt.Errorf("create partner: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Partner{}, fmt.Errorf("last insert id: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) UpdatePartner(ctx context.Context, id int64, p core.Partner) (core.Partner, error) {
	existing, err := r.GetPartner(ctx, id)
	if err != nil {
		return core.Partner{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE partners SET name = ?, document_number = ?, entity_type = ?, email = ?,
		 phone = ?, address = ?, contact_name = ?, bank_details = ? WHERE id = ?`,
		p.Name, p.DocumentNumber, p.EntityType, p.Email, p.Phone, p.Address,
		p.ContactName, p.BankDetails, id)
	if err != nil {
		if isConstraintErr(err) {
			return core.Partner{}, mapConstraintErr(err)
		}
		return core.Partner{}, fmt.Errorf("update partner: %w", err)
	}

	p.ID = id
	p.CreatedAt = existing.CreatedAt
	return p, nil
}

func (r *SQLiteRepository) DeletePartner(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "partners", id)
}

// Categories

const categoryColumns = "id, name, description, created_at"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c         core.Category
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &createdAt); err != nil {
		return core.Category{}, err
	}
	t, err := decodeTime(createdAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("decode created_at: %w", err)
	}
	c.CreatedAt = t
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, store.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.CreatedAt = time.Now()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, description, created_at) VALUES (?, ?, ?)",
		c.Name, c.Description, encodeTime(c.CreatedAt))
	if err != nil {
		if isConstraintErr(err) {
			return core.Category{}, mapConstraintErr(err)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, c core.Category) (core.Category, error) {
	existing, err := r.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}

	_, err = r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, description = ? WHERE id = ?",
		c.Name, c.Description, id)
	if err != nil {
		if isConstraintErr(err) {
			return core.Category{}, mapConstraintErr(err)
		}
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}

	c.ID = id
	c.CreatedAt = existing.CreatedAt
	return c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", id)
}

// Invoices

const invoiceColumns = `id, invoice_type, number, partner_id, category_id, issue_date, due_date,
	amount_cents, description, status, payment_method, transaction_date,
	attachment_xml, attachment_pdf, notes, created_at, created_by`

func scanInvoice(row interface{ Scan(...any) error }) (core.Invoice, error) {
	var (
		inv             core.Invoice
		issueDate       string
		dueDate         string
		transactionDate sql.NullString
		createdAt       string
	)
	if err := row.Scan(&inv.ID, &inv.InvoiceType, &inv.Number, &inv.PartnerID, &inv.CategoryID,
		&issueDate, &dueDate, &inv.Amount.Cents, &inv.Description, &inv.Status,
		&inv.PaymentMethod, &transactionDate, &inv.AttachmentXML, &inv.AttachmentPDF,
		&inv.Notes, &createdAt, &inv.CreatedBy); err != nil {
		return core.Invoice{}, err
	}

	var err error
	if inv.IssueDate, err = decodeTime(issueDate); err != nil {
		return core.Invoice{}, fmt.Errorf("decode issue_date: %w", err)
	}
	if inv.DueDate, err = decodeTime(dueDate); err != nil {
		return core.Invoice{}, fmt.Errorf("decode due_date: %w", err)
	}
	if inv.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Invoice{}, fmt.Errorf("decode created_at: %w", err)
	}
	if transactionDate.Valid && transactionDate.String != "" {
		t, err := decodeTime(transactionDate.String)
		if err != nil {
			return core.Invoice{}, fmt.Errorf("decode transaction_date: %w", err)
		}
		inv.TransactionDate = &t
	}
	return inv, nil
}

func encodeNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id int64) (core.InvoiceWithRelations, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.InvoiceWithRelations{}, store.ErrNotFound
	}
	if err != nil {
		return core.InvoiceWithRelations{}, fmt.Errorf("get invoice: %w", err)
	}
	return r.join(ctx, inv)
}

// join resolves the invoice's partner and category. A dangling reference
// surfaces as ErrNotFound, matching the single-invoice contract.
func (r *SQLiteRepository) join(ctx context.Context, inv core.Invoice) (core.InvoiceWithRelations, error) {
	partner, err := r.GetPartner(ctx, inv.PartnerID)
	if err != nil {
		return core.InvoiceWithRelations{}, err
	}
	category, err := r.GetCategory(ctx, inv.CategoryID)
	if err != nil {
		return core.InvoiceWithRelations{}, err
	}
	return core.InvoiceWithRelations{Invoice: inv, Partner: partner, Category: category}, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, invoiceType core.InvoiceType) ([]core.InvoiceWithRelations, error) {
	records, err := r.ListInvoiceRecords(ctx, invoiceType)
	if err != nil {
		return nil, err
	}

	partners, err := r.ListPartners(ctx, "")
	if err != nil {
		return nil, err
	}
	partnerByID := make(map[int64]core.Partner, len(partners))
	for _, p := range partners {
		partnerByID[p.ID] = p
	}

	categories, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	categoryByID := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	// Invoices whose partner or category no longer resolves are dropped.
	joined := []core.InvoiceWithRelations{}
	for _, inv := range records {
		partner, ok := partnerByID[inv.PartnerID]
		if !ok {
			continue
		}
		category, ok := categoryByID[inv.CategoryID]
		if !ok {
			continue
		}
		joined = append(joined, core.InvoiceWithRelations{Invoice: inv, Partner: partner, Category: category})
	}
	return joined, nil
}

func (r *SQLiteRepository) ListInvoiceRecords(ctx context.Context, invoiceType core.InvoiceType) ([]core.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices"
	args := []any{}
	if invoiceType != "" {
		query += " WHERE invoice_type = ?"
		args = append(args, invoiceType)
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []core.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *SQLiteRepository) CreateInvoice(ctx context.Context, inv core.Invoice) (core.Invoice, error) {
	if inv.Status == "" {
		inv.Status = core.StatusPending
	}
	inv.CreatedAt = time.Now()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (invoice_type, number, partner_id, category_id, issue_date, due_date,
		 amount_cents, description, status, payment_method, transaction_date,
		 attachment_xml, attachment_pdf, notes, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.InvoiceType, inv.Number, inv.PartnerID, inv.CategoryID,
		encodeTime(inv.IssueDate), encodeTime(inv.DueDate), inv.Amount.Cents,
		inv.Description, inv.Status, inv.PaymentMethod, encodeNullableTime(inv.TransactionDate),
		inv.AttachmentXML, inv.AttachmentPDF, inv.Notes, encodeTime(inv.CreatedAt), inv.CreatedBy)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	inv.ID, err = res.LastInsertId()
	if err != nil {
		return core.Invoice{}, fmt.Errorf("last insert id: %w", err)
	}
	return inv, nil
}

func (r *SQLiteRepository) UpdateInvoice(ctx context.Context, id int64, inv core.Invoice) (core.Invoice, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
	existing, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, store.ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE invoices SET invoice_type = ?, number = ?, partner_id = ?, category_id = ?,
		 issue_date = ?, due_date = ?, amount_cents = ?, description = ?, status = ?,
		 payment_method = ?, transaction_date = ?, attachment_xml = ?, attachment_pdf = ?, notes = ?
		 WHERE id = ?`,
		inv.InvoiceType, inv.Number, inv.PartnerID, inv.CategoryID,
		encodeTime(inv.IssueDate), encodeTime(inv.DueDate), inv.Amount.Cents,
		inv.Description, inv.Status, inv.PaymentMethod, encodeNullableTime(inv.TransactionDate),
		inv.AttachmentXML, inv.AttachmentPDF, inv.Notes, id)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("update invoice: %w", err)
	}

	// Provenance is immutable across updates.
	inv.ID = id
	inv.CreatedAt = existing.CreatedAt
	inv.CreatedBy = existing.CreatedBy
	return inv, nil
}

func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "invoices", id)
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

var _ store.Store = (*SQLiteRepository)(nil)
