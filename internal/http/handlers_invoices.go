package http

import (
	"net/http"
	"time"

	"faturas/internal/core"
)

// invoiceResponse is a joined invoice annotated with its display status.
type invoiceResponse struct {
	core.InvoiceWithRelations
	DisplayStatus core.DisplayStatus `json:"displayStatus"`
}

// invoiceRecordResponse is a bare invoice row annotated with its display
// status, returned by the write-side endpoints.
type invoiceRecordResponse struct {
	core.Invoice
	DisplayStatus core.DisplayStatus `json:"displayStatus"`
}

func (s *Server) classify(inv core.Invoice, now time.Time) core.DisplayStatus {
	return core.Classify(inv.Status, inv.DueDate, inv.TransactionDate, now)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoiceType, err := queryInvoiceType(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	invoices, err := s.store.ListInvoices(r.Context(), invoiceType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// One clock sample classifies the whole listing.
	now := s.now()
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceResponse{
			InvoiceWithRelations: inv,
			DisplayStatus:        s.classify(inv.Invoice, now),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	inv, err := s.store.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoiceResponse{
		InvoiceWithRelations: inv,
		DisplayStatus:        s.classify(inv.Invoice, s.now()),
	})
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv core.Invoice
	if err := decodeJSON(r, &inv); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.invoices.Create(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, invoiceRecordResponse{
		Invoice:       created,
		DisplayStatus: s.classify(created, s.now()),
	})
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var inv core.Invoice
	if err := decodeJSON(r, &inv); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.invoices.Update(r.Context(), id, inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoiceRecordResponse{
		Invoice:       updated,
		DisplayStatus: s.classify(updated, s.now()),
	})
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := s.invoices.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type paymentRequest struct {
	PaymentMethod   string     `json:"paymentMethod"`
	TransactionDate *time.Time `json:"transactionDate"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	when := s.now()
	if req.TransactionDate != nil {
		when = *req.TransactionDate
	}

	settled, err := s.invoices.RecordPayment(r.Context(), id, req.PaymentMethod, when)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoiceRecordResponse{
		Invoice:       settled,
		DisplayStatus: s.classify(settled, s.now()),
	})
}

func (s *Server) handleCancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	canceled, err := s.invoices.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoiceRecordResponse{
		Invoice:       canceled,
		DisplayStatus: s.classify(canceled, s.now()),
	})
}
