package http

import (
	"net/http"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTopPartners(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTopPartnersLimit)
	if err != nil {
		badRequest(w, err)
		return
	}
	role, err := queryRole(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	top, err := s.dashboard.TopPartners(r.Context(), limit, role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := s.dashboard.CategoryDistribution(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, distribution)
}

func (s *Server) handleUpcomingInvoices(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultUpcomingDays)
	if err != nil {
		badRequest(w, err)
		return
	}
	invoiceType, err := queryInvoiceType(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	invoices, err := s.dashboard.UpcomingInvoices(r.Context(), days, invoiceType)
	if err != nil {
		writeError(w, r, err)
		return
	}

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

func (s *Server) handleOverdueInvoices(w http.ResponseWriter, r *http.Request) {
	invoiceType, err := queryInvoiceType(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	invoices, err := s.dashboard.OverdueInvoices(r.Context(), invoiceType)
	if err != nil {
		writeError(w, r, err)
		return
	}

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
