package http

import (
	"net/http"

	"faturas/internal/core"
)

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	entityType, err := queryEntityType(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	partners, err := s.store.ListPartners(r.Context(), entityType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, partners)
}

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	partner, err := s.store.GetPartner(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, partner)
}

func (s *Server) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	var partner core.Partner
	if err := decodeJSON(r, &partner); err != nil {
		badRequest(w, err)
		return
	}
	if err := partner.Validate(); err != nil {
		badRequest(w, err)
		return
	}

	created, err := s.store.CreatePartner(r.Context(), partner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	var partner core.Partner
	if err := decodeJSON(r, &partner); err != nil {
		badRequest(w, err)
		return
	}
	if err := partner.Validate(); err != nil {
		badRequest(w, err)
		return
	}

	updated, err := s.store.UpdatePartner(r.Context(), id, partner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	if err := s.store.DeletePartner(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
