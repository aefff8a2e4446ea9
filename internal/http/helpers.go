package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"faturas/internal/core"
	applog "faturas/internal/log"
	"faturas/internal/services"
	"faturas/internal/store"
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

// badRequest writes a 400 with the error message.
func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
}

// writeError maps a domain error to an HTTP status and JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", applog.FieldError, err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Message: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateDocument),
		errors.Is(err, store.ErrDuplicateName),
		errors.Is(err, store.ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidLimit),
		errors.Is(err, services.ErrInvalidDays),
		errors.Is(err, services.ErrInvalidRole),
		isValidationErr(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isValidationErr(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount, core.ErrEmptyName, core.ErrEmptyDocument,
		core.ErrEmptyNumber, core.ErrInvalidEntityType, core.ErrInvalidInvoiceType,
		core.ErrInvalidStatus, core.ErrZeroIssueDate, core.ErrZeroDueDate,
		core.ErrMissingPartner, core.ErrMissingCategory,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}

var (
	errInvalidBody = errors.New("invalid request body")
	errInvalidID   = errors.New("invalid id")
	errInvalidType = errors.New("type must be payable or receivable")
	errInvalidRole = errors.New("type must be supplier or client")
)

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// queryInt parses an optional integer query parameter. An absent or blank
// parameter yields the default; anything non-numeric is an error.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + name + " parameter")
	}
	return n, nil
}

// queryInvoiceType parses an optional ?type= invoice type filter.
func queryInvoiceType(r *http.Request) (core.InvoiceType, error) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return "", nil
	}
	t := core.InvoiceType(v)
	if !t.Valid() {
		return "", errInvalidType
	}
	return t, nil
}

// queryRole parses the top-partners ?type= role filter.
func queryRole(r *http.Request) (core.EntityType, error) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return "", nil
	}
	role := core.EntityType(v)
	if role != core.Supplier && role != core.Client {
		return "", errInvalidRole
	}
	return role, nil
}

// queryEntityType parses the partners ?type= filter.
func queryEntityType(r *http.Request) (core.EntityType, error) {
	v := strings.TrimSpace(r.URL.Query().Get("type"))
	if v == "" {
		return "", nil
	}
	t := core.EntityType(v)
	if !t.Valid() {
		return "", core.ErrInvalidEntityType
	}
	return t, nil
}
