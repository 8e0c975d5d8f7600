package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jengamon/lexi/pkg/core"
	"github.com/jengamon/lexi/pkg/phone"
)

var validate = validator.New()

// errBadRequest marks malformed request input.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// decodeRequest decodes the JSON body into v and validates its struct tags.
func decodeRequest(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(err)
	}
	if err := validate.Struct(v); err != nil {
		return badRequest(err)
	}
	return nil
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var parseErr *phone.ParseError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrNameConflict),
		errors.Is(err, core.ErrFamilyMismatch),
		errors.Is(err, core.ErrVersionMismatch):
		return http.StatusConflict

	case errors.Is(err, core.ErrEmptyName),
		errors.Is(err, errBadRequest),
		errors.As(err, &parseErr):
		return http.StatusBadRequest

	case errors.Is(err, phone.ErrUnsupported):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: status})
}
