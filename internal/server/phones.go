package server

import (
	"errors"
	"net/http"

	"github.com/jengamon/lexi/internal/translit"
	"github.com/jengamon/lexi/pkg/phone"
)

// renderRequest names a phone either structurally or by its compact spec.
type renderRequest struct {
	Phone *phone.Phone `json:"phone"`
	Spec  string       `json:"spec"`
}

type brannerRequest struct {
	Branner string `json:"branner" validate:"required"`
}

// IPAResponse carries a transliterated string.
type IPAResponse struct {
	IPA string `json:"ipa"`
}

func (s *Server) handleRenderPhone(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	var p phone.Phone
	switch {
	case req.Phone != nil:
		p = *req.Phone
	case req.Spec != "":
		parsed, err := phone.Parse(req.Spec)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		p = parsed
	default:
		s.respondError(w, r, badRequest(errors.New("one of phone or spec is required")))
		return
	}

	rendering, err := translit.Render(p, s.translit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rendering)
}

func (s *Server) handleBrannerToIPA(w http.ResponseWriter, r *http.Request) {
	var req brannerRequest
	if err := decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, IPAResponse{IPA: translit.Clean(s.translit(req.Branner))})
}
