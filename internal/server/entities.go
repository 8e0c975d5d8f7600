package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jengamon/lexi/internal/ancestry"
	"github.com/jengamon/lexi/pkg/core"
)

type ancestorsRequest struct {
	Ancestors []string `json:"ancestors"`
}

// PhonemeResponse pairs a phoneme with its id.
type PhonemeResponse struct {
	ID      uuid.UUID    `json:"id"`
	Phoneme core.Phoneme `json:"phoneme"`
}

// DeleteResponse reports whether anything was removed.
type DeleteResponse struct {
	Deleted bool          `json:"deleted"`
	Phoneme *core.Phoneme `json:"phoneme,omitempty"`
}

func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, badRequest(err)
	}
	return id, nil
}

// =============================================================================
// Languages and protolanguages
// =============================================================================

func (s *Server) handleListNames(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, s.doc.Names(kind))
	}
}

func (s *Server) handleCreateEntity(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, r, badRequest(err))
			return
		}

		var err error
		if kind == core.KindProtolanguage {
			err = s.doc.CreateProtolanguage(req.Name)
		} else {
			err = s.doc.CreateLanguage(req.Name)
		}
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, nameRequest{Name: req.Name})
	}
}

func (s *Server) handleGetEntity(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := nameParam(r)
		var (
			v   any
			err error
		)
		if kind == core.KindProtolanguage {
			v, err = s.doc.Protolanguage(name)
		} else {
			v, err = s.doc.Language(name)
		}
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, v)
	}
}

func (s *Server) handleDeleteEntity(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, DeleteResponse{Deleted: s.doc.Delete(kind, nameParam(r))})
	}
}

func (s *Server) handleSetAncestors(w http.ResponseWriter, r *http.Request) {
	var req ancestorsRequest
	if err := decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	name := nameParam(r)
	if err := s.doc.SetAncestors(name, req.Ancestors); err != nil {
		s.respondError(w, r, err)
		return
	}
	lang, err := s.doc.Language(name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, lang)
}

func (s *Server) handleGetDescription(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		desc, err := s.doc.Description(kind, nameParam(r))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if len(desc) == 0 {
			desc = json.RawMessage("null")
		}
		s.respondJSON(w, http.StatusOK, desc)
	}
}

func (s *Server) handleSetDescription(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			s.respondError(w, r, badRequest(err))
			return
		}
		if len(raw) > 0 && !json.Valid(raw) {
			s.respondError(w, r, badRequest(errors.New("description is not valid JSON")))
			return
		}
		if err := s.doc.SetDescription(kind, nameParam(r), raw); err != nil {
			s.respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// =============================================================================
// Phonemes
// =============================================================================

func (s *Server) handleEnumeratePhonemes(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.doc.EnumeratePhonemes(kind, nameParam(r))
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if entries == nil {
			entries = []ancestry.Entry{}
		}
		s.respondJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) handleCreatePhoneme(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p core.Phoneme
		if err := decodeRequest(r, &p); err != nil {
			s.respondError(w, r, err)
			return
		}
		id, err := s.doc.CreatePhoneme(kind, nameParam(r), p)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, PhonemeResponse{ID: id, Phoneme: p.Normalize()})
	}
}

func (s *Server) handleGetPhoneme(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		p, err := s.doc.GetPhoneme(kind, nameParam(r), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, PhonemeResponse{ID: id, Phoneme: p})
	}
}

func (s *Server) handleSetPhoneme(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		var p core.Phoneme
		if err := decodeRequest(r, &p); err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := s.doc.SetPhoneme(kind, nameParam(r), id, p); err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondJSON(w, http.StatusOK, PhonemeResponse{ID: id, Phoneme: p.Normalize()})
	}
}

func (s *Server) handleDeletePhoneme(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		p, ok, err := s.doc.DeletePhoneme(kind, nameParam(r), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		resp := DeleteResponse{Deleted: ok}
		if ok {
			resp.Phoneme = &p
		}
		s.respondJSON(w, http.StatusOK, resp)
	}
}
