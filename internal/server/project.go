package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jengamon/lexi/internal/state"
	"github.com/jengamon/lexi/pkg/core"
)

// ProjectInfo summarizes the open project.
type ProjectInfo struct {
	Name           string    `json:"name"`
	FamilyID       uuid.UUID `json:"family_id"`
	Version        string    `json:"version"`
	Revision       uint64    `json:"revision"`
	Languages      []string  `json:"languages"`
	Protolanguages []string  `json:"protolanguages"`
}

type nameRequest struct {
	Name string `json:"name" validate:"required"`
}

type saveRequest struct {
	Note string `json:"note"`
}

// SaveResult reports where a save went.
type SaveResult struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Snapshot string `json:"snapshot,omitempty"`
}

func (s *Server) projectInfo() ProjectInfo {
	name, g, rev := s.doc.Snapshot()
	return ProjectInfo{
		Name:           name,
		FamilyID:       g.FamilyID,
		Version:        g.Version,
		Revision:       rev,
		Languages:      g.Names(core.KindLanguage),
		Protolanguages: g.Names(core.KindProtolanguage),
	}
}

func (s *Server) handleProject(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.projectInfo())
}

func (s *Server) handleNewProject(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.doc.Replace(req.Name, core.NewGroup()); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, s.projectInfo())
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.doc.SetName(req.Name); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.projectInfo())
}

func (s *Server) handleEpoch(w http.ResponseWriter, r *http.Request) {
	if _, err := s.doc.Epoch(); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.projectInfo())
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	incoming, err := core.Decode(r.Body)
	if err != nil {
		if !errors.Is(err, core.ErrVersionMismatch) {
			err = badRequest(err)
		}
		s.respondError(w, r, err)
		return
	}

	report, err := s.doc.Merge(incoming)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name, g, _ := s.doc.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+state.FileSuffix))
	if err := core.Encode(w, g); err != nil {
		s.logger.Error("failed to export project", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.files == nil && s.history == nil {
		s.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no project store configured", Code: http.StatusServiceUnavailable})
		return
	}

	var req saveRequest
	if r.ContentLength != 0 {
		if err := decodeRequest(r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	name, g, _ := s.doc.Snapshot()
	result := SaveResult{Name: name}

	if s.files != nil {
		path, err := s.files.Path(name)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := s.files.Save(r.Context(), name, g); err != nil {
			s.respondError(w, r, err)
			return
		}
		result.Path = path
	}
	if s.history != nil {
		snap, err := s.history.Record(r.Context(), name, g, req.Note)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		result.Snapshot = snap.ID
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if s.files == nil {
		s.respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "no project store configured", Code: http.StatusServiceUnavailable})
		return
	}

	var req nameRequest
	if err := decodeRequest(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	g, err := s.files.Load(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.doc.Replace(req.Name, g); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.projectInfo())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.respondJSON(w, http.StatusOK, []state.Snapshot{})
		return
	}
	snaps, err := s.history.List(r.Context(), s.doc.Name(), 0)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if snaps == nil {
		snaps = []state.Snapshot{}
	}
	s.respondJSON(w, http.StatusOK, snaps)
}
