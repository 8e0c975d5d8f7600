package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/jengamon/lexi/pkg/core"
)

func (s *Server) setupRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/project", func(r chi.Router) {
			r.Get("/", s.handleProject)
			r.Post("/new", s.handleNewProject)
			r.Put("/name", s.handleRenameProject)
			r.Post("/epoch", s.handleEpoch)
			r.Post("/merge", s.handleMerge)
			r.Get("/export", s.handleExport)
			r.Post("/save", s.handleSave)
			r.Post("/load", s.handleLoad)
			r.Get("/history", s.handleHistory)
		})

		r.Route("/languages", func(r chi.Router) {
			s.entityRoutes(r, core.KindLanguage)
			r.Put("/{name}/ancestors", s.handleSetAncestors)
		})
		r.Route("/protolanguages", func(r chi.Router) {
			s.entityRoutes(r, core.KindProtolanguage)
		})

		r.Route("/phones", func(r chi.Router) {
			r.Post("/render", s.handleRenderPhone)
			r.Post("/ipa", s.handleBrannerToIPA)
		})

		r.Route("/streams", func(r chi.Router) {
			r.Get("/languages", s.handleNameStream(core.KindLanguage))
			r.Get("/protolanguages", s.handleNameStream(core.KindProtolanguage))
			r.Get("/languages/{name}/phonemes", s.handlePhonemeStream(core.KindLanguage))
			r.Get("/protolanguages/{name}/phonemes", s.handlePhonemeStream(core.KindProtolanguage))
		})
	})
}

func (s *Server) entityRoutes(r chi.Router, kind core.Kind) {
	r.Get("/", s.handleListNames(kind))
	r.Post("/", s.handleCreateEntity(kind))
	r.Get("/{name}", s.handleGetEntity(kind))
	r.Delete("/{name}", s.handleDeleteEntity(kind))
	r.Get("/{name}/description", s.handleGetDescription(kind))
	r.Put("/{name}/description", s.handleSetDescription(kind))

	r.Get("/{name}/phonemes", s.handleEnumeratePhonemes(kind))
	r.Post("/{name}/phonemes", s.handleCreatePhoneme(kind))
	r.Get("/{name}/phonemes/{id}", s.handleGetPhoneme(kind))
	r.Put("/{name}/phonemes/{id}", s.handleSetPhoneme(kind))
	r.Delete("/{name}/phonemes/{id}", s.handleDeletePhoneme(kind))
}
