package server

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/jengamon/lexi/internal/ancestry"
	"github.com/jengamon/lexi/internal/notifier"
	"github.com/jengamon/lexi/pkg/core"
)

func signalName(kind core.Kind) string {
	if kind == core.KindProtolanguage {
		return "protolanguages"
	}
	return "languages"
}

// handleNameStream pushes the current list of names of kind, then every
// changed list, until the client goes away.
func (s *Server) handleNameStream(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		key := signalName(kind)

		_ = s.doc.PollNames(r.Context(), kind, s.pollInterval, func(names []string) {
			if err := sse.MarshalAndPatchSignals(map[string]any{key: names}); err != nil {
				s.logger.Debug("name stream write failed", "stream", key, "error", err)
			}
		})
	}
}

// handlePhonemeStream pushes the phonemes visible to one entity whenever
// any phoneme changes.
func (s *Server) handlePhonemeStream(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := nameParam(r)
		updates, entries, err := s.watchPhonemes(kind, name)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		defer s.notify.Unsubscribe(updates)

		sse := datastar.NewSSE(w, r)
		send := func(entries []ancestry.Entry) error {
			if entries == nil {
				entries = []ancestry.Entry{}
			}
			return sse.MarshalAndPatchSignals(map[string]any{"phonemes": entries})
		}
		if err := send(entries); err != nil {
			return
		}

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case <-updates:
				entries, err := s.doc.EnumeratePhonemes(kind, name)
				if err != nil {
					// The entity went away.
					_ = sse.ConsoleError(err)
					return
				}
				if err := send(entries); err != nil {
					return
				}
			}
		}
	}
}

// watchPhonemes subscribes to phoneme changes and then takes the first
// enumeration, so no change after the snapshot goes unreported. The
// subscription is released when the entity does not exist.
func (s *Server) watchPhonemes(kind core.Kind, name string) (chan struct{}, []ancestry.Entry, error) {
	updates := s.notify.Subscribe(notifier.TopicPhonemes, notifier.TopicProject)
	entries, err := s.doc.EnumeratePhonemes(kind, name)
	if err != nil {
		s.notify.Unsubscribe(updates)
		return nil, nil, err
	}
	return updates, entries, nil
}
