// Package ancestry resolves phonemes through one level of named ancestors.
//
// A language's own phonemes always win. On a local miss the resolver walks
// the language's ancestor names in stored order and consults the first
// protolanguage that both exists and defines the id. Names that resolve to
// no protolanguage are logged and skipped.
package ancestry

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jengamon/lexi/pkg/core"
)

// Resolver answers phoneme queries against a fixed protolanguage pool.
type Resolver struct {
	logger *slog.Logger
	pool   []*core.Protolanguage
}

// New creates a resolver over pool. A nil logger discards output.
func New(logger *slog.Logger, pool []*core.Protolanguage) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{logger: logger, pool: pool}
}

// Entry is one visible phoneme and the entity that provided it.
type Entry struct {
	ID      uuid.UUID    `json:"id"`
	Phoneme core.Phoneme `json:"phoneme"`
	Source  string       `json:"source"`
}

// Ancestors returns the protolanguages named by e that exist, in order.
// Dangling names are logged at error level and omitted.
func (r *Resolver) Ancestors(e core.Entity) []*core.Protolanguage {
	names := e.AncestorNames()
	out := make([]*core.Protolanguage, 0, len(names))
	for _, name := range names {
		proto := r.lookup(name)
		if proto == nil {
			err := &core.InvalidAncestorError{Language: e.EntityName(), Ancestor: name}
			r.logger.Error("skipping ancestor", "error", err)
			continue
		}
		out = append(out, proto)
	}
	return out
}

func (r *Resolver) lookup(name string) *core.Protolanguage {
	for _, p := range r.pool {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// provider returns the first existing ancestor that defines id.
func (r *Resolver) provider(e core.Entity, id uuid.UUID) *core.Protolanguage {
	for _, proto := range r.Ancestors(e) {
		if _, ok := proto.Phonemes[id]; ok {
			return proto
		}
	}
	return nil
}

// Get returns the phoneme visible to e under id.
func (r *Resolver) Get(e core.Entity, id uuid.UUID) (core.Phoneme, error) {
	if p, ok := e.LocalPhonemes()[id]; ok {
		return p.Clone(), nil
	}
	if proto := r.provider(e, id); proto != nil {
		return proto.Phonemes[id].Clone(), nil
	}
	return core.Phoneme{}, fmt.Errorf("phoneme %s in %s %q: %w", id, e.EntityKind(), e.EntityName(), core.ErrNotFound)
}

// Set stores value under id in e's own map. The id must already be local or
// be defined by a resolvable ancestor; setting an inherited id creates a
// local override and leaves the ancestor untouched. On failure nothing is
// mutated.
func (r *Resolver) Set(e core.Entity, id uuid.UUID, value core.Phoneme) error {
	if _, ok := e.LocalPhonemes()[id]; !ok && r.provider(e, id) == nil {
		return fmt.Errorf("phoneme %s in %s %q: %w", id, e.EntityKind(), e.EntityName(), core.ErrNotFound)
	}
	e.PutLocal(id, value.Normalize())
	return nil
}

// Delete removes id from e's own map only. It reports false when id is not
// local, even if an ancestor defines it.
func (r *Resolver) Delete(e core.Entity, id uuid.UUID) (core.Phoneme, bool) {
	return e.DeleteLocal(id)
}

// Enumerate lists every phoneme visible to e: its own entries first, then
// each resolvable ancestor's entries in ancestor order. Entries within one
// source are sorted by id. The result is not deduplicated, so an overridden
// id appears once per source.
func (r *Resolver) Enumerate(e core.Entity) []Entry {
	var out []Entry
	out = appendEntries(out, e.EntityName(), e.LocalPhonemes())
	for _, proto := range r.Ancestors(e) {
		out = appendEntries(out, proto.Name, proto.Phonemes)
	}
	return out
}

func appendEntries(out []Entry, source string, m core.PhonemeMap) []Entry {
	for _, id := range m.IDs() {
		out = append(out, Entry{ID: id, Phoneme: m[id].Clone(), Source: source})
	}
	return out
}
