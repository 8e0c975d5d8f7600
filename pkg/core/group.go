package core

import (
	"fmt"

	"github.com/google/uuid"
)

// LanguageGroup is a family snapshot. FamilyID is assigned once at family
// creation and shared by every related snapshot.
type LanguageGroup struct {
	Version    string           `json:"version"`
	FamilyID   uuid.UUID        `json:"family_id"`
	Protolangs []*Protolanguage `json:"protolangs"`
	Langs      []*Language      `json:"langs"`
}

// NewGroup starts a new family at the running data version.
func NewGroup() *LanguageGroup {
	return &LanguageGroup{
		Version:    DataVersion,
		FamilyID:   uuid.New(),
		Protolangs: []*Protolanguage{},
		Langs:      []*Language{},
	}
}

// Clone returns a deep copy.
func (g *LanguageGroup) Clone() *LanguageGroup {
	out := &LanguageGroup{
		Version:    g.Version,
		FamilyID:   g.FamilyID,
		Protolangs: make([]*Protolanguage, 0, len(g.Protolangs)),
		Langs:      make([]*Language, 0, len(g.Langs)),
	}
	for _, p := range g.Protolangs {
		out.Protolangs = append(out.Protolangs, p.Clone())
	}
	for _, l := range g.Langs {
		out.Langs = append(out.Langs, l.Clone())
	}
	return out
}

// =============================================================================
// Lookups
// =============================================================================

// Language returns the language with the given name, or nil.
func (g *LanguageGroup) Language(name string) *Language {
	for _, l := range g.Langs {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Protolanguage returns the protolanguage with the given name, or nil.
func (g *LanguageGroup) Protolanguage(name string) *Protolanguage {
	for _, p := range g.Protolangs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Entity looks up a language-like entity by kind and name.
func (g *LanguageGroup) Entity(kind Kind, name string) (Entity, error) {
	switch kind {
	case KindLanguage:
		if l := g.Language(name); l != nil {
			return l, nil
		}
	case KindProtolanguage:
		if p := g.Protolanguage(name); p != nil {
			return p, nil
		}
	default:
		return nil, fmt.Errorf("unknown entity kind %d", uint8(kind))
	}
	return nil, fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
}

// Names lists entity names of the given kind in stored order.
func (g *LanguageGroup) Names(kind Kind) []string {
	var names []string
	switch kind {
	case KindLanguage:
		names = make([]string, 0, len(g.Langs))
		for _, l := range g.Langs {
			names = append(names, l.Name)
		}
	case KindProtolanguage:
		names = make([]string, 0, len(g.Protolangs))
		for _, p := range g.Protolangs {
			names = append(names, p.Name)
		}
	}
	return names
}

// =============================================================================
// CRUD
// =============================================================================

// CreateLanguage appends an empty language with no ancestors.
func (g *LanguageGroup) CreateLanguage(name string) error {
	if name == "" {
		return fmt.Errorf("create %s: %w", KindLanguage, ErrEmptyName)
	}
	if g.Language(name) != nil {
		return &NameConflictError{Kind: KindLanguage, Name: name}
	}
	g.Langs = append(g.Langs, NewLanguage(name))
	return nil
}

// CreateProtolanguage appends an empty protolanguage.
func (g *LanguageGroup) CreateProtolanguage(name string) error {
	if name == "" {
		return fmt.Errorf("create %s: %w", KindProtolanguage, ErrEmptyName)
	}
	if g.Protolanguage(name) != nil {
		return &NameConflictError{Kind: KindProtolanguage, Name: name}
	}
	g.Protolangs = append(g.Protolangs, NewProtolanguage(name))
	return nil
}

// DeleteLanguage removes the named language. Missing names are a no-op.
// It reports whether anything was removed.
func (g *LanguageGroup) DeleteLanguage(name string) bool {
	for i, l := range g.Langs {
		if l.Name == name {
			g.Langs = append(g.Langs[:i], g.Langs[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteProtolanguage removes the named protolanguage. Languages that list
// it as an ancestor keep the now dangling reference.
func (g *LanguageGroup) DeleteProtolanguage(name string) bool {
	for i, p := range g.Protolangs {
		if p.Name == name {
			g.Protolangs = append(g.Protolangs[:i], g.Protolangs[i+1:]...)
			return true
		}
	}
	return false
}
