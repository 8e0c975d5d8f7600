package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Kind distinguishes the two language-like entities.
type Kind uint8

// Entity kinds. The zero value is invalid so a missing kind is caught.
const (
	KindLanguage Kind = iota + 1
	KindProtolanguage
)

// String returns the kind's display name.
func (k Kind) String() string {
	switch k {
	case KindLanguage:
		return "language"
	case KindProtolanguage:
		return "proto-language"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind accepts "language"/"lang" and "protolanguage"/"proto-language"/"proto".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "language", "lang":
		return KindLanguage, nil
	case "protolanguage", "proto-language", "proto":
		return KindProtolanguage, nil
	default:
		return 0, fmt.Errorf("unknown entity kind %q", s)
	}
}

// PhonemeMap maps stable phoneme ids to phonemes.
type PhonemeMap map[uuid.UUID]Phoneme

// IDs returns the keys sorted by their string form.
func (m PhonemeMap) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Clone returns a deep copy. A nil map clones to an empty one.
func (m PhonemeMap) Clone() PhonemeMap {
	out := make(PhonemeMap, len(m))
	for id, p := range m {
		out[id] = p.Clone()
	}
	return out
}

// Entity is the capability shared by Language and Protolanguage. It is
// sealed: no other type can implement it.
type Entity interface {
	EntityKind() Kind
	EntityName() string
	// AncestorNames returns the ordered ancestor protolanguage names.
	// Protolanguages return nil.
	AncestorNames() []string
	// LocalPhonemes returns the entity's own map. Callers must not mutate it;
	// use PutLocal and DeleteLocal.
	LocalPhonemes() PhonemeMap
	PutLocal(id uuid.UUID, p Phoneme)
	DeleteLocal(id uuid.UUID) (Phoneme, bool)

	sealed()
}

// =============================================================================
// Language
// =============================================================================

// Language is a descendant stage with its own phonemes and references to
// ancestor protolanguages by name. Its name is immutable once created.
type Language struct {
	Name        string          `json:"name"`
	Description json.RawMessage `json:"description,omitempty"`
	Phonemes    PhonemeMap      `json:"phonemes"`
	Ancestors   []string        `json:"ancestors"`
}

// NewLanguage returns an empty language with no ancestors.
func NewLanguage(name string) *Language {
	return &Language{Name: name, Phonemes: PhonemeMap{}, Ancestors: []string{}}
}

func (l *Language) EntityKind() Kind          { return KindLanguage }
func (l *Language) EntityName() string        { return l.Name }
func (l *Language) AncestorNames() []string   { return l.Ancestors }
func (l *Language) LocalPhonemes() PhonemeMap { return l.Phonemes }
func (l *Language) sealed()                   {}

func (l *Language) PutLocal(id uuid.UUID, p Phoneme) {
	if l.Phonemes == nil {
		l.Phonemes = PhonemeMap{}
	}
	l.Phonemes[id] = p
}

func (l *Language) DeleteLocal(id uuid.UUID) (Phoneme, bool) {
	p, ok := l.Phonemes[id]
	if ok {
		delete(l.Phonemes, id)
	}
	return p, ok
}

// Clone returns a deep copy.
func (l *Language) Clone() *Language {
	return &Language{
		Name:        l.Name,
		Description: cloneRaw(l.Description),
		Phonemes:    l.Phonemes.Clone(),
		Ancestors:   append([]string{}, l.Ancestors...),
	}
}

// =============================================================================
// Protolanguage
// =============================================================================

// Protolanguage is an ancestral stage. It has no ancestors of its own.
type Protolanguage struct {
	Name        string          `json:"name"`
	Description json.RawMessage `json:"description,omitempty"`
	Phonemes    PhonemeMap      `json:"phonemes"`
}

// NewProtolanguage returns an empty protolanguage.
func NewProtolanguage(name string) *Protolanguage {
	return &Protolanguage{Name: name, Phonemes: PhonemeMap{}}
}

func (p *Protolanguage) EntityKind() Kind          { return KindProtolanguage }
func (p *Protolanguage) EntityName() string        { return p.Name }
func (p *Protolanguage) AncestorNames() []string   { return nil }
func (p *Protolanguage) LocalPhonemes() PhonemeMap { return p.Phonemes }
func (p *Protolanguage) sealed()                   {}

func (p *Protolanguage) PutLocal(id uuid.UUID, ph Phoneme) {
	if p.Phonemes == nil {
		p.Phonemes = PhonemeMap{}
	}
	p.Phonemes[id] = ph
}

func (p *Protolanguage) DeleteLocal(id uuid.UUID) (Phoneme, bool) {
	ph, ok := p.Phonemes[id]
	if ok {
		delete(p.Phonemes, id)
	}
	return ph, ok
}

// Clone returns a deep copy.
func (p *Protolanguage) Clone() *Protolanguage {
	return &Protolanguage{
		Name:        p.Name,
		Description: cloneRaw(p.Description),
		Phonemes:    p.Phonemes.Clone(),
	}
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// Compile-time checks.
var (
	_ Entity = (*Language)(nil)
	_ Entity = (*Protolanguage)(nil)
)
