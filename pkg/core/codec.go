package core

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes the group as indented JSON.
func Encode(w io.Writer, g *LanguageGroup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode language group: %w", err)
	}
	return nil
}

// Decode reads a group, rejects incompatible versions and malformed entity
// lists, and normalizes every phoneme on the way in.
func Decode(r io.Reader) (*LanguageGroup, error) {
	var g LanguageGroup
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode language group: %w", err)
	}
	if err := CheckCompatible(g.Version, DataVersion); err != nil {
		return nil, fmt.Errorf("decode language group: %w", err)
	}

	if err := checkEntities(&g); err != nil {
		return nil, fmt.Errorf("decode language group: %w", err)
	}

	if g.Protolangs == nil {
		g.Protolangs = []*Protolanguage{}
	}
	if g.Langs == nil {
		g.Langs = []*Language{}
	}
	for _, p := range g.Protolangs {
		p.Phonemes = normalizeAll(p.Phonemes)
	}
	for _, l := range g.Langs {
		l.Phonemes = normalizeAll(l.Phonemes)
		if l.Ancestors == nil {
			l.Ancestors = []string{}
		}
	}
	return &g, nil
}

// checkEntities rejects null entries and names that are empty or repeated
// within their collection.
func checkEntities(g *LanguageGroup) error {
	protos := make(map[string]bool, len(g.Protolangs))
	for i, p := range g.Protolangs {
		if p == nil {
			return fmt.Errorf("protolangs[%d] is null", i)
		}
		if err := checkName(KindProtolanguage, p.Name, protos); err != nil {
			return err
		}
	}
	langs := make(map[string]bool, len(g.Langs))
	for i, l := range g.Langs {
		if l == nil {
			return fmt.Errorf("langs[%d] is null", i)
		}
		if err := checkName(KindLanguage, l.Name, langs); err != nil {
			return err
		}
	}
	return nil
}

func checkName(kind Kind, name string, seen map[string]bool) error {
	if name == "" {
		return fmt.Errorf("%s: %w", kind, ErrEmptyName)
	}
	if seen[name] {
		return &NameConflictError{Kind: kind, Name: name}
	}
	seen[name] = true
	return nil
}

func normalizeAll(m PhonemeMap) PhonemeMap {
	out := make(PhonemeMap, len(m))
	for id, p := range m {
		out[id] = p.Normalize()
	}
	return out
}
