package phone

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned when a phone variant has no Branner composition.
var ErrUnsupported = errors.New("unsupported phone kind")

// Branner notation tokens.
const (
	// NullGlyph is the rendering of the empty production.
	NullGlyph = "∅"

	breathyMark    = `h")`
	creakyMark     = "~"
	ejectiveMark   = "`"
	aspirationMark = "h^"
	affricateTie   = "))"
)

// voicing pair: [voiceless, voiced]
type basePair [2]string

var plosiveBases = map[PlosivePlace]basePair{
	PlosiveBilabial:    {"p", "b"},
	PlosiveLabiodental: {"p[", "b["},
	PlosiveDental:      {"t[", "d["},
	PlosiveAlveolar:    {"t", "d"},
}

var fricativeBases = map[FricativePlace]basePair{
	FricativeBilabial:     {`P"`, `B"`},
	FricativeLabiodental:  {"f", "v"},
	FricativeDental:       {"O-", "d-"},
	FricativeAlveolar:     {"s", "z"},
	FricativePostalveolar: {"S", `3"`},
}

// pick selects the base form. Ejectives always take the voiceless form.
func (b basePair) pick(voiced bool, as Attachments) string {
	if voiced && !as.Has(Ejective) {
		return b[1]
	}
	return b[0]
}

// Branner renders the phone to Branner notation.
//
// Plosive: base, then breathy, creaky and ejective marks, then the aspiration
// wrap. Affricative: both bases receive breathy/creaky marks individually, are
// joined with "))", and the ejective mark and aspiration wrap are applied once
// to the joined string. Null renders NullGlyph. Fricative and Vowel return an
// error wrapping ErrUnsupported.
func (p Phone) Branner() (string, error) {
	if p.IsNull() {
		return NullGlyph, nil
	}

	switch p.Kind {
	case KindPlosive:
		pair, ok := plosiveBases[p.Place]
		if !ok {
			return "", fmt.Errorf("plosive: unknown place %q", p.Place)
		}
		s := phonate(pair.pick(p.Voiced, p.Attachments), p.Attachments)
		return aspirate(eject(s, p.Attachments), p.Attachments), nil

	case KindAffricative:
		start, ok := plosiveBases[p.Place]
		if !ok {
			return "", fmt.Errorf("affricative: unknown start place %q", p.Place)
		}
		end, ok := fricativeBases[p.Release]
		if !ok {
			return "", fmt.Errorf("affricative: unknown end place %q", p.Release)
		}
		s := phonate(start.pick(p.Voiced, p.Attachments), p.Attachments) +
			affricateTie +
			phonate(end.pick(p.Voiced, p.Attachments), p.Attachments)
		return aspirate(eject(s, p.Attachments), p.Attachments), nil

	case KindFricative, KindVowel:
		return "", fmt.Errorf("render %s: %w", p.Kind, ErrUnsupported)

	default:
		return "", fmt.Errorf("render %s: %w", p.Kind, ErrUnsupported)
	}
}

// MustBranner is Branner for phones known to be renderable. It panics on
// unsupported variants.
func (p Phone) MustBranner() string {
	s, err := p.Branner()
	if err != nil {
		panic(err)
	}
	return s
}

func phonate(s string, as Attachments) string {
	if as.Has(Breathy) {
		s += breathyMark
	}
	if as.Has(Creaky) {
		s += creakyMark
	}
	return s
}

func eject(s string, as Attachments) string {
	if as.Has(Ejective) {
		s += ejectiveMark
	}
	return s
}

func aspirate(s string, as Attachments) string {
	switch {
	case as.Has(Preaspirated):
		return aspirationMark + s
	case as.Has(Aspirated):
		return s + aspirationMark
	default:
		return s
	}
}
