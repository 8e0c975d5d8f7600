package phone

import (
	"fmt"
	"strings"
)

// Kind identifies which variant a Phone holds.
type Kind uint8

// Phone variants. The zero Kind is Null so the zero Phone is the empty
// production.
const (
	KindNull Kind = iota
	KindPlosive
	KindAffricative
	KindFricative
	KindVowel
)

// String returns the variant name used by the serialized form.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindPlosive:
		return "Plosive"
	case KindAffricative:
		return "Affricative"
	case KindFricative:
		return "Fricative"
	case KindVowel:
		return "Vowel"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Phone is a single speech sound.
//
// Only the fields belonging to Kind are meaningful:
//   - Plosive: Place, Voiced, Attachments
//   - Affricative: Place (stop half), Release (fricative half), Voiced, Attachments
//   - Fricative: Release, Voiced, Attachments
//   - Vowel, Null: none
//
// Use the constructors to build phones; they leave foreign fields zeroed so
// that == and Equal agree.
type Phone struct {
	Kind        Kind
	Place       PlosivePlace
	Release     FricativePlace
	Voiced      bool
	Attachments Attachments
}

// Plosive builds a plosive phone.
func Plosive(place PlosivePlace, voiced bool, as ...Attachment) Phone {
	return Phone{Kind: KindPlosive, Place: place, Voiced: voiced, Attachments: NewAttachments(as...)}
}

// Affricative builds an affricate from a plosive start and a fricative end.
// Voicing and attachments are shared by both halves.
func Affricative(start PlosivePlace, end FricativePlace, voiced bool, as ...Attachment) Phone {
	return Phone{
		Kind:        KindAffricative,
		Place:       start,
		Release:     end,
		Voiced:      voiced,
		Attachments: NewAttachments(as...),
	}
}

// Fricative builds a fricative phone.
func Fricative(place FricativePlace, voiced bool, as ...Attachment) Phone {
	return Phone{Kind: KindFricative, Release: place, Voiced: voiced, Attachments: NewAttachments(as...)}
}

// Vowel builds a vowel phone. Vowels carry no features yet.
func Vowel() Phone {
	return Phone{Kind: KindVowel}
}

// Null is the silent production.
func Null() Phone {
	return Phone{}
}

// IsNull reports whether p is the empty production.
func (p Phone) IsNull() bool {
	return p.Kind == KindNull
}

// Equal reports whether two phones describe the same sound. Fields that do
// not belong to the variant are ignored.
func (p Phone) Equal(o Phone) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case KindPlosive:
		return p.Place == o.Place && p.Voiced == o.Voiced && p.Attachments == o.Attachments
	case KindAffricative:
		return p.Place == o.Place && p.Release == o.Release &&
			p.Voiced == o.Voiced && p.Attachments == o.Attachments
	case KindFricative:
		return p.Release == o.Release && p.Voiced == o.Voiced && p.Attachments == o.Attachments
	default:
		return true
	}
}

// Validate checks that the places used by the variant are known.
func (p Phone) Validate() error {
	switch p.Kind {
	case KindNull, KindVowel:
		return nil
	case KindPlosive:
		if !p.Place.Valid() {
			return fmt.Errorf("plosive: unknown place %q", p.Place)
		}
	case KindAffricative:
		if !p.Place.Valid() {
			return fmt.Errorf("affricative: unknown start place %q", p.Place)
		}
		if !p.Release.Valid() {
			return fmt.Errorf("affricative: unknown end place %q", p.Release)
		}
	case KindFricative:
		if !p.Release.Valid() {
			return fmt.Errorf("fricative: unknown place %q", p.Release)
		}
	default:
		return fmt.Errorf("unknown phone kind %d", uint8(p.Kind))
	}
	return nil
}

// String describes the phone for logs. It falls back to the spec form when
// the phone has no Branner rendering.
func (p Phone) String() string {
	if s, err := p.Branner(); err == nil {
		return s
	}
	return "<" + p.Spec() + ">"
}

func voicingWord(voiced bool) string {
	if voiced {
		return "voiced"
	}
	return "voiceless"
}

// Spec returns the compact textual form accepted by Parse.
func (p Phone) Spec() string {
	var parts []string
	switch p.Kind {
	case KindPlosive:
		parts = []string{"plosive", strings.ToLower(string(p.Place)), voicingWord(p.Voiced)}
	case KindAffricative:
		parts = []string{
			"affricate",
			strings.ToLower(string(p.Place)),
			strings.ToLower(string(p.Release)),
			voicingWord(p.Voiced),
		}
	case KindFricative:
		parts = []string{"fricative", strings.ToLower(string(p.Release)), voicingWord(p.Voiced)}
	case KindVowel:
		return "vowel"
	default:
		return "null"
	}

	spec := strings.Join(parts, "/")
	for _, a := range p.Attachments.Slice() {
		spec += "+" + strings.ToLower(a.String())
	}
	return spec
}
