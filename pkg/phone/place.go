package phone

import (
	"fmt"
	"strings"
)

// =============================================================================
// Plosive places
// =============================================================================

// PlosivePlace is a place of articulation available to plosives and to the
// stop half of an affricate.
type PlosivePlace string

// Plosive places of articulation.
const (
	PlosiveBilabial    PlosivePlace = "Bilabial"
	PlosiveLabiodental PlosivePlace = "Labiodental"
	PlosiveDental      PlosivePlace = "Dental"
	PlosiveAlveolar    PlosivePlace = "Alveolar"
)

// PlosivePlaces lists every plosive place in declaration order.
var PlosivePlaces = []PlosivePlace{
	PlosiveBilabial,
	PlosiveLabiodental,
	PlosiveDental,
	PlosiveAlveolar,
}

// Valid reports whether p is a known plosive place.
func (p PlosivePlace) Valid() bool {
	for _, known := range PlosivePlaces {
		if p == known {
			return true
		}
	}
	return false
}

// UnmarshalText accepts place names case-insensitively.
func (p *PlosivePlace) UnmarshalText(text []byte) error {
	for _, known := range PlosivePlaces {
		if strings.EqualFold(string(text), string(known)) {
			*p = known
			return nil
		}
	}
	return fmt.Errorf("unknown plosive place %q", string(text))
}

// =============================================================================
// Fricative places
// =============================================================================

// FricativePlace is a place of articulation available to fricatives and to
// the release half of an affricate.
type FricativePlace string

// Fricative places of articulation.
const (
	FricativeBilabial     FricativePlace = "Bilabial"
	FricativeLabiodental  FricativePlace = "Labiodental"
	FricativeDental       FricativePlace = "Dental"
	FricativeAlveolar     FricativePlace = "Alveolar"
	FricativePostalveolar FricativePlace = "Postalveolar"
)

// FricativePlaces lists every fricative place in declaration order.
var FricativePlaces = []FricativePlace{
	FricativeBilabial,
	FricativeLabiodental,
	FricativeDental,
	FricativeAlveolar,
	FricativePostalveolar,
}

// Valid reports whether p is a known fricative place.
func (p FricativePlace) Valid() bool {
	for _, known := range FricativePlaces {
		if p == known {
			return true
		}
	}
	return false
}

// UnmarshalText accepts place names case-insensitively.
func (p *FricativePlace) UnmarshalText(text []byte) error {
	for _, known := range FricativePlaces {
		if strings.EqualFold(string(text), string(known)) {
			*p = known
			return nil
		}
	}
	return fmt.Errorf("unknown fricative place %q", string(text))
}
