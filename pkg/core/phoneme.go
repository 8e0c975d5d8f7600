package core

import (
	"github.com/jengamon/lexi/pkg/phone"
)

// Phoneme is a named sound unit: one primary phone plus its allophones.
//
// The allophone list never contains the primary phone and never contains
// duplicates once the phoneme has passed through Normalize.
type Phoneme struct {
	Ortho      string        `json:"ortho" yaml:"ortho"`
	Primary    phone.Phone   `json:"primary" yaml:"primary"`
	Allophones []phone.Phone `json:"allo" yaml:"allo"`
}

// Normalize returns a copy with duplicate allophones removed and the primary
// phone stripped from the allophone list. Order of first occurrence is kept.
func (p Phoneme) Normalize() Phoneme {
	allo := make([]phone.Phone, 0, len(p.Allophones))
	for _, candidate := range p.Allophones {
		if candidate.Equal(p.Primary) {
			continue
		}
		seen := false
		for _, kept := range allo {
			if kept.Equal(candidate) {
				seen = true
				break
			}
		}
		if !seen {
			allo = append(allo, candidate)
		}
	}
	return Phoneme{Ortho: p.Ortho, Primary: p.Primary, Allophones: allo}
}

// IsNormal reports whether p already satisfies the allophone invariant.
func (p Phoneme) IsNormal() bool {
	return len(p.Normalize().Allophones) == len(p.Allophones)
}

// Clone returns a deep copy.
func (p Phoneme) Clone() Phoneme {
	out := p
	if p.Allophones != nil {
		out.Allophones = append([]phone.Phone(nil), p.Allophones...)
	}
	return out
}

// Equal compares orthography, primary phone and allophones in order.
func (p Phoneme) Equal(o Phoneme) bool {
	if p.Ortho != o.Ortho || !p.Primary.Equal(o.Primary) || len(p.Allophones) != len(o.Allophones) {
		return false
	}
	for i := range p.Allophones {
		if !p.Allophones[i].Equal(o.Allophones[i]) {
			return false
		}
	}
	return true
}
