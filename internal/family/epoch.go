// Package family implements whole-family transforms: epoch and merge.
package family

import (
	"errors"
	"log/slog"

	"github.com/jengamon/lexi/internal/ancestry"
	"github.com/jengamon/lexi/pkg/core"
)

// Epoch advances every language into a new protolanguage.
//
// For each language, in order, the phoneme maps of its ancestors are folded
// left to right (a later ancestor overwrites an earlier one for the same
// id) and the language's own phonemes are laid on top. The resulting
// protolanguages replace the group's protolanguage list and the language
// list is emptied.
//
// A dangling ancestor contributes nothing and is logged. The new list is
// built completely before the group is touched.
func Epoch(g *core.LanguageGroup, logger *slog.Logger) error {
	if g == nil {
		return errors.New("epoch: nil language group")
	}
	resolver := ancestry.New(logger, g.Protolangs)

	next := make([]*core.Protolanguage, 0, len(g.Langs))
	for _, lang := range g.Langs {
		own := lang.Clone()
		final := core.PhonemeMap{}
		for _, proto := range resolver.Ancestors(lang) {
			for id, p := range proto.Phonemes {
				final[id] = p.Clone()
			}
		}
		for id, p := range own.Phonemes {
			final[id] = p
		}

		next = append(next, &core.Protolanguage{
			Name:        own.Name,
			Description: own.Description,
			Phonemes:    final,
		})
	}

	g.Protolangs = next
	g.Langs = []*core.Language{}
	return nil
}
