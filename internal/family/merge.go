package family

import (
	"github.com/jengamon/lexi/pkg/core"
)

// MergeReport records what a merge dropped.
type MergeReport struct {
	// Languages is the number of languages now in the group.
	Languages int `json:"languages"`
	// Replaced lists language names that were present before the merge and
	// are absent after it.
	Replaced []string `json:"replaced"`
	// Pruned maps a language name to the ancestor names removed from it
	// because they name no protolanguage in the group.
	Pruned map[string][]string `json:"pruned"`
}

// CheckFamily returns core.ErrFamilyMismatch unless both groups share a
// family id. Merge does not call it; callers must.
func CheckFamily(self, incoming *core.LanguageGroup) error {
	if self.FamilyID != incoming.FamilyID {
		return core.NewFamilyMismatchError(self.FamilyID, incoming.FamilyID)
	}
	return nil
}

// Merge replaces self's languages with deep copies of incoming's languages.
// Each copy keeps only the ancestor names that resolve to a protolanguage in
// self. self's protolanguages are never modified and incoming is only read.
func Merge(self, incoming *core.LanguageGroup) MergeReport {
	report := MergeReport{Pruned: map[string][]string{}}

	langs := make([]*core.Language, 0, len(incoming.Langs))
	kept := make(map[string]bool, len(incoming.Langs))
	for _, lang := range incoming.Langs {
		cp := lang.Clone()
		present := make([]string, 0, len(cp.Ancestors))
		for _, anc := range cp.Ancestors {
			if self.Protolanguage(anc) != nil {
				present = append(present, anc)
			} else {
				report.Pruned[cp.Name] = append(report.Pruned[cp.Name], anc)
			}
		}
		cp.Ancestors = present
		langs = append(langs, cp)
		kept[cp.Name] = true
	}

	for _, old := range self.Langs {
		if !kept[old.Name] {
			report.Replaced = append(report.Replaced, old.Name)
		}
	}

	self.Langs = langs
	report.Languages = len(langs)
	return report
}
