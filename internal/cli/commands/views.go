package commands

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jengamon/lexi/internal/ancestry"
	"github.com/jengamon/lexi/internal/translit"
	"github.com/jengamon/lexi/pkg/core"
	"github.com/jengamon/lexi/pkg/phone"
)

// ProjectView is the structured form of `project show`.
type ProjectView struct {
	Name           string       `json:"name" yaml:"name"`
	FamilyID       string       `json:"family_id" yaml:"family_id"`
	Version        string       `json:"version" yaml:"version"`
	Protolanguages []EntityView `json:"protolanguages" yaml:"protolanguages"`
	Languages      []EntityView `json:"languages" yaml:"languages"`
}

// EntityView summarizes one language or protolanguage.
type EntityView struct {
	Name        string   `json:"name" yaml:"name"`
	Kind        string   `json:"kind" yaml:"kind"`
	Ancestors   []string `json:"ancestors,omitempty" yaml:"ancestors,omitempty"`
	Description any      `json:"description,omitempty" yaml:"description,omitempty"`
	Phonemes    int      `json:"phonemes" yaml:"phonemes"`
}

// PhoneView is a phone in every notation the CLI shows.
type PhoneView struct {
	Spec    string `json:"spec" yaml:"spec"`
	Branner string `json:"branner,omitempty" yaml:"branner,omitempty"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
}

// PhonemeView is one visible phoneme of an entity.
type PhonemeView struct {
	ID         string      `json:"id" yaml:"id"`
	Ortho      string      `json:"ortho" yaml:"ortho"`
	Primary    PhoneView   `json:"primary" yaml:"primary"`
	Allophones []PhoneView `json:"allophones" yaml:"allophones"`
	Source     string      `json:"source,omitempty" yaml:"source,omitempty"`
}

func decodeDescription(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func languageView(l *core.Language) EntityView {
	return EntityView{
		Name:        l.Name,
		Kind:        core.KindLanguage.String(),
		Ancestors:   l.Ancestors,
		Description: decodeDescription(l.Description),
		Phonemes:    len(l.Phonemes),
	}
}

func protolanguageView(p *core.Protolanguage) EntityView {
	return EntityView{
		Name:        p.Name,
		Kind:        core.KindProtolanguage.String(),
		Description: decodeDescription(p.Description),
		Phonemes:    len(p.Phonemes),
	}
}

func projectView(name string, g *core.LanguageGroup) ProjectView {
	v := ProjectView{
		Name:           name,
		FamilyID:       g.FamilyID.String(),
		Version:        g.Version,
		Protolanguages: make([]EntityView, 0, len(g.Protolangs)),
		Languages:      make([]EntityView, 0, len(g.Langs)),
	}
	for _, p := range g.Protolangs {
		v.Protolanguages = append(v.Protolanguages, protolanguageView(p))
	}
	for _, l := range g.Langs {
		v.Languages = append(v.Languages, languageView(l))
	}
	return v
}

func phoneView(p phone.Phone) PhoneView {
	v := PhoneView{Spec: p.Spec()}
	if r, err := translit.Render(p, nil); err == nil {
		v.Branner = r.Branner
		v.Display = r.Display
	}
	return v
}

// label is the phone's display form, or its spec when it has no rendering.
func (v PhoneView) label() string {
	if v.Display != "" {
		return v.Display
	}
	return "<" + v.Spec + ">"
}

func phonemeView(id string, p core.Phoneme, source string) PhonemeView {
	v := PhonemeView{
		ID:         id,
		Ortho:      p.Ortho,
		Primary:    phoneView(p.Primary),
		Allophones: make([]PhoneView, 0, len(p.Allophones)),
		Source:     source,
	}
	for _, a := range p.Allophones {
		v.Allophones = append(v.Allophones, phoneView(a))
	}
	return v
}

func entryViews(entries []ancestry.Entry) []PhonemeView {
	out := make([]PhonemeView, 0, len(entries))
	for _, e := range entries {
		out = append(out, phonemeView(e.ID.String(), e.Phoneme, e.Source))
	}
	return out
}

func (v PhonemeView) row() []string {
	allo := make([]string, 0, len(v.Allophones))
	for _, a := range v.Allophones {
		allo = append(allo, a.label())
	}
	return []string{v.ID, v.Ortho, v.Primary.label(), strings.Join(allo, " "), v.Source}
}

func (v EntityView) row() []string {
	row := []string{v.Name, strconv.Itoa(v.Phonemes)}
	if v.Kind == core.KindLanguage.String() {
		row = append(row, strings.Join(v.Ancestors, ", "))
	}
	return row
}
