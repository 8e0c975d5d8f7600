package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamon/lexi/pkg/phone"
)

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		found   string
		current string
		ok      bool
	}{
		{"0.1.0", "0.1.0", true},
		{"0.1.7", "0.1.0", true},
		{"v0.1.2", "0.1.0", true},
		{"0.2.0", "0.1.0", false},
		{"1.0.0", "0.1.0", false},
		{"1.4.2", "1.0.0", true},
		{"1.0.0", "1.9.0", true},
		{"2.0.0", "1.9.0", false},
		{"", "0.1.0", false},
		{"not-a-version", "0.1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.found+"->"+tt.current, func(t *testing.T) {
			err := CheckCompatible(tt.found, tt.current)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrVersionMismatch)
			var mismatch *VersionMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.found, mismatch.Found)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.CreateProtolanguage("Proto"))
	require.NoError(t, g.CreateLanguage("Daughter"))

	id := uuid.New()
	g.Protolangs[0].PutLocal(id, Phoneme{
		Ortho:      "p",
		Primary:    phone.Plosive(phone.PlosiveBilabial, false),
		Allophones: []phone.Phone{phone.Plosive(phone.PlosiveBilabial, false, phone.Aspirated)},
	})
	g.Langs[0].Ancestors = []string{"Proto"}
	g.Langs[0].Description = []byte(`{"notes":"spoken on the coast"}`)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))

	out := buf.String()
	for _, field := range []string{`"version"`, `"family_id"`, `"protolangs"`, `"langs"`, `"ancestors"`, `"ortho"`, `"primary"`, `"allo"`} {
		assert.Contains(t, out, field)
	}

	back, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.FamilyID, back.FamilyID)
	assert.Equal(t, DataVersion, back.Version)
	require.Len(t, back.Protolangs, 1)
	assert.True(t, g.Protolangs[0].Phonemes[id].Equal(back.Protolangs[0].Phonemes[id]))
	assert.Equal(t, []string{"Proto"}, back.Langs[0].Ancestors)
	assert.JSONEq(t, `{"notes":"spoken on the coast"}`, string(back.Langs[0].Description))
}

func TestDecode_RejectsIncompatibleVersion(t *testing.T) {
	input := `{"version":"3.0.0","family_id":"` + uuid.NewString() + `","protolangs":[],"langs":[]}`
	_, err := Decode(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestDecode_NormalizesPhonemes(t *testing.T) {
	id := uuid.NewString()
	input := `{
		"version": "0.1.0",
		"family_id": "` + uuid.NewString() + `",
		"protolangs": [],
		"langs": [{
			"name": "L",
			"phonemes": {"` + id + `": {
				"ortho": "t",
				"primary": {"Plosive":{"place":"Alveolar","voiced":false,"attachments":[]}},
				"allo": [
					{"Plosive":{"place":"Alveolar","voiced":false,"attachments":[]}},
					"Null",
					"Null"
				]
			}}
		}]
	}`

	g, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, g.Langs, 1)
	assert.NotNil(t, g.Langs[0].Ancestors)

	ph := g.Langs[0].Phonemes[uuid.MustParse(id)]
	assert.Equal(t, []phone.Phone{phone.Null()}, ph.Allophones)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"version":`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrVersionMismatch)
}

func groupJSON(protolangs, langs string) string {
	return `{"version":"0.1.0","family_id":"` + uuid.NewString() + `","protolangs":` + protolangs + `,"langs":` + langs + `}`
}

func TestDecode_NullEntries(t *testing.T) {
	tests := []struct {
		name       string
		protolangs string
		langs      string
		want       string
	}{
		{"null protolanguage", `[null]`, `[]`, "protolangs[0] is null"},
		{"null language", `[]`, `[{"name":"L"},null]`, "langs[1] is null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				g   *LanguageGroup
				err error
			)
			require.NotPanics(t, func() {
				g, err = Decode(strings.NewReader(groupJSON(tt.protolangs, tt.langs)))
			})
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecode_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name       string
		protolangs string
		langs      string
		conflict   *NameConflictError
	}{
		{name: "empty protolanguage name", protolangs: `[{"name":""}]`, langs: `[]`},
		{name: "empty language name", protolangs: `[]`, langs: `[{"name":""}]`},
		{
			name:       "duplicate protolanguage",
			protolangs: `[{"name":"P"},{"name":"P"}]`,
			langs:      `[]`,
			conflict:   &NameConflictError{Kind: KindProtolanguage, Name: "P"},
		},
		{
			name:       "duplicate language",
			protolangs: `[]`,
			langs:      `[{"name":"L"},{"name":"L"}]`,
			conflict:   &NameConflictError{Kind: KindLanguage, Name: "L"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(groupJSON(tt.protolangs, tt.langs)))
			require.Error(t, err)
			if tt.conflict == nil {
				assert.ErrorIs(t, err, ErrEmptyName)
				return
			}
			var conflict *NameConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.conflict, conflict)
		})
	}
}

func TestDecode_SameNameAcrossCollections(t *testing.T) {
	g, err := Decode(strings.NewReader(groupJSON(`[{"name":"Norse"}]`, `[{"name":"Norse"}]`)))
	require.NoError(t, err)
	assert.Len(t, g.Protolangs, 1)
	assert.Len(t, g.Langs, 1)
}

func TestDecode_RejectsPhoneWithoutPlace(t *testing.T) {
	langs := `[{"name":"L","phonemes":{"` + uuid.NewString() + `":{"ortho":"p","primary":{"Plosive":{"voiced":true}},"allo":[]}}}]`
	_, err := Decode(strings.NewReader(groupJSON(`[]`, langs)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown place")
}
