package ancestry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamon/lexi/internal/testutil"
	"github.com/jengamon/lexi/pkg/core"
	"github.com/jengamon/lexi/pkg/phone"
)

func phonemeA() core.Phoneme {
	return core.Phoneme{Ortho: "A", Primary: phone.Plosive(phone.PlosiveBilabial, false)}
}

func phonemeB() core.Phoneme {
	return core.Phoneme{Ortho: "B", Primary: phone.Plosive(phone.PlosiveBilabial, true)}
}

// fixture builds P{id1:A} and L(ancestors=[P]) with no local phonemes.
func fixture(t *testing.T) (*Resolver, *core.Protolanguage, *core.Language, uuid.UUID) {
	t.Helper()
	id1 := uuid.New()
	proto := core.NewProtolanguage("P")
	proto.PutLocal(id1, phonemeA())
	lang := core.NewLanguage("L")
	lang.Ancestors = []string{"P"}
	return New(testutil.NewTestLogger(t), []*core.Protolanguage{proto}), proto, lang, id1
}

func TestResolver_InheritThenOverride(t *testing.T) {
	r, proto, lang, id1 := fixture(t)

	got, err := r.Get(lang, id1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Ortho)

	require.NoError(t, r.Set(lang, id1, phonemeB()))

	got, err = r.Get(lang, id1)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Ortho)

	got, err = r.Get(proto, id1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Ortho, "ancestor keeps its own value")
	assert.Contains(t, lang.Phonemes, id1, "override lives in the language")
}

func TestResolver_SetUnknownIDMutatesNothing(t *testing.T) {
	r, proto, lang, _ := fixture(t)
	idX := uuid.New()

	err := r.Set(lang, idX, phonemeB())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, lang.Phonemes)
	assert.Len(t, proto.Phonemes, 1)
}

func TestResolver_SetLocalOverwrites(t *testing.T) {
	r, _, lang, _ := fixture(t)
	id := uuid.New()
	lang.PutLocal(id, phonemeA())

	require.NoError(t, r.Set(lang, id, phonemeB()))
	assert.Equal(t, "B", lang.Phonemes[id].Ortho)
}

func TestResolver_SetNormalizes(t *testing.T) {
	r, _, lang, id1 := fixture(t)
	value := phonemeB()
	value.Allophones = []phone.Phone{value.Primary, phone.Null(), phone.Null()}

	require.NoError(t, r.Set(lang, id1, value))
	assert.Equal(t, []phone.Phone{phone.Null()}, lang.Phonemes[id1].Allophones)
}

func TestResolver_DeleteInheritedIsNoop(t *testing.T) {
	r, proto, lang, id1 := fixture(t)

	_, ok := r.Delete(lang, id1)
	assert.False(t, ok)
	assert.Contains(t, proto.Phonemes, id1)

	got, err := r.Get(lang, id1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Ortho)
}

func TestResolver_DeleteOverrideRevealsInherited(t *testing.T) {
	r, _, lang, id1 := fixture(t)
	require.NoError(t, r.Set(lang, id1, phonemeB()))

	removed, ok := r.Delete(lang, id1)
	require.True(t, ok)
	assert.Equal(t, "B", removed.Ortho)

	got, err := r.Get(lang, id1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Ortho)
}

func TestResolver_FirstAncestorWins(t *testing.T) {
	id := uuid.New()
	first := core.NewProtolanguage("first")
	first.PutLocal(id, phonemeA())
	second := core.NewProtolanguage("second")
	second.PutLocal(id, phonemeB())
	lang := core.NewLanguage("L")
	lang.Ancestors = []string{"first", "second"}

	r := New(nil, []*core.Protolanguage{second, first})
	got, err := r.Get(lang, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Ortho)

	lang.Ancestors = []string{"second", "first"}
	got, err = r.Get(lang, id)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Ortho)
}

func TestResolver_DanglingAncestorLoggedAndSkipped(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger(t)

	id := uuid.New()
	proto := core.NewProtolanguage("P")
	proto.PutLocal(id, phonemeA())
	lang := core.NewLanguage("L")
	lang.Ancestors = []string{"Ghost", "P"}

	r := New(logger, []*core.Protolanguage{proto})
	got, err := r.Get(lang, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Ortho)
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "invalid ancestor in L: Ghost")

	_, err = r.Get(lang, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolver_Enumerate(t *testing.T) {
	shared := uuid.MustParse("00000000-0000-4000-8000-000000000001")
	onlyP := uuid.MustParse("00000000-0000-4000-8000-000000000002")
	onlyQ := uuid.MustParse("00000000-0000-4000-8000-000000000003")

	p := core.NewProtolanguage("P")
	p.PutLocal(onlyP, phonemeA())
	p.PutLocal(shared, phonemeA())
	q := core.NewProtolanguage("Q")
	q.PutLocal(onlyQ, phonemeB())
	lang := core.NewLanguage("L")
	lang.Ancestors = []string{"Q", "Missing", "P"}
	lang.PutLocal(shared, phonemeB())

	r := New(testutil.NewTestLogger(t), []*core.Protolanguage{p, q})
	entries := r.Enumerate(lang)

	type row struct {
		id     uuid.UUID
		source string
		ortho  string
	}
	var got []row
	for _, e := range entries {
		got = append(got, row{e.ID, e.Source, e.Phoneme.Ortho})
	}
	assert.Equal(t, []row{
		{shared, "L", "B"},
		{onlyQ, "Q", "B"},
		{shared, "P", "A"},
		{onlyP, "P", "A"},
	}, got)
}

func TestResolver_ProtolanguageIsLocalOnly(t *testing.T) {
	r, proto, _, id1 := fixture(t)
	entries := r.Enumerate(proto)
	require.Len(t, entries, 1)
	assert.Equal(t, id1, entries[0].ID)

	assert.ErrorIs(t, r.Set(proto, uuid.New(), phonemeB()), core.ErrNotFound)
}

func TestResolver_GetReturnsCopy(t *testing.T) {
	r, proto, lang, id1 := fixture(t)
	proto.Phonemes[id1] = core.Phoneme{Ortho: "A", Allophones: []phone.Phone{phone.Vowel()}}

	got, err := r.Get(lang, id1)
	require.NoError(t, err)
	got.Allophones[0] = phone.Null()
	assert.Equal(t, phone.Vowel(), proto.Phonemes[id1].Allophones[0])
}
