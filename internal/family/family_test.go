package family

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamon/lexi/internal/testutil"
	"github.com/jengamon/lexi/pkg/core"
	"github.com/jengamon/lexi/pkg/phone"
)

func ph(ortho string) core.Phoneme {
	return core.Phoneme{Ortho: ortho, Primary: phone.Plosive(phone.PlosiveAlveolar, false)}
}

func orthos(m core.PhonemeMap) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(m))
	for id, p := range m {
		out[id] = p.Ortho
	}
	return out
}

// =============================================================================
// Epoch
// =============================================================================

func TestEpoch_FoldsAncestorAndLocal(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	g := core.NewGroup()
	require.NoError(t, g.CreateProtolanguage("P"))
	require.NoError(t, g.CreateLanguage("L"))
	g.Protolangs[0].PutLocal(id1, ph("A"))
	g.Langs[0].Ancestors = []string{"P"}
	g.Langs[0].PutLocal(id2, ph("B"))

	require.NoError(t, Epoch(g, testutil.NewTestLogger(t)))

	require.Len(t, g.Protolangs, 1)
	assert.Equal(t, "L", g.Protolangs[0].Name)
	assert.Equal(t, map[uuid.UUID]string{id1: "A", id2: "B"}, orthos(g.Protolangs[0].Phonemes))
	assert.Empty(t, g.Langs)
	assert.Nil(t, g.Protolanguage("P"))
}

func TestEpoch_LocalOverrideWins(t *testing.T) {
	id1 := uuid.New()
	g := core.NewGroup()
	require.NoError(t, g.CreateProtolanguage("P"))
	require.NoError(t, g.CreateLanguage("L"))
	g.Protolangs[0].PutLocal(id1, ph("A"))
	g.Langs[0].Ancestors = []string{"P"}
	g.Langs[0].PutLocal(id1, ph("B"))

	require.NoError(t, Epoch(g, nil))
	assert.Equal(t, "B", g.Protolangs[0].Phonemes[id1].Ortho)
}

func TestEpoch_LaterAncestorOverwritesEarlier(t *testing.T) {
	id := uuid.New()
	g := core.NewGroup()
	require.NoError(t, g.CreateProtolanguage("first"))
	require.NoError(t, g.CreateProtolanguage("second"))
	require.NoError(t, g.CreateLanguage("L"))
	g.Protolangs[0].PutLocal(id, ph("from first"))
	g.Protolangs[1].PutLocal(id, ph("from second"))
	g.Langs[0].Ancestors = []string{"first", "second"}

	require.NoError(t, Epoch(g, nil))
	assert.Equal(t, "from second", g.Protolangs[0].Phonemes[id].Ortho)
}

func TestEpoch_KeepsOrderAndDescription(t *testing.T) {
	g := core.NewGroup()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, g.CreateLanguage(name))
	}
	g.Langs[1].Description = []byte(`"notes"`)

	require.NoError(t, Epoch(g, nil))
	assert.Equal(t, []string{"c", "a", "b"}, g.Names(core.KindProtolanguage))
	assert.Equal(t, `"notes"`, string(g.Protolangs[1].Description))
}

func TestEpoch_DanglingAncestorTolerated(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger(t)
	id1, id2 := uuid.New(), uuid.New()
	g := core.NewGroup()
	require.NoError(t, g.CreateProtolanguage("P"))
	require.NoError(t, g.CreateLanguage("L"))
	g.Protolangs[0].PutLocal(id1, ph("A"))
	g.Langs[0].Ancestors = []string{"Ghost", "P"}
	g.Langs[0].PutLocal(id2, ph("B"))

	require.NoError(t, Epoch(g, logger))

	require.Len(t, g.Protolangs, 1)
	assert.Equal(t, map[uuid.UUID]string{id1: "A", id2: "B"}, orthos(g.Protolangs[0].Phonemes))
	assert.Contains(t, logs.String(), "invalid ancestor in L: Ghost")
}

func TestEpoch_DoesNotAliasOldData(t *testing.T) {
	id := uuid.New()
	g := core.NewGroup()
	require.NoError(t, g.CreateProtolanguage("P"))
	require.NoError(t, g.CreateLanguage("L"))
	g.Protolangs[0].PutLocal(id, core.Phoneme{Ortho: "A", Allophones: []phone.Phone{phone.Vowel()}})
	g.Langs[0].Ancestors = []string{"P"}
	oldProto := g.Protolangs[0]

	require.NoError(t, Epoch(g, nil))
	g.Protolangs[0].Phonemes[id].Allophones[0] = phone.Null()
	assert.Equal(t, phone.Vowel(), oldProto.Phonemes[id].Allophones[0])
}

func TestEpoch_Empty(t *testing.T) {
	g := core.NewGroup()
	require.NoError(t, g.CreateProtolanguage("P"))
	require.NoError(t, Epoch(g, nil))
	assert.Empty(t, g.Protolangs, "protolanguages without descendants do not survive")
	assert.Empty(t, g.Langs)

	assert.Error(t, Epoch(nil, nil))
}

// =============================================================================
// Merge
// =============================================================================

func TestMerge_PrunesUnknownAncestors(t *testing.T) {
	self := core.NewGroup()
	require.NoError(t, self.CreateProtolanguage("1"))
	require.NoError(t, self.CreateLanguage("A"))
	self.Langs[0].Ancestors = []string{"1"}

	incoming := core.NewGroup()
	incoming.FamilyID = self.FamilyID
	require.NoError(t, incoming.CreateLanguage("Z"))
	incoming.Langs[0].Ancestors = []string{"H"}

	require.NoError(t, CheckFamily(self, incoming))
	report := Merge(self, incoming)

	require.Len(t, self.Langs, 1)
	assert.Equal(t, "Z", self.Langs[0].Name)
	assert.Empty(t, self.Langs[0].Ancestors)
	assert.Equal(t, []string{"1"}, self.Names(core.KindProtolanguage))

	assert.Equal(t, 1, report.Languages)
	assert.Equal(t, []string{"A"}, report.Replaced)
	assert.Equal(t, map[string][]string{"Z": {"H"}}, report.Pruned)

	assert.Equal(t, []string{"H"}, incoming.Langs[0].Ancestors, "incoming is not modified")
}

func TestMerge_KeepsResolvableAncestorsInOrder(t *testing.T) {
	self := core.NewGroup()
	for _, name := range []string{"p1", "p2", "p3"} {
		require.NoError(t, self.CreateProtolanguage(name))
	}

	incoming := self.Clone()
	incoming.Protolangs = nil
	require.NoError(t, incoming.CreateLanguage("L"))
	incoming.Langs[0].Ancestors = []string{"p3", "gone", "p1"}
	id := uuid.New()
	incoming.Langs[0].PutLocal(id, ph("x"))
	incoming.Langs[0].Description = []byte(`{"k":1}`)

	Merge(self, incoming)

	require.Len(t, self.Langs, 1)
	lang := self.Langs[0]
	assert.Equal(t, []string{"p3", "p1"}, lang.Ancestors)
	assert.Equal(t, "x", lang.Phonemes[id].Ortho)
	assert.JSONEq(t, `{"k":1}`, string(lang.Description))
	assert.Len(t, self.Protolangs, 3)
}

func TestMerge_DeepCopies(t *testing.T) {
	self := core.NewGroup()
	incoming := self.Clone()
	require.NoError(t, incoming.CreateLanguage("L"))
	id := uuid.New()
	incoming.Langs[0].PutLocal(id, ph("before"))

	Merge(self, incoming)
	incoming.Langs[0].PutLocal(id, ph("after"))
	incoming.Langs[0].Name = "renamed"

	assert.Equal(t, "before", self.Langs[0].Phonemes[id].Ortho)
	assert.Equal(t, "L", self.Langs[0].Name)
}

func TestMerge_EmptyIncomingClearsLanguages(t *testing.T) {
	self := core.NewGroup()
	require.NoError(t, self.CreateLanguage("A"))
	require.NoError(t, self.CreateLanguage("B"))
	incoming := core.NewGroup()
	incoming.FamilyID = self.FamilyID

	report := Merge(self, incoming)
	assert.Empty(t, self.Langs)
	assert.Equal(t, []string{"A", "B"}, report.Replaced)
}

func TestCheckFamily(t *testing.T) {
	a, b := core.NewGroup(), core.NewGroup()
	err := CheckFamily(a, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrFamilyMismatch)
	assert.Contains(t, err.Error(), a.FamilyID.String())

	b.FamilyID = a.FamilyID
	assert.NoError(t, CheckFamily(a, b))
}
