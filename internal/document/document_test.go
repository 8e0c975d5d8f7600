package document

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengamon/lexi/internal/notifier"
	"github.com/jengamon/lexi/internal/testutil"
	"github.com/jengamon/lexi/pkg/core"
	"github.com/jengamon/lexi/pkg/phone"
)

type recorder struct {
	mu     sync.Mutex
	topics []notifier.Topic
}

func (r *recorder) Broadcast(topics ...notifier.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topics...)
}

func (r *recorder) seen() []notifier.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifier.Topic(nil), r.topics...)
}

func newDoc(t *testing.T) (*Document, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New("proj", nil, WithLogger(testutil.NewTestLogger(t)), WithBroadcaster(rec)), rec
}

func plosive(ortho string, voiced bool) core.Phoneme {
	return core.Phoneme{Ortho: ortho, Primary: phone.Plosive(phone.PlosiveBilabial, voiced)}
}

func TestDocument_Context(t *testing.T) {
	doc, _ := newDoc(t)
	ctx := WithContext(context.Background(), doc)
	assert.Same(t, doc, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestDocument_Defaults(t *testing.T) {
	doc := New("", nil)
	assert.Equal(t, DefaultName, doc.Name())
	assert.NotEqual(t, uuid.Nil, doc.FamilyID())
	assert.ErrorIs(t, doc.SetName(""), core.ErrEmptyName)
}

func TestDocument_PhonemeLifecycle(t *testing.T) {
	doc, rec := newDoc(t)
	require.NoError(t, doc.CreateProtolanguage("P"))
	require.NoError(t, doc.CreateLanguage("L"))
	require.NoError(t, doc.SetAncestors("L", []string{"P"}))

	value := plosive("p", false)
	value.Allophones = []phone.Phone{value.Primary, phone.Null(), phone.Null()}
	id, err := doc.CreatePhoneme(core.KindProtolanguage, "P", value)
	require.NoError(t, err)

	got, err := doc.GetPhoneme(core.KindLanguage, "L", id)
	require.NoError(t, err)
	assert.Equal(t, "p", got.Ortho)
	assert.Equal(t, []phone.Phone{phone.Null()}, got.Allophones, "created phonemes are normalized")

	require.NoError(t, doc.SetPhoneme(core.KindLanguage, "L", id, plosive("b", true)))
	got, err = doc.GetPhoneme(core.KindLanguage, "L", id)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Ortho)
	got, err = doc.GetPhoneme(core.KindProtolanguage, "P", id)
	require.NoError(t, err)
	assert.Equal(t, "p", got.Ortho)

	entries, err := doc.EnumeratePhonemes(core.KindLanguage, "L")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "L", entries[0].Source)
	assert.Equal(t, "P", entries[1].Source)

	removed, ok, err := doc.DeletePhoneme(core.KindLanguage, "L", id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", removed.Ortho)

	_, ok, err = doc.DeletePhoneme(core.KindLanguage, "L", id)
	require.NoError(t, err)
	assert.False(t, ok, "inherited ids are not deletable from the descendant")

	assert.Contains(t, rec.seen(), notifier.TopicPhonemes)
}

func TestDocument_PhonemeErrors(t *testing.T) {
	doc, _ := newDoc(t)
	require.NoError(t, doc.CreateLanguage("L"))

	_, err := doc.CreatePhoneme(core.KindLanguage, "nope", plosive("p", false))
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = doc.GetPhoneme(core.KindLanguage, "L", uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)

	before := doc.Revision()
	err = doc.SetPhoneme(core.KindLanguage, "L", uuid.New(), plosive("p", false))
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, before, doc.Revision(), "failed set does not count as a change")

	_, _, err = doc.DeletePhoneme(core.KindProtolanguage, "L", uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = doc.EnumeratePhonemes(core.KindProtolanguage, "L")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocument_CRUD(t *testing.T) {
	doc, rec := newDoc(t)

	require.NoError(t, doc.CreateLanguage("A"))
	assert.ErrorIs(t, doc.CreateLanguage("A"), core.ErrNameConflict)
	assert.ErrorIs(t, doc.CreateLanguage(""), core.ErrEmptyName)
	require.NoError(t, doc.CreateProtolanguage("A"))
	assert.ErrorIs(t, doc.CreateProtolanguage("A"), core.ErrNameConflict)

	assert.Equal(t, []string{"A"}, doc.Names(core.KindLanguage))
	assert.Equal(t, []string{"A"}, doc.Names(core.KindProtolanguage))

	lang, err := doc.Language("A")
	require.NoError(t, err)
	lang.Ancestors = append(lang.Ancestors, "mutated")
	again, err := doc.Language("A")
	require.NoError(t, err)
	assert.Empty(t, again.Ancestors, "reads return copies")

	_, err = doc.Protolanguage("missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, doc.SetAncestors("missing", nil), core.ErrNotFound)

	assert.True(t, doc.Delete(core.KindLanguage, "A"))
	assert.False(t, doc.Delete(core.KindLanguage, "A"))
	assert.True(t, doc.Delete(core.KindProtolanguage, "A"))
	assert.Empty(t, doc.Names(core.KindLanguage))

	assert.Contains(t, rec.seen(), notifier.TopicLanguages)
	assert.Contains(t, rec.seen(), notifier.TopicProtolanguages)
}

func TestDocument_Description(t *testing.T) {
	doc, _ := newDoc(t)
	require.NoError(t, doc.CreateProtolanguage("P"))

	raw, err := doc.Description(core.KindProtolanguage, "P")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, doc.SetDescription(core.KindProtolanguage, "P", json.RawMessage(`{"era":"bronze"}`)))
	raw, err = doc.Description(core.KindProtolanguage, "P")
	require.NoError(t, err)
	assert.JSONEq(t, `{"era":"bronze"}`, string(raw))

	assert.Error(t, doc.SetDescription(core.KindProtolanguage, "P", json.RawMessage(`{oops`)))
	assert.ErrorIs(t, doc.SetDescription(core.KindLanguage, "P", json.RawMessage(`1`)), core.ErrNotFound)

	require.NoError(t, doc.SetDescription(core.KindProtolanguage, "P", nil))
	raw, err = doc.Description(core.KindProtolanguage, "P")
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDocument_EpochRenames(t *testing.T) {
	doc, _ := newDoc(t)
	require.NoError(t, doc.CreateProtolanguage("P"))
	require.NoError(t, doc.CreateLanguage("L"))
	require.NoError(t, doc.SetAncestors("L", []string{"P"}))
	id, err := doc.CreatePhoneme(core.KindProtolanguage, "P", plosive("p", false))
	require.NoError(t, err)

	name, err := doc.Epoch()
	require.NoError(t, err)
	assert.Equal(t, "proj_epoched", name)
	assert.Equal(t, []string{"L"}, doc.Names(core.KindProtolanguage))
	assert.Empty(t, doc.Names(core.KindLanguage))

	got, err := doc.GetPhoneme(core.KindProtolanguage, "L", id)
	require.NoError(t, err)
	assert.Equal(t, "p", got.Ortho)

	require.NoError(t, doc.SetName("proj_epoch7"))
	name, err = doc.Epoch()
	require.NoError(t, err)
	assert.Equal(t, "proj_epoch8", name)
}

func TestDocument_Merge(t *testing.T) {
	doc, _ := newDoc(t)
	require.NoError(t, doc.CreateProtolanguage("1"))
	require.NoError(t, doc.CreateLanguage("A"))

	_, group, _ := doc.Snapshot()
	require.NoError(t, group.CreateLanguage("B"))
	group.Language("B").Ancestors = []string{"1", "H"}

	report, err := doc.Merge(group)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"B": {"H"}}, report.Pruned)

	b, err := doc.Language("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, b.Ancestors)

	foreign := core.NewGroup()
	before := doc.Names(core.KindLanguage)
	_, err = doc.Merge(foreign)
	assert.ErrorIs(t, err, core.ErrFamilyMismatch)
	assert.Equal(t, before, doc.Names(core.KindLanguage))
}

func TestDocument_SnapshotAndReplace(t *testing.T) {
	doc, _ := newDoc(t)
	require.NoError(t, doc.CreateLanguage("A"))

	name, group, rev := doc.Snapshot()
	assert.Equal(t, "proj", name)
	assert.Equal(t, doc.Revision(), rev)

	group.Langs[0].Name = "mutated"
	assert.Equal(t, []string{"A"}, doc.Names(core.KindLanguage))

	fresh := core.NewGroup()
	require.NoError(t, doc.Replace("other", fresh))
	assert.Equal(t, "other", doc.Name())
	assert.Equal(t, fresh.FamilyID, doc.FamilyID())
	assert.Greater(t, doc.Revision(), rev)

	assert.Error(t, doc.Replace("", fresh))
	assert.Error(t, doc.Replace("x", nil))
}

func TestDocument_ConcurrentMutations(t *testing.T) {
	doc, _ := newDoc(t)
	require.NoError(t, doc.CreateProtolanguage("P"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := doc.CreatePhoneme(core.KindProtolanguage, "P", plosive("p", false))
			assert.NoError(t, err)
			_, _, _ = doc.Snapshot()
		}()
	}
	wg.Wait()

	p, err := doc.Protolanguage("P")
	require.NoError(t, err)
	assert.Len(t, p.Phonemes, 20)
}

func TestEpochName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"norse", "norse_epoched"},
		{"norse_epoch1", "norse_epoch2"},
		{"norse_epoch09", "norse_epoch10"},
		{"a_epoch1_epoch4", "a_epoch1_epoch5"},
		{"norse_epoched", "norse_epoched_epoched"},
		{"_epoch0", "_epoch1"},
		{"norse_epoch", "norse_epoch_epoched"},
		{"x_epoch99999999999999999999999", "x_epoch99999999999999999999999_epoched"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EpochName(tt.in))
		})
	}
}

func TestDocument_PollNames(t *testing.T) {
	doc, _ := newDoc(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan []string, 8)
	done := make(chan error, 1)
	go func() {
		done <- doc.PollNames(ctx, core.KindLanguage, 5*time.Millisecond, func(names []string) {
			updates <- names
		})
	}()

	assert.Equal(t, []string{}, <-updates)

	require.NoError(t, doc.CreateLanguage("A"))
	select {
	case names := <-updates:
		assert.Equal(t, []string{"A"}, names)
	case <-time.After(time.Second):
		t.Fatal("poller did not report new language")
	}

	// Unrelated changes do not produce updates.
	require.NoError(t, doc.CreateProtolanguage("P"))
	select {
	case names := <-updates:
		t.Fatalf("unexpected update %v", names)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
