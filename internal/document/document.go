// Package document owns the single in-memory project: a project name and one
// language group behind one mutex.
//
// Every exported method takes the lock once, performs its whole effect and
// releases it, so epoch and merge appear atomic to everything else. Values
// handed out are deep copies.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jengamon/lexi/internal/ancestry"
	"github.com/jengamon/lexi/internal/family"
	"github.com/jengamon/lexi/internal/notifier"
	"github.com/jengamon/lexi/pkg/core"
)

// Broadcaster receives change signals after each mutation.
type Broadcaster interface {
	Broadcast(topics ...notifier.Topic)
}

// DefaultName is the project name of a fresh document.
const DefaultName = "untitled"

// Document is the owned, lock-guarded project.
type Document struct {
	mu       sync.Mutex
	name     string
	group    *core.LanguageGroup
	revision uint64

	logger *slog.Logger
	notify Broadcaster
}

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the logger used for resolution warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithBroadcaster sets the change listener.
func WithBroadcaster(b Broadcaster) Option {
	return func(d *Document) {
		if b != nil {
			d.notify = b
		}
	}
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(...notifier.Topic) {}

// New creates a document around group. A nil group starts a new family.
func New(name string, group *core.LanguageGroup, opts ...Option) *Document {
	if group == nil {
		group = core.NewGroup()
	}
	if name == "" {
		name = DefaultName
	}
	d := &Document{
		name:   name,
		group:  group,
		logger: slog.New(slog.DiscardHandler),
		notify: noopBroadcaster{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type docKey struct{}

// WithContext returns a context carrying doc.
func WithContext(ctx context.Context, doc *Document) context.Context {
	return context.WithValue(ctx, docKey{}, doc)
}

// FromContext retrieves the document stored by WithContext, or nil.
func FromContext(ctx context.Context) *Document {
	if d, ok := ctx.Value(docKey{}).(*Document); ok {
		return d
	}
	return nil
}

// changed must be called with the lock held.
func (d *Document) changed(topics ...notifier.Topic) {
	d.revision++
	d.notify.Broadcast(topics...)
}

func (d *Document) resolver() *ancestry.Resolver {
	return ancestry.New(d.logger, d.group.Protolangs)
}

// =============================================================================
// Project
// =============================================================================

// Name returns the project name.
func (d *Document) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

// SetName renames the project.
func (d *Document) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("project name: %w", core.ErrEmptyName)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
	d.changed(notifier.TopicProject)
	return nil
}

// FamilyID returns the family identifier of the current group.
func (d *Document) FamilyID() uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.group.FamilyID
}

// Revision increases by one with every mutation.
func (d *Document) Revision() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revision
}

// Snapshot returns the project name, a deep copy of the group and the
// revision it was taken at.
func (d *Document) Snapshot() (string, *core.LanguageGroup, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name, d.group.Clone(), d.revision
}

// Replace swaps in a new project wholesale, as done by load and new.
func (d *Document) Replace(name string, group *core.LanguageGroup) error {
	if name == "" {
		return fmt.Errorf("project name: %w", core.ErrEmptyName)
	}
	if group == nil {
		return fmt.Errorf("replace %q: nil language group", name)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
	d.group = group.Clone()
	d.changed(notifier.TopicProject, notifier.TopicLanguages, notifier.TopicProtolanguages, notifier.TopicPhonemes)
	return nil
}

// Epoch advances every language into a protolanguage and renames the
// project (name_epochN becomes name_epochN+1, anything else gains _epoched).
// It returns the new project name.
func (d *Document) Epoch() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := family.Epoch(d.group, d.logger); err != nil {
		return "", err
	}
	d.name = EpochName(d.name)
	d.logger.Info("epoch complete", "project", d.name, "protolanguages", len(d.group.Protolangs))
	d.changed(notifier.TopicProject, notifier.TopicLanguages, notifier.TopicProtolanguages, notifier.TopicPhonemes)
	return d.name, nil
}

// Merge imports incoming's languages. The family ids must match.
func (d *Document) Merge(incoming *core.LanguageGroup) (family.MergeReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := family.CheckFamily(d.group, incoming); err != nil {
		return family.MergeReport{}, fmt.Errorf("merge: %w", err)
	}
	report := family.Merge(d.group, incoming)
	for lang, pruned := range report.Pruned {
		d.logger.Warn("pruned unknown ancestors", "language", lang, "ancestors", pruned)
	}
	d.changed(notifier.TopicLanguages, notifier.TopicPhonemes)
	return report, nil
}

// =============================================================================
// Languages and protolanguages
// =============================================================================

// CreateLanguage adds an empty language.
func (d *Document) CreateLanguage(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.group.CreateLanguage(name); err != nil {
		return err
	}
	d.changed(notifier.TopicLanguages)
	return nil
}

// CreateProtolanguage adds an empty protolanguage.
func (d *Document) CreateProtolanguage(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.group.CreateProtolanguage(name); err != nil {
		return err
	}
	d.changed(notifier.TopicProtolanguages)
	return nil
}

// Delete removes the named entity. Deleting a missing entity is a no-op
// that reports false.
func (d *Document) Delete(kind core.Kind, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	var removed bool
	switch kind {
	case core.KindLanguage:
		removed = d.group.DeleteLanguage(name)
	case core.KindProtolanguage:
		removed = d.group.DeleteProtolanguage(name)
	}
	if removed {
		d.changed(topicFor(kind))
	}
	return removed
}

// Language returns a copy of the named language.
func (d *Document) Language(name string) (*core.Language, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l := d.group.Language(name); l != nil {
		return l.Clone(), nil
	}
	return nil, fmt.Errorf("%s %q: %w", core.KindLanguage, name, core.ErrNotFound)
}

// Protolanguage returns a copy of the named protolanguage.
func (d *Document) Protolanguage(name string) (*core.Protolanguage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p := d.group.Protolanguage(name); p != nil {
		return p.Clone(), nil
	}
	return nil, fmt.Errorf("%s %q: %w", core.KindProtolanguage, name, core.ErrNotFound)
}

// Names lists the names of one kind in stored order.
func (d *Document) Names(kind core.Kind) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.group.Names(kind)
}

// SetAncestors replaces a language's ancestor list. Names are not checked;
// dangling references are tolerated.
func (d *Document) SetAncestors(lang string, ancestors []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l := d.group.Language(lang)
	if l == nil {
		return fmt.Errorf("%s %q: %w", core.KindLanguage, lang, core.ErrNotFound)
	}
	l.Ancestors = append([]string{}, ancestors...)
	d.changed(notifier.TopicLanguages, notifier.TopicPhonemes)
	return nil
}

// Description returns the free-form description of an entity, or nil.
func (d *Document) Description(kind core.Kind, name string) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch kind {
	case core.KindLanguage:
		if l := d.group.Language(name); l != nil {
			return l.Clone().Description, nil
		}
	case core.KindProtolanguage:
		if p := d.group.Protolanguage(name); p != nil {
			return p.Clone().Description, nil
		}
	}
	return nil, fmt.Errorf("%s %q: %w", kind, name, core.ErrNotFound)
}

// SetDescription stores raw as the entity's description. raw must be valid
// JSON; an empty raw clears the description.
func (d *Document) SetDescription(kind core.Kind, name string, raw json.RawMessage) error {
	if len(raw) > 0 && !json.Valid(raw) {
		return fmt.Errorf("description for %s %q is not valid JSON", kind, name)
	}
	var stored json.RawMessage
	if len(raw) > 0 {
		stored = append(json.RawMessage(nil), raw...)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	switch kind {
	case core.KindLanguage:
		if l := d.group.Language(name); l != nil {
			l.Description = stored
			d.changed(notifier.TopicLanguages)
			return nil
		}
	case core.KindProtolanguage:
		if p := d.group.Protolanguage(name); p != nil {
			p.Description = stored
			d.changed(notifier.TopicProtolanguages)
			return nil
		}
	}
	return fmt.Errorf("%s %q: %w", kind, name, core.ErrNotFound)
}

func topicFor(kind core.Kind) notifier.Topic {
	if kind == core.KindProtolanguage {
		return notifier.TopicProtolanguages
	}
	return notifier.TopicLanguages
}

// =============================================================================
// Phonemes
// =============================================================================

// CreatePhoneme mints a new id and stores the normalized phoneme in the
// entity's own map.
func (d *Document) CreatePhoneme(kind core.Kind, name string, p core.Phoneme) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.group.Entity(kind, name)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	e.PutLocal(id, p.Normalize())
	d.changed(notifier.TopicPhonemes)
	return id, nil
}

// GetPhoneme resolves id against the entity and its ancestors.
func (d *Document) GetPhoneme(kind core.Kind, name string, id uuid.UUID) (core.Phoneme, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.group.Entity(kind, name)
	if err != nil {
		return core.Phoneme{}, err
	}
	return d.resolver().Get(e, id)
}

// SetPhoneme overwrites a local phoneme or creates a local override of an
// inherited one.
func (d *Document) SetPhoneme(kind core.Kind, name string, id uuid.UUID, p core.Phoneme) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.group.Entity(kind, name)
	if err != nil {
		return err
	}
	if err := d.resolver().Set(e, id, p); err != nil {
		return err
	}
	d.changed(notifier.TopicPhonemes)
	return nil
}

// DeletePhoneme removes id from the entity's own map only. The bool is false
// when the id was not local.
func (d *Document) DeletePhoneme(kind core.Kind, name string, id uuid.UUID) (core.Phoneme, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.group.Entity(kind, name)
	if err != nil {
		return core.Phoneme{}, false, err
	}
	p, ok := d.resolver().Delete(e, id)
	if ok {
		d.changed(notifier.TopicPhonemes)
	}
	return p, ok, nil
}

// EnumeratePhonemes lists everything visible to the entity, local entries
// first.
func (d *Document) EnumeratePhonemes(kind core.Kind, name string) ([]ancestry.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, err := d.group.Entity(kind, name)
	if err != nil {
		return nil, err
	}
	return d.resolver().Enumerate(e), nil
}
