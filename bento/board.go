/*
board.go - The owned state container

PURPOSE:
  Board holds the library (atoms and templates), the pool, the scheduled
  encounters and the view preferences. It replaces ambient global state:
  callers get a *Board by construction and every mutation is a named
  method on it.

PERSISTENCE:
  After every successful mutation the whole board is serialized and Put
  to the BlobStore under one key. There is no batching. A failed Put is
  logged and reported to the persist hook; the in-memory mutation stands.

CONCURRENCY:
  The calendar is a single-user, event-driven surface, but the HTTP layer
  may deliver events on several goroutines. A mutex serializes them so
  each mutation is applied and persisted whole.

SEE ALSO:
  - schedule.go: Encounter operations
  - recurrence.go: RRULE-driven duplicate families
  - snapshot.go: Blob layout and Load
*/
package bento

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/bentobox/generic"
)

// Board is the scheduling state container.
type Board struct {
	mu sync.Mutex

	registry      *Registry
	templates     map[string]*Template
	templateOrder []string
	pool          []PoolEntry
	encounters    map[string]*ScheduledEncounter
	staffFilter   []string
	timeFormat    generic.TimeFormat

	store        generic.BlobStore
	storeKey     string
	logger       *slog.Logger
	clock        generic.Clock
	newID        func() string
	onPersistErr func(error)
}

// Option configures a Board.
type Option func(*Board)

// WithStore persists the board to s under key after every mutation.
func WithStore(s generic.BlobStore, key string) Option {
	return func(b *Board) {
		b.store = s
		if key == "" {
			key = generic.DefaultStoreKey
		}
		b.storeKey = key
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

func WithClock(c generic.Clock) Option {
	return func(b *Board) { b.clock = c }
}

// WithIDGenerator replaces uuid generation (tests use sequential ids).
func WithIDGenerator(f func() string) Option {
	return func(b *Board) { b.newID = f }
}

// WithPersistHook is called with every failed persistence write.
func WithPersistHook(f func(error)) Option {
	return func(b *Board) { b.onPersistErr = f }
}

// NewBoard returns an empty board.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		registry:   NewRegistry(),
		templates:  make(map[string]*Template),
		encounters: make(map[string]*ScheduledEncounter),
		timeFormat: generic.TimeFormat12h,
		storeKey:   generic.DefaultStoreKey,
		logger:     slog.Default(),
		clock:      generic.SystemClock,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// commit persists the board. Caller holds b.mu.
func (b *Board) commit(ctx context.Context, op string) {
	if b.store == nil {
		return
	}
	blob, err := json.Marshal(b.snapshotLocked())
	if err == nil {
		err = b.store.Put(ctx, b.storeKey, blob)
	}
	if err != nil {
		b.logger.Error("persisting board failed", "op", op, "key", b.storeKey, "error", err)
		if b.onPersistErr != nil {
			b.onPersistErr(err)
		}
		return
	}
	b.logger.Debug("board persisted", "op", op, "bytes", len(blob))
}

// =============================================================================
// ATOM REGISTRY
// =============================================================================

// AddAtom appends atom to the catalog for kind, rejecting duplicate ids.
func (b *Board) AddAtom(ctx context.Context, atom Atom, kind AtomKind) (Atom, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	added, err := b.registry.Add(atom, kind)
	if err != nil {
		return Atom{}, err
	}
	b.commit(ctx, "add_atom")
	return added, nil
}

func (b *Board) Atom(kind AtomKind, id string) (Atom, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registry.Lookup(kind, id)
}

func (b *Board) Atoms(kind AtomKind) []Atom {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registry.List(kind)
}

// =============================================================================
// TEMPLATE COMPOSER
// =============================================================================

// ComposeTemplate validates the draft and saves it as version 1.
func (b *Board) ComposeTemplate(ctx context.Context, d Draft) (Template, error) {
	if err := d.Validate(); err != nil {
		return Template{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := d.ID
	if id == "" {
		id = b.newID()
	}
	if _, exists := b.templates[id]; exists {
		return Template{}, &TemplateValidationError{Reason: fmt.Sprintf("template %q already exists", id)}
	}

	now := b.clock()
	t := &Template{ID: id, Version: 1, CreatedAt: now, UpdatedAt: now}
	d.apply(t)
	b.templates[id] = t
	b.templateOrder = append(b.templateOrder, id)
	b.commit(ctx, "compose_template")
	return t.clone(), nil
}

// UpdateTemplate re-validates, increments the version and refreshes every
// pool entry built from the template. Scheduled encounters are untouched.
func (b *Board) UpdateTemplate(ctx context.Context, id string, d Draft) (Template, error) {
	if err := d.Validate(); err != nil {
		return Template{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.templates[id]
	if !ok {
		return Template{}, notFound("template", id)
	}
	d.apply(t)
	t.Version++
	t.UpdatedAt = b.clock()

	for i := range b.pool {
		if b.pool[i].Kind == PoolTemplate && b.pool[i].TemplateID == id {
			b.pool[i].Name = t.Name
			b.pool[i].Color = t.Color
			b.pool[i].QuickInfo = quickInfoFor(*t)
		}
	}
	b.commit(ctx, "update_template")
	return t.clone(), nil
}

// DeleteTemplate removes the template and its pool entries. Encounters
// placed from it keep rendering from their cached title and color.
func (b *Board) DeleteTemplate(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.templates[id]; !ok {
		return notFound("template", id)
	}
	delete(b.templates, id)
	b.templateOrder = removeID(b.templateOrder, id)

	kept := b.pool[:0]
	for _, p := range b.pool {
		if p.Kind == PoolTemplate && p.TemplateID == id {
			continue
		}
		kept = append(kept, p)
	}
	b.pool = kept
	b.commit(ctx, "delete_template")
	return nil
}

// Template returns a copy of the template with id.
func (b *Board) Template(id string) (Template, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.templates[id]
	if !ok {
		return Template{}, false
	}
	return t.clone(), true
}

// Templates lists templates in creation order.
func (b *Board) Templates() []Template {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Template, 0, len(b.templateOrder))
	for _, id := range b.templateOrder {
		out = append(out, b.templates[id].clone())
	}
	return out
}

// =============================================================================
// POOL
// =============================================================================

// AddToPool stages a snapshot reference to a template.
func (b *Board) AddToPool(ctx context.Context, templateID string) (PoolEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.templates[templateID]
	if !ok {
		return PoolEntry{}, notFound("template", templateID)
	}
	p := PoolEntry{
		ID:         b.newID(),
		Kind:       PoolTemplate,
		TemplateID: t.ID,
		Name:       t.Name,
		Color:      t.Color,
		QuickInfo:  quickInfoFor(*t),
	}
	b.pool = append(b.pool, p)
	b.commit(ctx, "add_to_pool")
	return p.clone(), nil
}

// AddClientGroupToPool stages a bare client group.
func (b *Board) AddClientGroupToPool(ctx context.Context, groupID string) (PoolEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.registry.ClientGroup(groupID)
	if !ok {
		return PoolEntry{}, notFound("client group", groupID)
	}
	p := PoolEntry{
		ID:            b.newID(),
		Kind:          PoolClientGroup,
		ClientGroupID: g.ID,
		Name:          g.Name,
		QuickInfo:     quickInfoForGroup(g),
	}
	b.pool = append(b.pool, p)
	b.commit(ctx, "add_client_group_to_pool")
	return p.clone(), nil
}

// RemoveFromPool deletes the staging reference only.
func (b *Board) RemoveFromPool(ctx context.Context, poolID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, p := range b.pool {
		if p.ID == poolID {
			b.pool = append(b.pool[:i], b.pool[i+1:]...)
			b.commit(ctx, "remove_from_pool")
			return nil
		}
	}
	return notFound("pool entry", poolID)
}

// Pool lists staged entries in insertion order.
func (b *Board) Pool() []PoolEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PoolEntry, len(b.pool))
	for i, p := range b.pool {
		out[i] = p.clone()
	}
	return out
}

// =============================================================================
// PREFERENCES
// =============================================================================

// SetStaffFilter replaces the selected staff ids.
func (b *Board) SetStaffFilter(ctx context.Context, ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staffFilter = dedupeIDs(ids)
	b.commit(ctx, "set_staff_filter")
}

func (b *Board) StaffFilter() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.staffFilter...)
}

func (b *Board) SetTimeFormat(ctx context.Context, f generic.TimeFormat) error {
	if !f.IsValid() {
		return fmt.Errorf("%w: unknown time format %q", generic.ErrInvalidPayload, f)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeFormat = f
	b.commit(ctx, "set_time_format")
	return nil
}

func (b *Board) TimeFormat() generic.TimeFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timeFormat
}

// Reset empties the board, keeping its options.
func (b *Board) Reset(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registry = NewRegistry()
	b.templates = make(map[string]*Template)
	b.templateOrder = nil
	b.pool = nil
	b.encounters = make(map[string]*ScheduledEncounter)
	b.staffFilter = nil
	b.timeFormat = generic.TimeFormat12h
	b.commit(ctx, "reset")
}

// =============================================================================
// HELPERS
// =============================================================================

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

// sortEncounters orders by start, then id.
func sortEncounters(list []ScheduledEncounter) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Start.Equal(list[j].Start) {
			return list[i].Start.Before(list[j].Start)
		}
		return list[i].ID < list[j].ID
	})
}
