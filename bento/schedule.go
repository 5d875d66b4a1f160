package bento

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/bentobox/generic"
)

// =============================================================================
// PLACEMENT
// =============================================================================

// Place creates a scheduled encounter from a template at start.
// A missing or zero duration falls back to generic.DefaultDuration with a
// warning; a duration below the minimum is raised to it.
func (b *Board) Place(ctx context.Context, templateID string, start time.Time) (ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.templates[templateID]
	if !ok {
		return ScheduledEncounter{}, notFound("template", templateID)
	}

	dur := generic.DefaultDuration
	if m, ok := t.DurationMinutes(); ok {
		dur = time.Duration(m) * time.Minute
	} else {
		b.logger.Warn("template has no duration, using default",
			"template_id", t.ID, "default_minutes", int(generic.DefaultDuration/time.Minute))
	}
	if dur < generic.MinimumDuration {
		b.logger.Warn("template duration below minimum, raising",
			"template_id", t.ID, "minutes", int(dur/time.Minute))
		dur = generic.MinimumDuration
	}

	e := &ScheduledEncounter{
		ID:              b.newID(),
		TemplateID:      t.ID,
		TemplateVersion: t.Version,
		Start:           start,
		End:             start.Add(dur),
		Title:           t.Name,
		Color:           t.Color,
		Status:          StatusScheduled,
	}
	b.encounters[e.ID] = e
	b.commit(ctx, "place")
	return e.clone(), nil
}

// Move shifts an encounter to start, preserving its duration.
// Status returns to scheduled unless it was cancelled.
func (b *Board) Move(ctx context.Context, id string, start time.Time) (ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, notFound("encounter", id)
	}
	dur := e.Duration()
	if dur < generic.MinimumDuration {
		dur = generic.MinimumDuration
	}
	e.Start = start
	e.End = start.Add(dur)
	e.Status = statusAfterEdit(e.Status)
	b.commit(ctx, "move")
	return e.clone(), nil
}

// Retime overwrites start and end. It is the resize write path.
func (b *Board) Retime(ctx context.Context, id string, start, end time.Time) (ScheduledEncounter, error) {
	if end.Sub(start) < generic.MinimumDuration {
		return ScheduledEncounter{}, fmt.Errorf("%w: %s to %s is shorter than %s",
			generic.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339), generic.MinimumDuration)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, notFound("encounter", id)
	}
	e.Start = start
	e.End = end
	e.Status = statusAfterEdit(e.Status)
	b.commit(ctx, "retime")
	return e.clone(), nil
}

// =============================================================================
// STATUS & OVERRIDES
// =============================================================================

// Cancel sets the sticky cancelled status.
func (b *Board) Cancel(ctx context.Context, id string) (ScheduledEncounter, error) {
	return b.setStatus(ctx, id, StatusCancelled)
}

// Reinstate clears a cancellation.
func (b *Board) Reinstate(ctx context.Context, id string) (ScheduledEncounter, error) {
	return b.setStatus(ctx, id, StatusScheduled)
}

func (b *Board) setStatus(ctx context.Context, id string, s Status) (ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, notFound("encounter", id)
	}
	e.Status = s
	b.commit(ctx, "set_status")
	return e.clone(), nil
}

// SetOverrides replaces the encounter's override record.
func (b *Board) SetOverrides(ctx context.Context, id string, o Overrides) (ScheduledEncounter, error) {
	for _, c := range o.Clients {
		if !c.IsRosterEntry() {
			return ScheduledEncounter{}, fmt.Errorf("%w: %s %q cannot be a client", generic.ErrInvalidAtom, c.Kind, c.ID)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, notFound("encounter", id)
	}
	e.Overrides = o.clone()
	b.commit(ctx, "set_overrides")
	return e.clone(), nil
}

// SetClients writes roster to overrides.clients, leaving the template alone.
func (b *Board) SetClients(ctx context.Context, id string, roster []Atom) (ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, notFound("encounter", id)
	}
	if roster == nil {
		roster = []Atom{}
	}
	e.Overrides.Clients = cloneAtoms(roster)
	b.commit(ctx, "set_clients")
	return e.clone(), nil
}

// =============================================================================
// READS
// =============================================================================

// Encounter returns a copy of the encounter with id.
func (b *Board) Encounter(id string) (ScheduledEncounter, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, false
	}
	return e.clone(), true
}

// Encounters lists every encounter sorted by start, then id.
func (b *Board) Encounters() []ScheduledEncounter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encountersLocked()
}

func (b *Board) encountersLocked() []ScheduledEncounter {
	out := make([]ScheduledEncounter, 0, len(b.encounters))
	for _, e := range b.encounters {
		out = append(out, e.clone())
	}
	sortEncounters(out)
	return out
}

// Visible returns encounters overlapping period that pass the staff filter.
// Encounters with unreadable times are included, see visibleIn.
func (b *Board) Visible(period generic.Period) []ScheduledEncounter {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []ScheduledEncounter
	for _, e := range b.encountersLocked() {
		if !visibleIn(e, period) {
			continue
		}
		if !MatchesStaff(e, b.templateLocked(e.TemplateID), b.staffFilter) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// visibleIn reports whether e belongs in period. Malformed encounters are
// shown on the day they start, or in every period when the start is unknown.
func visibleIn(e ScheduledEncounter, period generic.Period) bool {
	switch {
	case e.Start.IsZero():
		return true
	case e.End.IsZero():
		return period.Contains(e.Start)
	}
	return period.Overlaps(e.Start, e.End)
}

// TemplateFor resolves the encounter's template, or nil when it was deleted.
func (b *Board) TemplateFor(e ScheduledEncounter) *Template {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.templateLocked(e.TemplateID)
	if t == nil {
		return nil
	}
	c := t.clone()
	return &c
}

func (b *Board) templateLocked(id string) *Template {
	if id == "" {
		return nil
	}
	return b.templates[id]
}

// Roster returns the effective clients of the encounter with id.
func (b *Board) Roster(id string) ([]Atom, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.encounters[id]
	if !ok {
		return nil, notFound("encounter", id)
	}
	return EffectiveClients(*e, b.templateLocked(e.TemplateID)), nil
}

// Capacity reports the effective headcount of the encounter with id.
func (b *Board) Capacity(id string) (CapacityReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.encounters[id]
	if !ok {
		return CapacityReport{}, notFound("encounter", id)
	}
	return CapacityFor(*e, b.templateLocked(e.TemplateID)), nil
}

// ClientGroup resolves a client group atom.
func (b *Board) ClientGroup(id string) (Atom, bool) {
	return b.Atom(KindClientGroup, id)
}
