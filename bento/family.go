package bento

import (
	"context"
	"time"
)

// =============================================================================
// DUPLICATE FAMILIES - Arena of encounters linked by id, one level deep
// =============================================================================

// DeleteScope selects what Delete removes.
type DeleteScope string

const (
	// DeleteInstance removes one encounter and leaves its siblings linked.
	DeleteInstance DeleteScope = "instance"
	// DeleteFamily removes the root and every duplicate of it.
	DeleteFamily DeleteScope = "family"
)

// Duplicate copies the encounter to start as a child of its family root.
// Duplicating a child attaches the copy to the same parent.
func (b *Board) Duplicate(ctx context.Context, id string, start time.Time) (ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, ok := b.encounters[id]
	if !ok {
		return ScheduledEncounter{}, notFound("encounter", id)
	}
	child := b.duplicateLocked(src, start)
	b.commit(ctx, "duplicate")
	return child.clone(), nil
}

// duplicateLocked links a new child of src's root at start.
func (b *Board) duplicateLocked(src *ScheduledEncounter, start time.Time) *ScheduledEncounter {
	root := b.encounters[src.RootID()]
	if root == nil {
		root = src
	}
	child := &ScheduledEncounter{
		ID:              b.newID(),
		TemplateID:      src.TemplateID,
		TemplateVersion: src.TemplateVersion,
		Start:           start,
		End:             start.Add(src.Duration()),
		Title:           src.Title,
		Color:           src.Color,
		Status:          StatusScheduled,
		IsDuplicate:     true,
		ParentID:        root.ID,
		Overrides:       src.Overrides.clone(),
	}
	root.ChildIDs = append(root.ChildIDs, child.ID)
	b.encounters[child.ID] = child
	return child
}

// Delete removes encounters according to scope and returns the removed ids.
//
// DeleteInstance on a child unlinks it from its parent. On a root with
// children the first child is promoted to root and the others re-parented
// to it, so no survivor points at a removed id.
//
// DeleteFamily removes the root (the parent, when invoked on a child) and
// every id in its ChildIDs.
func (b *Board) Delete(ctx context.Context, id string, scope DeleteScope) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return nil, notFound("encounter", id)
	}

	var removed []string
	if scope == DeleteFamily {
		removed = b.deleteFamilyLocked(e)
	} else {
		removed = b.deleteInstanceLocked(e)
	}
	b.commit(ctx, "delete_"+string(scope))
	return removed, nil
}

func (b *Board) deleteInstanceLocked(e *ScheduledEncounter) []string {
	switch {
	case e.ParentID != "":
		if parent := b.encounters[e.ParentID]; parent != nil {
			parent.ChildIDs = removeID(parent.ChildIDs, e.ID)
		}
	case len(e.ChildIDs) > 0:
		var heir *ScheduledEncounter
		var rest []string
		for _, cid := range e.ChildIDs {
			c := b.encounters[cid]
			if c == nil {
				continue
			}
			if heir == nil {
				heir = c
				continue
			}
			rest = append(rest, cid)
		}
		if heir != nil {
			heir.ParentID = ""
			heir.IsDuplicate = false
			heir.ChildIDs = rest
			for _, cid := range rest {
				b.encounters[cid].ParentID = heir.ID
			}
		}
	}
	delete(b.encounters, e.ID)
	return []string{e.ID}
}

func (b *Board) deleteFamilyLocked(e *ScheduledEncounter) []string {
	root := b.encounters[e.RootID()]
	if root == nil {
		// Parent already gone: treat e as the family.
		root = e
	}
	removed := []string{root.ID}
	for _, cid := range root.ChildIDs {
		if _, ok := b.encounters[cid]; ok {
			removed = append(removed, cid)
			delete(b.encounters, cid)
		}
	}
	delete(b.encounters, root.ID)
	if root != e {
		if _, still := b.encounters[e.ID]; still {
			removed = append(removed, e.ID)
			delete(b.encounters, e.ID)
		}
	}
	return removed
}

// Family returns the root and children of the family containing id.
func (b *Board) Family(id string) ([]ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.encounters[id]
	if !ok {
		return nil, notFound("encounter", id)
	}
	root := b.encounters[e.RootID()]
	if root == nil {
		return []ScheduledEncounter{e.clone()}, nil
	}
	out := []ScheduledEncounter{root.clone()}
	for _, cid := range root.ChildIDs {
		if c, ok := b.encounters[cid]; ok {
			out = append(out, c.clone())
		}
	}
	return out, nil
}
