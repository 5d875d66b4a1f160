package interaction

import (
	"context"
	"fmt"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
)

// =============================================================================
// CLIENT-GROUP MERGE RESOLVER
// =============================================================================

// MergeChoice is the user's answer to the merge dialog.
type MergeChoice string

const (
	ChoiceMerge   MergeChoice = "merge"
	ChoiceReplace MergeChoice = "replace"
	ChoiceCancel  MergeChoice = "cancel"
)

func (m MergeChoice) IsValid() bool {
	switch m {
	case ChoiceMerge, ChoiceReplace, ChoiceCancel:
		return true
	}
	return false
}

// MergeRequest is what the dialog shows while a decision is pending.
type MergeRequest struct {
	EncounterID       string       `json:"encounterId"`
	Group             bento.Atom   `json:"group"`
	CurrentRoster     []bento.Atom `json:"currentRoster"`
	CurrentHeadcount  int          `json:"currentHeadcount"`
	IncomingHeadcount int          `json:"incomingHeadcount"`
}

func (m MergeRequest) clone() MergeRequest {
	m.CurrentRoster = append([]bento.Atom{}, m.CurrentRoster...)
	m.Group.ClientIDs = append([]string(nil), m.Group.ClientIDs...)
	return m
}

// MergeRoster appends group to existing. Membership is not de-duplicated
// across groups, so headcounts add even when groups share clients.
func MergeRoster(existing []bento.Atom, group bento.Atom) []bento.Atom {
	out := make([]bento.Atom, 0, len(existing)+1)
	out = append(out, existing...)
	return append(out, group)
}

// ReplaceRoster makes group the whole roster.
func ReplaceRoster(group bento.Atom) []bento.Atom {
	return []bento.Atom{group}
}

// openMergeLocked computes the dialog view and suspends drags until answered.
func (c *Controller) openMergeLocked(encounterID, groupID string) (MergeRequest, error) {
	group, ok := c.board.ClientGroup(groupID)
	if !ok {
		return MergeRequest{}, fmt.Errorf("client group %q: %w", groupID, generic.ErrNotFound)
	}
	roster, err := c.board.Roster(encounterID)
	if err != nil {
		return MergeRequest{}, err
	}
	if roster == nil {
		roster = []bento.Atom{}
	}
	req := MergeRequest{
		EncounterID:       encounterID,
		Group:             group,
		CurrentRoster:     roster,
		CurrentHeadcount:  bento.Headcount(roster),
		IncomingHeadcount: group.Headcount(),
	}
	c.merge = &req
	c.logger.Info("merge decision pending",
		"encounter_id", encounterID, "group_id", groupID,
		"current", req.CurrentHeadcount, "incoming", req.IncomingHeadcount)
	return req.clone(), nil
}

// PendingMerge returns the open dialog, if any.
func (c *Controller) PendingMerge() (MergeRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.merge == nil {
		return MergeRequest{}, false
	}
	return c.merge.clone(), true
}

// MergeChoice resolves the pending merge. Merge and replace write
// overrides.clients; cancel closes the dialog with no write. The returned
// encounter is the post-choice state.
func (c *Controller) MergeChoice(ctx context.Context, choice MergeChoice) (bento.ScheduledEncounter, error) {
	if !choice.IsValid() {
		return bento.ScheduledEncounter{}, fmt.Errorf("%w: unknown merge choice %q", generic.ErrInvalidPayload, choice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	req := c.merge
	if req == nil {
		return bento.ScheduledEncounter{}, generic.ErrNoSession
	}
	c.merge = nil
	defer c.observer.MergeResolved(choice)

	var roster []bento.Atom
	switch choice {
	case ChoiceCancel:
		e, ok := c.board.Encounter(req.EncounterID)
		if !ok {
			return bento.ScheduledEncounter{}, fmt.Errorf("encounter %q: %w", req.EncounterID, generic.ErrNotFound)
		}
		c.logger.Info("merge cancelled", "encounter_id", req.EncounterID)
		return e, nil
	case ChoiceMerge:
		roster = MergeRoster(req.CurrentRoster, req.Group)
	case ChoiceReplace:
		roster = ReplaceRoster(req.Group)
	}

	e, err := c.board.SetClients(ctx, req.EncounterID, roster)
	if err != nil {
		return bento.ScheduledEncounter{}, err
	}
	c.logger.Info("merge resolved", "encounter_id", e.ID, "choice", choice, "headcount", bento.Headcount(roster))
	return e, nil
}
