package bento

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/warp/bentobox/generic"
)

// =============================================================================
// RECURRENCE - RRULE expansion into duplicate families
// =============================================================================

const (
	// MaxOccurrences caps one Repeat expansion.
	MaxOccurrences = 366

	// repeatHorizon bounds open-ended rules such as FREQ=DAILY without COUNT.
	repeatHorizon = 1 // years
)

// Occurrences expands an RFC 5545 RRULE anchored at start and returns every
// occurrence strictly after it, up to MaxOccurrences and one year out.
// A leading "RRULE:" prefix is accepted.
func Occurrences(rule string, start time.Time) ([]time.Time, error) {
	rule = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:"))
	if rule == "" {
		return nil, fmt.Errorf("%w: empty rule", generic.ErrInvalidRecurrence)
	}
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrInvalidRecurrence, err)
	}
	r.DTStart(start)

	var out []time.Time
	for _, t := range r.Between(start, start.AddDate(repeatHorizon, 0, 0), true) {
		if !t.After(start) {
			continue
		}
		out = append(out, t.In(start.Location()))
		if len(out) == MaxOccurrences {
			break
		}
	}
	return out, nil
}

// Repeat places a duplicate of the encounter at every occurrence of rule
// after its start. The copies join the encounter's family and are returned
// in occurrence order. One snapshot write covers the whole expansion.
func (b *Board) Repeat(ctx context.Context, id string, rule string) ([]ScheduledEncounter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, ok := b.encounters[id]
	if !ok {
		return nil, notFound("encounter", id)
	}
	times, err := Occurrences(rule, src.Start)
	if err != nil {
		return nil, err
	}

	out := make([]ScheduledEncounter, 0, len(times))
	for _, t := range times {
		out = append(out, b.duplicateLocked(src, t).clone())
	}
	if len(out) > 0 {
		b.commit(ctx, "repeat")
	}
	b.logger.Info("recurrence expanded", "encounter_id", id, "rule", rule, "occurrences", len(out))
	return out, nil
}
