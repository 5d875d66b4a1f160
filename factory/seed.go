/*
Package factory converts seed documents into Board state.

PURPOSE:
  A seed document describes a library (atoms), templates composed from
  those atoms by id, pool entries and optional demo placements. The
  factory resolves every reference, runs each template through the same
  Composer validation a user would hit, and applies the result to a Board.
  Documents are JSON or YAML; the format is sniffed from the first byte.

SCHEMA (YAML shown):
  name: Clinic week
  timeFormat: 24h
  atoms:
    - {type: staff, id: s-dana, name: Dana Reyes, initials: DR}
    - {type: duration, id: d-90, minutes: 90, label: 90 min}
  templates:
    - id: tpl-pt
      name: PT session
      category: clinical
      staff: [s-dana]
      activity: a-pt
      clients: [c-amy, g-morning]   # client or client-group ids
      location: l-gym
      duration: d-90                # atom id, bare minutes, or {minutes: 90}
  pool:
    - template: tpl-pt
    - clientGroup: g-morning
  encounters:
    - {template: tpl-pt, day: 0, at: "09:30", repeat: "FREQ=WEEKLY;COUNT=4"}

  Encounter "day" is an offset from the week anchor passed to Apply; an
  absolute RFC 3339 "start" may be given instead.

SEE ALSO:
  - bento/template.go: Draft validation
  - api/scenarios.go: Embedded demo seeds
*/
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
)

// =============================================================================
// SEED SCHEMA TYPES
// =============================================================================

// SeedJSON is the document root.
type SeedJSON struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	TimeFormat  string          `json:"timeFormat,omitempty" yaml:"timeFormat,omitempty"`
	Atoms       []bento.Atom    `json:"atoms" yaml:"atoms"`
	Templates   []TemplateJSON  `json:"templates" yaml:"templates"`
	Pool        []PoolJSON      `json:"pool,omitempty" yaml:"pool,omitempty"`
	Encounters  []EncounterJSON `json:"encounters,omitempty" yaml:"encounters,omitempty"`
}

// TemplateJSON references atoms by id.
type TemplateJSON struct {
	ID       string      `json:"id" yaml:"id"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Color    string      `json:"color,omitempty" yaml:"color,omitempty"`
	Category string      `json:"category,omitempty" yaml:"category,omitempty"`
	Staff    []string    `json:"staff" yaml:"staff"`
	Activity string      `json:"activity" yaml:"activity"`
	Clients  []string    `json:"clients" yaml:"clients"`
	Location string      `json:"location,omitempty" yaml:"location,omitempty"`
	Duration DurationRef `json:"duration" yaml:"duration"`
}

// DurationRef is a duration atom id, a bare minute count, or {minutes}.
type DurationRef struct {
	ID      string
	Minutes int
}

func (d *DurationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var minutes float64
	if err := json.Unmarshal(data, &minutes); err == nil {
		d.Minutes = int(minutes)
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		d.ID = id
		return nil
	}
	var obj struct {
		ID      string `json:"id"`
		Minutes int    `json:"minutes"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("duration must be an id, a number or {minutes}: %w", err)
	}
	d.ID, d.Minutes = obj.ID, obj.Minutes
	return nil
}

func (d *DurationRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if n, err := strconv.Atoi(node.Value); err == nil {
			d.Minutes = n
			return nil
		}
		d.ID = node.Value
		return nil
	case yaml.MappingNode:
		var obj struct {
			ID      string `yaml:"id"`
			Minutes int    `yaml:"minutes"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		d.ID, d.Minutes = obj.ID, obj.Minutes
		return nil
	}
	return fmt.Errorf("line %d: duration must be an id, a number or {minutes}", node.Line)
}

func (d DurationRef) MarshalJSON() ([]byte, error) {
	if d.ID != "" {
		return json.Marshal(d.ID)
	}
	return json.Marshal(d.Minutes)
}

// PoolJSON stages exactly one of a template or a client group.
type PoolJSON struct {
	Template    string `json:"template,omitempty" yaml:"template,omitempty"`
	ClientGroup string `json:"clientGroup,omitempty" yaml:"clientGroup,omitempty"`
}

// EncounterJSON is a demo placement.
type EncounterJSON struct {
	Template  string `json:"template" yaml:"template"`
	Day       int    `json:"day,omitempty" yaml:"day,omitempty"`
	At        string `json:"at,omitempty" yaml:"at,omitempty"`
	Start     string `json:"start,omitempty" yaml:"start,omitempty"`
	Repeat    string `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSeed decodes a JSON or YAML seed document.
func ParseSeed(data []byte) (*SeedJSON, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty seed document")
	}
	var s SeedJSON
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
		}
		return &s, nil
	}
	if err := yaml.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return &s, nil
}

// =============================================================================
// SEED FACTORY
// =============================================================================

// Summary counts what Apply created.
type Summary struct {
	Atoms      int `json:"atoms"`
	Templates  int `json:"templates"`
	Pool       int `json:"pool"`
	Encounters int `json:"encounters"`
}

// SeedFactory applies seed documents to boards.
type SeedFactory struct {
	// Location interprets "at" clock times; defaults to the anchor's.
	Location *time.Location
}

func NewSeedFactory() *SeedFactory {
	return &SeedFactory{}
}

// Apply adds everything in s to b. anchor is the week start that
// encounter day offsets count from. Apply stops at the first error; what
// was applied before it stays.
func (f *SeedFactory) Apply(ctx context.Context, b *bento.Board, s *SeedJSON, anchor time.Time) (Summary, error) {
	var sum Summary

	for _, a := range s.Atoms {
		if _, err := b.AddAtom(ctx, a, a.Kind); err != nil {
			return sum, fmt.Errorf("atom %q: %w", a.ID, err)
		}
		sum.Atoms++
	}

	for _, tj := range s.Templates {
		d, err := f.Draft(b, tj)
		if err != nil {
			return sum, fmt.Errorf("template %q: %w", tj.ID, err)
		}
		if _, err := b.ComposeTemplate(ctx, d); err != nil {
			return sum, fmt.Errorf("template %q: %w", tj.ID, err)
		}
		sum.Templates++
	}

	for i, pj := range s.Pool {
		var err error
		switch {
		case pj.Template != "" && pj.ClientGroup == "":
			_, err = b.AddToPool(ctx, pj.Template)
		case pj.ClientGroup != "" && pj.Template == "":
			_, err = b.AddClientGroupToPool(ctx, pj.ClientGroup)
		default:
			err = fmt.Errorf("%w: pool entry needs exactly one of template or clientGroup", generic.ErrInvalidPayload)
		}
		if err != nil {
			return sum, fmt.Errorf("pool entry %d: %w", i, err)
		}
		sum.Pool++
	}

	for i, ej := range s.Encounters {
		n, err := f.place(ctx, b, ej, anchor)
		if err != nil {
			return sum, fmt.Errorf("encounter %d: %w", i, err)
		}
		sum.Encounters += n
	}

	if s.TimeFormat != "" {
		if err := b.SetTimeFormat(ctx, generic.TimeFormat(s.TimeFormat)); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// Draft resolves a template's atom references against the board library.
func (f *SeedFactory) Draft(b *bento.Board, tj TemplateJSON) (bento.Draft, error) {
	d := bento.Draft{
		ID:       tj.ID,
		Name:     tj.Name,
		Color:    tj.Color,
		Category: bento.Category(tj.Category),
	}
	lookup := func(kind bento.AtomKind, id string) (bento.Atom, error) {
		a, ok := b.Atom(kind, id)
		if !ok {
			return bento.Atom{}, fmt.Errorf("%s %q: %w", kind, id, generic.ErrNotFound)
		}
		return a, nil
	}

	for _, id := range tj.Staff {
		a, err := lookup(bento.KindStaff, id)
		if err != nil {
			return d, err
		}
		_ = d.Add(a)
	}
	for _, id := range tj.Clients {
		a, ok := b.Atom(bento.KindClient, id)
		if !ok {
			if a, ok = b.ClientGroup(id); !ok {
				return d, fmt.Errorf("client or client group %q: %w", id, generic.ErrNotFound)
			}
		}
		_ = d.Add(a)
	}
	if tj.Activity != "" {
		a, err := lookup(bento.KindActivity, tj.Activity)
		if err != nil {
			return d, err
		}
		_ = d.Add(a)
	}
	if tj.Location != "" {
		a, err := lookup(bento.KindLocation, tj.Location)
		if err != nil {
			return d, err
		}
		_ = d.Add(a)
	}
	switch {
	case tj.Duration.ID != "":
		a, err := lookup(bento.KindDuration, tj.Duration.ID)
		if err != nil {
			return d, err
		}
		_ = d.Add(a)
	case tj.Duration.Minutes > 0:
		_ = d.Add(bento.Atom{
			Kind:    bento.KindDuration,
			ID:      fmt.Sprintf("%dm", tj.Duration.Minutes),
			Minutes: tj.Duration.Minutes,
		})
	}
	return d, nil
}

// place creates one demo encounter plus its recurrences.
func (f *SeedFactory) place(ctx context.Context, b *bento.Board, ej EncounterJSON, anchor time.Time) (int, error) {
	start, err := f.startOf(ej, anchor)
	if err != nil {
		return 0, err
	}
	e, err := b.Place(ctx, ej.Template, start)
	if err != nil {
		return 0, err
	}
	n := 1
	if ej.Repeat != "" {
		copies, err := b.Repeat(ctx, e.ID, ej.Repeat)
		if err != nil {
			return n, err
		}
		n += len(copies)
	}
	if ej.Cancelled {
		if _, err := b.Cancel(ctx, e.ID); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (f *SeedFactory) startOf(ej EncounterJSON, anchor time.Time) (time.Time, error) {
	if ej.Start != "" {
		t, err := time.Parse(time.RFC3339, ej.Start)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: start %q", generic.ErrInvalidRange, ej.Start)
		}
		return t, nil
	}
	loc := f.Location
	if loc == nil {
		loc = anchor.Location()
	}
	base := generic.StartOfDay(anchor.In(loc)).AddDate(0, 0, ej.Day)
	clock := strings.TrimSpace(ej.At)
	if clock == "" {
		clock = "09:00"
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: at %q is not HH:MM", generic.ErrInvalidRange, ej.At)
	}
	return generic.AtMinute(base, hm.Hour()*60+hm.Minute()), nil
}
