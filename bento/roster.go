package bento

// =============================================================================
// EFFECTIVE FIELDS - Override if present, else template
// =============================================================================

// EffectiveClients returns overrides.clients ?? template.clients.
// tpl may be nil when the template no longer resolves.
func EffectiveClients(e ScheduledEncounter, tpl *Template) []Atom {
	if e.Overrides.Clients != nil {
		return cloneAtoms(e.Overrides.Clients)
	}
	if tpl != nil {
		return cloneAtoms(tpl.Clients)
	}
	return nil
}

// EffectiveStaff returns overrides.staff ?? template.staff.
func EffectiveStaff(e ScheduledEncounter, tpl *Template) []Atom {
	if e.Overrides.Staff != nil {
		return cloneAtoms(e.Overrides.Staff)
	}
	if tpl != nil {
		return cloneAtoms(tpl.Staff)
	}
	return nil
}

// EffectiveLocation returns overrides.location ?? template.location.
func EffectiveLocation(e ScheduledEncounter, tpl *Template) *Atom {
	if e.Overrides.Location != nil {
		return cloneAtomPtr(e.Overrides.Location)
	}
	if tpl != nil {
		return cloneAtomPtr(tpl.Location)
	}
	return nil
}

// EffectiveActivity returns overrides.activity ?? template.activity.
func EffectiveActivity(e ScheduledEncounter, tpl *Template) *Atom {
	if e.Overrides.Activity != nil {
		return cloneAtomPtr(e.Overrides.Activity)
	}
	if tpl != nil {
		return cloneAtomPtr(tpl.Activity)
	}
	return nil
}

// CapacityReport compares an encounter's effective roster to its template.
type CapacityReport struct {
	Headcount int      `json:"headcount"`
	Capacity  Capacity `json:"capacity"`
	Over      bool     `json:"over"`
}

// CapacityFor reports the effective headcount against template capacity.
// Without a template the capacity is the headcount itself.
func CapacityFor(e ScheduledEncounter, tpl *Template) CapacityReport {
	n := Headcount(EffectiveClients(e, tpl))
	c := Capacity{Min: n, Max: n}
	if tpl != nil {
		c = tpl.Capacity
	}
	return CapacityReport{Headcount: n, Capacity: c, Over: n > c.Max}
}

// =============================================================================
// STAFF FILTER
// =============================================================================

// MatchesStaff reports whether any effective staff member is selected.
// An empty selection matches everything.
func MatchesStaff(e ScheduledEncounter, tpl *Template, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	for _, s := range EffectiveStaff(e, tpl) {
		if want[s.ID] {
			return true
		}
	}
	return false
}
