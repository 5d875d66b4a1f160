package bento

// =============================================================================
// POOL - Staging area of draggable references
// =============================================================================

type PoolKind string

const (
	PoolTemplate    PoolKind = "template"
	PoolClientGroup PoolKind = "client-group"
)

// QuickInfo is a denormalized summary kept in sync with the source template.
type QuickInfo struct {
	StaffInitials []string `json:"staffInitials"`
	ActivityCode  string   `json:"activityCode"`
	ClientCount   int      `json:"clientCount"`
	DurationLabel string   `json:"durationLabel"`
}

// PoolEntry references either a full template or a bare client group.
// Removing an entry never removes what it references.
type PoolEntry struct {
	ID            string    `json:"id"`
	Kind          PoolKind  `json:"kind"`
	TemplateID    string    `json:"templateId,omitempty"`
	ClientGroupID string    `json:"clientGroupId,omitempty"`
	Name          string    `json:"name"`
	Color         string    `json:"color"`
	QuickInfo     QuickInfo `json:"quickInfo"`
}

func quickInfoFor(t Template) QuickInfo {
	qi := QuickInfo{
		StaffInitials: make([]string, 0, len(t.Staff)),
		ClientCount:   t.Headcount(),
	}
	for _, s := range t.Staff {
		in := s.Initials
		if in == "" {
			in = initials(s.Name)
		}
		qi.StaffInitials = append(qi.StaffInitials, in)
	}
	if t.Activity != nil {
		qi.ActivityCode = t.Activity.Code
	}
	if t.Duration != nil {
		qi.DurationLabel = t.Duration.DurationLabel()
	}
	return qi
}

func quickInfoForGroup(g Atom) QuickInfo {
	return QuickInfo{StaffInitials: []string{}, ClientCount: g.Headcount()}
}

// initials takes the first letter of each word: "Dana Reyes" -> "DR".
func initials(name string) string {
	var out []rune
	start := true
	for _, r := range name {
		if r == ' ' || r == '-' {
			start = true
			continue
		}
		if start {
			out = append(out, r)
			start = false
		}
	}
	return string(out)
}

func (p PoolEntry) clone() PoolEntry {
	p.QuickInfo.StaffInitials = append([]string{}, p.QuickInfo.StaffInitials...)
	return p
}
