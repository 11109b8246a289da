package usecase

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/xavierca1/leadbridge/internal/entity"
)

type LeadFilter struct {
	Search string
	Tag    entity.LeadTag
	Status entity.LeadStatus
}

// FilterLeads keeps leads whose name contains Search (ignoring case) or
// whose phone contains it verbatim, and that match Tag and Status when set.
func FilterLeads(leads []entity.Lead, f LeadFilter) []entity.Lead {
	search := strings.ToLower(f.Search)

	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		matchesSearch := strings.Contains(strings.ToLower(l.Name), search) || strings.Contains(l.Phone, f.Search)
		matchesTag := f.Tag == "" || l.Tag == f.Tag
		matchesStatus := f.Status == "" || l.Status == f.Status
		if matchesSearch && matchesTag && matchesStatus {
			out = append(out, l)
		}
	}
	return out
}

type LeadSortField string

const (
	LeadSortName      LeadSortField = "name"
	LeadSortDateAdded LeadSortField = "dateAdded"
)

func (f LeadSortField) IsValid() bool {
	return f == LeadSortName || f == LeadSortDateAdded
}

// SortLeads returns a sorted copy. Names are compared with case-insensitive
// collation for tag (e.g. language.English); dates chronologically with
// unparseable dates last. Equal keys keep their input order.
func SortLeads(leads []entity.Lead, field LeadSortField, ascending bool, tag language.Tag) []entity.Lead {
	out := slices.Clone(leads)

	var cmp func(a, b entity.Lead) int
	switch field {
	case LeadSortDateAdded:
		cmp = func(a, b entity.Lead) int { return compareDates(a.DateAdded, b.DateAdded) }
	default:
		coll := collate.New(tag, collate.IgnoreCase)
		cmp = func(a, b entity.Lead) int { return coll.CompareString(a.Name, b.Name) }
	}

	slices.SortStableFunc(out, func(a, b entity.Lead) int {
		if ascending {
			return cmp(a, b)
		}
		return cmp(b, a)
	})
	return out
}

func compareDates(a, b string) int {
	ta, errA := entity.ParseDate(a)
	tb, errB := entity.ParseDate(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return ta.Compare(tb)
}

type MeetingFilter struct {
	Type   entity.MeetingType
	Status entity.MeetingStatus
}

func FilterMeetings(meetings []entity.Meeting, f MeetingFilter) []entity.Meeting {
	out := make([]entity.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, m)
	}
	return out
}

// SortMeetings orders by type priority (BOM first, WG 3 last). Unknown types go last.
func SortMeetings(meetings []entity.Meeting) []entity.Meeting {
	out := slices.Clone(meetings)
	rank := func(t entity.MeetingType) int {
		if p := t.Priority(); p > 0 {
			return p
		}
		return len(entity.MeetingTypes) + 1
	}
	slices.SortStableFunc(out, func(a, b entity.Meeting) int {
		return rank(a.Type) - rank(b.Type)
	})
	return out
}

// FilterTasks keeps tasks whose completion equals *completed; nil keeps all.
func FilterTasks(tasks []entity.Task, completed *bool) []entity.Task {
	out := make([]entity.Task, 0, len(tasks))
	for _, t := range tasks {
		if completed == nil || t.Completed == *completed {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks puts incomplete tasks first, each group by ascending due date.
// Tasks whose due date does not parse go to the end of their group.
func SortTasks(tasks []entity.Task) []entity.Task {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b entity.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		da, okA := a.Due()
		db, okB := b.Due()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		return da.Compare(db)
	})
	return out
}
