package domain

import (
	"sort"
	"time"
)

// InvalidDateGroup is the label for documents whose procedure date is
// absent or unparseable. The group always sorts last.
const InvalidDateGroup = "Invalid Date"

// MonthGroup is a derived view: one display month and its documents.
// Never persisted, always recomputed from the current document list.
type MonthGroup struct {
	Month     string     `json:"month"`
	Documents []Document `json:"documents"`
}

var procedureDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseProcedureDate parses the backend's ISO date string. The backend is
// not strict about whether a time component is present.
func ParseProcedureDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range procedureDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GroupByMonth buckets documents by procedure month, newest month first,
// documents within a month newest first. Documents without a parseable
// date land in the InvalidDateGroup bucket, which is always last
// regardless of how the month labels would sort.
func GroupByMonth(docs []Document) []MonthGroup {
	type bucket struct {
		year    int
		month   time.Month
		valid   bool
		members []Document
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)

	for _, doc := range docs {
		key := InvalidDateGroup
		parsed, ok := ParseProcedureDate(doc.ProcedureDate)
		if ok {
			key = parsed.Format("January 2006")
		}
		b, exists := buckets[key]
		if !exists {
			b = &bucket{valid: ok}
			if ok {
				b.year = parsed.Year()
				b.month = parsed.Month()
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.members = append(b.members, doc)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := buckets[order[i]], buckets[order[j]]
		if a.valid != b.valid {
			return a.valid
		}
		if !a.valid {
			return false
		}
		if a.year != b.year {
			return a.year > b.year
		}
		return a.month > b.month
	})

	groups := make([]MonthGroup, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		sort.SliceStable(b.members, func(i, j int) bool {
			di, okI := ParseProcedureDate(b.members[i].ProcedureDate)
			dj, okJ := ParseProcedureDate(b.members[j].ProcedureDate)
			if okI != okJ {
				return okI
			}
			return di.After(dj)
		})
		groups = append(groups, MonthGroup{Month: key, Documents: b.members})
	}
	return groups
}
