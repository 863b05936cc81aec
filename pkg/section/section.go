// Package section defines the orderable groupings widgets are displayed
// under, and the static mapping from widget types to section names.
package section

import (
	"sort"
	"strings"

	"tableflip.dev/dash/pkg/widget"
)

// Section is a named, orderable grouping of widgets. The catalog of
// sections is fixed by the service; only their order is user-mutable.
type Section struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Enabled  bool   `json:"enabled"`
}

// Placement is one element of a bulk position write.
type Placement struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// forType maps every widget type to the section it belongs to. Every
// type known to the renderer registry must have an entry here; widgets
// whose type is missing are reported as unmapped by the composer.
var forType = map[widget.Type]string{
	widget.TypeWeather:       "conditions",
	widget.TypeClock:         "conditions",
	widget.TypeExchangeRate:  "finance",
	widget.TypeMarket:        "finance",
	widget.TypeNews:          "reading",
	widget.TypeHabitTracking: "habits",
}

// ForType returns the section name owning the given widget type.
func ForType(t widget.Type) (string, bool) {
	name, ok := forType[t]
	return name, ok
}

// SortByPosition orders sections by their position field, breaking ties
// by name so the result is deterministic. The input is not modified.
func SortByPosition(sections []Section) []Section {
	out := append([]Section(nil), sections...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position == out[j].Position {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// Placements renders the 0-based order of the provided section list as a
// bulk position write covering every section.
func Placements(ordered []Section) []Placement {
	out := make([]Placement, 0, len(ordered))
	for i, sec := range ordered {
		out = append(out, Placement{Name: sec.Name, Position: i})
	}
	return out
}

// Find returns the index of the named section, or -1.
func Find(sections []Section, name string) int {
	for i, sec := range sections {
		if strings.EqualFold(sec.Name, name) {
			return i
		}
	}
	return -1
}
