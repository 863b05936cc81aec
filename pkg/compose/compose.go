// Package compose assembles widgets into ordered sections for display.
package compose

import (
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/widget"
)

// Grouping is the result of composing a widget collection against a
// section catalog. Every section from the input is present in ByName,
// including sections with no widgets, so reorder operations can index
// the full catalog. Display code should use Visible to skip empties.
type Grouping struct {
	// Order is the full section catalog sorted by position.
	Order []section.Section
	// ByName maps section name to that section's widgets, in the
	// insertion order of the composed widget collection.
	ByName map[string][]widget.Widget
	// Unmapped collects widgets whose type has no section mapping, or
	// whose mapped section is absent from the catalog. They appear in
	// no section list; callers may surface them for diagnostics.
	Unmapped []widget.Widget
}

// Compose groups widgets into their sections. It is a pure function of
// its inputs and recomputes fully on every call: either collection can
// change independently between calls, so no incremental state is kept.
// Widget order within a section follows the input slice; callers that
// need a stable layout must pass a stably ordered widget collection.
func Compose(widgets []widget.Widget, sections []section.Section) Grouping {
	g := Grouping{
		Order:  section.SortByPosition(sections),
		ByName: make(map[string][]widget.Widget, len(sections)),
	}
	for _, sec := range g.Order {
		g.ByName[sec.Name] = []widget.Widget{}
	}
	for _, w := range widgets {
		name, ok := section.ForType(w.Type)
		if !ok {
			g.Unmapped = append(g.Unmapped, w)
			continue
		}
		if _, present := g.ByName[name]; !present {
			g.Unmapped = append(g.Unmapped, w)
			continue
		}
		g.ByName[name] = append(g.ByName[name], w)
	}
	return g
}

// Visible returns the sections that should be rendered: enabled sections
// with at least one widget, in catalog order. Empty or disabled sections
// stay in Order so reorder index math still sees the whole catalog.
func (g Grouping) Visible() []section.Section {
	out := make([]section.Section, 0, len(g.Order))
	for _, sec := range g.Order {
		if !sec.Enabled {
			continue
		}
		if len(g.ByName[sec.Name]) == 0 {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// Widgets returns the widget list for a section name. The second return
// reports whether the section exists in the grouping at all.
func (g Grouping) Widgets(name string) ([]widget.Widget, bool) {
	ws, ok := g.ByName[name]
	return ws, ok
}
