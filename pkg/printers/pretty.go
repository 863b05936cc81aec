// Package printers renders CLI output for the list commands.
package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/dash/pkg/compose"
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/timeutil"
	"tableflip.dev/dash/pkg/widget"
)

// PrettyPrint writes human-oriented tables to stdout.
type PrettyPrint struct {
	ShowID bool
}

// Title prints a bold underlined heading.
func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Println(title)
}

// Widgets prints the widget catalog.
func (pp *PrettyPrint) Widgets(widgets []widget.Widget) {
	if len(widgets) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Println(" none")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 50
	if pp.ShowID {
		table.AddRow("ID", "TYPE", "SECTION", "REFRESH", "ENABLED")
	} else {
		table.AddRow("TYPE", "SECTION", "REFRESH", "ENABLED")
	}
	for _, w := range widgets {
		secName, ok := section.ForType(w.Type)
		if !ok {
			secName = color.RedString("unmapped")
		}
		refresh := timeutil.FormatInterval(w.RefreshEvery())
		if pp.ShowID {
			table.AddRow(w.ID, string(w.Type), secName, refresh, fmt.Sprintf("%t", w.Enabled))
		} else {
			table.AddRow(string(w.Type), secName, refresh, fmt.Sprintf("%t", w.Enabled))
		}
	}
	fmt.Fprintln(color.Output, table)
}

// Sections prints the section catalog in display order, marking the
// widget count each section composed.
func (pp *PrettyPrint) Sections(g compose.Grouping) {
	table := uitable.New()
	table.AddRow("POS", "NAME", "TITLE", "WIDGETS", "ENABLED")
	for i, sec := range g.Order {
		count := len(g.ByName[sec.Name])
		table.AddRow(fmt.Sprintf("%d", i), sec.Name, sec.Title, fmt.Sprintf("%d", count), fmt.Sprintf("%t", sec.Enabled))
	}
	fmt.Fprintln(color.Output, table)

	if len(g.Unmapped) > 0 {
		warn := color.New(color.FgHiYellow)
		ids := make([]string, 0, len(g.Unmapped))
		for _, w := range g.Unmapped {
			ids = append(ids, fmt.Sprintf("%s (%s)", w.ID, w.Type))
		}
		_, _ = warn.Printf("unmapped widgets: %s\n", strings.Join(ids, ", "))
	}
}
