// Package placeholder renders the degrade-gracefully pane shown for
// widget types with no registered renderer.
package placeholder

import (
	"fmt"

	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

// Render produces the unknown-widget-type pane.
func Render(w widget.Widget, _ int, th theme.Theme) []string {
	return []string{
		th.Widget.Placeholder.Render(fmt.Sprintf("unknown widget type %q", w.Type)),
		th.Widget.Faint.Render("widget " + w.ID),
	}
}
