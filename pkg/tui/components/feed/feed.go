// Package feed renders headline-list widgets (news).
package feed

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

// Item is one feed entry.
type Item struct {
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Payload is the news widget data response.
type Payload struct {
	Items []Item `json:"items"`
}

// Renderer returns the registry render function for feed widgets. The
// widget's "limit" option caps the number of headlines (default 5).
func Renderer(th theme.Theme) func(widget.Widget, json.RawMessage, int) []string {
	return func(w widget.Widget, data json.RawMessage, width int) []string {
		if len(data) == 0 {
			return []string{th.Widget.Faint.Render("loading…")}
		}
		var p Payload
		if err := json.Unmarshal(data, &p); err != nil {
			return []string{th.Widget.Error.Render(fmt.Sprintf("feed payload: %v", err))}
		}
		limit := w.IntOption("limit", 5)
		if limit > 0 && len(p.Items) > limit {
			p.Items = p.Items[:limit]
		}
		if len(p.Items) == 0 {
			return []string{th.Widget.Faint.Render("no headlines")}
		}
		if width < 16 {
			width = 16
		}
		var lines []string
		for _, item := range p.Items {
			wrapped := wordwrap.String(item.Title, width-2)
			for i, line := range strings.Split(wrapped, "\n") {
				prefix := "  "
				if i == 0 {
					prefix = "• "
				}
				lines = append(lines, prefix+th.Widget.Body.Render(line))
			}
			if item.Source != "" {
				lines = append(lines, "  "+th.Widget.Faint.Render(item.Source))
			}
		}
		return lines
	}
}
