// Package registry maps widget types to the renderers responsible for
// them.
package registry

import (
	"encoding/json"

	"tableflip.dev/dash/pkg/tui/components/feed"
	"tableflip.dev/dash/pkg/tui/components/habittracker"
	"tableflip.dev/dash/pkg/tui/components/metric"
	"tableflip.dev/dash/pkg/tui/components/placeholder"
	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

// RenderFunc renders a widget's latest payload into display lines.
// data is nil until the widget's first fetch completes.
type RenderFunc func(w widget.Widget, data json.RawMessage, width int) []string

// Registry is a static lookup from widget type to renderer. Types
// without a registered renderer fall back to a placeholder so an
// unrecognized widget never blocks the rest of the dashboard.
type Registry struct {
	renderers map[widget.Type]RenderFunc
	fallback  RenderFunc
}

// New returns an empty registry with the given fallback.
func New(fallback RenderFunc) *Registry {
	return &Registry{
		renderers: make(map[widget.Type]RenderFunc),
		fallback:  fallback,
	}
}

// Register installs the renderer for a widget type.
func (r *Registry) Register(t widget.Type, fn RenderFunc) {
	if fn == nil {
		return
	}
	r.renderers[t] = fn
}

// Known reports whether the widget type has a registered renderer.
func (r *Registry) Known(t widget.Type) bool {
	_, ok := r.renderers[t]
	return ok
}

// Render dispatches to the renderer for the widget's type, or the
// fallback placeholder for unknown types.
func (r *Registry) Render(w widget.Widget, data json.RawMessage, width int) []string {
	if fn, ok := r.renderers[w.Type]; ok {
		return fn(w, data, width)
	}
	return r.fallback(w, data, width)
}

// Default wires the built-in renderer set against the provided theme.
func Default(th theme.Theme) *Registry {
	r := New(func(w widget.Widget, _ json.RawMessage, width int) []string {
		return placeholder.Render(w, width, th)
	})
	r.Register(widget.TypeWeather, metric.Renderer(metric.DecodeWeather, th))
	r.Register(widget.TypeExchangeRate, metric.Renderer(metric.DecodeExchangeRate, th))
	r.Register(widget.TypeMarket, metric.Renderer(metric.DecodeMarket, th))
	r.Register(widget.TypeClock, metric.Renderer(metric.DecodeClock, th))
	r.Register(widget.TypeNews, feed.Renderer(th))
	r.Register(widget.TypeHabitTracking, habittracker.Renderer(th))
	return r
}
