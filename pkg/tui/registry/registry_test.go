package registry

import (
	"encoding/json"
	"strings"
	"testing"

	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

func TestUnknownTypeFallsBackToPlaceholder(t *testing.T) {
	r := Default(theme.Default())

	w := widget.Widget{ID: "w-odd", Type: widget.Type("sparkline")}
	lines := r.Render(w, nil, 40)
	if len(lines) == 0 {
		t.Fatalf("placeholder rendered nothing")
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "sparkline") {
		t.Errorf("placeholder should name the unknown type: %q", joined)
	}
	if !strings.Contains(joined, "w-odd") {
		t.Errorf("placeholder should name the widget id: %q", joined)
	}
}

func TestDefaultCoversEveryWidgetType(t *testing.T) {
	r := Default(theme.Default())
	for _, wt := range widget.AllTypes() {
		if !r.Known(wt) {
			t.Errorf("no renderer registered for %q", wt)
		}
	}
}

func TestRenderDispatchesByType(t *testing.T) {
	r := New(func(w widget.Widget, _ json.RawMessage, _ int) []string {
		return []string{"fallback"}
	})
	r.Register(widget.TypeClock, func(w widget.Widget, _ json.RawMessage, _ int) []string {
		return []string{"clock for " + w.ID}
	})

	got := r.Render(widget.Widget{ID: "w-1", Type: widget.TypeClock}, nil, 40)
	if got[0] != "clock for w-1" {
		t.Fatalf("dispatched to the wrong renderer: %v", got)
	}
	got = r.Render(widget.Widget{ID: "w-2", Type: widget.TypeNews}, nil, 40)
	if got[0] != "fallback" {
		t.Fatalf("missing type should hit the fallback: %v", got)
	}
}

func TestRegisterIgnoresNil(t *testing.T) {
	r := New(func(widget.Widget, json.RawMessage, int) []string { return nil })
	r.Register(widget.TypeClock, nil)
	if r.Known(widget.TypeClock) {
		t.Fatalf("nil renderer should not register")
	}
}
