package feed

import (
	"encoding/json"
	"strings"
	"testing"

	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

func TestRendererListsHeadlines(t *testing.T) {
	render := Renderer(theme.Default())
	data := json.RawMessage(`{"items":[
		{"title":"First headline","source":"wire"},
		{"title":"Second headline"}
	]}`)
	lines := render(widget.Widget{Type: widget.TypeNews}, data, 60)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "• ") {
		t.Fatalf("headlines not bulleted:\n%s", joined)
	}
	if !strings.Contains(joined, "First headline") || !strings.Contains(joined, "Second headline") {
		t.Fatalf("headlines missing:\n%s", joined)
	}
	if !strings.Contains(joined, "wire") {
		t.Fatalf("source line missing:\n%s", joined)
	}
}

func TestRendererHonorsLimitOption(t *testing.T) {
	render := Renderer(theme.Default())
	data := json.RawMessage(`{"items":[
		{"title":"one"},{"title":"two"},{"title":"three"}
	]}`)
	w := widget.Widget{Type: widget.TypeNews, Config: map[string]string{"limit": "2"}}
	lines := render(w, data, 60)
	joined := strings.Join(lines, "\n")
	if strings.Contains(joined, "three") {
		t.Fatalf("limit not applied:\n%s", joined)
	}
	if !strings.Contains(joined, "one") || !strings.Contains(joined, "two") {
		t.Fatalf("limited headlines missing:\n%s", joined)
	}
}

func TestRendererWrapsLongTitles(t *testing.T) {
	render := Renderer(theme.Default())
	data := json.RawMessage(`{"items":[{"title":"a very long headline that cannot possibly fit on one narrow line"}]}`)
	lines := render(widget.Widget{Type: widget.TypeNews}, data, 24)
	if len(lines) < 2 {
		t.Fatalf("long title not wrapped: %v", lines)
	}
	if !strings.HasPrefix(lines[0], "• ") {
		t.Fatalf("first line should carry the bullet: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  ") {
		t.Fatalf("continuation should be indented: %q", lines[1])
	}
}

func TestRendererEmptyStates(t *testing.T) {
	render := Renderer(theme.Default())
	w := widget.Widget{Type: widget.TypeNews}

	lines := render(w, nil, 60)
	if len(lines) != 1 || !strings.Contains(lines[0], "loading") {
		t.Fatalf("nil data: %v", lines)
	}
	lines = render(w, json.RawMessage(`{"items":[]}`), 60)
	if len(lines) != 1 || !strings.Contains(lines[0], "no headlines") {
		t.Fatalf("empty items: %v", lines)
	}
	lines = render(w, json.RawMessage(`{broken`), 60)
	if len(lines) != 1 || !strings.Contains(lines[0], "payload") {
		t.Fatalf("broken payload: %v", lines)
	}
}
