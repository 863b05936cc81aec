package poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dash/pkg/api/apitest"
	"tableflip.dev/dash/pkg/tui/cache"
	"tableflip.dev/dash/pkg/tui/events"
	"tableflip.dev/dash/pkg/widget"
)

func collector() (func(tea.Msg), <-chan tea.Msg) {
	ch := make(chan tea.Msg, 32)
	return func(msg tea.Msg) { ch <- msg }, ch
}

func waitData(t *testing.T, ch <-chan tea.Msg, id string) events.WidgetDataMsg {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-ch:
			if data, ok := msg.(events.WidgetDataMsg); ok && data.WidgetID == id {
				return data
			}
		case <-deadline:
			t.Fatalf("no data message for %s", id)
		}
	}
}

func TestMountFetchesImmediately(t *testing.T) {
	svc := &apitest.Fake{
		WidgetDataFn: func(ctx context.Context, id string) (json.RawMessage, error) {
			return json.RawMessage(`{"temp":12}`), nil
		},
	}
	c := cache.New("test")
	emit, ch := collector()
	p := New("poller", svc, c, emit)
	defer p.Shutdown()

	w := widget.Widget{ID: "w-weather", Type: widget.TypeWeather}
	p.Mount(context.Background(), w)

	msg := waitData(t, ch, "w-weather")
	if msg.Err != nil {
		t.Fatalf("first fetch failed: %v", msg.Err)
	}
	v, ok := c.Get(w.Key())
	if !ok {
		t.Fatalf("fetched payload not cached")
	}
	if string(v.(json.RawMessage)) != `{"temp":12}` {
		t.Fatalf("cached payload = %s", v)
	}
}

func TestFetchFailureLeavesStaleValue(t *testing.T) {
	svc := &apitest.Fake{
		WidgetDataFn: func(ctx context.Context, id string) (json.RawMessage, error) {
			return nil, errors.New("upstream 502")
		},
	}
	c := cache.New("test")
	w := widget.Widget{ID: "w-news", Type: widget.TypeNews}
	c.Set(w.Key(), json.RawMessage(`{"items":[]}`))

	emit, ch := collector()
	p := New("poller", svc, c, emit)
	defer p.Shutdown()

	p.Mount(context.Background(), w)
	msg := waitData(t, ch, "w-news")
	if msg.Err == nil {
		t.Fatalf("expected a fetch error")
	}
	// Stale data keeps rendering alongside the error.
	if v, ok := c.Get(w.Key()); !ok || string(v.(json.RawMessage)) != `{"items":[]}` {
		t.Fatalf("stale value lost: %v", v)
	}
}

func TestRefreshForcesFetchOutsideCadence(t *testing.T) {
	svc := &apitest.Fake{
		WidgetDataFn: func(ctx context.Context, id string) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
	}
	c := cache.New("test")
	emit, ch := collector()
	p := New("poller", svc, c, emit)
	defer p.Shutdown()

	// 300s cadence: the second message can only come from Refresh.
	w := widget.Widget{ID: "w-fx", Type: widget.TypeExchangeRate, Refresh: 300}
	p.Mount(context.Background(), w)
	waitData(t, ch, "w-fx")

	p.Refresh("w-fx")
	waitData(t, ch, "w-fx")

	if calls := svc.DataCalls(); len(calls) < 2 {
		t.Fatalf("expected at least 2 fetches, got %d", len(calls))
	}
}

func TestUnmountStopsPolling(t *testing.T) {
	svc := &apitest.Fake{
		WidgetDataFn: func(ctx context.Context, id string) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		},
	}
	c := cache.New("test")
	emit, ch := collector()
	p := New("poller", svc, c, emit)

	w := widget.Widget{ID: "w-clock", Type: widget.TypeClock}
	p.Mount(context.Background(), w)
	waitData(t, ch, "w-clock")

	p.Unmount("w-clock")
	// Refresh after unmount is a no-op.
	p.Refresh("w-clock")

	select {
	case msg := <-ch:
		if data, ok := msg.(events.WidgetDataMsg); ok && data.WidgetID == "w-clock" {
			t.Fatalf("unmounted widget still polling")
		}
	case <-time.After(150 * time.Millisecond):
	}

	// Cache entry survives for instant remount paint.
	if _, ok := c.Get(w.Key()); !ok {
		t.Fatalf("unmount dropped the cache entry")
	}
}

func TestSlowWidgetDoesNotDelayOthers(t *testing.T) {
	block := make(chan struct{})
	svc := &apitest.Fake{
		WidgetDataFn: func(ctx context.Context, id string) (json.RawMessage, error) {
			if id == "w-slow" {
				select {
				case <-block:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return json.RawMessage(`{}`), nil
		},
	}
	c := cache.New("test")
	emit, ch := collector()
	p := New("poller", svc, c, emit)
	defer p.Shutdown()
	defer close(block)

	p.Mount(context.Background(), widget.Widget{ID: "w-slow", Type: widget.TypeNews})
	p.Mount(context.Background(), widget.Widget{ID: "w-fast", Type: widget.TypeClock})

	msg := waitData(t, ch, "w-fast")
	if msg.Err != nil {
		t.Fatalf("fast widget blocked behind slow one: %v", msg.Err)
	}
}
