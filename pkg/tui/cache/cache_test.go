package cache

import (
	"testing"

	"tableflip.dev/dash/pkg/tui/events"
)

func TestSetGetDelete(t *testing.T) {
	c := New("test")

	if _, ok := c.Get("widgets"); ok {
		t.Fatalf("empty cache returned a value")
	}

	c.Set(KeyWidgets, []string{"w-1"})
	v, ok := c.Get(KeyWidgets)
	if !ok {
		t.Fatalf("Set value not readable")
	}
	if got := v.([]string); len(got) != 1 || got[0] != "w-1" {
		t.Fatalf("Get = %+v", got)
	}

	c.Delete(KeyWidgets)
	if _, ok := c.Get(KeyWidgets); ok {
		t.Fatalf("Delete left the value behind")
	}
}

func TestSetIgnoresBlankKeys(t *testing.T) {
	c := New("test")
	c.Set("  ", "junk")
	if keys := c.Keys(); len(keys) != 0 {
		t.Fatalf("blank key stored: %v", keys)
	}
}

func TestSetEmitsCacheUpdate(t *testing.T) {
	c := New("test")
	c.Set("widget:w-1", "data")

	select {
	case msg := <-c.Events():
		upd, ok := msg.(events.CacheUpdateMsg)
		if !ok {
			t.Fatalf("unexpected event type %T", msg)
		}
		if upd.Key != "widget:w-1" || upd.Component != "test" {
			t.Fatalf("event = %+v", upd)
		}
	default:
		t.Fatalf("Set emitted no event")
	}
}

func TestEmitDropsWhenChannelFull(t *testing.T) {
	c := New("test")
	// Nobody draining: fill the buffer well past capacity. Set must not
	// block.
	for i := 0; i < 200; i++ {
		c.Set("k", i)
	}
	if v, _ := c.Get("k"); v.(int) != 199 {
		t.Fatalf("last write lost: %v", v)
	}
}
