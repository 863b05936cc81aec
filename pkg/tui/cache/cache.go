// Package cache holds the local cached view of remote responses: a
// query-key KV shared by every dashboard component, plus the optimistic
// mutation engine that patches it ahead of remote writes.
package cache

import (
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dash/pkg/tui/events"
)

// Well-known query keys. Per-widget data lives under widget.Widget.Key().
const (
	KeyWidgets  = "widgets"
	KeySections = "sections"
)

// Cache is the process-wide mapping from query key to the last-known
// value for that key. It is created once, passed by reference to every
// component that needs it, and lives for the process lifetime.
//
// Values are stored as opaque snapshots: writers must install freshly
// built values and readers must treat what they get back as immutable.
// All mutation funnels through Set, the mutation engine, or the reorder
// coordinator, so observers only ever see a complete snapshot — never a
// half-applied one.
type Cache struct {
	component events.ComponentID

	mu     sync.RWMutex
	values map[string]any

	eventCh chan tea.Msg
}

// New creates an empty cache that will emit events using the provided
// ComponentID (falls back to "cache" if empty).
func New(component events.ComponentID) *Cache {
	if component == "" {
		component = events.ComponentID("cache")
	}
	return &Cache{
		component: component,
		values:    make(map[string]any),
		eventCh:   make(chan tea.Msg, 64),
	}
}

// Events exposes the cache event channel for Bubble Tea subscriptions.
func (c *Cache) Events() <-chan tea.Msg {
	return c.eventCh
}

// Get returns the current value for key, if any.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Set installs a new value for key and emits a CacheUpdateMsg. Used by
// fetch and refetch completions; user-action writes go through the
// engine or the coordinator instead.
func (c *Cache) Set(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	c.emitUpdate(key)
}

// Delete drops a key. Mainly for widgets removed from the catalog.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.values, key)
	c.mu.Unlock()
	c.emitUpdate(key)
}

// Keys returns the current key set in no particular order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.values))
	for k := range c.values {
		out = append(out, k)
	}
	return out
}

func (c *Cache) emitUpdate(key string) {
	c.emit(events.CacheUpdateMsg{Component: c.component, Key: key})
}

// emit never blocks; if nobody is draining the channel the event is
// dropped rather than wedging the caller.
func (c *Cache) emit(msg tea.Msg) {
	select {
	case c.eventCh <- msg:
	default:
	}
}
