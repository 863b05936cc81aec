// Package poller refreshes each mounted widget's data on its own cadence.
package poller

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/tui/cache"
	"tableflip.dev/dash/pkg/tui/events"
	"tableflip.dev/dash/pkg/widget"
)

// Poller runs one lightweight task per mounted widget, each with its own
// cancellation tied to that widget's lifetime. Widgets poll
// independently: a slow or failing fetch delays nobody but its own
// widget.
type Poller struct {
	component events.ComponentID
	svc       api.Service
	cache     *cache.Cache
	emit      func(tea.Msg)

	mu        sync.Mutex
	instances map[string]*instance
}

type instance struct {
	cancel context.CancelFunc
	kick   chan struct{}
}

// New builds a poller that installs fetched payloads into the shared
// cache and reports per-widget results through emit.
func New(component events.ComponentID, svc api.Service, c *cache.Cache, emit func(tea.Msg)) *Poller {
	if component == "" {
		component = events.ComponentID("poller")
	}
	if emit == nil {
		emit = func(tea.Msg) {}
	}
	return &Poller{
		component: component,
		svc:       svc,
		cache:     c,
		emit:      emit,
		instances: make(map[string]*instance),
	}
}

// Mount starts polling for the widget. Mounting an already-mounted
// widget restarts its task (picking up a changed refresh interval).
// The first fetch fires immediately.
func (p *Poller) Mount(ctx context.Context, w widget.Widget) {
	if w.ID == "" {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	p.Unmount(w.ID)

	ctx, cancel := context.WithCancel(ctx)
	inst := &instance{cancel: cancel, kick: make(chan struct{}, 1)}

	p.mu.Lock()
	p.instances[w.ID] = inst
	p.mu.Unlock()

	go p.run(ctx, w, inst.kick)
}

// Unmount stops polling for the widget id. The widget's cache entry is
// left in place so a remount paints instantly.
func (p *Poller) Unmount(id string) {
	p.mu.Lock()
	inst, ok := p.instances[id]
	if ok {
		delete(p.instances, id)
	}
	p.mu.Unlock()
	if ok {
		inst.cancel()
	}
}

// Refresh forces an immediate fetch for the widget id, outside its
// normal cadence. No-op when the widget is not mounted.
func (p *Poller) Refresh(id string) {
	p.mu.Lock()
	inst, ok := p.instances[id]
	p.mu.Unlock()
	if !ok {
		return
	}
	select {
	case inst.kick <- struct{}{}:
	default:
	}
}

// Shutdown cancels every widget task.
func (p *Poller) Shutdown() {
	p.mu.Lock()
	instances := p.instances
	p.instances = make(map[string]*instance)
	p.mu.Unlock()
	for _, inst := range instances {
		inst.cancel()
	}
}

func (p *Poller) run(ctx context.Context, w widget.Widget, kick <-chan struct{}) {
	ticker := time.NewTicker(w.RefreshEvery())
	defer ticker.Stop()

	p.fetch(ctx, w)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, w)
		case <-kick:
			p.fetch(ctx, w)
		}
	}
}

// fetch loads the widget's payload. Success installs the value in the
// cache; failure leaves any stale value standing so the widget keeps
// rendering its last-known data alongside the error.
func (p *Poller) fetch(ctx context.Context, w widget.Widget) {
	data, err := p.svc.WidgetData(ctx, w.ID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.emit(events.WidgetDataMsg{Component: p.component, WidgetID: w.ID, Err: err})
		return
	}
	p.cache.Set(w.Key(), data)
	p.emit(events.WidgetDataMsg{Component: p.component, WidgetID: w.ID, Data: data})
}
