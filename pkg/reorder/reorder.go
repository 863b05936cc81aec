// Package reorder coordinates user-requested section moves against the
// remote service.
package reorder

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/tui/events"
)

// Coordinator accepts move-up/move-down requests on the authoritative
// section order, computes the resulting full ordering, and issues one
// bulk position write per move. Reordering is infrequent, so the local
// section cache is not patched optimistically; the write settles and the
// follow-up refetch reconciles.
//
// Successive moves are serialized: at most one write is in flight, and
// further moves are computed against the pending order (the order the
// in-flight write will produce) and coalesced into a single trailing
// write. Two rapid swaps therefore never race on stale indexes.
type Coordinator struct {
	component events.ComponentID
	svc       api.Service
	emit      func(tea.Msg)

	mu       sync.Mutex
	order    []section.Section
	inFlight bool
	queued   bool // a trailing write is wanted once the current one settles
	lastErr  error
}

// New builds a coordinator. emit may be nil for callers that only poll
// Pending/Order (the CLI path).
func New(component events.ComponentID, svc api.Service, emit func(tea.Msg)) *Coordinator {
	if component == "" {
		component = events.ComponentID("reorder")
	}
	if emit == nil {
		emit = func(tea.Msg) {}
	}
	return &Coordinator{
		component: component,
		svc:       svc,
		emit:      emit,
	}
}

// SetSections installs a freshly fetched section catalog. Ignored while
// a write is pending: the fetched order predates the queued moves and
// would reintroduce the stale-index race the queue exists to prevent.
func (c *Coordinator) SetSections(sections []section.Section) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight || c.queued {
		return
	}
	c.order = section.SortByPosition(sections)
}

// Order returns the current (possibly pending) section order.
func (c *Coordinator) Order() []section.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]section.Section(nil), c.order...)
}

// Pending reports whether a position write has not yet settled.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight || c.queued
}

// Err returns the most recent write failure, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// MoveUp swaps the section at index with its predecessor and schedules a
// position write. Index 0 is a silent no-op. Indexes refer to the full
// authoritative order, not the filtered visible order.
func (c *Coordinator) MoveUp(ctx context.Context, index int) bool {
	return c.move(ctx, index, index-1)
}

// MoveDown swaps the section at index with its successor and schedules a
// position write. The last index is a silent no-op.
func (c *Coordinator) MoveDown(ctx context.Context, index int) bool {
	return c.move(ctx, index, index+1)
}

// Swapped returns a copy of order with the sections at from and to
// exchanged. ok is false for out-of-range indexes (boundary no-ops).
func Swapped(order []section.Section, from, to int) ([]section.Section, bool) {
	if from < 0 || to < 0 || from >= len(order) || to >= len(order) {
		return nil, false
	}
	out := append([]section.Section(nil), order...)
	out[from], out[to] = out[to], out[from]
	return out, true
}

func (c *Coordinator) move(ctx context.Context, from, to int) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	if from < 0 || to < 0 || from >= len(c.order) || to >= len(c.order) {
		c.mu.Unlock()
		return false
	}
	c.order[from], c.order[to] = c.order[to], c.order[from]
	names := make([]string, len(c.order))
	for i, sec := range c.order {
		names[i] = sec.Name
	}
	if c.inFlight {
		// Coalesce: the trailing write snapshots the order at dispatch
		// time, so one write covers any number of queued moves.
		c.queued = true
		c.mu.Unlock()
		c.emit(events.SectionOrderMsg{Component: c.component, Order: names})
		return true
	}
	c.inFlight = true
	c.mu.Unlock()

	c.emit(events.SectionOrderMsg{Component: c.component, Order: names})
	go c.flush(ctx)
	return true
}

// flush writes the current pending order, looping while further moves
// arrived during the write. When the queue drains it emits a single
// ReorderSettledMsg so the owner can refetch the section catalog.
func (c *Coordinator) flush(ctx context.Context) {
	for {
		c.mu.Lock()
		c.queued = false
		placements := section.Placements(c.order)
		c.mu.Unlock()

		err := c.svc.SetSectionPositions(ctx, placements)

		c.mu.Lock()
		c.lastErr = err
		if c.queued {
			c.mu.Unlock()
			continue
		}
		c.inFlight = false
		c.mu.Unlock()

		c.emit(events.ReorderSettledMsg{Component: c.component, Err: err})
		return
	}
}
