package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tableflip.dev/dash/pkg/tui/events"
)

// Patch transforms the current cached value for a key into the value
// reflecting the user's intended change. It receives the full snapshot
// (nil when the key is unpopulated) and must return a freshly built
// value rather than mutating its input.
type Patch func(current any) (any, error)

// Commit performs the remote write backing an optimistic patch.
type Commit func(ctx context.Context) error

// Refetch reloads the authoritative value for a key after a successful
// commit.
type Refetch func(ctx context.Context, key string) (any, error)

// Outcome reports how a mutation settled. Err is the commit error; when
// set, the cache has already been restored to the pre-mutation snapshot.
type Outcome struct {
	ID  string
	Key string
	Err error
}

// Mutation is the caller's handle on an in-flight optimistic mutation.
type Mutation struct {
	ID   string
	Done <-chan Outcome
}

// Engine applies optimistic, reversible mutations against the cache.
//
// For an idle key the patched value is installed synchronously, before
// Apply returns, so the UI reflects the change with zero latency. The
// remote commit then runs asynchronously; on success the key is
// refetched to reconcile with server state, on failure the exact
// snapshot captured before the patch is restored.
//
// Mutations against the same key are serialized through a FIFO queue: a
// mutation arriving while a predecessor has not settled is deferred
// whole (patch and commit) until the predecessor resolves. This keeps
// rollback snapshots consistent — a failed commit can never clobber a
// later optimistic patch, because the later patch has not run yet.
type Engine struct {
	component events.ComponentID
	cache     *Cache
	refetch   Refetch

	mu   sync.Mutex
	keys map[string]*keyState
}

type keyState struct {
	busy    bool
	pending []*mutation
}

type mutation struct {
	id     string
	key    string
	patch  Patch
	commit Commit
	ctx    context.Context
	done   chan Outcome
}

// NewEngine builds an engine over the shared cache. refetch may be nil,
// in which case the optimistic value simply stands until the next poll.
func NewEngine(component events.ComponentID, c *Cache, refetch Refetch) *Engine {
	if component == "" {
		component = events.ComponentID("engine")
	}
	return &Engine{
		component: component,
		cache:     c,
		refetch:   refetch,
		keys:      make(map[string]*keyState),
	}
}

// Apply runs an optimistic mutation against key. The returned handle
// carries a correlation ID and a buffered channel that receives exactly
// one Outcome when the mutation settles. A MutationResolvedMsg with the
// same ID is also emitted on the cache event channel.
func (e *Engine) Apply(ctx context.Context, key string, patch Patch, commit Commit) (Mutation, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Mutation{}, errors.New("cache: mutation key required")
	}
	if patch == nil || commit == nil {
		return Mutation{}, errors.New("cache: mutation requires patch and commit")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	m := &mutation{
		id:     uuid.NewString(),
		key:    key,
		patch:  patch,
		commit: commit,
		ctx:    ctx,
		done:   make(chan Outcome, 1),
	}

	e.mu.Lock()
	ks := e.keys[key]
	if ks == nil {
		ks = &keyState{}
		e.keys[key] = ks
	}
	if ks.busy {
		ks.pending = append(ks.pending, m)
		e.mu.Unlock()
		return Mutation{ID: m.id, Done: m.done}, nil
	}
	ks.busy = true
	e.mu.Unlock()

	// Idle key: the patch installs before Apply returns.
	e.start(m)
	return Mutation{ID: m.id, Done: m.done}, nil
}

// InFlight reports whether key has an unsettled mutation.
func (e *Engine) InFlight(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ks := e.keys[key]
	return ks != nil && ks.busy
}

// start captures the snapshot, installs the patched value, and kicks off
// the commit. It runs on the caller's goroutine for the head mutation
// and on the settling goroutine for queued ones.
func (e *Engine) start(m *mutation) {
	snapshot, existed := e.cache.Get(m.key)

	next, err := m.patch(snapshot)
	if err != nil {
		e.settle(m, fmt.Errorf("cache: patch %s: %w", m.key, err))
		return
	}
	e.cache.Set(m.key, next)

	go func() {
		if err := m.commit(m.ctx); err != nil {
			// Restore the captured snapshot exactly, not a re-derived
			// inverse.
			if existed {
				e.cache.Set(m.key, snapshot)
			} else {
				e.cache.Delete(m.key)
			}
			e.settle(m, err)
			return
		}
		e.reconcile(m)
		e.settle(m, nil)
	}()
}

// reconcile replaces the provisional optimistic value with the
// authoritative server state. A refetch failure leaves the optimistic
// value standing; the next poll will converge.
func (e *Engine) reconcile(m *mutation) {
	if e.refetch == nil {
		return
	}
	v, err := e.refetch(m.ctx, m.key)
	if err != nil {
		e.cache.emit(events.DebugMsg{
			Component: e.component,
			Context:   "refetch " + m.key,
			Detail:    err.Error(),
		})
		return
	}
	e.cache.Set(m.key, v)
}

func (e *Engine) settle(m *mutation, err error) {
	m.done <- Outcome{ID: m.id, Key: m.key, Err: err}
	e.cache.emit(events.MutationResolvedMsg{
		Component: e.component,
		ID:        m.id,
		Key:       m.key,
		Err:       err,
	})

	e.mu.Lock()
	ks := e.keys[m.key]
	if ks == nil || len(ks.pending) == 0 {
		if ks != nil {
			ks.busy = false
		}
		e.mu.Unlock()
		return
	}
	next := ks.pending[0]
	ks.pending = ks.pending[1:]
	e.mu.Unlock()

	e.start(next)
}
