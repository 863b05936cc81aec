// Package events defines the typed Bubble Tea messages exchanged between
// dashboard components, plus tea.Cmd wrappers for emitting them.
package events

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// SnapshotMsg announces that the widgets/sections catalog was (re)loaded.
type SnapshotMsg struct {
	Component ComponentID
	Stale     bool // true when served from the offline snapshot store
	Err       error
}

// Describe renders the snapshot event in a human-friendly format for logs.
func (m SnapshotMsg) Describe() string {
	return fmt.Sprintf(`stale:%t err:%v`, m.Stale, m.Err)
}

// WidgetDataMsg carries one widget's freshly fetched payload, or the
// failure scoped to that widget.
type WidgetDataMsg struct {
	Component ComponentID
	WidgetID  string
	Data      json.RawMessage
	Err       error
}

// Describe renders the fetch result for logs.
func (m WidgetDataMsg) Describe() string {
	return fmt.Sprintf(`widget:%q bytes:%d err:%v`, m.WidgetID, len(m.Data), m.Err)
}

// CacheUpdateMsg fires whenever a cache key receives a new value, from
// any write path (fetch completion, refetch, optimistic patch, rollback).
type CacheUpdateMsg struct {
	Component ComponentID
	Key       string
}

// Describe renders the cache update for logs.
func (m CacheUpdateMsg) Describe() string {
	return fmt.Sprintf(`key:%q`, m.Key)
}

// MutationResolvedMsg reports that an optimistic mutation settled.
// Err is nil on commit success; on failure the cache has already been
// rolled back to its pre-mutation snapshot.
type MutationResolvedMsg struct {
	Component ComponentID
	ID        string // correlation token returned by Engine.Apply
	Key       string
	Err       error
}

// Describe renders the mutation outcome for logs.
func (m MutationResolvedMsg) Describe() string {
	return fmt.Sprintf(`id:%q key:%q err:%v`, m.ID, m.Key, m.Err)
}

// ReorderSettledMsg reports that the reorder write queue drained. Err
// carries the last write failure, if any; the authoritative order comes
// from the follow-up sections refetch either way.
type ReorderSettledMsg struct {
	Component ComponentID
	Err       error
}

// Describe renders the reorder outcome for logs.
func (m ReorderSettledMsg) Describe() string {
	return fmt.Sprintf(`err:%v`, m.Err)
}

// SectionOrderMsg announces a new pending section order so views can
// re-sort immediately while the write is still in flight.
type SectionOrderMsg struct {
	Component ComponentID
	Order     []string
}

// Describe renders the order change for logs.
func (m SectionOrderMsg) Describe() string {
	return fmt.Sprintf(`order:%d`, len(m.Order))
}

// UnmappedWidgetsMsg surfaces widgets the composer could not place.
type UnmappedWidgetsMsg struct {
	Component ComponentID
	WidgetIDs []string
}

// Describe renders the diagnostic for logs.
func (m UnmappedWidgetsMsg) Describe() string {
	return fmt.Sprintf(`unmapped:%d`, len(m.WidgetIDs))
}

// DebugMsg captures optional diagnostic notes emitted by components.
type DebugMsg struct {
	Component ComponentID
	Context   string
	Detail    string
}

// Describe renders the debug message in a human-readable format.
func (m DebugMsg) Describe() string {
	return fmt.Sprintf(`component:%q context:%q detail:%q`, m.Component, m.Context, m.Detail)
}

// DebugCmd wraps DebugMsg creation in a tea.Cmd helper.
func DebugCmd(component ComponentID, context, detail string) tea.Cmd {
	return func() tea.Msg {
		return DebugMsg{Component: component, Context: context, Detail: detail}
	}
}
