// Package apitest provides a configurable in-memory Service for tests.
package apitest

import (
	"context"
	"encoding/json"
	"sync"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/habit"
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/widget"
)

// Fake implements api.Service. Unset function fields return zero values.
// Write calls are recorded and safe for concurrent use.
type Fake struct {
	WidgetsFn             func(ctx context.Context) ([]widget.Widget, error)
	SectionsFn            func(ctx context.Context) ([]section.Section, error)
	SetSectionPositionsFn func(ctx context.Context, placements []section.Placement) error
	WidgetDataFn          func(ctx context.Context, id string) (json.RawMessage, error)
	SetHabitCompletionFn  func(ctx context.Context, comp habit.Completion) error

	mu          sync.Mutex
	positions   [][]section.Placement
	completions []habit.Completion
	dataCalls   []string
}

var _ api.Service = (*Fake)(nil)

func (f *Fake) Widgets(ctx context.Context) ([]widget.Widget, error) {
	if f.WidgetsFn == nil {
		return nil, nil
	}
	return f.WidgetsFn(ctx)
}

func (f *Fake) Sections(ctx context.Context) ([]section.Section, error) {
	if f.SectionsFn == nil {
		return nil, nil
	}
	return f.SectionsFn(ctx)
}

func (f *Fake) SetSectionPositions(ctx context.Context, placements []section.Placement) error {
	f.mu.Lock()
	f.positions = append(f.positions, append([]section.Placement(nil), placements...))
	f.mu.Unlock()
	if f.SetSectionPositionsFn == nil {
		return nil
	}
	return f.SetSectionPositionsFn(ctx, placements)
}

func (f *Fake) WidgetData(ctx context.Context, id string) (json.RawMessage, error) {
	f.mu.Lock()
	f.dataCalls = append(f.dataCalls, id)
	f.mu.Unlock()
	if f.WidgetDataFn == nil {
		return nil, api.ErrNotFound
	}
	return f.WidgetDataFn(ctx, id)
}

func (f *Fake) SetHabitCompletion(ctx context.Context, comp habit.Completion) error {
	f.mu.Lock()
	f.completions = append(f.completions, comp)
	f.mu.Unlock()
	if f.SetHabitCompletionFn == nil {
		return nil
	}
	return f.SetHabitCompletionFn(ctx, comp)
}

// PositionWrites returns every recorded SetSectionPositions payload.
func (f *Fake) PositionWrites() [][]section.Placement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]section.Placement(nil), f.positions...)
}

// Completions returns every recorded SetHabitCompletion payload.
func (f *Fake) Completions() []habit.Completion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]habit.Completion(nil), f.completions...)
}

// DataCalls returns the widget IDs passed to WidgetData, in order.
func (f *Fake) DataCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dataCalls...)
}
