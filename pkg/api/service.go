// Package api defines the remote dashboard service contract and its HTTP
// implementation. Everything above this package talks to the Service
// interface so tests can substitute a fake.
package api

import (
	"context"
	"encoding/json"
	"errors"

	"tableflip.dev/dash/pkg/habit"
	"tableflip.dev/dash/pkg/section"
	"tableflip.dev/dash/pkg/widget"
)

// ErrNotFound is returned when the service reports a missing resource.
var ErrNotFound = errors.New("api: not found")

// ErrUnauthorized is returned when the bearer credential is rejected.
// Callers treat it like any other remote failure; the client never
// inspects or refreshes credentials itself.
var ErrUnauthorized = errors.New("api: unauthorized")

// Service is the remote dashboard data service.
type Service interface {
	// Widgets lists the user's widget configuration. Order is not
	// meaningful; placement comes from each widget's grid position.
	Widgets(ctx context.Context) ([]widget.Widget, error)

	// Sections lists the section catalog in display order.
	Sections(ctx context.Context) ([]section.Section, error)

	// SetSectionPositions bulk-writes the position of every section.
	// All-or-nothing from the client's view.
	SetSectionPositions(ctx context.Context, placements []section.Placement) error

	// WidgetData fetches the widget-type-specific payload for one widget.
	WidgetData(ctx context.Context, id string) (json.RawMessage, error)

	// SetHabitCompletion records one habit/day completion state.
	SetHabitCompletion(ctx context.Context, c habit.Completion) error
}
