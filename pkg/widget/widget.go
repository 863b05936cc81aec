// Package widget defines the dashboard widget model shared by the CLI,
// the TUI, and the remote service client.
package widget

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type identifies what a widget displays and which renderer owns it.
type Type string

const (
	// TypeWeather shows current conditions for a configured location.
	TypeWeather Type = "weather"
	// TypeExchangeRate shows a currency pair rate.
	TypeExchangeRate Type = "exchange_rate"
	// TypeNews shows headlines from a configured feed.
	TypeNews Type = "news"
	// TypeMarket shows quotes for configured symbols.
	TypeMarket Type = "market"
	// TypeHabitTracking shows completion days for a tracked habit.
	TypeHabitTracking Type = "habit_tracking"
	// TypeClock shows the time in a configured timezone.
	TypeClock Type = "clock"
)

// AllTypes returns the list of supported widget types.
func AllTypes() []Type {
	return []Type{
		TypeWeather,
		TypeExchangeRate,
		TypeNews,
		TypeMarket,
		TypeHabitTracking,
		TypeClock,
	}
}

// ParseType converts a string to a Type or returns an error for unknown values.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllTypes() {
		if candidate == t {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("widget: unknown type %q", raw)
}

// defaultRefresh maps widget types to their default polling cadence in
// seconds. Types missing from the map fall back to ServerDefaultRefresh.
var defaultRefresh = map[Type]int{
	TypeWeather:       300,
	TypeExchangeRate:  300,
	TypeNews:          300,
	TypeMarket:        120,
	TypeHabitTracking: 60,
	TypeClock:         60,
}

// ServerDefaultRefresh is the floor for polling cadence. Widgets may ask
// for slower refreshes but never faster than this.
const ServerDefaultRefresh = 60

// Position describes the widget's grid placement.
type Position struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Widget is a single configurable dashboard unit displaying one data feed.
// Widgets are owned by the remote service; the client treats them as
// read-only configuration.
type Widget struct {
	ID       string            `json:"id"`
	Type     Type              `json:"type"`
	Config   map[string]string `json:"config,omitempty"`
	Position Position          `json:"position"`
	Enabled  bool              `json:"enabled"`
	Refresh  int               `json:"refresh_interval,omitempty"`
}

// Option returns the named configuration value, or fallback when unset.
func (w Widget) Option(name, fallback string) string {
	if v, ok := w.Config[name]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// IntOption returns the named configuration value parsed as an integer.
func (w Widget) IntOption(name string, fallback int) int {
	v, ok := w.Config[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

// RefreshEvery returns the effective polling cadence: the configured
// interval (or the per-type default when unset), clamped to the server
// default floor.
func (w Widget) RefreshEvery() time.Duration {
	secs := w.Refresh
	if secs <= 0 {
		if d, ok := defaultRefresh[w.Type]; ok {
			secs = d
		} else {
			secs = ServerDefaultRefresh
		}
	}
	if secs < ServerDefaultRefresh {
		secs = ServerDefaultRefresh
	}
	return time.Duration(secs) * time.Second
}

// Normalize fills defaulted grid dimensions in place.
func (w *Widget) Normalize() {
	if w.Position.Width <= 0 {
		w.Position.Width = 1
	}
	if w.Position.Height <= 0 {
		w.Position.Height = 1
	}
}

// Key returns the cache key under which this widget's data is stored.
func (w Widget) Key() string {
	return "widget:" + w.ID
}
