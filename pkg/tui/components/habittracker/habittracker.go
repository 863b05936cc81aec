// Package habittracker renders habit_tracking widgets and exposes the
// cursor/toggle helpers the dashboard uses for interaction.
package habittracker

import (
	"encoding/json"
	"fmt"
	"strings"

	"tableflip.dev/dash/pkg/habit"
	"tableflip.dev/dash/pkg/tui/theme"
	"tableflip.dev/dash/pkg/widget"
)

const (
	markDone   = "●"
	markMissed = "·"
)

// Cursor addresses one habit/day cell inside a habit widget.
type Cursor struct {
	Habit int
	Day   int
}

// Decode parses a habit_tracking widget payload.
func Decode(data json.RawMessage) (habit.Payload, error) {
	var p habit.Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return habit.Payload{}, fmt.Errorf("habittracker: payload: %w", err)
	}
	return p, nil
}

// Clamp snaps a cursor into the payload's bounds.
func Clamp(p habit.Payload, c Cursor) Cursor {
	if len(p.Habits) == 0 {
		return Cursor{}
	}
	if c.Habit < 0 {
		c.Habit = 0
	}
	if c.Habit >= len(p.Habits) {
		c.Habit = len(p.Habits) - 1
	}
	days := len(p.Habits[c.Habit].Days)
	if days == 0 {
		c.Day = 0
		return c
	}
	if c.Day < 0 {
		c.Day = 0
	}
	if c.Day >= days {
		c.Day = days - 1
	}
	return c
}

// Target resolves the habit id and date under the cursor.
func Target(p habit.Payload, c Cursor) (habitID, date string, ok bool) {
	c = Clamp(p, c)
	if len(p.Habits) == 0 || len(p.Habits[c.Habit].Days) == 0 {
		return "", "", false
	}
	h := p.Habits[c.Habit]
	return h.ID, h.Days[c.Day].Date, true
}

// PendingKey names a habit/day pair for submitting-state bookkeeping.
func PendingKey(habitID, date string) string {
	return habitID + "@" + date
}

// Renderer returns the passive registry render function for
// habit_tracking widgets.
func Renderer(th theme.Theme) func(widget.Widget, json.RawMessage, int) []string {
	return func(w widget.Widget, data json.RawMessage, _ int) []string {
		if len(data) == 0 {
			return []string{th.Widget.Faint.Render("loading…")}
		}
		p, err := Decode(data)
		if err != nil {
			return []string{th.Widget.Error.Render(err.Error())}
		}
		return View(p, nil, nil, th)
	}
}

// View renders every habit's trailing day window as a grid, seven days
// per row. cursor may be nil (passive rendering); pending marks
// habit/day pairs with an unsettled toggle.
func View(p habit.Payload, cursor *Cursor, pending map[string]bool, th theme.Theme) []string {
	if len(p.Habits) == 0 {
		return []string{th.Widget.Faint.Render("no habits")}
	}
	var lines []string
	for hi, h := range p.Habits {
		name := th.Widget.Title.Render(h.Name)
		lines = append(lines, name)
		for start := 0; start < len(h.Days); start += 7 {
			end := start + 7
			if end > len(h.Days) {
				end = len(h.Days)
			}
			lines = append(lines, renderRow(h, start, end, hi, cursor, pending, th))
		}
	}
	return lines
}

func renderRow(h habit.Habit, start, end, habitIdx int, cursor *Cursor, pending map[string]bool, th theme.Theme) string {
	var cells []string
	for di := start; di < end; di++ {
		d := h.Days[di]
		mark := markMissed
		style := th.Habit.Missed
		if d.Completed {
			mark = markDone
			style = th.Habit.Done
		}
		initial := "?"
		if d.DayOfWeek != "" {
			initial = strings.ToUpper(d.DayOfWeek[:1])
		}
		cell := fmt.Sprintf("%s %s", initial, mark)
		if pending[PendingKey(h.ID, d.Date)] {
			style = th.Habit.Pending
		}
		rendered := style.Render(cell)
		if d.Today {
			rendered = th.Habit.Today.Render(rendered)
		}
		if cursor != nil && cursor.Habit == habitIdx && cursor.Day == di {
			rendered = th.Habit.Cursor.Render(cell)
		}
		cells = append(cells, rendered)
	}
	return strings.Join(cells, "  ")
}
