// Package habit models habit-tracking widget payloads.
package habit

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for habit day dates.
const DateFormat = "2006-01-02"

// Day is one calendar day's completion record for a tracked habit.
type Day struct {
	Date      string `json:"date"`
	DayOfWeek string `json:"day_of_week"`
	Completed bool   `json:"completed"`
	Today     bool   `json:"is_today"`
}

// Habit is a tracked habit together with its trailing day window.
type Habit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Days        []Day  `json:"days"`
}

// Payload is the habit_tracking widget data response. The single-habit
// widget carries exactly one habit; the multi-habit variant carries many.
type Payload struct {
	Habits []Habit `json:"habits"`
}

// Completion is the remote write toggling one habit/day pair.
type Completion struct {
	HabitID   string `json:"habit_id"`
	Date      string `json:"completion_date"`
	Completed bool   `json:"completed"`
}

// Window returns the trailing n days ending at ref, oldest first, with
// the Today flag set on the last element.
func Window(ref time.Time, n int) []Day {
	if n <= 0 {
		return nil
	}
	days := make([]Day, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := ref.AddDate(0, 0, -i)
		days = append(days, Day{
			Date:      d.Format(DateFormat),
			DayOfWeek: d.Weekday().String()[:3],
			Today:     i == 0,
		})
	}
	return days
}

// FindDay returns the index of the day with the given date, or -1.
func (h Habit) FindDay(date string) int {
	for i, d := range h.Days {
		if d.Date == date {
			return i
		}
	}
	return -1
}

// FindHabit returns the index of the habit with the given id, or -1.
func (p Payload) FindHabit(id string) int {
	for i, h := range p.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// Toggle returns a copy of the payload with the completed flag flipped
// for the given habit/day pair. All other habits and days are untouched.
// The receiver is never modified; callers relying on snapshot semantics
// can keep the original.
func (p Payload) Toggle(habitID, date string) (Payload, error) {
	hi := p.FindHabit(habitID)
	if hi < 0 {
		return Payload{}, fmt.Errorf("habit: unknown habit %q", habitID)
	}
	di := p.Habits[hi].FindDay(date)
	if di < 0 {
		return Payload{}, fmt.Errorf("habit: habit %q has no day %q", habitID, date)
	}

	out := Payload{Habits: make([]Habit, len(p.Habits))}
	copy(out.Habits, p.Habits)
	days := make([]Day, len(p.Habits[hi].Days))
	copy(days, p.Habits[hi].Days)
	days[di].Completed = !days[di].Completed
	out.Habits[hi].Days = days
	return out, nil
}

// ValidateDate checks a user-supplied completion date.
func ValidateDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, "today") || trimmed == "" {
		return time.Now().Format(DateFormat), nil
	}
	t, err := time.Parse(DateFormat, trimmed)
	if err != nil {
		return "", fmt.Errorf("habit: invalid date %q (want YYYY-MM-DD): %w", raw, err)
	}
	return t.Format(DateFormat), nil
}
