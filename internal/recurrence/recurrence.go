// Package recurrence decides on which calendar days a task is active and
// rolls stale due dates forward to the next active day.
package recurrence

import (
	"time"

	"github.com/hray3182/diditakeit/internal/models"
)

// IsActiveOnDay reports whether the task recurs on weekday. An empty day
// set means every day.
func IsActiveOnDay(task *models.Task, weekday time.Weekday) bool {
	if len(task.ActiveDays) == 0 {
		return true
	}
	for _, d := range task.ActiveDays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// NextActiveDate returns midnight of the first date in [today, today+6] on
// which the task is active.
func NextActiveDate(task *models.Task, today time.Time) (time.Time, bool) {
	start := startOfDay(today)
	for i := 0; i < 7; i++ {
		candidate := start.AddDate(0, 0, i)
		if IsActiveOnDay(task, candidate.Weekday()) {
			return candidate, true
		}
	}
	return time.Time{}, false
}

// Normalize rolls a due date that lies on a day before today onto the next
// active date, keeping the wall-clock time of day, and starts a fresh
// occurrence. A due date on today is left alone even when its time has
// passed. Returns true when the task changed.
func Normalize(task *models.Task, now time.Time) bool {
	loc := now.Location()
	due := task.DueTime.In(loc)
	today := startOfDay(now)
	if !startOfDay(due).Before(today) {
		return false
	}

	next, ok := NextActiveDate(task, now)
	if !ok {
		return false
	}
	task.DueTime = time.Date(next.Year(), next.Month(), next.Day(),
		due.Hour(), due.Minute(), due.Second(), due.Nanosecond(), loc)
	task.Checked = false
	task.AlarmTriggered = false
	return true
}

// NormalizeAll applies Normalize to every task.
func NormalizeAll(tasks []models.Task, now time.Time) bool {
	changed := false
	for i := range tasks {
		if Normalize(&tasks[i], now) {
			changed = true
		}
	}
	return changed
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
