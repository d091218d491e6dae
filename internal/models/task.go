package models

import (
	"sort"
	"time"
)

// AllDays is the normalized active-day set for a task that recurs every day.
var AllDays = []int{0, 1, 2, 3, 4, 5, 6}

// Task is one recurring reminder. The JSON shape matches the browser
// variant so that bridge peers can exchange task lists verbatim.
type Task struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DueTime        time.Time `json:"dueTime"`
	Checked        bool      `json:"checked"`
	AlarmTriggered bool      `json:"alarmTriggered"`
	IsPreset       bool      `json:"isPreset"`
	PresetType     string    `json:"presetType,omitempty"`
	ActiveDays     []int     `json:"activeDays,omitempty"`
}

// SetChecked marks the current occurrence done or not done.
// Checking a task always clears its alarm.
func (t *Task) SetChecked(checked bool) {
	t.Checked = checked
	if checked {
		t.AlarmTriggered = false
	}
}

// NormalizeDays returns a sorted, de-duplicated copy of days with
// out-of-range indices dropped. An empty result means every day.
func NormalizeDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return append([]int(nil), AllDays...)
	}
	sort.Ints(out)
	return out
}

// Normalize enforces the stored-shape invariants of a task.
func (t *Task) Normalize() {
	t.ActiveDays = NormalizeDays(t.ActiveDays)
	if !t.IsPreset {
		t.PresetType = ""
	}
	if t.Checked {
		t.AlarmTriggered = false
	}
}

// SortByDue orders tasks by due time, earliest first.
func SortByDue(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueTime.Before(tasks[j].DueTime)
	})
}
