// Package overdue classifies tasks against the current wall-clock time and
// drives the alarm collaborator.
package overdue

import (
	"time"

	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/recurrence"
)

// Alarm is the audible/visual attention collaborator.
type Alarm interface {
	PlayAlarm()
	SetAttention(on bool)
}

type Result struct {
	// Overdue points into the evaluated slice, in input order.
	Overdue []*models.Task
	Changed bool
}

// Evaluate marks past-due unchecked tasks as alarmed and collects them.
// Tasks inactive on now's weekday are skipped entirely.
func Evaluate(tasks []models.Task, now time.Time) Result {
	var res Result
	for i := range tasks {
		task := &tasks[i]
		if !recurrence.IsActiveOnDay(task, now.Weekday()) {
			continue
		}

		if task.Checked {
			if task.AlarmTriggered {
				task.AlarmTriggered = false
				res.Changed = true
			}
			continue
		}

		if IsDue(task, now) {
			if !task.AlarmTriggered {
				task.AlarmTriggered = true
				res.Changed = true
			}
			res.Overdue = append(res.Overdue, task)
		} else if task.AlarmTriggered {
			task.AlarmTriggered = false
			res.Changed = true
		}
	}
	return res
}

// IsDue compares the task's wall-clock due time, read in now's location,
// against now. Sub-second precision is ignored.
func IsDue(task *models.Task, now time.Time) bool {
	due := task.DueTime.In(now.Location())
	point := time.Date(due.Year(), due.Month(), due.Day(),
		due.Hour(), due.Minute(), due.Second(), 0, now.Location())
	return !point.After(now)
}

// Signal forwards the evaluation to the alarm collaborator.
func Signal(res Result, alarm Alarm) {
	if alarm == nil {
		return
	}
	if len(res.Overdue) > 0 {
		alarm.PlayAlarm()
		alarm.SetAttention(true)
		return
	}
	alarm.SetAttention(false)
}
