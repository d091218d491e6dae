// Package backoff decides when an overdue task may produce another outbound
// notification and composes the consolidated message for a tick.
package backoff

import (
	"fmt"
	"strings"
	"time"

	"github.com/hray3182/diditakeit/internal/format"
	"github.com/hray3182/diditakeit/internal/models"
)

var schedule = []time.Duration{
	2 * time.Minute,
	4 * time.Minute,
	8 * time.Minute,
	16 * time.Minute,
	32 * time.Minute,
	64 * time.Minute,
	128 * time.Minute,
}

// MaxDelay applies from the eighth send onwards.
const MaxDelay = 256 * time.Minute

// Delay is the wait required after the sendCount-th notification.
func Delay(sendCount int) time.Duration {
	switch {
	case sendCount <= 0:
		return 0
	case sendCount <= len(schedule):
		return schedule[sendCount-1]
	default:
		return MaxDelay
	}
}

// ShouldSend reports whether a task with the given streak state may be
// notified at now. A missing state or a zero count is always eligible.
func ShouldSend(state *models.NotificationState, now time.Time) bool {
	if state == nil || state.SendCount == 0 {
		return true
	}
	return now.Sub(state.LastSent) >= Delay(state.SendCount)
}

// SelectTrigger returns the last eligible task of the overdue set, or nil.
func SelectTrigger(overdue []*models.Task, states models.NotificationStates, now time.Time) *models.Task {
	var trigger *models.Task
	for _, task := range overdue {
		if ShouldSend(states[task.ID], now) {
			trigger = task
		}
	}
	return trigger
}

// Record returns the state after one more send at now. The input is not
// modified.
func Record(state *models.NotificationState, now time.Time) *models.NotificationState {
	next := models.NotificationState{}
	if state != nil {
		next = *state
	}
	if next.SendCount == 0 || next.FirstSent.IsZero() {
		next.FirstSent = now
	}
	next.SendCount++
	next.LastSent = now
	return &next
}

// ReminderLabel is the ordinal shown next to a task that was already
// notified sendCount times in this streak.
func ReminderLabel(sendCount int) string {
	if sendCount <= 0 {
		return ""
	}
	return fmt.Sprintf("Reminder %d", sendCount)
}

// BuildMessage renders one Markdown message listing every overdue task with
// its own reminder ordinal.
func BuildMessage(overdue []*models.Task, states models.NotificationStates, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	line := func(task *models.Task) string {
		s := "**" + format.StripMarkers(task.Name) + "** - due " + task.DueTime.In(loc).Format("15:04")
		count := 0
		if st := states[task.ID]; st != nil {
			count = st.SendCount
		}
		if label := ReminderLabel(count); label != "" {
			s += " (" + label + ")"
		}
		return s
	}

	var b strings.Builder
	if len(overdue) == 1 {
		b.WriteString("⏰ **Overdue task**\n\n")
		b.WriteString(line(overdue[0]))
		return b.String()
	}

	fmt.Fprintf(&b, "⏰ **Overdue tasks (%d)**\n", len(overdue))
	for i, task := range overdue {
		fmt.Fprintf(&b, "\n%d. %s", i+1, line(task))
	}
	return b.String()
}

// Decision is the outcome of one tick of the controller.
type Decision struct {
	Trigger   *models.Task
	Message   string
	NextState *models.NotificationState
}

// Plan selects the trigger, advances its state and composes the message.
// ok is false when nothing should be sent this tick.
func Plan(overdue []*models.Task, states models.NotificationStates, now time.Time) (Decision, bool) {
	trigger := SelectTrigger(overdue, states, now)
	if trigger == nil {
		return Decision{}, false
	}
	return Decision{
		Trigger:   trigger,
		Message:   BuildMessage(overdue, states, now.Location()),
		NextState: Record(states[trigger.ID], now),
	}, true
}
