package overdue

import (
	"testing"
	"time"

	"github.com/hray3182/diditakeit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday.
var now = time.Date(2026, 3, 3, 8, 5, 0, 0, time.Local)

type recordingAlarm struct {
	plays     int
	attention []bool
}

func (a *recordingAlarm) PlayAlarm()           { a.plays++ }
func (a *recordingAlarm) SetAttention(on bool) { a.attention = append(a.attention, on) }

func at(h, m int) time.Time {
	return time.Date(2026, 3, 3, h, m, 0, 0, time.Local)
}

func TestEvaluateNewlyOverdue(t *testing.T) {
	tasks := []models.Task{{ID: "pill", Name: "Take pill", DueTime: at(8, 0)}}

	res := Evaluate(tasks, now)

	require.Len(t, res.Overdue, 1)
	assert.Same(t, &tasks[0], res.Overdue[0])
	assert.True(t, res.Changed)
	assert.True(t, tasks[0].AlarmTriggered)
}

func TestEvaluateKnownOverdueIsNotAChange(t *testing.T) {
	tasks := []models.Task{{ID: "pill", DueTime: at(8, 0), AlarmTriggered: true}}

	res := Evaluate(tasks, now)

	assert.Len(t, res.Overdue, 1)
	assert.False(t, res.Changed)
}

func TestEvaluateDueExactlyNow(t *testing.T) {
	tasks := []models.Task{{ID: "x", DueTime: now}}
	res := Evaluate(tasks, now)
	assert.Len(t, res.Overdue, 1)
}

func TestEvaluateFutureClearsStaleAlarm(t *testing.T) {
	tasks := []models.Task{{ID: "edited", DueTime: at(9, 0), AlarmTriggered: true}}

	res := Evaluate(tasks, now)

	assert.Empty(t, res.Overdue)
	assert.True(t, res.Changed)
	assert.False(t, tasks[0].AlarmTriggered)
}

func TestEvaluateCheckedNeverOverdue(t *testing.T) {
	tasks := []models.Task{
		{ID: "done", DueTime: at(7, 0), Checked: true, AlarmTriggered: true},
		{ID: "done-clean", DueTime: at(7, 0), Checked: true},
	}

	res := Evaluate(tasks, now)

	assert.Empty(t, res.Overdue)
	assert.True(t, res.Changed)
	assert.False(t, tasks[0].AlarmTriggered)
}

func TestEvaluateSkipsInactiveDay(t *testing.T) {
	tasks := []models.Task{{ID: "monday", DueTime: at(7, 0), ActiveDays: []int{1}}}

	res := Evaluate(tasks, now)

	assert.Empty(t, res.Overdue)
	assert.False(t, res.Changed)
	assert.False(t, tasks[0].AlarmTriggered)
}

func TestEvaluatePreservesOrder(t *testing.T) {
	tasks := []models.Task{
		{ID: "b", DueTime: at(8, 0)},
		{ID: "later", DueTime: at(23, 0)},
		{ID: "a", DueTime: at(6, 0)},
	}

	res := Evaluate(tasks, now)

	require.Len(t, res.Overdue, 2)
	assert.Equal(t, "b", res.Overdue[0].ID)
	assert.Equal(t, "a", res.Overdue[1].ID)
}

func TestIsDueIgnoresSubSecond(t *testing.T) {
	task := &models.Task{DueTime: now.Add(500 * time.Millisecond)}
	assert.True(t, IsDue(task, now))
	task.DueTime = now.Add(time.Second)
	assert.False(t, IsDue(task, now))
}

func TestSignal(t *testing.T) {
	alarm := &recordingAlarm{}
	Signal(Result{Overdue: []*models.Task{{ID: "a"}, {ID: "b"}}}, alarm)
	assert.Equal(t, 1, alarm.plays)
	assert.Equal(t, []bool{true}, alarm.attention)

	Signal(Result{}, alarm)
	assert.Equal(t, 1, alarm.plays)
	assert.Equal(t, []bool{true, false}, alarm.attention)

	assert.NotPanics(t, func() { Signal(Result{}, nil) })
}
