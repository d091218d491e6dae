package backoff

import (
	"testing"
	"time"

	"github.com/hray3182/diditakeit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 3, 8, 5, 0, 0, time.Local)

func TestDelay(t *testing.T) {
	want := map[int]time.Duration{
		0:   0,
		1:   2 * time.Minute,
		2:   4 * time.Minute,
		3:   8 * time.Minute,
		4:   16 * time.Minute,
		5:   32 * time.Minute,
		6:   64 * time.Minute,
		7:   128 * time.Minute,
		8:   256 * time.Minute,
		9:   256 * time.Minute,
		100: 256 * time.Minute,
	}
	for n, d := range want {
		assert.Equal(t, d, Delay(n), "sendCount=%d", n)
	}
}

func TestShouldSend(t *testing.T) {
	assert.True(t, ShouldSend(nil, now))
	assert.True(t, ShouldSend(&models.NotificationState{SendCount: 0, LastSent: now}, now))

	state := &models.NotificationState{SendCount: 3, LastSent: now.Add(-(7*time.Minute + 59*time.Second))}
	assert.False(t, ShouldSend(state, now))
	state.LastSent = now.Add(-8 * time.Minute)
	assert.True(t, ShouldSend(state, now))
}

func TestSelectTriggerPicksLastEligible(t *testing.T) {
	a := &models.Task{ID: "a"}
	b := &models.Task{ID: "b"}
	c := &models.Task{ID: "c"}
	states := models.NotificationStates{
		"c": {SendCount: 1, LastSent: now.Add(-time.Minute)},
	}

	got := SelectTrigger([]*models.Task{a, b, c}, states, now)
	assert.Same(t, b, got)

	assert.Nil(t, SelectTrigger([]*models.Task{c}, states, now))
	assert.Nil(t, SelectTrigger(nil, states, now))
}

func TestRecord(t *testing.T) {
	first := Record(nil, now)
	assert.Equal(t, 1, first.SendCount)
	assert.Equal(t, now, first.FirstSent)
	assert.Equal(t, now, first.LastSent)

	later := now.Add(3 * time.Minute)
	second := Record(first, later)
	assert.Equal(t, 2, second.SendCount)
	assert.Equal(t, now, second.FirstSent)
	assert.Equal(t, later, second.LastSent)
	assert.Equal(t, 1, first.SendCount, "input must not change")
}

func TestReminderLabel(t *testing.T) {
	assert.Equal(t, "", ReminderLabel(0))
	assert.Equal(t, "Reminder 1", ReminderLabel(1))
	assert.Equal(t, "Reminder 7", ReminderLabel(7))
}

func TestPlanTakePillScenario(t *testing.T) {
	pill := &models.Task{ID: "pill", Name: "Take pill", DueTime: time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local)}
	overdue := []*models.Task{pill}
	states := models.NotificationStates{}

	d, ok := Plan(overdue, states, now)
	require.True(t, ok)
	assert.Same(t, pill, d.Trigger)
	assert.Equal(t, "⏰ **Overdue task**\n\n**Take pill** - due 08:00", d.Message)
	assert.NotContains(t, d.Message, "Reminder")
	assert.Equal(t, 1, d.NextState.SendCount)
	states["pill"] = d.NextState

	// One minute later the 2 minute delay has not elapsed.
	_, ok = Plan(overdue, states, now.Add(time.Minute))
	assert.False(t, ok)

	// Three minutes later it has.
	d, ok = Plan(overdue, states, now.Add(3*time.Minute))
	require.True(t, ok)
	assert.Contains(t, d.Message, "(Reminder 1)")
	assert.Equal(t, 2, d.NextState.SendCount)
}

func TestPlanTwoEligibleTasksOneMessage(t *testing.T) {
	a := &models.Task{ID: "a", Name: "Water plants", DueTime: time.Date(2026, 3, 3, 7, 0, 0, 0, time.Local)}
	b := &models.Task{ID: "b", Name: "Take pill", DueTime: time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local)}
	states := models.NotificationStates{
		"a": {SendCount: 2, FirstSent: now.Add(-time.Hour), LastSent: now.Add(-10 * time.Minute)},
	}

	d, ok := Plan([]*models.Task{a, b}, states, now)
	require.True(t, ok)

	assert.Same(t, b, d.Trigger)
	assert.Equal(t, 1, d.NextState.SendCount)
	assert.Equal(t,
		"⏰ **Overdue tasks (2)**\n\n1. **Water plants** - due 07:00 (Reminder 2)\n2. **Take pill** - due 08:00",
		d.Message)
}

func TestBuildMessageStripsMarkers(t *testing.T) {
	task := &models.Task{ID: "x", Name: "**loud**", DueTime: now}
	msg := BuildMessage([]*models.Task{task}, nil, time.Local)
	assert.Contains(t, msg, "**loud** - due 08:05")
}
