package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDays(t *testing.T) {
	assert.Equal(t, AllDays, NormalizeDays(nil))
	assert.Equal(t, AllDays, NormalizeDays([]int{}))
	assert.Equal(t, AllDays, NormalizeDays([]int{-1, 9}))
	assert.Equal(t, []int{1, 3, 5}, NormalizeDays([]int{5, 1, 3, 1}))
}

func TestTaskNormalize(t *testing.T) {
	task := Task{Checked: true, AlarmTriggered: true, PresetType: "wellness"}
	task.Normalize()

	assert.False(t, task.AlarmTriggered)
	assert.Empty(t, task.PresetType)
	assert.Equal(t, AllDays, task.ActiveDays)
}

func TestSetCheckedClearsAlarm(t *testing.T) {
	task := Task{AlarmTriggered: true}
	task.SetChecked(true)
	assert.True(t, task.Checked)
	assert.False(t, task.AlarmTriggered)

	task.AlarmTriggered = true
	task.SetChecked(false)
	assert.True(t, task.AlarmTriggered)
}

func TestSortByDue(t *testing.T) {
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "late", DueTime: base.Add(2 * time.Hour)},
		{ID: "early", DueTime: base},
		{ID: "mid", DueTime: base.Add(time.Hour)},
	}
	SortByDue(tasks)
	assert.Equal(t, "early", tasks[0].ID)
	assert.Equal(t, "mid", tasks[1].ID)
	assert.Equal(t, "late", tasks[2].ID)
}

func TestSettingsSanitize(t *testing.T) {
	hour := 30
	s := Settings{CheckFrequency: -5, Volume: 3, DailyResetHour: &hour}
	s.Sanitize()

	assert.Equal(t, 1, s.CheckFrequency)
	assert.Equal(t, 0.8, s.Volume)
	assert.Equal(t, "beep", s.AlarmSound)
	assert.Equal(t, "Sun", s.DayLabel(0))
	assert.Nil(t, s.DailyResetHour)
}

func TestSettingsIntervals(t *testing.T) {
	s := DefaultSettings()
	s.CheckFrequency = 5
	assert.Equal(t, 5*time.Minute, s.CheckInterval())
	assert.Equal(t, 5*time.Minute, s.RolloverInterval())

	s.RolloverFrequency = 30
	assert.Equal(t, 30*time.Minute, s.RolloverInterval())
}

func TestShouldDailyReset(t *testing.T) {
	s := DefaultSettings()
	now := time.Date(2026, 3, 2, 4, 10, 0, 0, time.UTC)
	assert.False(t, s.ShouldDailyReset(now, ""))

	hour := 4
	s.DailyResetHour = &hour
	assert.True(t, s.ShouldDailyReset(now, ""))
	assert.True(t, s.ShouldDailyReset(now, "2026-03-01"))
	assert.False(t, s.ShouldDailyReset(now, "2026-03-02"))
	assert.False(t, s.ShouldDailyReset(now.Add(time.Hour), ""))
}
