package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/diditakeit/internal/clock"
	"github.com/hray3182/diditakeit/internal/kv"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/tasks"
)

func newModel(t *testing.T) (Model, *tasks.Service) {
	t.Helper()
	store := kv.NewMemory()
	svc := tasks.NewService(store, clock.NewFake(time.Date(2026, 3, 3, 7, 0, 0, 0, time.Local)))
	return New(svc, repository.NewSettingsRepository(store)), svc
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestAddTask(t *testing.T) {
	m, svc := newModel(t)

	m = press(t, m, keys("a"))
	require.Equal(t, modeAdd, m.mode)

	m = press(t, m, keys("08:00 Take pill"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, modeList, m.mode)
	assert.Equal(t, "Added Take pill at 08:00", m.status)
	require.Len(t, m.tasks, 1)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Take pill", list[0].Name)
}

func TestAddTaskValidation(t *testing.T) {
	m, _ := newModel(t)

	m = press(t, m, keys("a"), keys("8am pill"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Time must look like 08:00", m.status)
	assert.Equal(t, modeAdd, m.mode)

	m.input.SetValue("08:00")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Name cannot be empty", m.status)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, m.tasks)
}

func TestToggleAndDelete(t *testing.T) {
	m, svc := newModel(t)
	ctx := context.Background()
	_, err := svc.Add(ctx, "Stretch", "06:30", nil)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Take pill", "08:00", nil)
	require.NoError(t, err)
	m = press(t, m, keys("r"))
	require.Len(t, m.tasks, 2)

	m = press(t, m, keys("j"), keys("x"))
	assert.Equal(t, "Done: Take pill", m.status)
	assert.True(t, m.tasks[1].Checked)

	m = press(t, m, keys("x"))
	assert.False(t, m.tasks[1].Checked)

	m = press(t, m, keys("d"), keys("n"))
	assert.Equal(t, "Delete cancelled", m.status)
	assert.Len(t, m.tasks, 2)

	m = press(t, m, keys("d"), keys("y"))
	assert.Equal(t, "Deleted Take pill", m.status)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, 0, m.cursor)
}

func TestPresetCycle(t *testing.T) {
	m, _ := newModel(t)

	m = press(t, m, keys("p"))
	assert.Equal(t, "Preset training: 9 tasks", m.status)
	assert.Len(t, m.tasks, 9)

	for range tasks.PresetNames() {
		m = press(t, m, keys("p"))
	}
	assert.Equal(t, "Preset tasks cleared", m.status)
	assert.Empty(t, m.tasks)
}

func TestAttentionBlink(t *testing.T) {
	m, _ := newModel(t)

	updated, cmd := m.Update(AttentionMsg{On: true})
	m = updated.(Model)
	assert.True(t, m.attention)
	assert.True(t, m.blinkOn)
	assert.NotNil(t, cmd)

	// Stale ticks are ignored.
	updated, cmd = m.Update(blinkMsg{gen: m.blinkGen - 1})
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.True(t, m.blinkOn)

	updated, cmd = m.Update(blinkMsg{gen: m.blinkGen})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.False(t, m.blinkOn)

	updated, _ = m.Update(AttentionMsg{On: false})
	m = updated.(Model)
	assert.False(t, m.attention)

	_, cmd = m.Update(blinkMsg{gen: m.blinkGen})
	assert.Nil(t, cmd)
}

func TestViewAndHelp(t *testing.T) {
	m, svc := newModel(t)
	_, err := svc.Add(context.Background(), "Take pill", "08:00", []int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	m = press(t, m, keys("r"), BellMsg{})

	view := m.View()
	assert.Contains(t, view, "Take pill")
	assert.Contains(t, view, "Weekdays")
	assert.Contains(t, view, "Overdue tasks!")

	m = press(t, m, keys("?"))
	assert.Equal(t, modeHelp, m.mode)
	assert.Contains(t, m.View(), "press any key to go back")

	m = press(t, m, keys("z"))
	assert.Equal(t, modeList, m.mode)
}

func TestAlarmWithoutProgram(t *testing.T) {
	a := NewAlarm()
	assert.NotPanics(t, func() {
		a.PlayAlarm()
		a.SetAttention(true)
	})
}
