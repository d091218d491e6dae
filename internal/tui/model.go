// Package tui is the terminal front end: a task list with toggle, add,
// delete and preset controls, plus a blinking title while tasks are overdue.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/tasks"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeHelp
)

const (
	appTitle        = "diditakeit"
	alertTitle      = "⚠ Overdue! ⚠"
	refreshInterval = 5 * time.Second
	blinkInterval   = time.Second
)

type refreshMsg struct{}

type blinkMsg struct{ gen int }

// AttentionMsg switches the overdue indicator on or off.
type AttentionMsg struct{ On bool }

// BellMsg is sent each time an overdue task fires its alarm.
type BellMsg struct{}

type Model struct {
	svc      *tasks.Service
	settings *repository.SettingsRepository

	tasks      []models.Task
	prefs      models.Settings
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *models.Task
	presetIdx  int

	attention bool
	blinkOn   bool
	blinkGen  int
}

func New(svc *tasks.Service, settings *repository.SettingsRepository) Model {
	ti := textinput.New()
	ti.Placeholder = "08:00 Take pill"
	ti.CharLimit = 128
	ti.Width = 40

	m := Model{
		svc:      svc,
		settings: settings,
		prefs:    models.DefaultSettings(),
		input:    ti,
		status:   "Press 'a' to add, space to toggle, 'd' to delete, '?' for help.",
	}
	m.reload()
	return m
}

// Run blocks until the user quits. The alarm forwards scheduler signals to
// the running program.
func Run(svc *tasks.Service, settings *repository.SettingsRepository, alarm *Alarm) error {
	program := tea.NewProgram(New(svc, settings), tea.WithAltScreen())
	if alarm != nil {
		alarm.Attach(program)
		defer alarm.Attach(nil)
	}
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle(appTitle), refreshTick())
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func blinkTick(gen int) tea.Cmd {
	return tea.Tick(blinkInterval, func(time.Time) tea.Msg { return blinkMsg{gen: gen} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeHelp:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			m.mode = modeList
			return m, nil
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	case refreshMsg:
		m.reload()
		return m, refreshTick()
	case AttentionMsg:
		m.reload()
		if msg.On == m.attention {
			return m, nil
		}
		m.attention = msg.On
		m.blinkGen++
		if msg.On && m.prefs.TitleBlink {
			m.blinkOn = true
			return m, tea.Batch(tea.SetWindowTitle(alertTitle), blinkTick(m.blinkGen))
		}
		m.blinkOn = false
		return m, tea.SetWindowTitle(appTitle)
	case blinkMsg:
		if msg.gen != m.blinkGen || !m.attention {
			return m, nil
		}
		m.blinkOn = !m.blinkOn
		title := appTitle
		if m.blinkOn {
			title = alertTitle
		}
		return m, tea.Batch(tea.SetWindowTitle(title), blinkTick(m.blinkGen))
	case BellMsg:
		m.status = "⏰ Overdue tasks!"
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case "a":
		m.mode = modeAdd
		m.status = "Add mode: type HH:MM and a name, then press Enter"
		return m, m.input.Focus()
	case " ", "x":
		if len(m.tasks) == 0 {
			return m, nil
		}
		task := m.tasks[m.cursor]
		updated, err := m.svc.SetChecked(ctx, task.ID, !task.Checked)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		if updated.Checked {
			m.status = fmt.Sprintf("Done: %s", updated.Name)
		} else {
			m.status = fmt.Sprintf("Not done: %s", updated.Name)
		}
		m.reload()
	case "d":
		if len(m.tasks) == 0 {
			return m, nil
		}
		t := m.tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Name)
	case "p":
		names := append(tasks.PresetNames(), tasks.ClearPreset)
		name := names[m.presetIdx%len(names)]
		m.presetIdx++
		added, err := m.svc.ApplyPreset(ctx, name)
		if err != nil {
			m.status = fmt.Sprintf("preset failed: %v", err)
			return m, nil
		}
		if name == tasks.ClearPreset {
			m.status = "Preset tasks cleared"
		} else {
			m.status = fmt.Sprintf("Preset %s: %d tasks", name, len(added))
		}
		m.reload()
	case "?":
		m.mode = modeHelp
	case "r":
		m.reload()
		m.status = "Reloaded"
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "enter":
		timeOfDay, name, _ := strings.Cut(strings.TrimSpace(m.input.Value()), " ")
		task, err := m.svc.Add(context.Background(), name, timeOfDay, nil)
		switch {
		case errors.Is(err, tasks.ErrInvalidTime):
			m.status = "Time must look like 08:00"
			return m, nil
		case errors.Is(err, tasks.ErrEmptyName):
			m.status = "Name cannot be empty"
			return m, nil
		case err != nil:
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.reload()
		for i, t := range m.tasks {
			if t.ID == task.ID {
				m.cursor = i
			}
		}
		m.status = fmt.Sprintf("Added %s at %s", task.Name, task.DueTime.Format("15:04"))
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeList
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	m.confirmDel = false
	pending := m.pendingDel
	m.pendingDel = nil
	if key != "y" || pending == nil {
		m.status = "Delete cancelled"
		return m, nil
	}
	if err := m.svc.Delete(context.Background(), pending.ID); err != nil {
		m.status = fmt.Sprintf("delete failed: %v", err)
		return m, nil
	}
	m.status = fmt.Sprintf("Deleted %s", pending.Name)
	m.reload()
	return m, nil
}

func (m *Model) reload() {
	ctx := context.Background()
	list, err := m.svc.List(ctx)
	if err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	m.tasks = list
	m.cursor = clampCursor(m.cursor, len(m.tasks))

	if m.settings != nil {
		prefs, err := m.settings.Get(ctx)
		if err != nil {
			m.status = fmt.Sprintf("settings failed: %v", err)
			return
		}
		m.prefs = prefs
	}
}

func clampCursor(cursor, length int) int {
	if length == 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
