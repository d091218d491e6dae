package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hray3182/diditakeit/internal/rrule"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	daysStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const helpText = `# diditakeit

Recurring reminders that nag until you check them off.

| Key | Action |
| --- | --- |
| ↑ / k, ↓ / j | Move |
| space / x | Toggle done |
| a | Add a task (` + "`HH:MM name`" + `) |
| d | Delete the selected task |
| p | Cycle preset bundles, ending with clear |
| r | Reload |
| ? | This help |
| q | Quit |

Overdue tasks turn red, ring the bell and blink the window title.
Checked tasks come back on their next active day.
`

const footer = "a add • space toggle • d delete • p preset • ? help • q quit"

func (m Model) View() string {
	if m.mode == modeHelp {
		return renderMarkdown(helpText) + "\n" + footerStyle.Render("press any key to go back")
	}

	header := headerStyle.Render(appTitle)
	if m.attention {
		header += "  " + alertStyle.Render("⚠ overdue")
	}

	var rows []string
	for i, t := range m.tasks {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if t.Checked {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s  %s", box, t.DueTime.Format("15:04"), t.Name)
		switch {
		case t.Checked:
			line = doneStyle.Render(line)
		case t.AlarmTriggered:
			line = alertStyle.Render(line)
		}
		rows = append(rows, prefix+line+"  "+daysStyle.Render(rrule.Describe(t.ActiveDays, m.prefs.DayLabel)))
	}
	if len(rows) == 0 {
		rows = append(rows, footerStyle.Render("No tasks yet. Press 'a' to add one."))
	}

	lines := []string{header, panelStyle.Render(strings.Join(rows, "\n"))}
	if m.mode == modeAdd {
		lines = append(lines, "Add: "+m.input.View())
	}
	lines = append(lines, statusStyle.Render(m.status), footerStyle.Render(footer))
	return strings.Join(lines, "\n")
}

func renderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
