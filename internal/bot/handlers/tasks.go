package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/diditakeit/internal/format"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/rrule"
	"github.com/hray3182/diditakeit/internal/tasks"
)

func (h *Handlers) handleTaskList(ctx context.Context, msg *tgbotapi.Message) {
	list, err := h.tasks.List(ctx)
	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to load tasks, please try again later")
		return
	}
	if len(list) == 0 {
		h.sendMessage(msg.Chat.ID, "✅ No tasks yet. Add one with /add HH:MM name")
		return
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
	}

	var sb strings.Builder
	sb.WriteString("📋 **Tasks**\n\n")
	for i, task := range list {
		status := "⬜"
		switch {
		case task.Checked:
			status = "✅"
		case task.AlarmTriggered:
			status = "🔴"
		}

		name := format.StripMarkers(task.Name)
		if r := []rune(name); len(r) > 40 {
			name = string(r[:40]) + "..."
		}
		sb.WriteString(fmt.Sprintf("%s **%d.** %s - %s", status, i+1, name, task.DueTime.Format("15:04")))
		if days := models.NormalizeDays(task.ActiveDays); len(days) < 7 {
			sb.WriteString(" | " + rrule.Describe(days, settings.DayLabel))
		}
		sb.WriteString("\n")
	}

	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	timeOfDay, name, ok := strings.Cut(strings.TrimSpace(msg.CommandArguments()), " ")
	if !ok || strings.TrimSpace(name) == "" {
		h.sendMessage(msg.Chat.ID, "Usage: /add HH:MM name")
		return
	}

	task, err := h.tasks.Add(ctx, name, timeOfDay, nil)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "❌ "+userError(err))
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Added **%s** at %s", format.StripMarkers(task.Name), task.DueTime.Format("15:04")))
}

func (h *Handlers) handleSetChecked(ctx context.Context, msg *tgbotapi.Message, checked bool) {
	task, ok := h.taskByNumber(ctx, msg, strings.TrimSpace(msg.CommandArguments()))
	if !ok {
		return
	}
	if _, err := h.tasks.SetChecked(ctx, task.ID, checked); err != nil {
		h.sendMessage(msg.Chat.ID, "❌ "+userError(err))
		return
	}
	if checked {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ **%s** done!", format.StripMarkers(task.Name)))
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("⬜ **%s** marked not done", format.StripMarkers(task.Name)))
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	task, ok := h.taskByNumber(ctx, msg, strings.TrimSpace(msg.CommandArguments()))
	if !ok {
		return
	}
	if err := h.tasks.Delete(ctx, task.ID); err != nil {
		h.sendMessage(msg.Chat.ID, "❌ "+userError(err))
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Deleted **%s**", format.StripMarkers(task.Name)))
}

func (h *Handlers) handleDays(ctx context.Context, msg *tgbotapi.Message) {
	number, rawDays, ok := strings.Cut(strings.TrimSpace(msg.CommandArguments()), " ")
	if !ok {
		h.sendMessage(msg.Chat.ID, "Usage: /days n 1,3,5 (0 = Sunday)")
		return
	}
	days, err := parseDays(rawDays)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "❌ "+err.Error())
		return
	}
	task, ok := h.taskByNumber(ctx, msg, number)
	if !ok {
		return
	}

	updated, err := h.tasks.SetActiveDays(ctx, task.ID, days)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "❌ "+userError(err))
		return
	}
	settings, err := h.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🔄 **%s**: %s", format.StripMarkers(updated.Name), rrule.Describe(updated.ActiveDays, settings.DayLabel)))
}

func (h *Handlers) handlePreset(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if name == "" {
		var sb strings.Builder
		sb.WriteString("📦 **Presets**\n\n")
		for _, p := range tasks.Presets() {
			sb.WriteString(fmt.Sprintf("`%s` - %d tasks\n", p.Name, len(p.Items)))
		}
		sb.WriteString("\nUse /preset name or /preset clear")
		h.sendMessage(msg.Chat.ID, sb.String())
		return
	}

	added, err := h.tasks.ApplyPreset(ctx, name)
	if err != nil {
		h.sendMessage(msg.Chat.ID, "❌ "+userError(err))
		return
	}
	if len(added) == 0 {
		h.sendMessage(msg.Chat.ID, "🧹 Preset tasks removed")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("📦 Added %d tasks from **%s**", len(added), name))
}

// taskByNumber resolves the 1-based position shown by /tasks.
func (h *Handlers) taskByNumber(ctx context.Context, msg *tgbotapi.Message, arg string) (models.Task, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		h.sendMessage(msg.Chat.ID, "Please give the task number from /tasks")
		return models.Task{}, false
	}
	list, err := h.tasks.List(ctx)
	if err != nil {
		log.Printf("Failed to list tasks: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to load tasks, please try again later")
		return models.Task{}, false
	}
	if n > len(list) {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("There is no task %d", n))
		return models.Task{}, false
	}
	return list[n-1], true
}

func parseDays(raw string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid day %q, use 0-6 (0 = Sunday)", part)
		}
		days = append(days, d)
	}
	return days, nil
}

func userError(err error) string {
	switch {
	case errors.Is(err, tasks.ErrInvalidTime):
		return "Time must look like 08:00"
	case errors.Is(err, tasks.ErrEmptyName):
		return "The task needs a name"
	case errors.Is(err, tasks.ErrUnknownPreset):
		return "Unknown preset, see /preset"
	case errors.Is(err, tasks.ErrNotFound):
		return "That task no longer exists"
	default:
		log.Printf("Failed to update tasks: %v", err)
		return "Something went wrong, please try again later"
	}
}
