package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/diditakeit/internal/format"
	"github.com/hray3182/diditakeit/internal/models"
)

var (
	frequencyChoices  = []int{1, 5, 15, 30, 60}
	resetHourChoices  = []int{0, 3, 4, 5, 6}
	settingsCloseData = "settings:close"
)

// OnSettingsChange registers a hook called after settings were saved.
func (h *Handlers) OnSettingsChange(fn func(models.Settings)) {
	h.onSettings = fn
}

// handleSettings shows the settings menu
func (h *Handlers) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	settings, err := h.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
		h.sendMessage(msg.Chat.ID, "Could not load settings, try again later")
		return
	}

	parsed := format.ParseMarkdown(buildSettingsMainText(settings))
	reply := tgbotapi.NewMessage(msg.Chat.ID, parsed.Text)
	reply.Entities = parsed.Entities
	reply.ReplyMarkup = buildSettingsMainKeyboard(settings)

	if _, err := h.api.Send(reply); err != nil {
		log.Printf("Failed to send settings menu: %v", err)
	}
}

// handleSettingsCallback handles "settings:..." callbacks
func (h *Handlers) handleSettingsCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, parts []string) {
	if len(parts) == 0 {
		return
	}
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	switch parts[0] {
	case "main":
		h.showSettingsMain(ctx, chatID, messageID)

	case "notify":
		h.updateSettings(ctx, chatID, messageID, func(s *models.Settings) {
			s.Telegram.Enabled = !s.Telegram.Enabled
		})

	case "sound":
		h.updateSettings(ctx, chatID, messageID, func(s *models.Settings) {
			if s.AlarmSound == "none" {
				s.AlarmSound = "beep"
			} else {
				s.AlarmSound = "none"
			}
		})

	case "blink":
		h.updateSettings(ctx, chatID, messageID, func(s *models.Settings) {
			s.TitleBlink = !s.TitleBlink
		})

	case "freq":
		if len(parts) < 2 {
			h.showFrequencyPicker(chatID, messageID)
			return
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil || minutes <= 0 {
			return
		}
		h.updateSettings(ctx, chatID, messageID, func(s *models.Settings) {
			s.CheckFrequency = minutes
		})

	case "reset":
		if len(parts) < 2 {
			h.showResetPicker(chatID, messageID)
			return
		}
		if parts[1] == "off" {
			h.updateSettings(ctx, chatID, messageID, func(s *models.Settings) {
				s.DailyResetHour = nil
			})
			return
		}
		hour, err := strconv.Atoi(parts[1])
		if err != nil {
			return
		}
		h.updateSettings(ctx, chatID, messageID, func(s *models.Settings) {
			s.DailyResetHour = &hour
		})

	case "close":
		h.deleteMessage(chatID, messageID)
	}
}

// --- Main Menu ---

func buildSettingsMainText(s models.Settings) string {
	reset := "off"
	if s.DailyResetHour != nil {
		reset = fmt.Sprintf("%02d:00", *s.DailyResetHour)
	}
	return fmt.Sprintf("⚙️ **Settings**\n\n🔔 Notifications: %s\n⏱ Check every: %d min\n🔊 Alarm sound: %s\n💡 Title blink: %s\n🌅 Daily reset: %s",
		onOff(s.Telegram.Enabled), s.CheckFrequency, s.AlarmSound, onOff(s.TitleBlink), reset)
}

func buildSettingsMainKeyboard(s models.Settings) tgbotapi.InlineKeyboardMarkup {
	notifyLabel := "🔔 Turn notifications on"
	if s.Telegram.Enabled {
		notifyLabel = "🔕 Turn notifications off"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(notifyLabel, "settings:notify"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏱ Check frequency", "settings:freq"),
			tgbotapi.NewInlineKeyboardButtonData("🌅 Daily reset", "settings:reset"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔊 Sound", "settings:sound"),
			tgbotapi.NewInlineKeyboardButtonData("💡 Blink", "settings:blink"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Close", settingsCloseData),
		),
	)
}

func (h *Handlers) showSettingsMain(ctx context.Context, chatID int64, messageID int) {
	settings, err := h.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
		return
	}
	h.editMessageWithKeyboard(chatID, messageID, buildSettingsMainText(settings), buildSettingsMainKeyboard(settings))
}

func (h *Handlers) updateSettings(ctx context.Context, chatID int64, messageID int, apply func(*models.Settings)) {
	settings, err := h.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
		return
	}
	apply(&settings)
	if err := h.settings.Save(ctx, settings); err != nil {
		log.Printf("Failed to save settings: %v", err)
		return
	}
	if h.onSettings != nil {
		h.onSettings(settings)
	}
	h.showSettingsMain(ctx, chatID, messageID)
}

// --- Pickers ---

func (h *Handlers) showFrequencyPicker(chatID int64, messageID int) {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(frequencyChoices))
	for _, m := range frequencyChoices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d min", m), fmt.Sprintf("settings:freq:%d", m)))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "settings:main"),
		),
	)
	h.editMessageWithKeyboard(chatID, messageID, "⏱ **How often should I check?**", keyboard)
}

func (h *Handlers) showResetPicker(chatID int64, messageID int) {
	row := []tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardButtonData("Off", "settings:reset:off")}
	for _, hour := range resetHourChoices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%02d:00", hour), fmt.Sprintf("settings:reset:%d", hour)))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "settings:main"),
		),
	)
	h.editMessageWithKeyboard(chatID, messageID, "🌅 **Uncheck every task daily at**", keyboard)
}

func (h *Handlers) editMessageWithKeyboard(chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, parsed.Text, keyboard)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) deleteMessage(chatID int64, messageID int) {
	if _, err := h.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		log.Printf("Failed to delete message: %v", err)
	}
}

func onOff(on bool) string {
	if on {
		return "✅ on"
	}
	return "❌ off"
}
