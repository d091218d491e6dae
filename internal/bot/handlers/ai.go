package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/diditakeit/internal/ai"
	"github.com/hray3182/diditakeit/internal/format"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/rrule"
	"github.com/hray3182/diditakeit/internal/tasks"
)

const confirmationTimeout = 2 * time.Minute

type pendingDraft struct {
	*ai.TaskDraft
	ExpiresAt time.Time
}

func (h *Handlers) handleQuickAdd(ctx context.Context, msg *tgbotapi.Message) {
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Natural language input is not enabled, use /add HH:MM name")
		return
	}

	draft, err := h.ai.ParseTask(ctx, msg.Text, h.tasks.Now())
	if err != nil {
		log.Printf("Failed to parse task with AI: %v", err)
		h.sendMessage(msg.Chat.ID, "Sorry, I could not understand that. Try /add HH:MM name")
		return
	}
	if draft.NeedMoreInfo || draft.Name == "" {
		prompt := draft.FollowUpPrompt
		if prompt == "" {
			prompt = "What should I remind you about, and at what time?"
		}
		h.sendMessage(msg.Chat.ID, prompt)
		return
	}
	if _, _, err := tasks.ParseTimeOfDay(draft.Time); err != nil {
		h.sendMessage(msg.Chat.ID, "At what time? Please answer like 08:00")
		return
	}

	h.pendingMu.Lock()
	h.pending[msg.Chat.ID] = &pendingDraft{TaskDraft: draft, ExpiresAt: time.Now().Add(confirmationTimeout)}
	h.pendingMu.Unlock()

	settings, err := h.settings.Get(ctx)
	if err != nil {
		log.Printf("Failed to get settings: %v", err)
	}
	text := fmt.Sprintf("Add **%s** at %s (%s)?",
		format.StripMarkers(draft.Name), draft.Time,
		rrule.Describe(models.NormalizeDays(draft.ActiveDays), settings.DayLabel))

	parsed := format.ParseMarkdown(text)
	reply := tgbotapi.NewMessage(msg.Chat.ID, parsed.Text)
	reply.Entities = parsed.Entities
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Add", fmt.Sprintf("confirm:%d", msg.Chat.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", fmt.Sprintf("cancel:%d", msg.Chat.ID)),
		),
	)
	if _, err := h.api.Send(reply); err != nil {
		log.Printf("Failed to send confirmation message: %v", err)
	}
}

// takePending removes and returns the chat's unexpired draft.
func (h *Handlers) takePending(chatID int64) *pendingDraft {
	h.pendingMu.Lock()
	defer h.pendingMu.Unlock()
	draft, ok := h.pending[chatID]
	if !ok {
		return nil
	}
	delete(h.pending, chatID)
	if time.Now().After(draft.ExpiresAt) {
		return nil
	}
	return draft
}
