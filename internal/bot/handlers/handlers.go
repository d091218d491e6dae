package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/diditakeit/internal/ai"
	"github.com/hray3182/diditakeit/internal/format"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/tasks"
)

// Sender is the part of *tgbotapi.BotAPI the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handlers struct {
	api      Sender
	tasks    *tasks.Service
	settings *repository.SettingsRepository
	ai       *ai.Client
	chatID   string

	onSettings func(models.Settings)

	pendingMu sync.Mutex
	pending   map[int64]*pendingDraft
}

// New creates the command handlers. When chatID is set, updates from any
// other chat are ignored.
func New(api Sender, svc *tasks.Service, settings *repository.SettingsRepository, aiClient *ai.Client, chatID string) *Handlers {
	return &Handlers{
		api:      api,
		tasks:    svc,
		settings: settings,
		ai:       aiClient,
		chatID:   chatID,
		pending:  make(map[int64]*pendingDraft),
	}
}

func (h *Handlers) allowed(chat *tgbotapi.Chat) bool {
	if h.chatID == "" || chat == nil {
		return h.chatID == ""
	}
	if strconv.FormatInt(chat.ID, 10) == h.chatID {
		return true
	}
	return strings.HasPrefix(h.chatID, "@") && "@"+chat.UserName == h.chatID
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allowed(msg.Chat) {
		log.Printf("Ignoring command from chat %d", msg.Chat.ID)
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "tasks":
		h.handleTaskList(ctx, msg)
	case "add":
		h.handleAdd(ctx, msg)
	case "done":
		h.handleSetChecked(ctx, msg, true)
	case "undo":
		h.handleSetChecked(ctx, msg, false)
	case "delete":
		h.handleDelete(ctx, msg)
	case "days":
		h.handleDays(ctx, msg)
	case "preset":
		h.handlePreset(ctx, msg)
	case "settings":
		h.handleSettings(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command, see /help")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !h.allowed(msg.Chat) {
		log.Printf("Ignoring message from chat %d", msg.Chat.ID)
		return
	}
	h.handleQuickAdd(ctx, msg)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	// Answer callback to remove loading state
	answer := tgbotapi.NewCallback(callback.ID, "")
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
	if callback.Message == nil || !h.allowed(callback.Message.Chat) {
		return
	}

	if rest, ok := strings.CutPrefix(callback.Data, "settings:"); ok {
		h.handleSettingsCallback(ctx, callback, strings.Split(rest, ":"))
		return
	}

	// "confirm:chatID" or "cancel:chatID"
	action, rawID, ok := strings.Cut(callback.Data, ":")
	if !ok {
		return
	}
	chatID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || chatID != callback.Message.Chat.ID {
		return
	}

	draft := h.takePending(chatID)
	if draft == nil {
		h.editMessageText(chatID, callback.Message.MessageID, "⏰ Confirmation expired")
		return
	}

	switch action {
	case "confirm":
		task, err := h.tasks.Add(ctx, draft.Name, draft.Time, draft.ActiveDays)
		if err != nil {
			h.editMessageText(chatID, callback.Message.MessageID, "❌ "+err.Error())
			return
		}
		h.editMessageText(chatID, callback.Message.MessageID, fmt.Sprintf("✅ Added **%s** at %s", format.StripMarkers(task.Name), task.DueTime.Format("15:04")))
	case "cancel":
		h.editMessageText(chatID, callback.Message.MessageID, "❌ Cancelled")
	}
}

func (h *Handlers) editMessageText(chatID int64, messageID int, text string) {
	parsed := format.ParseMarkdown(text)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, parsed.Text)
	edit.Entities = parsed.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	parsed := format.ParseMarkdown(text)
	msg := tgbotapi.NewMessage(chatID, parsed.Text)
	msg.Entities = parsed.Entities
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	name := "there"
	if msg.From != nil && msg.From.FirstName != "" {
		name = msg.From.FirstName
	}
	text := fmt.Sprintf(`👋 Hi %s!

I keep track of the things you do every day and nag you when one is overdue.

Add a task with `+"`/add 08:00 Take pill`"+` or just tell me, for example:
• "take my pill at 8 every weekday"
• "water the plants at 7pm"

Use /help to see every command`, name)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := `📖 **Commands**

**Tasks**
/tasks - list today's tasks
/add HH:MM name - add a daily task
/done n - mark task n done
/undo n - mark task n not done
/delete n - delete task n
/days n 1,3,5 - repeat task n on these weekdays (0 = Sunday)

**Presets**
/preset - list preset bundles
/preset name - replace preset tasks with a bundle
/preset clear - remove preset tasks

**Settings**
/settings - notifications, check frequency, daily reset

💡 You can also just describe the task in plain words.`
	h.sendMessage(msg.Chat.ID, text)
}
