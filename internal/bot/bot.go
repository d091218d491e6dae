package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/diditakeit/internal/ai"
	"github.com/hray3182/diditakeit/internal/bot/handlers"
	"github.com/hray3182/diditakeit/internal/models"
	"github.com/hray3182/diditakeit/internal/repository"
	"github.com/hray3182/diditakeit/internal/tasks"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers *handlers.Handlers
}

// New connects to the Bot API. Only chatID may talk to the bot when it is set.
func New(token, endpoint string, svc *tasks.Service, settings *repository.SettingsRepository, aiClient *ai.Client, chatID string) (*Bot, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:      api,
		handlers: handlers.New(api, svc, settings, aiClient, chatID),
	}, nil
}

// API exposes the authorized client so outbound notifications can share it.
func (b *Bot) API() *tgbotapi.BotAPI {
	return b.api
}

// OnSettingsChange is called after a settings edit made through the bot.
func (b *Bot) OnSettingsChange(fn func(models.Settings)) {
	b.handlers.OnSettingsChange(fn)
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handlers.HandleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	// Handle commands
	if update.Message.IsCommand() {
		b.handlers.HandleCommand(ctx, update.Message)
		return
	}

	b.handlers.HandleMessage(ctx, update.Message)
}
