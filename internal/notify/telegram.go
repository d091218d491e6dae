package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/diditakeit/internal/format"
)

// Telegram delivers messages through the Bot API. One client is kept per
// token so the getMe handshake runs once.
type Telegram struct {
	endpoint string
	client   *http.Client

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

// NewTelegram creates a notifier. An empty endpoint selects the public Bot
// API; timeout bounds every HTTP round trip.
func NewTelegram(endpoint string, timeout time.Duration) *Telegram {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return &Telegram{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		bots:     make(map[string]*tgbotapi.BotAPI),
	}
}

// UseBot registers an already authorized client, e.g. the one the
// interactive bot runs on.
func (t *Telegram) UseBot(api *tgbotapi.BotAPI) {
	t.mu.Lock()
	t.bots[api.Token] = api
	t.mu.Unlock()
}

func (t *Telegram) bot(token string) (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if api, ok := t.bots[token]; ok {
		return api, nil
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, t.endpoint, t.client)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	t.bots[token] = api
	return api, nil
}

func (t *Telegram) Send(ctx context.Context, creds Credentials, text string) error {
	if !creds.Complete() {
		return ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	api, err := t.bot(creds.Token)
	if err != nil {
		return err
	}

	parsed := format.ParseMarkdown(text)
	var msg tgbotapi.MessageConfig
	if strings.HasPrefix(creds.ChatID, "@") {
		msg = tgbotapi.NewMessageToChannel(creds.ChatID, parsed.Text)
	} else {
		chatID, err := strconv.ParseInt(creds.ChatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q: %w", creds.ChatID, err)
		}
		msg = tgbotapi.NewMessage(chatID, parsed.Text)
	}
	msg.Entities = parsed.Entities

	if _, err := api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
