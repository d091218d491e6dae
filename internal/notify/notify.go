// Package notify delivers consolidated overdue messages to a chat channel.
package notify

import (
	"context"
	"errors"

	"github.com/hray3182/diditakeit/internal/models"
)

var ErrDisabled = errors.New("notify: delivery disabled")

// Credentials identify one delivery target.
type Credentials struct {
	Token  string `json:"botToken"`
	ChatID string `json:"chatId"`
}

func (c Credentials) Complete() bool {
	return c.Token != "" && c.ChatID != ""
}

// Notifier sends one Markdown message.
type Notifier interface {
	Send(ctx context.Context, creds Credentials, text string) error
}

// Resolve picks the credentials for a delivery. Persisted credentials win
// when both fields are present, otherwise complete session credentials are
// used. Nothing is sent while the settings toggle is off.
func Resolve(persisted models.TelegramSettings, session Credentials) (Credentials, bool) {
	if !persisted.Enabled {
		return Credentials{}, false
	}
	stored := Credentials{Token: persisted.BotToken, ChatID: persisted.ChatID}
	if stored.Complete() {
		return stored, true
	}
	if session.Complete() {
		return session, true
	}
	return Credentials{}, false
}
