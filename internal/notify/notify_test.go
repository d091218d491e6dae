package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hray3182/diditakeit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	session := Credentials{Token: "session-token", ChatID: "42"}

	tests := []struct {
		name      string
		persisted models.TelegramSettings
		session   Credentials
		want      Credentials
		ok        bool
	}{
		{
			name:      "toggle off",
			persisted: models.TelegramSettings{BotToken: "t", ChatID: "1"},
			session:   session,
		},
		{
			name:      "persisted wins",
			persisted: models.TelegramSettings{BotToken: "t", ChatID: "1", Enabled: true},
			session:   session,
			want:      Credentials{Token: "t", ChatID: "1"},
			ok:        true,
		},
		{
			name:      "partial persisted falls back to session",
			persisted: models.TelegramSettings{BotToken: "t", Enabled: true},
			session:   session,
			want:      session,
			ok:        true,
		},
		{
			name:      "nothing complete",
			persisted: models.TelegramSettings{ChatID: "1", Enabled: true},
			session:   Credentials{Token: "only-token"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.persisted, tt.session)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeBotAPI struct {
	mu      sync.Mutex
	getMe   int
	payload []map[string]string
}

func (f *fakeBotAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")

		f.mu.Lock()
		defer f.mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			f.getMe++
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"diditakeit_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			f.payload = append(f.payload, map[string]string{
				"chat_id":  r.Form.Get("chat_id"),
				"text":     r.Form.Get("text"),
				"entities": r.Form.Get("entities"),
			})
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}
}

func TestTelegramSend(t *testing.T) {
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tg := NewTelegram(srv.URL+"/bot%s/%s", time.Second)
	creds := Credentials{Token: "123:abc", ChatID: "42"}

	require.NoError(t, tg.Send(context.Background(), creds, "⏰ **Overdue task**\n\n**Take pill** - due 08:00"))
	require.NoError(t, tg.Send(context.Background(), Credentials{Token: "123:abc", ChatID: "@family"}, "hi"))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 1, fake.getMe)
	require.Len(t, fake.payload, 2)
	assert.Equal(t, "42", fake.payload[0]["chat_id"])
	assert.Equal(t, "⏰ Overdue task\n\nTake pill - due 08:00", fake.payload[0]["text"])
	assert.Contains(t, fake.payload[0]["entities"], `"bold"`)
	assert.Equal(t, "@family", fake.payload[1]["chat_id"])
}

func TestTelegramSendRejectsBadChatID(t *testing.T) {
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tg := NewTelegram(srv.URL+"/bot%s/%s", time.Second)
	err := tg.Send(context.Background(), Credentials{Token: "123:abc", ChatID: "family"}, "hi")
	assert.Error(t, err)
}

func TestTelegramSendIncompleteCredentials(t *testing.T) {
	tg := NewTelegram("", time.Second)
	err := tg.Send(context.Background(), Credentials{Token: "t"}, "hi")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Send(context.Background(), Credentials{Token: "t", ChatID: "1"}, "a"))
	assert.Len(t, r.Messages(), 1)
	assert.Equal(t, "a", r.Messages()[0].Text)

	r.Err = assert.AnError
	assert.ErrorIs(t, r.Send(context.Background(), Credentials{}, "b"), assert.AnError)
	assert.Len(t, r.Messages(), 1)
}
