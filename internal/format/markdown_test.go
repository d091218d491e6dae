package format

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 2, UTF16Len("⏰ "))
	assert.Equal(t, 2, UTF16Len("😀"))
}

func TestParseMarkdownBold(t *testing.T) {
	got := ParseMarkdown("⏰ **Overdue task**\n\n**Take pill** - due 08:00")

	assert.Equal(t, "⏰ Overdue task\n\nTake pill - due 08:00", got.Text)
	assert.Equal(t, []tgbotapi.MessageEntity{
		{Type: "bold", Offset: 2, Length: 12},
		{Type: "bold", Offset: 16, Length: 9},
	}, got.Entities)
}

func TestParseMarkdownCodeBeforeBold(t *testing.T) {
	got := ParseMarkdown("`/add` then **bold**")

	assert.Equal(t, "/add then bold", got.Text)
	assert.Equal(t, []tgbotapi.MessageEntity{
		{Type: "code", Offset: 0, Length: 4},
		{Type: "bold", Offset: 10, Length: 4},
	}, got.Entities)
}

func TestParseMarkdownHeader(t *testing.T) {
	got := ParseMarkdown("# Help\ntext\n")

	assert.Equal(t, "Help\ntext", got.Text)
	assert.Equal(t, []tgbotapi.MessageEntity{{Type: "bold", Offset: 0, Length: 4}}, got.Entities)
}

func TestParseMarkdownPlain(t *testing.T) {
	got := ParseMarkdown("nothing to see")
	assert.Equal(t, "nothing to see", got.Text)
	assert.Empty(t, got.Entities)
}

func TestStripMarkers(t *testing.T) {
	assert.Equal(t, "bold code", StripMarkers("**bold** `code`"))
	assert.Equal(t, "a*b", StripMarkers("a*b"))
}
