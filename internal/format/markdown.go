package format

import (
	"regexp"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseResult contains plain text and message entities
type ParseResult struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

var (
	headerRe = regexp.MustCompile(`(?m)^#{1,6}\s+(.+?)$`)
	boldRe   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	codeRe   = regexp.MustCompile("`([^`]+?)`")
	markerRe = regexp.MustCompile("\\*\\*|`")
)

// UTF16Len calculates the UTF-16 length of a string.
// Telegram measures entity offsets and lengths in UTF-16 code units.
func UTF16Len(s string) int {
	length := 0
	for _, b := range []byte(s) {
		if (b & 0xc0) != 0x80 {
			if b >= 0xf0 {
				length += 2 // surrogate pair
			} else {
				length += 1
			}
		}
	}
	return length
}

// ParseMarkdown converts the small Markdown subset used in outgoing
// messages into Telegram entities:
//   - **bold** -> bold
//   - `code` -> code
//   - # Header -> bold
func ParseMarkdown(text string) ParseResult {
	result := headerRe.ReplaceAllString(text, "**$1**")

	var entities []tgbotapi.MessageEntity
	extract := func(re *regexp.Regexp, kind string) {
		for {
			loc := re.FindStringSubmatchIndex(result)
			if loc == nil {
				return
			}
			inner := result[loc[2]:loc[3]]
			start := UTF16Len(result[:loc[0]])
			width := UTF16Len(inner)
			open := UTF16Len(result[loc[0]:loc[2]])
			closing := UTF16Len(result[loc[3]:loc[1]])

			// Entities found by an earlier pass that sit inside or after
			// this match move left by the removed markers.
			for i := range entities {
				switch {
				case entities[i].Offset >= start+open+width+closing:
					entities[i].Offset -= open + closing
				case entities[i].Offset >= start+open:
					entities[i].Offset -= open
				}
			}
			entities = append(entities, tgbotapi.MessageEntity{Type: kind, Offset: start, Length: width})
			result = result[:loc[0]] + inner + result[loc[1]:]
		}
	}
	extract(boldRe, "bold")
	extract(codeRe, "code")

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].Offset < entities[j].Offset
	})

	return ParseResult{
		Text:     strings.TrimRight(result, " \n"),
		Entities: entities,
	}
}

// StripMarkers removes Markdown markers from user-supplied text so it can
// be embedded in a message without opening stray entities.
func StripMarkers(s string) string {
	return markerRe.ReplaceAllString(s, "")
}
