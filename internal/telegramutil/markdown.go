// Package telegramutil has small helpers for composing Telegram messages.
package telegramutil

import "strings"

// The characters the legacy Markdown parse mode treats as formatting.
var markdownEscapes = map[byte]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	'`':  true,
}

// EscapeMarkdown escapes formatting characters so user-controlled text, like
// a group title, cannot break a Markdown reply.
func EscapeMarkdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if markdownEscapes[ch] {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}
