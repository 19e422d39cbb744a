// Package markup formats text for Telegram's MarkdownV2 dialect.
package markup

import "strings"

const specials = "_*[]()~`>#+-=|{}.!\\"

// Escape backslash-escapes every MarkdownV2 special character in text.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 0x80 && strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeURL escapes the characters that terminate an inline-link URL.
func EscapeURL(url string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(url)
}

func Bold(text string) string {
	return "*" + Escape(text) + "*"
}

func Italic(text string) string {
	return "_" + Escape(text) + "_"
}

// Code wraps text in an inline code span. Only backslash and backtick
// are significant inside a span.
func Code(text string) string {
	r := strings.NewReplacer("\\", "\\\\", "`", "\\`")
	return "`" + r.Replace(text) + "`"
}

func Link(text, url string) string {
	return "[" + Escape(text) + "](" + EscapeURL(url) + ")"
}
