// Package sanitize cleans user-submitted text before it is stored:
// sensitive words are masked first, then the text is normalized and
// HTML-escaped so it is safe to render verbatim.
package sanitize

import "strings"

// MaxContentLength is the longest text accepted after normalization.
const MaxContentLength = 2000

// sensitiveWords is the denylist applied to all user text. Matches are
// replaced with asterisks of the same length.
var sensitiveWords = []string{
	"暴力", "色情", "赌博", "笨蛋", "傻瓜", "垃圾", "死", "杀",
}

// MaskSensitiveWords replaces every occurrence of a denylisted word
// with a run of '*' of equal rune length.
func MaskSensitiveWords(s string) string {
	for _, w := range sensitiveWords {
		if strings.Contains(s, w) {
			s = strings.ReplaceAll(s, w, strings.Repeat("*", len([]rune(w))))
		}
	}
	return s
}

// ContainsSensitiveWord reports whether the text matches the denylist.
func ContainsSensitiveWord(s string) bool {
	for _, w := range sensitiveWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// PlainText normalizes and escapes text for storage as display-safe
// plain text: NUL bytes removed, line endings collapsed to \n, length
// capped at MaxContentLength runes, HTML metacharacters escaped, and
// control characters other than newline and tab dropped.
func PlainText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	runes := []rune(s)
	if len(runes) > MaxContentLength {
		runes = runes[:MaxContentLength]
	}

	var b strings.Builder
	b.Grow(len(runes))
	for _, r := range runes {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		case '\n', '\t':
			b.WriteRune(r)
		default:
			if r < 0x20 || r == 0x7f {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Content applies the full pipeline used for comments and messages:
// sensitive-word masking, then plain-text normalization. Order
// matters: masking must see the raw text before escaping.
func Content(s string) string {
	return PlainText(MaskSensitiveWords(s))
}
