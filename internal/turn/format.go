package turn

import (
	"fmt"
	"strings"
	"time"
)

// Preview returns text truncated to max runes for list rendering, with an
// ellipsis appended when truncation occurred.
func Preview(text string, max int) string {
	text = whitespaceRegex.ReplaceAllString(strings.TrimSpace(text), " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// RelativeTime formats a unix-millisecond timestamp relative to now
// ("just now", "5m ago", "3h ago", "2d ago", then an absolute date).
func RelativeTime(millis int64, now time.Time) string {
	t := time.UnixMilli(millis)
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
