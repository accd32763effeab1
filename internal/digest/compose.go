package digest

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"rss_digest/internal/model"
)

// The transport renders HTML, so feed-provided text is stripped of markup
// and escaped before it is embedded.
var sanitizer = bluemonday.StrictPolicy()

// Compose renders the digest for dateKey. At most maxItems items are listed;
// the rest are summarized in a trailing notice. maxItems <= 0 lists all.
func Compose(dateKey string, items []model.DigestItem, maxItems int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📬 <b>Promotions digest</b> (%s)\n", dateKey)

	if len(items) == 0 {
		b.WriteString("\nNo relevant promotions found today.")
		return b.String()
	}

	fmt.Fprintf(&b, "Total: %d\n", len(items))

	shown := items
	if maxItems > 0 && len(items) > maxItems {
		shown = items[:maxItems]
	}
	for i, it := range shown {
		fmt.Fprintf(&b, "\n%d) %s\n", i+1, sanitizer.Sanitize(it.Title))
		if it.Link != "" {
			b.WriteString(sanitizer.Sanitize(it.Link))
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "<i>Source: %s</i>\n", sanitizer.Sanitize(it.Source))
	}

	if omitted := len(items) - len(shown); omitted > 0 {
		fmt.Fprintf(&b, "\n… and %d more items not shown.", omitted)
	}
	return b.String()
}

// OnlineNotice is the message sent once when the daemon starts.
func OnlineNotice(s Schedule, feeds int) string {
	return fmt.Sprintf("✅ <b>RSS digest bot is online.</b>\nWatching %d feeds; the daily digest goes out at %s.", feeds, s)
}
