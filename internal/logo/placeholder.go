package logo

import (
	"fmt"
	"net/url"
	"strings"
)

// PlaceholderTemplate renders a 200x200 image with the channel name as text.
const PlaceholderTemplate = "https://via.placeholder.com/200x200/1a1a2e/ffffff?text=%s"

// Placeholder returns the deterministic placeholder image URL for a channel.
func Placeholder(channelName string) string {
	text := strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(channelName)), "+", "%20")
	return fmt.Sprintf(PlaceholderTemplate, text)
}
