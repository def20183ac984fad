// Package extract locates the latest prompt/response pair inside a chat
// page snapshot. Platform detection, selector fallbacks, debounced watching,
// and duplicate suppression live here.
package extract

import (
	"net/url"
	"strings"

	"github.com/chatstash/chatstash/internal/turn"
)

// hostPlatforms maps exact hostnames to platform labels. No partial matches,
// no wildcard subdomains beyond this fixed list.
var hostPlatforms = map[string]turn.Platform{
	"chatgpt.com":       turn.PlatformChatGPT,
	"chat.openai.com":   turn.PlatformChatGPT,
	"gemini.google.com": turn.PlatformGemini,
	"claude.ai":         turn.PlatformClaude,
}

// DetectHost classifies a hostname. supported is false for any host outside
// the fixed set; such pages get no automatic capture, only the generic
// manual fallback.
func DetectHost(host string) (platform turn.Platform, supported bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	// Strip a port if present; hostnames in the set never carry one.
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	if p, ok := hostPlatforms[host]; ok {
		return p, true
	}
	return turn.PlatformUnknown, false
}

// DetectURL classifies a full page address.
func DetectURL(pageURL string) (turn.Platform, bool) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return turn.PlatformUnknown, false
	}
	return DetectHost(u.Hostname())
}
