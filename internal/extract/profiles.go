package extract

import "github.com/chatstash/chatstash/internal/turn"

// Profile holds the per-platform selector lists. Each list is ordered: the
// first selector that yields usable content wins, so new fallbacks can be
// added without touching extraction control flow.
type Profile struct {
	Platform turn.Platform

	// Container locates the chat scroll container the watcher observes.
	// Falls back to "body" when none match.
	Container []string

	// User and Assistant locate the message collections, in document order.
	User      []string
	Assistant []string
}

// profiles is the fixed strategy table, selected once at session init.
var profiles = map[turn.Platform]Profile{
	turn.PlatformChatGPT: {
		Platform: turn.PlatformChatGPT,
		Container: []string{
			"main [class*='react-scroll-to-bottom']",
			"main #thread",
			"main",
		},
		User: []string{
			"[data-message-author-role='user']",
			"[data-testid^='conversation-turn'] .whitespace-pre-wrap",
		},
		Assistant: []string{
			"[data-message-author-role='assistant']",
			"[data-testid^='conversation-turn'] .markdown",
			".markdown.prose",
		},
	},
	turn.PlatformGemini: {
		Platform: turn.PlatformGemini,
		Container: []string{
			"#chat-history",
			"chat-window",
			"main",
		},
		User: []string{
			"user-query .query-text",
			".query-text",
			"user-query",
		},
		Assistant: []string{
			"model-response .model-response-text",
			".model-response-text",
			"message-content",
		},
	},
	turn.PlatformClaude: {
		Platform: turn.PlatformClaude,
		User: []string{
			"[data-testid='user-message']",
			".font-user-message",
		},
		Assistant: []string{
			"[data-is-streaming] .font-claude-message",
			".font-claude-message",
			"[data-testid='assistant-message']",
		},
		Container: []string{
			"[data-test-render-count]",
			"main .overflow-y-auto",
			"main",
		},
	},
}

// ProfileFor returns the selector profile for a supported platform.
func ProfileFor(p turn.Platform) (Profile, bool) {
	prof, ok := profiles[p]
	return prof, ok
}
