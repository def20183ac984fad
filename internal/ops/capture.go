package ops

import (
	"os"
	"strings"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/extract"
	"github.com/chatstash/chatstash/internal/turn"
)

// CaptureInput contains parameters for a manual capture request.
type CaptureInput struct {
	HTML      string // raw page HTML; read from HTMLPath when empty
	HTMLPath  string // snapshot file; default: cfg.SnapshotPath
	URL       string // page address; sidecar <path>.url fills it when empty
	Selection string // user text selection (generic fallback response)
	Input     string // focused editable value (generic fallback prompt)
}

// Capture performs one on-demand extraction. It is the CAPTURE_CHAT
// request: the answer is the captured pair, or a visible failure the caller
// can act on (unreachable snapshot, empty capture).
func Capture(cfg *config.Config, input CaptureInput) (*turn.CapturedPair, error) {
	html := input.HTML
	pageURL := input.URL

	if html == "" {
		path := input.HTMLPath
		if path == "" {
			path = cfg.SnapshotPath
		}
		if path == "" {
			// No page at all; the generic fallback may still have content.
			pair := extract.GenericPair(input.Selection, input.Input, pageURL)
			if !pair.Meaningful() {
				return nil, errors.NewEmptyCapture()
			}
			return pair, nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewUnreachable(err)
		}
		html = string(data)

		if pageURL == "" {
			if sidecar, err := os.ReadFile(path + ".url"); err == nil {
				pageURL = strings.TrimSpace(string(sidecar))
			}
		}
	}

	return extract.Capture(html, pageURL, input.Selection, input.Input)
}
