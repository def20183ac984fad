package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// lastText runs the ordered selector list against the document and returns
// the trimmed text of the last element of the first selector that yields
// non-empty content. matched reports whether any selector matched elements
// at all, which distinguishes "collection missing" from "present but blank".
func lastText(doc *goquery.Document, selectors []string) (text string, matched bool) {
	for _, sel := range selectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		matched = true
		if t := strings.TrimSpace(nodes.Last().Text()); t != "" {
			return t, true
		}
	}
	return "", matched
}

// HasContainer reports whether any of the profile's chat-container selectors
// resolves on the document. The watcher retries until this holds.
func HasContainer(doc *goquery.Document, prof Profile) bool {
	for _, sel := range prof.Container {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	// Document body is the last-resort container.
	return doc.Find("body").Length() > 0
}

// Pair extracts the most recent prompt/response pair using the profile's
// selectors. It returns NOT_READY when no assistant message exists yet or
// the last one is still blank (streaming); that is "try again later", not a
// hard failure. A prompt whose selectors all fail is reported as the
// sentinel rather than failing the extraction.
func Pair(doc *goquery.Document, prof Profile, pageURL string) (*turn.CapturedPair, error) {
	response, matched := lastText(doc, prof.Assistant)
	if response == "" {
		if matched {
			return nil, errors.NewNotReady("last assistant message is empty (still streaming?)")
		}
		return nil, errors.NewNotReady("no assistant messages on page")
	}

	prompt, _ := lastText(doc, prof.User)
	if prompt == "" {
		prompt = turn.Sentinel
	}

	return &turn.CapturedPair{
		Prompt:   prompt,
		Response: response,
		Platform: prof.Platform,
		URL:      pageURL,
	}, nil
}

// GenericPair is the best-effort fallback for unsupported pages: the
// caller-supplied selection becomes the response and the caller-supplied
// input value becomes the prompt, each defaulting to the sentinel.
func GenericPair(selection, input, pageURL string) *turn.CapturedPair {
	response := strings.TrimSpace(selection)
	if response == "" {
		response = turn.Sentinel
	}
	prompt := strings.TrimSpace(input)
	if prompt == "" {
		prompt = turn.Sentinel
	}
	return &turn.CapturedPair{
		Prompt:   prompt,
		Response: response,
		Platform: turn.PlatformUnknown,
		URL:      pageURL,
	}
}

// Capture performs one manual extraction over raw page HTML. Supported
// platforms use their selector profile; anything else falls back to
// GenericPair. A capture with no detected content at all is an
// EMPTY_CAPTURE error, since manual capture is an explicit user action
// that deserves a visible answer.
func Capture(html, pageURL, selection, input string) (*turn.CapturedPair, error) {
	platform, supported := DetectURL(pageURL)

	if !supported {
		pair := GenericPair(selection, input, pageURL)
		if !pair.Meaningful() {
			return nil, errors.NewEmptyCapture()
		}
		return pair, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	prof, _ := ProfileFor(platform)
	pair, err := Pair(doc, prof, pageURL)
	if err != nil {
		if errors.Is(err, errors.ErrNotReady) {
			return nil, errors.NewEmptyCapture()
		}
		return nil, err
	}
	return pair, nil
}
