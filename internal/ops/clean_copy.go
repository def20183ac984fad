package ops

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// CleanCopyInput contains parameters for the CleanCopy operation.
type CleanCopyInput struct {
	Selection string
	SkipCopy  bool // return the cleaned text without touching the clipboard
}

// CleanCopyOutput contains the result of the CleanCopy operation.
type CleanCopyOutput struct {
	Text   string `json:"text"`
	Copied bool   `json:"copied"`
}

// CleanCopy strips decoration from the selected text and places the result
// on the clipboard. Both failure modes are user-visible: no selection, and
// a rejected clipboard write.
func CleanCopy(input CleanCopyInput) (*CleanCopyOutput, error) {
	if strings.TrimSpace(input.Selection) == "" {
		return nil, errors.NewInvalidRequest("no text selected")
	}

	cleaned := turn.CleanDecor(input.Selection)
	if cleaned == "" {
		return nil, errors.NewInvalidRequest("selection contains no text after cleanup")
	}

	if input.SkipCopy {
		return &CleanCopyOutput{Text: cleaned}, nil
	}

	if err := clipboardWrite(cleaned); err != nil {
		return nil, errors.NewClipboard(err)
	}
	return &CleanCopyOutput{Text: cleaned, Copied: true}, nil
}
