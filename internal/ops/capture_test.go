package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chatstash/chatstash/internal/config"
	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

const capturePage = `<html><body><main>
  <div data-message-author-role="user">what is iota?</div>
  <div data-message-author-role="assistant">A Go identifier for successive constants.</div>
</main></body></html>`

func TestCaptureFromRawHTML(t *testing.T) {
	cfg := config.DefaultConfig()

	pair, err := Capture(cfg, CaptureInput{HTML: capturePage, URL: "https://chatgpt.com/c/9"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if pair.Prompt != "what is iota?" {
		t.Errorf("Prompt = %q", pair.Prompt)
	}
	if pair.Platform != turn.PlatformChatGPT {
		t.Errorf("Platform = %q", pair.Platform)
	}
}

func TestCaptureFromSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(capturePage), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(path+".url", []byte("https://chatgpt.com/c/9"), 0600); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	cfg := config.DefaultConfig()
	pair, err := Capture(cfg, CaptureInput{HTMLPath: path})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if pair.Response != "A Go identifier for successive constants." {
		t.Errorf("Response = %q", pair.Response)
	}
	if pair.URL != "https://chatgpt.com/c/9" {
		t.Errorf("URL = %q, want sidecar value", pair.URL)
	}
}

func TestCaptureSnapshotPathFromConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte(capturePage), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.SnapshotPath = path

	pair, err := Capture(cfg, CaptureInput{URL: "https://chatgpt.com/c/9"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if pair.Prompt != "what is iota?" {
		t.Errorf("Prompt = %q", pair.Prompt)
	}
}

func TestCaptureMissingSnapshotIsUnreachable(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := Capture(cfg, CaptureInput{HTMLPath: filepath.Join(t.TempDir(), "gone.html")})
	if !errors.Is(err, errors.ErrUnreachable) {
		t.Errorf("err = %v, want UNREACHABLE", err)
	}
}

func TestCaptureSelectionOnlyWithoutPage(t *testing.T) {
	cfg := config.DefaultConfig()

	pair, err := Capture(cfg, CaptureInput{Selection: "copied text", URL: "https://example.com/"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if pair.Response != "copied text" || pair.Prompt != turn.Sentinel {
		t.Errorf("pair = %+v", pair)
	}
}

func TestCaptureNothingAnywhere(t *testing.T) {
	cfg := config.DefaultConfig()

	if _, err := Capture(cfg, CaptureInput{}); !errors.Is(err, errors.ErrEmptyCapture) {
		t.Errorf("err = %v, want EMPTY_CAPTURE", err)
	}
}
