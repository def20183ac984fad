package extract

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chatstash/chatstash/internal/errors"
)

// Source provides page snapshots and change notifications. It stands in for
// the live DOM: a change notification corresponds to a subtree mutation and
// feeds the session's debounce timer.
type Source interface {
	// Snapshot returns the current page HTML and its address.
	Snapshot(ctx context.Context) (html string, pageURL string, err error)

	// Changes delivers a signal per observed page change. The channel is
	// closed when the source shuts down.
	Changes() <-chan struct{}

	Close() error
}

// FileSource watches an HTML snapshot file mirrored to disk. Write events
// on the file are change signals.
type FileSource struct {
	path      string
	pageURL   string
	watcher   *fsnotify.Watcher
	changes   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewFileSource creates a source over the snapshot file at path. If pageURL
// is empty, a sidecar file at path+".url" supplies the page address when
// present. The file's directory is watched so atomic replaces are seen.
func NewFileSource(path, pageURL string) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewUnreachable(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewUnreachable(err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.NewUnreachable(err)
	}

	fs := &FileSource{
		path:    abs,
		pageURL: pageURL,
		watcher: watcher,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	// Prime one change so the watcher extracts the initial page state.
	fs.changes <- struct{}{}

	go fs.relay()
	return fs, nil
}

// relay forwards write/create events on the snapshot file as change signals.
func (fs *FileSource) relay() {
	defer close(fs.changes)
	for {
		select {
		case <-fs.done:
			return
		case event, ok := <-fs.watcher.Events:
			if !ok {
				return
			}
			if event.Name != fs.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case fs.changes <- struct{}{}:
			default:
				// A signal is already pending; coalesce.
			}
		case _, ok := <-fs.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Snapshot reads the current file contents.
func (fs *FileSource) Snapshot(ctx context.Context) (string, string, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return "", "", errors.NewUnreachable(err)
	}

	pageURL := fs.pageURL
	if pageURL == "" {
		if sidecar, err := os.ReadFile(fs.path + ".url"); err == nil {
			pageURL = strings.TrimSpace(string(sidecar))
		}
	}
	return string(data), pageURL, nil
}

// Changes implements Source.
func (fs *FileSource) Changes() <-chan struct{} { return fs.changes }

// Close stops the watcher. Safe to call more than once; both the session
// and its caller may close the source on the way out.
func (fs *FileSource) Close() error {
	var err error
	fs.closeOnce.Do(func() {
		close(fs.done)
		err = fs.watcher.Close()
	})
	return err
}

// HTTPSource polls a page endpoint and signals a change whenever the body
// hash differs from the previous poll.
type HTTPSource struct {
	pageURL   string
	interval  time.Duration
	client    *http.Client
	changes   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewHTTPSource creates a polling source for the page at pageURL.
func NewHTTPSource(pageURL string, interval time.Duration) *HTTPSource {
	hs := &HTTPSource{
		pageURL:  pageURL,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go hs.poll()
	return hs
}

// poll fetches on a ticker and emits a change when the content hash moves.
func (hs *HTTPSource) poll() {
	defer close(hs.changes)

	ticker := time.NewTicker(hs.interval)
	defer ticker.Stop()

	var lastHash [sha256.Size]byte
	for {
		select {
		case <-hs.done:
			return
		case <-ticker.C:
			body, err := hs.fetch(context.Background())
			if err != nil {
				continue // transient; next tick retries
			}
			hash := sha256.Sum256(body)
			if hash == lastHash {
				continue
			}
			lastHash = hash
			select {
			case hs.changes <- struct{}{}:
			default:
			}
		}
	}
}

// fetch retrieves the page body.
func (hs *HTTPSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hs.pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hs.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// An error page is not page content; hashing it would register a
		// phantom change.
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, hs.pageURL)
	}
	return io.ReadAll(resp.Body)
}

// Snapshot fetches the current page HTML.
func (hs *HTTPSource) Snapshot(ctx context.Context) (string, string, error) {
	body, err := hs.fetch(ctx)
	if err != nil {
		return "", "", errors.NewUnreachable(err)
	}
	return string(body), hs.pageURL, nil
}

// Changes implements Source.
func (hs *HTTPSource) Changes() <-chan struct{} { return hs.changes }

// Close stops polling. Safe to call more than once.
func (hs *HTTPSource) Close() error {
	hs.closeOnce.Do(func() {
		close(hs.done)
	})
	return nil
}
