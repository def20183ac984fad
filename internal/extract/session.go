package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// Sink receives each freshly extracted, non-duplicate pair.
type Sink func(pair *turn.CapturedPair)

// Session watches one page source and extracts the latest turn after each
// quiet period. All watcher state (duplicate filter, pending timers) lives
// on the session and is torn down with it; nothing leaks across page
// lifetimes.
type Session struct {
	src      Source
	sink     Sink
	debounce time.Duration
	retry    time.Duration

	platform  turn.Platform
	supported bool
	prof      Profile
	pageURL   string

	mu           sync.Mutex
	lastResponse string

	recheck   chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// NewSession classifies the source's page and prepares a watcher session.
// The platform strategy is selected once here. An unsupported page still
// yields a usable session for manual capture; only Run refuses it.
func NewSession(ctx context.Context, src Source, sink Sink, debounce, retry time.Duration) (*Session, error) {
	_, pageURL, err := src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	platform, supported := DetectURL(pageURL)
	s := &Session{
		src:       src,
		sink:      sink,
		debounce:  debounce,
		retry:     retry,
		platform:  platform,
		supported: supported,
		pageURL:   pageURL,
		recheck:   make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
	if supported {
		s.prof, _ = ProfileFor(platform)
	}
	return s, nil
}

// Platform returns the detected platform label.
func (s *Session) Platform() turn.Platform { return s.platform }

// Supported reports whether automatic capture is available for this page.
func (s *Session) Supported() bool { return s.supported }

// PageURL returns the page address seen at session init.
func (s *Session) PageURL() string { return s.pageURL }

// Run watches the source until ctx is cancelled or the source closes.
// Every change signal resets the single debounce timer; extraction happens
// only once the timer fires with no further changes, coalescing streaming
// updates into one extraction per completed turn.
func (s *Session) Run(ctx context.Context) error {
	if !s.supported {
		return errors.NewInvalidRequest(fmt.Sprintf("automatic capture is disabled for unsupported page %q", s.pageURL))
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	changes := s.src.Changes()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closed:
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			stopTimer()
			timer = time.NewTimer(s.debounce)
			timerC = timer.C
		case <-timerC:
			stopTimer()
			s.fire(ctx)
		case <-s.recheck:
			s.fire(ctx)
		}
	}
}

// fire snapshots the page and attempts one extraction. Detection failures
// are absorbed silently: an unreadable page or missing container is retried
// on a fixed delay, a not-ready extraction waits for the next change.
func (s *Session) fire(ctx context.Context) {
	html, pageURL, err := s.src.Snapshot(ctx)
	if err != nil {
		s.scheduleRecheck()
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	if !HasContainer(doc, s.prof) {
		s.scheduleRecheck()
		return
	}

	pair, err := Pair(doc, s.prof, pageURL)
	if err != nil {
		return
	}

	s.mu.Lock()
	if pair.Response == s.lastResponse {
		s.mu.Unlock()
		return
	}
	s.lastResponse = pair.Response
	s.mu.Unlock()

	s.sink(pair)
}

// scheduleRecheck arms one container-retry tick.
func (s *Session) scheduleRecheck() {
	time.AfterFunc(s.retry, func() {
		select {
		case <-s.closed:
		case s.recheck <- struct{}{}:
		default:
		}
	})
}

// Capture performs a manual extraction and returns the result directly,
// bypassing the duplicate filter: an explicit request always answers.
func (s *Session) Capture(ctx context.Context, selection, input string) (*turn.CapturedPair, error) {
	html, pageURL, err := s.src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Capture(html, pageURL, selection, input)
}

// Reset clears the duplicate filter, as a page reload would.
func (s *Session) Reset() {
	s.mu.Lock()
	s.lastResponse = ""
	s.mu.Unlock()
}

// Close tears the session down and closes the underlying source.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.src.Close()
	})
	return err
}
