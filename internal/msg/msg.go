// Package msg carries the cross-component messages. Two distinct kinds
// exist: requests, which travel with an explicit reply channel, and
// notices, which are fire-and-forget. Handlers run one at a time on the
// bus goroutine, so each one is a single uninterrupted task turn. Two
// back-to-back requests are still not atomic as a pair.
package msg

import (
	"context"
	"fmt"
	"sync"

	"github.com/chatstash/chatstash/internal/errors"
	"github.com/chatstash/chatstash/internal/turn"
)

// Type identifies a message.
type Type string

const (
	// TypeCaptureChat requests an on-demand extraction; the response is a
	// captured pair or a failure.
	TypeCaptureChat Type = "CAPTURE_CHAT"

	// TypeSaveChat requests persisting a pair into a folder; the response
	// is an acknowledgment.
	TypeSaveChat Type = "SAVE_CHAT"

	// TypeCopyCleanSelection asks for a decor-stripped clipboard copy of
	// the current selection. No response; failures surface out-of-band.
	TypeCopyCleanSelection Type = "COPY_CLEAN_SELECTION"
)

// CapturePayload carries the generic-fallback inputs of a capture request.
type CapturePayload struct {
	Selection string `json:"selection,omitempty"`
	Input     string `json:"input,omitempty"`
}

// SavePayload is the SAVE_CHAT request body.
type SavePayload struct {
	Prompt   string        `json:"prompt"`
	Response string        `json:"response"`
	URL      string        `json:"url"`
	Platform turn.Platform `json:"platform"`
	Folder   string        `json:"folder,omitempty"`
}

// CleanPayload is the COPY_CLEAN_SELECTION notice body.
type CleanPayload struct {
	Selection string `json:"selection"`
}

// RequestHandler answers one request type.
type RequestHandler func(ctx context.Context, payload any) (any, error)

// NoticeHandler consumes one notice type.
type NoticeHandler func(payload any)

// result travels back on a request's reply channel.
type result struct {
	payload any
	err     error
}

// envelope is one queued message. A nil reply marks a notice.
type envelope struct {
	typ     Type
	payload any
	reply   chan result
}

// Bus dispatches messages to registered handlers, one at a time.
type Bus struct {
	mu       sync.Mutex
	requests map[Type]RequestHandler
	notices  map[Type]NoticeHandler
	queue    chan envelope
}

// NewBus creates an idle bus; call Run to start dispatching.
func NewBus() *Bus {
	return &Bus{
		requests: make(map[Type]RequestHandler),
		notices:  make(map[Type]NoticeHandler),
		queue:    make(chan envelope, 16),
	}
}

// HandleRequest registers the responder for a request type.
func (b *Bus) HandleRequest(t Type, h RequestHandler) {
	b.mu.Lock()
	b.requests[t] = h
	b.mu.Unlock()
}

// HandleNotice registers the consumer for a notice type.
func (b *Bus) HandleNotice(t Type, h NoticeHandler) {
	b.mu.Lock()
	b.notices[t] = h
	b.mu.Unlock()
}

// Run dispatches queued messages until ctx is cancelled.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.queue:
			b.dispatch(ctx, env)
		}
	}
}

// dispatch runs one handler to completion.
func (b *Bus) dispatch(ctx context.Context, env envelope) {
	if env.reply == nil {
		b.mu.Lock()
		h := b.notices[env.typ]
		b.mu.Unlock()
		if h != nil {
			h(env.payload)
		}
		return
	}

	b.mu.Lock()
	h := b.requests[env.typ]
	b.mu.Unlock()
	if h == nil {
		env.reply <- result{err: errors.NewUnreachable(fmt.Errorf("no handler for %s", env.typ))}
		return
	}
	payload, err := h(ctx, env.payload)
	env.reply <- result{payload: payload, err: err}
}

// Send issues a request and waits for its response.
func (b *Bus) Send(ctx context.Context, t Type, payload any) (any, error) {
	reply := make(chan result, 1)
	select {
	case b.queue <- envelope{typ: t, payload: payload, reply: reply}:
	case <-ctx.Done():
		return nil, errors.NewUnreachable(ctx.Err())
	}

	select {
	case res := <-reply:
		return res.payload, res.err
	case <-ctx.Done():
		return nil, errors.NewUnreachable(ctx.Err())
	}
}

// Notify enqueues a fire-and-forget notice.
func (b *Bus) Notify(ctx context.Context, t Type, payload any) error {
	select {
	case b.queue <- envelope{typ: t, payload: payload}:
		return nil
	case <-ctx.Done():
		return errors.NewUnreachable(ctx.Err())
	}
}
