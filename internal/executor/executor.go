// Package executor sends the capabilities attached to notification surfaces,
// re-checking the index immediately before every send.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pders01/justtype/internal/capability"
	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/notify"
)

// NoAction asks Validate to check liveness only.
const NoAction = -1

var (
	// ErrActionIndexOutOfRange is the cause when an action index does not
	// address an action of the current surface.
	ErrActionIndexOutOfRange = errors.New("action index out of range")
	// ErrNoOpenAction is the cause when a live surface has no open handle.
	ErrNoOpenAction = errors.New("notification has no open action")
)

// Source looks up the current state of a notification.
type Source interface {
	Get(key string) (notify.Surface, bool)
}

// Executor runs notification actions.
type Executor struct {
	source  Source
	timeout time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds every send. Zero means no bound beyond the caller's ctx.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// New returns an executor reading from source.
func New(source Source, opts ...Option) *Executor {
	e := &Executor{source: source}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecuteOpen sends the open capability of a live notification.
func (e *Executor) ExecuteOpen(ctx context.Context, key string) Result {
	s, res := e.live(key)
	if res != nil {
		return res
	}
	if s.Open == nil {
		return e.fail(key, Error{Message: "cannot open notification", Cause: ErrNoOpenAction})
	}
	return e.send(ctx, key, s.Open, nil)
}

// ExecuteAction sends action index of a live notification. Text is attached
// only when the action accepts input and text is non-empty.
func (e *Executor) ExecuteAction(ctx context.Context, key string, index int, text string) Result {
	s, res := e.live(key)
	if res != nil {
		return res
	}
	if index < 0 || index >= len(s.Actions) {
		return e.fail(key, Error{
			Message: fmt.Sprintf("action %d of %d", index, len(s.Actions)),
			Cause:   ErrActionIndexOutOfRange,
		})
	}

	action := s.Actions[index]
	if action.Handle == nil {
		return e.fail(key, Error{Message: fmt.Sprintf("action %q has no handle", action.Title)})
	}
	var payload *capability.Payload
	if action.Input != nil && text != "" {
		payload = &capability.Payload{ResultKey: action.Input.ResultKey, Text: text}
	}
	return e.send(ctx, key, action.Handle, payload)
}

// Validate reports what executing would currently find, without sending
// anything. Pass NoAction to check liveness only.
func (e *Executor) Validate(key string, index int) Result {
	s, res := e.live(key)
	if res != nil {
		return res
	}
	if index == NoAction {
		return Success{}
	}
	if index < 0 || index >= len(s.Actions) {
		return Error{Message: fmt.Sprintf("action %d of %d", index, len(s.Actions)), Cause: ErrActionIndexOutOfRange}
	}
	return Success{}
}

// live fetches key and returns a non-nil Result if it cannot be acted on.
func (e *Executor) live(key string) (notify.Surface, Result) {
	if e.source == nil {
		return notify.Surface{}, NotificationDismissed{Key: key}
	}
	s, ok := e.source.Get(key)
	if !ok || !s.Live {
		debuglog.Debugf("notification %s no longer live", key)
		return notify.Surface{}, NotificationDismissed{Key: key}
	}
	return s, nil
}

func (e *Executor) send(ctx context.Context, key string, h capability.Handle, payload *capability.Payload) (res Result) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			res = e.fail(key, Error{Message: "capability panicked", Cause: fmt.Errorf("panic: %v", r)})
		}
	}()

	err := h.Send(ctx, payload)
	switch {
	case err == nil:
		debuglog.Debugf("sent capability for notification %s", key)
		return Success{}
	case errors.Is(err, capability.ErrCancelled):
		return e.fail(key, IntentCancelled{Key: key, Cause: err})
	default:
		return e.fail(key, Error{Message: "sending capability failed", Cause: err})
	}
}

func (e *Executor) fail(key string, res Result) Result {
	fields := map[string]interface{}{
		"key":     key,
		"outcome": res.Outcome().String(),
	}
	switch r := res.(type) {
	case IntentCancelled:
		debuglog.WithFields(fields).Warnf("action no longer available: %v", r.Cause)
	case Error:
		debuglog.WithFields(fields).Errorf("action failed: %v", r)
	}
	return res
}
