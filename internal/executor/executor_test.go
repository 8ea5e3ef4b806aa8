package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/justtype/internal/capability"
	"github.com/pders01/justtype/internal/notify"
)

type recorder struct {
	mu       sync.Mutex
	payloads []*capability.Payload
	err      error
}

func (r *recorder) Send(_ context.Context, p *capability.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	return r.err
}

func (r *recorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func setup(t *testing.T) (*notify.Index, *recorder, *recorder, *recorder) {
	t.Helper()
	open, reply, read := &recorder{}, &recorder{}, &recorder{}
	ix := notify.NewIndex()
	ix.Put(notify.Surface{
		Key:     "chat:1",
		Package: "com.chat",
		Title:   "Alex",
		Open:    open,
		Actions: []notify.Action{
			{Title: "Reply", Handle: reply, Input: &notify.RemoteInput{ResultKey: "reply_text", Label: "Reply"}},
			{Title: "Mark read", Handle: read},
		},
	})
	return ix, open, reply, read
}

func TestExecuteOpen(t *testing.T) {
	ix, open, _, _ := setup(t)
	ex := New(ix)

	res := ex.ExecuteOpen(context.Background(), "chat:1")
	assert.Equal(t, Success{}, res)
	require.Equal(t, 1, open.calls())
	assert.Nil(t, open.payloads[0])
}

func TestExecuteOpenWithoutHandle(t *testing.T) {
	ix := notify.NewIndex()
	ix.Put(notify.Surface{Key: "k", Title: "no open"})

	res := New(ix).ExecuteOpen(context.Background(), "k")
	require.IsType(t, Error{}, res)
	assert.ErrorIs(t, res.(Error), ErrNoOpenAction)
}

func TestExecuteActionAttachesText(t *testing.T) {
	ix, _, reply, read := setup(t)
	ex := New(ix)

	assert.Equal(t, Success{}, ex.ExecuteAction(context.Background(), "chat:1", 0, "on my way"))
	require.Equal(t, 1, reply.calls())
	assert.Equal(t, &capability.Payload{ResultKey: "reply_text", Text: "on my way"}, reply.payloads[0])

	assert.Equal(t, Success{}, ex.ExecuteAction(context.Background(), "chat:1", 0, ""))
	assert.Nil(t, reply.payloads[1])

	assert.Equal(t, Success{}, ex.ExecuteAction(context.Background(), "chat:1", 1, "ignored"))
	require.Equal(t, 1, read.calls())
	assert.Nil(t, read.payloads[0])
}

func TestExecuteActionOutOfRange(t *testing.T) {
	ix, _, reply, read := setup(t)
	ex := New(ix)

	for _, idx := range []int{-1, 2, 99} {
		res := ex.ExecuteAction(context.Background(), "chat:1", idx, "")
		require.IsType(t, Error{}, res, "index %d", idx)
		assert.ErrorIs(t, res.(Error), ErrActionIndexOutOfRange)
		assert.Equal(t, OutcomeError, res.Outcome())
	}
	assert.Zero(t, reply.calls())
	assert.Zero(t, read.calls())
}

func TestExecuteAbsentKeyIsDismissed(t *testing.T) {
	ex := New(notify.NewIndex())

	assert.Equal(t, NotificationDismissed{Key: "nope"}, ex.ExecuteAction(context.Background(), "nope", 0, "x"))
	assert.Equal(t, NotificationDismissed{Key: "nope"}, ex.ExecuteOpen(context.Background(), "nope"))
	assert.Equal(t, NotificationDismissed{Key: "nope"}, New(nil).ExecuteOpen(context.Background(), "nope"))
}

func TestExecuteAfterDismissal(t *testing.T) {
	ix, open, reply, _ := setup(t)
	ex := New(ix)

	require.True(t, ix.MarkDismissed("chat:1"))

	s, ok := ix.Get("chat:1")
	require.True(t, ok)
	assert.False(t, s.Live)
	assert.Empty(t, s.Actions)
	assert.Nil(t, s.Open)

	assert.Equal(t, NotificationDismissed{Key: "chat:1"}, ex.ExecuteAction(context.Background(), "chat:1", 0, "hi"))
	assert.Equal(t, NotificationDismissed{Key: "chat:1"}, ex.ExecuteOpen(context.Background(), "chat:1"))
	assert.Zero(t, reply.calls())
	assert.Zero(t, open.calls())
}

func TestExecuteRevokedHandleIsCancelled(t *testing.T) {
	inner := &recorder{}
	handle := capability.NewRevocable(inner)
	ix := notify.NewIndex()
	ix.Put(notify.Surface{Key: "k", Actions: []notify.Action{{Title: "Archive", Handle: handle}}})
	handle.Revoke()

	res := New(ix).ExecuteAction(context.Background(), "k", 0, "")
	require.IsType(t, IntentCancelled{}, res)
	assert.ErrorIs(t, res.(IntentCancelled).Cause, capability.ErrCancelled)
	assert.Equal(t, OutcomeCancelled, res.Outcome())
	assert.Zero(t, inner.calls())
}

func TestExecuteSendFailureIsError(t *testing.T) {
	boom := errors.New("boom")
	ix := notify.NewIndex()
	ix.Put(notify.Surface{Key: "k", Open: &recorder{err: boom}})

	res := New(ix).ExecuteOpen(context.Background(), "k")
	require.IsType(t, Error{}, res)
	assert.ErrorIs(t, res.(Error), boom)
	assert.Contains(t, res.(Error).Error(), "boom")
}

func TestExecuteRecoversPanics(t *testing.T) {
	ix := notify.NewIndex()
	ix.Put(notify.Surface{Key: "k", Open: capability.Func(func(context.Context, *capability.Payload) error {
		panic("handler exploded")
	})})

	res := New(ix).ExecuteOpen(context.Background(), "k")
	require.IsType(t, Error{}, res)
	assert.Contains(t, res.(Error).Error(), "handler exploded")
}

func TestExecuteTimeout(t *testing.T) {
	ix := notify.NewIndex()
	ix.Put(notify.Surface{Key: "k", Open: capability.Func(func(ctx context.Context, _ *capability.Payload) error {
		<-ctx.Done()
		return ctx.Err()
	})})

	res := New(ix, WithTimeout(10*time.Millisecond)).ExecuteOpen(context.Background(), "k")
	require.IsType(t, Error{}, res)
	assert.ErrorIs(t, res.(Error), context.DeadlineExceeded)
}

func TestValidate(t *testing.T) {
	ix, open, reply, _ := setup(t)
	ex := New(ix)

	assert.Equal(t, Success{}, ex.Validate("chat:1", NoAction))
	assert.Equal(t, Success{}, ex.Validate("chat:1", 1))
	res := ex.Validate("chat:1", 5)
	require.IsType(t, Error{}, res)
	assert.ErrorIs(t, res.(Error), ErrActionIndexOutOfRange)
	assert.Equal(t, NotificationDismissed{Key: "other"}, ex.Validate("other", NoAction))

	ix.MarkDismissed("chat:1")
	assert.Equal(t, NotificationDismissed{Key: "chat:1"}, ex.Validate("chat:1", 0))

	assert.Zero(t, open.calls())
	assert.Zero(t, reply.calls())
}

func TestExecuteUsesCurrentSurface(t *testing.T) {
	ix, _, reply, _ := setup(t)
	ex := New(ix)

	replacement := &recorder{}
	ix.Put(notify.Surface{Key: "chat:1", Actions: []notify.Action{{Title: "Reply", Handle: replacement}}})

	assert.Equal(t, Success{}, ex.ExecuteAction(context.Background(), "chat:1", 0, ""))
	assert.Equal(t, 1, replacement.calls())
	assert.Zero(t, reply.calls())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success{}.Outcome().String())
	assert.Equal(t, "dismissed", NotificationDismissed{}.Outcome().String())
	assert.Equal(t, "cancelled", IntentCancelled{}.Outcome().String())
	assert.Equal(t, "error", Error{}.Outcome().String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
