package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/justtype/internal/capability"
	"github.com/pders01/justtype/internal/notify"
)

var noop = capability.Func(func(context.Context, *capability.Payload) error { return nil })

func newTestIndex(t *testing.T, surfaces ...notify.Surface) *notify.Index {
	t.Helper()
	ix := notify.NewIndex(notify.WithClock(func() time.Time { return testNow }))
	for _, s := range surfaces {
		ix.Put(s)
	}
	return ix
}

func surface(key, pkg, title string, postedAgo time.Duration) notify.Surface {
	return notify.Surface{
		Key:      key,
		Package:  pkg,
		Title:    title,
		Open:     noop,
		PostedAt: testNow.Add(-postedAgo),
	}
}

func notificationKeys(results []NotificationResult) []string {
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = r.NotificationKey
	}
	return keys
}

func TestRelatedNotifications(t *testing.T) {
	ix := newTestIndex(t,
		surface("a1", "com.a", "first", 3*time.Minute),
		surface("a2", "com.a", "second", time.Minute),
		surface("b1", "com.b", "other", 0),
	)

	got := RelatedNotifications(ix, []string{"com.a"}, DefaultNotificationOptions())
	assert.Equal(t, []string{"a2", "a1"}, notificationKeys(got))

	opts := DefaultNotificationOptions()
	opts.MaxResults = 1
	assert.Equal(t, []string{"a2"}, notificationKeys(RelatedNotifications(ix, []string{"com.a"}, opts)))

	assert.Empty(t, RelatedNotifications(ix, nil, opts))
	assert.Empty(t, RelatedNotifications(nil, []string{"com.a"}, opts))
}

func TestAllNotificationsIncludesHistorical(t *testing.T) {
	ix := newTestIndex(t,
		surface("live", "com.a", "live", time.Minute),
		surface("gone", "com.a", "gone", 2*time.Minute),
		surface("skip", "com.b", "skip", 0),
	)
	require.True(t, ix.MarkDismissed("gone"))

	got := AllNotifications(ix, map[string]bool{"skip": true}, DefaultNotificationOptions())
	require.Equal(t, []string{"live", "gone"}, notificationKeys(got))
	assert.True(t, got[0].IsLive)
	assert.False(t, got[1].IsLive)
}

func TestSearchNotificationsHonoursMatchFlags(t *testing.T) {
	s := surface("k", "com.chat", "New message", 0)
	s.Body = "lunch tomorrow?"
	s.People = []string{"Alex Doe"}
	ix := newTestIndex(t, s)

	opts := DefaultNotificationOptions()
	assert.Len(t, SearchNotifications(ix, "lunch", opts), 1)
	assert.Len(t, SearchNotifications(ix, "alex", opts), 1)

	opts.MatchBody = false
	opts.MatchNames = false
	assert.Empty(t, SearchNotifications(ix, "lunch", opts))
	assert.Empty(t, SearchNotifications(ix, "alex", opts))
	assert.Len(t, SearchNotifications(ix, "message", opts), 1)
}

func TestToNotificationResult(t *testing.T) {
	s := surface("k", "com.chat", "Alex", 0)
	s.Body = "hi"
	s.Live = true
	s.Actions = []notify.Action{
		{Title: "Reply", Handle: noop, Input: &notify.RemoteInput{ResultKey: "reply"}},
		{Title: "Mark read", Handle: noop},
	}

	got := toNotificationResult(s, DefaultNotificationOptions())
	assert.Equal(t, NotificationResult{
		NotificationKey: "k",
		Title:           "Alex",
		Subtitle:        "hi",
		Timestamp:       testNow.UnixMilli(),
		IsLive:          true,
		Actions: []NotificationActionItem{
			{Index: 0, Title: "Reply", RequiresTextInput: true},
			{Index: 1, Title: "Mark read"},
		},
	}, got)

	hidden := DefaultNotificationOptions()
	hidden.ShowActions = false
	assert.Empty(t, toNotificationResult(s, hidden).Actions)

	s.Live = false
	assert.Empty(t, toNotificationResult(s, DefaultNotificationOptions()).Actions)
}
