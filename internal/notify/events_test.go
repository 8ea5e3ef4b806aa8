package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedApply(t *testing.T) {
	ix := NewIndex()
	feed := NewFeed(ix)

	feed.Apply(Posted{Surface: liveSurface("k1", "com.a", time.Now())})
	feed.Apply(Posted{Surface: liveSurface("k2", "com.b", time.Now())})
	feed.Apply(Removed{Key: "k1"})

	k1, ok := ix.Get("k1")
	require.True(t, ok)
	assert.False(t, k1.Live)

	feed.Apply(PackageRemoved{Package: "com.b"})
	_, ok = ix.Get("k2")
	assert.False(t, ok)
}

func TestFeedRun(t *testing.T) {
	ix := NewIndex()
	feed := NewFeed(ix)
	events := make(chan Event, 3)
	events <- Posted{Surface: liveSurface("k1", "com.a", time.Now())}
	events <- Removed{Key: "k1"}
	close(events)

	require.NoError(t, feed.Run(context.Background(), events))
	got, ok := ix.Get("k1")
	require.True(t, ok)
	assert.False(t, got.Live)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, feed.Run(ctx, make(chan Event)), context.Canceled)
}

func TestSweeper(t *testing.T) {
	clock := newFakeClock()
	ix := NewIndex(WithClock(clock.Now))
	ix.Put(liveSurface("k1", "com.a", clock.Now()))
	ix.MarkDismissed("k1")

	sw := NewSweeper(ix, time.Hour, 0)
	assert.Equal(t, 0, sw.Sweep())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, sw.Sweep())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sw.Run(ctx)
}
