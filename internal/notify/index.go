// Package notify keeps the ephemeral index of system notifications and the
// verb surfaces they expose.
package notify

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pders01/justtype/internal/debuglog"
)

// DefaultRetention is how long a dismissed surface stays searchable.
const DefaultRetention = 96 * time.Hour

const shardCount = 16

type shard struct {
	mu    sync.RWMutex
	items map[string]*Surface
}

// Index is a concurrent key→Surface store. Stored surfaces are never mutated
// in place: every write swaps in a new value under its shard lock, so readers
// always observe a whole surface.
type Index struct {
	shards  [shardCount]*shard
	version atomic.Uint64
	now     func() time.Time

	subsMu  sync.Mutex
	subs    map[int]chan uint64
	nextSub int
}

// Option configures an Index.
type Option func(*Index)

// WithClock overrides the time source used for dismissal stamps and eviction.
func WithClock(now func() time.Time) Option {
	return func(ix *Index) { ix.now = now }
}

// NewIndex creates an empty index.
func NewIndex(opts ...Option) *Index {
	ix := &Index{
		now:  time.Now,
		subs: make(map[int]chan uint64),
	}
	for i := range ix.shards {
		ix.shards[i] = &shard{items: make(map[string]*Surface)}
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

func (ix *Index) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return ix.shards[h.Sum32()%shardCount]
}

// Put inserts or replaces a surface. The stored copy is always live,
// whatever the caller's copy claims.
func (ix *Index) Put(s Surface) {
	stored := s.clone()
	stored.Live = true
	stored.DismissedAt = time.Time{}
	if stored.PostedAt.IsZero() {
		stored.PostedAt = ix.now()
	}

	sh := ix.shardFor(stored.Key)
	sh.mu.Lock()
	sh.items[stored.Key] = &stored
	sh.mu.Unlock()

	debuglog.Debugf("notification posted key=%s package=%s actions=%d", stored.Key, stored.Package, len(stored.Actions))
	ix.bump()
}

// MarkDismissed turns a live surface historical. It reports whether anything
// changed; absent or already dismissed keys are left alone.
func (ix *Index) MarkDismissed(key string) bool {
	sh := ix.shardFor(key)
	sh.mu.Lock()
	cur, ok := sh.items[key]
	if !ok || !cur.Live {
		sh.mu.Unlock()
		return false
	}
	h := cur.historical(ix.now())
	sh.items[key] = &h
	sh.mu.Unlock()

	debuglog.Debugf("notification dismissed key=%s", key)
	ix.bump()
	return true
}

// MarkDismissedByPackage dismisses every live surface from pkg.
func (ix *Index) MarkDismissedByPackage(pkg string) int {
	now := ix.now()
	count := 0
	for _, sh := range ix.shards {
		sh.mu.Lock()
		for key, cur := range sh.items {
			if cur.Package == pkg && cur.Live {
				h := cur.historical(now)
				sh.items[key] = &h
				count++
			}
		}
		sh.mu.Unlock()
	}
	if count > 0 {
		debuglog.Debugf("dismissed %d notifications for package=%s", count, pkg)
		ix.bump()
	}
	return count
}

// Remove hard-deletes a surface, bypassing history.
func (ix *Index) Remove(key string) bool {
	sh := ix.shardFor(key)
	sh.mu.Lock()
	_, ok := sh.items[key]
	delete(sh.items, key)
	sh.mu.Unlock()
	if ok {
		ix.bump()
	}
	return ok
}

// RemoveByPackage hard-deletes every surface from pkg, live or historical.
func (ix *Index) RemoveByPackage(pkg string) int {
	return ix.removeWhere(func(s *Surface) bool { return s.Package == pkg })
}

// FlushOldHistorical deletes historical surfaces dismissed more than
// retention ago and returns how many were removed. Live surfaces are never
// touched.
func (ix *Index) FlushOldHistorical(retention time.Duration) int {
	cutoff := ix.now().Add(-retention)
	n := ix.removeWhere(func(s *Surface) bool {
		return !s.Live && s.DismissedAt.Before(cutoff)
	})
	if n > 0 {
		debuglog.Infof("flushed %d historical notifications older than %s", n, retention)
	}
	return n
}

// Clear removes every surface.
func (ix *Index) Clear() {
	ix.removeWhere(func(*Surface) bool { return true })
}

func (ix *Index) removeWhere(match func(*Surface) bool) int {
	count := 0
	for _, sh := range ix.shards {
		sh.mu.Lock()
		for key, cur := range sh.items {
			if match(cur) {
				delete(sh.items, key)
				count++
			}
		}
		sh.mu.Unlock()
	}
	if count > 0 {
		ix.bump()
	}
	return count
}

// Get returns a copy of the surface stored under key.
func (ix *Index) Get(key string) (Surface, bool) {
	sh := ix.shardFor(key)
	sh.mu.RLock()
	cur, ok := sh.items[key]
	sh.mu.RUnlock()
	if !ok {
		return Surface{}, false
	}
	return cur.clone(), true
}

// Len returns the number of stored surfaces, live and historical.
func (ix *Index) Len() int {
	n := 0
	for _, sh := range ix.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

func (ix *Index) items() []*Surface {
	var out []*Surface
	for _, sh := range ix.shards {
		sh.mu.RLock()
		for _, s := range sh.items {
			out = append(out, s)
		}
		sh.mu.RUnlock()
	}
	return out
}

// GetAll returns every surface, newest first with live surfaces first on ties.
func (ix *Index) GetAll() []Surface {
	return collect(ix.items(), 0)
}

// GetByPackages returns surfaces from any of packages, ordered like GetAll.
func (ix *Index) GetByPackages(packages []string, limit int) []Surface {
	return filterPackages(ix.items(), packages, limit)
}

// Search matches query case-insensitively against titles and, optionally,
// bodies and person names.
func (ix *Index) Search(query string, opts SearchOptions) []Surface {
	return filterSearch(ix.items(), query, opts)
}

// Snapshot captures a point-in-time view of the index.
func (ix *Index) Snapshot() *Snapshot {
	// Version first: a snapshot may include writes newer than its version,
	// never miss writes older than it.
	v := ix.version.Load()
	return &Snapshot{items: ix.items(), version: v}
}

// Version increments on every mutation.
func (ix *Index) Version() uint64 {
	return ix.version.Load()
}

// Subscribe returns a channel that receives the latest version after
// mutations. Slow readers see only the newest value. Call the returned
// function to unsubscribe.
func (ix *Index) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	ix.subsMu.Lock()
	id := ix.nextSub
	ix.nextSub++
	ix.subs[id] = ch
	ix.subsMu.Unlock()

	return ch, func() {
		ix.subsMu.Lock()
		if _, ok := ix.subs[id]; ok {
			delete(ix.subs, id)
			close(ch)
		}
		ix.subsMu.Unlock()
	}
}

func (ix *Index) bump() {
	v := ix.version.Add(1)

	ix.subsMu.Lock()
	defer ix.subsMu.Unlock()
	for _, ch := range ix.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
