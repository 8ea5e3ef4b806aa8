// Package feed turns web feeds into notification surfaces. Each new item is
// posted as a live notification; items that leave the feed are dismissed.
package feed

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/justtype/internal/capability"
	"github.com/pders01/justtype/internal/config"
	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/media"
	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/validation"
)

// PackagePrefix prefixes the package of every feed surface.
const PackagePrefix = "feed:"

const (
	defaultMaxConcurrent = 5
	maxFeedBytes         = 10 << 20
)

// Source is a subscribed feed and its HTTP cache state.
type Source struct {
	ID           string
	URL          string
	Title        string
	ETag         string
	LastModified string
	LastFetched  time.Time
	// RetryAt is set when the server asked us to back off.
	RetryAt time.Time
}

// Package is the notification package of this source's surfaces.
func (s Source) Package() string {
	return PackagePrefix + s.ID
}

// Opener builds capability handles that open a URL.
type Opener interface {
	Handle(rawURL string) capability.Handle
}

type sourceState struct {
	// polling serialises polls of one source.
	polling sync.Mutex

	mu      sync.Mutex
	src     Source
	posted  map[string]bool
	read    map[string]bool
	// handles holds the revocable handles issued per notification key.
	handles map[string][]*capability.Revocable
}

func (st *sourceState) snapshot() Source {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.src
}

type Manager struct {
	index         *notify.Index
	fetcher       *Fetcher
	parser        *Parser
	opener        Opener
	urlValidator  *validation.FeedURLValidator
	maxConcurrent int
	mu            sync.RWMutex
	sources       map[string]*sourceState
}

func NewManager(index *notify.Index, opener Opener, cfg *config.Config) *Manager {
	urlValidator := validation.NewFeedURLValidator()
	if cfg.Feeds.AllowPrivate {
		urlValidator = validation.NewPermissiveFeedURLValidator()
	}
	maxConcurrent := cfg.Feeds.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	return &Manager{
		index:         index,
		fetcher:       NewFetcher(cfg),
		parser:        NewParser(),
		opener:        opener,
		urlValidator:  urlValidator,
		maxConcurrent: maxConcurrent,
		sources:       make(map[string]*sourceState),
	}
}

// SetForceRefresh configures the manager to ignore ETag/Last-Modified headers
func (m *Manager) SetForceRefresh(force bool) {
	m.fetcher.SetIgnoreCache(force)
}

// AddSource subscribes to a feed URL. Adding a URL twice returns the
// existing source.
func (m *Manager) AddSource(rawURL string) (Source, error) {
	normalizedURL, err := m.urlValidator.ValidateAndNormalize(rawURL)
	if err != nil {
		return Source{}, fmt.Errorf("invalid feed URL: %w", err)
	}

	id := generateSourceID(normalizedURL)

	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sources[id]; ok {
		return st.snapshot(), nil
	}
	src := Source{ID: id, URL: normalizedURL}
	if u, err := url.Parse(normalizedURL); err == nil {
		src.Title = u.Host
	}
	m.sources[id] = &sourceState{
		src:    src,
		posted:  make(map[string]bool),
		read:    make(map[string]bool),
		handles: make(map[string][]*capability.Revocable),
	}
	debuglog.Infof("feed source added: %s", normalizedURL)
	return src, nil
}

// RemoveSource unsubscribes, revokes every handle the source issued and
// purges its notifications.
func (m *Manager) RemoveSource(id string) bool {
	m.mu.Lock()
	st, ok := m.sources[id]
	delete(m.sources, id)
	m.mu.Unlock()
	if !ok {
		return false
	}

	st.mu.Lock()
	for key := range st.handles {
		st.revoke(key)
	}
	pkg := st.src.Package()
	st.mu.Unlock()

	m.index.RemoveByPackage(pkg)
	debuglog.Infof("feed source removed: %s", id)
	return true
}

// Sources lists subscribed feeds ordered by URL.
func (m *Manager) Sources() []Source {
	m.mu.RLock()
	out := make([]Source, 0, len(m.sources))
	for _, st := range m.sources {
		out = append(out, st.snapshot())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

func (m *Manager) state(id string) (*sourceState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sources[id]
	return st, ok
}

// Poll fetches one source and syncs its items into the index.
func (m *Manager) Poll(ctx context.Context, id string) error {
	st, ok := m.state(id)
	if !ok {
		return fmt.Errorf("unknown feed source %s", id)
	}

	st.polling.Lock()
	defer st.polling.Unlock()

	src := st.snapshot()
	if time.Now().Before(src.RetryAt) {
		debuglog.Debugf("feed %s backing off until %s", src.URL, src.RetryAt.Format(time.RFC3339))
		return nil
	}

	resp, updated, err := m.fetcher.Fetch(ctx, &src)
	if err != nil {
		m.store(st, src)
		return fmt.Errorf("fetching %s: %w", src.URL, err)
	}
	if !updated || resp == nil {
		src.LastFetched = time.Now()
		m.store(st, src)
		return nil
	}
	defer resp.Body.Close()

	title, items, err := m.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", src.URL, err)
	}
	if title != "" {
		src.Title = title
	}
	m.fetcher.UpdateMetadata(&src, resp)
	m.store(st, src)

	m.sync(st, src, items)
	return nil
}

func (m *Manager) store(st *sourceState, src Source) {
	st.mu.Lock()
	st.src = src
	st.mu.Unlock()
}

// sync posts unseen items and dismisses items that left the feed.
func (m *Manager) sync(st *sourceState, src Source, items []Item) {
	current := make(map[string]bool, len(items))
	var fresh []notify.Surface
	var gone []string

	st.mu.Lock()
	for _, item := range items {
		key := src.ID + ":" + item.GUID
		if current[key] {
			continue
		}
		current[key] = true
		if st.posted[key] || st.read[key] {
			continue
		}
		fresh = append(fresh, m.surface(st, src, key, item))
		st.posted[key] = true
	}
	for key := range st.posted {
		if !current[key] {
			gone = append(gone, key)
			delete(st.posted, key)
			st.revoke(key)
		}
	}
	for key := range st.read {
		if !current[key] {
			delete(st.read, key)
		}
	}
	st.mu.Unlock()

	for _, s := range fresh {
		m.index.Put(s)
	}
	for _, key := range gone {
		m.index.MarkDismissed(key)
	}

	debuglog.WithFields(map[string]interface{}{
		"feed":      src.URL,
		"posted":    len(fresh),
		"dismissed": len(gone),
	}).Debugf("feed synced")
}

// surface builds the notification for item. The caller holds st.mu.
func (m *Manager) surface(st *sourceState, src Source, key string, item Item) notify.Surface {
	s := notify.Surface{
		Key:      key,
		Package:  src.Package(),
		Title:    item.Title,
		Body:     item.Summary,
		People:   item.Authors,
		PostedAt: item.Published,
	}

	if item.Link != "" && m.opener != nil {
		s.Open = st.revocable(key, m.opener.Handle(item.Link))
		s.Actions = append(s.Actions, notify.Action{Title: "Open link", Handle: st.revocable(key, m.opener.Handle(item.Link))})
	}

	srcID := src.ID
	s.Actions = append(s.Actions, notify.Action{
		Title: "Mark read",
		Handle: st.revocable(key, capability.Func(func(context.Context, *capability.Payload) error {
			return m.MarkRead(srcID, key)
		})),
	})

	if m.opener != nil {
		for _, u := range item.MediaURLs {
			if media.DetectType(u).Playable() {
				s.Actions = append(s.Actions, notify.Action{Title: "Play media", Handle: st.revocable(key, m.opener.Handle(u))})
				break
			}
		}
	}
	return s
}

func (st *sourceState) revocable(key string, h capability.Handle) capability.Handle {
	r := capability.NewRevocable(h)
	st.handles[key] = append(st.handles[key], r)
	return r
}

// revoke cancels and forgets the handles issued for key. The caller holds
// st.mu.
func (st *sourceState) revoke(key string) {
	for _, h := range st.handles[key] {
		h.Revoke()
	}
	delete(st.handles, key)
}

// handleCount reports how many issued handles are still tracked.
func (st *sourceState) handleCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, hs := range st.handles {
		n += len(hs)
	}
	return n
}

// MarkRead dismisses an item and keeps it from being posted again while it
// stays in the feed.
func (m *Manager) MarkRead(sourceID, key string) error {
	st, ok := m.state(sourceID)
	if !ok {
		return capability.ErrCancelled
	}
	st.mu.Lock()
	st.read[key] = true
	delete(st.posted, key)
	st.revoke(key)
	st.mu.Unlock()

	m.index.MarkDismissed(key)
	return nil
}

// PollAll polls every source with bounded concurrency. A failing source does
// not stop the others; their errors are joined.
func (m *Manager) PollAll(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sources))
	for id := range m.sources {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	var (
		errMu sync.Mutex
		errs  []error
	)
	var g errgroup.Group
	g.SetLimit(m.maxConcurrent)
	for _, id := range ids {
		g.Go(func() error {
			if err := m.Poll(ctx, id); err != nil {
				debuglog.Warnf("feed poll failed: %v", err)
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Run polls immediately and then every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	_ = m.PollAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.PollAll(ctx)
		}
	}
}

func generateSourceID(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(url)))[:16]
}
