package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pders01/justtype/internal/config"
	"github.com/pders01/justtype/internal/contacts"
	"github.com/pders01/justtype/internal/debuglog"
	"github.com/pders01/justtype/internal/executor"
	"github.com/pders01/justtype/internal/feed"
	"github.com/pders01/justtype/internal/media"
	"github.com/pders01/justtype/internal/notify"
	"github.com/pders01/justtype/internal/provider"
	"github.com/pders01/justtype/internal/search"
	"github.com/pders01/justtype/internal/storage"
)

// runtime holds everything a command may need. Fields are nil unless the
// command asked for them.
type runtime struct {
	cfg      *config.Config
	store    *storage.Store
	contacts *contacts.Directory
	index    *notify.Index
	executor *executor.Executor
	launcher *media.Launcher
	feeds    *feed.Manager
	engine   *search.Engine
}

type runtimeOptions struct {
	contacts      bool
	notifications bool
	feeds         bool
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	store, err := storage.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	defaults, err := provider.LoadDefaults()
	if err != nil {
		store.Close()
		return nil, err
	}
	seeded, err := store.Seed(defaults)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("seeding providers: %w", err)
	}
	if seeded && cfg.Search.DefaultProvider != "" && cfg.Search.DefaultProvider != defaults.DefaultSearch {
		if err := store.SetDefaultSearch(cfg.Search.DefaultProvider); err != nil {
			debuglog.Warnf("configured default search provider ignored: %v", err)
		}
	}
	return store, nil
}

func openRuntime(opts runtimeOptions) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}
	if rt.store, err = openStore(cfg); err != nil {
		return nil, err
	}

	if opts.contacts {
		if rt.contacts, err = contacts.Open(cfg.Search.ContactsIndex, contacts.DefaultProviderID); err != nil {
			rt.Close()
			return nil, err
		}
	}

	if opts.notifications || opts.feeds {
		rt.index = notify.NewIndex()
		rt.executor = executor.New(rt.index)
		rt.launcher = media.NewLauncher(cfg)
		if notificationsFile != "" {
			n, err := postNotificationFixtures(rt.index, rt.launcher, notificationsFile)
			if err != nil {
				rt.Close()
				return nil, err
			}
			debuglog.Infof("posted %d notifications from %s", n, notificationsFile)
		}
	}

	if opts.feeds {
		rt.feeds = feed.NewManager(rt.index, rt.launcher, cfg)
		for _, u := range cfg.Feeds.URLs {
			if _, err := rt.feeds.AddSource(u); err != nil {
				debuglog.Warnf("skipping feed %s: %v", u, err)
			}
		}
	}

	if rt.engine, err = search.NewDefaultEngine(); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) Close() error {
	var errs []error
	if rt.contacts != nil {
		errs = append(errs, rt.contacts.Close())
	}
	if rt.store != nil {
		errs = append(errs, rt.store.Close())
	}
	return errors.Join(errs...)
}

// searchInput assembles one engine query from the runtime's sources.
func (rt *runtime) searchInput(query string) (search.Input, error) {
	entries, err := rt.store.Entries()
	if err != nil {
		return search.Input{}, err
	}
	favorites, err := rt.store.Favorites()
	if err != nil {
		return search.Input{}, err
	}
	reg, err := rt.store.Registry()
	if err != nil {
		return search.Input{}, err
	}

	in := search.Input{
		Query:     query,
		Entries:   entries,
		Favorites: favorites,
		Providers: reg,
		NotificationOptions: search.NotificationOptions{
			MaxResults:  rt.cfg.Notifications.MaxResults,
			MatchBody:   rt.cfg.Notifications.MatchBody,
			MatchNames:  rt.cfg.Notifications.MatchNames,
			ShowActions: rt.cfg.Notifications.ShowActions,
		},
	}
	if rt.index != nil {
		in.Notifications = rt.index.Snapshot()
	}

	f := provider.ParseFilter(query)
	if rt.contacts != nil && f.Permits(provider.CategoryContacts) && reg.IsEnabled(provider.CategoryContacts) {
		found, err := rt.contacts.Lookup(f.Query, rt.cfg.Search.ContactsLimit)
		if err != nil {
			return search.Input{}, fmt.Errorf("looking up contacts: %w", err)
		}
		in.Contacts = found
	}
	return in, nil
}
