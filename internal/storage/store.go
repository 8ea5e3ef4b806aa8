package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/justtype/internal/provider"
	"github.com/pders01/justtype/internal/validation"
)

var (
	providersBucket = []byte("providers")
	entriesBucket   = []byte("entries")
	metaBucket      = []byte("metadata")

	versionKey       = []byte("providers_version")
	defaultSearchKey = []byte("default_search")
	favoritesKey     = []byte("favorites")
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store persists provider configuration and the launchable entry snapshot.
type Store struct {
	db        *bolt.DB
	templates *validation.TemplateValidator
}

func NewStore(dbPath string) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{providersBucket, entriesBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, templates: validation.NewTemplateValidator()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seed writes the default provider table when no providers are stored yet.
// It reports whether anything was written.
func (s *Store) Seed(d *provider.Defaults) (bool, error) {
	seeded := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(providersBucket)
		if k, _ := b.Cursor().First(); k != nil {
			return nil
		}
		for _, c := range d.Providers {
			if err := s.putProvider(b, c); err != nil {
				return err
			}
		}
		meta := tx.Bucket(metaBucket)
		if d.DefaultSearch != "" {
			if err := meta.Put(defaultSearchKey, []byte(d.DefaultSearch)); err != nil {
				return err
			}
		}
		seeded = true
		return bumpVersion(meta)
	})
	return seeded, err
}

func (s *Store) putProvider(b *bolt.Bucket, c provider.Config) error {
	if c.ID == "" {
		return fmt.Errorf("provider id cannot be empty")
	}
	if !c.Category.Valid() {
		return fmt.Errorf("provider %s: invalid category", c.ID)
	}
	if c.Category == provider.CategorySearch && c.HasTemplate() {
		if err := s.templates.Validate(c.URLTemplate); err != nil {
			return fmt.Errorf("provider %s: %w", c.ID, err)
		}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return b.Put([]byte(c.ID), data)
}

// SaveProvider inserts or replaces a provider config.
func (s *Store) SaveProvider(c provider.Config) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := s.putProvider(tx.Bucket(providersBucket), c); err != nil {
			return err
		}
		return bumpVersion(tx.Bucket(metaBucket))
	})
}

// GetProvider loads one provider config.
func (s *Store) GetProvider(id string) (provider.Config, error) {
	var c provider.Config
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(providersBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("provider %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &c)
	})
	return c, err
}

// Providers returns every stored provider config ordered by category, order
// index and ID.
func (s *Store) Providers() ([]provider.Config, error) {
	var configs []provider.Config
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(providersBucket).ForEach(func(_ []byte, v []byte) error {
			var c provider.Config
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			configs = append(configs, c)
			return nil
		})
	})
	sort.SliceStable(configs, func(i, j int) bool {
		if configs[i].Category != configs[j].Category {
			return configs[i].Category < configs[j].Category
		}
		if configs[i].Order != configs[j].Order {
			return configs[i].Order < configs[j].Order
		}
		return configs[i].ID < configs[j].ID
	})
	return configs, err
}

func (s *Store) updateProvider(id string, mutate func(*provider.Config)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(providersBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("provider %s: %w", id, ErrNotFound)
		}
		var c provider.Config
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		mutate(&c)
		if err := s.putProvider(b, c); err != nil {
			return err
		}
		return bumpVersion(tx.Bucket(metaBucket))
	})
}

// SetEnabled toggles a provider.
func (s *Store) SetEnabled(id string, enabled bool) error {
	return s.updateProvider(id, func(c *provider.Config) { c.Enabled = enabled })
}

// SetOrder changes a provider's order index within its category.
func (s *Store) SetOrder(id string, order int) error {
	return s.updateProvider(id, func(c *provider.Config) { c.Order = order })
}

// SetDefaultSearch selects the default search provider. An empty id clears it.
func (s *Store) SetDefaultSearch(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if id == "" {
			if err := meta.Delete(defaultSearchKey); err != nil {
				return err
			}
			return bumpVersion(meta)
		}
		data := tx.Bucket(providersBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("provider %s: %w", id, ErrNotFound)
		}
		var c provider.Config
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		if c.Category != provider.CategorySearch {
			return fmt.Errorf("provider %s is not a search provider", id)
		}
		if err := meta.Put(defaultSearchKey, []byte(id)); err != nil {
			return err
		}
		return bumpVersion(meta)
	})
}

// DefaultSearch returns the default search provider id, or "".
func (s *Store) DefaultSearch() (string, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		id = string(tx.Bucket(metaBucket).Get(defaultSearchKey))
		return nil
	})
	return id, err
}

// ProvidersVersion returns the configuration version, bumped on every write.
func (s *Store) ProvidersVersion() (int64, error) {
	var v int64
	err := s.db.View(func(tx *bolt.Tx) error {
		v = readVersion(tx.Bucket(metaBucket))
		return nil
	})
	return v, err
}

// Registry builds a consistent provider snapshot from one read transaction.
func (s *Store) Registry() (*provider.Registry, error) {
	var (
		configs   []provider.Config
		version   int64
		defaultID string
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		version = readVersion(meta)
		defaultID = string(meta.Get(defaultSearchKey))
		return tx.Bucket(providersBucket).ForEach(func(_ []byte, v []byte) error {
			var c provider.Config
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			configs = append(configs, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading providers: %w", err)
	}
	return provider.NewRegistry(configs, version, defaultID), nil
}

func readVersion(meta *bolt.Bucket) int64 {
	data := meta.Get(versionKey)
	if len(data) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(data))
}

func bumpVersion(meta *bolt.Bucket) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(readVersion(meta)+1))
	return meta.Put(versionKey, buf)
}

// SaveEntries replaces the stored entry snapshot. Launch timestamps already
// recorded for an entry are kept when the incoming entry has none.
func (s *Store) SaveEntries(entries []Entry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		previous := make(map[string]*time.Time)
		if err := b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err == nil && e.LastLaunched != nil {
				previous[string(k)] = e.LastLaunched
			}
			return nil
		}); err != nil {
			return err
		}

		if err := tx.DeleteBucket(entriesBucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(entriesBucket)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.LastLaunched == nil {
				e.LastLaunched = previous[e.ID]
			}
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Entries returns the stored entries ordered by title, then ID.
func (s *Store) Entries() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).ForEach(func(_ []byte, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return nil
			}
			entries = append(entries, e)
			return nil
		})
	})
	sort.Slice(entries, func(i, j int) bool {
		ti, tj := strings.ToLower(entries[i].Title), strings.ToLower(entries[j].Title)
		if ti != tj {
			return ti < tj
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, err
}

// MarkLaunched records a launch of the entry at the given time.
func (s *Store) MarkLaunched(id string, at time.Time) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("entry %s: %w", id, ErrNotFound)
		}

		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		e.LastLaunched = &at

		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

// SetFavorites stores the ordered favorites list.
func (s *Store) SetFavorites(ids []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put(favoritesKey, data)
	})
}

// Favorites returns the ordered favorites list.
func (s *Store) Favorites() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get(favoritesKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &ids)
	})
	return ids, err
}
