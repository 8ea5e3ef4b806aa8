package notify

// Snapshot is an immutable point-in-time view of an Index.
type Snapshot struct {
	items   []*Surface
	version uint64
}

// Version is the index version observed when the snapshot was taken.
func (s *Snapshot) Version() uint64 { return s.version }

// Len returns the number of surfaces in the snapshot.
func (s *Snapshot) Len() int { return len(s.items) }

// Get returns the surface stored under key at snapshot time.
func (s *Snapshot) Get(key string) (Surface, bool) {
	for _, item := range s.items {
		if item.Key == key {
			return item.clone(), true
		}
	}
	return Surface{}, false
}

func (s *Snapshot) copyItems() []*Surface {
	return append([]*Surface(nil), s.items...)
}

// GetAll returns every surface in the snapshot.
func (s *Snapshot) GetAll() []Surface {
	return collect(s.copyItems(), 0)
}

// GetByPackages returns surfaces from any of packages.
func (s *Snapshot) GetByPackages(packages []string, limit int) []Surface {
	return filterPackages(s.copyItems(), packages, limit)
}

// Search matches query against the snapshot.
func (s *Snapshot) Search(query string, opts SearchOptions) []Surface {
	return filterSearch(s.copyItems(), query, opts)
}
