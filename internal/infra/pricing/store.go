package pricing

import (
	"sync/atomic"

	"github.com/gamertech/tradein-backend/internal/entity"
)

// Store holds the live catalog behind a single atomic pointer. Reloads
// build a complete new catalog and swap it in; a reader holds one stable
// snapshot for the duration of a request and can never observe a mix of
// old and new rows.
type Store struct {
	current atomic.Pointer[entity.Catalog]
}

func NewStore(catalog entity.Catalog) *Store {
	s := &Store{}
	s.current.Store(&catalog)
	return s
}

// Snapshot returns the current catalog. The returned map is shared and
// must be treated as read-only.
func (s *Store) Snapshot() entity.Catalog {
	return *s.current.Load()
}

// Swap replaces the whole catalog.
func (s *Store) Swap(catalog entity.Catalog) {
	s.current.Store(&catalog)
}

// Size reports the number of priced rows, for logs and health checks.
func (s *Store) Size() int {
	return len(s.Snapshot())
}
