// Package drafts keeps in-progress provider registrations in memory.
package drafts

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/janisto/provider-onboarding/internal/platform/timeutil"
	"github.com/janisto/provider-onboarding/internal/registration"
	"github.com/janisto/provider-onboarding/internal/service/accounts"
)

// DefaultTTL is how long an untouched draft survives.
const DefaultTTL = 30 * time.Minute

// ErrNotFound is returned for unknown or expired drafts.
var ErrNotFound = errors.New("draft not found")

// Draft is one wizard together with the signals it emitted.
type Draft struct {
	ID      string
	Wizard  *registration.Wizard
	Signals *registration.SignalRecorder

	CreatedAt timeutil.Time

	mu        sync.Mutex
	expiresAt time.Time
}

// ExpiresAt returns when the draft is evicted unless it is used again.
func (d *Draft) ExpiresAt() timeutil.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return timeutil.NewTime(d.expiresAt)
}

func (d *Draft) touch(ttl time.Duration) {
	d.mu.Lock()
	d.expiresAt = time.Now().Add(ttl)
	d.mu.Unlock()
}

// Store holds drafts with a sliding expiry: every Get extends the lifetime.
type Store struct {
	svc   accounts.Service
	ttl   time.Duration
	items *cache.Cache
	now   func() time.Time
}

// NewStore creates a store whose wizards submit through svc. A ttl of zero or
// less uses DefaultTTL.
func NewStore(svc accounts.Service, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &Store{
		svc:   svc,
		ttl:   ttl,
		items: cache.New(ttl, cleanup),
		now:   time.Now,
	}
}

// TTL returns the sliding lifetime of a draft.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a new wizard.
func (s *Store) Create() *Draft {
	signals := registration.NewSignalRecorder()
	d := &Draft{
		ID:        uuid.NewString(),
		Wizard:    registration.New(s.svc, signals),
		Signals:   signals,
		CreatedAt: timeutil.NewTime(s.now()),
	}
	d.touch(s.ttl)
	s.items.SetDefault(d.ID, d)
	return d
}

// Get returns the draft and restarts its expiry.
func (s *Store) Get(id string) (*Draft, error) {
	v, ok := s.items.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	d := v.(*Draft)
	d.touch(s.ttl)
	s.items.SetDefault(id, d)
	return d, nil
}

// Delete removes the draft. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.items.Delete(id)
}

// Count returns the number of drafts held, including expired ones not yet
// swept.
func (s *Store) Count() int {
	return s.items.ItemCount()
}
