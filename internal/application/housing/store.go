// Package housing owns the canonical listings and applications, applies every mutation as a
// whole-snapshot swap, persists the snapshot and fans changes out to observers and to other
// stores sharing the same slot.
package housing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hostel-backend/internal/domain"
	"hostel-backend/internal/fixtures"

	"github.com/rs/zerolog/log"
)

type Store struct {
	// mu serializes writers so each mutation runs to completion before the next one starts.
	mu      sync.Mutex
	current atomic.Pointer[domain.Snapshot]

	students []domain.StudentProfile
	seedApps []domain.Application

	slot        Slot
	broadcaster Broadcaster
	recorder    Recorder
	policy      Policy
	now         func() time.Time

	// Raw slot contents last written or loaded by this store, guarded by mu.
	lastListings []byte
	lastApps     []byte

	// notifyMu is taken before mu is released so observers see snapshots in swap order.
	notifyMu  sync.Mutex
	obsMu     sync.RWMutex
	observers map[int]func(domain.Snapshot)
	nextObs   int
}

// NewStore builds a store whose initial state comes from the slot when a snapshot was
// persisted before, and from seed otherwise. Slot and Broadcaster are optional.
func NewStore(ctx context.Context, seed fixtures.Fixture, opts Options) (*Store, error) {
	s := &Store{
		students:    seed.Students,
		seedApps:    seed.Snapshot.Applications,
		slot:        opts.Slot,
		broadcaster: opts.Broadcaster,
		recorder:    opts.Recorder,
		policy:      opts.Policy,
		now:         opts.Clock,
		observers:   make(map[int]func(domain.Snapshot)),
	}
	if s.recorder == nil {
		s.recorder = noopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	initial := seed.Snapshot.Clone()
	if s.slot != nil {
		snap, rawListings, rawApps, found, err := s.readSlot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if found {
			initial = *snap
			s.lastListings, s.lastApps = rawListings, rawApps
			log.Info().Int("listings", len(snap.Listings)).Msg("Housing state loaded from slot")
		} else {
			log.Info().Int("listings", len(initial.Listings)).Msg("Housing state seeded from fixture")
		}
	}
	s.current.Store(&initial)
	s.recorder.ObserveSnapshot(initial)
	return s, nil
}

// Policy returns the configured policy.
func (s *Store) Policy() Policy {
	return s.policy
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Subscribe registers fn to receive every new snapshot, in swap order. fn must not block and
// must not call back into the store's mutations.
func (s *Store) Subscribe(fn func(domain.Snapshot)) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Store) notify(snap *domain.Snapshot) {
	s.recorder.ObserveSnapshot(*snap)
	s.obsMu.RLock()
	fns := make([]func(domain.Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.RUnlock()
	for _, fn := range fns {
		fn(snap.Clone())
	}
}

// mutate computes the next snapshot from the current one and swaps it in. fn returning a nil
// snapshot and nil error is a no-op. The swap stands even when persisting it fails.
func (s *Store) mutate(ctx context.Context, op string, fn func(cur *domain.Snapshot) (*domain.Snapshot, error)) (err error) {
	defer func() { s.recorder.ObserveMutation(op, err) }()

	s.mu.Lock()
	next, err := fn(s.current.Load())
	if err != nil || next == nil {
		s.mu.Unlock()
		return err
	}
	s.current.Store(next)
	persistErr := s.persist(ctx, op, next)
	s.notifyMu.Lock()
	s.mu.Unlock()

	s.notify(next)
	s.notifyMu.Unlock()
	if persistErr != nil {
		return persistErr
	}
	s.publish(ctx, op)
	return nil
}

// persist writes the snapshot to the slot. Caller holds mu.
func (s *Store) persist(ctx context.Context, op string, snap *domain.Snapshot) error {
	if s.slot == nil {
		return nil
	}
	rawListings, err := json.Marshal(snap.Listings)
	if err == nil {
		var rawApps, rawGrid []byte
		rawApps, err = json.Marshal(snap.Applications)
		if err == nil {
			rawGrid, err = json.Marshal(snap.OccupancyGrid())
		}
		if err == nil {
			err = s.slot.SetMany(ctx, map[string][]byte{
				KeyListings:     rawListings,
				KeyApplications: rawApps,
				KeyOccupancy:    rawGrid,
			})
		}
		if err == nil {
			s.lastListings, s.lastApps = rawListings, rawApps
			return nil
		}
	}
	s.recorder.ObservePersistFailure()
	log.Error().Err(err).Str("op", op).Msg("Snapshot not persisted; in-memory state diverges from slot")
	return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
}

func (s *Store) publish(ctx context.Context, op string) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Publish(ctx); err != nil {
		log.Warn().Err(err).Str("op", op).Msg("Change signal not broadcast")
	}
}

// readSlot decodes the persisted snapshot and re-derives every safety score from its features.
// The returned bytes are the snapshot re-encoded, so backends that normalize stored JSON still
// compare equal to what this store last wrote.
func (s *Store) readSlot(ctx context.Context) (*domain.Snapshot, []byte, []byte, bool, error) {
	stored, found, err := s.slot.Get(ctx, KeyListings)
	if err != nil || !found {
		return nil, nil, nil, false, err
	}
	snap := &domain.Snapshot{}
	if err := json.Unmarshal(stored, &snap.Listings); err != nil {
		return nil, nil, nil, false, fmt.Errorf("decode listings: %w", err)
	}
	for i := range snap.Listings {
		snap.Listings[i].SafetyScore = domain.Score(snap.Listings[i].SafetyFeatures)
	}
	stored, found, err = s.slot.Get(ctx, KeyApplications)
	if err != nil {
		return nil, nil, nil, false, err
	}
	if found {
		if err := json.Unmarshal(stored, &snap.Applications); err != nil {
			return nil, nil, nil, false, fmt.Errorf("decode applications: %w", err)
		}
	} else {
		snap.Applications = append([]domain.Application(nil), s.seedApps...)
	}
	rawListings, err := json.Marshal(snap.Listings)
	if err != nil {
		return nil, nil, nil, false, err
	}
	rawApps, err := json.Marshal(snap.Applications)
	if err != nil {
		return nil, nil, nil, false, err
	}
	return snap, rawListings, rawApps, true, nil
}

// Reload re-reads the slot and overwrites the whole local snapshot with it. Concurrent writers
// in other processes resolve as last writer wins. Reports whether the local state changed.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	if s.slot == nil {
		return false, nil
	}
	s.mu.Lock()
	snap, rawListings, rawApps, found, err := s.readSlot(ctx)
	if err != nil || !found {
		s.mu.Unlock()
		return false, err
	}
	if bytes.Equal(rawListings, s.lastListings) && bytes.Equal(rawApps, s.lastApps) {
		s.mu.Unlock()
		return false, nil
	}
	s.current.Store(snap)
	s.lastListings, s.lastApps = rawListings, rawApps
	s.notifyMu.Lock()
	s.mu.Unlock()

	log.Debug().Msg("Housing state replaced from slot")
	s.notify(snap)
	s.notifyMu.Unlock()
	return true, nil
}

// Listen reloads the snapshot whenever another store signals a change.
func (s *Store) Listen(ctx context.Context) (stop func() error, err error) {
	if s.broadcaster == nil {
		return func() error { return nil }, nil
	}
	return s.broadcaster.Subscribe(ctx, func() {
		if _, err := s.Reload(ctx); err != nil {
			log.Warn().Err(err).Msg("Reload after change signal failed")
		}
	})
}

// missing applies the not-found policy.
func (s *Store) missing(err error) (*domain.Snapshot, error) {
	if s.policy.StrictNotFound {
		return nil, err
	}
	log.Debug().Err(err).Msg("Mutation target missing; ignored")
	return nil, nil
}
