package rates

import (
	"context"
	"errors"
	"sync"

	"github.com/scaramou4/telegrambot2.0/internal/dates"
	"github.com/scaramou4/telegrambot2.0/internal/logger"
	"github.com/scaramou4/telegrambot2.0/internal/models"
)

// Source fetches rate snapshots from the authority.
type Source interface {
	RatesFor(ctx context.Context, date string) (models.RateSnapshot, error)
	Latest(ctx context.Context) (models.RateSnapshot, error)
}

// Cache stores snapshots keyed by date.
type Cache interface {
	Get(date string) (models.RateSnapshot, bool)
	Put(snapshot models.RateSnapshot) error
}

type inFlightFetch struct {
	done     chan struct{}
	snapshot models.RateSnapshot
	err      error
}

// latestKey is the in-flight map key for latest-rate fetches, which have no
// date of their own until the response arrives.
const latestKey = "latest"

// Service serves rate snapshots cache-first, deduplicating concurrent
// fetches for the same date so near-simultaneous chats trigger a single
// network request.
type Service struct {
	source Source
	cache  Cache

	mu       sync.Mutex
	inFlight map[string]*inFlightFetch

	// Latest rates go stale once the calendar day changes.
	latest          models.RateSnapshot
	latestFetchedOn string
}

// NewService creates a rate service over the given source and cache.
func NewService(source Source, cache Cache) *Service {
	return &Service{
		source:   source,
		cache:    cache,
		inFlight: make(map[string]*inFlightFetch),
	}
}

// RatesFor returns the snapshot for the given canonical date, consulting the
// cache before the network.
func (s *Service) RatesFor(ctx context.Context, date string) (models.RateSnapshot, error) {
	if snapshot, ok := s.cache.Get(date); ok {
		return snapshot, nil
	}

	s.mu.Lock()
	// Re-check under lock in case another goroutine cached it meanwhile.
	if snapshot, ok := s.cache.Get(date); ok {
		s.mu.Unlock()
		return snapshot, nil
	}
	call := s.startFetchLocked(ctx, "date:"+date,
		func(ctx context.Context) (models.RateSnapshot, error) {
			return s.source.RatesFor(ctx, date)
		},
		s.store,
	)
	s.mu.Unlock()

	return waitForFetch(ctx, call)
}

// Latest returns the most recently published snapshot, refetching once the
// calendar day changes.
func (s *Service) Latest(ctx context.Context) (models.RateSnapshot, error) {
	s.mu.Lock()
	if s.latestFetchedOn == dates.Today() && !s.latest.IsEmpty() {
		snapshot := s.latest.Clone()
		s.mu.Unlock()
		return snapshot, nil
	}
	call := s.startFetchLocked(ctx, latestKey, s.source.Latest, func(snapshot models.RateSnapshot) {
		s.mu.Lock()
		s.latest = snapshot.Clone()
		s.latestFetchedOn = dates.Today()
		s.mu.Unlock()
		s.store(snapshot)
	})
	s.mu.Unlock()

	return waitForFetch(ctx, call)
}

// startFetchLocked joins an in-flight fetch for the key or starts a new one.
// The fetch runs with cancellation detached from any single caller so one
// short-deadline chat cannot fail all concurrent waiters. onSuccess runs in
// the fetching goroutine before waiters are released.
func (s *Service) startFetchLocked(
	ctx context.Context,
	key string,
	fetch func(context.Context) (models.RateSnapshot, error),
	onSuccess func(models.RateSnapshot),
) *inFlightFetch {
	if call, waiting := s.inFlight[key]; waiting {
		return call
	}

	call := &inFlightFetch{done: make(chan struct{})}
	s.inFlight[key] = call

	go func(ctx context.Context) {
		snapshot, err := fetch(ctx)
		if err == nil && onSuccess != nil {
			onSuccess(snapshot)
		}

		s.mu.Lock()
		call.snapshot = snapshot
		call.err = err
		delete(s.inFlight, key)
		close(call.done)
		s.mu.Unlock()
	}(context.WithoutCancel(ctx))

	return call
}

// store writes the snapshot through the cache; persistence failures degrade
// to a warning, the snapshot stays usable for this process.
func (s *Service) store(snapshot models.RateSnapshot) {
	if err := s.cache.Put(snapshot); err != nil {
		logger.Log.Warn().Err(err).Str("date", snapshot.Date).Msg("Failed to persist rates snapshot")
	}
}

func waitForFetch(ctx context.Context, call *inFlightFetch) (models.RateSnapshot, error) {
	select {
	case <-ctx.Done():
		return models.RateSnapshot{}, errors.Join(ErrNetwork, ctx.Err())
	case <-call.done:
		if call.err != nil {
			return models.RateSnapshot{}, call.err
		}
		return call.snapshot.Clone(), nil
	}
}
