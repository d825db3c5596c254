package production

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchOptions carries the optional server-side date window.
type FetchOptions struct {
	DateFrom string
	DateTo   string
}

// FetchResult is what a RowSource hands back: either live rows or the fallback set.
type FetchResult struct {
	Rows     []RawRow `json:"rows"`
	Fallback bool     `json:"fallback"`
}

// RowSource fetches raw rows from the backend. Implementations are expected to
// substitute fallback rows rather than fail.
type RowSource interface {
	FetchRows(ctx context.Context, opts FetchOptions) (FetchResult, error)
}

// sharedFetchTimeout bounds a fetch that outlives the request which started it.
const sharedFetchTimeout = 30 * time.Second

// errUncacheable marks loads that must not be stored, such as fallback data.
var errUncacheable = errors.New("production: result not cacheable")

// Service coordinates row fetching with the cache and the pipeline.
type Service struct {
	source RowSource
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService wires a RowSource with an optional Cache helper.
func NewService(source RowSource, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source: source,
		cache:  cache,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Dashboard fetches, normalizes, filters and aggregates in one pass.
func (s *Service) Dashboard(ctx context.Context, f Filter) (Dashboard, error) {
	f = f.Normalized()
	result, err := s.rows(ctx, FetchOptions{DateFrom: f.DateFrom, DateTo: f.DateTo})
	if err != nil {
		return Dashboard{}, err
	}
	start := time.Now()
	dashboard := Build(Normalize(result.Rows), f)
	observeBuild(time.Since(start))

	dashboard.Source = SourceLive
	if result.Fallback {
		dashboard.Source = SourceFallback
	}
	dashboard.GeneratedAt = s.now()
	return dashboard, nil
}

// Records returns the filtered canonical records only.
func (s *Service) Records(ctx context.Context, f Filter) ([]Record, error) {
	f = f.Normalized()
	result, err := s.rows(ctx, FetchOptions{DateFrom: f.DateFrom, DateTo: f.DateTo})
	if err != nil {
		return nil, err
	}
	return Apply(Normalize(result.Rows), f), nil
}

// Refresh drops cached rows so the next request re-fetches from the source.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return err
	}
	s.logger.Info("production cache bumped")
	return nil
}

func (s *Service) rows(ctx context.Context, opts FetchOptions) (FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return FetchResult{}, err
	}
	key := keyRows(opts.DateFrom, opts.DateTo)
	ch := s.group.DoChan(key, func() (any, error) {
		// Joined callers share this fetch, so it must not die with the first
		// caller's context.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		return s.cachedRows(fetchCtx, key, opts)
	})
	select {
	case <-ctx.Done():
		return FetchResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return FetchResult{}, res.Err
		}
		return res.Val.(FetchResult), nil
	}
}

func (s *Service) cachedRows(ctx context.Context, keyBase string, opts FetchOptions) (FetchResult, error) {
	if !s.cache.enabled() {
		return s.fetch(ctx, opts)
	}
	key, err := s.cache.BuildKey(ctx, keyBase)
	if err != nil {
		observeCache("error")
		s.logger.Warn("production cache key", slog.Any("error", err))
		return s.fetch(ctx, opts)
	}

	var uncached FetchResult
	var result FetchResult
	hit, err := s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (any, error) {
		fetched, err := s.fetch(ctx, opts)
		if err != nil {
			return nil, err
		}
		if fetched.Fallback {
			uncached = fetched
			return nil, errUncacheable
		}
		return fetched, nil
	})
	switch {
	case errors.Is(err, errUncacheable):
		observeCache("miss")
		return uncached, nil
	case ctx.Err() != nil:
		return FetchResult{}, ctx.Err()
	case err != nil:
		observeCache("error")
		s.logger.Warn("production cache fetch", slog.Any("error", err))
		return s.fetch(ctx, opts)
	case hit:
		observeCache("hit")
	default:
		observeCache("miss")
	}
	return result, nil
}

// fetch only fails when ctx is done; any other source error degrades to the
// fallback rows.
func (s *Service) fetch(ctx context.Context, opts FetchOptions) (FetchResult, error) {
	if s.source == nil {
		return FetchResult{Rows: SampleRows(), Fallback: true}, nil
	}
	result, err := s.source.FetchRows(ctx, opts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return FetchResult{}, ctxErr
		}
		s.logger.Warn("production source fetch, using fallback rows", slog.Any("error", err))
		return FetchResult{Rows: SampleRows(), Fallback: true}, nil
	}
	return result, nil
}
