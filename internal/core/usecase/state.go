package usecase

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// DocumentState owns the in-memory document cache, the active search
// query and the loading/error status. All reads and writes between the
// views and the repository client go through it.
//
// Only one fetch is authoritative at a time: every fetch carries a
// generation number, starting a new fetch cancels the context of the
// previous one, and a result is applied only while its generation is
// still current. A fast "clear search" can therefore never lose to a
// slow search that was issued before it.
type DocumentState struct {
	api     ports.DocumentAPI
	limiter *rate.Limiter
	onFetch func(err error)

	mu      sync.Mutex
	docs    []domain.Document
	query   string
	loading bool
	lastErr string
	gen     uint64
	cancel  context.CancelFunc
}

// NewDocumentState builds the state component around a repository client.
// limiter throttles search-as-you-type and may be nil; the generation
// guard alone carries the last-request-wins guarantee. onFetch is an
// optional observer for every settled fetch (metrics) and may be nil.
func NewDocumentState(api ports.DocumentAPI, limiter *rate.Limiter, onFetch func(err error)) *DocumentState {
	return &DocumentState{api: api, limiter: limiter, onFetch: onFetch}
}

// Documents returns the cached set from the last successful fetch or
// search.
func (s *DocumentState) Documents() []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Grouped derives the month-grouped view. Recomputed on every read: the
// input set is small and a fresh grouping after delete or search matters
// more than saving the sort.
func (s *DocumentState) Grouped() []domain.MonthGroup {
	return domain.GroupByMonth(s.Documents())
}

func (s *DocumentState) Status() ports.BrowserStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.BrowserStatus{Loading: s.loading, Error: s.lastErr}
}

func (s *DocumentState) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetSearchQuery updates the active filter and re-fetches: the full
// listing when query is empty, a server-side search otherwise. Blocks
// until its fetch settles or is superseded by a newer one.
func (s *DocumentState) SetSearchQuery(ctx context.Context, query string) {
	s.mu.Lock()
	s.query = query
	gen, fetchCtx := s.beginFetchLocked(ctx)
	s.mu.Unlock()

	if s.limiter != nil && query != "" {
		if err := s.limiter.Wait(fetchCtx); err != nil {
			s.settleFetch(gen, nil, err)
			return
		}
	}

	docs, err := s.fetch(fetchCtx, query)
	s.settleFetch(gen, docs, err)
}

// Refresh re-issues the fetch for the current query. Idempotent and safe
// to call repeatedly; the returned error mirrors what Status reports.
func (s *DocumentState) Refresh(ctx context.Context) error {
	s.mu.Lock()
	query := s.query
	gen, fetchCtx := s.beginFetchLocked(ctx)
	s.mu.Unlock()

	docs, err := s.fetch(fetchCtx, query)
	s.settleFetch(gen, docs, err)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Delete removes the document keyed by name, then unconditionally
// refreshes so the cache reflects server truth whatever the delete did.
// A failed delete leaves the document visible and surfaces the error
// both in Status and to the caller.
func (s *DocumentState) Delete(ctx context.Context, imageName string) error {
	deleteErr := s.api.Delete(ctx, imageName)

	_ = s.Refresh(ctx)

	if deleteErr != nil {
		s.mu.Lock()
		s.lastErr = deleteErr.Error()
		s.mu.Unlock()
		return deleteErr
	}
	return nil
}

func (s *DocumentState) fetch(ctx context.Context, query string) ([]domain.Document, error) {
	if query == "" {
		return s.api.List(ctx)
	}
	return s.api.Search(ctx, query)
}

// beginFetchLocked stamps a new generation, cancels the superseded fetch
// and marks the component loading. Caller holds the mutex.
func (s *DocumentState) beginFetchLocked(ctx context.Context) (uint64, context.Context) {
	s.gen++
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	return s.gen, fetchCtx
}

// settleFetch applies a fetch result, but only if no newer fetch has
// started since. A failed fetch keeps the previous good list; only the
// error status changes.
func (s *DocumentState) settleFetch(gen uint64, docs []domain.Document, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return // superseded; a newer fetch owns the cache now
	}
	s.loading = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.onFetch != nil {
		s.onFetch(err)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.lastErr = err.Error()
		}
		return
	}
	s.docs = docs
	s.lastErr = ""
}
