package state

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/hoverfly"
)

// Policy decides which completion wins when triggers overlap.
type Policy int

const (
	// LatestIssued discards completions of any trigger that has been
	// superseded by a newer one.
	LatestIssued Policy = iota
	// CompletionOrder applies every completion as it arrives, so a slow
	// older request can overwrite the result of a newer one.
	CompletionOrder
)

func (p Policy) String() string {
	if p == CompletionOrder {
		return "completion-order"
	}
	return "latest-issued"
}

// FetchFunc performs one facade call for a slice.
type FetchFunc[P, T any] func(ctx context.Context, api hoverfly.Facade, params P) (T, error)

// Slice owns the lifecycle of one asynchronous fetch and its result.
type Slice[P, T any] struct {
	name   string
	api    hoverfly.Facade
	fetch  FetchFunc[P, T]
	policy Policy
	notify func()
	log    logrus.FieldLogger

	mu      sync.RWMutex
	state   Resource[T]
	settled Resource[T]
	params  P
	seq     uint64
}

func newSlice[P, T any](name string, api hoverfly.Facade, fetch func(context.Context, hoverfly.Facade, P) (T, error), policy Policy, notify func(), logger logrus.FieldLogger) *Slice[P, T] {
	if notify == nil {
		notify = func() {}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Slice[P, T]{
		name:    name,
		api:     api,
		fetch:   fetch,
		policy:  policy,
		notify:  notify,
		log:     logger.WithField("slice", name),
		state:   Idle[T](),
		settled: Idle[T](),
	}
}

// Name returns the slice key in the store.
func (s *Slice[P, T]) Name() string {
	return s.name
}

// State returns the current resource.
func (s *Slice[P, T]) State() Resource[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Settled returns the most recent terminal resource, or idle if no fetch has
// completed. Unlike State it does not flip to loading on every trigger.
func (s *Slice[P, T]) Settled() Resource[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settled
}

// Params returns the parameters of the request the current state belongs to.
func (s *Slice[P, T]) Params() P {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// view returns state, settled result and params from one critical section,
// so the three always describe the same request.
func (s *Slice[P, T]) view() (state, settled Resource[T], params P) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.settled, s.params
}

// Trigger moves the slice to loading before returning, then performs the
// fetch in the background. The returned channel yields this trigger's own
// outcome once and is then closed; whether that outcome reached the slice
// state depends on the policy. Triggers are never deduplicated.
func (s *Slice[P, T]) Trigger(ctx context.Context, params P) <-chan Resource[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.state = Loading[T]()
	s.params = params
	s.mu.Unlock()
	s.notify()

	done := make(chan Resource[T], 1)
	go func() {
		defer close(done)
		res := s.run(ctx, params)
		s.complete(seq, params, res)
		done <- res
	}()
	return done
}

// Do triggers a fetch and waits for its outcome.
func (s *Slice[P, T]) Do(ctx context.Context, params P) Resource[T] {
	return <-s.Trigger(ctx, params)
}

func (s *Slice[P, T]) run(ctx context.Context, params P) Resource[T] {
	if s.api == nil {
		return Failed[T](hoverfly.ErrNilClient)
	}
	value, err := s.fetch(ctx, s.api, params)
	if err != nil {
		return Failed[T](err)
	}
	return Succeeded(value)
}

func (s *Slice[P, T]) complete(seq uint64, params P, res Resource[T]) {
	s.mu.Lock()
	if s.policy == LatestIssued && seq != s.seq {
		latest := s.seq
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{"seq": seq, "latest": latest}).Debug("discarding superseded result")
		return
	}
	s.state = res
	s.settled = res
	s.params = params
	s.mu.Unlock()

	if err := res.Err(); err != nil {
		s.log.WithError(err).Debug("fetch failed")
	}
	s.notify()
}
