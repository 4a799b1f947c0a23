// Package reconcile keeps local copies of server-backed shopper state (cart,
// wishlist) and absorbs the server's canonical answer after every change.
//
// Both resources run on one state machine, Store. A Policy decides whether a
// mutation shows locally before the server confirms it (optimistic, remote
// call in the background, resync on failure) or only once the server has
// answered (confirm-then-apply, failure leaves the previous state).
//
// Every mutation and refresh takes a sequence number when issued. A server
// list older than the last applied sequence is dropped, and so is any answer
// to a request issued before the last sign-in or sign-out.
package reconcile

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"rokomferi-storefront/internal/domain"
	"rokomferi-storefront/pkg/logger"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Policy selects how a Store applies mutations.
type Policy struct {
	// Optimistic applies the local effect at once and sends the remote call
	// in the background. A failed call triggers a full refresh.
	Optimistic bool
}

// Failure describes a remote call that did not succeed.
type Failure struct {
	Resource string
	Op       string
	Kind     domain.ErrorKind
	Message  string
	Err      error
}

// Feedback receives failures, e.g. to show a toast.
type Feedback interface {
	Report(f Failure)
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func(f Failure)

func (fn FeedbackFunc) Report(f Failure) { fn(f) }

// Mutation is one change to a resource.
type Mutation[T any] struct {
	Op string
	// Local is the optimistic effect on the current items. It receives a
	// copy and may modify it. Ignored by confirm-then-apply stores.
	Local func(items []T) []T
	// Remote performs the change and returns the canonical list.
	Remote func(ctx context.Context) ([]T, error)
	// Fields are added to every log line about this mutation.
	Fields map[string]interface{}
}

// StoreConfig wires a Store.
type StoreConfig[K comparable, T any] struct {
	Resource string
	Policy   Policy
	KeyOf    func(T) K
	// List fetches the canonical list. Used by Refresh and failure recovery.
	List func(ctx context.Context) ([]T, error)
	// BackgroundTimeout bounds remote calls made after the caller returned.
	BackgroundTimeout time.Duration
	Logger            *zerolog.Logger
	Feedback          Feedback
}

// Store is the shared reconciliation state machine. It is safe for
// concurrent use; its lock is never held across a remote call.
type Store[K comparable, T any] struct {
	resource   string
	policy     Policy
	keyOf      func(T) K
	list       func(ctx context.Context) ([]T, error)
	bgTimeout  time.Duration
	log        *zerolog.Logger
	feedback   Feedback
	flight     singleflight.Group
	background sync.WaitGroup

	mu            sync.RWMutex
	items         []T
	authenticated bool
	epoch         uint64
	issued        uint64
	applied       uint64

	// nmu orders notifications so the last one delivered is never older
	// than the state it follows.
	nmu     sync.Mutex
	smu     sync.Mutex
	nextSub int
	subs    map[int]func([]T)
}

func NewStore[K comparable, T any](cfg StoreConfig[K, T]) *Store[K, T] {
	log := cfg.Logger
	if log == nil {
		log = logger.Component("reconcile")
	}
	l := log.With().Str("resource", cfg.Resource).Logger()

	bg := cfg.BackgroundTimeout
	if bg <= 0 {
		bg = 15 * time.Second
	}

	return &Store[K, T]{
		resource:  cfg.Resource,
		policy:    cfg.Policy,
		keyOf:     cfg.KeyOf,
		list:      cfg.List,
		bgTimeout: bg,
		log:       &l,
		feedback:  cfg.Feedback,
		subs:      make(map[int]func([]T)),
	}
}

// Policy returns the store's mutation policy.
func (s *Store[K, T]) Policy() Policy {
	return s.policy
}

// Authenticated reports whether the store serves state.
func (s *Store[K, T]) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Items returns a copy of the current items, empty when signed out.
func (s *Store[K, T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated {
		return []T{}
	}
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the item with key k.
func (s *Store[K, T]) Get(k K) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if !s.authenticated {
		return zero, false
	}
	for _, it := range s.items {
		if s.keyOf(it) == k {
			return it, true
		}
	}
	return zero, false
}

// Contains reports whether an item with key k is present.
func (s *Store[K, T]) Contains(k K) bool {
	_, ok := s.Get(k)
	return ok
}

// Subscribe registers fn to receive a snapshot after every state change.
func (s *Store[K, T]) Subscribe(fn func(items []T)) (unsubscribe func()) {
	s.smu.Lock()
	defer s.smu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.smu.Lock()
		defer s.smu.Unlock()
		delete(s.subs, id)
	}
}

// SetAuthenticated applies an auth transition. Signing out clears the items
// without a remote call. Signing in opens the store; callers follow up with
// Refresh. Either way in-flight answers become stale.
func (s *Store[K, T]) SetAuthenticated(authenticated bool) {
	s.mu.Lock()
	s.authenticated = authenticated
	s.epoch++
	s.items = nil
	s.applied = s.issued
	s.mu.Unlock()

	s.log.Debug().Bool("authenticated", authenticated).Msg("Auth transition")
	s.notify()
}

// Refresh replaces the items with the server's list. Concurrent calls in
// the same session share one request. A caller never settles for a request
// issued before the last change it could observe; it waits for the shared
// one and then issues its own.
func (s *Store[K, T]) Refresh(ctx context.Context) error {
	s.mu.RLock()
	epoch, seen := s.epoch, s.issued
	s.mu.RUnlock()
	key := strconv.FormatUint(epoch, 10)

	for {
		ch := s.flight.DoChan(key, func() (interface{}, error) {
			return s.fetch(ctx)
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-ch:
			if res.Err != nil {
				return res.Err
			}
			if res.Val.(uint64) >= seen {
				return nil
			}
		}

		s.mu.RLock()
		moved := s.epoch != epoch
		s.mu.RUnlock()
		if moved {
			return nil
		}
	}
}

// fetch is one shared refresh request, detached from the caller that
// started it.
func (s *Store[K, T]) fetch(ctx context.Context) (uint64, error) {
	seq, epoch, ok := s.begin()
	if !ok {
		return 0, domain.NewUnauthenticatedError("signed out")
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.bgTimeout)
	defer cancel()

	items, err := s.list(ctx)
	if err != nil {
		s.report("refresh", err, nil)
		return seq, err
	}
	s.replace(seq, epoch, items, "refresh")
	return seq, nil
}

// Mutate runs m under the store's policy.
//
// Confirm-then-apply: the remote call runs on ctx and its list replaces the
// items on success. The error is returned and the items are untouched.
//
// Optimistic: the local effect is applied before Mutate returns, the remote
// call runs in the background and Mutate returns nil. A background failure
// is reported and followed by a Refresh.
func (s *Store[K, T]) Mutate(ctx context.Context, m Mutation[T]) error {
	seq, epoch, ok := s.begin()
	if !ok {
		return domain.NewUnauthenticatedError("signed out")
	}

	if !s.policy.Optimistic {
		items, err := m.Remote(ctx)
		if err != nil {
			s.report(m.Op, err, m.Fields)
			return err
		}
		s.replace(seq, epoch, items, m.Op)
		return nil
	}

	if m.Local != nil {
		s.applyLocal(seq, epoch, m.Local)
	}

	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.bgTimeout)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()

		items, err := m.Remote(bgCtx)
		if err != nil {
			s.report(m.Op, err, m.Fields)
			if errors.Is(err, domain.ErrUnauthenticated) {
				return
			}
			// The optimistic effect may now be wrong.
			if rerr := s.Refresh(bgCtx); rerr != nil {
				s.log.Warn().Err(rerr).Str("op", m.Op).Msg("Resync after failed mutation failed")
			}
			return
		}
		s.replace(seq, epoch, items, m.Op)
	}()
	return nil
}

// Wait blocks until background remote calls have finished.
func (s *Store[K, T]) Wait() {
	s.background.Wait()
}

// begin issues a sequence number, refusing while signed out.
func (s *Store[K, T]) begin() (seq, epoch uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return 0, 0, false
	}
	s.issued++
	return s.issued, s.epoch, true
}

func (s *Store[K, T]) applyLocal(seq, epoch uint64, fn func([]T) []T) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	cur := make([]T, len(s.items))
	copy(cur, s.items)
	s.items = fn(cur)
	if seq > s.applied {
		s.applied = seq
	}
	s.mu.Unlock()

	s.notify()
}

// replace installs a server list unless a newer state was applied since seq
// was issued, or the session changed.
func (s *Store[K, T]) replace(seq, epoch uint64, items []T, op string) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		s.log.Debug().Str("op", op).Uint64("seq", seq).Msg("Dropped answer from previous session")
		return false
	}
	if seq < s.applied {
		applied := s.applied
		s.mu.Unlock()
		s.log.Debug().Str("op", op).Uint64("seq", seq).Uint64("applied", applied).Msg("Dropped stale answer")
		return false
	}
	s.items = dedupe(items, s.keyOf)
	s.applied = seq
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *Store[K, T]) report(op string, err error, fields map[string]interface{}) {
	kind := domain.KindOf(err)

	// Removing something already gone is not a failure the shopper sees.
	if kind == domain.KindNotFound {
		s.log.Info().Err(err).Str("op", op).Fields(fields).Msg("Remote call found nothing to change")
		return
	}
	s.log.Warn().Err(err).Str("op", op).Str("kind", string(kind)).Fields(fields).Msg("Remote call failed")

	if s.feedback != nil {
		s.feedback.Report(Failure{
			Resource: s.resource,
			Op:       op,
			Kind:     kind,
			Message:  domain.UserMessage(err),
			Err:      err,
		})
	}
}

func (s *Store[K, T]) notify() {
	s.nmu.Lock()
	defer s.nmu.Unlock()

	s.smu.Lock()
	subs := make([]func([]T), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.smu.Unlock()
	if len(subs) == 0 {
		return
	}

	snapshot := s.Items()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// dedupe keeps the first item per key. The server owns identity, but a
// misbehaving one must not create two lines with the same key locally.
func dedupe[K comparable, T any](items []T, keyOf func(T) K) []T {
	out := make([]T, 0, len(items))
	seen := make(map[K]struct{}, len(items))
	for _, it := range items {
		k := keyOf(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// upsert replaces the item with the same key or appends it.
func upsert[K comparable, T any](items []T, item T, keyOf func(T) K) []T {
	k := keyOf(item)
	for i := range items {
		if keyOf(items[i]) == k {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

// without drops the item with key k.
func without[K comparable, T any](items []T, k K, keyOf func(T) K) []T {
	out := items[:0]
	for _, it := range items {
		if keyOf(it) != k {
			out = append(out, it)
		}
	}
	return out
}
